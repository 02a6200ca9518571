package app

import (
	"fmt"

	authHTTP "github.com/allisson/claims/internal/auth/http"
	authRepository "github.com/allisson/claims/internal/auth/repository"
	authService "github.com/allisson/claims/internal/auth/service"
	authUseCase "github.com/allisson/claims/internal/auth/usecase"
)

// SecretService returns the service hashing client secrets.
func (c *Container) SecretService() authService.SecretService {
	c.secretServiceInit.Do(func() {
		c.secretService = authService.NewSecretService()
	})
	return c.secretService
}

// TokenService returns the service generating and hashing bearer tokens.
func (c *Container) TokenService() authService.TokenService {
	c.tokenServiceInit.Do(func() {
		c.tokenService = authService.NewTokenService()
	})
	return c.tokenService
}

// ClientRepository returns the client repository for the configured driver.
func (c *Container) ClientRepository() (authUseCase.ClientRepository, error) {
	var err error
	c.clientRepositoryInit.Do(func() {
		c.clientRepository, err = c.initClientRepository()
		if err != nil {
			c.setInitError("clientRepository", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("clientRepository"); storedErr != nil {
		return nil, storedErr
	}
	return c.clientRepository, nil
}

// TokenRepository returns the token repository for the configured driver.
func (c *Container) TokenRepository() (authUseCase.TokenRepository, error) {
	var err error
	c.tokenRepositoryInit.Do(func() {
		c.tokenRepository, err = c.initTokenRepository()
		if err != nil {
			c.setInitError("tokenRepository", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("tokenRepository"); storedErr != nil {
		return nil, storedErr
	}
	return c.tokenRepository, nil
}

// ClientUseCase returns the client use case.
func (c *Container) ClientUseCase() (authUseCase.ClientUseCase, error) {
	var err error
	c.clientUseCaseInit.Do(func() {
		c.clientUseCase, err = c.initClientUseCase()
		if err != nil {
			c.setInitError("clientUseCase", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("clientUseCase"); storedErr != nil {
		return nil, storedErr
	}
	return c.clientUseCase, nil
}

// TokenUseCase returns the token use case.
func (c *Container) TokenUseCase() (authUseCase.TokenUseCase, error) {
	var err error
	c.tokenUseCaseInit.Do(func() {
		c.tokenUseCase, err = c.initTokenUseCase()
		if err != nil {
			c.setInitError("tokenUseCase", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("tokenUseCase"); storedErr != nil {
		return nil, storedErr
	}
	return c.tokenUseCase, nil
}

// TokenHandler returns the HTTP handler for token issuance.
func (c *Container) TokenHandler() (*authHTTP.TokenHandler, error) {
	var err error
	c.tokenHandlerInit.Do(func() {
		c.tokenHandler, err = c.initTokenHandler()
		if err != nil {
			c.setInitError("tokenHandler", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("tokenHandler"); storedErr != nil {
		return nil, storedErr
	}
	return c.tokenHandler, nil
}

func (c *Container) initClientRepository() (authUseCase.ClientRepository, error) {
	if c.IsMemory() {
		return authRepository.NewMemoryClientRepository(c.LockTxManager()), nil
	}

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for client repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return authRepository.NewPostgreSQLClientRepository(db), nil
	case "mysql":
		return authRepository.NewMySQLClientRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initTokenRepository() (authUseCase.TokenRepository, error) {
	if c.IsMemory() {
		return authRepository.NewMemoryTokenRepository(c.LockTxManager()), nil
	}

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for token repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return authRepository.NewPostgreSQLTokenRepository(db), nil
	case "mysql":
		return authRepository.NewMySQLTokenRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initClientUseCase() (authUseCase.ClientUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for client use case: %w", err)
	}

	clientRepository, err := c.ClientRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get client repository for client use case: %w", err)
	}

	baseUseCase := authUseCase.NewClientUseCase(txManager, clientRepository, c.SecretService())

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for client use case: %w", err)
		}
		return authUseCase.NewClientUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

func (c *Container) initTokenUseCase() (authUseCase.TokenUseCase, error) {
	clientRepository, err := c.ClientRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get client repository for token use case: %w", err)
	}

	tokenRepository, err := c.TokenRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get token repository for token use case: %w", err)
	}

	baseUseCase := authUseCase.NewTokenUseCase(
		c.config.AuthTokenExpiration,
		clientRepository,
		tokenRepository,
		c.SecretService(),
		c.TokenService(),
	)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for token use case: %w", err)
		}
		return authUseCase.NewTokenUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

func (c *Container) initTokenHandler() (*authHTTP.TokenHandler, error) {
	tokenUseCase, err := c.TokenUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get token use case for token handler: %w", err)
	}
	return authHTTP.NewTokenHandler(tokenUseCase, c.Logger()), nil
}
