package app

import (
	"context"
	"fmt"

	claimsHTTP "github.com/allisson/claims/internal/claims/http"
	claimsRepository "github.com/allisson/claims/internal/claims/repository"
	claimsUseCase "github.com/allisson/claims/internal/claims/usecase"
	"github.com/allisson/claims/internal/clock"
)

// blockClock is a logical clock that can also produce blocks.
type blockClock interface {
	clock.Clock
	clock.Advancer
}

// BlockClock returns the logical clock for the configured clock driver.
func (c *Container) BlockClock() (clock.Clock, error) {
	bc, err := c.getBlockClock()
	if err != nil {
		return nil, err
	}
	return bc, nil
}

// BlockProducer returns a producer advancing the logical clock every BlockInterval.
func (c *Container) BlockProducer() (*clock.Producer, error) {
	bc, err := c.getBlockClock()
	if err != nil {
		return nil, fmt.Errorf("failed to get block clock for block producer: %w", err)
	}
	return clock.NewProducer(bc, c.config.BlockInterval, c.Logger()), nil
}

// ClaimRepository returns the claim repository for the configured driver.
func (c *Container) ClaimRepository() (claimsUseCase.ClaimRepository, error) {
	var err error
	c.claimRepositoryInit.Do(func() {
		c.claimRepository, err = c.initClaimRepository()
		if err != nil {
			c.setInitError("claimRepository", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("claimRepository"); storedErr != nil {
		return nil, storedErr
	}
	return c.claimRepository, nil
}

// RegistryUseCase returns the claim registry use case.
func (c *Container) RegistryUseCase() (claimsUseCase.RegistryUseCase, error) {
	var err error
	c.registryUseCaseInit.Do(func() {
		c.registryUseCase, err = c.initRegistryUseCase()
		if err != nil {
			c.setInitError("registryUseCase", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("registryUseCase"); storedErr != nil {
		return nil, storedErr
	}
	return c.registryUseCase, nil
}

// RegistryHandler returns the HTTP handler for claim operations.
func (c *Container) RegistryHandler() (*claimsHTTP.RegistryHandler, error) {
	var err error
	c.registryHandlerInit.Do(func() {
		c.registryHandler, err = c.initRegistryHandler()
		if err != nil {
			c.setInitError("registryHandler", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("registryHandler"); storedErr != nil {
		return nil, storedErr
	}
	return c.registryHandler, nil
}

func (c *Container) getBlockClock() (blockClock, error) {
	var err error
	c.blockClockInit.Do(func() {
		c.blockClock, err = c.initBlockClock()
		if err != nil {
			c.setInitError("blockClock", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("blockClock"); storedErr != nil {
		return nil, storedErr
	}
	return c.blockClock, nil
}

func (c *Container) initBlockClock() (blockClock, error) {
	switch c.config.ClockDriver {
	case "memory":
		return clock.NewMemoryClock(0), nil
	case "redis":
		client, err := clock.NewRedisClient(context.Background(), c.config.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis for block clock: %w", err)
		}
		c.redisClient = client
		return clock.NewRedisClock(client, c.config.RedisClockKey), nil
	default:
		return nil, fmt.Errorf("unsupported clock driver: %s", c.config.ClockDriver)
	}
}

func (c *Container) initClaimRepository() (claimsUseCase.ClaimRepository, error) {
	if c.IsMemory() {
		return claimsRepository.NewMemoryClaimRepository(c.LockTxManager()), nil
	}

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for claim repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return claimsRepository.NewPostgreSQLClaimRepository(db), nil
	case "mysql":
		return claimsRepository.NewMySQLClaimRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// validateClaimMaxLength checks that the claim bound is positive and fits the storage
// column of the configured driver.
func validateClaimMaxLength(driver string, maxLength int) error {
	if maxLength <= 0 {
		return fmt.Errorf("CLAIM_MAX_LENGTH must be positive, got %d", maxLength)
	}
	if driver == "mysql" && maxLength > claimsRepository.MySQLMaxClaimLength {
		return fmt.Errorf(
			"CLAIM_MAX_LENGTH %d exceeds the mysql claim column size %d",
			maxLength,
			claimsRepository.MySQLMaxClaimLength,
		)
	}
	return nil
}

func (c *Container) initRegistryUseCase() (claimsUseCase.RegistryUseCase, error) {
	if err := validateClaimMaxLength(c.config.DBDriver, c.config.ClaimMaxLength); err != nil {
		return nil, err
	}

	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for registry use case: %w", err)
	}

	claimRepository, err := c.ClaimRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get claim repository for registry use case: %w", err)
	}

	outboxRepository, err := c.OutboxRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get outbox repository for registry use case: %w", err)
	}

	blockClock, err := c.BlockClock()
	if err != nil {
		return nil, fmt.Errorf("failed to get block clock for registry use case: %w", err)
	}

	baseUseCase := claimsUseCase.NewRegistryUseCase(
		txManager,
		claimRepository,
		claimsUseCase.NewOutboxNotifier(outboxRepository),
		blockClock,
		c.config.ClaimMaxLength,
	)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for registry use case: %w", err)
		}
		return claimsUseCase.NewRegistryUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

func (c *Container) initRegistryHandler() (*claimsHTTP.RegistryHandler, error) {
	registryUseCase, err := c.RegistryUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get registry use case for registry handler: %w", err)
	}
	return claimsHTTP.NewRegistryHandler(registryUseCase, c.Logger()), nil
}
