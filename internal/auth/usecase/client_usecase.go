package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/claims/internal/auth/domain"
	authService "github.com/allisson/claims/internal/auth/service"
	"github.com/allisson/claims/internal/database"
)

type clientUseCase struct {
	txManager     database.TxManager
	clientRepo    ClientRepository
	secretService authService.SecretService
}

// Create generates and persists a new Client with a random secret.
func (c *clientUseCase) Create(
	ctx context.Context,
	createClientInput *authDomain.CreateClientInput,
) (*authDomain.CreateClientOutput, error) {
	plainSecret, hashedSecret, err := c.secretService.GenerateSecret()
	if err != nil {
		return nil, err
	}

	client := &authDomain.Client{
		ID:        uuid.Must(uuid.NewV7()),
		Secret:    hashedSecret,
		Name:      createClientInput.Name,
		IsActive:  createClientInput.IsActive,
		CreatedAt: time.Now().UTC(),
	}

	if err := c.clientRepo.Create(ctx, client); err != nil {
		return nil, err
	}

	return &authDomain.CreateClientOutput{
		ID:          client.ID,
		PlainSecret: plainSecret,
	}, nil
}

// Update reads and rewrites the client inside one transaction.
func (c *clientUseCase) Update(
	ctx context.Context,
	clientID uuid.UUID,
	updateClientInput *authDomain.UpdateClientInput,
) error {
	return c.txManager.WithTx(ctx, func(ctx context.Context) error {
		client, err := c.clientRepo.Get(ctx, clientID)
		if err != nil {
			return err
		}

		client.Name = updateClientInput.Name
		client.IsActive = updateClientInput.IsActive

		return c.clientRepo.Update(ctx, client)
	})
}

func (c *clientUseCase) Get(ctx context.Context, clientID uuid.UUID) (*authDomain.Client, error) {
	return c.clientRepo.Get(ctx, clientID)
}

// NewClientUseCase creates a new ClientUseCase with the provided dependencies.
func NewClientUseCase(
	txManager database.TxManager,
	clientRepo ClientRepository,
	secretService authService.SecretService,
) ClientUseCase {
	return &clientUseCase{
		txManager:     txManager,
		clientRepo:    clientRepo,
		secretService: secretService,
	}
}
