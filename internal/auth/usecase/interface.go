// Package usecase defines business logic for authenticating registry callers.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/claims/internal/auth/domain"
)

// ClientRepository defines persistence operations for authentication clients.
// Implementations must support transaction-aware operations via context propagation.
type ClientRepository interface {
	// Create stores a new client in the repository.
	Create(ctx context.Context, client *authDomain.Client) error

	// Update modifies an existing client. Returns ErrClientNotFound if absent.
	Update(ctx context.Context, client *authDomain.Client) error

	// Get retrieves a client by ID. Returns ErrClientNotFound if not found.
	Get(ctx context.Context, clientID uuid.UUID) (*authDomain.Client, error)
}

// TokenRepository defines persistence operations for authentication tokens.
type TokenRepository interface {
	Create(ctx context.Context, token *authDomain.Token) error

	Update(ctx context.Context, token *authDomain.Token) error

	// Get retrieves a token by ID. Returns ErrTokenNotFound if not found.
	Get(ctx context.Context, tokenID uuid.UUID) (*authDomain.Token, error)

	GetByTokenHash(ctx context.Context, tokenHash string) (*authDomain.Token, error)

	// DeleteExpired removes tokens whose expiry is before olderThan.
	DeleteExpired(ctx context.Context, olderThan time.Time) (int64, error)

	// CountExpired counts tokens whose expiry is before olderThan.
	CountExpired(ctx context.Context, olderThan time.Time) (int64, error)
}

// ClientUseCase manages the clients allowed to call the registry.
type ClientUseCase interface {
	// Create generates a new client with a random secret. The plain secret is returned
	// once and only its Argon2id hash is stored.
	Create(
		ctx context.Context,
		createClientInput *authDomain.CreateClientInput,
	) (*authDomain.CreateClientOutput, error)

	// Update changes the name and active status of a client. The ID and secret are preserved.
	// Returns ErrClientNotFound if the client doesn't exist.
	Update(ctx context.Context, clientID uuid.UUID, updateClientInput *authDomain.UpdateClientInput) error

	// Get retrieves a client by ID. Returns ErrClientNotFound if the client doesn't exist.
	Get(ctx context.Context, clientID uuid.UUID) (*authDomain.Client, error)
}

// TokenUseCase exchanges client credentials for bearer tokens and resolves tokens back to clients.
type TokenUseCase interface {
	Issue(
		ctx context.Context,
		issueTokenInput *authDomain.IssueTokenInput,
	) (*authDomain.IssueTokenOutput, error)

	// Authenticate returns the active client owning the token with the given hash.
	Authenticate(ctx context.Context, tokenHash string) (*authDomain.Client, error)

	// CleanupExpired removes tokens that expired more than days ago. With dryRun set it
	// only counts them.
	CleanupExpired(ctx context.Context, days int, dryRun bool) (int64, error)
}
