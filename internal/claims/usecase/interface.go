// Package usecase defines the interfaces and implementations for the claim registry use cases.
package usecase

import (
	"context"

	"github.com/google/uuid"

	claimsDomain "github.com/allisson/claims/internal/claims/domain"
)

// ClaimRepository defines the interface for claim registration persistence.
// Get and GetForUpdate return claimsDomain.ErrNoSuchClaim when the claim is absent, and
// Create returns claimsDomain.ErrProofAlreadyExists when the claim is already stored.
type ClaimRepository interface {
	Get(ctx context.Context, claim claimsDomain.Claim) (*claimsDomain.Registration, error)
	GetForUpdate(ctx context.Context, claim claimsDomain.Claim) (*claimsDomain.Registration, error)
	Create(ctx context.Context, registration *claimsDomain.Registration) error
	Update(ctx context.Context, registration *claimsDomain.Registration) error
	Delete(ctx context.Context, claim claimsDomain.Claim) error
	ListByOwner(ctx context.Context, owner uuid.UUID, offset, limit int) ([]*claimsDomain.Registration, error)
}

// NotificationSink receives one notification per successful mutation. It is called inside
// the mutation transaction.
type NotificationSink interface {
	Notify(ctx context.Context, notification claimsDomain.Notification) error
}

// Clock supplies the current logical time.
type Clock interface {
	Now(ctx context.Context) (claimsDomain.LogicalTime, error)
}

// RegistryUseCase defines the claim registry business logic.
type RegistryUseCase interface {
	// Create registers claim to caller at the current logical time.
	Create(ctx context.Context, caller uuid.UUID, claim []byte) (*claimsDomain.Registration, error)
	// Revoke removes a claim owned by caller.
	Revoke(ctx context.Context, caller uuid.UUID, claim []byte) error
	// Transfer hands a claim owned by caller to another identity and refreshes its
	// registration time.
	Transfer(ctx context.Context, caller, to uuid.UUID, claim []byte) (*claimsDomain.Registration, error)
	// Get returns the registration of claim or claimsDomain.ErrNoSuchClaim.
	Get(ctx context.Context, claim []byte) (*claimsDomain.Registration, error)
	// ListByOwner returns the registrations of owner ordered by registration time.
	ListByOwner(ctx context.Context, owner uuid.UUID, offset, limit int) ([]*claimsDomain.Registration, error)
}
