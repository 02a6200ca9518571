package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	claimsDomain "github.com/allisson/claims/internal/claims/domain"
	"github.com/allisson/claims/internal/metrics"
)

// registryUseCaseWithMetrics decorates RegistryUseCase with metrics instrumentation.
type registryUseCaseWithMetrics struct {
	next    RegistryUseCase
	metrics metrics.BusinessMetrics
}

// NewRegistryUseCaseWithMetrics wraps a RegistryUseCase with metrics recording.
func NewRegistryUseCaseWithMetrics(useCase RegistryUseCase, m metrics.BusinessMetrics) RegistryUseCase {
	return &registryUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Create records metrics for claim registration.
func (r *registryUseCaseWithMetrics) Create(
	ctx context.Context,
	caller uuid.UUID,
	claim []byte,
) (*claimsDomain.Registration, error) {
	start := time.Now()
	registration, err := r.next.Create(ctx, caller, claim)
	r.record(ctx, "claim_create", start, err)
	return registration, err
}

// Revoke records metrics for claim revocation.
func (r *registryUseCaseWithMetrics) Revoke(ctx context.Context, caller uuid.UUID, claim []byte) error {
	start := time.Now()
	err := r.next.Revoke(ctx, caller, claim)
	r.record(ctx, "claim_revoke", start, err)
	return err
}

// Transfer records metrics for claim transfer.
func (r *registryUseCaseWithMetrics) Transfer(
	ctx context.Context,
	caller, to uuid.UUID,
	claim []byte,
) (*claimsDomain.Registration, error) {
	start := time.Now()
	registration, err := r.next.Transfer(ctx, caller, to, claim)
	r.record(ctx, "claim_transfer", start, err)
	return registration, err
}

// Get records metrics for claim lookups.
func (r *registryUseCaseWithMetrics) Get(ctx context.Context, claim []byte) (*claimsDomain.Registration, error) {
	start := time.Now()
	registration, err := r.next.Get(ctx, claim)
	r.record(ctx, "claim_get", start, err)
	return registration, err
}

// ListByOwner records metrics for owner listings.
func (r *registryUseCaseWithMetrics) ListByOwner(
	ctx context.Context,
	owner uuid.UUID,
	offset, limit int,
) ([]*claimsDomain.Registration, error) {
	start := time.Now()
	registrations, err := r.next.ListByOwner(ctx, owner, offset, limit)
	r.record(ctx, "claim_list", start, err)
	return registrations, err
}

func (r *registryUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	r.metrics.RecordOperation(ctx, "claims", operation, status)
	r.metrics.RecordDuration(ctx, "claims", operation, time.Since(start), status)
}
