// Package repository provides data persistence implementations for claim registrations.
package repository

import (
	"context"
	"sort"

	"github.com/google/uuid"

	claimsDomain "github.com/allisson/claims/internal/claims/domain"
	"github.com/allisson/claims/internal/database"
)

// MemoryClaimRepository keeps registrations in a map keyed by Claim. All access goes
// through the LockTxManager so that a read-modify-write inside WithTx is atomic.
type MemoryClaimRepository struct {
	lock          *database.LockTxManager
	registrations map[claimsDomain.Claim]claimsDomain.Registration
}

// NewMemoryClaimRepository creates a new MemoryClaimRepository sharing lock with the
// other in-memory stores.
func NewMemoryClaimRepository(lock *database.LockTxManager) *MemoryClaimRepository {
	return &MemoryClaimRepository{
		lock:          lock,
		registrations: make(map[claimsDomain.Claim]claimsDomain.Registration),
	}
}

// Get returns a copy of the registration of claim.
func (r *MemoryClaimRepository) Get(
	ctx context.Context,
	claim claimsDomain.Claim,
) (*claimsDomain.Registration, error) {
	var (
		registration claimsDomain.Registration
		found        bool
	)
	r.lock.Do(ctx, func() {
		registration, found = r.registrations[claim]
	})

	if !found {
		return nil, claimsDomain.ErrNoSuchClaim
	}
	return &registration, nil
}

// GetForUpdate is Get; the row lock is the store-wide lock held by WithTx.
func (r *MemoryClaimRepository) GetForUpdate(
	ctx context.Context,
	claim claimsDomain.Claim,
) (*claimsDomain.Registration, error) {
	return r.Get(ctx, claim)
}

// Create stores a new registration.
func (r *MemoryClaimRepository) Create(ctx context.Context, registration *claimsDomain.Registration) error {
	var err error
	r.lock.Do(ctx, func() {
		if _, exists := r.registrations[registration.Claim]; exists {
			err = claimsDomain.ErrProofAlreadyExists
			return
		}
		r.registrations[registration.Claim] = *registration
	})
	return err
}

// Update overwrites an existing registration.
func (r *MemoryClaimRepository) Update(ctx context.Context, registration *claimsDomain.Registration) error {
	var err error
	r.lock.Do(ctx, func() {
		if _, exists := r.registrations[registration.Claim]; !exists {
			err = claimsDomain.ErrNoSuchClaim
			return
		}
		r.registrations[registration.Claim] = *registration
	})
	return err
}

// Delete removes the registration of claim.
func (r *MemoryClaimRepository) Delete(ctx context.Context, claim claimsDomain.Claim) error {
	var err error
	r.lock.Do(ctx, func() {
		if _, exists := r.registrations[claim]; !exists {
			err = claimsDomain.ErrNoSuchClaim
			return
		}
		delete(r.registrations, claim)
	})
	return err
}

// ListByOwner returns the registrations of owner ordered by registration time, then claim.
func (r *MemoryClaimRepository) ListByOwner(
	ctx context.Context,
	owner uuid.UUID,
	offset, limit int,
) ([]*claimsDomain.Registration, error) {
	var owned []*claimsDomain.Registration
	r.lock.Do(ctx, func() {
		for _, registration := range r.registrations {
			if registration.Owner == owner {
				reg := registration
				owned = append(owned, &reg)
			}
		}
	})

	sort.Slice(owned, func(i, j int) bool {
		if owned[i].RegisteredAt != owned[j].RegisteredAt {
			return owned[i].RegisteredAt < owned[j].RegisteredAt
		}
		return owned[i].Claim.Compare(owned[j].Claim) < 0
	})

	if offset >= len(owned) {
		return []*claimsDomain.Registration{}, nil
	}
	end := len(owned)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	return owned[offset:end], nil
}
