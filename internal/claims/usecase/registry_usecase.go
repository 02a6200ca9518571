package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	claimsDomain "github.com/allisson/claims/internal/claims/domain"
	"github.com/allisson/claims/internal/database"
)

// registryUseCase implements RegistryUseCase. Every mutation checks length, existence and
// ownership in that order and writes nothing until all checks pass.
type registryUseCase struct {
	txManager      database.TxManager
	claimRepo      ClaimRepository
	sink           NotificationSink
	clock          Clock
	maxClaimLength int
}

// NewRegistryUseCase creates a new RegistryUseCase bounding claims to maxClaimLength bytes.
func NewRegistryUseCase(
	txManager database.TxManager,
	claimRepo ClaimRepository,
	sink NotificationSink,
	clock Clock,
	maxClaimLength int,
) RegistryUseCase {
	return &registryUseCase{
		txManager:      txManager,
		claimRepo:      claimRepo,
		sink:           sink,
		clock:          clock,
		maxClaimLength: maxClaimLength,
	}
}

func (r *registryUseCase) Create(
	ctx context.Context,
	caller uuid.UUID,
	raw []byte,
) (*claimsDomain.Registration, error) {
	claim, err := claimsDomain.NewClaim(raw, r.maxClaimLength)
	if err != nil {
		return nil, err
	}

	var registration *claimsDomain.Registration
	err = r.txManager.WithTx(ctx, func(txCtx context.Context) error {
		_, err := r.claimRepo.GetForUpdate(txCtx, claim)
		if err == nil {
			return claimsDomain.ErrProofAlreadyExists
		}
		if !errors.Is(err, claimsDomain.ErrNoSuchClaim) {
			return err
		}

		now, err := r.clock.Now(txCtx)
		if err != nil {
			return err
		}

		ts := time.Now().UTC()
		registration = &claimsDomain.Registration{
			Claim:        claim,
			Owner:        caller,
			RegisteredAt: now,
			CreatedAt:    ts,
			UpdatedAt:    ts,
		}
		if err := r.claimRepo.Create(txCtx, registration); err != nil {
			return err
		}

		return r.sink.Notify(txCtx, claimsDomain.Notification{
			Kind:   claimsDomain.ClaimCreated,
			Caller: caller,
			Claim:  claim,
			At:     now,
		})
	})
	if err != nil {
		return nil, err
	}

	return registration, nil
}

func (r *registryUseCase) Revoke(ctx context.Context, caller uuid.UUID, raw []byte) error {
	claim, err := claimsDomain.NewClaim(raw, r.maxClaimLength)
	if err != nil {
		return err
	}

	return r.txManager.WithTx(ctx, func(txCtx context.Context) error {
		if _, err := r.ownedForUpdate(txCtx, caller, claim); err != nil {
			return err
		}

		now, err := r.clock.Now(txCtx)
		if err != nil {
			return err
		}

		if err := r.claimRepo.Delete(txCtx, claim); err != nil {
			return err
		}

		return r.sink.Notify(txCtx, claimsDomain.Notification{
			Kind:   claimsDomain.ClaimRevoked,
			Caller: caller,
			Claim:  claim,
			At:     now,
		})
	})
}

func (r *registryUseCase) Transfer(
	ctx context.Context,
	caller, to uuid.UUID,
	raw []byte,
) (*claimsDomain.Registration, error) {
	claim, err := claimsDomain.NewClaim(raw, r.maxClaimLength)
	if err != nil {
		return nil, err
	}

	var registration *claimsDomain.Registration
	err = r.txManager.WithTx(ctx, func(txCtx context.Context) error {
		current, err := r.ownedForUpdate(txCtx, caller, claim)
		if err != nil {
			return err
		}

		now, err := r.clock.Now(txCtx)
		if err != nil {
			return err
		}

		registration = &claimsDomain.Registration{
			Claim:        claim,
			Owner:        to,
			RegisteredAt: now,
			CreatedAt:    current.CreatedAt,
			UpdatedAt:    time.Now().UTC(),
		}
		if err := r.claimRepo.Update(txCtx, registration); err != nil {
			return err
		}

		return r.sink.Notify(txCtx, claimsDomain.Notification{
			Kind:   claimsDomain.ClaimTransferred,
			Caller: caller,
			To:     to,
			Claim:  claim,
			At:     now,
		})
	})
	if err != nil {
		return nil, err
	}

	return registration, nil
}

func (r *registryUseCase) Get(ctx context.Context, raw []byte) (*claimsDomain.Registration, error) {
	claim, err := claimsDomain.NewClaim(raw, r.maxClaimLength)
	if err != nil {
		// A claim over the bound can never have been stored.
		return nil, claimsDomain.ErrNoSuchClaim
	}

	return r.claimRepo.Get(ctx, claim)
}

func (r *registryUseCase) ListByOwner(
	ctx context.Context,
	owner uuid.UUID,
	offset, limit int,
) ([]*claimsDomain.Registration, error) {
	return r.claimRepo.ListByOwner(ctx, owner, offset, limit)
}

// ownedForUpdate locks the registration of claim and checks that caller owns it.
func (r *registryUseCase) ownedForUpdate(
	ctx context.Context,
	caller uuid.UUID,
	claim claimsDomain.Claim,
) (*claimsDomain.Registration, error) {
	registration, err := r.claimRepo.GetForUpdate(ctx, claim)
	if err != nil {
		return nil, err
	}

	if registration.Owner != caller {
		return nil, claimsDomain.ErrNotClaimOwner
	}

	return registration, nil
}
