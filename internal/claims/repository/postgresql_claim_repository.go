package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	claimsDomain "github.com/allisson/claims/internal/claims/domain"
	"github.com/allisson/claims/internal/database"
	apperrors "github.com/allisson/claims/internal/errors"
)

// PostgreSQLClaimRepository implements claim persistence for PostgreSQL databases.
type PostgreSQLClaimRepository struct {
	db *sql.DB
}

// NewPostgreSQLClaimRepository creates a new PostgreSQL claim repository instance.
func NewPostgreSQLClaimRepository(db *sql.DB) *PostgreSQLClaimRepository {
	return &PostgreSQLClaimRepository{db: db}
}

// Get retrieves the registration of claim.
func (p *PostgreSQLClaimRepository) Get(
	ctx context.Context,
	claim claimsDomain.Claim,
) (*claimsDomain.Registration, error) {
	query := `SELECT owner, registered_at, created_at, updated_at 
			  FROM claims 
			  WHERE claim = $1`

	return p.get(ctx, query, claim)
}

// GetForUpdate retrieves the registration of claim and locks its row until the
// surrounding transaction ends.
func (p *PostgreSQLClaimRepository) GetForUpdate(
	ctx context.Context,
	claim claimsDomain.Claim,
) (*claimsDomain.Registration, error) {
	query := `SELECT owner, registered_at, created_at, updated_at 
			  FROM claims 
			  WHERE claim = $1 
			  FOR UPDATE`

	return p.get(ctx, query, claim)
}

func (p *PostgreSQLClaimRepository) get(
	ctx context.Context,
	query string,
	claim claimsDomain.Claim,
) (*claimsDomain.Registration, error) {
	querier := database.GetTx(ctx, p.db)

	registration := claimsDomain.Registration{Claim: claim}
	var registeredAt int64
	err := querier.QueryRowContext(ctx, query, claim.Bytes()).Scan(
		&registration.Owner,
		&registeredAt,
		&registration.CreatedAt,
		&registration.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, claimsDomain.ErrNoSuchClaim
		}
		return nil, apperrors.Wrap(err, "failed to get claim")
	}
	registration.RegisteredAt = claimsDomain.LogicalTime(registeredAt)

	return &registration, nil
}

// Create inserts a new registration. A primary key violation means a concurrent
// transaction registered the same claim first.
func (p *PostgreSQLClaimRepository) Create(ctx context.Context, registration *claimsDomain.Registration) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO claims (claim, owner, registered_at, created_at, updated_at) 
			  VALUES ($1, $2, $3, $4, $5)`

	_, err := querier.ExecContext(
		ctx,
		query,
		registration.Claim.Bytes(),
		registration.Owner,
		int64(registration.RegisteredAt),
		registration.CreatedAt,
		registration.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return claimsDomain.ErrProofAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create claim")
	}
	return nil
}

// Update overwrites the owner and registration time of an existing claim.
func (p *PostgreSQLClaimRepository) Update(ctx context.Context, registration *claimsDomain.Registration) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE claims 
			  SET owner = $1, registered_at = $2, updated_at = $3 
			  WHERE claim = $4`

	result, err := querier.ExecContext(
		ctx,
		query,
		registration.Owner,
		int64(registration.RegisteredAt),
		registration.UpdatedAt,
		registration.Claim.Bytes(),
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update claim")
	}

	return checkAffected(result)
}

// Delete removes the registration of claim.
func (p *PostgreSQLClaimRepository) Delete(ctx context.Context, claim claimsDomain.Claim) error {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM claims WHERE claim = $1`, claim.Bytes())
	if err != nil {
		return apperrors.Wrap(err, "failed to delete claim")
	}

	return checkAffected(result)
}

// ListByOwner retrieves the registrations of owner ordered by registration time, then claim.
func (p *PostgreSQLClaimRepository) ListByOwner(
	ctx context.Context,
	owner uuid.UUID,
	offset, limit int,
) ([]*claimsDomain.Registration, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT claim, owner, registered_at, created_at, updated_at 
			  FROM claims 
			  WHERE owner = $1 
			  ORDER BY registered_at ASC, claim ASC 
			  LIMIT $2 OFFSET $3`

	rows, err := querier.QueryContext(ctx, query, owner, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list claims")
	}
	defer rows.Close() //nolint:errcheck

	registrations := make([]*claimsDomain.Registration, 0)
	for rows.Next() {
		var (
			raw          []byte
			registeredAt int64
			registration claimsDomain.Registration
		)
		if err := rows.Scan(
			&raw,
			&registration.Owner,
			&registeredAt,
			&registration.CreatedAt,
			&registration.UpdatedAt,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan claim")
		}

		registration.Claim = storedClaim(raw)
		registration.RegisteredAt = claimsDomain.LogicalTime(registeredAt)
		registrations = append(registrations, &registration)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate claims")
	}

	return registrations, nil
}

// storedClaim wraps bytes read back from storage. The bound is not re-applied: rows
// written under a larger bound stay readable after the bound is lowered.
func storedClaim(raw []byte) claimsDomain.Claim {
	claim, _ := claimsDomain.NewClaim(raw, len(raw))
	return claim
}

func checkAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if affected == 0 {
		return claimsDomain.ErrNoSuchClaim
	}
	return nil
}
