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

// MySQLMaxClaimLength is the size of the claims.claim VARBINARY column.
const MySQLMaxClaimLength = 3072

// MySQLClaimRepository implements claim persistence for MySQL databases. Owners are
// stored as BINARY(16).
type MySQLClaimRepository struct {
	db *sql.DB
}

// NewMySQLClaimRepository creates a new MySQL claim repository instance.
func NewMySQLClaimRepository(db *sql.DB) *MySQLClaimRepository {
	return &MySQLClaimRepository{db: db}
}

// Get retrieves the registration of claim.
func (m *MySQLClaimRepository) Get(
	ctx context.Context,
	claim claimsDomain.Claim,
) (*claimsDomain.Registration, error) {
	query := `SELECT owner, registered_at, created_at, updated_at 
			  FROM claims 
			  WHERE claim = ?`

	return m.get(ctx, query, claim)
}

// GetForUpdate retrieves the registration of claim and locks its row until the
// surrounding transaction ends.
func (m *MySQLClaimRepository) GetForUpdate(
	ctx context.Context,
	claim claimsDomain.Claim,
) (*claimsDomain.Registration, error) {
	query := `SELECT owner, registered_at, created_at, updated_at 
			  FROM claims 
			  WHERE claim = ? 
			  FOR UPDATE`

	return m.get(ctx, query, claim)
}

func (m *MySQLClaimRepository) get(
	ctx context.Context,
	query string,
	claim claimsDomain.Claim,
) (*claimsDomain.Registration, error) {
	querier := database.GetTx(ctx, m.db)

	registration := claimsDomain.Registration{Claim: claim}
	var (
		ownerBytes   []byte
		registeredAt uint64
	)
	err := querier.QueryRowContext(ctx, query, claim.Bytes()).Scan(
		&ownerBytes,
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

	if err := registration.Owner.UnmarshalBinary(ownerBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal owner")
	}
	registration.RegisteredAt = claimsDomain.LogicalTime(registeredAt)

	return &registration, nil
}

// Create inserts a new registration. A duplicate entry means a concurrent transaction
// registered the same claim first.
func (m *MySQLClaimRepository) Create(ctx context.Context, registration *claimsDomain.Registration) error {
	querier := database.GetTx(ctx, m.db)

	ownerBytes, err := registration.Owner.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal owner")
	}

	query := `INSERT INTO claims (claim, owner, registered_at, created_at, updated_at) 
			  VALUES (?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		registration.Claim.Bytes(),
		ownerBytes,
		uint64(registration.RegisteredAt),
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
func (m *MySQLClaimRepository) Update(ctx context.Context, registration *claimsDomain.Registration) error {
	querier := database.GetTx(ctx, m.db)

	ownerBytes, err := registration.Owner.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal owner")
	}

	query := `UPDATE claims 
			  SET owner = ?, registered_at = ?, updated_at = ? 
			  WHERE claim = ?`

	result, err := querier.ExecContext(
		ctx,
		query,
		ownerBytes,
		uint64(registration.RegisteredAt),
		registration.UpdatedAt,
		registration.Claim.Bytes(),
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update claim")
	}

	return checkAffected(result)
}

// Delete removes the registration of claim.
func (m *MySQLClaimRepository) Delete(ctx context.Context, claim claimsDomain.Claim) error {
	querier := database.GetTx(ctx, m.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM claims WHERE claim = ?`, claim.Bytes())
	if err != nil {
		return apperrors.Wrap(err, "failed to delete claim")
	}

	return checkAffected(result)
}

// ListByOwner retrieves the registrations of owner ordered by registration time, then claim.
func (m *MySQLClaimRepository) ListByOwner(
	ctx context.Context,
	owner uuid.UUID,
	offset, limit int,
) ([]*claimsDomain.Registration, error) {
	querier := database.GetTx(ctx, m.db)

	ownerBytes, err := owner.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal owner")
	}

	query := `SELECT claim, registered_at, created_at, updated_at 
			  FROM claims 
			  WHERE owner = ? 
			  ORDER BY registered_at ASC, claim ASC 
			  LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, ownerBytes, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list claims")
	}
	defer rows.Close() //nolint:errcheck

	registrations := make([]*claimsDomain.Registration, 0)
	for rows.Next() {
		var (
			raw          []byte
			registeredAt uint64
		)
		registration := claimsDomain.Registration{Owner: owner}
		if err := rows.Scan(
			&raw,
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
