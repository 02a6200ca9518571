package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/claims/internal/auth/domain"
	"github.com/allisson/claims/internal/database"
	apperrors "github.com/allisson/claims/internal/errors"
)

const postgresTokenColumns = `id, token_hash, client_id, expires_at, revoked_at, created_at`

// PostgreSQLTokenRepository implements Token persistence for PostgreSQL.
type PostgreSQLTokenRepository struct {
	db *sql.DB
}

// Create inserts a new Token into the PostgreSQL database.
func (p *PostgreSQLTokenRepository) Create(ctx context.Context, token *authDomain.Token) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO tokens (` + postgresTokenColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := querier.ExecContext(
		ctx,
		query,
		token.ID,
		token.TokenHash,
		token.ClientID,
		token.ExpiresAt,
		token.RevokedAt,
		token.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create token")
	}
	return nil
}

// Update modifies the expiry and revocation of an existing Token.
func (p *PostgreSQLTokenRepository) Update(ctx context.Context, token *authDomain.Token) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE tokens
			  SET expires_at = $1,
				  revoked_at = $2
			  WHERE id = $3`

	result, err := querier.ExecContext(ctx, query, token.ExpiresAt, token.RevokedAt, token.ID)
	if err != nil {
		return apperrors.Wrap(err, "failed to update token")
	}

	return requireAffected(result, authDomain.ErrTokenNotFound)
}

// Get retrieves a Token by ID.
func (p *PostgreSQLTokenRepository) Get(ctx context.Context, tokenID uuid.UUID) (*authDomain.Token, error) {
	query := `SELECT ` + postgresTokenColumns + ` FROM tokens WHERE id = $1`
	return p.getOne(ctx, query, tokenID)
}

// GetByTokenHash retrieves a Token by the SHA-256 hash of its plain value.
func (p *PostgreSQLTokenRepository) GetByTokenHash(
	ctx context.Context,
	tokenHash string,
) (*authDomain.Token, error) {
	query := `SELECT ` + postgresTokenColumns + ` FROM tokens WHERE token_hash = $1`
	return p.getOne(ctx, query, tokenHash)
}

func (p *PostgreSQLTokenRepository) getOne(ctx context.Context, query string, arg any) (*authDomain.Token, error) {
	querier := database.GetTx(ctx, p.db)

	var token authDomain.Token

	err := querier.QueryRowContext(ctx, query, arg).Scan(
		&token.ID,
		&token.TokenHash,
		&token.ClientID,
		&token.ExpiresAt,
		&token.RevokedAt,
		&token.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, authDomain.ErrTokenNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get token")
	}

	return &token, nil
}

// DeleteExpired deletes tokens that expired before olderThan and returns how many were removed.
func (p *PostgreSQLTokenRepository) DeleteExpired(ctx context.Context, olderThan time.Time) (int64, error) {
	if olderThan.IsZero() {
		return 0, apperrors.New("olderThan timestamp cannot be zero")
	}

	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM tokens WHERE expires_at < $1`, olderThan)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete expired tokens")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get rows affected")
	}
	return rowsAffected, nil
}

// CountExpired counts tokens that expired before olderThan without deleting them.
func (p *PostgreSQLTokenRepository) CountExpired(ctx context.Context, olderThan time.Time) (int64, error) {
	if olderThan.IsZero() {
		return 0, apperrors.New("olderThan timestamp cannot be zero")
	}

	querier := database.GetTx(ctx, p.db)

	var count int64
	if err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM tokens WHERE expires_at < $1`, olderThan).
		Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count expired tokens")
	}
	return count, nil
}

// NewPostgreSQLTokenRepository creates a new PostgreSQL Token repository.
func NewPostgreSQLTokenRepository(db *sql.DB) *PostgreSQLTokenRepository {
	return &PostgreSQLTokenRepository{db: db}
}
