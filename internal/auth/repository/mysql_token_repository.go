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

const mysqlTokenColumns = `id, token_hash, client_id, expires_at, revoked_at, created_at`

// MySQLTokenRepository implements Token persistence for MySQL using BINARY(16) IDs.
type MySQLTokenRepository struct {
	db *sql.DB
}

// Create inserts a new Token into the MySQL database.
func (m *MySQLTokenRepository) Create(ctx context.Context, token *authDomain.Token) error {
	querier := database.GetTx(ctx, m.db)

	id, err := token.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal token id")
	}
	clientID, err := token.ClientID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal client id")
	}

	query := `INSERT INTO tokens (` + mysqlTokenColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		token.TokenHash,
		clientID,
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
func (m *MySQLTokenRepository) Update(ctx context.Context, token *authDomain.Token) error {
	querier := database.GetTx(ctx, m.db)

	id, err := token.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal token id")
	}

	query := `UPDATE tokens
			  SET expires_at = ?,
				  revoked_at = ?
			  WHERE id = ?`

	result, err := querier.ExecContext(ctx, query, token.ExpiresAt, token.RevokedAt, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to update token")
	}

	return requireAffected(result, authDomain.ErrTokenNotFound)
}

// Get retrieves a Token by ID.
func (m *MySQLTokenRepository) Get(ctx context.Context, tokenID uuid.UUID) (*authDomain.Token, error) {
	id, err := tokenID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal token id")
	}

	query := `SELECT ` + mysqlTokenColumns + ` FROM tokens WHERE id = ?`
	return m.getOne(ctx, query, id)
}

// GetByTokenHash retrieves a Token by the SHA-256 hash of its plain value.
func (m *MySQLTokenRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*authDomain.Token, error) {
	query := `SELECT ` + mysqlTokenColumns + ` FROM tokens WHERE token_hash = ?`
	return m.getOne(ctx, query, tokenHash)
}

func (m *MySQLTokenRepository) getOne(ctx context.Context, query string, arg any) (*authDomain.Token, error) {
	querier := database.GetTx(ctx, m.db)

	var token authDomain.Token
	var idBytes, clientIDBytes []byte

	err := querier.QueryRowContext(ctx, query, arg).Scan(
		&idBytes,
		&token.TokenHash,
		&clientIDBytes,
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

	if err := token.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal token id")
	}
	if err := token.ClientID.UnmarshalBinary(clientIDBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal client id")
	}

	return &token, nil
}

// DeleteExpired deletes tokens that expired before olderThan and returns how many were removed.
func (m *MySQLTokenRepository) DeleteExpired(ctx context.Context, olderThan time.Time) (int64, error) {
	if olderThan.IsZero() {
		return 0, apperrors.New("olderThan timestamp cannot be zero")
	}

	querier := database.GetTx(ctx, m.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM tokens WHERE expires_at < ?`, olderThan)
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
func (m *MySQLTokenRepository) CountExpired(ctx context.Context, olderThan time.Time) (int64, error) {
	if olderThan.IsZero() {
		return 0, apperrors.New("olderThan timestamp cannot be zero")
	}

	querier := database.GetTx(ctx, m.db)

	var count int64
	if err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM tokens WHERE expires_at < ?`, olderThan).
		Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count expired tokens")
	}
	return count, nil
}

// NewMySQLTokenRepository creates a new MySQL Token repository.
func NewMySQLTokenRepository(db *sql.DB) *MySQLTokenRepository {
	return &MySQLTokenRepository{db: db}
}
