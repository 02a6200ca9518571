package domain

import (
	"time"

	"github.com/google/uuid"
)

// Token is an issued bearer token. Only its SHA-256 hash is stored.
type Token struct {
	ID        uuid.UUID
	TokenHash string
	ClientID  uuid.UUID
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}

// IsValid reports whether the token can still authenticate at now.
func (t *Token) IsValid(now time.Time) bool {
	return t.RevokedAt == nil && now.Before(t.ExpiresAt)
}

// IssueTokenInput holds client credentials exchanged for a token.
type IssueTokenInput struct {
	ClientID     uuid.UUID
	ClientSecret string //nolint:gosec // plaintext credential, never persisted
}

// IssueTokenOutput holds a newly issued token. PlainToken is returned only once.
type IssueTokenOutput struct {
	PlainToken string
	ExpiresAt  time.Time
}
