// Package domain defines the authentication models that identify registry callers.
// A client authenticates with its secret, receives a bearer token, and its ID becomes the
// identity recorded as claim owner.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Client is an API caller.
type Client struct {
	ID        uuid.UUID // Unique identifier (UUIDv7), used as the registry identity
	Secret    string    //nolint:gosec // hashed client secret (not plaintext)
	Name      string
	IsActive  bool // Inactive clients cannot issue or use tokens
	CreatedAt time.Time
}

// CreateClientInput contains the parameters for creating a new client. The secret is
// always generated.
type CreateClientInput struct {
	Name     string
	IsActive bool
}

// CreateClientOutput contains the result of creating a new client.
// The PlainSecret is returned only once.
type CreateClientOutput struct {
	ID          uuid.UUID
	PlainSecret string
}

// UpdateClientInput contains the mutable fields of a client.
type UpdateClientInput struct {
	Name     string
	IsActive bool
}
