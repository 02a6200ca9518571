// Package domain defines the core domain models of the claim registry. A claim is an
// opaque, length-bounded byte string (typically a proof digest) that maps to the identity
// that registered it and the logical time of registration.
package domain

import (
	"bytes"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// DefaultMaxClaimLength is the claim bound used when none is configured.
const DefaultMaxClaimLength = 512

// LogicalTime is a monotonically non-decreasing block height.
type LogicalTime uint64

// Claim is a claim whose length has been checked against the registry bound.
// The zero value is the empty claim.
type Claim struct {
	raw string
}

// NewClaim returns a Claim for raw, or ErrClaimTooLong when raw exceeds maxLength bytes.
// The input slice is copied.
func NewClaim(raw []byte, maxLength int) (Claim, error) {
	if len(raw) > maxLength {
		return Claim{}, ErrClaimTooLong
	}
	return Claim{raw: string(raw)}, nil
}

// DecodeHex decodes hex-encoded claim bytes without bounding them.
func DecodeHex(s string) ([]byte, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, ErrInvalidClaimEncoding
	}
	return raw, nil
}

// ParseHexClaim decodes a hex string and bounds it with NewClaim.
func ParseHexClaim(s string, maxLength int) (Claim, error) {
	raw, err := DecodeHex(s)
	if err != nil {
		return Claim{}, err
	}
	return NewClaim(raw, maxLength)
}

// Bytes returns a copy of the claim bytes.
func (c Claim) Bytes() []byte {
	return []byte(c.raw)
}

// Len returns the claim length in bytes.
func (c Claim) Len() int {
	return len(c.raw)
}

// Hex returns the lowercase hex encoding of the claim.
func (c Claim) Hex() string {
	return hex.EncodeToString([]byte(c.raw))
}

// String implements fmt.Stringer.
func (c Claim) String() string {
	return c.Hex()
}

// Equal reports whether both claims hold the same bytes.
func (c Claim) Equal(other Claim) bool {
	return c.raw == other.raw
}

// Compare orders claims by their bytes.
func (c Claim) Compare(other Claim) int {
	return bytes.Compare([]byte(c.raw), []byte(other.raw))
}

// Registration is the record stored for a claim.
type Registration struct {
	Claim        Claim
	Owner        uuid.UUID
	RegisteredAt LogicalTime
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
