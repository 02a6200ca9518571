package domain

import (
	"github.com/allisson/claims/internal/errors"
)

// Claim registry errors.
var (
	// ErrClaimTooLong indicates the claim exceeds the configured maximum length.
	ErrClaimTooLong = errors.Wrap(errors.ErrInvalidInput, "claim too long")

	// ErrProofAlreadyExists indicates the claim is already registered.
	ErrProofAlreadyExists = errors.Wrap(errors.ErrConflict, "proof already exists")

	// ErrNoSuchClaim indicates the claim is not registered.
	ErrNoSuchClaim = errors.Wrap(errors.ErrNotFound, "no such claim")

	// ErrNotClaimOwner indicates the caller is not the registered owner of the claim.
	ErrNotClaimOwner = errors.Wrap(errors.ErrForbidden, "not claim owner")

	// ErrInvalidClaimEncoding indicates a claim could not be decoded from hex.
	ErrInvalidClaimEncoding = errors.Wrap(errors.ErrInvalidInput, "invalid claim encoding")
)
