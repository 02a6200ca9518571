// Package dto provides request and response bodies of the claim registry endpoints.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/claims/internal/validation"
)

// CreateClaimRequest registers a hex-encoded claim. An empty string is the empty claim,
// so only the presence of the field is required.
type CreateClaimRequest struct {
	Claim *string `json:"claim"`
}

// Validate checks if the create claim request is valid.
func (r *CreateClaimRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Claim,
			validation.NotNil,
			customValidation.Hex,
		),
	)
}

// TransferClaimRequest names the identity receiving the claim.
type TransferClaimRequest struct {
	To string `json:"to"`
}

// Validate checks if the transfer request is valid.
func (r *TransferClaimRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.To,
			validation.Required,
			customValidation.UUID,
		),
	)
}
