// Package dto provides request and response bodies of the authentication endpoints.
package dto

import (
	"time"

	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/claims/internal/validation"
)

// IssueTokenRequest contains the client credentials exchanged for a token.
type IssueTokenRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"` //nolint:gosec // request field, never logged
}

// Validate checks if the issue token request is valid. A valid request has a parseable
// client_id.
func (r *IssueTokenRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ClientID,
			validation.Required,
			customValidation.UUID,
		),
		validation.Field(&r.ClientSecret,
			validation.Required,
			customValidation.NotBlank,
		),
	)
}

// IssueTokenResponse contains a newly issued token. The token is returned only once.
type IssueTokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
