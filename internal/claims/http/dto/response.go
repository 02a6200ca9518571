package dto

import (
	"time"

	claimsDomain "github.com/allisson/claims/internal/claims/domain"
)

// RegistrationResponse is the JSON form of a registration.
type RegistrationResponse struct {
	Claim        string    `json:"claim"`
	Owner        string    `json:"owner"`
	RegisteredAt uint64    `json:"registered_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ListRegistrationsResponse wraps a page of registrations.
type ListRegistrationsResponse struct {
	Data []RegistrationResponse `json:"data"`
}

// MapRegistrationToResponse converts a domain registration to its response form.
func MapRegistrationToResponse(registration *claimsDomain.Registration) RegistrationResponse {
	return RegistrationResponse{
		Claim:        registration.Claim.Hex(),
		Owner:        registration.Owner.String(),
		RegisteredAt: uint64(registration.RegisteredAt),
		CreatedAt:    registration.CreatedAt,
		UpdatedAt:    registration.UpdatedAt,
	}
}

// MapRegistrationsToListResponse converts registrations to a list response. The data
// field is never null.
func MapRegistrationsToListResponse(registrations []*claimsDomain.Registration) ListRegistrationsResponse {
	data := make([]RegistrationResponse, 0, len(registrations))
	for _, registration := range registrations {
		data = append(data, MapRegistrationToResponse(registration))
	}
	return ListRegistrationsResponse{Data: data}
}
