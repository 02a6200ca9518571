package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/allisson/claims/internal/app"
	claimsDomain "github.com/allisson/claims/internal/claims/domain"
	"github.com/allisson/claims/internal/claims/http/dto"
	claimsUseCase "github.com/allisson/claims/internal/claims/usecase"
	"github.com/allisson/claims/internal/httputil"
)

// OpenRegistry returns the registry of container for the read commands. The memory
// driver is refused: its store lives in the server process, so a fresh one is always empty.
func OpenRegistry(container *app.Container) (claimsUseCase.RegistryUseCase, error) {
	if container.IsMemory() {
		return nil, fmt.Errorf(
			"claim commands require a SQL database driver, got %q",
			container.Config().DBDriver,
		)
	}
	return container.RegistryUseCase()
}

// RunGetClaim prints the registration of the hex encoded claim.
//
// Requirements: a SQL driver, since the memory store belongs to the server process.
func RunGetClaim(
	ctx context.Context,
	registryUseCase claimsUseCase.RegistryUseCase,
	io IOTuple,
	claimHex string,
	format string,
) error {
	raw, err := claimsDomain.DecodeHex(claimHex)
	if err != nil {
		return err
	}

	registration, err := registryUseCase.Get(ctx, raw)
	if err != nil {
		return fmt.Errorf("failed to get claim: %w", err)
	}

	if format == "json" {
		return writeJSON(io.Writer, dto.MapRegistrationToResponse(registration))
	}
	outputRegistrationText(io.Writer, registration)
	return nil
}

// RunListClaims prints one page of the registrations owned by ownerStr.
func RunListClaims(
	ctx context.Context,
	registryUseCase claimsUseCase.RegistryUseCase,
	io IOTuple,
	ownerStr string,
	offset int,
	limit int,
	format string,
) error {
	owner, err := uuid.Parse(ownerStr)
	if err != nil {
		return fmt.Errorf("invalid owner format: %w", err)
	}
	if offset < 0 {
		return fmt.Errorf("offset must be a non-negative integer")
	}
	if limit < 1 || limit > httputil.MaxPageLimit {
		return fmt.Errorf("limit must be between 1 and %d", httputil.MaxPageLimit)
	}

	registrations, err := registryUseCase.ListByOwner(ctx, owner, offset, limit)
	if err != nil {
		return fmt.Errorf("failed to list claims: %w", err)
	}

	if format == "json" {
		return writeJSON(io.Writer, dto.MapRegistrationsToListResponse(registrations))
	}
	if len(registrations) == 0 {
		_, _ = fmt.Fprintln(io.Writer, "No claims found.")
		return nil
	}
	for i, registration := range registrations {
		if i > 0 {
			_, _ = fmt.Fprintln(io.Writer)
		}
		outputRegistrationText(io.Writer, registration)
	}
	return nil
}

func outputRegistrationText(writer io.Writer, registration *claimsDomain.Registration) {
	_, _ = fmt.Fprintf(writer, "Claim: %s\n", registration.Claim.Hex())
	_, _ = fmt.Fprintf(writer, "Owner: %s\n", registration.Owner.String())
	_, _ = fmt.Fprintf(writer, "Registered at block: %d\n", uint64(registration.RegisteredAt))
}
