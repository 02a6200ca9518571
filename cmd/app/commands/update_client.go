package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	authDomain "github.com/allisson/claims/internal/auth/domain"
	authUseCase "github.com/allisson/claims/internal/auth/usecase"
)

// RunUpdateClient changes the name and active status of an existing client. The client ID
// and secret remain unchanged. Deactivating a client makes its tokens unusable.
//
// Requirements: Database must be migrated and the client must exist.
func RunUpdateClient(
	ctx context.Context,
	clientUseCase authUseCase.ClientUseCase,
	logger *slog.Logger,
	io IOTuple,
	clientIDStr string,
	name string,
	isActive bool,
	format string,
) error {
	logger.Info("updating client", slog.String("client_id", clientIDStr))

	clientID, err := uuid.Parse(clientIDStr)
	if err != nil {
		return fmt.Errorf("invalid client ID format: %w", err)
	}

	existingClient, err := clientUseCase.Get(ctx, clientID)
	if err != nil {
		return fmt.Errorf("failed to get existing client: %w", err)
	}

	if name == "" {
		name = existingClient.Name
	}

	input := &authDomain.UpdateClientInput{
		Name:     name,
		IsActive: isActive,
	}
	if err := clientUseCase.Update(ctx, clientID, input); err != nil {
		return fmt.Errorf("failed to update client: %w", err)
	}

	if format == "json" {
		err = writeJSON(io.Writer, map[string]interface{}{
			"client_id": clientID.String(),
			"name":      name,
			"is_active": isActive,
		})
		if err != nil {
			return err
		}
	} else {
		outputUpdateText(io.Writer, clientID, name, isActive)
	}

	logger.Info("client updated successfully",
		slog.String("client_id", clientID.String()),
		slog.String("name", name),
		slog.Bool("is_active", isActive),
	)

	return nil
}

func outputUpdateText(writer io.Writer, clientID uuid.UUID, name string, isActive bool) {
	_, _ = fmt.Fprintln(writer, "\nClient updated successfully!")
	_, _ = fmt.Fprintf(writer, "Client ID: %s\n", clientID.String())
	_, _ = fmt.Fprintf(writer, "Name: %s\n", name)
	_, _ = fmt.Fprintf(writer, "Active: %t\n", isActive)
}
