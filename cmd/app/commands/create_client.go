package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	authDomain "github.com/allisson/claims/internal/auth/domain"
	authUseCase "github.com/allisson/claims/internal/auth/usecase"
)

// RunCreateClient creates a new authentication client and prints its ID and plain secret
// in text or JSON format. The secret cannot be recovered afterwards.
//
// Requirements: Database must be migrated and accessible.
func RunCreateClient(
	ctx context.Context,
	clientUseCase authUseCase.ClientUseCase,
	logger *slog.Logger,
	name string,
	isActive bool,
	format string,
	io IOTuple,
) error {
	logger.Info("creating new client", slog.String("name", name))

	if name == "" {
		return fmt.Errorf("client name cannot be empty")
	}

	output, err := clientUseCase.Create(ctx, &authDomain.CreateClientInput{
		Name:     name,
		IsActive: isActive,
	})
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	if format == "json" {
		err = writeJSON(io.Writer, map[string]string{
			"client_id": output.ID.String(),
			"secret":    output.PlainSecret,
		})
	} else {
		outputCreateText(io.Writer, output)
	}
	if err != nil {
		return err
	}

	logger.Info("client created successfully",
		slog.String("client_id", output.ID.String()),
		slog.String("name", name),
		slog.Bool("is_active", isActive),
	)

	return nil
}

func outputCreateText(writer io.Writer, output *authDomain.CreateClientOutput) {
	_, _ = fmt.Fprintln(writer, "\nClient created successfully!")
	_, _ = fmt.Fprintf(writer, "Client ID: %s\n", output.ID.String())
	_, _ = fmt.Fprintf(writer, "Secret: %s\n", output.PlainSecret)
	_, _ = fmt.Fprintln(writer, "\nIMPORTANT: The secret is shown only once. Store it securely.")
}
