package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	authUseCase "github.com/allisson/claims/internal/auth/usecase"
)

// RunCleanExpiredTokens deletes bearer tokens that expired more than days ago. With dryRun
// set it only reports how many would be deleted.
//
// Requirements: Database must be migrated and accessible.
func RunCleanExpiredTokens(
	ctx context.Context,
	tokenUseCase authUseCase.TokenUseCase,
	logger *slog.Logger,
	io IOTuple,
	days int,
	dryRun bool,
	format string,
) error {
	if days < 0 {
		return fmt.Errorf("days must be a positive number, got: %d", days)
	}

	logger.Info("cleaning expired tokens",
		slog.Int("days", days),
		slog.Bool("dry_run", dryRun),
	)

	count, err := tokenUseCase.CleanupExpired(ctx, days, dryRun)
	if err != nil {
		return fmt.Errorf("failed to cleanup expired tokens: %w", err)
	}

	if format == "json" {
		err = writeJSON(io.Writer, map[string]any{
			"count":   count,
			"days":    days,
			"dry_run": dryRun,
		})
	} else {
		err = outputCleanExpiredText(io.Writer, count, days, dryRun)
	}
	if err != nil {
		return err
	}

	logger.Info("cleanup completed",
		slog.Int64("count", count),
		slog.Int("days", days),
		slog.Bool("dry_run", dryRun),
	)
	return nil
}

func outputCleanExpiredText(writer io.Writer, count int64, days int, dryRun bool) error {
	if dryRun {
		_, err := fmt.Fprintf(writer, "Dry-run mode: Would delete %d expired token(s) older than %d day(s)\n", count, days)
		return err
	}
	_, err := fmt.Fprintf(writer, "Successfully deleted %d expired token(s) older than %d day(s)\n", count, days)
	return err
}
