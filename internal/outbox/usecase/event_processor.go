package usecase

import (
	"context"
	"fmt"
	"log/slog"

	claimsDomain "github.com/allisson/claims/internal/claims/domain"
	"github.com/allisson/claims/internal/outbox/domain"
)

// LoggingEventProcessor writes every claim notification to the structured log. It is the
// processor used when no broker is configured.
type LoggingEventProcessor struct {
	logger *slog.Logger
}

// NewLoggingEventProcessor creates a new LoggingEventProcessor
func NewLoggingEventProcessor(logger *slog.Logger) *LoggingEventProcessor {
	return &LoggingEventProcessor{
		logger: logger,
	}
}

// Process decodes the notification and logs it.
func (p *LoggingEventProcessor) Process(ctx context.Context, event *domain.OutboxEvent) error {
	notification, err := claimsDomain.UnmarshalNotification([]byte(event.Payload))
	if err != nil {
		return fmt.Errorf("failed to decode notification: %w", err)
	}

	switch notification.Kind {
	case claimsDomain.ClaimCreated, claimsDomain.ClaimRevoked:
		p.logger.InfoContext(ctx, string(notification.Kind),
			slog.String("claim", notification.Claim.Hex()),
			slog.String("caller", notification.Caller.String()),
			slog.Uint64("at", uint64(notification.At)),
		)
	case claimsDomain.ClaimTransferred:
		p.logger.InfoContext(ctx, string(notification.Kind),
			slog.String("claim", notification.Claim.Hex()),
			slog.String("caller", notification.Caller.String()),
			slog.String("to", notification.To.String()),
			slog.Uint64("at", uint64(notification.At)),
		)
	default:
		p.logger.WarnContext(ctx, "unknown event type", slog.String("event_type", event.EventType))
	}

	return nil
}
