// Package usecase implements the outbox worker that delivers claim notifications after
// their registry transaction has committed.
package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/allisson/claims/internal/database"
	"github.com/allisson/claims/internal/outbox/domain"
)

// Config holds outbox use case configuration
type Config struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
}

// OutboxEventRepository defines outbox event repository operations
type OutboxEventRepository interface {
	Create(ctx context.Context, event *domain.OutboxEvent) error
	GetPendingEvents(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	Update(ctx context.Context, event *domain.OutboxEvent) error
}

// EventProcessor delivers a single outbox event. A returned error leaves the event
// pending for a later attempt.
type EventProcessor interface {
	Process(ctx context.Context, event *domain.OutboxEvent) error
}

// UseCase defines the interface for outbox use cases
type UseCase interface {
	Start(ctx context.Context) error
	ProcessEvents(ctx context.Context) error
}

// OutboxUseCase implements business logic for processing outbox events
type OutboxUseCase struct {
	config         Config
	txManager      database.TxManager
	outboxRepo     OutboxEventRepository
	eventProcessor EventProcessor
	logger         *slog.Logger
}

// NewOutboxUseCase creates a new OutboxUseCase
func NewOutboxUseCase(
	config Config,
	txManager database.TxManager,
	outboxRepo OutboxEventRepository,
	eventProcessor EventProcessor,
	logger *slog.Logger,
) *OutboxUseCase {
	return &OutboxUseCase{
		config:         config,
		txManager:      txManager,
		outboxRepo:     outboxRepo,
		eventProcessor: eventProcessor,
		logger:         logger,
	}
}

// Start starts the outbox event processing loop
func (uc *OutboxUseCase) Start(ctx context.Context) error {
	if uc.logger != nil {
		uc.logger.Info("starting outbox event processor",
			slog.Duration("interval", uc.config.Interval),
			slog.Int("batch_size", uc.config.BatchSize),
		)
	}

	ticker := time.NewTicker(uc.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if uc.logger != nil {
				uc.logger.Info("stopping outbox event processor")
			}
			return ctx.Err()
		case <-ticker.C:
			if err := uc.ProcessEvents(ctx); err != nil {
				if uc.logger != nil {
					uc.logger.Error("failed to process events", slog.Any("error", err))
				}
			}
		}
	}
}

// ProcessEvents retrieves and processes pending events from the outbox in a transaction.
//
// The in-memory store has no row locks: its transaction is the store-wide mutex that
// every registry write also takes. There each repository call locks on its own and
// delivery runs unlocked, so a slow processor never stalls the registry.
func (uc *OutboxUseCase) ProcessEvents(ctx context.Context) error {
	if _, ok := uc.txManager.(*database.LockTxManager); ok {
		return uc.processBatch(ctx)
	}
	return uc.txManager.WithTx(ctx, uc.processBatch)
}

func (uc *OutboxUseCase) processBatch(ctx context.Context) error {
	events, err := uc.outboxRepo.GetPendingEvents(ctx, uc.config.BatchSize)
	if err != nil {
		return err
	}

	if len(events) == 0 {
		return nil
	}

	if uc.logger != nil {
		uc.logger.Info("processing events", slog.Int("count", len(events)))
	}

	for _, event := range events {
		if err := uc.processEvent(ctx, event); err != nil {
			if uc.logger != nil {
				uc.logger.Error("failed to process event",
					slog.String("event_id", event.ID.String()),
					slog.String("event_type", event.EventType),
					slog.Any("error", err),
				)
			}

			event.MarkAttemptFailed(err, uc.config.MaxRetries)
			if err := uc.outboxRepo.Update(ctx, event); err != nil {
				return err
			}
			continue
		}

		event.MarkProcessed(time.Now().UTC())
		if err := uc.outboxRepo.Update(ctx, event); err != nil {
			return err
		}
	}

	return nil
}

// processEvent handles a single outbox event using the configured event processor
func (uc *OutboxUseCase) processEvent(ctx context.Context, event *domain.OutboxEvent) error {
	if uc.logger != nil {
		uc.logger.Info("processing event",
			slog.String("event_id", event.ID.String()),
			slog.String("event_type", event.EventType),
		)
	}

	return uc.eventProcessor.Process(ctx, event)
}
