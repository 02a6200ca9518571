package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/allisson/claims/internal/app"
	"github.com/allisson/claims/internal/config"
	outboxUseCase "github.com/allisson/claims/internal/outbox/usecase"
)

// RunOutboxWorker delivers committed claim notifications until SIGINT/SIGTERM. With Kafka
// brokers configured the notification topic is created first if missing.
//
// Requirements: a SQL driver. The memory outbox is drained by the server process itself.
func RunOutboxWorker(ctx context.Context) error {
	cfg := config.Load()
	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	if container.IsMemory() {
		return fmt.Errorf("outbox worker requires a SQL database driver, got %q", cfg.DBDriver)
	}

	worker, err := container.OutboxUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize outbox worker: %w", err)
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	processor, err := container.EventProcessor()
	if err != nil {
		return fmt.Errorf("failed to initialize event processor: %w", err)
	}
	if _, ok := processor.(*outboxUseCase.KafkaEventProcessor); ok {
		if err := ensureKafkaTopic(ctx, container); err != nil {
			return err
		}
		logger.Info("delivering notifications to kafka",
			slog.Any("brokers", container.KafkaBrokers()),
			slog.String("topic", cfg.KafkaTopic),
		)
	}

	return ignoreCanceled(worker.Start(ctx))
}

func ensureKafkaTopic(ctx context.Context, container *app.Container) error {
	client, err := container.KafkaClient()
	if err != nil {
		return fmt.Errorf("failed to get kafka client: %w", err)
	}
	if err := outboxUseCase.EnsureTopic(ctx, client, container.Config().KafkaTopic); err != nil {
		return err
	}
	return nil
}
