package clock

import (
	"context"
	"log/slog"
	"time"
)

// Producer advances a clock once per interval.
type Producer struct {
	advancer Advancer
	interval time.Duration
	logger   *slog.Logger
}

// NewProducer creates a new Producer
func NewProducer(advancer Advancer, interval time.Duration, logger *slog.Logger) *Producer {
	return &Producer{
		advancer: advancer,
		interval: interval,
		logger:   logger,
	}
}

// Start runs the block production loop until ctx is canceled. Failed ticks are logged and
// retried on the next tick.
func (p *Producer) Start(ctx context.Context) error {
	p.logger.Info("starting block producer", slog.Duration("interval", p.interval))

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("stopping block producer")
			return ctx.Err()
		case <-ticker.C:
			height, err := p.advancer.Advance(ctx)
			if err != nil {
				p.logger.Error("failed to advance block height", slog.Any("error", err))
				continue
			}
			p.logger.Debug("block produced", slog.Uint64("height", uint64(height)))
		}
	}
}
