package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/twmb/franz-go/pkg/kgo"

	outboxRepository "github.com/allisson/claims/internal/outbox/repository"
	outboxUseCase "github.com/allisson/claims/internal/outbox/usecase"
)

// OutboxRepository returns the outbox event repository for the configured driver.
func (c *Container) OutboxRepository() (outboxUseCase.OutboxEventRepository, error) {
	var err error
	c.outboxRepositoryInit.Do(func() {
		c.outboxRepository, err = c.initOutboxRepository()
		if err != nil {
			c.setInitError("outboxRepository", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("outboxRepository"); storedErr != nil {
		return nil, storedErr
	}
	return c.outboxRepository, nil
}

// EventProcessor returns the Kafka processor when brokers are configured, otherwise the
// logging processor.
func (c *Container) EventProcessor() (outboxUseCase.EventProcessor, error) {
	var err error
	c.eventProcessorInit.Do(func() {
		c.eventProcessor, err = c.initEventProcessor()
		if err != nil {
			c.setInitError("eventProcessor", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("eventProcessor"); storedErr != nil {
		return nil, storedErr
	}
	return c.eventProcessor, nil
}

// OutboxUseCase returns the outbox worker.
func (c *Container) OutboxUseCase() (outboxUseCase.UseCase, error) {
	var err error
	c.outboxUseCaseInit.Do(func() {
		c.outboxUseCase, err = c.initOutboxUseCase()
		if err != nil {
			c.setInitError("outboxUseCase", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("outboxUseCase"); storedErr != nil {
		return nil, storedErr
	}
	return c.outboxUseCase, nil
}

// KafkaBrokers returns the configured seed brokers.
func (c *Container) KafkaBrokers() []string {
	var brokers []string
	for _, broker := range strings.Split(c.config.KafkaBrokers, ",") {
		if broker = strings.TrimSpace(broker); broker != "" {
			brokers = append(brokers, broker)
		}
	}
	return brokers
}

// KafkaClient returns the franz-go client for the configured brokers.
func (c *Container) KafkaClient() (*kgo.Client, error) {
	var err error
	c.kafkaClientInit.Do(func() {
		c.kafkaClient, err = c.initKafkaClient()
		if err != nil {
			c.setInitError("kafkaClient", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("kafkaClient"); storedErr != nil {
		return nil, storedErr
	}
	return c.kafkaClient, nil
}

func (c *Container) initKafkaClient() (*kgo.Client, error) {
	brokers := c.KafkaBrokers()
	if len(brokers) == 0 {
		return nil, errors.New("no kafka brokers configured")
	}
	return outboxUseCase.NewKafkaClient(brokers)
}

func (c *Container) initOutboxRepository() (outboxUseCase.OutboxEventRepository, error) {
	if c.IsMemory() {
		return outboxRepository.NewMemoryOutboxEventRepository(c.LockTxManager()), nil
	}

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for outbox repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return outboxRepository.NewPostgreSQLOutboxEventRepository(db), nil
	case "mysql":
		return outboxRepository.NewMySQLOutboxEventRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initEventProcessor() (outboxUseCase.EventProcessor, error) {
	brokers := c.KafkaBrokers()
	if len(brokers) == 0 {
		return outboxUseCase.NewLoggingEventProcessor(c.Logger()), nil
	}

	client, err := c.KafkaClient()
	if err != nil {
		return nil, fmt.Errorf("failed to get kafka client for event processor: %w", err)
	}

	return outboxUseCase.NewKafkaEventProcessor(client, c.config.KafkaTopic), nil
}

func (c *Container) initOutboxUseCase() (outboxUseCase.UseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for outbox use case: %w", err)
	}

	outboxRepo, err := c.OutboxRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get outbox repository for outbox use case: %w", err)
	}

	eventProcessor, err := c.EventProcessor()
	if err != nil {
		return nil, fmt.Errorf("failed to get event processor for outbox use case: %w", err)
	}

	return outboxUseCase.NewOutboxUseCase(
		outboxUseCase.Config{
			Interval:   c.config.OutboxInterval,
			BatchSize:  c.config.OutboxBatchSize,
			MaxRetries: c.config.OutboxMaxRetries,
		},
		txManager,
		outboxRepo,
		eventProcessor,
		c.Logger(),
	), nil
}
