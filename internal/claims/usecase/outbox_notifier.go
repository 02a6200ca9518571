package usecase

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	claimsDomain "github.com/allisson/claims/internal/claims/domain"
	outboxDomain "github.com/allisson/claims/internal/outbox/domain"
)

// OutboxEventRepository is the write side of the outbox used by the notifier.
type OutboxEventRepository interface {
	Create(ctx context.Context, event *outboxDomain.OutboxEvent) error
}

// outboxNotifier stores notifications as pending outbox events. Run inside the mutation
// transaction, the event is committed or discarded together with the mutation.
type outboxNotifier struct {
	outboxRepo OutboxEventRepository
}

// NewOutboxNotifier creates a NotificationSink backed by the transactional outbox.
func NewOutboxNotifier(outboxRepo OutboxEventRepository) NotificationSink {
	return &outboxNotifier{outboxRepo: outboxRepo}
}

// Notify appends the notification to the outbox.
func (n *outboxNotifier) Notify(ctx context.Context, notification claimsDomain.Notification) error {
	payload, err := json.Marshal(notification)
	if err != nil {
		return err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return err
	}

	return n.outboxRepo.Create(ctx, &outboxDomain.OutboxEvent{
		ID:        id,
		EventType: string(notification.Kind),
		Payload:   string(payload),
		Status:    outboxDomain.OutboxEventStatusPending,
	})
}
