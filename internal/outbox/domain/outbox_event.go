// Package domain defines the transactional outbox entities. Claim notifications are
// stored as outbox events in the same transaction as the registry mutation and delivered
// afterwards by the outbox worker.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// OutboxEventStatus represents the status of an outbox event
type OutboxEventStatus string

const (
	OutboxEventStatusPending   OutboxEventStatus = "pending"
	OutboxEventStatusProcessed OutboxEventStatus = "processed"
	OutboxEventStatusFailed    OutboxEventStatus = "failed"
)

// OutboxEvent is a notification waiting for delivery. EventType holds the notification
// kind and Payload its JSON encoding.
type OutboxEvent struct {
	ID          uuid.UUID
	EventType   string
	Payload     string
	Status      OutboxEventStatus
	Retries     int
	LastError   *string
	ProcessedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// MarkProcessed records a successful delivery.
func (e *OutboxEvent) MarkProcessed(at time.Time) {
	e.Status = OutboxEventStatusProcessed
	e.ProcessedAt = &at
}

// MarkAttemptFailed records a failed delivery. The event is marked failed once it has
// been retried maxRetries times and stays pending otherwise.
func (e *OutboxEvent) MarkAttemptFailed(err error, maxRetries int) {
	e.Retries++
	msg := err.Error()
	e.LastError = &msg

	if e.Retries >= maxRetries {
		e.Status = OutboxEventStatusFailed
	}
}
