package repository

import (
	"context"
	"sort"
	"time"

	"github.com/allisson/claims/internal/database"
	"github.com/allisson/claims/internal/outbox/domain"
)

// MemoryOutboxEventRepository keeps outbox events in memory behind the shared
// LockTxManager, so events written inside a registry transaction become visible only
// when that transaction releases the lock.
type MemoryOutboxEventRepository struct {
	lock   *database.LockTxManager
	events map[string]domain.OutboxEvent
}

// NewMemoryOutboxEventRepository creates a new MemoryOutboxEventRepository.
func NewMemoryOutboxEventRepository(lock *database.LockTxManager) *MemoryOutboxEventRepository {
	return &MemoryOutboxEventRepository{
		lock:   lock,
		events: make(map[string]domain.OutboxEvent),
	}
}

// Create inserts a new outbox event
func (r *MemoryOutboxEventRepository) Create(ctx context.Context, event *domain.OutboxEvent) error {
	now := time.Now().UTC()
	r.lock.Do(ctx, func() {
		stored := *event
		stored.CreatedAt = now
		stored.UpdatedAt = now
		r.events[event.ID.String()] = stored
	})
	return nil
}

// GetPendingEvents returns up to limit pending events, oldest first.
func (r *MemoryOutboxEventRepository) GetPendingEvents(
	ctx context.Context,
	limit int,
) ([]*domain.OutboxEvent, error) {
	events := r.list(ctx, domain.OutboxEventStatusPending)
	if limit >= 0 && len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

// Update updates an outbox event. Processed events are dropped since nothing reads
// them again.
func (r *MemoryOutboxEventRepository) Update(ctx context.Context, event *domain.OutboxEvent) error {
	r.lock.Do(ctx, func() {
		if event.Status == domain.OutboxEventStatusProcessed {
			delete(r.events, event.ID.String())
			return
		}
		stored := *event
		stored.UpdatedAt = time.Now().UTC()
		r.events[event.ID.String()] = stored
	})
	return nil
}

// All returns every stored event regardless of status, oldest first.
func (r *MemoryOutboxEventRepository) All(ctx context.Context) []*domain.OutboxEvent {
	return r.list(ctx, "")
}

func (r *MemoryOutboxEventRepository) list(
	ctx context.Context,
	status domain.OutboxEventStatus,
) []*domain.OutboxEvent {
	events := make([]*domain.OutboxEvent, 0)
	r.lock.Do(ctx, func() {
		for _, event := range r.events {
			if status != "" && event.Status != status {
				continue
			}
			e := event
			events = append(events, &e)
		}
	})

	// UUIDv7 IDs break ties between events created within the same clock tick.
	sort.Slice(events, func(i, j int) bool {
		if !events[i].CreatedAt.Equal(events[j].CreatedAt) {
			return events[i].CreatedAt.Before(events[j].CreatedAt)
		}
		return events[i].ID.String() < events[j].ID.String()
	})

	return events
}
