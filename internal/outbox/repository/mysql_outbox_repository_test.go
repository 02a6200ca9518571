package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/claims/internal/outbox/domain"
)

func TestMySQLOutboxEventRepository_Create(t *testing.T) {
	db, mock := newSQLMock(t)
	repo := NewMySQLOutboxEventRepository(db)

	event := &domain.OutboxEvent{
		ID:        uuid.Must(uuid.NewV7()),
		EventType: "claim.created",
		Payload:   `{}`,
		Status:    domain.OutboxEventStatusPending,
	}
	idBytes, _ := event.ID.MarshalBinary()

	mock.ExpectExec("INSERT INTO outbox_events").
		WithArgs(idBytes, event.EventType, event.Payload, event.Status, 0, nil, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.Create(context.Background(), event))
}

func TestMySQLOutboxEventRepository_GetPendingEvents(t *testing.T) {
	db, mock := newSQLMock(t)
	repo := NewMySQLOutboxEventRepository(db)

	id := uuid.Must(uuid.NewV7())
	idBytes, _ := id.MarshalBinary()
	now := time.Now().UTC()

	mock.ExpectQuery("FOR UPDATE SKIP LOCKED").
		WithArgs(domain.OutboxEventStatusPending, 5).
		WillReturnRows(sqlmock.NewRows(outboxColumns).
			AddRow(idBytes, "claim.created", `{}`, "pending", 0, nil, nil, now, now))

	events, err := repo.GetPendingEvents(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, id, events[0].ID)
}

func TestMySQLOutboxEventRepository_GetPendingEvents_InvalidID(t *testing.T) {
	db, mock := newSQLMock(t)
	repo := NewMySQLOutboxEventRepository(db)
	now := time.Now().UTC()

	mock.ExpectQuery("FROM outbox_events").
		WillReturnRows(sqlmock.NewRows(outboxColumns).
			AddRow([]byte{1, 2, 3}, "claim.created", `{}`, "pending", 0, nil, nil, now, now))

	_, err := repo.GetPendingEvents(context.Background(), 5)
	assert.Error(t, err)
}

func TestMySQLOutboxEventRepository_Update(t *testing.T) {
	db, mock := newSQLMock(t)
	repo := NewMySQLOutboxEventRepository(db)

	event := &domain.OutboxEvent{
		ID:        uuid.Must(uuid.NewV7()),
		EventType: "claim.revoked",
		Payload:   `{}`,
		Status:    domain.OutboxEventStatusFailed,
		Retries:   3,
	}
	idBytes, _ := event.ID.MarshalBinary()

	mock.ExpectExec("UPDATE outbox_events").
		WithArgs(event.EventType, event.Payload, event.Status, 3, nil, nil, idBytes).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.Update(context.Background(), event))
}
