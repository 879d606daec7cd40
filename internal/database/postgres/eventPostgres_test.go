package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/evently/evently/internal/entity"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventRepository_Create_DuplicateSlug(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO events").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "events_slug_key"})

	repo := NewEventRepository(db)
	err = repo.Create(context.Background(), &entity.Event{
		OwnerID:  uuid.New(),
		Title:    "Meetup",
		Slug:     "meetup",
		StartsAt: time.Now().Add(time.Hour),
		Capacity: 10,
	})

	assert.ErrorIs(t, err, entity.ErrDuplicateSlug)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_GetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	eventID := uuid.New()
	mock.ExpectQuery("SELECT (.+) FROM events WHERE id").
		WithArgs(eventID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	repo := NewEventRepository(db)
	_, err = repo.GetByID(context.Background(), eventID)

	assert.ErrorIs(t, err, entity.ErrEventNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_Assign(t *testing.T) {
	eventID := uuid.New()
	staffID := uuid.New()

	t.Run("assign and unassign", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec("UPDATE events SET assigned_to").
			WithArgs(eventID, &staffID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE events SET assigned_to").
			WithArgs(eventID, nil).
			WillReturnResult(sqlmock.NewResult(0, 1))

		repo := NewEventRepository(db)
		require.NoError(t, repo.Assign(context.Background(), eventID, &staffID))
		require.NoError(t, repo.Assign(context.Background(), eventID, nil))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown event", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec("UPDATE events SET assigned_to").
			WithArgs(eventID, nil).
			WillReturnResult(sqlmock.NewResult(0, 0))

		repo := NewEventRepository(db)
		assert.ErrorIs(t, repo.Assign(context.Background(), eventID, nil),
			entity.ErrEventNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEventRepository_Update_NeverTouchesBookedSlots(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	event := &entity.Event{
		ID:          uuid.New(),
		Title:       "Meetup",
		Slug:        "meetup",
		StartsAt:    time.Now().Add(time.Hour),
		Capacity:    20,
		BookedSlots: 5,
	}

	// Запрос обновления не содержит booked_slots: счетчик меняет только
	// рабочий процесс бронирования.
	mock.ExpectExec("UPDATE events\\s+SET title").
		WithArgs(event.ID, event.Title, event.Description, event.Location,
			event.Slug, event.StartsAt, event.Capacity).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewEventRepository(db)
	require.NoError(t, repo.Update(context.Background(), event))
	require.NoError(t, mock.ExpectationsWereMet())
}
