package repository

import (
	"context"
	"time"

	"github.com/evently/evently/internal/entity"
	"github.com/google/uuid"
)

// EventListFilter — параметры публичного списка мероприятий.
type EventListFilter struct {
	Query  string
	Sort   string // "trending" | "soonest" | "fewest-left"
	Limit  int
	Offset int
}

type EventRepository interface {
	Create(ctx context.Context, event *entity.Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Event, error)
	Update(ctx context.Context, event *entity.Event) error
	Delete(ctx context.Context, id uuid.UUID) error

	// Listings
	ListPublic(ctx context.Context, filter EventListFilter) ([]*entity.Event, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*entity.Event, error)
	ListAssignedTo(ctx context.Context, staffID uuid.UUID) ([]*entity.Event, error)
	ListAllAssigned(ctx context.Context) ([]*entity.Event, error)
	ListAll(ctx context.Context) ([]*entity.Event, error)

	// Staff assignment; nil staffID unassigns.
	Assign(ctx context.Context, eventID uuid.UUID, staffID *uuid.UUID) error

	// AddViews добавляет delta к счетчику просмотров (batch flush воркера).
	AddViews(ctx context.Context, eventID uuid.UUID, delta int64) error
}

type RSVPRepository interface {
	// Reserve выполняет бронирование как одну атомарную единицу работы:
	// условное увеличение booked_slots и вставку записи rsvp в одной
	// транзакции. Возвращает ErrEventPast, ErrNotEnoughSpots или
	// ErrAlreadyRSVPed; при любой из этих ошибок состояние БД не меняется.
	Reserve(ctx context.Context, rsvp *entity.RSVP, now time.Time) error

	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*entity.RSVP, error)
	CountsByDay(ctx context.Context, eventID uuid.UUID) ([]entity.DayCount, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	SetBlocked(ctx context.Context, id uuid.UUID, blocked bool) error
	SetRole(ctx context.Context, id uuid.UUID, role entity.UserRole) error

	// Admin console
	ListWithEventCounts(ctx context.Context, query string, role entity.UserRole) ([]*entity.AdminUserListItem, error)
	Counts(ctx context.Context) (*entity.AdminCounts, error)
}
