package service

import (
	"context"
	"time"

	repository "github.com/evently/evently/internal/database/postgres"
	"github.com/evently/evently/internal/entity"
	"github.com/google/uuid"
)

// Стабы репозиториев для тестов сервисного слоя. Встраивание интерфейса
// позволяет реализовывать только нужные тесту методы.

type rsvpRepoStub struct {
	repository.RSVPRepository
	reserveFn     func(ctx context.Context, rsvp *entity.RSVP, now time.Time) error
	countsByDayFn func(ctx context.Context, eventID uuid.UUID) ([]entity.DayCount, error)
}

func (s *rsvpRepoStub) Reserve(ctx context.Context, rsvp *entity.RSVP, now time.Time) error {
	return s.reserveFn(ctx, rsvp, now)
}

func (s *rsvpRepoStub) CountsByDay(ctx context.Context, eventID uuid.UUID) ([]entity.DayCount, error) {
	return s.countsByDayFn(ctx, eventID)
}

type eventRepoStub struct {
	repository.EventRepository
	getByIDFn    func(ctx context.Context, id uuid.UUID) (*entity.Event, error)
	createFn     func(ctx context.Context, event *entity.Event) error
	updateFn     func(ctx context.Context, event *entity.Event) error
	listPublicFn func(ctx context.Context, filter repository.EventListFilter) ([]*entity.Event, error)
	assignFn     func(ctx context.Context, eventID uuid.UUID, staffID *uuid.UUID) error
}

func (s *eventRepoStub) GetByID(ctx context.Context, id uuid.UUID) (*entity.Event, error) {
	return s.getByIDFn(ctx, id)
}

func (s *eventRepoStub) Create(ctx context.Context, event *entity.Event) error {
	return s.createFn(ctx, event)
}

func (s *eventRepoStub) Update(ctx context.Context, event *entity.Event) error {
	return s.updateFn(ctx, event)
}

func (s *eventRepoStub) ListPublic(ctx context.Context, filter repository.EventListFilter) ([]*entity.Event, error) {
	return s.listPublicFn(ctx, filter)
}

func (s *eventRepoStub) Assign(ctx context.Context, eventID uuid.UUID, staffID *uuid.UUID) error {
	return s.assignFn(ctx, eventID, staffID)
}

type userRepoStub struct {
	repository.UserRepository
	createFn     func(ctx context.Context, user *entity.User) error
	getByEmailFn func(ctx context.Context, email string) (*entity.User, error)
	getByIDFn    func(ctx context.Context, id uuid.UUID) (*entity.User, error)
}

func (s *userRepoStub) Create(ctx context.Context, user *entity.User) error {
	return s.createFn(ctx, user)
}

func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return s.getByEmailFn(ctx, email)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return s.getByIDFn(ctx, id)
}
