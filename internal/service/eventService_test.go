package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/evently/evently/config"
	repository "github.com/evently/evently/internal/database/postgres"
	"github.com/evently/evently/internal/entity"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEventService(eventRepo repository.EventRepository) EventService {
	return NewEventService(eventRepo, nil, &config.BookingConfig{
		MaxQuantity: 50,
		MaxCapacity: 100000,
	})
}

func TestEventService_ListPublic_ClampsPaging(t *testing.T) {
	tests := []struct {
		name       string
		sort       string
		page       int
		limit      int
		wantSort   string
		wantLimit  int
		wantOffset int
	}{
		{name: "defaults", sort: "", page: 0, limit: 0, wantSort: "trending", wantLimit: 20, wantOffset: 0},
		{name: "limit capped", sort: "soonest", page: 1, limit: 500, wantSort: "soonest", wantLimit: 50, wantOffset: 0},
		{name: "offset from page", sort: "fewest-left", page: 3, limit: 10, wantSort: "fewest-left", wantLimit: 10, wantOffset: 20},
		{name: "unknown sort falls back", sort: "hot", page: 1, limit: 10, wantSort: "trending", wantLimit: 10, wantOffset: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var captured repository.EventListFilter
			repo := &eventRepoStub{listPublicFn: func(_ context.Context, filter repository.EventListFilter) ([]*entity.Event, error) {
				captured = filter
				return nil, nil
			}}

			_, err := newTestEventService(repo).ListPublic(context.Background(), "", tt.sort, tt.page, tt.limit)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSort, captured.Sort)
			assert.Equal(t, tt.wantLimit, captured.Limit)
			assert.Equal(t, tt.wantOffset, captured.Offset)
		})
	}
}

func TestEventService_Trending_ClampsLimit(t *testing.T) {
	tests := []struct {
		limit int
		want  int
	}{
		{limit: 0, want: 4},
		{limit: -1, want: 4},
		{limit: 6, want: 6},
		{limit: 100, want: 12},
	}

	for _, tt := range tests {
		var captured repository.EventListFilter
		repo := &eventRepoStub{listPublicFn: func(_ context.Context, filter repository.EventListFilter) ([]*entity.Event, error) {
			captured = filter
			return nil, nil
		}}

		_, err := newTestEventService(repo).Trending(context.Background(), tt.limit)
		require.NoError(t, err)
		assert.Equal(t, tt.want, captured.Limit)
		assert.Equal(t, "trending", captured.Sort)
	}
}

func TestEventService_CreateEvent(t *testing.T) {
	owner := &Actor{ID: uuid.New(), Role: entity.RoleOwner}
	staff := &Actor{ID: uuid.New(), Role: entity.RoleStaff}
	startsAt := time.Now().Add(48 * time.Hour)

	t.Run("staff cannot create", func(t *testing.T) {
		_, err := newTestEventService(nil).CreateEvent(context.Background(), staff, &CreateEventRequest{
			Title:    "Meetup",
			StartsAt: startsAt,
			Capacity: 10,
		})
		assert.ErrorIs(t, err, entity.ErrForbidden)
	})

	t.Run("validation", func(t *testing.T) {
		svc := newTestEventService(nil)
		for name, req := range map[string]*CreateEventRequest{
			"empty title":         {Title: "  ", StartsAt: startsAt, Capacity: 10},
			"zero starts":         {Title: "Meetup", Capacity: 10},
			"zero capacity":       {Title: "Meetup", StartsAt: startsAt, Capacity: 0},
			"capacity over limit": {Title: "Meetup", StartsAt: startsAt, Capacity: 100001},
		} {
			_, err := svc.CreateEvent(context.Background(), owner, req)
			assert.ErrorIs(t, err, entity.ErrInvalidInput, name)
		}
	})

	t.Run("sets owner and generates slug", func(t *testing.T) {
		var captured *entity.Event
		repo := &eventRepoStub{createFn: func(_ context.Context, event *entity.Event) error {
			captured = event
			return nil
		}}

		_, err := newTestEventService(repo).CreateEvent(context.Background(), owner, &CreateEventRequest{
			Title:    "  Go Meetup 2026  ",
			StartsAt: startsAt,
			Capacity: 10,
		})

		require.NoError(t, err)
		assert.Equal(t, owner.ID, captured.OwnerID)
		assert.Equal(t, "Go Meetup 2026", captured.Title)
		assert.True(t, strings.HasPrefix(captured.Slug, "go-meetup-2026-"), captured.Slug)
	})
}

func TestEventService_UpdateEvent_Authorization(t *testing.T) {
	owner := uuid.New()
	eventID := uuid.New()
	startsAt := time.Now().Add(time.Hour)

	repo := &eventRepoStub{
		getByIDFn: func(context.Context, uuid.UUID) (*entity.Event, error) {
			return &entity.Event{ID: eventID, OwnerID: owner, Capacity: 10, BookedSlots: 5}, nil
		},
		updateFn: func(context.Context, *entity.Event) error { return nil },
	}
	svc := newTestEventService(repo)

	req := &UpdateEventRequest{Title: "Updated", StartsAt: startsAt, Capacity: 10}

	t.Run("stranger forbidden", func(t *testing.T) {
		_, err := svc.UpdateEvent(context.Background(),
			&Actor{ID: uuid.New(), Role: entity.RoleOwner}, eventID.String(), req)
		assert.ErrorIs(t, err, entity.ErrForbidden)
	})

	t.Run("owner allowed", func(t *testing.T) {
		_, err := svc.UpdateEvent(context.Background(),
			&Actor{ID: owner, Role: entity.RoleOwner}, eventID.String(), req)
		assert.NoError(t, err)
	})

	t.Run("admin allowed", func(t *testing.T) {
		_, err := svc.UpdateEvent(context.Background(),
			&Actor{ID: uuid.New(), Role: entity.RoleAdmin}, eventID.String(), req)
		assert.NoError(t, err)
	})

	t.Run("capacity below booked rejected", func(t *testing.T) {
		_, err := svc.UpdateEvent(context.Background(),
			&Actor{ID: owner, Role: entity.RoleOwner}, eventID.String(),
			&UpdateEventRequest{Title: "Updated", StartsAt: startsAt, Capacity: 4})
		assert.ErrorIs(t, err, entity.ErrInvalidInput)
	})
}

func TestSlugify(t *testing.T) {
	slug := slugify("Go Meetup: 2026!")
	assert.True(t, strings.HasPrefix(slug, "go-meetup-2026-"), slug)

	// Название без букв и цифр дает только суффикс.
	assert.Len(t, slugify("!!!"), 8)
}
