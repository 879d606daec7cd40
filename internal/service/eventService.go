package service

import (
	"context"
	"strings"
	"unicode"

	"github.com/evently/evently/config"
	repository "github.com/evently/evently/internal/database/postgres"
	cache "github.com/evently/evently/internal/database/redis"
	"github.com/evently/evently/internal/entity"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	defaultListLimit  = 20
	maxListLimit      = 50
	defaultTrendLimit = 4
	maxTrendLimit     = 12
)

type eventService struct {
	eventRepo repository.EventRepository
	cache     *cache.EventCache
	cfg       *config.BookingConfig
}

// NewEventService создает новый экземпляр EventService. cache может быть
// nil, если Redis отключен.
func NewEventService(
	eventRepo repository.EventRepository,
	eventCache *cache.EventCache,
	cfg *config.BookingConfig,
) EventService {
	return &eventService{
		eventRepo: eventRepo,
		cache:     eventCache,
		cfg:       cfg,
	}
}

// GetEvent возвращает мероприятие и засчитывает просмотр. Счетчик
// инкрементируется в кэше и сбрасывается в Postgres воркером; прямой
// записи в БД на каждый просмотр нет.
func (s *eventService) GetEvent(ctx context.Context, id string) (*entity.EventDTO, error) {
	eventID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.IncrementViews(ctx, eventID)
	} else if err := s.eventRepo.AddViews(ctx, eventID, 1); err != nil {
		logrus.Warnf("failed to record view for event %s: %v", eventID, err)
	}

	return entity.NewEventDTO(event), nil
}

func (s *eventService) ListPublic(ctx context.Context, query, sort string, page, limit int) ([]*entity.EventDTO, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if page < 1 {
		page = 1
	}

	switch sort {
	case "trending", "soonest", "fewest-left":
	default:
		sort = "trending"
	}

	events, err := s.eventRepo.ListPublic(ctx, repository.EventListFilter{
		Query:  strings.TrimSpace(query),
		Sort:   sort,
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		return nil, err
	}

	return toDTOs(events), nil
}

// Trending возвращает короткую подборку ближайших мероприятий для главной
// страницы. Результат кэшируется.
func (s *eventService) Trending(ctx context.Context, limit int) ([]*entity.EventDTO, error) {
	if limit <= 0 {
		limit = defaultTrendLimit
	}
	if limit > maxTrendLimit {
		limit = maxTrendLimit
	}

	if s.cache != nil {
		if cached, ok := s.cache.GetTrending(ctx, limit); ok {
			return cached, nil
		}
	}

	events, err := s.eventRepo.ListPublic(ctx, repository.EventListFilter{
		Sort:  "trending",
		Limit: limit,
	})
	if err != nil {
		return nil, err
	}

	dtos := toDTOs(events)
	if s.cache != nil {
		s.cache.SetTrending(ctx, limit, dtos)
	}
	return dtos, nil
}

func (s *eventService) CreateEvent(ctx context.Context, actor *Actor, req *CreateEventRequest) (*entity.Event, error) {
	if actor.Role == entity.RoleStaff {
		return nil, entity.ErrForbidden
	}

	title := strings.TrimSpace(req.Title)
	if title == "" || req.StartsAt.IsZero() {
		return nil, entity.ErrInvalidInput
	}
	if req.Capacity < 1 || req.Capacity > s.cfg.MaxCapacity {
		return nil, entity.ErrInvalidInput
	}

	slug := strings.TrimSpace(req.Slug)
	if slug == "" {
		slug = slugify(title)
	}

	event := &entity.Event{
		OwnerID:     actor.ID,
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		Location:    strings.TrimSpace(req.Location),
		Slug:        slug,
		StartsAt:    req.StartsAt,
		Capacity:    req.Capacity,
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, err
	}

	s.invalidateListings(ctx)
	return event, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, actor *Actor, id string, req *UpdateEventRequest) (*entity.Event, error) {
	event, err := s.authorizeOwnership(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	if title == "" || req.StartsAt.IsZero() {
		return nil, entity.ErrInvalidInput
	}
	if req.Capacity < 1 || req.Capacity > s.cfg.MaxCapacity {
		return nil, entity.ErrInvalidInput
	}
	// Вместимость нельзя опустить ниже уже забронированных мест.
	if req.Capacity < event.BookedSlots {
		return nil, entity.ErrInvalidInput
	}

	event.Title = title
	event.Description = strings.TrimSpace(req.Description)
	event.Location = strings.TrimSpace(req.Location)
	if slug := strings.TrimSpace(req.Slug); slug != "" {
		event.Slug = slug
	}
	event.StartsAt = req.StartsAt
	event.Capacity = req.Capacity

	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, err
	}

	s.invalidateListings(ctx)
	return event, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, actor *Actor, id string) error {
	event, err := s.authorizeOwnership(ctx, actor, id)
	if err != nil {
		return err
	}

	if err := s.eventRepo.Delete(ctx, event.ID); err != nil {
		return err
	}

	s.invalidateListings(ctx)
	return nil
}

func (s *eventService) ListMine(ctx context.Context, actor *Actor) ([]*entity.EventDTO, error) {
	events, err := s.eventRepo.ListByOwner(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return toDTOs(events), nil
}

func (s *eventService) ListAssigned(ctx context.Context, actor *Actor) ([]*entity.EventDTO, error) {
	events, err := s.eventRepo.ListAssignedTo(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return toDTOs(events), nil
}

// authorizeOwnership возвращает мероприятие, если actor — его владелец
// или админ.
func (s *eventService) authorizeOwnership(ctx context.Context, actor *Actor, rawID string) (*entity.Event, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && event.OwnerID != actor.ID {
		return nil, entity.ErrForbidden
	}
	return event, nil
}

func (s *eventService) invalidateListings(ctx context.Context) {
	if s.cache != nil {
		s.cache.InvalidateTrending(ctx)
	}
}

func toDTOs(events []*entity.Event) []*entity.EventDTO {
	dtos := make([]*entity.EventDTO, 0, len(events))
	for _, event := range events {
		dtos = append(dtos, entity.NewEventDTO(event))
	}
	return dtos
}

// slugify строит url-безопасный идентификатор из названия; суффикс
// защищает от коллизий одинаковых названий.
func slugify(title string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteByte('-')
			lastDash = true
		}
	}
	slug := strings.Trim(b.String(), "-")
	suffix := uuid.New().String()[:8]
	if slug == "" {
		return suffix
	}
	return slug + "-" + suffix
}
