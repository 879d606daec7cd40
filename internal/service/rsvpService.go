package service

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/evently/evently/config"
	repository "github.com/evently/evently/internal/database/postgres"
	"github.com/evently/evently/internal/entity"
	"github.com/evently/evently/internal/monitoring"
	"github.com/evently/evently/pkg/kafka"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Метки исходов бронирования для метрик.
const (
	outcomeAdmitted      = "admitted"
	outcomeInvalidInput  = "invalid_input"
	outcomeInsufficient  = "insufficient_spots"
	outcomeEventPast     = "event_past"
	outcomeAlreadyRSVPed = "already_rsvped"
	outcomeInternalError = "internal_error"
)

type rsvpService struct {
	rsvpRepo  repository.RSVPRepository
	eventRepo repository.EventRepository
	cfg       *config.BookingConfig
	metrics   *monitoring.Metrics
	producer  kafka.Producer
}

// NewRSVPService создает новый экземпляр RSVPService. producer может быть
// nil, если публикация событий отключена.
func NewRSVPService(
	rsvpRepo repository.RSVPRepository,
	eventRepo repository.EventRepository,
	cfg *config.BookingConfig,
	metrics *monitoring.Metrics,
	producer kafka.Producer,
) RSVPService {
	return &rsvpService{
		rsvpRepo:  rsvpRepo,
		eventRepo: eventRepo,
		cfg:       cfg,
		metrics:   metrics,
		producer:  producer,
	}
}

// Reserve проводит бронирование: нормализует вход, затем отдает проверку
// вместимости и запись rsvp хранилищу как одну атомарную операцию.
// Сервис намеренно не делает предварительных проверок вместимости —
// чтение перед записью ничего не гарантирует при конкурентных запросах.
func (s *rsvpService) Reserve(ctx context.Context, req *ReserveRequest) (*ReserveResult, error) {
	eventID, err := uuid.Parse(strings.TrimSpace(req.EventID))
	if err != nil {
		s.observe(outcomeInvalidInput)
		return nil, entity.ErrInvalidInput
	}

	name := strings.TrimSpace(req.Name)
	email := normalizeEmail(req.Email)
	if name == "" || !validEmail(email) {
		s.observe(outcomeInvalidInput)
		return nil, entity.ErrInvalidInput
	}

	qty := normalizeQuantity(req.Quantity)
	if qty > s.cfg.MaxQuantity {
		s.observe(outcomeInvalidInput)
		return nil, entity.ErrInvalidInput
	}

	rsvp := &entity.RSVP{
		EventID: eventID,
		Email:   email,
		Name:    name,
		Qty:     qty,
	}

	if err := s.rsvpRepo.Reserve(ctx, rsvp, time.Now()); err != nil {
		s.observe(outcomeForError(err))
		return nil, err
	}
	s.observe(outcomeAdmitted)

	logrus.WithFields(logrus.Fields{
		"rsvp_id":  rsvp.ID,
		"event_id": eventID,
		"qty":      qty,
	}).Info("rsvp admitted")

	result := &ReserveResult{RSVPID: rsvp.ID}

	// remainingAfter — информационное поле ответа; оно читается после
	// коммита и при гонке может отставать от фактического остатка.
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		logrus.Warnf("failed to re-read event %s after rsvp: %v", eventID, err)
	} else {
		result.RemainingAfter = event.Remaining()
	}

	if s.producer != nil {
		go s.announce(rsvp)
	}

	return result, nil
}

// announce публикует событие о новом бронировании. Ошибка публикации не
// влияет на уже закоммиченное бронирование.
func (s *rsvpService) announce(rsvp *entity.RSVP) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	payload := map[string]interface{}{
		"rsvpId":    rsvp.ID.String(),
		"eventId":   rsvp.EventID.String(),
		"qty":       rsvp.Qty,
		"createdAt": rsvp.CreatedAt.UTC().Format(time.RFC3339),
	}
	if err := s.producer.SendMessage(ctx, rsvp.EventID.String(), payload); err != nil {
		logrus.Warnf("failed to announce rsvp %s: %v", rsvp.ID, err)
	}
}

func (s *rsvpService) ListEventRSVPs(ctx context.Context, actor *Actor, eventID string) ([]*entity.RSVP, error) {
	event, err := s.authorizeEventAccess(ctx, actor, eventID)
	if err != nil {
		return nil, err
	}
	return s.rsvpRepo.ListByEvent(ctx, event.ID)
}

func (s *rsvpService) GetEventStats(ctx context.Context, actor *Actor, eventID string) (*entity.EventStats, error) {
	event, err := s.authorizeEventAccess(ctx, actor, eventID)
	if err != nil {
		return nil, err
	}

	byDay, err := s.rsvpRepo.CountsByDay(ctx, event.ID)
	if err != nil {
		return nil, err
	}

	return &entity.EventStats{
		EventID:   event.ID,
		OwnerID:   event.OwnerID,
		Capacity:  event.Capacity,
		Booked:    event.BookedSlots,
		Remaining: event.Remaining(),
		ByDay:     byDay,
	}, nil
}

// authorizeEventAccess проверяет, что actor — админ, владелец мероприятия
// или назначенный на него сотрудник.
func (s *rsvpService) authorizeEventAccess(ctx context.Context, actor *Actor, rawID string) (*entity.Event, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if actor.IsAdmin() || event.OwnerID == actor.ID {
		return event, nil
	}
	if actor.Role == entity.RoleStaff && event.AssignedTo != nil && *event.AssignedTo == actor.ID {
		return event, nil
	}
	return nil, entity.ErrForbidden
}

func (s *rsvpService) observe(outcome string) {
	if s.metrics != nil {
		s.metrics.ObserveRSVP(outcome)
	}
}

func outcomeForError(err error) string {
	switch {
	case errors.Is(err, entity.ErrNotEnoughSpots):
		return outcomeInsufficient
	case errors.Is(err, entity.ErrEventPast):
		return outcomeEventPast
	case errors.Is(err, entity.ErrAlreadyRSVPed):
		return outcomeAlreadyRSVPed
	default:
		return outcomeInternalError
	}
}

// normalizeQuantity приводит значение поля quantity к валидному количеству
// мест: числа округляются вниз, строки разбираются, все нечисловое и
// все меньше единицы превращается в 1.
func normalizeQuantity(raw interface{}) int {
	switch v := raw.(type) {
	case nil:
		return 1
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 1
		}
		return clampQuantity(int(math.Floor(v)))
	case int:
		return clampQuantity(v)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 1
		}
		return clampQuantity(int(math.Floor(parsed)))
	default:
		return 1
	}
}

func clampQuantity(qty int) int {
	if qty < 1 {
		return 1
	}
	return qty
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validEmail — минимальная структурная проверка адреса; подтверждение
// существования ящика не входит в задачу формы.
func validEmail(email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	domain := email[at+1:]
	return strings.Contains(domain, ".") && !strings.ContainsAny(email, " \t")
}
