package service

import (
	"context"
	"time"

	"github.com/evently/evently/internal/entity"
	"github.com/google/uuid"
)

// Actor — аутентифицированный пользователь, от имени которого выполняется
// операция. Заполняется из сессионной куки в middleware.
type Actor struct {
	ID    uuid.UUID
	Role  entity.UserRole
	Name  string
	Email string
}

func (a *Actor) IsAdmin() bool { return a.Role == entity.RoleAdmin }

// ReserveRequest представляет данные публичной формы бронирования.
// Quantity намеренно нетипизирован: форма может прислать число, строку
// или ничего, и все три варианта приводятся к валидному количеству.
type ReserveRequest struct {
	EventID  string      `json:"eventId"`
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Quantity interface{} `json:"quantity"`
	Mobile   string      `json:"mobile"`
}

// ReserveResult — результат успешного бронирования.
type ReserveResult struct {
	RSVPID         uuid.UUID `json:"rsvpId"`
	RemainingAfter int       `json:"remainingAfter"`
}

// CreateEventRequest представляет данные для создания мероприятия
type CreateEventRequest struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Slug        string    `json:"slug"`
	StartsAt    time.Time `json:"startsAt" binding:"required"`
	Capacity    int       `json:"capacity" binding:"required,min=1"`
}

// UpdateEventRequest представляет данные для обновления мероприятия
type UpdateEventRequest struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Slug        string    `json:"slug"`
	StartsAt    time.Time `json:"startsAt" binding:"required"`
	Capacity    int       `json:"capacity" binding:"required,min=1"`
}

// SignupRequest представляет данные регистрации
type SignupRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role"`
}

// LoginRequest представляет данные входа
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SessionResult — пользователь вместе с подписанным сессионным токеном.
type SessionResult struct {
	User  *entity.User
	Token string
}

// RSVPService определяет интерфейс рабочего процесса бронирования
type RSVPService interface {
	// Reserve проводит бронирование целиком: валидация, атомарное
	// списание мест и запись rsvp. Ошибки-сентинелы из entity
	// транслируются обработчиком в коды ответа.
	Reserve(ctx context.Context, req *ReserveRequest) (*ReserveResult, error)

	ListEventRSVPs(ctx context.Context, actor *Actor, eventID string) ([]*entity.RSVP, error)
	GetEventStats(ctx context.Context, actor *Actor, eventID string) (*entity.EventStats, error)
}

type EventService interface {
	// Публичный каталог
	GetEvent(ctx context.Context, id string) (*entity.EventDTO, error)
	ListPublic(ctx context.Context, query, sort string, page, limit int) ([]*entity.EventDTO, error)
	Trending(ctx context.Context, limit int) ([]*entity.EventDTO, error)

	// Кабинет владельца и персонала
	CreateEvent(ctx context.Context, actor *Actor, req *CreateEventRequest) (*entity.Event, error)
	UpdateEvent(ctx context.Context, actor *Actor, id string, req *UpdateEventRequest) (*entity.Event, error)
	DeleteEvent(ctx context.Context, actor *Actor, id string) error
	ListMine(ctx context.Context, actor *Actor) ([]*entity.EventDTO, error)
	ListAssigned(ctx context.Context, actor *Actor) ([]*entity.EventDTO, error)
}

type UserService interface {
	Signup(ctx context.Context, req *SignupRequest) (*SessionResult, error)
	Login(ctx context.Context, req *LoginRequest) (*SessionResult, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
}

// AdminService определяет операции админ-панели
type AdminService interface {
	Counts(ctx context.Context) (*entity.AdminCounts, error)
	ListUsers(ctx context.Context, query string, role string) ([]*entity.AdminUserListItem, error)
	SetUserBlocked(ctx context.Context, userID string, blocked bool) error
	SetUserRole(ctx context.Context, userID string, role string) error

	ListAllEvents(ctx context.Context) ([]*entity.EventDTO, error)
	AssignEvent(ctx context.Context, eventID string, staffID string) error
}

// parseID проверяет, что строка является синтаксически корректным
// идентификатором, до обращения к хранилищу.
func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, entity.ErrInvalidInput
	}
	return id, nil
}
