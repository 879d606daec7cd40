package entity

import (
	"time"

	"github.com/google/uuid"
)

// DayCount — количество забронированных мест за один календарный день (UTC).
type DayCount struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}

// EventStats содержит агрегированную статистику бронирований мероприятия
// для дашборда владельца.
type EventStats struct {
	EventID   uuid.UUID  `json:"eventId"`
	OwnerID   uuid.UUID  `json:"ownerId"`
	Capacity  int        `json:"capacity"`
	Booked    int        `json:"booked"`
	Remaining int        `json:"remaining"`
	ByDay     []DayCount `json:"byDay"`
}

// UtilizationRate вычисляет коэффициент заполнения (0.0 до 1.0).
func (s *EventStats) UtilizationRate() float64 {
	if s.Capacity == 0 {
		return 0.0
	}
	return float64(s.Booked) / float64(s.Capacity)
}

// AdminCounts — сводные счетчики для админ-панели.
type AdminCounts struct {
	TotalUsers  int64 `json:"totalUsers"`
	TotalOwners int64 `json:"totalOwners"`
	TotalStaff  int64 `json:"totalStaff"`
}

// AdminUserListItem — пользователь в списке админ-панели вместе с
// количеством его мероприятий.
type AdminUserListItem struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       UserRole  `json:"role"`
	IsBlocked  bool      `json:"isBlocked"`
	EventCount int       `json:"eventCount"`
	CreatedAt  time.Time `json:"createdAt"`
}
