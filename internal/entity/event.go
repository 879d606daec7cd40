package entity

import (
	"time"

	"github.com/google/uuid"
)

type Event struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	OwnerID     uuid.UUID  `json:"ownerId" db:"owner_id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description,omitempty" db:"description"`
	Location    string     `json:"location,omitempty" db:"location"`
	Slug        string     `json:"slug,omitempty" db:"slug"`
	StartsAt    time.Time  `json:"startsAt" db:"starts_at"`
	Capacity    int        `json:"capacity" db:"capacity"`
	BookedSlots int        `json:"bookedSlots" db:"booked_slots"`
	Views       int64      `json:"views" db:"views"`
	AssignedTo  *uuid.UUID `json:"assignedTo,omitempty" db:"assigned_to"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
}

// Remaining возвращает количество свободных мест (всегда >= 0).
func (e *Event) Remaining() int {
	remaining := e.Capacity - e.BookedSlots
	if remaining < 0 {
		return 0
	}
	return remaining
}

// IsPast reports whether the event has already started at the given instant.
func (e *Event) IsPast(now time.Time) bool {
	return e.StartsAt.Before(now)
}

// EventDTO is the wire representation of an event with the derived
// remaining counter attached.
type EventDTO struct {
	Event
	Remaining int `json:"remaining"`
}

func NewEventDTO(e *Event) *EventDTO {
	return &EventDTO{Event: *e, Remaining: e.Remaining()}
}
