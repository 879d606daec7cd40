package entity

import (
	"time"

	"github.com/google/uuid"
)

// RSVP связывает гостя (по email) с мероприятием. Пара (event_id, email)
// уникальна: гость может иметь не более одной брони на мероприятие,
// но одна бронь может покрывать несколько мест (Qty).
type RSVP struct {
	ID        uuid.UUID `json:"id" db:"id"`
	EventID   uuid.UUID `json:"eventId" db:"event_id"`
	Email     string    `json:"email" db:"email"`
	Name      string    `json:"name" db:"name"`
	Qty       int       `json:"qty" db:"qty"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
