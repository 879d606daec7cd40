package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/evently/evently/internal/entity"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

type rsvpRepository struct {
	db *sql.DB
}

func NewRSVPRepository(db *sql.DB) RSVPRepository {
	return &rsvpRepository{db: db}
}

// Reserve admits a reservation against remaining capacity and records it,
// all inside one transaction.
//
// The admission check and the counter increment are a single conditional
// UPDATE: the write only applies if, at write time, the stored row still
// satisfies the predicate (upcoming event, enough remaining capacity). Two
// concurrent reservations whose quantities together exceed the remaining
// capacity therefore cannot both succeed, without any application-level
// locking — the workflow runs in many request handlers and possibly many
// processes at once, so the guarantee has to come from the storage layer.
//
// The rsvp insert relies on the UNIQUE (event_id, email) constraint; a
// duplicate aborts the whole transaction, rolling the counter increment
// back. A compensating decrement instead of a rollback would reopen the
// capacity race window.
func (r *rsvpRepository) Reserve(ctx context.Context, rsvp *entity.RSVP, now time.Time) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelReadCommitted,
	})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Step 1: conditional capacity increment (the admission check itself).
	result, err := tx.ExecContext(ctx,
		`UPDATE events
		 SET booked_slots = booked_slots + $3, updated_at = NOW()
		 WHERE id = $1
		   AND starts_at >= $2
		   AND capacity - booked_slots >= $3`,
		rsvp.EventID, now, rsvp.Qty,
	)
	if err != nil {
		return fmt.Errorf("failed to reserve spots: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected != 1 {
		// The predicate failed; re-read to tell a past event apart from an
		// exhausted one. A vanished event counts as exhausted.
		var startsAt time.Time
		err := tx.QueryRowContext(ctx,
			`SELECT starts_at FROM events WHERE id = $1`, rsvp.EventID,
		).Scan(&startsAt)
		if errors.Is(err, sql.ErrNoRows) {
			return entity.ErrNotEnoughSpots
		}
		if err != nil {
			return fmt.Errorf("failed to re-read event: %w", err)
		}
		if startsAt.Before(now) {
			return entity.ErrEventPast
		}
		return entity.ErrNotEnoughSpots
	}

	// Step 2: record the reservation. Uniqueness of (event_id, email) is
	// enforced by the constraint, not by a pre-check.
	if rsvp.ID == uuid.Nil {
		rsvp.ID = uuid.New()
	}
	createdAt := now

	_, err = tx.ExecContext(ctx,
		`INSERT INTO rsvps (id, event_id, email, name, qty, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		rsvp.ID, rsvp.EventID, rsvp.Email, rsvp.Name, rsvp.Qty, createdAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return entity.ErrAlreadyRSVPed
		}
		return fmt.Errorf("failed to insert rsvp: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	rsvp.CreatedAt = createdAt
	return nil
}

func (r *rsvpRepository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*entity.RSVP, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, event_id, email, name, qty, created_at
		 FROM rsvps
		 WHERE event_id = $1
		 ORDER BY created_at ASC`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query rsvps by event: %w", err)
	}
	defer rows.Close()

	var rsvps []*entity.RSVP
	for rows.Next() {
		var rsvp entity.RSVP
		err := rows.Scan(
			&rsvp.ID,
			&rsvp.EventID,
			&rsvp.Email,
			&rsvp.Name,
			&rsvp.Qty,
			&rsvp.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rsvp: %w", err)
		}
		rsvps = append(rsvps, &rsvp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rsvps: %w", err)
	}

	return rsvps, nil
}

// CountsByDay aggregates booked spots per UTC calendar day.
func (r *rsvpRepository) CountsByDay(ctx context.Context, eventID uuid.UUID) ([]entity.DayCount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day,
		        COALESCE(SUM(qty), 0) AS count
		 FROM rsvps
		 WHERE event_id = $1
		 GROUP BY day
		 ORDER BY day ASC`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query rsvp counts by day: %w", err)
	}
	defer rows.Close()

	var counts []entity.DayCount
	for rows.Next() {
		var dc entity.DayCount
		if err := rows.Scan(&dc.Date, &dc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan day count: %w", err)
		}
		counts = append(counts, dc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating day counts: %w", err)
	}

	return counts, nil
}
