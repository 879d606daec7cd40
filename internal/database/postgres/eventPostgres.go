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

const eventColumns = `id, owner_id, title, description, location, slug,
	starts_at, capacity, booked_slots, views, assigned_to, created_at, updated_at`

type eventRepository struct {
	db *sql.DB
}

func NewEventRepository(db *sql.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(ctx context.Context, event *entity.Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	now := time.Now()
	event.CreatedAt = now
	event.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO events
		 (id, owner_id, title, description, location, slug, starts_at,
		  capacity, booked_slots, views, assigned_to, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, 0, $9, $10, $11)`,
		event.ID, event.OwnerID, event.Title, event.Description,
		event.Location, event.Slug, event.StartsAt, event.Capacity,
		event.AssignedTo, event.CreatedAt, event.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return entity.ErrDuplicateSlug
		}
		return fmt.Errorf("failed to create event: %w", err)
	}

	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Event, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id)

	event, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	return event, nil
}

// Update rewrites the mutable event fields. booked_slots and views are
// owned by the reservation workflow and the views worker respectively and
// are never written here.
func (r *eventRepository) Update(ctx context.Context, event *entity.Event) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE events
		 SET title = $2, description = $3, location = $4, slug = $5,
		     starts_at = $6, capacity = $7, updated_at = NOW()
		 WHERE id = $1`,
		event.ID, event.Title, event.Description, event.Location,
		event.Slug, event.StartsAt, event.Capacity,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return entity.ErrDuplicateSlug
		}
		return fmt.Errorf("failed to update event: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return entity.ErrEventNotFound
	}

	return nil
}

func (r *eventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return entity.ErrEventNotFound
	}

	return nil
}

// ListPublic returns upcoming events for the public directory.
//
// "trending" and "soonest" both order by start time ascending; "fewest-left"
// surfaces the events closest to selling out by ordering on capacity.
func (r *eventRepository) ListPublic(ctx context.Context, filter EventListFilter) ([]*entity.Event, error) {
	orderBy := "starts_at ASC"
	if filter.Sort == "fewest-left" {
		orderBy = "capacity ASC"
	}

	query := `SELECT ` + eventColumns + `
		 FROM events
		 WHERE starts_at >= NOW()`
	args := []interface{}{}

	if filter.Query != "" {
		query += ` AND (title ILIKE $1 OR location ILIKE $1)`
		args = append(args, "%"+filter.Query+"%")
	}

	query += fmt.Sprintf(` ORDER BY %s LIMIT $%d OFFSET $%d`,
		orderBy, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	return r.queryEvents(ctx, query, args...)
}

func (r *eventRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*entity.Event, error) {
	return r.queryEvents(ctx,
		`SELECT `+eventColumns+` FROM events
		 WHERE owner_id = $1 ORDER BY starts_at ASC`, ownerID)
}

func (r *eventRepository) ListAssignedTo(ctx context.Context, staffID uuid.UUID) ([]*entity.Event, error) {
	return r.queryEvents(ctx,
		`SELECT `+eventColumns+` FROM events
		 WHERE assigned_to = $1 ORDER BY starts_at ASC`, staffID)
}

func (r *eventRepository) ListAllAssigned(ctx context.Context) ([]*entity.Event, error) {
	return r.queryEvents(ctx,
		`SELECT `+eventColumns+` FROM events
		 WHERE assigned_to IS NOT NULL ORDER BY starts_at ASC`)
}

func (r *eventRepository) ListAll(ctx context.Context) ([]*entity.Event, error) {
	return r.queryEvents(ctx,
		`SELECT `+eventColumns+` FROM events ORDER BY created_at DESC`)
}

func (r *eventRepository) Assign(ctx context.Context, eventID uuid.UUID, staffID *uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE events SET assigned_to = $2, updated_at = NOW() WHERE id = $1`,
		eventID, staffID,
	)
	if err != nil {
		return fmt.Errorf("failed to assign event: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return entity.ErrEventNotFound
	}

	return nil
}

func (r *eventRepository) AddViews(ctx context.Context, eventID uuid.UUID, delta int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE events SET views = views + $2 WHERE id = $1`,
		eventID, delta,
	)
	if err != nil {
		return fmt.Errorf("failed to add views: %w", err)
	}
	return nil
}

func (r *eventRepository) queryEvents(ctx context.Context, query string, args ...interface{}) ([]*entity.Event, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []*entity.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}

	return events, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row rowScanner) (*entity.Event, error) {
	var event entity.Event
	var assignedTo uuid.NullUUID

	err := row.Scan(
		&event.ID,
		&event.OwnerID,
		&event.Title,
		&event.Description,
		&event.Location,
		&event.Slug,
		&event.StartsAt,
		&event.Capacity,
		&event.BookedSlots,
		&event.Views,
		&assignedTo,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if assignedTo.Valid {
		event.AssignedTo = &assignedTo.UUID
	}

	return &event, nil
}
