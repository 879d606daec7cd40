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

const userColumns = `id, name, email, password_hash, role, is_blocked,
	email_verified, created_at, updated_at`

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users
		 (id, name, email, password_hash, role, is_blocked, email_verified,
		  created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		user.ID, user.Name, user.Email, user.PasswordHash, user.Role,
		user.IsBlocked, user.EmailVerified, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return entity.ErrEmailTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return r.getUser(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getUser(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *userRepository) getUser(ctx context.Context, query string, arg interface{}) (*entity.User, error) {
	var user entity.User
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.IsBlocked,
		&user.EmailVerified,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

func (r *userRepository) SetBlocked(ctx context.Context, id uuid.UUID, blocked bool) error {
	return r.updateUser(ctx,
		`UPDATE users SET is_blocked = $2, updated_at = NOW() WHERE id = $1`,
		id, blocked)
}

func (r *userRepository) SetRole(ctx context.Context, id uuid.UUID, role entity.UserRole) error {
	return r.updateUser(ctx,
		`UPDATE users SET role = $2, updated_at = NOW() WHERE id = $1`,
		id, role)
}

func (r *userRepository) updateUser(ctx context.Context, query string, args ...interface{}) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return entity.ErrUserNotFound
	}

	return nil
}

// ListWithEventCounts returns users for the admin console together with the
// number of events each one owns. Both filters are optional.
func (r *userRepository) ListWithEventCounts(ctx context.Context, query string, role entity.UserRole) ([]*entity.AdminUserListItem, error) {
	sqlQuery := `SELECT u.id, u.name, u.email, u.role, u.is_blocked,
		        COUNT(e.id) AS event_count, u.created_at
		 FROM users u
		 LEFT JOIN events e ON e.owner_id = u.id
		 WHERE 1=1`
	args := []interface{}{}

	if query != "" {
		args = append(args, "%"+query+"%")
		sqlQuery += fmt.Sprintf(` AND (u.name ILIKE $%d OR u.email ILIKE $%d)`,
			len(args), len(args))
	}
	if role != "" {
		args = append(args, role)
		sqlQuery += fmt.Sprintf(` AND u.role = $%d`, len(args))
	}

	sqlQuery += ` GROUP BY u.id ORDER BY u.created_at DESC LIMIT 200`

	rows, err := r.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var items []*entity.AdminUserListItem
	for rows.Next() {
		var item entity.AdminUserListItem
		err := rows.Scan(
			&item.ID,
			&item.Name,
			&item.Email,
			&item.Role,
			&item.IsBlocked,
			&item.EventCount,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		items = append(items, &item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return items, nil
}

func (r *userRepository) Counts(ctx context.Context) (*entity.AdminCounts, error) {
	var counts entity.AdminCounts
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE role = 'owner'),
		        COUNT(*) FILTER (WHERE role = 'staff')
		 FROM users`,
	).Scan(&counts.TotalUsers, &counts.TotalOwners, &counts.TotalStaff)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	return &counts, nil
}
