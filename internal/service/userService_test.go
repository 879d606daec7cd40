package service

import (
	"context"
	"testing"
	"time"

	"github.com/evently/evently/config"
	"github.com/evently/evently/internal/entity"
	"github.com/evently/evently/pkg/session"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestUserService(userRepo *userRepoStub) UserService {
	sessions := session.NewManager("test-secret", time.Hour)
	return NewUserService(userRepo, sessions, &config.AuthConfig{
		BcryptCost: bcrypt.MinCost,
	})
}

func TestUserService_Signup(t *testing.T) {
	t.Run("validation", func(t *testing.T) {
		svc := newTestUserService(nil)
		for name, req := range map[string]*SignupRequest{
			"empty name":     {Name: " ", Email: "a@b.com", Password: "password1"},
			"bad email":      {Name: "A", Email: "nope", Password: "password1"},
			"short password": {Name: "A", Email: "a@b.com", Password: "short"},
		} {
			_, err := svc.Signup(context.Background(), req)
			assert.ErrorIs(t, err, entity.ErrInvalidInput, name)
		}
	})

	t.Run("admin role not self-assignable", func(t *testing.T) {
		_, err := newTestUserService(nil).Signup(context.Background(), &SignupRequest{
			Name: "A", Email: "a@b.com", Password: "password1", Role: "admin",
		})
		assert.ErrorIs(t, err, entity.ErrInvalidRole)
	})

	t.Run("defaults to owner and hashes password", func(t *testing.T) {
		var captured *entity.User
		repo := &userRepoStub{createFn: func(_ context.Context, user *entity.User) error {
			captured = user
			user.ID = uuid.New()
			return nil
		}}

		result, err := newTestUserService(repo).Signup(context.Background(), &SignupRequest{
			Name:     "Alice",
			Email:    " Alice@Example.com ",
			Password: "password1",
		})

		require.NoError(t, err)
		assert.Equal(t, entity.RoleOwner, captured.Role)
		assert.Equal(t, "alice@example.com", captured.Email)
		assert.NotEqual(t, "password1", captured.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword(
			[]byte(captured.PasswordHash), []byte("password1")))
		assert.NotEmpty(t, result.Token)
	})
}

func TestUserService_Login(t *testing.T) {
	password := "password1"
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user := &entity.User{
		ID:           uuid.New(),
		Name:         "Alice",
		Email:        "alice@example.com",
		PasswordHash: string(hash),
		Role:         entity.RoleOwner,
	}

	repoFor := func(u *entity.User) *userRepoStub {
		return &userRepoStub{getByEmailFn: func(_ context.Context, email string) (*entity.User, error) {
			if u != nil && email == u.Email {
				snapshot := *u
				return &snapshot, nil
			}
			return nil, entity.ErrUserNotFound
		}}
	}

	t.Run("success", func(t *testing.T) {
		result, err := newTestUserService(repoFor(user)).Login(context.Background(), &LoginRequest{
			Email:    "  ALICE@example.com ",
			Password: password,
		})
		require.NoError(t, err)
		assert.Equal(t, user.ID, result.User.ID)
		assert.NotEmpty(t, result.Token)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := newTestUserService(repoFor(user)).Login(context.Background(), &LoginRequest{
			Email:    user.Email,
			Password: "wrong-password",
		})
		assert.ErrorIs(t, err, entity.ErrInvalidCredentials)
	})

	// Неизвестный email дает тот же ответ, что и неверный пароль.
	t.Run("unknown email", func(t *testing.T) {
		_, err := newTestUserService(repoFor(nil)).Login(context.Background(), &LoginRequest{
			Email:    "nobody@example.com",
			Password: password,
		})
		assert.ErrorIs(t, err, entity.ErrInvalidCredentials)
	})

	t.Run("blocked user", func(t *testing.T) {
		blocked := *user
		blocked.IsBlocked = true

		_, err := newTestUserService(repoFor(&blocked)).Login(context.Background(), &LoginRequest{
			Email:    user.Email,
			Password: password,
		})
		assert.ErrorIs(t, err, entity.ErrUserBlocked)
	})
}
