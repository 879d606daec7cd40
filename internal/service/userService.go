package service

import (
	"context"
	"errors"
	"strings"

	"github.com/evently/evently/config"
	repository "github.com/evently/evently/internal/database/postgres"
	"github.com/evently/evently/internal/entity"
	"github.com/evently/evently/pkg/session"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type userService struct {
	userRepo repository.UserRepository
	sessions *session.Manager
	cfg      *config.AuthConfig
}

func NewUserService(
	userRepo repository.UserRepository,
	sessions *session.Manager,
	cfg *config.AuthConfig,
) UserService {
	return &userService{
		userRepo: userRepo,
		sessions: sessions,
		cfg:      cfg,
	}
}

// Signup регистрирует пользователя и сразу открывает сессию. Через
// публичную регистрацию можно получить только роли owner и staff; роль
// admin назначается существующим админом.
func (s *userService) Signup(ctx context.Context, req *SignupRequest) (*SessionResult, error) {
	name := strings.TrimSpace(req.Name)
	email := normalizeEmail(req.Email)
	if name == "" || !validEmail(email) || len(req.Password) < 8 {
		return nil, entity.ErrInvalidInput
	}

	role := entity.UserRole(req.Role)
	if role == "" {
		role = entity.RoleOwner
	}
	if role != entity.RoleOwner && role != entity.RoleStaff {
		return nil, entity.ErrInvalidRole
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.openSession(user)
}

func (s *userService) Login(ctx context.Context, req *LoginRequest) (*SessionResult, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, entity.ErrInvalidInput
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if errors.Is(err, entity.ErrUserNotFound) {
		// Одинаковый ответ для неизвестного email и неверного пароля.
		return nil, entity.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, entity.ErrInvalidCredentials
	}

	if user.IsBlocked {
		return nil, entity.ErrUserBlocked
	}

	return s.openSession(user)
}

func (s *userService) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *userService) openSession(user *entity.User) (*SessionResult, error) {
	token, err := s.sessions.Sign(user.ID.String(), string(user.Role), user.Name, user.Email)
	if err != nil {
		return nil, err
	}
	return &SessionResult{User: user, Token: token}, nil
}
