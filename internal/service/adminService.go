package service

import (
	"context"
	"errors"
	"strings"

	repository "github.com/evently/evently/internal/database/postgres"
	"github.com/evently/evently/internal/entity"
)

type adminService struct {
	userRepo  repository.UserRepository
	eventRepo repository.EventRepository
}

func NewAdminService(
	userRepo repository.UserRepository,
	eventRepo repository.EventRepository,
) AdminService {
	return &adminService{
		userRepo:  userRepo,
		eventRepo: eventRepo,
	}
}

func (s *adminService) Counts(ctx context.Context) (*entity.AdminCounts, error) {
	return s.userRepo.Counts(ctx)
}

func (s *adminService) ListUsers(ctx context.Context, query string, role string) ([]*entity.AdminUserListItem, error) {
	roleFilter := entity.UserRole(strings.TrimSpace(role))
	if roleFilter != "" && !entity.ValidRole(roleFilter) {
		return nil, entity.ErrInvalidRole
	}
	return s.userRepo.ListWithEventCounts(ctx, strings.TrimSpace(query), roleFilter)
}

func (s *adminService) SetUserBlocked(ctx context.Context, userID string, blocked bool) error {
	id, err := parseID(userID)
	if err != nil {
		return err
	}
	return s.userRepo.SetBlocked(ctx, id, blocked)
}

func (s *adminService) SetUserRole(ctx context.Context, userID string, role string) error {
	id, err := parseID(userID)
	if err != nil {
		return err
	}

	newRole := entity.UserRole(role)
	if !entity.ValidRole(newRole) {
		return entity.ErrInvalidRole
	}
	return s.userRepo.SetRole(ctx, id, newRole)
}

func (s *adminService) ListAllEvents(ctx context.Context) ([]*entity.EventDTO, error) {
	events, err := s.eventRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return toDTOs(events), nil
}

// AssignEvent закрепляет мероприятие за сотрудником; пустой staffID
// снимает назначение. Назначить можно только пользователя с ролью staff.
func (s *adminService) AssignEvent(ctx context.Context, eventID string, staffID string) error {
	id, err := parseID(eventID)
	if err != nil {
		return err
	}

	if strings.TrimSpace(staffID) == "" {
		return s.eventRepo.Assign(ctx, id, nil)
	}

	staff, err := parseID(staffID)
	if err != nil {
		return err
	}

	user, err := s.userRepo.GetByID(ctx, staff)
	if errors.Is(err, entity.ErrUserNotFound) {
		return entity.ErrStaffNotFound
	}
	if err != nil {
		return err
	}
	if user.Role != entity.RoleStaff {
		return entity.ErrStaffNotFound
	}

	staffUUID := user.ID
	return s.eventRepo.Assign(ctx, id, &staffUUID)
}
