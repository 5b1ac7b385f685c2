package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rl1809/inventory/internal/core/domain"
	"github.com/rl1809/inventory/internal/port"
)

type UserService struct {
	users    port.UserRepository
	digester port.Digester
}

func NewUserService(users port.UserRepository, digester port.Digester) *UserService {
	return &UserService{users: users, digester: digester}
}

// Create registers a new user with the permission bundle of its role.
func (s *UserService) Create(ctx context.Context, username, password string, role domain.Role) (*domain.User, error) {
	if role == "" {
		role = domain.RoleStaff
	}
	if !domain.ValidRole(role) {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidRole, role)
	}

	user := &domain.User{
		ID:             uuid.NewString(),
		Username:       username,
		PasswordDigest: s.digester.Digest(password),
		Role:           role,
		Permissions:    domain.DefaultPermissions(role),
		IsActive:       true,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

// UpdateRole moves a user to the given role and replaces the explicit
// permission set with the role's bundle.
func (s *UserService) UpdateRole(ctx context.Context, id string, role domain.Role) error {
	if !domain.ValidRole(role) {
		return fmt.Errorf("%w: %s", domain.ErrInvalidRole, role)
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrInvalidReference, id)
	}
	return s.users.UpdateRole(ctx, id, role, domain.DefaultPermissions(role))
}

// EnsureAdmin seeds the default admin account when it does not exist.
func (s *UserService) EnsureAdmin(ctx context.Context, username, password string) error {
	existing, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("check admin user: %w", err)
	}
	if existing != nil {
		return nil
	}
	if _, err := s.Create(ctx, username, password, domain.RoleAdmin); err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}
	slog.Info("seeded admin user", "username", username)
	return nil
}
