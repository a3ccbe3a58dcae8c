package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/provnet/isp-admin/internal/core/domain"
	"github.com/provnet/isp-admin/internal/core/ports"
)

// UserService manages back-office operators. Every mutation commits through
// the centralized admin-invariant checks in the domain package, so the
// "never lose the last admin" rules hold regardless of the call site.
type UserService struct {
	storage ports.SyncStorage
	logger  zerolog.Logger

	mu sync.Mutex
}

func NewUserService(storage ports.SyncStorage, logger zerolog.Logger) *UserService {
	return &UserService{storage: storage, logger: logger}
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	users := []domain.User{}
	if err := s.storage.GetItem(ctx, domain.KeyUsers, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *UserService) Create(ctx context.Context, input ports.UserInput) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.Username == input.Username {
			return nil, domain.ErrUserExists
		}
	}

	perms, err := parsePermissions(input.Permissions)
	if err != nil {
		return nil, err
	}
	if input.IsAdmin && len(perms) == 0 {
		return nil, domain.ErrAdminNoPermissions
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UnixMilli()
	user := domain.User{
		ID:          now,
		Username:    input.Username,
		Password:    string(hash),
		Name:        input.Name,
		IsAdmin:     input.IsAdmin,
		Permissions: perms,
		CreatedAt:   now,
	}

	users = append(users, user)
	if err := s.storage.SetItem(ctx, domain.KeyUsers, users); err != nil {
		return nil, err
	}
	s.logger.Info().Str("username", user.Username).Bool("is_admin", user.IsAdmin).Msg("user created")
	return &user, nil
}

func (s *UserService) Update(ctx context.Context, id int64, input ports.UserInput) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range users {
		if users[i].ID == id {
			idx = i
			continue
		}
		if users[i].Username == input.Username {
			return nil, domain.ErrUserExists
		}
	}
	if idx < 0 {
		return nil, domain.ErrUserNotFound
	}

	perms, err := parsePermissions(input.Permissions)
	if err != nil {
		return nil, err
	}

	updated := users[idx]
	updated.Username = input.Username
	updated.Name = input.Name
	updated.IsAdmin = input.IsAdmin
	updated.Permissions = perms
	if input.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		updated.Password = string(hash)
	}

	if err := domain.ValidateUserUpdate(users, updated); err != nil {
		return nil, err
	}

	users[idx] = updated
	if err := s.storage.SetItem(ctx, domain.KeyUsers, users); err != nil {
		return nil, err
	}
	return &users[idx], nil
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.List(ctx)
	if err != nil {
		return err
	}
	if err := domain.ValidateUserDelete(users, id); err != nil {
		return err
	}

	for i := range users {
		if users[i].ID == id {
			username := users[i].Username
			users = append(users[:i], users[i+1:]...)
			if err := s.storage.SetItem(ctx, domain.KeyUsers, users); err != nil {
				return err
			}
			s.logger.Info().Str("username", username).Msg("user removed")
			return nil
		}
	}
	return domain.ErrUserNotFound
}

func parsePermissions(tags []string) ([]domain.Permission, error) {
	perms := make([]domain.Permission, 0, len(tags))
	for _, tag := range tags {
		p := domain.Permission(tag)
		if !domain.ValidPermission(p) {
			return nil, domain.ErrInvalidPermission
		}
		perms = append(perms, p)
	}
	return perms, nil
}
