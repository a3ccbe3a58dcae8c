package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/provnet/isp-admin/internal/core/domain"
	"github.com/provnet/isp-admin/internal/core/ports"
)

func adminUser(id int64, username string) domain.User {
	return domain.User{
		ID:          id,
		Username:    username,
		IsAdmin:     true,
		Permissions: domain.AllPermissions(),
	}
}

func TestUserCreate_HashesPassword(t *testing.T) {
	storage := newStubStorage()
	svc := NewUserService(storage, zerolog.Nop())

	user, err := svc.Create(context.Background(), ports.UserInput{
		Username:    "joao",
		Password:    "hunter2",
		Name:        "Joao",
		Permissions: []string{"clients", "reports"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if user.Password == "hunter2" {
		t.Fatalf("password stored in plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("hunter2")); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}
	if len(user.Permissions) != 2 {
		t.Fatalf("unexpected permissions: %v", user.Permissions)
	}
}

func TestUserCreate_DuplicateUsername(t *testing.T) {
	storage := newStubStorage()
	storage.seed(domain.KeyUsers, []domain.User{adminUser(1, "joao")})
	svc := NewUserService(storage, zerolog.Nop())

	_, err := svc.Create(context.Background(), ports.UserInput{Username: "joao", Password: "x", Permissions: []string{"clients"}})
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestUserCreate_RejectsUnknownPermission(t *testing.T) {
	svc := NewUserService(newStubStorage(), zerolog.Nop())

	_, err := svc.Create(context.Background(), ports.UserInput{
		Username:    "joao",
		Password:    "x",
		Permissions: []string{"billing"},
	})
	if !errors.Is(err, domain.ErrInvalidPermission) {
		t.Fatalf("expected ErrInvalidPermission, got %v", err)
	}
}

func TestUserCreate_AdminNeedsPermissions(t *testing.T) {
	svc := NewUserService(newStubStorage(), zerolog.Nop())

	_, err := svc.Create(context.Background(), ports.UserInput{
		Username: "root",
		Password: "x",
		IsAdmin:  true,
	})
	if !errors.Is(err, domain.ErrAdminNoPermissions) {
		t.Fatalf("expected ErrAdminNoPermissions, got %v", err)
	}
}

func TestUserUpdate_LastAdminKeepsFlag(t *testing.T) {
	storage := newStubStorage()
	storage.seed(domain.KeyUsers, []domain.User{adminUser(1, "root")})
	svc := NewUserService(storage, zerolog.Nop())

	_, err := svc.Update(context.Background(), 1, ports.UserInput{
		Username:    "root",
		Name:        "Root",
		IsAdmin:     false,
		Permissions: []string{"clients"},
	})
	if !errors.Is(err, domain.ErrLastAdmin) {
		t.Fatalf("expected ErrLastAdmin, got %v", err)
	}
}

func TestUserUpdate_DemoteAllowedWithSecondAdmin(t *testing.T) {
	storage := newStubStorage()
	storage.seed(domain.KeyUsers, []domain.User{adminUser(1, "root"), adminUser(2, "backup")})
	svc := NewUserService(storage, zerolog.Nop())

	user, err := svc.Update(context.Background(), 1, ports.UserInput{
		Username:    "root",
		Name:        "Root",
		IsAdmin:     false,
		Permissions: []string{"reports"},
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if user.IsAdmin {
		t.Fatalf("demotion did not apply")
	}
}

func TestUserUpdate_EmptyPasswordKeepsHash(t *testing.T) {
	storage := newStubStorage()
	hash, _ := bcrypt.GenerateFromPassword([]byte("old"), bcrypt.MinCost)
	u := adminUser(1, "root")
	u.Password = string(hash)
	storage.seed(domain.KeyUsers, []domain.User{u})
	svc := NewUserService(storage, zerolog.Nop())

	updated, err := svc.Update(context.Background(), 1, ports.UserInput{
		Username:    "root",
		Name:        "Renamed",
		IsAdmin:     true,
		Permissions: []string{"clients"},
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Password != string(hash) {
		t.Fatalf("password hash changed on empty input")
	}
	if updated.Name != "Renamed" {
		t.Fatalf("name not updated: %q", updated.Name)
	}
}

func TestUserDelete_LastAdminRefused(t *testing.T) {
	storage := newStubStorage()
	storage.seed(domain.KeyUsers, []domain.User{adminUser(1, "root")})
	svc := NewUserService(storage, zerolog.Nop())

	if err := svc.Delete(context.Background(), 1); !errors.Is(err, domain.ErrLastAdmin) {
		t.Fatalf("expected ErrLastAdmin, got %v", err)
	}
}

func TestUserDelete_NonAdminRemoved(t *testing.T) {
	storage := newStubStorage()
	operator := domain.User{ID: 2, Username: "op", Permissions: []domain.Permission{domain.PermClients}}
	storage.seed(domain.KeyUsers, []domain.User{adminUser(1, "root"), operator})
	svc := NewUserService(storage, zerolog.Nop())

	if err := svc.Delete(context.Background(), 2); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	users, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(users) != 1 || users[0].Username != "root" {
		t.Fatalf("unexpected users after delete: %+v", users)
	}
}

func TestUserDelete_NotFound(t *testing.T) {
	storage := newStubStorage()
	storage.seed(domain.KeyUsers, []domain.User{adminUser(1, "root")})
	svc := NewUserService(storage, zerolog.Nop())

	if err := svc.Delete(context.Background(), 999); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
