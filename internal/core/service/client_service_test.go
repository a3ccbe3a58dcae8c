package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/provnet/isp-admin/internal/core/domain"
	"github.com/provnet/isp-admin/internal/core/ports"
)

func planFixture() []domain.Plan {
	return []domain.Plan{{ID: 1, Name: "Basic 100", Price: 49.90}}
}

func clientInput() ports.ClientInput {
	return ports.ClientInput{
		Name:     "Alice",
		Email:    "alice@example.com",
		Phone:    "11999990000",
		Document: "123.456.789-00",
		Street:   "Rua A",
		Number:   "10",
		District: "Centro",
		City:     "Sao Paulo",
		State:    "SP",
		ZipCode:  "01000-000",
		Plan:     "Basic 100",
	}
}

func TestClientCreate_DefaultsToActive(t *testing.T) {
	storage := newStubStorage()
	storage.seed(domain.KeyPlans, planFixture())
	svc := NewClientService(storage, zerolog.Nop())

	client, err := svc.Create(context.Background(), clientInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if client.Status != domain.ClientActive {
		t.Fatalf("expected active status, got %q", client.Status)
	}
	if client.ID == 0 || client.CreatedAt == 0 {
		t.Fatalf("id/timestamp not assigned: %+v", client)
	}
	if client.Address.City != "Sao Paulo" {
		t.Fatalf("address not mapped: %+v", client.Address)
	}
}

func TestClientCreate_UnknownPlanRejected(t *testing.T) {
	storage := newStubStorage()
	storage.seed(domain.KeyPlans, planFixture())
	svc := NewClientService(storage, zerolog.Nop())

	input := clientInput()
	input.Plan = "Nonexistent"
	_, err := svc.Create(context.Background(), input)
	if !errors.Is(err, domain.ErrPlanNotFound) {
		t.Fatalf("expected ErrPlanNotFound, got %v", err)
	}
}

func TestClientCreate_DuplicateDocument(t *testing.T) {
	storage := newStubStorage()
	storage.seed(domain.KeyPlans, planFixture())
	svc := NewClientService(storage, zerolog.Nop())

	if _, err := svc.Create(context.Background(), clientInput()); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	_, err := svc.Create(context.Background(), clientInput())
	if !errors.Is(err, domain.ErrClientExists) {
		t.Fatalf("expected ErrClientExists, got %v", err)
	}
}

func TestClientUpdate_StatusTransition(t *testing.T) {
	storage := newStubStorage()
	storage.seed(domain.KeyPlans, planFixture())
	svc := NewClientService(storage, zerolog.Nop())

	client, err := svc.Create(context.Background(), clientInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	input := clientInput()
	input.Status = "suspended"
	updated, err := svc.Update(context.Background(), client.ID, input)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Status != domain.ClientSuspended {
		t.Fatalf("expected suspended, got %q", updated.Status)
	}
}

func TestClientUpdate_NotFound(t *testing.T) {
	storage := newStubStorage()
	storage.seed(domain.KeyPlans, planFixture())
	svc := NewClientService(storage, zerolog.Nop())

	_, err := svc.Update(context.Background(), 42, clientInput())
	if !errors.Is(err, domain.ErrClientNotFound) {
		t.Fatalf("expected ErrClientNotFound, got %v", err)
	}
}

func TestClientDelete_RemovesFromCollection(t *testing.T) {
	storage := newStubStorage()
	storage.seed(domain.KeyPlans, planFixture())
	svc := NewClientService(storage, zerolog.Nop())

	client, err := svc.Create(context.Background(), clientInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := svc.Delete(context.Background(), client.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	clients, _ := svc.List(context.Background())
	if len(clients) != 0 {
		t.Fatalf("client still present: %+v", clients)
	}

	if err := svc.Delete(context.Background(), client.ID); !errors.Is(err, domain.ErrClientNotFound) {
		t.Fatalf("expected ErrClientNotFound, got %v", err)
	}
}

func TestClientGet_ByID(t *testing.T) {
	storage := newStubStorage()
	storage.seed(domain.KeyPlans, planFixture())
	svc := NewClientService(storage, zerolog.Nop())

	created, err := svc.Create(context.Background(), clientInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := svc.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "Alice" {
		t.Fatalf("unexpected client: %+v", got)
	}
}
