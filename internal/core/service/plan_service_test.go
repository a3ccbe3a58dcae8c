package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/provnet/isp-admin/internal/core/domain"
	"github.com/provnet/isp-admin/internal/core/ports"
)

func TestPlanCreate_DuplicateName(t *testing.T) {
	storage := newStubStorage()
	storage.seed(domain.KeyPlans, []domain.Plan{{ID: 1, Name: "Basic 100"}})
	svc := NewPlanService(storage, zerolog.Nop())

	_, err := svc.Create(context.Background(), ports.PlanInput{Name: "Basic 100", Price: 49.90})
	if !errors.Is(err, domain.ErrPlanExists) {
		t.Fatalf("expected ErrPlanExists, got %v", err)
	}
}

func TestPlanCreate_AppendsToCollection(t *testing.T) {
	storage := newStubStorage()
	storage.seed(domain.KeyPlans, []domain.Plan{{ID: 1, Name: "Basic 100"}})
	svc := NewPlanService(storage, zerolog.Nop())

	plan, err := svc.Create(context.Background(), ports.PlanInput{Name: "Giga 1000", Price: 199.90, Description: "1 Gbps"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if plan.Name != "Giga 1000" || plan.ID == 0 {
		t.Fatalf("unexpected plan: %+v", plan)
	}

	plans, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(plans) != 2 {
		t.Fatalf("expected 2 plans, got %d", len(plans))
	}
}

func TestPlanUpdate_RenameDoesNotCascadeToClients(t *testing.T) {
	storage := newStubStorage()
	storage.seed(domain.KeyPlans, []domain.Plan{{ID: 1, Name: "Basic 100", Price: 49.90}})
	storage.seed(domain.KeyClients, []domain.Client{{ID: 10, Name: "Alice", Plan: "Basic 100"}})
	svc := NewPlanService(storage, zerolog.Nop())

	if _, err := svc.Update(context.Background(), 1, ports.PlanInput{Name: "Basic 150", Price: 54.90}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	var clients []domain.Client
	storage.GetItemSync(domain.KeyClients, &clients)
	if clients[0].Plan != "Basic 100" {
		t.Fatalf("rename cascaded to clients: %q", clients[0].Plan)
	}
}

func TestPlanUpdate_NameCollision(t *testing.T) {
	storage := newStubStorage()
	storage.seed(domain.KeyPlans, []domain.Plan{{ID: 1, Name: "Basic 100"}, {ID: 2, Name: "Plus 300"}})
	svc := NewPlanService(storage, zerolog.Nop())

	_, err := svc.Update(context.Background(), 1, ports.PlanInput{Name: "Plus 300"})
	if !errors.Is(err, domain.ErrPlanExists) {
		t.Fatalf("expected ErrPlanExists, got %v", err)
	}
}

func TestPlanDelete_RefusedWhileReferenced(t *testing.T) {
	storage := newStubStorage()
	storage.seed(domain.KeyPlans, []domain.Plan{{ID: 1, Name: "Basic 100"}})
	storage.seed(domain.KeyClients, []domain.Client{{ID: 10, Name: "Alice", Plan: "Basic 100"}})
	svc := NewPlanService(storage, zerolog.Nop())

	if err := svc.Delete(context.Background(), 1); !errors.Is(err, domain.ErrPlanInUse) {
		t.Fatalf("expected ErrPlanInUse, got %v", err)
	}
}

func TestPlanDelete_UnreferencedRemoved(t *testing.T) {
	storage := newStubStorage()
	storage.seed(domain.KeyPlans, []domain.Plan{{ID: 1, Name: "Basic 100"}, {ID: 2, Name: "Plus 300"}})
	storage.seed(domain.KeyClients, []domain.Client{{ID: 10, Name: "Alice", Plan: "Basic 100"}})
	svc := NewPlanService(storage, zerolog.Nop())

	if err := svc.Delete(context.Background(), 2); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	plans, _ := svc.List(context.Background())
	if len(plans) != 1 || plans[0].Name != "Basic 100" {
		t.Fatalf("unexpected plans after delete: %+v", plans)
	}
}

func TestPlanDelete_NotFound(t *testing.T) {
	svc := NewPlanService(newStubStorage(), zerolog.Nop())

	if err := svc.Delete(context.Background(), 42); !errors.Is(err, domain.ErrPlanNotFound) {
		t.Fatalf("expected ErrPlanNotFound, got %v", err)
	}
}
