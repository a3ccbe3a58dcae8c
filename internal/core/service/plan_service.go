package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/provnet/isp-admin/internal/core/domain"
	"github.com/provnet/isp-admin/internal/core/ports"
)

// PlanService manages service plans. Clients reference plans by name, so
// Delete refuses to remove a plan that is still referenced; Update allows
// renames but does not cascade them to clients.
type PlanService struct {
	storage ports.SyncStorage
	logger  zerolog.Logger

	mu sync.Mutex
}

func NewPlanService(storage ports.SyncStorage, logger zerolog.Logger) *PlanService {
	return &PlanService{storage: storage, logger: logger}
}

func (s *PlanService) List(ctx context.Context) ([]domain.Plan, error) {
	plans := []domain.Plan{}
	if err := s.storage.GetItem(ctx, domain.KeyPlans, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

func (s *PlanService) Create(ctx context.Context, input ports.PlanInput) (*domain.Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	plans, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range plans {
		if p.Name == input.Name {
			return nil, domain.ErrPlanExists
		}
	}

	plan := domain.Plan{
		ID:          time.Now().UnixMilli(),
		Name:        input.Name,
		Price:       input.Price,
		Description: input.Description,
	}
	plans = append(plans, plan)

	if err := s.storage.SetItem(ctx, domain.KeyPlans, plans); err != nil {
		return nil, err
	}
	s.logger.Info().Str("plan", plan.Name).Float64("price", plan.Price).Msg("plan created")
	return &plan, nil
}

func (s *PlanService) Update(ctx context.Context, id int64, input ports.PlanInput) (*domain.Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	plans, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range plans {
		if plans[i].ID == id {
			idx = i
			continue
		}
		if plans[i].Name == input.Name {
			return nil, domain.ErrPlanExists
		}
	}
	if idx < 0 {
		return nil, domain.ErrPlanNotFound
	}

	p := &plans[idx]
	if p.Name != input.Name {
		// Clients keep the old name; the reference is by name on purpose.
		s.logger.Warn().Str("old", p.Name).Str("new", input.Name).Msg("plan renamed, existing clients keep the old name")
	}
	p.Name = input.Name
	p.Price = input.Price
	p.Description = input.Description

	if err := s.storage.SetItem(ctx, domain.KeyPlans, plans); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PlanService) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	plans, err := s.List(ctx)
	if err != nil {
		return err
	}

	idx := -1
	for i := range plans {
		if plans[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return domain.ErrPlanNotFound
	}

	clients := []domain.Client{}
	if err := s.storage.GetItem(ctx, domain.KeyClients, &clients); err != nil {
		return err
	}
	for _, c := range clients {
		if c.Plan == plans[idx].Name {
			return domain.ErrPlanInUse
		}
	}

	name := plans[idx].Name
	plans = append(plans[:idx], plans[idx+1:]...)
	if err := s.storage.SetItem(ctx, domain.KeyPlans, plans); err != nil {
		return err
	}
	s.logger.Info().Str("plan", name).Msg("plan removed")
	return nil
}
