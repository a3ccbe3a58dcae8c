package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/provnet/isp-admin/internal/core/domain"
	"github.com/provnet/isp-admin/internal/core/ports"
)

// ClientService manages the client registry. The whole collection lives as
// one array under the "clients" key, so every mutation is a read-modify-write
// of the array; a mutex serializes mutations within this process. Plan is
// referenced by name; the reference is validated on create and update but a
// later plan rename does not cascade.
type ClientService struct {
	storage ports.SyncStorage
	logger  zerolog.Logger

	mu sync.Mutex
}

func NewClientService(storage ports.SyncStorage, logger zerolog.Logger) *ClientService {
	return &ClientService{storage: storage, logger: logger}
}

func (s *ClientService) List(ctx context.Context) ([]domain.Client, error) {
	clients := []domain.Client{}
	if err := s.storage.GetItem(ctx, domain.KeyClients, &clients); err != nil {
		return nil, err
	}
	return clients, nil
}

func (s *ClientService) Get(ctx context.Context, id int64) (*domain.Client, error) {
	clients, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range clients {
		if clients[i].ID == id {
			return &clients[i], nil
		}
	}
	return nil, domain.ErrClientNotFound
}

func (s *ClientService) Create(ctx context.Context, input ports.ClientInput) (*domain.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	clients, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range clients {
		if c.Document != "" && c.Document == input.Document {
			return nil, domain.ErrClientExists
		}
	}
	if err := s.validatePlanRef(ctx, input.Plan); err != nil {
		return nil, err
	}

	now := time.Now().UnixMilli()
	client := domain.Client{
		ID:        now,
		Name:      input.Name,
		Email:     input.Email,
		Phone:     input.Phone,
		Document:  input.Document,
		Address:   addressFromInput(input),
		Plan:      input.Plan,
		Status:    clientStatus(input.Status),
		CreatedAt: now,
	}

	clients = append(clients, client)
	if err := s.storage.SetItem(ctx, domain.KeyClients, clients); err != nil {
		s.logger.Error().Err(err).Msg("failed to persist client")
		return nil, err
	}

	s.logger.Info().Int64("client_id", client.ID).Str("plan", client.Plan).Msg("client registered")
	return &client, nil
}

func (s *ClientService) Update(ctx context.Context, id int64, input ports.ClientInput) (*domain.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	clients, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range clients {
		if clients[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, domain.ErrClientNotFound
	}
	if err := s.validatePlanRef(ctx, input.Plan); err != nil {
		return nil, err
	}

	c := &clients[idx]
	c.Name = input.Name
	c.Email = input.Email
	c.Phone = input.Phone
	c.Document = input.Document
	c.Address = addressFromInput(input)
	c.Plan = input.Plan
	c.Status = clientStatus(input.Status)

	if err := s.storage.SetItem(ctx, domain.KeyClients, clients); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *ClientService) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clients, err := s.List(ctx)
	if err != nil {
		return err
	}
	for i := range clients {
		if clients[i].ID == id {
			clients = append(clients[:i], clients[i+1:]...)
			if err := s.storage.SetItem(ctx, domain.KeyClients, clients); err != nil {
				return err
			}
			s.logger.Info().Int64("client_id", id).Msg("client removed")
			return nil
		}
	}
	return domain.ErrClientNotFound
}

// validatePlanRef checks that a non-empty plan name exists. The check reads
// through the facade, so it degrades to the local cache when offline.
func (s *ClientService) validatePlanRef(ctx context.Context, name string) error {
	if name == "" {
		return nil
	}
	plans := []domain.Plan{}
	if err := s.storage.GetItem(ctx, domain.KeyPlans, &plans); err != nil {
		return err
	}
	for _, p := range plans {
		if p.Name == name {
			return nil
		}
	}
	return domain.ErrPlanNotFound
}

func addressFromInput(input ports.ClientInput) domain.Address {
	return domain.Address{
		Street:   input.Street,
		Number:   input.Number,
		District: input.District,
		City:     input.City,
		State:    input.State,
		ZipCode:  input.ZipCode,
	}
}

func clientStatus(s string) domain.ClientStatus {
	switch domain.ClientStatus(s) {
	case domain.ClientSuspended:
		return domain.ClientSuspended
	case domain.ClientCancelled:
		return domain.ClientCancelled
	default:
		return domain.ClientActive
	}
}
