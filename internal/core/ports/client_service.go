package ports

import (
	"context"

	"github.com/provnet/isp-admin/internal/core/domain"
)

// ClientInput carries all mutable client attributes.
type ClientInput struct {
	Name     string
	Email    string
	Phone    string
	Document string
	Street   string
	Number   string
	District string
	City     string
	State    string
	ZipCode  string
	Plan     string
	Status   string
}

// ClientService defines use-case operations for the client registry.
type ClientService interface {
	List(ctx context.Context) ([]domain.Client, error)
	Get(ctx context.Context, id int64) (*domain.Client, error)
	Create(ctx context.Context, input ClientInput) (*domain.Client, error)
	Update(ctx context.Context, id int64, input ClientInput) (*domain.Client, error)
	Delete(ctx context.Context, id int64) error
}
