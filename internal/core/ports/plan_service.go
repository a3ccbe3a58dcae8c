package ports

import (
	"context"

	"github.com/provnet/isp-admin/internal/core/domain"
)

// PlanInput carries all mutable plan attributes.
type PlanInput struct {
	Name        string
	Price       float64
	Description string
}

// PlanService defines use-case operations for service plans. Delete refuses
// to remove a plan that clients still reference by name.
type PlanService interface {
	List(ctx context.Context) ([]domain.Plan, error)
	Create(ctx context.Context, input PlanInput) (*domain.Plan, error)
	Update(ctx context.Context, id int64, input PlanInput) (*domain.Plan, error)
	Delete(ctx context.Context, id int64) error
}
