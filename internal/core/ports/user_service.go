package ports

import (
	"context"

	"github.com/provnet/isp-admin/internal/core/domain"
)

// UserInput carries all mutable user attributes. Password is the plaintext
// submitted by the operator; it is hashed before persistence. An empty
// Password on update keeps the current hash.
type UserInput struct {
	Username    string
	Password    string
	Name        string
	IsAdmin     bool
	Permissions []string
}

// UserService defines use-case operations for back-office operators. Every
// mutation runs through the centralized admin-invariant checks.
type UserService interface {
	List(ctx context.Context) ([]domain.User, error)
	Create(ctx context.Context, input UserInput) (*domain.User, error)
	Update(ctx context.Context, id int64, input UserInput) (*domain.User, error)
	Delete(ctx context.Context, id int64) error
}
