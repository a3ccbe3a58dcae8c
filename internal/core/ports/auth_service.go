package ports

import (
	"context"

	"github.com/provnet/isp-admin/internal/core/domain"
)

// AuthService authenticates back-office operators against the synchronized
// user collection.
type AuthService interface {
	// Login verifies credentials and returns a signed token plus the user.
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
}
