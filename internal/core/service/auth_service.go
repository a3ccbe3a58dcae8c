package service

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/provnet/isp-admin/internal/core/domain"
	"github.com/provnet/isp-admin/internal/core/ports"
)

// AuthService implements login against the synchronized user collection.
type AuthService struct {
	storage   ports.SyncStorage
	jwtSecret string
	tokenTTL  time.Duration
}

func NewAuthService(storage ports.SyncStorage, jwtSecret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{storage: storage, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

// Login verifies credentials and returns a signed token plus the user.
// The user lookup goes through the facade, so login keeps working offline
// against the local cache.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	if username == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	var users []domain.User
	if err := s.storage.GetItem(ctx, domain.KeyUsers, &users); err != nil {
		return "", nil, err
	}

	var user *domain.User
	for i := range users {
		if users[i].Username == username {
			user = &users[i]
			break
		}
	}
	if user == nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *AuthService) generateToken(user *domain.User) (string, error) {
	perms := make([]string, len(user.Permissions))
	for i, p := range user.Permissions {
		perms[i] = string(p)
	}

	claims := jwt.MapClaims{
		"sub":         user.ID,
		"username":    user.Username,
		"name":        user.Name,
		"is_admin":    user.IsAdmin,
		"permissions": perms,
		"exp":         time.Now().Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}
