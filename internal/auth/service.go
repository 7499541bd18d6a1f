package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/scoopworks/inventory-api/internal/permission"
	"github.com/scoopworks/inventory-api/internal/platform/httpx"
	"github.com/scoopworks/inventory-api/internal/users"
)

// Directory is the user lookup surface authentication needs.
type Directory interface {
	GetByEmail(ctx context.Context, email string) (users.User, error)
	GetByEmailWithRoles(ctx context.Context, email string) (users.User, permission.TokenSet, error)
}

// Service validates login credentials.
type Service struct {
	directory Directory
}

// NewService constructs a Service.
func NewService(directory Directory) *Service {
	return &Service{directory: directory}
}

// Authenticate checks email/password. Unknown email and wrong password
// collapse into the same error; a storage failure is not a credential
// problem and propagates as-is.
func (s *Service) Authenticate(ctx context.Context, email, password string) (users.User, error) {
	user, err := s.directory.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return users.User{}, httpx.ErrInvalidCredentials
		}
		return users.User{}, fmt.Errorf("auth: look up user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return users.User{}, httpx.ErrInvalidCredentials
	}
	return user, nil
}
