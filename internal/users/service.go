package users

import (
	"context"

	"github.com/scoopworks/inventory-api/internal/permission"
)

// Store is the persistence surface the service needs.
type Store interface {
	GetByEmail(ctx context.Context, email string) (User, error)
	SetSystemTokens(ctx context.Context, email string, tokens permission.TokenSet) error
}

// Service wraps user account business rules.
type Service struct {
	store Store
	vocab permission.Vocabulary
}

// NewService constructs a Service over the injected vocabulary.
func NewService(store Store, vocab permission.Vocabulary) *Service {
	return &Service{store: store, vocab: vocab}
}

// ToggleAdminMode grants or revokes the admin bundle on the user's
// system-token set as one atomic unit: every resource token plus the
// admin token together. Returns whether the user is an admin afterwards.
func (s *Service) ToggleAdminMode(ctx context.Context, email string) (bool, error) {
	user, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		return false, err
	}

	bundle := s.vocab.AdminBundle()
	var next permission.TokenSet
	nowAdmin := !user.SystemTokens.Has(s.vocab.AdminToken())
	if nowAdmin {
		next = user.SystemTokens.Difference(bundle).Union(bundle)
	} else {
		next = user.SystemTokens.Difference(bundle)
	}

	if err := s.store.SetSystemTokens(ctx, email, next); err != nil {
		return false, err
	}
	return nowAdmin, nil
}
