package roles

import (
	"context"

	"github.com/scoopworks/inventory-api/internal/permission"
)

// Store is the persistence surface the service needs.
type Store interface {
	List(ctx context.Context) ([]RoleWithAssignees, error)
	GetByID(ctx context.Context, id int64) (Role, error)
	Create(ctx context.Context, name string) (Role, error)
	Update(ctx context.Context, id int64, name string, tokens permission.TokenSet) error
	ToggleAssignment(ctx context.Context, userID, roleID int64) (bool, error)
}

// Service orchestrates custom role management.
type Service struct {
	store Store
	vocab permission.Vocabulary
}

// NewService constructs a Service over the injected vocabulary.
func NewService(store Store, vocab permission.Vocabulary) *Service {
	return &Service{store: store, vocab: vocab}
}

// List returns every role with its assignees, newest first.
func (s *Service) List(ctx context.Context) ([]RoleWithAssignees, error) {
	return s.store.List(ctx)
}

// Get fetches one role.
func (s *Service) Get(ctx context.Context, id int64) (Role, error) {
	return s.store.GetByID(ctx, id)
}

// Create inserts a new role with no permissions.
func (s *Service) Create(ctx context.Context, name string) (Role, error) {
	return s.store.Create(ctx, name)
}

// Update replaces the role's name and recomputes its permission set from
// the requested boolean flags: each flag adds or removes its token, and
// the resulting set replaces the stored one wholesale.
func (s *Service) Update(ctx context.Context, id int64, name string, flags ProductFlags) error {
	role, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}

	next := role.Permissions.Union(permission.NewTokenSet())
	apply := func(c permission.Capability, granted bool) {
		token, ok := s.vocab.RoleToken(c)
		if !ok {
			return
		}
		if granted {
			next.Add(token)
		} else {
			next.Remove(token)
		}
	}
	apply(permission.CapAddProduct, flags.CanAdd)
	apply(permission.CapViewProduct, flags.CanView)
	apply(permission.CapEditProduct, flags.CanEdit)
	apply(permission.CapDeleteProduct, flags.CanDelete)

	return s.store.Update(ctx, id, name, next)
}

// ToggleAssignment flips the (user, role) assignment and reports whether
// the role is now assigned.
func (s *Service) ToggleAssignment(ctx context.Context, userID, roleID int64) (bool, error) {
	return s.store.ToggleAssignment(ctx, userID, roleID)
}

// Flags renders a role's permission set as product flags.
func (s *Service) Flags(tokens permission.TokenSet) ProductFlags {
	return FlagsFromTokens(s.vocab, tokens)
}
