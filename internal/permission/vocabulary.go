// Package permission holds the closed capability vocabulary and the pure
// resolver that combines system-level and role-level grants into the
// effective view enforced by the route guards.
package permission

// Capability identifies one gated product action.
type Capability string

const (
	CapAddProduct    Capability = "canAddProduct"
	CapViewProduct   Capability = "canViewProduct"
	CapEditProduct   Capability = "canEditProduct"
	CapDeleteProduct Capability = "canDeleteProduct"
)

// Token is an opaque permission identifier. Tokens are never
// partial-matched and never imply one another.
type Token string

// System-namespace tokens stored directly on the user record.
const (
	SystemProductCreate Token = "system.product.canCreate"
	SystemProductRead   Token = "system.product.canRead"
	SystemProductUpdate Token = "system.product.canUpdate"
	SystemProductDelete Token = "system.product.canDelete"
	SystemAdminAll      Token = "system.admin.all"
)

// Role-namespace tokens stored on custom roles. A role-level grant and a
// system-level grant for the same action are independent facts that both
// satisfy the same capability.
const (
	RoleProductCreate Token = "user.product.canCreate"
	RoleProductRead   Token = "user.product.canRead"
	RoleProductUpdate Token = "user.product.canUpdate"
	RoleProductDelete Token = "user.product.canDelete"
)

// Vocabulary is the immutable mapping from capabilities to their token
// pair. Construct it once with DefaultVocabulary and inject it; nothing
// in the engine mutates it.
type Vocabulary struct {
	systemTokens map[Capability]Token
	roleTokens   map[Capability]Token
	adminToken   Token
}

// DefaultVocabulary returns the vocabulary for the product resource.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		systemTokens: map[Capability]Token{
			CapAddProduct:    SystemProductCreate,
			CapViewProduct:   SystemProductRead,
			CapEditProduct:   SystemProductUpdate,
			CapDeleteProduct: SystemProductDelete,
		},
		roleTokens: map[Capability]Token{
			CapAddProduct:    RoleProductCreate,
			CapViewProduct:   RoleProductRead,
			CapEditProduct:   RoleProductUpdate,
			CapDeleteProduct: RoleProductDelete,
		},
		adminToken: SystemAdminAll,
	}
}

// SystemToken returns the system-namespace token for a capability.
func (v Vocabulary) SystemToken(c Capability) (Token, bool) {
	t, ok := v.systemTokens[c]
	return t, ok
}

// RoleToken returns the role-namespace token for a capability.
func (v Vocabulary) RoleToken(c Capability) (Token, bool) {
	t, ok := v.roleTokens[c]
	return t, ok
}

// AdminToken returns the token that marks system administrators.
func (v Vocabulary) AdminToken() Token {
	return v.adminToken
}

// AdminBundle returns the full set of system tokens granted or revoked as
// one atomic unit by the admin-mode toggle.
func (v Vocabulary) AdminBundle() TokenSet {
	bundle := NewTokenSet(
		SystemProductCreate,
		SystemProductRead,
		SystemProductUpdate,
		SystemProductDelete,
	)
	bundle.Add(v.adminToken)
	return bundle
}

// Capabilities lists every capability in the vocabulary in a stable order.
func (v Vocabulary) Capabilities() []Capability {
	return []Capability{CapAddProduct, CapViewProduct, CapEditProduct, CapDeleteProduct}
}
