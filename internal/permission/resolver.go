package permission

// View is the effective permission set derived for one request. It is
// never persisted; guards recompute it from storage on every check.
type View struct {
	IsAdmin          bool `json:"-"`
	CanAddProduct    bool `json:"canAddProduct"`
	CanViewProduct   bool `json:"canViewProduct"`
	CanEditProduct   bool `json:"canEditProduct"`
	CanDeleteProduct bool `json:"canDeleteProduct"`
}

// Allows reports whether the view grants the capability. Admin status
// bypasses every resource check.
func (v View) Allows(c Capability) bool {
	if v.IsAdmin {
		return true
	}
	switch c {
	case CapAddProduct:
		return v.CanAddProduct
	case CapViewProduct:
		return v.CanViewProduct
	case CapEditProduct:
		return v.CanEditProduct
	case CapDeleteProduct:
		return v.CanDeleteProduct
	}
	return false
}

// Resolver combines system-level and role-level grants into a View.
// It performs no I/O; callers hand it rows already fetched from storage.
type Resolver struct {
	vocab Vocabulary
}

// NewResolver constructs a Resolver over the given vocabulary.
func NewResolver(vocab Vocabulary) Resolver {
	return Resolver{vocab: vocab}
}

// Vocabulary exposes the injected vocabulary.
func (r Resolver) Vocabulary() Vocabulary {
	return r.vocab
}

// Resolve computes the effective view. systemTokens come from the user
// record; roleTokens is the union across every custom role currently
// assigned to the user. Per capability the rule is
// systemGrant OR anyAssignedRoleGrant.
func (r Resolver) Resolve(systemTokens, roleTokens TokenSet) View {
	allows := func(c Capability) bool {
		if t, ok := r.vocab.SystemToken(c); ok && systemTokens.Has(t) {
			return true
		}
		if t, ok := r.vocab.RoleToken(c); ok && roleTokens.Has(t) {
			return true
		}
		return false
	}
	return View{
		IsAdmin:          systemTokens.Has(r.vocab.AdminToken()),
		CanAddProduct:    allows(CapAddProduct),
		CanViewProduct:   allows(CapViewProduct),
		CanEditProduct:   allows(CapEditProduct),
		CanDeleteProduct: allows(CapDeleteProduct),
	}
}
