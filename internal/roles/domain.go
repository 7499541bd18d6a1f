package roles

import "github.com/scoopworks/inventory-api/internal/permission"

// Role is an admin-defined bundle of role-namespace permission tokens.
type Role struct {
	ID          int64
	Name        string
	Permissions permission.TokenSet
}

// RoleWithAssignees pairs a role with the emails of every user it is
// currently assigned to. Used by the admin role-management view.
type RoleWithAssignees struct {
	Role
	AssignedEmails []string
}

// ProductFlags is the boolean request/response form of a role's product
// permission set.
type ProductFlags struct {
	CanAdd    bool `json:"canAdd"`
	CanView   bool `json:"canView"`
	CanEdit   bool `json:"canEdit"`
	CanDelete bool `json:"canDelete"`
}

// FlagsFromTokens renders a token set as product flags.
func FlagsFromTokens(vocab permission.Vocabulary, tokens permission.TokenSet) ProductFlags {
	has := func(c permission.Capability) bool {
		t, ok := vocab.RoleToken(c)
		return ok && tokens.Has(t)
	}
	return ProductFlags{
		CanAdd:    has(permission.CapAddProduct),
		CanView:   has(permission.CapViewProduct),
		CanEdit:   has(permission.CapEditProduct),
		CanDelete: has(permission.CapDeleteProduct),
	}
}
