package users

import "github.com/scoopworks/inventory-api/internal/permission"

// User is an account record. SystemTokens is the unordered set of
// system-namespace permission tokens stored directly on the record,
// independent of any role assignment.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	SystemTokens permission.TokenSet
}
