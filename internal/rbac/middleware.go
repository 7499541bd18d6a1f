// Package rbac implements the per-route authorization guard chain:
// authenticate, admin-only, and admin-or-capability checks that
// short-circuit on first failure.
package rbac

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/scoopworks/inventory-api/internal/auth"
	"github.com/scoopworks/inventory-api/internal/permission"
	"github.com/scoopworks/inventory-api/internal/platform/httpx"
	"github.com/scoopworks/inventory-api/internal/users"
)

// Error payload names produced by the guards. Missing and invalid
// credentials deliberately share one name so responses do not leak which
// failure occurred.
const (
	ErrNameInsufficientPrivilege = "error.insufficientPrivilege"
	ErrNameInvalidAuth           = "error.invalidAuth"
	errPrefixCapability          = "error.insufficientPrivilegeProduct."
)

// UserDirectory is the user lookup surface the guards consume. Guards
// that evaluate capabilities re-fetch role assignments on every request;
// nothing is cached across requests.
type UserDirectory interface {
	GetByEmail(ctx context.Context, email string) (users.User, error)
	GetByEmailWithRoles(ctx context.Context, email string) (users.User, permission.TokenSet, error)
}

// Middleware carries the dependencies shared by the guard chain.
type Middleware struct {
	Logger     *slog.Logger
	Tokens     *auth.TokenManager
	CookieName string
	Users      UserDirectory
	Resolver   permission.Resolver
}

// Authenticate resolves the session credential from the cookie or the
// Authorization header and verifies it. Both a missing and an invalid
// token stop the chain with the same 401 payload.
func (m Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := auth.TokenFromRequest(r, m.CookieName)
		if !ok {
			httpx.JSON(w, http.StatusUnauthorized,
				httpx.NewErrorPayload(ErrNameInsufficientPrivilege, "general", "Authentication required"))
			return
		}
		identity, err := m.Tokens.Verify(token)
		if err != nil {
			httpx.JSON(w, http.StatusUnauthorized,
				httpx.NewErrorPayload(ErrNameInsufficientPrivilege, "general", "Authentication required"))
			return
		}
		ctx := auth.ContextWithIdentity(r.Context(), identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin permits only system administrators past it.
func (m Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := auth.IdentityFromContext(r.Context())
		if !ok || identity.Email == "" {
			httpx.JSON(w, http.StatusUnauthorized,
				httpx.NewErrorPayload(ErrNameInvalidAuth, "general", "Invalid authentication"))
			return
		}

		user, err := m.Users.GetByEmail(r.Context(), identity.Email)
		if err != nil {
			m.Logger.Error("rbac admin lookup", slog.String("email", identity.Email), slog.Any("error", err))
			httpx.InternalServer(w)
			return
		}

		view := m.Resolver.Resolve(user.SystemTokens, nil)
		if !view.IsAdmin {
			httpx.JSON(w, http.StatusUnauthorized,
				httpx.NewErrorPayload(ErrNameInsufficientPrivilege, "general", "Authentication required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireCapability permits administrators unconditionally, and anyone
// else whose effective view grants the capability. The effective view is
// recomputed from storage per request because role assignments can
// change between requests.
func (m Middleware) RequireCapability(capability permission.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := auth.IdentityFromContext(r.Context())
			if !ok || identity.Email == "" {
				httpx.JSON(w, http.StatusUnauthorized,
					httpx.NewErrorPayload(ErrNameInvalidAuth, "general", "Invalid authentication"))
				return
			}

			user, roleTokens, err := m.Users.GetByEmailWithRoles(r.Context(), identity.Email)
			if err != nil {
				m.Logger.Error("rbac capability lookup",
					slog.String("email", identity.Email),
					slog.String("capability", string(capability)),
					slog.Any("error", err))
				httpx.InternalServer(w)
				return
			}

			view := m.Resolver.Resolve(user.SystemTokens, roleTokens)
			if !view.Allows(capability) {
				httpx.JSON(w, http.StatusUnauthorized,
					httpx.NewErrorPayload(errPrefixCapability+string(capability), "general", "Authentication required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
