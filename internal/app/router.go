package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/scoopworks/inventory-api/internal/auth"
	"github.com/scoopworks/inventory-api/internal/inventory"
	"github.com/scoopworks/inventory-api/internal/permission"
	"github.com/scoopworks/inventory-api/internal/rbac"
	"github.com/scoopworks/inventory-api/internal/roles"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	AuthHandler      *auth.Handler
	RolesHandler     *roles.Handler
	InventoryHandler *inventory.Handler
	Guards           rbac.Middleware
}

// NewRouter constructs the chi.Router with the API routes and their
// guard chains.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/user", func(r chi.Router) {
			authenticated := r.With(params.Guards.Authenticate)
			params.AuthHandler.MountRoutes(r, authenticated)
		})

		r.Route("/user-roles", func(r chi.Router) {
			r.Use(params.Guards.Authenticate)
			r.Use(params.Guards.RequireAdmin)
			params.RolesHandler.MountRoutes(r)
		})

		r.Route("/inventory", func(r chi.Router) {
			params.InventoryHandler.MountRoutes(r, inventory.Guards{
				Authenticate:     params.Guards.Authenticate,
				RequireAdmin:     params.Guards.RequireAdmin,
				CanViewProduct:   params.Guards.RequireCapability(permission.CapViewProduct),
				CanAddProduct:    params.Guards.RequireCapability(permission.CapAddProduct),
				CanEditProduct:   params.Guards.RequireCapability(permission.CapEditProduct),
				CanDeleteProduct: params.Guards.RequireCapability(permission.CapDeleteProduct),
			})
		})
	})

	return r
}
