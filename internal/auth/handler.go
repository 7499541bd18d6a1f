package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/scoopworks/inventory-api/internal/permission"
	"github.com/scoopworks/inventory-api/internal/platform/httpx"
	"github.com/scoopworks/inventory-api/internal/users"
)

// Handler wires the user-facing authentication endpoints.
type Handler struct {
	logger     *slog.Logger
	service    *Service
	accounts   *users.Service
	directory  Directory
	tokens     *TokenManager
	resolver   permission.Resolver
	cookieName string
	validator  *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, accounts *users.Service, directory Directory, tokens *TokenManager, resolver permission.Resolver, cookieName string) *Handler {
	return &Handler{
		logger:     logger,
		service:    service,
		accounts:   accounts,
		directory:  directory,
		tokens:     tokens,
		resolver:   resolver,
		cookieName: cookieName,
		validator:  validator.New(),
	}
}

// MountRoutes registers the auth routes. The me and admin-mode routes
// expect the Authenticate guard to be attached by the router.
func (h *Handler) MountRoutes(public, authenticated chi.Router) {
	public.Post("/login", h.handleLogin)
	public.Delete("/logout", h.handleLogout)
	authenticated.Get("/me", h.handleMe)
	authenticated.Post("/admin-mode", h.handleToggleAdminMode)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

func loginValidationPayload(err error) httpx.ErrorPayload {
	var payload httpx.ErrorPayload
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return httpx.NewErrorPayload(httpx.ErrNameBadRequest, "general", "Bad request.")
	}
	for _, fieldErr := range fieldErrs {
		switch fieldErr.Field() {
		case "Email":
			payload.Errors = append(payload.Errors, httpx.APIError{
				Name: "error.invalidEmail", Type: "email", Message: "Please enter an email",
			})
		case "Password":
			payload.Errors = append(payload.Errors, httpx.APIError{
				Name: "error.invalidPassword", Type: "password", Message: "Please enter a password",
			})
		}
	}
	if len(payload.Errors) == 0 {
		return httpx.NewErrorPayload(httpx.ErrNameBadRequest, "general", "Bad request.")
	}
	return payload
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body loginRequest
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.BadRequest(w, "")
		return
	}
	if err := h.validator.Struct(body); err != nil {
		httpx.JSON(w, http.StatusBadRequest, loginValidationPayload(err))
		return
	}

	user, err := h.service.Authenticate(r.Context(), body.Email, body.Password)
	if err != nil {
		if errors.Is(err, httpx.ErrInvalidCredentials) {
			httpx.JSON(w, http.StatusUnauthorized,
				httpx.NewErrorPayload("error.invalidCredentials", "general", "Invalid email/password"))
			return
		}
		h.logger.Error("authenticate user", slog.Any("error", err))
		httpx.InternalServer(w)
		return
	}

	accessToken, err := h.tokens.Issue(Identity{ID: user.ID, Email: user.Email})
	if err != nil {
		h.logger.Error("issue session token", slog.Any("error", err))
		httpx.InternalServer(w)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    accessToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
	httpx.JSON(w, http.StatusOK, map[string]string{
		"accessToken": accessToken,
		"email":       user.Email,
	})
}

// handleLogout clears the session cookie. A bearer-presented copy of the
// same token stays valid until expiry; there is no server-side
// revocation.
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
	httpx.NoContent(w)
}

type meResponse struct {
	Email       string          `json:"email"`
	IsAdmin     bool            `json:"isAdmin"`
	Permissions permission.View `json:"permissions"`
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		httpx.Unauthorized(w, "")
		return
	}

	user, roleTokens, err := h.directory.GetByEmailWithRoles(r.Context(), identity.Email)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			httpx.NotFound(w, "User not found")
			return
		}
		h.logger.Error("load current user", slog.Any("error", err))
		httpx.InternalServer(w)
		return
	}

	view := h.resolver.Resolve(user.SystemTokens, roleTokens)
	httpx.JSON(w, http.StatusOK, meResponse{
		Email:       user.Email,
		IsAdmin:     view.IsAdmin,
		Permissions: view,
	})
}

func (h *Handler) handleToggleAdminMode(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		httpx.Unauthorized(w, "")
		return
	}

	if _, err := h.accounts.ToggleAdminMode(r.Context(), identity.Email); err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			httpx.NotFound(w, "User not found")
			return
		}
		h.logger.Error("toggle admin mode", slog.Any("error", err))
		httpx.InternalServer(w)
		return
	}
	httpx.NoContent(w)
}
