package roles

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/scoopworks/inventory-api/internal/platform/httpx"
)

// UserDirectory is the user lookup surface the handler needs.
type UserDirectory interface {
	FindIDByEmail(ctx context.Context, email string) (int64, error)
	ListEmails(ctx context.Context) ([]string, error)
}

// Handler wires the admin role-management endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	users     UserDirectory
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, users UserDirectory) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		users:     users,
		validator: validator.New(),
	}
}

// MountRoutes registers the role routes. Guards are attached by the
// router; every route here assumes an authenticated admin.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Patch("/{id}", h.update)
	r.Post("/{id}/toggle", h.toggle)
}

type rolePermissionsBody struct {
	Product ProductFlags `json:"product"`
}

type roleView struct {
	ID          int64               `json:"id"`
	Name        string              `json:"name"`
	Permissions rolePermissionsBody `json:"permissions"`
	Targets     []targetView        `json:"targets"`
}

type targetView struct {
	Email   string `json:"email"`
	Applied bool   `json:"applied"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	listed, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list roles", slog.Any("error", err))
		httpx.InternalServer(w)
		return
	}
	emails, err := h.users.ListEmails(r.Context())
	if err != nil {
		h.logger.Error("list users for roles", slog.Any("error", err))
		httpx.InternalServer(w)
		return
	}

	views := make([]roleView, 0, len(listed))
	for _, role := range listed {
		targets := make([]targetView, 0, len(emails))
		for _, email := range emails {
			targets = append(targets, targetView{
				Email:   email,
				Applied: slices.Contains(role.AssignedEmails, email),
			})
		}
		views = append(views, roleView{
			ID:          role.ID,
			Name:        role.Name,
			Permissions: rolePermissionsBody{Product: h.service.Flags(role.Permissions)},
			Targets:     targets,
		})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"userRoles": views})
}

type createRoleRequest struct {
	Name string `json:"name" validate:"required,min=1"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var body createRoleRequest
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.BadRequest(w, "")
		return
	}
	if err := h.validator.Struct(body); err != nil {
		httpx.BadRequest(w, "")
		return
	}

	role, err := h.service.Create(r.Context(), body.Name)
	if err != nil {
		h.logger.Error("create role", slog.Any("error", err))
		httpx.InternalServer(w)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"userRoles": map[string]any{"id": role.ID, "name": role.Name},
	})
}

type updateRoleRequest struct {
	Name        string              `json:"name" validate:"required,min=1"`
	Permissions rolePermissionsBody `json:"permissions"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		httpx.BadRequest(w, "")
		return
	}

	var body updateRoleRequest
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.BadRequest(w, "")
		return
	}
	if err := h.validator.Struct(body); err != nil {
		httpx.BadRequest(w, "")
		return
	}

	if err := h.service.Update(r.Context(), id, body.Name, body.Permissions.Product); err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			httpx.NotFound(w, "")
			return
		}
		h.logger.Error("update role", slog.Int64("role_id", id), slog.Any("error", err))
		httpx.InternalServer(w)
		return
	}
	httpx.NoContent(w)
}

type toggleRoleRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (h *Handler) toggle(w http.ResponseWriter, r *http.Request) {
	roleID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || roleID < 1 {
		httpx.BadRequest(w, "")
		return
	}

	var body toggleRoleRequest
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.BadRequest(w, "")
		return
	}
	if err := h.validator.Struct(body); err != nil {
		httpx.BadRequest(w, "")
		return
	}

	userID, err := h.users.FindIDByEmail(r.Context(), body.Email)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			httpx.NotFound(w, "")
			return
		}
		h.logger.Error("find user for toggle", slog.Any("error", err))
		httpx.InternalServer(w)
		return
	}

	if _, err := h.service.ToggleAssignment(r.Context(), userID, roleID); err != nil {
		h.logger.Error("toggle role assignment",
			slog.Int64("role_id", roleID),
			slog.Int64("user_id", userID),
			slog.Any("error", err))
		httpx.InternalServer(w)
		return
	}
	httpx.NoContent(w)
}
