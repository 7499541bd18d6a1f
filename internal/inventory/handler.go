package inventory

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/scoopworks/inventory-api/internal/platform/httpx"
)

// Handler wires the catalog endpoints. Route guards are attached by the
// router, one capability per route.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
	}
}

// Guards are the per-route authorization chains the router attaches.
type Guards struct {
	Authenticate     func(http.Handler) http.Handler
	RequireAdmin     func(http.Handler) http.Handler
	CanViewProduct   func(http.Handler) http.Handler
	CanAddProduct    func(http.Handler) http.Handler
	CanEditProduct   func(http.Handler) http.Handler
	CanDeleteProduct func(http.Handler) http.Handler
}

// MountRoutes registers the catalog routes with their guard chains. The
// supplier listing is public; everything else sits behind the
// authenticate guard plus a capability or admin check.
func (h *Handler) MountRoutes(r chi.Router, g Guards) {
	r.Get("/suppliers", h.listSuppliers)
	r.Group(func(r chi.Router) {
		r.Use(g.Authenticate)
		r.With(g.CanViewProduct).Get("/", h.list)
		r.With(g.CanViewProduct).Get("/{id}", h.get)
		r.With(g.CanAddProduct).Post("/add", h.add)
		r.With(g.CanEditProduct).Patch("/update/{id}", h.update)
		r.With(g.CanDeleteProduct).Delete("/delete/{id}", h.delete)
		r.With(g.RequireAdmin).Post("/populate", h.populate)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			httpx.BadRequest(w, "")
			return
		}
		page = parsed
	}
	sortBy := r.URL.Query().Get("sortBy")
	if sortBy == "" {
		sortBy = "id"
	}
	sortOrder := strings.ToUpper(r.URL.Query().Get("sortOrder"))
	if sortOrder == "" {
		sortOrder = "ASC"
	}

	query := ListQuery{
		Page:      page,
		Size:      PageSize,
		SortBy:    sortBy,
		SortOrder: sortOrder,
		Price:     ParsePriceFilter(r.URL.Query().Get("price")),
	}
	products, pagination, err := h.service.ListProducts(r.Context(), query)
	if err != nil {
		if errors.Is(err, ErrInvalidListing) {
			httpx.BadRequest(w, "")
			return
		}
		h.logger.Error("list products", slog.Any("error", err))
		httpx.InternalServer(w)
		return
	}
	if products == nil {
		products = []Product{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"products":   products,
		"pagination": pagination,
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		httpx.BadRequest(w, "")
		return
	}
	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			httpx.NotFound(w, "")
			return
		}
		h.logger.Error("get product", slog.Int64("product_id", id), slog.Any("error", err))
		httpx.InternalServer(w)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"product": product})
}

func (h *Handler) listSuppliers(w http.ResponseWriter, r *http.Request) {
	suppliers, err := h.service.ListSuppliers(r.Context())
	if err != nil {
		h.logger.Error("list suppliers", slog.Any("error", err))
		httpx.InternalServer(w)
		return
	}
	if suppliers == nil {
		suppliers = []Supplier{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"suppliers": suppliers})
}

type addProductRequest struct {
	Name     string   `json:"name" validate:"required,min=1"`
	Price    *float64 `json:"price" validate:"required,gte=0"`
	Supplier *int64   `json:"supplier" validate:"required,min=1"`
}

func addProductValidationPayload(err error) httpx.ErrorPayload {
	var payload httpx.ErrorPayload
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return httpx.NewErrorPayload(httpx.ErrNameBadRequest, "general", "Bad request.")
	}
	for _, fieldErr := range fieldErrs {
		switch fieldErr.Field() {
		case "Name":
			payload.Errors = append(payload.Errors, httpx.APIError{
				Name: "error.invalidName", Type: "name", Message: "Please enter a valid product name",
			})
		case "Price":
			payload.Errors = append(payload.Errors, httpx.APIError{
				Name: "error.invalidPrice", Type: "price", Message: "Please enter a valid price",
			})
		case "Supplier":
			payload.Errors = append(payload.Errors, httpx.APIError{
				Name: "error.invalidSupplier", Type: "supplier", Message: "Please provide a supplier ID",
			})
		}
	}
	if len(payload.Errors) == 0 {
		return httpx.NewErrorPayload(httpx.ErrNameBadRequest, "general", "Bad request.")
	}
	return payload
}

func (h *Handler) add(w http.ResponseWriter, r *http.Request) {
	var body addProductRequest
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.BadRequest(w, "")
		return
	}
	if err := h.validator.Struct(body); err != nil {
		httpx.JSON(w, http.StatusBadRequest, addProductValidationPayload(err))
		return
	}

	product, err := h.service.AddProduct(r.Context(), body.Name, *body.Price, *body.Supplier)
	if err != nil {
		if errors.Is(err, ErrSupplierNotFound) {
			httpx.BadRequest(w, "The supplier doesn't exist")
			return
		}
		h.logger.Error("add product", slog.Any("error", err))
		httpx.InternalServer(w)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"product": product})
}

type updateProductRequest struct {
	Name     *string  `json:"name" validate:"omitempty,min=1"`
	Price    *float64 `json:"price" validate:"omitempty,gte=0"`
	Supplier *int64   `json:"supplier" validate:"omitempty,min=1"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		httpx.BadRequest(w, "")
		return
	}

	var body updateProductRequest
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.BadRequest(w, "")
		return
	}
	if err := h.validator.Struct(body); err != nil {
		httpx.BadRequest(w, "")
		return
	}

	patch := ProductPatch{Name: body.Name, Price: body.Price, SupplierID: body.Supplier}
	if err := h.service.UpdateProduct(r.Context(), id, patch); err != nil {
		switch {
		case errors.Is(err, ErrSupplierNotFound):
			httpx.BadRequest(w, "The supplier doesn't exist")
		case errors.Is(err, httpx.ErrNotFound):
			httpx.NotFound(w, "")
		default:
			h.logger.Error("update product", slog.Int64("product_id", id), slog.Any("error", err))
			httpx.InternalServer(w)
		}
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		httpx.BadRequest(w, "")
		return
	}
	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			httpx.NotFound(w, "")
			return
		}
		h.logger.Error("delete product", slog.Int64("product_id", id), slog.Any("error", err))
		httpx.InternalServer(w)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) populate(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.Populate(r.Context())
	if err != nil {
		h.logger.Error("populate inventory", slog.Any("error", err))
		httpx.InternalServer(w)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"products": products})
}
