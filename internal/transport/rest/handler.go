// Package rest provides HTTP handlers for the catalog, price history and
// contact-form operations.
package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	ferrors "github.com/ferremas/backend/internal/errors"
	"github.com/ferremas/backend/internal/service"
	"github.com/ferremas/backend/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

const (
	// defaultPageSize is applied when the caller omits the limit parameter.
	defaultPageSize = 100
	// maxPageSize bounds a single listing, regardless of the requested limit.
	maxPageSize = 500
)

type Handler struct {
	service  service.CatalogService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new catalog API handler with the provided service.
func NewHandler(service service.CatalogService, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the catalog service.
//
// The {code} parameter doubles as the numeric product ID on the price
// history routes, matching the shape of the public API.
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.FindAll)
		r.Post("/", h.Create)

		r.Route("/{code}", func(r chi.Router) {
			r.Get("/", h.FindByCode)
			r.Put("/", h.Update)
			r.Delete("/", h.DeleteByCode)
			r.Post("/prices", h.AddPrice)
			r.Get("/prices", h.ListPrices)
		})
	})
	r.Post("/contact", h.SubmitContact)

	r.Get("/healthz", h.HealthCheck)
}

// Create handles the creation of a new product. A duplicate code is a 400.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var productCreateDto service.ProductCreateDto
	if !h.decodeValid(w, r, mLogger, &productCreateDto, http.StatusBadRequest) {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to create product", "code", productCreateDto.Code)

	newProduct, err := h.service.CreateProduct(r.Context(), productCreateDto)
	if err != nil {
		if errors.Is(err, ferrors.ErrProductCodeExists) {
			mLogger.WarnContext(r.Context(), "Product code already exists", "code", productCreateDto.Code)
			web.RespondError(w, mLogger, http.StatusBadRequest, "Product code already exists")
			return
		}
		mLogger.ErrorContext(r.Context(), "Error creating product", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to create product")
		return
	}
	mLogger.InfoContext(r.Context(), "Product created successfully", "ID", newProduct.ID, "code", newProduct.Code)
	web.RespondJSON(w, mLogger, http.StatusOK, newProduct)
}

// FindByCode retrieves a product by its business code.
func (h *Handler) FindByCode(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	code := chi.URLParam(r, "code")

	mLogger.DebugContext(r.Context(), "Received request to find product by code", "code", code)
	found, err := h.service.FindByCode(r.Context(), code)
	if err != nil {
		if errors.Is(err, ferrors.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "Product not found", "code", code)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with code %s not found", code))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error retrieving product", "code", code, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve product with code %s", code))
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, found)
}

// FindAll retrieves a page of products. skip and limit are optional; the
// limit is capped at maxPageSize to bound resource usage.
func (h *Handler) FindAll(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	skip, ok := web.ParseQueryInt(r, w, mLogger, "skip", 0)
	if !ok {
		return
	}
	limit, ok := web.ParseQueryInt(r, w, mLogger, "limit", defaultPageSize)
	if !ok {
		return
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	mLogger.DebugContext(r.Context(), "Received request to find all products", "skip", skip, "limit", limit)
	list, err := h.service.FindAll(r.Context(), skip, limit)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving product list", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// Update replaces the product addressed by the code in the path. The code in
// the body is authoritative; supplying a different one renames the product.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	code := chi.URLParam(r, "code")

	var productDto service.ProductCreateDto
	if !h.decodeValid(w, r, mLogger, &productDto, http.StatusBadRequest) {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to update product", "code", code)

	updated, err := h.service.Update(r.Context(), code, productDto)
	if err != nil {
		if errors.Is(err, ferrors.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "Product not found for update", "code", code)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with code %s not found", code))
			return
		}
		if errors.Is(err, ferrors.ErrProductCodeExists) {
			mLogger.WarnContext(r.Context(), "Product code already exists", "code", productDto.Code)
			web.RespondError(w, mLogger, http.StatusBadRequest, "Product code already exists")
			return
		}
		mLogger.ErrorContext(r.Context(), "Error updating product", "code", code, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to update product with code %s", code))
		return
	}
	mLogger.InfoContext(r.Context(), "Product updated successfully", "ID", updated.ID, "code", updated.Code)
	web.RespondJSON(w, mLogger, http.StatusOK, updated)
}

// DeleteByCode deletes a product by its business code.
func (h *Handler) DeleteByCode(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	code := chi.URLParam(r, "code")

	mLogger.DebugContext(r.Context(), "Received request to delete product", "code", code)
	if err := h.service.DeleteByCode(r.Context(), code); err != nil {
		if errors.Is(err, ferrors.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "Product not found for deletion", "code", code)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with code %s not found", code))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error deleting product", "code", code, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to delete product with code %s", code))
		return
	}
	mLogger.InfoContext(r.Context(), "Product deleted successfully", "code", code)
	web.RespondJSON(w, mLogger, http.StatusOK, map[string]string{"message": "Product deleted successfully"})
}

// AddPrice appends a price history entry for the product addressed by its
// numeric ID. An unknown product is a 404 and nothing is inserted.
func (h *Handler) AddPrice(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	productID, ok := web.ParsePathID(w, r, mLogger, "code")
	if !ok {
		return
	}
	var priceCreateDto service.PriceCreateDto
	if !h.decodeValid(w, r, mLogger, &priceCreateDto, http.StatusBadRequest) {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to add price", "productID", productID, "price", priceCreateDto.Price)

	entry, err := h.service.AddPrice(r.Context(), productID, priceCreateDto)
	if err != nil {
		if errors.Is(err, ferrors.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "Product not found for price append", "productID", productID)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with ID %d not found", productID))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error adding price", "productID", productID, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to add price for product %d", productID))
		return
	}
	mLogger.InfoContext(r.Context(), "Price entry created", "ID", entry.ID, "productID", productID)
	web.RespondJSON(w, mLogger, http.StatusOK, entry)
}

// ListPrices returns the price history of a product. An unknown product ID
// yields an empty list, not a 404.
func (h *Handler) ListPrices(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	productID, ok := web.ParsePathID(w, r, mLogger, "code")
	if !ok {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to list prices", "productID", productID)
	entries, err := h.service.ListPrices(r.Context(), productID)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error listing prices", "productID", productID, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to list prices for product %d", productID))
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, entries)
}

// SubmitContact accepts a contact-form submission. A malformed email is
// rejected with a 422 before anything is persisted.
func (h *Handler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var contactCreateDto service.ContactCreateDto
	if !h.decodeValid(w, r, mLogger, &contactCreateDto, http.StatusUnprocessableEntity) {
		return
	}
	mLogger.DebugContext(r.Context(), "Received contact form submission", "email", contactCreateDto.Email)

	contact, err := h.service.SubmitContact(r.Context(), contactCreateDto)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error creating contact", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to submit contact form")
		return
	}
	mLogger.InfoContext(r.Context(), "Contact form received", "ID", contact.ID)
	web.RespondJSON(w, mLogger, http.StatusOK, map[string]any{
		"message": "Contact form received",
		"contact": contact,
	})
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// decodeValid decodes the request body into dst and validates it. On a
// validation failure, field errors are reported with failStatus.
func (h *Handler) decodeValid(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, dst any, failStatus int) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			// If the error is a validation error, we can extract field-specific errors.
			errorResponse := make(map[string]string)
			for _, fieldErr := range validationErrors {
				errorResponse[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
			}
			mLogger.WarnContext(r.Context(), "Validation errors occurred", "errors", errorResponse)
			web.RespondJSON(w, mLogger, failStatus, map[string]any{"validation_errors": errorResponse})
			return false
		}
		mLogger.ErrorContext(r.Context(), "Error validating request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	return loggerWithReqID(r, h.logger)
}

// loggerWithReqID creates a logger with the request ID from the context.
func loggerWithReqID(r *http.Request, logger *slog.Logger) *slog.Logger {
	reqID, _ := web.GetRequestID(r.Context())
	return logger.With("request_id", reqID)
}
