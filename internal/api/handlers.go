package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/maltedev/evspare-scraper/internal/database"
)

// CatalogStore is the read side of the imported catalog.
type CatalogStore interface {
	ListProducts(ctx context.Context, filter database.ProductFilter) ([]database.CatalogProduct, error)
	GetProduct(ctx context.Context, key string) (*database.CatalogProduct, error)
	ListCategories(ctx context.Context) ([]database.Category, error)
}

type Handlers struct {
	store  CatalogStore
	logger *slog.Logger
}

func NewHandlers(store CatalogStore, logger *slog.Logger) *Handlers {
	return &Handlers{
		store:  store,
		logger: logger.With("component", "api"),
	}
}

// ErrorResponse is returned for every non-2xx response
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Health reports service liveness
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListProducts handles product listing with optional category, search and paging
func (h *Handlers) ListProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := database.ProductFilter{
		CategorySlug: query.Get("category"),
		Search:       query.Get("search"),
	}

	var ok bool
	if filter.Page, ok = queryInt(query.Get("page")); !ok {
		h.respondError(w, http.StatusBadRequest, "page must be a positive integer")
		return
	}
	if filter.Limit, ok = queryInt(query.Get("limit")); !ok {
		h.respondError(w, http.StatusBadRequest, "limit must be a positive integer")
		return
	}

	h.listProducts(w, r, filter)
}

// ListCategoryProducts handles listing the products of a single category
func (h *Handlers) ListCategoryProducts(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if slug == "" {
		h.respondError(w, http.StatusBadRequest, "category slug is required")
		return
	}

	h.listProducts(w, r, database.ProductFilter{CategorySlug: slug, Limit: database.MaxLimit})
}

// GetProduct handles single product lookup by key
func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	product, err := h.store.GetProduct(r.Context(), key)
	if errors.Is(err, database.ErrProductNotFound) {
		h.respondError(w, http.StatusNotFound, "Product not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to get product", "error", err, "key", key)
		h.respondError(w, http.StatusInternalServerError, "failed to get product")
		return
	}

	h.respondJSON(w, http.StatusOK, product)
}

// ListCategories handles category listing
func (h *Handlers) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.ListCategories(r.Context())
	if err != nil {
		h.logger.Error("failed to list categories", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}
	if categories == nil {
		categories = []database.Category{}
	}

	h.respondJSON(w, http.StatusOK, categories)
}

func (h *Handlers) listProducts(w http.ResponseWriter, r *http.Request, filter database.ProductFilter) {
	products, err := h.store.ListProducts(r.Context(), filter.Normalize())
	if err != nil {
		h.logger.Error("failed to list products", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to list products")
		return
	}
	if products == nil {
		products = []database.CatalogProduct{}
	}

	h.respondJSON(w, http.StatusOK, products)
}

// queryInt parses an optional positive integer parameter. Empty means unset.
func queryInt(raw string) (int, bool) {
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// Helper methods
func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, ErrorResponse{Success: false, Message: message})
}
