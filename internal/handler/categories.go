package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/kiwari-pos/storefront/internal/database"
	"go.uber.org/zap"
)

// CategoryStore defines the database methods needed by category handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type CategoryStore interface {
	ListCategories(ctx context.Context) ([]database.Category, error)
	CategoryExists(ctx context.Context, id uuid.UUID) (bool, error)
	CreateCategory(ctx context.Context, arg database.CreateCategoryParams) (database.Category, error)
	ListSubcategoriesByCategory(ctx context.Context, categoryID uuid.UUID) ([]database.Subcategory, error)
	CreateSubcategory(ctx context.Context, arg database.CreateSubcategoryParams) (database.Subcategory, error)
}

// CategoryHandler serves the category tree.
type CategoryHandler struct {
	store  CategoryStore
	logger *zap.Logger
}

func NewCategoryHandler(store CategoryStore, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{store: store, logger: orNop(logger)}
}

// RegisterRoutes registers the read endpoints under /categories.
func (h *CategoryHandler) RegisterRoutes(r chi.Router) {
	r.Get("/categories", h.List)
	r.Get("/categories/{id}/subcategories", h.ListSubcategories)
}

// RegisterAdminRoutes registers catalog maintenance endpoints.
func (h *CategoryHandler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/categories", h.Create)
	r.Post("/categories/{id}/subcategories", h.CreateSubcategory)
}

// --- Request / Response types ---

type createCategoryRequest struct {
	Name      string `json:"name"`
	ImageURL  string `json:"imageUrl"`
	SortOrder int32  `json:"sortOrder"`
}

type createSubcategoryRequest struct {
	Name      string `json:"name"`
	SortOrder int32  `json:"sortOrder"`
}

type categoryResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	SortOrder int32     `json:"sortOrder"`
}

type subcategoryResponse struct {
	ID         uuid.UUID `json:"id"`
	CategoryID uuid.UUID `json:"categoryId"`
	Name       string    `json:"name"`
}

func toCategoryResponse(c database.Category) categoryResponse {
	return categoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		ImageURL:  c.ImageUrl.String,
		SortOrder: c.SortOrder,
	}
}

func toSubcategoryResponse(s database.Subcategory) subcategoryResponse {
	return subcategoryResponse{ID: s.ID, CategoryID: s.CategoryID, Name: s.Name}
}

// --- Handlers ---

// List returns all active categories in display order.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.ListCategories(r.Context())
	if err != nil {
		serverError(w, h.logger, "list categories", err)
		return
	}

	resp := make([]categoryResponse, len(categories))
	for i, c := range categories {
		resp[i] = toCategoryResponse(c)
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListSubcategories returns the subcategories of one category.
func (h *CategoryHandler) ListSubcategories(w http.ResponseWriter, r *http.Request) {
	catID, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	exists, err := h.store.CategoryExists(r.Context(), catID)
	if err != nil {
		serverError(w, h.logger, "check category", err)
		return
	}
	if !exists {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "category not found"})
		return
	}

	subs, err := h.store.ListSubcategoriesByCategory(r.Context(), catID)
	if err != nil {
		serverError(w, h.logger, "list subcategories", err)
		return
	}

	resp := make([]subcategoryResponse, len(subs))
	for i, s := range subs {
		resp[i] = toSubcategoryResponse(s)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create adds a category.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	category, err := h.store.CreateCategory(r.Context(), database.CreateCategoryParams{
		Name:      req.Name,
		ImageUrl:  database.Text(req.ImageURL),
		SortOrder: req.SortOrder,
	})
	if err != nil {
		serverError(w, h.logger, "create category", err)
		return
	}
	writeJSON(w, http.StatusCreated, toCategoryResponse(category))
}

// CreateSubcategory adds a subcategory under an existing category.
func (h *CategoryHandler) CreateSubcategory(w http.ResponseWriter, r *http.Request) {
	catID, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	var req createSubcategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	sub, err := h.store.CreateSubcategory(r.Context(), database.CreateSubcategoryParams{
		CategoryID: catID,
		Name:       req.Name,
		SortOrder:  req.SortOrder,
	})
	if err != nil {
		if isForeignKeyViolation(err) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "category not found"})
			return
		}
		serverError(w, h.logger, "create subcategory", err)
		return
	}
	writeJSON(w, http.StatusCreated, toSubcategoryResponse(sub))
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
