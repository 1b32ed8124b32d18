package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/qrdine/api/internal/database"
	"github.com/shopspring/decimal"
)

// MenuItemStore defines the database methods needed by menu item handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type MenuItemStore interface {
	ListMenuItemsByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]database.MenuItem, error)
	GetMenuItem(ctx context.Context, arg database.GetMenuItemParams) (database.MenuItem, error)
	CreateMenuItem(ctx context.Context, arg database.CreateMenuItemParams) (database.MenuItem, error)
	UpdateMenuItem(ctx context.Context, arg database.UpdateMenuItemParams) (database.MenuItem, error)
	SetMenuItemAvailability(ctx context.Context, arg database.SetMenuItemAvailabilityParams) (database.MenuItem, error)
	SoftDeleteMenuItem(ctx context.Context, arg database.SoftDeleteMenuItemParams) (uuid.UUID, error)
}

// MenuItemHandler handles menu item CRUD endpoints.
type MenuItemHandler struct {
	store MenuItemStore
}

// NewMenuItemHandler creates a new MenuItemHandler.
func NewMenuItemHandler(store MenuItemStore) *MenuItemHandler {
	return &MenuItemHandler{store: store}
}

// RegisterRoutes registers menu item endpoints on the given Chi router.
// Expected to be mounted inside a restaurant-scoped subrouter:
// /restaurants/{rid}/menu-items
func (h *MenuItemHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Patch("/{id}/availability", h.SetAvailability)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type menuItemRequest struct {
	CategoryID     string                        `json:"category_id"`
	Name           string                        `json:"name"`
	Description    string                        `json:"description"`
	Price          string                        `json:"price"`
	Image          string                        `json:"image"`
	CategoryTag    string                        `json:"category_tag"`
	IsPopular      bool                          `json:"is_popular"`
	Allergens      []string                      `json:"allergens"`
	Customizations []database.CustomizationGroup `json:"customizations"`
	SortOrder      int32                         `json:"sort_order"`
}

type setAvailabilityRequest struct {
	IsAvailable bool `json:"is_available"`
}

type menuItemResponse struct {
	ID             uuid.UUID                     `json:"id"`
	RestaurantID   uuid.UUID                     `json:"restaurant_id"`
	CategoryID     *string                       `json:"category_id"`
	Name           string                        `json:"name"`
	Description    *string                       `json:"description"`
	Price          string                        `json:"price"`
	Image          *string                       `json:"image"`
	CategoryTag    string                        `json:"category_tag"`
	IsAvailable    bool                          `json:"is_available"`
	IsPopular      bool                          `json:"is_popular"`
	Allergens      []string                      `json:"allergens"`
	Customizations []database.CustomizationGroup `json:"customizations"`
	SortOrder      int32                         `json:"sort_order"`
	CreatedAt      time.Time                     `json:"created_at"`
	UpdatedAt      time.Time                     `json:"updated_at"`
}

func toMenuItemResponse(m database.MenuItem) menuItemResponse {
	resp := menuItemResponse{
		ID:             m.ID,
		RestaurantID:   m.RestaurantID,
		Name:           m.Name,
		Price:          numericToString(m.Price),
		CategoryTag:    m.CategoryTag,
		IsAvailable:    m.IsAvailable,
		IsPopular:      m.IsPopular,
		Allergens:      m.Allergens,
		Customizations: m.Customizations,
		SortOrder:      m.SortOrder,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
	if m.CategoryID.Valid {
		s := uuid.UUID(m.CategoryID.Bytes).String()
		resp.CategoryID = &s
	}
	if m.Description.Valid {
		resp.Description = &m.Description.String
	}
	if m.Image.Valid {
		resp.Image = &m.Image.String
	}
	if resp.Allergens == nil {
		resp.Allergens = []string{}
	}
	if resp.Customizations == nil {
		resp.Customizations = []database.CustomizationGroup{}
	}
	return resp
}

// --- Handlers ---

// List returns all active menu items for the restaurant, including
// currently unavailable ones. The staff view needs both.
func (h *MenuItemHandler) List(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "rid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid restaurant ID"})
		return
	}

	items, err := h.store.ListMenuItemsByRestaurant(r.Context(), restaurantID)
	if err != nil {
		log.Printf("ERROR: list menu items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]menuItemResponse, len(items))
	for i, m := range items {
		resp[i] = toMenuItemResponse(m)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Get returns a single menu item.
func (h *MenuItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "rid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid restaurant ID"})
		return
	}

	itemID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid menu item ID"})
		return
	}

	item, err := h.store.GetMenuItem(r.Context(), database.GetMenuItemParams{
		ID:           itemID,
		RestaurantID: restaurantID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
			return
		}
		log.Printf("ERROR: get menu item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toMenuItemResponse(item))
}

// Create adds a new menu item to the restaurant.
func (h *MenuItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "rid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid restaurant ID"})
		return
	}

	var req menuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	params, errMsg := h.buildParams(req)
	if errMsg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": errMsg})
		return
	}
	params.RestaurantID = restaurantID

	item, err := h.store.CreateMenuItem(r.Context(), params)
	if err != nil {
		log.Printf("ERROR: create menu item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toMenuItemResponse(item))
}

// Update modifies an existing menu item.
func (h *MenuItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "rid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid restaurant ID"})
		return
	}

	itemID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid menu item ID"})
		return
	}

	var req menuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	createParams, errMsg := h.buildParams(req)
	if errMsg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": errMsg})
		return
	}

	item, err := h.store.UpdateMenuItem(r.Context(), database.UpdateMenuItemParams{
		CategoryID:     createParams.CategoryID,
		Name:           createParams.Name,
		Description:    createParams.Description,
		Price:          createParams.Price,
		Image:          createParams.Image,
		CategoryTag:    createParams.CategoryTag,
		IsPopular:      createParams.IsPopular,
		Allergens:      createParams.Allergens,
		Customizations: createParams.Customizations,
		SortOrder:      createParams.SortOrder,
		ID:             itemID,
		RestaurantID:   restaurantID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
			return
		}
		log.Printf("ERROR: update menu item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toMenuItemResponse(item))
}

// SetAvailability toggles the 86'd flag without touching anything else.
func (h *MenuItemHandler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "rid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid restaurant ID"})
		return
	}

	itemID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid menu item ID"})
		return
	}

	var req setAvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	item, err := h.store.SetMenuItemAvailability(r.Context(), database.SetMenuItemAvailabilityParams{
		IsAvailable:  req.IsAvailable,
		ID:           itemID,
		RestaurantID: restaurantID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
			return
		}
		log.Printf("ERROR: set menu item availability: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toMenuItemResponse(item))
}

// Delete soft-deletes a menu item. Past order items keep their price
// and customization snapshots, so the row stays.
func (h *MenuItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "rid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid restaurant ID"})
		return
	}

	itemID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid menu item ID"})
		return
	}

	_, err = h.store.SoftDeleteMenuItem(r.Context(), database.SoftDeleteMenuItemParams{
		ID:           itemID,
		RestaurantID: restaurantID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
			return
		}
		log.Printf("ERROR: delete menu item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- Helpers ---

// buildParams validates the shared create/update request body. Returns
// a non-empty error message on validation failure.
func (h *MenuItemHandler) buildParams(req menuItemRequest) (database.CreateMenuItemParams, string) {
	var params database.CreateMenuItemParams

	if req.Name == "" {
		return params, "name is required"
	}
	if req.Price == "" {
		return params, "price is required"
	}

	price, err := parsePrice(req.Price)
	if err != nil {
		return params, err.Error()
	}

	if req.CategoryID != "" {
		catID, err := uuid.Parse(req.CategoryID)
		if err != nil {
			return params, "invalid category_id"
		}
		params.CategoryID = pgtype.UUID{Bytes: catID, Valid: true}
	}

	if err := database.ValidateCustomizationGroups(req.Customizations); err != nil {
		return params, err.Error()
	}

	params.Name = req.Name
	params.Price = price
	params.CategoryTag = req.CategoryTag
	params.IsPopular = req.IsPopular
	params.Allergens = req.Allergens
	params.Customizations = req.Customizations
	params.SortOrder = req.SortOrder
	if req.Description != "" {
		params.Description = pgtype.Text{String: req.Description, Valid: true}
	}
	if req.Image != "" {
		params.Image = pgtype.Text{String: req.Image, Valid: true}
	}
	return params, ""
}

// parsePrice parses a decimal price string into a pgtype.Numeric,
// rejecting negative values.
func parsePrice(s string) (pgtype.Numeric, error) {
	var n pgtype.Numeric

	d, err := decimal.NewFromString(s)
	if err != nil {
		return n, errors.New("invalid price format")
	}
	if d.IsNegative() {
		return n, errors.New("price must be >= 0")
	}
	if err := n.Scan(d.StringFixed(2)); err != nil {
		return n, errors.New("invalid price format")
	}
	return n, nil
}
