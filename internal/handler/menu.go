package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/qrdine/api/internal/database"
	"github.com/qrdine/api/internal/service"
)

// MenuStore defines the database methods needed by the public menu view.
// Satisfied by *database.Queries; narrow interface for testability.
type MenuStore interface {
	GetActiveRestaurantBySlug(ctx context.Context, slug string) (database.Restaurant, error)
	GetActiveTableByNumber(ctx context.Context, arg database.GetActiveTableByNumberParams) (database.Table, error)
	ListCategoriesByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]database.Category, error)
	ListAvailableMenuItems(ctx context.Context, restaurantID uuid.UUID) ([]database.MenuItem, error)
}

// OrderCreator defines the service method needed for order submission.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderCreator interface {
	CreateOrder(ctx context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error)
}

// MenuHandler handles the unauthenticated diner-facing endpoints: the
// menu view behind a scanned QR code and the order submission.
type MenuHandler struct {
	store MenuStore
	svc   OrderCreator
}

// NewMenuHandler creates a new MenuHandler.
func NewMenuHandler(store MenuStore, svc OrderCreator) *MenuHandler {
	return &MenuHandler{store: store, svc: svc}
}

// RegisterRoutes registers public menu endpoints on the given Chi router.
func (h *MenuHandler) RegisterRoutes(r chi.Router) {
	r.Get("/menu/{slug}/{table}", h.GetMenu)
	r.Post("/menu/{slug}/{table}/orders", h.SubmitOrder)
}

// --- Request / Response types ---

type publicRestaurantResponse struct {
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Description *string         `json:"description"`
	Logo        *string         `json:"logo"`
	Theme       json.RawMessage `json:"theme"`
}

type publicMenuResponse struct {
	Restaurant  publicRestaurantResponse `json:"restaurant"`
	TableNumber string                   `json:"table_number"`
	Categories  []categoryResponse       `json:"categories"`
	Items       []menuItemResponse       `json:"items"`
}

type submitOrderRequest struct {
	CustomerName  string                   `json:"customer_name"`
	CustomerPhone string                   `json:"customer_phone"`
	Notes         string                   `json:"notes"`
	Items         []submitOrderItemRequest `json:"items"`
}

type submitOrderItemRequest struct {
	MenuItemID     string                 `json:"menu_item_id"`
	Quantity       int32                  `json:"quantity"`
	Notes          string                 `json:"notes"`
	Customizations []submitOrderSelection `json:"customizations"`
}

type submitOrderSelection struct {
	Group   string   `json:"group"`
	Options []string `json:"options"`
}

type submitOrderResponse struct {
	ID          uuid.UUID `json:"id"`
	OrderNumber string    `json:"order_number"`
	Status      string    `json:"status"`
	TotalAmount string    `json:"total_amount"`
}

// --- Handlers ---

// GetMenu handles GET /menu/{slug}/{table}, the page a diner lands on
// after scanning a table's QR code. Unknown and deactivated slugs or
// tables get the same 404 so nothing about the tenant leaks.
func (h *MenuHandler) GetMenu(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	tableNumber := chi.URLParam(r, "table")

	restaurant, err := h.store.GetActiveRestaurantBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "restaurant or table not found"})
			return
		}
		log.Printf("ERROR: get restaurant by slug: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	table, err := h.store.GetActiveTableByNumber(r.Context(), database.GetActiveTableByNumberParams{
		RestaurantID: restaurant.ID,
		Number:       tableNumber,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "restaurant or table not found"})
			return
		}
		log.Printf("ERROR: get table by number: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	categories, err := h.store.ListCategoriesByRestaurant(r.Context(), restaurant.ID)
	if err != nil {
		log.Printf("ERROR: list categories for menu: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	items, err := h.store.ListAvailableMenuItems(r.Context(), restaurant.ID)
	if err != nil {
		log.Printf("ERROR: list menu items for menu: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := publicMenuResponse{
		Restaurant: publicRestaurantResponse{
			Name:  restaurant.Name,
			Slug:  restaurant.Slug,
			Theme: restaurant.Theme,
		},
		TableNumber: table.Number,
		Categories:  make([]categoryResponse, len(categories)),
		Items:       make([]menuItemResponse, len(items)),
	}
	if restaurant.Description.Valid {
		resp.Restaurant.Description = &restaurant.Description.String
	}
	if restaurant.Logo.Valid {
		resp.Restaurant.Logo = &restaurant.Logo.String
	}
	for i, c := range categories {
		resp.Categories[i] = toCategoryResponse(c)
	}
	for i, m := range items {
		resp.Items[i] = toMenuItemResponse(m)
	}

	writeJSON(w, http.StatusOK, resp)
}

// SubmitOrder handles POST /menu/{slug}/{table}/orders. The body is the
// diner's cart; prices are recomputed server side from the live catalog.
func (h *MenuHandler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	tableNumber := chi.URLParam(r, "table")

	var req submitOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	svcItems := make([]service.CreateOrderItemRequest, len(req.Items))
	for i, item := range req.Items {
		sels := make([]service.SelectionRequest, len(item.Customizations))
		for j, sel := range item.Customizations {
			sels[j] = service.SelectionRequest{
				Group:   sel.Group,
				Options: sel.Options,
			}
		}
		svcItems[i] = service.CreateOrderItemRequest{
			MenuItemID:     item.MenuItemID,
			Quantity:       item.Quantity,
			Notes:          item.Notes,
			Customizations: sels,
		}
	}

	result, err := h.svc.CreateOrder(r.Context(), service.CreateOrderRequest{
		RestaurantSlug: slug,
		TableNumber:    tableNumber,
		CustomerName:   req.CustomerName,
		CustomerPhone:  req.CustomerPhone,
		Notes:          req.Notes,
		Items:          svcItems,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "restaurant or table not found"})
		case isOrderValidationError(err):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		case errors.Is(err, context.DeadlineExceeded):
			writeJSON(w, http.StatusGatewayTimeout, map[string]string{"error": "order submission timed out"})
		default:
			log.Printf("ERROR: submit order: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	writeJSON(w, http.StatusCreated, submitOrderResponse{
		ID:          result.Order.ID,
		OrderNumber: result.Order.OrderNumber,
		Status:      result.Order.Status,
		TotalAmount: numericToString(result.Order.TotalAmount),
	})
}

// isOrderValidationError checks if the error is a known validation error
// from the order service that should result in 400 Bad Request.
func isOrderValidationError(err error) bool {
	return errors.Is(err, service.ErrEmptyItems) ||
		errors.Is(err, service.ErrInvalidQuantity) ||
		errors.Is(err, service.ErrInvalidMenuItemID) ||
		errors.Is(err, service.ErrItemUnavailable) ||
		errors.Is(err, service.ErrInvalidCustomization)
}
