package handler

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/qrdine/api/internal/database"
	"github.com/qrdine/api/internal/enum"
)

// DashboardStore defines the database methods needed by the dashboard.
// Satisfied by *database.Queries; narrow interface for testability.
type DashboardStore interface {
	CountOrdersSince(ctx context.Context, arg database.CountOrdersSinceParams) (int64, error)
	SumCompletedRevenueSince(ctx context.Context, arg database.SumCompletedRevenueSinceParams) (pgtype.Numeric, error)
	CountOrdersByStatus(ctx context.Context, arg database.CountOrdersByStatusParams) (int64, error)
	CountActiveMenuItems(ctx context.Context, restaurantID uuid.UUID) (int64, error)
}

// DashboardHandler serves the admin landing page summary numbers.
type DashboardHandler struct {
	store DashboardStore
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(store DashboardStore) *DashboardHandler {
	return &DashboardHandler{store: store}
}

// RegisterRoutes registers the dashboard endpoint on the given Chi router.
// Expected to be mounted inside a restaurant-scoped subrouter.
func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/dashboard", h.Summary)
}

type dashboardResponse struct {
	TodayOrders     int64  `json:"today_orders"`
	TodayRevenue    string `json:"today_revenue"`
	PendingOrders   int64  `json:"pending_orders"`
	ActiveMenuItems int64  `json:"active_menu_items"`
}

// Summary handles GET /restaurants/{rid}/dashboard. "Today" is midnight
// in the server's local timezone.
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := uuid.Parse(chi.URLParam(r, "rid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid restaurant ID"})
		return
	}

	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	todayOrders, err := h.store.CountOrdersSince(r.Context(), database.CountOrdersSinceParams{
		RestaurantID: restaurantID,
		Since:        midnight,
	})
	if err != nil {
		log.Printf("ERROR: count today orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	revenue, err := h.store.SumCompletedRevenueSince(r.Context(), database.SumCompletedRevenueSinceParams{
		RestaurantID: restaurantID,
		Since:        midnight,
	})
	if err != nil {
		log.Printf("ERROR: sum today revenue: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	pending, err := h.store.CountOrdersByStatus(r.Context(), database.CountOrdersByStatusParams{
		RestaurantID: restaurantID,
		Status:       enum.OrderStatusPending,
	})
	if err != nil {
		log.Printf("ERROR: count pending orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	activeItems, err := h.store.CountActiveMenuItems(r.Context(), restaurantID)
	if err != nil {
		log.Printf("ERROR: count active menu items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, dashboardResponse{
		TodayOrders:     todayOrders,
		TodayRevenue:    numericToString(revenue),
		PendingOrders:   pending,
		ActiveMenuItems: activeItems,
	})
}
