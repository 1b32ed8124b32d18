package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/qrdine/api/internal/database"
	"github.com/qrdine/api/internal/enum"
	"github.com/qrdine/api/internal/handler"
	"github.com/qrdine/api/internal/service"
)

// --- Mock store ---

type mockMenuStore struct {
	restaurants map[string]database.Restaurant // keyed by slug
	tables      map[uuid.UUID][]database.Table
	categories  map[uuid.UUID][]database.Category
	items       map[uuid.UUID][]database.MenuItem
}

func newMockMenuStore() *mockMenuStore {
	return &mockMenuStore{
		restaurants: make(map[string]database.Restaurant),
		tables:      make(map[uuid.UUID][]database.Table),
		categories:  make(map[uuid.UUID][]database.Category),
		items:       make(map[uuid.UUID][]database.MenuItem),
	}
}

func (m *mockMenuStore) GetActiveRestaurantBySlug(_ context.Context, slug string) (database.Restaurant, error) {
	r, ok := m.restaurants[slug]
	if !ok || !r.IsActive {
		return database.Restaurant{}, pgx.ErrNoRows
	}
	return r, nil
}

func (m *mockMenuStore) GetActiveTableByNumber(_ context.Context, arg database.GetActiveTableByNumberParams) (database.Table, error) {
	for _, t := range m.tables[arg.RestaurantID] {
		if t.Number == arg.Number && t.IsActive {
			return t, nil
		}
	}
	return database.Table{}, pgx.ErrNoRows
}

func (m *mockMenuStore) ListCategoriesByRestaurant(_ context.Context, restaurantID uuid.UUID) ([]database.Category, error) {
	return m.categories[restaurantID], nil
}

func (m *mockMenuStore) ListAvailableMenuItems(_ context.Context, restaurantID uuid.UUID) ([]database.MenuItem, error) {
	var result []database.MenuItem
	for _, item := range m.items[restaurantID] {
		if item.IsActive && item.IsAvailable {
			result = append(result, item)
		}
	}
	return result, nil
}

// mockOrderCreator implements handler.OrderCreator with a function field.
type mockOrderCreator struct {
	createOrderFn func(ctx context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error)
}

func (m *mockOrderCreator) CreateOrder(ctx context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error) {
	return m.createOrderFn(ctx, req)
}

// --- Helpers ---

func seedPublicMenu(t *testing.T, store *mockMenuStore) database.Restaurant {
	t.Helper()
	r := database.Restaurant{
		ID:       uuid.New(),
		Name:     "Burger Palace",
		Slug:     "burger-palace",
		Theme:    []byte(`{"primary":"#b3272d"}`),
		IsActive: true,
	}
	store.restaurants[r.Slug] = r
	store.tables[r.ID] = []database.Table{
		{ID: uuid.New(), RestaurantID: r.ID, Number: "5", IsActive: true},
		{ID: uuid.New(), RestaurantID: r.ID, Number: "6", IsActive: false},
	}
	store.categories[r.ID] = []database.Category{
		{ID: uuid.New(), RestaurantID: r.ID, Name: "Burgers", SortOrder: 1, IsActive: true},
	}
	store.items[r.ID] = []database.MenuItem{
		{
			ID: uuid.New(), RestaurantID: r.ID, Name: "Classic Burger",
			Price: priceNumeric(t, "12.99"), IsAvailable: true, IsActive: true,
		},
		{
			ID: uuid.New(), RestaurantID: r.ID, Name: "Sold Out Special",
			Price: priceNumeric(t, "19.99"), IsAvailable: false, IsActive: true,
		},
	}
	return r
}

func setupMenuRouter(store *mockMenuStore, svc handler.OrderCreator) *chi.Mux {
	h := handler.NewMenuHandler(store, svc)
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func noopOrderCreator() *mockOrderCreator {
	return &mockOrderCreator{
		createOrderFn: func(ctx context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error) {
			panic("unexpected CreateOrder call")
		},
	}
}

// --- Menu view tests ---

func TestGetMenu_Valid(t *testing.T) {
	store := newMockMenuStore()
	seedPublicMenu(t, store)
	router := setupMenuRouter(store, noopOrderCreator())

	rr := doRequest(t, router, "GET", "/menu/burger-palace/5", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	resp := decodeObjectResponse(t, rr)

	restaurant := resp["restaurant"].(map[string]interface{})
	if restaurant["name"] != "Burger Palace" {
		t.Errorf("restaurant name: got %v", restaurant["name"])
	}
	if resp["table_number"] != "5" {
		t.Errorf("table_number: got %v, want 5", resp["table_number"])
	}

	items, _ := resp["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("expected only available items, got %d", len(items))
	}
	item := items[0].(map[string]interface{})
	if item["name"] != "Classic Burger" {
		t.Errorf("item name: got %v", item["name"])
	}

	categories, _ := resp["categories"].([]interface{})
	if len(categories) != 1 {
		t.Errorf("expected 1 category, got %d", len(categories))
	}
}

func TestGetMenu_UnknownSlug(t *testing.T) {
	store := newMockMenuStore()
	seedPublicMenu(t, store)
	router := setupMenuRouter(store, noopOrderCreator())

	rr := doRequest(t, router, "GET", "/menu/no-such-place/5", nil)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestGetMenu_InactiveTable(t *testing.T) {
	store := newMockMenuStore()
	seedPublicMenu(t, store)
	router := setupMenuRouter(store, noopOrderCreator())

	// Table 6 exists but is deactivated; the response must be identical
	// to the unknown-table case.
	inactive := doRequest(t, router, "GET", "/menu/burger-palace/6", nil)
	missing := doRequest(t, router, "GET", "/menu/burger-palace/99", nil)

	if inactive.Code != http.StatusNotFound {
		t.Errorf("inactive table status: got %d, want %d", inactive.Code, http.StatusNotFound)
	}
	if inactive.Body.String() != missing.Body.String() {
		t.Errorf("inactive and missing tables must be indistinguishable:\n%s\nvs\n%s",
			inactive.Body.String(), missing.Body.String())
	}
}

func TestGetMenu_DeactivatedRestaurant(t *testing.T) {
	store := newMockMenuStore()
	r := seedPublicMenu(t, store)
	r.IsActive = false
	store.restaurants[r.Slug] = r
	router := setupMenuRouter(store, noopOrderCreator())

	rr := doRequest(t, router, "GET", "/menu/burger-palace/5", nil)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

// --- Order submission tests ---

func TestSubmitOrder_Valid(t *testing.T) {
	store := newMockMenuStore()
	seedPublicMenu(t, store)

	var captured service.CreateOrderRequest
	svc := &mockOrderCreator{
		createOrderFn: func(ctx context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error) {
			captured = req
			return &service.CreateOrderResult{
				Order: database.Order{
					ID:          uuid.New(),
					OrderNumber: "ORD-TEST-ABCDE",
					Status:      enum.OrderStatusPending,
					TotalAmount: priceNumeric(t, "25.98"),
					CreatedAt:   time.Now(),
				},
			}, nil
		},
	}
	router := setupMenuRouter(store, svc)

	rr := doRequest(t, router, "POST", "/menu/burger-palace/5/orders", map[string]interface{}{
		"customer_name": "Dana",
		"items": []map[string]interface{}{
			{
				"menu_item_id": uuid.NewString(),
				"quantity":     2,
				"customizations": []map[string]interface{}{
					{"group": "Cooking Level", "options": []string{"Medium"}},
				},
			},
		},
	})

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}
	resp := decodeObjectResponse(t, rr)
	if resp["order_number"] != "ORD-TEST-ABCDE" {
		t.Errorf("order_number: got %v", resp["order_number"])
	}
	if resp["total_amount"] != "25.98" {
		t.Errorf("total_amount: got %v, want 25.98", resp["total_amount"])
	}
	if resp["status"] != "pending" {
		t.Errorf("status: got %v, want pending", resp["status"])
	}

	// The handler is a thin shell: slug and table come from the URL.
	if captured.RestaurantSlug != "burger-palace" || captured.TableNumber != "5" {
		t.Errorf("service request scope: got %s/%s", captured.RestaurantSlug, captured.TableNumber)
	}
	if captured.CustomerName != "Dana" {
		t.Errorf("customer name: got %s", captured.CustomerName)
	}
	if len(captured.Items) != 1 || captured.Items[0].Quantity != 2 {
		t.Errorf("items: got %+v", captured.Items)
	}
}

func TestSubmitOrder_ServiceErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"unknown restaurant or table", service.ErrNotFound, http.StatusNotFound},
		{"empty items", service.ErrEmptyItems, http.StatusBadRequest},
		{"unavailable item", service.ErrItemUnavailable, http.StatusBadRequest},
		{"bad customization", service.ErrInvalidCustomization, http.StatusBadRequest},
		{"bad quantity", service.ErrInvalidQuantity, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockMenuStore()
			seedPublicMenu(t, store)
			svc := &mockOrderCreator{
				createOrderFn: func(ctx context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error) {
					return nil, tt.err
				},
			}
			router := setupMenuRouter(store, svc)

			rr := doRequest(t, router, "POST", "/menu/burger-palace/5/orders", map[string]interface{}{
				"items": []map[string]interface{}{
					{"menu_item_id": uuid.NewString(), "quantity": 1},
				},
			})

			if rr.Code != tt.wantCode {
				t.Errorf("status: got %d, want %d; body: %s", rr.Code, tt.wantCode, rr.Body.String())
			}
		})
	}
}

func TestSubmitOrder_InvalidBody(t *testing.T) {
	store := newMockMenuStore()
	seedPublicMenu(t, store)
	router := setupMenuRouter(store, noopOrderCreator())

	rr := doRequest(t, router, "POST", "/menu/burger-palace/5/orders", "not json")

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}
