package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/qrdine/api/internal/database"
	"github.com/qrdine/api/internal/handler"
)

// --- Mock store ---

type mockMenuItemStore struct {
	items map[uuid.UUID]database.MenuItem // keyed by menu item ID
}

func newMockMenuItemStore() *mockMenuItemStore {
	return &mockMenuItemStore{items: make(map[uuid.UUID]database.MenuItem)}
}

func (m *mockMenuItemStore) ListMenuItemsByRestaurant(_ context.Context, restaurantID uuid.UUID) ([]database.MenuItem, error) {
	var result []database.MenuItem
	for _, item := range m.items {
		if item.RestaurantID == restaurantID && item.IsActive {
			result = append(result, item)
		}
	}
	return result, nil
}

func (m *mockMenuItemStore) GetMenuItem(_ context.Context, arg database.GetMenuItemParams) (database.MenuItem, error) {
	item, ok := m.items[arg.ID]
	if !ok || item.RestaurantID != arg.RestaurantID || !item.IsActive {
		return database.MenuItem{}, pgx.ErrNoRows
	}
	return item, nil
}

func (m *mockMenuItemStore) CreateMenuItem(_ context.Context, arg database.CreateMenuItemParams) (database.MenuItem, error) {
	item := database.MenuItem{
		ID:             uuid.New(),
		RestaurantID:   arg.RestaurantID,
		CategoryID:     arg.CategoryID,
		Name:           arg.Name,
		Description:    arg.Description,
		Price:          arg.Price,
		Image:          arg.Image,
		CategoryTag:    arg.CategoryTag,
		IsAvailable:    true,
		IsPopular:      arg.IsPopular,
		Allergens:      arg.Allergens,
		Customizations: arg.Customizations,
		SortOrder:      arg.SortOrder,
		IsActive:       true,
		CreatedAt:      time.Now(),
	}
	m.items[item.ID] = item
	return item, nil
}

func (m *mockMenuItemStore) UpdateMenuItem(_ context.Context, arg database.UpdateMenuItemParams) (database.MenuItem, error) {
	item, ok := m.items[arg.ID]
	if !ok || item.RestaurantID != arg.RestaurantID || !item.IsActive {
		return database.MenuItem{}, pgx.ErrNoRows
	}
	item.CategoryID = arg.CategoryID
	item.Name = arg.Name
	item.Description = arg.Description
	item.Price = arg.Price
	item.Image = arg.Image
	item.CategoryTag = arg.CategoryTag
	item.IsPopular = arg.IsPopular
	item.Allergens = arg.Allergens
	item.Customizations = arg.Customizations
	item.SortOrder = arg.SortOrder
	m.items[item.ID] = item
	return item, nil
}

func (m *mockMenuItemStore) SetMenuItemAvailability(_ context.Context, arg database.SetMenuItemAvailabilityParams) (database.MenuItem, error) {
	item, ok := m.items[arg.ID]
	if !ok || item.RestaurantID != arg.RestaurantID || !item.IsActive {
		return database.MenuItem{}, pgx.ErrNoRows
	}
	item.IsAvailable = arg.IsAvailable
	m.items[item.ID] = item
	return item, nil
}

func (m *mockMenuItemStore) SoftDeleteMenuItem(_ context.Context, arg database.SoftDeleteMenuItemParams) (uuid.UUID, error) {
	item, ok := m.items[arg.ID]
	if !ok || item.RestaurantID != arg.RestaurantID || !item.IsActive {
		return uuid.Nil, pgx.ErrNoRows
	}
	item.IsActive = false
	item.IsAvailable = false
	m.items[item.ID] = item
	return item.ID, nil
}

// --- Helpers ---

func setupMenuItemRouter(store *mockMenuItemStore) *chi.Mux {
	h := handler.NewMenuItemHandler(store)
	r := chi.NewRouter()
	r.Route("/restaurants/{rid}/menu-items", h.RegisterRoutes)
	return r
}

func priceNumeric(t *testing.T, val string) pgtype.Numeric {
	t.Helper()
	var n pgtype.Numeric
	if err := n.Scan(val); err != nil {
		t.Fatalf("scan numeric %q: %v", val, err)
	}
	return n
}

func seedMenuItem(t *testing.T, store *mockMenuItemStore, restaurantID uuid.UUID, name, price string) database.MenuItem {
	t.Helper()
	item := database.MenuItem{
		ID:           uuid.New(),
		RestaurantID: restaurantID,
		Name:         name,
		Price:        priceNumeric(t, price),
		IsAvailable:  true,
		IsActive:     true,
		CreatedAt:    time.Now(),
	}
	store.items[item.ID] = item
	return item
}

// --- Tests ---

func TestMenuItemCreate_Valid(t *testing.T) {
	store := newMockMenuItemStore()
	router := setupMenuItemRouter(store)
	restaurantID := uuid.New()

	rr := doRequest(t, router, "POST", "/restaurants/"+restaurantID.String()+"/menu-items", map[string]interface{}{
		"name":      "Classic Burger",
		"price":     "12.99",
		"allergens": []string{"gluten", "dairy"},
		"customizations": []map[string]interface{}{
			{
				"name":     "Cooking Level",
				"type":     "single",
				"required": true,
				"options": []map[string]interface{}{
					{"name": "Medium", "price_delta": "0"},
					{"name": "Well Done", "price_delta": "0"},
				},
			},
		},
	})

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}
	resp := decodeObjectResponse(t, rr)
	if resp["name"] != "Classic Burger" {
		t.Errorf("name: got %v", resp["name"])
	}
	if resp["price"] != "12.99" {
		t.Errorf("price: got %v, want 12.99", resp["price"])
	}
	if resp["is_available"] != true {
		t.Errorf("is_available: got %v, want true", resp["is_available"])
	}
	custs, _ := resp["customizations"].([]interface{})
	if len(custs) != 1 {
		t.Fatalf("customizations: got %v", resp["customizations"])
	}
}

func TestMenuItemCreate_InvalidPrice(t *testing.T) {
	store := newMockMenuItemStore()
	router := setupMenuItemRouter(store)
	restaurantID := uuid.New()

	for _, price := range []string{"abc", "-5.00"} {
		rr := doRequest(t, router, "POST", "/restaurants/"+restaurantID.String()+"/menu-items", map[string]interface{}{
			"name":  "Bad Price",
			"price": price,
		})
		if rr.Code != http.StatusBadRequest {
			t.Errorf("price %q: status got %d, want %d", price, rr.Code, http.StatusBadRequest)
		}
	}
}

func TestMenuItemCreate_InvalidCustomization(t *testing.T) {
	store := newMockMenuItemStore()
	router := setupMenuItemRouter(store)
	restaurantID := uuid.New()

	// Negative price delta is rejected at the boundary.
	rr := doRequest(t, router, "POST", "/restaurants/"+restaurantID.String()+"/menu-items", map[string]interface{}{
		"name":  "Bad Custo",
		"price": "9.99",
		"customizations": []map[string]interface{}{
			{
				"name": "Extras",
				"type": "multiple",
				"options": []map[string]interface{}{
					{"name": "Discount Cheese", "price_delta": "-1.00"},
				},
			},
		},
	})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d; body: %s", rr.Code, http.StatusBadRequest, rr.Body.String())
	}
}

func TestMenuItemCreate_UnknownSelectionType(t *testing.T) {
	store := newMockMenuItemStore()
	router := setupMenuItemRouter(store)
	restaurantID := uuid.New()

	rr := doRequest(t, router, "POST", "/restaurants/"+restaurantID.String()+"/menu-items", map[string]interface{}{
		"name":  "Bad Type",
		"price": "9.99",
		"customizations": []map[string]interface{}{
			{
				"name": "Extras",
				"type": "checkbox",
				"options": []map[string]interface{}{
					{"name": "Cheese", "price_delta": "1.00"},
				},
			},
		},
	})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestMenuItemList_IncludesUnavailable(t *testing.T) {
	store := newMockMenuItemStore()
	restaurantID := uuid.New()
	available := seedMenuItem(t, store, restaurantID, "On Menu", "10.00")
	eightySixed := seedMenuItem(t, store, restaurantID, "Out of Stock", "8.00")
	item := store.items[eightySixed.ID]
	item.IsAvailable = false
	store.items[eightySixed.ID] = item

	router := setupMenuItemRouter(store)
	rr := doRequest(t, router, "GET", "/restaurants/"+restaurantID.String()+"/menu-items", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	resp := decodeListResponse(t, rr)
	if len(resp) != 2 {
		t.Fatalf("expected both items in the staff list, got %d", len(resp))
	}
	_ = available
}

func TestMenuItemSetAvailability(t *testing.T) {
	store := newMockMenuItemStore()
	restaurantID := uuid.New()
	item := seedMenuItem(t, store, restaurantID, "Soup", "5.50")

	router := setupMenuItemRouter(store)
	rr := doRequest(t, router, "PATCH",
		"/restaurants/"+restaurantID.String()+"/menu-items/"+item.ID.String()+"/availability",
		map[string]interface{}{"is_available": false})

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	resp := decodeObjectResponse(t, rr)
	if resp["is_available"] != false {
		t.Errorf("is_available: got %v, want false", resp["is_available"])
	}
	if !store.items[item.ID].IsActive {
		t.Error("availability toggle must not soft-delete the item")
	}
}

func TestMenuItemDelete_SoftDeletes(t *testing.T) {
	store := newMockMenuItemStore()
	restaurantID := uuid.New()
	item := seedMenuItem(t, store, restaurantID, "Retired Dish", "15.00")

	router := setupMenuItemRouter(store)
	rr := doRequest(t, router, "DELETE", "/restaurants/"+restaurantID.String()+"/menu-items/"+item.ID.String(), nil)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusNoContent, rr.Body.String())
	}
	stored, exists := store.items[item.ID]
	if !exists {
		t.Fatal("expected row to remain for historical orders")
	}
	if stored.IsActive || stored.IsAvailable {
		t.Error("expected is_active=false and is_available=false after delete")
	}
}

func TestMenuItemGet_WrongRestaurant(t *testing.T) {
	store := newMockMenuItemStore()
	restaurantID := uuid.New()
	item := seedMenuItem(t, store, restaurantID, "Private Dish", "9.00")

	router := setupMenuItemRouter(store)
	rr := doRequest(t, router, "GET", "/restaurants/"+uuid.NewString()+"/menu-items/"+item.ID.String(), nil)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}
