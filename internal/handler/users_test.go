package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/qrdine/api/internal/database"
	"github.com/qrdine/api/internal/handler"
	"golang.org/x/crypto/bcrypt"
)

// --- Mock store ---

type mockUserStore struct {
	users map[uuid.UUID]database.User // keyed by user ID
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{users: make(map[uuid.UUID]database.User)}
}

func (m *mockUserStore) ListUsersByRestaurant(_ context.Context, restaurantID uuid.UUID) ([]database.User, error) {
	var result []database.User
	for _, u := range m.users {
		if u.RestaurantID.Valid && uuid.UUID(u.RestaurantID.Bytes) == restaurantID && u.IsActive {
			result = append(result, u)
		}
	}
	return result, nil
}

func (m *mockUserStore) CreateUser(_ context.Context, arg database.CreateUserParams) (database.User, error) {
	for _, u := range m.users {
		if u.Email == arg.Email {
			return database.User{}, &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
		}
	}
	u := database.User{
		ID:             uuid.New(),
		Email:          arg.Email,
		HashedPassword: arg.HashedPassword,
		FullName:       arg.FullName,
		Role:           arg.Role,
		RestaurantID:   arg.RestaurantID,
		IsActive:       true,
		CreatedAt:      time.Now(),
	}
	m.users[u.ID] = u
	return u, nil
}

func (m *mockUserStore) UpdateUser(_ context.Context, arg database.UpdateUserParams) (database.User, error) {
	u, ok := m.users[arg.ID]
	if !ok || !u.RestaurantID.Valid || uuid.UUID(u.RestaurantID.Bytes) != arg.RestaurantID || !u.IsActive {
		return database.User{}, pgx.ErrNoRows
	}
	u.FullName = arg.FullName
	u.Role = arg.Role
	m.users[u.ID] = u
	return u, nil
}

func (m *mockUserStore) DeactivateUser(_ context.Context, arg database.DeactivateUserParams) (uuid.UUID, error) {
	u, ok := m.users[arg.ID]
	if !ok || !u.RestaurantID.Valid || uuid.UUID(u.RestaurantID.Bytes) != arg.RestaurantID || !u.IsActive {
		return uuid.Nil, pgx.ErrNoRows
	}
	u.IsActive = false
	m.users[u.ID] = u
	return u.ID, nil
}

// --- Helpers ---

func doRequest(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeObjectResponse(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func decodeListResponse(t *testing.T, rr *httptest.ResponseRecorder) []map[string]interface{} {
	t.Helper()
	var resp []map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func setupUserRouter(store *mockUserStore) *chi.Mux {
	h := handler.NewUserHandler(store)
	r := chi.NewRouter()
	r.Route("/restaurants/{rid}/users", h.RegisterRoutes)
	return r
}

func seedUser(store *mockUserStore, restaurantID uuid.UUID, email, role string) database.User {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	u := database.User{
		ID:             uuid.New(),
		Email:          email,
		HashedPassword: string(hashed),
		FullName:       "Test Staff",
		Role:           role,
		RestaurantID:   pgtype.UUID{Bytes: restaurantID, Valid: true},
		IsActive:       true,
		CreatedAt:      time.Now(),
	}
	store.users[u.ID] = u
	return u
}

// --- Tests ---

func TestUserList_ScopedToRestaurant(t *testing.T) {
	store := newMockUserStore()
	restaurantID := uuid.New()
	otherID := uuid.New()
	seedUser(store, restaurantID, "a@example.com", "staff")
	seedUser(store, otherID, "b@example.com", "staff")

	router := setupUserRouter(store)
	rr := doRequest(t, router, "GET", "/restaurants/"+restaurantID.String()+"/users", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	resp := decodeListResponse(t, rr)
	if len(resp) != 1 {
		t.Fatalf("expected 1 user, got %d", len(resp))
	}
	if resp[0]["email"] != "a@example.com" {
		t.Errorf("email: got %v, want a@example.com", resp[0]["email"])
	}
}

func TestUserCreate_Valid(t *testing.T) {
	store := newMockUserStore()
	router := setupUserRouter(store)
	restaurantID := uuid.New()

	rr := doRequest(t, router, "POST", "/restaurants/"+restaurantID.String()+"/users", map[string]interface{}{
		"email":     "waiter@example.com",
		"password":  "s3cret-pass",
		"full_name": "New Waiter",
		"role":      "staff",
	})

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}
	resp := decodeObjectResponse(t, rr)
	if resp["email"] != "waiter@example.com" {
		t.Errorf("email: got %v", resp["email"])
	}
	if resp["role"] != "staff" {
		t.Errorf("role: got %v", resp["role"])
	}
	// The hash must never appear in responses.
	if _, ok := resp["hashed_password"]; ok {
		t.Error("response leaks hashed_password")
	}
}

func TestUserCreate_HashesPassword(t *testing.T) {
	store := newMockUserStore()
	router := setupUserRouter(store)
	restaurantID := uuid.New()

	doRequest(t, router, "POST", "/restaurants/"+restaurantID.String()+"/users", map[string]interface{}{
		"email":     "cook@example.com",
		"password":  "plaintext-pw",
		"full_name": "Cook",
		"role":      "staff",
	})

	var stored database.User
	for _, u := range store.users {
		stored = u
	}
	if stored.HashedPassword == "plaintext-pw" {
		t.Fatal("password stored in plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.HashedPassword), []byte("plaintext-pw")); err != nil {
		t.Errorf("stored hash does not verify: %v", err)
	}
}

func TestUserCreate_InvalidRole(t *testing.T) {
	store := newMockUserStore()
	router := setupUserRouter(store)
	restaurantID := uuid.New()

	rr := doRequest(t, router, "POST", "/restaurants/"+restaurantID.String()+"/users", map[string]interface{}{
		"email":     "x@example.com",
		"password":  "password123",
		"full_name": "X",
		"role":      "superadmin",
	})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

// The admin role bypasses restaurant scoping, so a tenant endpoint must
// never hand it out. Otherwise an owner could mint an account whose token
// passes the tenant gate for every restaurant.
func TestUserCreate_AdminRoleRejected(t *testing.T) {
	store := newMockUserStore()
	router := setupUserRouter(store)
	restaurantID := uuid.New()

	rr := doRequest(t, router, "POST", "/restaurants/"+restaurantID.String()+"/users", map[string]interface{}{
		"email":     "escalate@example.com",
		"password":  "password123",
		"full_name": "Escalate",
		"role":      "admin",
	})

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusBadRequest, rr.Body.String())
	}
	if len(store.users) != 0 {
		t.Errorf("user count: got %d, want 0", len(store.users))
	}
}

func TestUserUpdate_AdminRoleRejected(t *testing.T) {
	store := newMockUserStore()
	restaurantID := uuid.New()
	u := seedUser(store, restaurantID, "staff@example.com", "staff")
	router := setupUserRouter(store)

	rr := doRequest(t, router, "PUT", "/restaurants/"+restaurantID.String()+"/users/"+u.ID.String(), map[string]interface{}{
		"full_name": "Escalate",
		"role":      "admin",
	})

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusBadRequest, rr.Body.String())
	}
	if got := store.users[u.ID].Role; got != "staff" {
		t.Errorf("role after rejected update: got %s, want staff", got)
	}
}

func TestUserCreate_DuplicateEmail(t *testing.T) {
	store := newMockUserStore()
	restaurantID := uuid.New()
	seedUser(store, restaurantID, "dup@example.com", "staff")
	router := setupUserRouter(store)

	rr := doRequest(t, router, "POST", "/restaurants/"+restaurantID.String()+"/users", map[string]interface{}{
		"email":     "dup@example.com",
		"password":  "password123",
		"full_name": "Dup",
		"role":      "staff",
	})

	if rr.Code != http.StatusConflict {
		t.Errorf("status: got %d, want %d; body: %s", rr.Code, http.StatusConflict, rr.Body.String())
	}
}

func TestUserCreate_MissingFields(t *testing.T) {
	store := newMockUserStore()
	router := setupUserRouter(store)
	restaurantID := uuid.New()

	rr := doRequest(t, router, "POST", "/restaurants/"+restaurantID.String()+"/users", map[string]interface{}{
		"email": "only@example.com",
	})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestUserUpdate_Valid(t *testing.T) {
	store := newMockUserStore()
	restaurantID := uuid.New()
	u := seedUser(store, restaurantID, "staff@example.com", "staff")
	router := setupUserRouter(store)

	rr := doRequest(t, router, "PUT", "/restaurants/"+restaurantID.String()+"/users/"+u.ID.String(), map[string]interface{}{
		"full_name": "Promoted",
		"role":      "restaurant_owner",
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	resp := decodeObjectResponse(t, rr)
	if resp["full_name"] != "Promoted" {
		t.Errorf("full_name: got %v", resp["full_name"])
	}
	if resp["role"] != "restaurant_owner" {
		t.Errorf("role: got %v", resp["role"])
	}
}

func TestUserUpdate_WrongRestaurant(t *testing.T) {
	store := newMockUserStore()
	restaurantID := uuid.New()
	u := seedUser(store, restaurantID, "staff@example.com", "staff")
	router := setupUserRouter(store)

	rr := doRequest(t, router, "PUT", "/restaurants/"+uuid.NewString()+"/users/"+u.ID.String(), map[string]interface{}{
		"full_name": "Hacked",
		"role":      "staff",
	})

	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestUserDeactivate_Valid(t *testing.T) {
	store := newMockUserStore()
	restaurantID := uuid.New()
	u := seedUser(store, restaurantID, "leaving@example.com", "staff")
	router := setupUserRouter(store)

	rr := doRequest(t, router, "DELETE", "/restaurants/"+restaurantID.String()+"/users/"+u.ID.String(), nil)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusNoContent, rr.Body.String())
	}
	if store.users[u.ID].IsActive {
		t.Error("expected user deactivated")
	}
}

func TestUserDeactivate_NotFound(t *testing.T) {
	store := newMockUserStore()
	router := setupUserRouter(store)

	rr := doRequest(t, router, "DELETE", "/restaurants/"+uuid.NewString()+"/users/"+uuid.NewString(), nil)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}
