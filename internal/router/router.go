package router

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/qrdine/api/internal/config"
	"github.com/qrdine/api/internal/database"
	"github.com/qrdine/api/internal/enum"
	"github.com/qrdine/api/internal/handler"
	mw "github.com/qrdine/api/internal/middleware"
	"github.com/qrdine/api/internal/service"
)

// New creates a Chi router with all application routes wired up.
// Public routes (auth, QR menu, order submission) are registered first,
// then the restaurant-scoped admin routes behind authentication.
func New(cfg *config.Config, queries *database.Queries, pool *pgxpool.Pool) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{
			"http://localhost:3000",    // Next.js dev server
			"https://order.qrdine.app", // Production diner frontend
			"https://admin.qrdine.app", // Production admin
		},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	// Auth routes (public)
	authHandler := handler.NewAuthHandler(queries, cfg.JWTSecret)
	authHandler.RegisterRoutes(r)

	// Public QR menu and order submission. The order service runs each
	// order in its own transaction, so it gets a store factory instead
	// of the shared queries.
	newOrderStore := func(db database.DBTX) service.OrderStore {
		return database.New(db)
	}
	orderService := service.NewOrderService(pool, newOrderStore, cfg.DBTimeout)
	menuHandler := handler.NewMenuHandler(queries, orderService)
	menuHandler.RegisterRoutes(r)

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		// Restaurant-scoped routes
		r.Route("/restaurants/{rid}", func(r chi.Router) {
			r.Use(mw.RequireRestaurant)

			// Restaurant profile
			restaurantHandler := handler.NewRestaurantHandler(queries)
			restaurantHandler.RegisterRoutes(r)

			// Users (staff cannot manage accounts)
			userHandler := handler.NewUserHandler(queries)
			r.Route("/users", func(r chi.Router) {
				r.Use(mw.RequireRole(enum.UserRoleAdmin, enum.UserRoleRestaurantOwner))
				userHandler.RegisterRoutes(r)
			})

			// Categories
			categoryHandler := handler.NewCategoryHandler(queries)
			r.Route("/categories", categoryHandler.RegisterRoutes)

			// Menu items
			menuItemHandler := handler.NewMenuItemHandler(queries)
			r.Route("/menu-items", menuItemHandler.RegisterRoutes)

			// Tables
			tableHandler := handler.NewTableHandler(queries, cfg.BaseURL)
			r.Route("/tables", tableHandler.RegisterRoutes)

			// Orders
			orderHandler := handler.NewOrderHandler(queries)
			r.Route("/orders", orderHandler.RegisterRoutes)

			// Dashboard
			dashboardHandler := handler.NewDashboardHandler(queries)
			dashboardHandler.RegisterRoutes(r)
		})
	})

	log.Println("Router initialized with all handlers")
	return r
}
