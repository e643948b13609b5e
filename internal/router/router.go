package router

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tavolo-pos/api/internal/config"
	"github.com/tavolo-pos/api/internal/database"
	"github.com/tavolo-pos/api/internal/enum"
	"github.com/tavolo-pos/api/internal/handler"
	mw "github.com/tavolo-pos/api/internal/middleware"
	"github.com/tavolo-pos/api/internal/service"
	"github.com/tavolo-pos/api/internal/ws"
)

// New creates a Chi router with all application routes wired up.
// Applies authentication and role-based middleware as needed.
func New(cfg *config.Config, queries *database.Queries, pool *pgxpool.Pool, hub *ws.Hub) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{
			"http://localhost:5173", // SvelteKit dev server
			"https://pos.tavolo.app",
			"https://expo.tavolo.app",
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

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws/orders", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, w, r)
	})

	newOrderStore := func(db database.DBTX) service.OrderStore {
		return database.New(db)
	}
	orderService := service.NewOrderService(pool, newOrderStore)
	orderHandler := handler.NewOrderHandler(orderService, hub)
	catalogHandler := handler.NewCatalogHandler(queries)
	discountHandler := handler.NewDiscountHandler(queries)
	reportHandler := handler.NewReportHandler(queries)

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		r.Route("/products", catalogHandler.RegisterRoutes)
		r.Route("/discounts", discountHandler.RegisterRoutes)

		r.Route("/orders", func(r chi.Router) {
			orderHandler.RegisterRoutes(r)

			// Voids are manager-approved corrections on paid orders
			r.Group(func(r chi.Router) {
				r.Use(mw.RequireRole(enum.UserRoleManager))
				orderHandler.RegisterManagerRoutes(r)
			})
		})

		// Reports (manager only)
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.UserRoleManager))
			r.Route("/reports", reportHandler.RegisterRoutes)
		})
	})

	log.Println("Router initialized with all handlers")
	return r
}
