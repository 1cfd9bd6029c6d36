package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/isdelr/itemdesk-be/internal/api/handlers"
	"github.com/isdelr/itemdesk-be/internal/auth"
	"github.com/isdelr/itemdesk-be/internal/models"
	"github.com/isdelr/itemdesk-be/internal/services"
)

// Dependencies are the collaborators the HTTP layer is built from.
type Dependencies struct {
	Users           services.UserServiceProvider
	Items           services.ItemServiceProvider
	Metrics         services.MetricsServiceProvider
	Tokens          *auth.TokenManager
	ClientOrigin    string
	RateLimitMax    int
	RateLimitWindow time.Duration
}

// NewRouter creates and configures a new Chi router.
func NewRouter(deps Dependencies) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(recoverer)

	corsOptions := cors.Options{
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if deps.ClientOrigin != "" {
		corsOptions.AllowedOrigins = []string{deps.ClientOrigin}
	} else {
		// Reflect any origin so credentialed requests still work.
		corsOptions.AllowOriginFunc = func(*http.Request, string) bool { return true }
	}
	r.Use(cors.Handler(corsOptions))

	if deps.RateLimitMax > 0 {
		r.Use(RateLimit(deps.RateLimitMax, deps.RateLimitWindow, handlers.WriteError))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handlers.WriteError(w, r, models.NewError(models.ErrNotFound, "Route not found"))
	})
	r.MethodNotAllowed(handlers.MethodNotAllowed)

	authHandler := handlers.NewAuthHandler(deps.Users, deps.Tokens)
	itemHandler := handlers.NewItemHandler(deps.Items)
	adminHandler := handlers.NewAdminHandler(deps.Users, deps.Metrics)

	authenticate := auth.Authenticate(deps.Tokens, deps.Users, handlers.WriteError)

	r.Get("/health", handlers.Health)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", authHandler.Signup)
		r.Post("/login", authHandler.Login)
		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Get("/me", authHandler.Me)
			r.Post("/logout", authHandler.Logout)
			r.Post("/password", authHandler.ChangePassword)
		})
	})

	r.Route("/items", func(r chi.Router) {
		r.Use(authenticate)
		r.Get("/", itemHandler.List)
		r.Post("/", itemHandler.Create)
		r.Post("/bulk-delete", itemHandler.BulkDelete)
		r.Patch("/{id}", itemHandler.Update)
		r.Delete("/{id}", itemHandler.Delete)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(authenticate)
		r.Use(auth.RequireRole(handlers.WriteError, models.RoleAdmin))
		r.Get("/metrics", adminHandler.Metrics)
		r.Get("/users", adminHandler.ListUsers)
		r.Patch("/users/{id}/role", adminHandler.UpdateRole)
		r.Delete("/users/{id}", adminHandler.DeleteUser)
	})

	return r
}
