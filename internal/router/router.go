package router

import (
	"fmt"
	"net/http"
	"time"

	"library-web/internal/config"
	"library-web/internal/handlers"
	"library-web/internal/middleware"
	"library-web/internal/models"
	"library-web/internal/render"
	"library-web/internal/services"
	"library-web/internal/session"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	slowRequestThreshold = time.Second
	authAttemptsEvery    = 6 * time.Second
	authAttemptsBurst    = 5
)

func SetupRouter(cfg config.Config, registry *session.Registry, probe handlers.Prober, logger zerolog.Logger) (*mux.Router, error) {
	keys, err := session.DeriveKeys(cfg.SessionSecret)
	if err != nil {
		return nil, fmt.Errorf("derive session keys: %w", err)
	}
	if cfg.UsesDevSecret() {
		logger.Warn().Msg("SESSION_SECRET not set, using development secret")
	}

	renderer, err := render.New(logger)
	if err != nil {
		return nil, err
	}

	store := session.NewStore(registry, keys, cfg.CookieSecure, logger)
	tokens := services.NewTokenService(keys.FormToken, logger)

	pageHandler := handlers.NewPageHandler(renderer, logger)
	authHandler := handlers.NewAuthHandler(renderer, logger)
	catalogHandler := handlers.NewCatalogHandler(renderer, logger)
	ordersHandler := handlers.NewOrdersHandler(renderer, logger)
	adminHandler := handlers.NewAdminHandler(renderer, logger)
	healthHandler := handlers.NewHealthHandler(probe, logger)

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(pageHandler.NotFound)

	rateLimiter := middleware.NewRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	authLimiter := middleware.NewIPRateLimiter(rate.Every(authAttemptsEvery), authAttemptsBurst)

	r.Use(middleware.ErrorHandling(logger))
	r.Use(middleware.PerformanceMonitoring(logger, slowRequestThreshold))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.SecurityHeaders(cfg.CookieSecure))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	}
	r.Use(rateLimiter.Middleware())

	r.HandleFunc("/health", healthHandler.Live).Methods("GET")
	r.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")

	app := r.NewRoute().Subrouter()
	app.Use(middleware.Session(store, logger))
	app.Use(middleware.CSRF(tokens, logger))

	waiting := http.HandlerFunc(pageHandler.Waiting)
	signedIn := middleware.RequireAuth(waiting)
	limited := authLimiter.Middleware()

	app.HandleFunc("/", catalogHandler.Catalog).Methods("GET")
	app.HandleFunc("/catalog", catalogHandler.Catalog).Methods("GET")
	app.HandleFunc("/catalog/more", catalogHandler.LoadMore).Methods("POST")
	app.HandleFunc("/catalog/select/{id}", catalogHandler.Select).Methods("POST")
	app.HandleFunc("/catalog/orders", catalogHandler.Order).Methods("POST")

	app.HandleFunc("/login", authHandler.LoginPage).Methods("GET")
	app.Handle("/login", limited(http.HandlerFunc(authHandler.Login))).Methods("POST")
	app.Handle("/register", limited(http.HandlerFunc(authHandler.Register))).Methods("POST")
	app.HandleFunc("/logout", authHandler.Logout).Methods("POST")

	app.Handle("/orders", signedIn(http.HandlerFunc(ordersHandler.Mine))).Methods("GET")

	admin := app.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.RequireAuth(waiting, models.RoleAdmin))
	admin.HandleFunc("/books", adminHandler.Books).Methods("GET")
	admin.HandleFunc("/books", adminHandler.CreateBook).Methods("POST")
	admin.HandleFunc("/books/new", adminHandler.NewBook).Methods("GET")
	admin.HandleFunc("/books/{id}/edit", adminHandler.EditBook).Methods("GET")
	admin.HandleFunc("/books/{id}", adminHandler.UpdateBook).Methods("POST")
	admin.HandleFunc("/books/{id}/status", adminHandler.ChangeStatus).Methods("POST")
	admin.HandleFunc("/orders", adminHandler.ActiveRentals).Methods("GET")
	admin.HandleFunc("/orders/refresh", adminHandler.RefreshRentals).Methods("POST")
	admin.HandleFunc("/reminders", adminHandler.Reminders).Methods("GET")
	admin.HandleFunc("/reminders/refresh", adminHandler.RefreshReminders).Methods("POST")

	return r, nil
}
