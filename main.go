package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"gitea.com/go-chi/session"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/organize/auth-gateway/authenticator"
	"github.com/organize/auth-gateway/config"
	"github.com/organize/auth-gateway/controllers"
	"github.com/organize/auth-gateway/database"
	"github.com/organize/auth-gateway/logger"
	"github.com/organize/auth-gateway/metrics"
	authmiddleware "github.com/organize/auth-gateway/middleware"
	"github.com/organize/auth-gateway/repositories"
	"github.com/organize/auth-gateway/services"
	"github.com/organize/auth-gateway/tokens"
)

func main() {
	// Load environment variables from .env file when present
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	// Load and validate configuration; missing credentials are fatal
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	logger.Init(cfg.Environment)
	defer logger.Sync()

	// Initialize database
	if err := database.InitializeDatabase(cfg.DatabasePath); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.CloseDB()

	// Initialize repositories
	repos := repositories.NewRepositories(database.GetDB())

	// Initialize providers
	google, err := authenticator.NewGoogleProvider(context.Background(), cfg.Google)
	if err != nil {
		log.Fatalf("Failed to initialize Google provider: %v", err)
	}
	github, err := authenticator.NewGitHubProvider(cfg.GitHub)
	if err != nil {
		log.Fatalf("Failed to initialize GitHub provider: %v", err)
	}
	registry := authenticator.NewRegistry(google, github)

	// Initialize metrics
	promRegistry := prometheus.NewRegistry()
	collector := metrics.NewCollector(promRegistry)

	// Initialize services and controllers
	issuer := tokens.NewIssuer(cfg.SessionSecret)
	srvs := services.NewServices(registry, issuer, repos, collector)
	ctrl := controllers.NewControllers(srvs, repos, cfg.Environment)

	// Set up router
	r, err := setupRouter(cfg, ctrl, issuer, promRegistry)
	if err != nil {
		log.Fatalf("Failed to setup router: %v", err)
	}

	fmt.Printf("🚀 Auth gateway starting on port %s\n", cfg.Port)
	fmt.Printf("📱 App URL: %s\n", cfg.AppURL)
	fmt.Printf("🔐 OAuth configured for Google and GitHub\n")
	fmt.Printf("🌍 Environment: %s\n", cfg.Environment)

	log.Fatal(http.ListenAndServe(":"+cfg.Port, r))
}

// setupRouter configures all routes
func setupRouter(cfg *config.Config, ctrl *controllers.Controllers, issuer *tokens.Issuer, gatherer prometheus.Gatherer) (*chi.Mux, error) {
	r := chi.NewRouter()

	// Middleware
	r.Use(authmiddleware.RequestLogger(logger.Named("http")))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(30 * time.Second)) // bounds hung provider calls during callbacks
	r.Use(chimiddleware.Compress(5))

	// Session middleware
	sessionHandler, err := session.Sessioner(session.Options{
		Provider:       "memory",
		ProviderConfig: "",
		CookieName:     "auth_gateway_session",
		Secure:         cfg.SecureCookies,
		Gclifetime:     3600,
		Maxlifetime:    3600,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session: %w", err)
	}
	r.Use(sessionHandler)

	// Bearer-token middleware; requests without a valid credential
	// continue anonymously
	r.Use(authmiddleware.BearerAuth(issuer, logger.Named("bearer")))

	// Static files (frontend)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir("static/"))))
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "static/index.html")
	})

	// Authentication flow
	r.Post("/api/auth/{provider}", ctrl.Auth.Initiate)
	r.Get("/auth/{provider}/callback", ctrl.Auth.Callback)
	r.Get("/auth/status", ctrl.Auth.Status)
	r.Get("/auth/logout", ctrl.Auth.Logout)

	// API reads
	r.Get("/api/me", ctrl.Auth.Me)
	r.Get("/api/health", ctrl.Health.Check)
	r.Get("/api/usage", ctrl.Usage.Report)

	// Observability
	r.Handle("/metrics", metrics.Handler(gatherer))

	return r, nil
}
