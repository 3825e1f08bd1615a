package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"arbor/internal/auth"
	"arbor/internal/config"
	"arbor/internal/events"
	"arbor/internal/handler"
	"arbor/internal/itemtypes"
	"arbor/internal/middleware"
	"arbor/internal/repository/postgres"
	"arbor/internal/service"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	var logOut io.Writer = os.Stdout
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, 10)
		if err != nil {
			log.Fatalf("Failed to set up log file: %v", err)
		}
		defer logFile.Close()
		logOut = io.MultiWriter(os.Stdout, logFile)
	}

	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	// Create JWT verifier
	jwtVerifier, err := auth.NewJWTVerifier(cfg.JWKSURL, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer jwtVerifier.Close()

	// Create pgx connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected")

	// Create repositories
	tables := postgres.NewTableNames(cfg.TablePrefix)
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	itemRepo := postgres.NewItemRepository(repoConfig)
	membershipRepo := postgres.NewMembershipRepository(repoConfig)
	visibilityRepo := postgres.NewVisibilityRepository(repoConfig)
	recycledRepo := postgres.NewRecycledItemRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool, logger)

	// Initialize the item type registry
	typeRegistry, err := itemtypes.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to initialize item type registry: %v", err)
	}

	// Access resolution
	resolver := service.NewPermissionResolver(membershipRepo, visibilityRepo, logger)
	gate := service.NewAuthorizationGate(resolver, logger)

	// Mutation events go to the structured log; swap the publisher to fan
	// out over another transport.
	publisher := events.NewLogPublisher(logger)

	// Background order key rescaler
	rescaler := service.NewRescaler(itemRepo, logger)
	rescaler.Start(ctx)

	// Create services
	itemService := service.NewItemService(itemRepo, membershipRepo, recycledRepo, txManager, gate, typeRegistry, publisher, rescaler, logger)
	membershipService := service.NewMembershipService(membershipRepo, itemRepo, gate, logger)
	visibilityService := service.NewVisibilityService(visibilityRepo, itemRepo, gate, logger)

	// Create handlers
	itemHandler := handler.NewItemHandler(itemService, logger)
	recycleHandler := handler.NewRecycleHandler(itemService, logger)
	membershipHandler := handler.NewMembershipHandler(membershipService, logger)
	visibilityHandler := handler.NewVisibilityHandler(visibilityService, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", handler.HealthCheck)

	// Item routes
	mux.HandleFunc("POST /api/items", itemHandler.CreateItem)
	mux.HandleFunc("GET /api/items/{id}", itemHandler.GetItem)
	mux.HandleFunc("PATCH /api/items/{id}", itemHandler.UpdateItem)
	mux.HandleFunc("GET /api/items/{id}/children", itemHandler.GetChildren)
	mux.HandleFunc("GET /api/items/{id}/descendants", itemHandler.GetDescendants)
	mux.HandleFunc("GET /api/items/{id}/ancestors", itemHandler.GetAncestors)
	mux.HandleFunc("POST /api/items/{id}/reorder", itemHandler.ReorderItem)

	// Bulk structural operations
	mux.HandleFunc("POST /api/items/move", itemHandler.MoveItems)
	mux.HandleFunc("POST /api/items/copy", itemHandler.CopyItems)
	mux.HandleFunc("POST /api/items/recycle", recycleHandler.RecycleItems)
	mux.HandleFunc("POST /api/items/restore", recycleHandler.RestoreItems)

	// Recycle bin
	mux.HandleFunc("GET /api/trash", recycleHandler.ListTrash)

	// Membership routes
	mux.HandleFunc("POST /api/items/{id}/memberships", membershipHandler.ShareItem)
	mux.HandleFunc("GET /api/items/{id}/memberships", membershipHandler.ListMemberships)
	mux.HandleFunc("PATCH /api/memberships/{id}", membershipHandler.UpdateMembership)
	mux.HandleFunc("DELETE /api/memberships/{id}", membershipHandler.DeleteMembership)

	// Visibility routes
	mux.HandleFunc("POST /api/items/{id}/visibilities", visibilityHandler.SetVisibility)
	mux.HandleFunc("GET /api/items/{id}/visibilities", visibilityHandler.ListVisibilities)
	mux.HandleFunc("DELETE /api/items/{id}/visibilities/{type}", visibilityHandler.ClearVisibility)

	// Build middleware chain
	var root http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS -> Recovery -> Auth -> Routes
	root = middleware.Auth(jwtVerifier)(root)
	root = middleware.Recovery(logger)(root)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	root = corsHandler.Handler(root)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
