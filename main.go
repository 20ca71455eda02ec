package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/vizquery/vizquery-engine/migrations"
	"github.com/vizquery/vizquery-engine/pkg/adapters/connector"
	_ "github.com/vizquery/vizquery-engine/pkg/adapters/connector/file"
	_ "github.com/vizquery/vizquery-engine/pkg/adapters/connector/mongo"
	_ "github.com/vizquery/vizquery-engine/pkg/adapters/connector/mysql"
	"github.com/vizquery/vizquery-engine/pkg/auth"
	"github.com/vizquery/vizquery-engine/pkg/config"
	"github.com/vizquery/vizquery-engine/pkg/crypto"
	"github.com/vizquery/vizquery-engine/pkg/database"
	"github.com/vizquery/vizquery-engine/pkg/email"
	"github.com/vizquery/vizquery-engine/pkg/handlers"
	"github.com/vizquery/vizquery-engine/pkg/llm"
	"github.com/vizquery/vizquery-engine/pkg/logging"
	"github.com/vizquery/vizquery-engine/pkg/middleware"
	"github.com/vizquery/vizquery-engine/pkg/repositories"
	"github.com/vizquery/vizquery-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.NewLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("version", cfg.Version),
		zap.String("database", fmt.Sprintf("%s@%s:%d/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database)),
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.String("llm_model", cfg.LLM.Model))

	ctx := context.Background()

	if err := runMigrations(cfg, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.ConnectionString(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	credentialsKey := cfg.CredentialsKey
	if credentialsKey == "" {
		credentialsKey = cfg.Auth.JWTSecret
	}
	cipher, err := crypto.NewCredentialCipher(credentialsKey)
	if err != nil {
		logger.Fatal("Failed to create credential cipher", zap.Error(err))
	}

	userRepo := repositories.NewUserRepository(db)
	profileRepo := repositories.NewProfileRepository(db, cipher)
	historyRepo := repositories.NewHistoryRepository(db)

	authService, err := auth.NewService(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)
	if err != nil {
		logger.Fatal("Failed to create auth service", zap.Error(err))
	}
	authMiddleware := auth.NewMiddleware(authService, logger)

	model, err := llm.NewClient(&llm.Config{
		Provider:  cfg.LLM.Provider,
		Endpoint:  cfg.LLM.Endpoint,
		Model:     cfg.LLM.Model,
		APIKey:    cfg.LLM.APIKey,
		MaxTokens: cfg.LLM.MaxTokens,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to create analysis model client", zap.Error(err))
	}

	factory := connector.NewFactory(logger)
	mailer := email.NewLogMailer(logger)

	accountService := services.NewAccountService(userRepo, authService, mailer, logger)
	profileService := services.NewProfileService(profileRepo, factory, logger)
	historyService := services.NewHistoryService(historyRepo, logger)
	gateway := services.NewQueryGateway(profileRepo, factory, model, historyService, services.GatewayLimits{
		RowLimit:         cfg.Query.RowLimit,
		DumpRowsPerTable: cfg.Query.DumpRowsPerTable,
		LLMTimeout:       time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,
	}, logger)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg).RegisterRoutes(mux)
	handlers.NewAuthHandler(accountService, logger).RegisterRoutes(mux)
	handlers.NewProfilesHandler(profileService, cfg.Uploads, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewQueriesHandler(gateway, historyService, logger).RegisterRoutes(mux, authMiddleware)

	handler := middleware.RequestLogger(logger)(mux)

	addr := net.JoinHostPort(cfg.BindAddr, cfg.Port)
	logger.Info("Starting vizquery-engine", zap.String("addr", addr), zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

// runMigrations opens a short-lived database/sql connection for the
// migration driver, separate from the pgx pool used at runtime.
func runMigrations(cfg *config.Config, logger *zap.Logger) error {
	db, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		return fmt.Errorf("failed to open migration connection: %w", err)
	}
	defer db.Close()

	return database.RunMigrations(db, migrations.Files, logger)
}
