package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tvbridge/config"
	"tvbridge/internal/api"
	"tvbridge/internal/bot"
	"tvbridge/internal/logging"
	"tvbridge/internal/remote"
	"tvbridge/internal/smartthings"
	"tvbridge/internal/storage"
	"tvbridge/internal/storage/sqlite"
	"tvbridge/internal/tizen"
)

const (
	shutdownTimeout   = 10 * time.Second
	defaultConfigPath = "config.json"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	// Parse command-line flags
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	useEnv := flag.Bool("env", false, "Load configuration from environment variables")
	flag.Parse()

	// Load configuration
	var cfg *config.Config
	var err error

	if *useEnv {
		cfg, err = config.LoadFromEnv()
	} else {
		cfg, err = config.Load(*configPath)
	}

	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.NewLogger(logging.LoggerConfig{
		Format: cfg.Logging.Format,
		Level:  logging.ParseLevel(cfg.Logging.Level),
	})

	// Initialize credential store
	logger.Info("Initializing SQLite database", "path", cfg.Database.Path)
	db, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	store := logging.NewCredentialStoreLogger(db, logger)
	defer store.Close()

	// Initialize backend registry
	registry := remote.NewRegistry()
	defer registry.CloseAll()

	var stClient *smartthings.Client
	if cfg.SmartThings.Configured() {
		stClient, err = buildSmartThingsClient(cfg, store, logger)
		if err != nil {
			return err
		}
		if err := registry.Register(stClient); err != nil {
			return fmt.Errorf("failed to register smartthings backend: %w", err)
		}
		logger.Info("Registered SmartThings backend")
	}

	if cfg.Tizen.Configured() {
		tizenClient := tizen.NewClient(tizen.Config{
			Host: cfg.Tizen.Host,
			Port: cfg.Tizen.Port,
			PSK:  cfg.Tizen.PSK,
		}, logger)
		if err := registry.Register(tizenClient); err != nil {
			return fmt.Errorf("failed to register tizen backend: %w", err)
		}
		logger.Info("Registered Tizen backend", "host", cfg.Tizen.Host)
	}

	// Initialize REST API
	routerConfig := api.RouterConfig{
		Registry: registry,
		APIKey:   cfg.Security.APIKey,
		Logger:   logger,
	}
	if stClient != nil {
		routerConfig.Directory = stClient
	}
	router := api.NewRouter(routerConfig)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server",
			"host", cfg.Server.Host,
			"port", cfg.Server.Port,
		)
		serverErrors <- server.ListenAndServe()
	}()

	// Start Telegram bot if configured
	botCtx, botCancel := context.WithCancel(context.Background())
	defer botCancel()

	if cfg.Bot.Enabled() {
		tvBot, err := bot.NewBot(&cfg.Bot, registry, logger)
		if err != nil {
			return fmt.Errorf("failed to create bot: %w", err)
		}
		go func() {
			if err := tvBot.Run(botCtx); err != nil && err != context.Canceled {
				logger.Error("Bot stopped with error", "error", err)
			}
		}()
	}

	// Wait for interrupt signal or server error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info("Starting graceful shutdown", "signal", sig.String())

		botCancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		logger.Info("Graceful shutdown complete")
	}

	return nil
}

// buildSmartThingsClient assembles the cloud client. Credentials persisted
// from a previous run take precedence over the config file, since they may
// hold a rotated refresh token.
func buildSmartThingsClient(cfg *config.Config, store storage.CredentialStore, logger *slog.Logger) (*smartthings.Client, error) {
	session, err := smartthings.NormalizeCredentials(cfg.SmartThings.Credentials)
	if err != nil {
		return nil, fmt.Errorf("invalid smartthings credentials: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stored, err := store.GetCredentials(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load stored credentials: %w", err)
	}
	if stored != nil {
		session = sessionFromStored(stored)
		logger.Info("Loaded SmartThings credentials from store",
			"updated_at", stored.UpdatedAt,
		)
	}

	clientConfig := smartthings.Config{
		BaseURL:    cfg.SmartThings.BaseURL,
		TokenURL:   cfg.SmartThings.TokenURL,
		MaxRetries: cfg.SmartThings.MaxRetries,
		OnTokenUpdate: func(s smartthings.Session) {
			saveCtx, saveCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer saveCancel()
			if err := store.SaveCredentials(saveCtx, storedFromSession(s)); err != nil {
				logger.Error("Failed to persist rotated credentials", "error", err)
			}
		},
	}
	if cfg.SmartThings.TimeoutSeconds > 0 {
		clientConfig.Timeout = time.Duration(cfg.SmartThings.TimeoutSeconds) * time.Second
	}

	return smartthings.NewClient(clientConfig, session, logger), nil
}

func sessionFromStored(creds *storage.Credentials) smartthings.Session {
	session := smartthings.Session{
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
	}
	if creds.ExpiresAt != nil {
		session.ExpiresAt = *creds.ExpiresAt
	}
	return session
}

func storedFromSession(session smartthings.Session) *storage.Credentials {
	creds := &storage.Credentials{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		ClientID:     session.ClientID,
		ClientSecret: session.ClientSecret,
	}
	if !session.ExpiresAt.IsZero() {
		expiresAt := session.ExpiresAt
		creds.ExpiresAt = &expiresAt
	}
	return creds
}
