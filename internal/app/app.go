package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/viper"

	"github.com/aeriksson/hackathon-chatbot-starter/internal/api"
	"github.com/aeriksson/hackathon-chatbot-starter/internal/config"
	"github.com/aeriksson/hackathon-chatbot-starter/internal/llm"
	"github.com/aeriksson/hackathon-chatbot-starter/internal/postgres"
	"github.com/aeriksson/hackathon-chatbot-starter/internal/service"
)

// App bundles the wired application: the chat store and the HTTP server.
type App struct {
	Config *config.Config
	Store  *postgres.Client
	Server *http.Server
}

// NewApp wires every component together. No network traffic happens here;
// the store connects lazily and the server starts in Run.
func NewApp(cfg *config.Config) *App {
	store := postgres.NewClient(postgres.Config{
		Host:     cfg.PostgresHost,
		Port:     cfg.PostgresPort,
		User:     cfg.PostgresUser,
		Password: cfg.PostgresPassword,
		Database: cfg.PostgresDB,
	})

	ollamaProvider := llm.NewOllamaProvider(cfg.OllamaURL)
	chatService := service.NewChatService(store, ollamaProvider, cfg.MainModel, cfg.SystemPrompt)
	chatHandler := api.NewChatHandler(chatService)
	router := api.NewRouter(chatHandler, store)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.AppPort),
		Handler:           router,
		ReadHeaderTimeout: 20 * time.Second,
		WriteTimeout:      0, // The reply endpoint has no fixed latency budget.
		IdleTimeout:       120 * time.Second,
	}

	return &App{Config: cfg, Store: store, Server: server}
}

func Run() int {
	cfg, err := config.LoadConfig()
	if err != nil {
		// slog is not yet configured, so use the default logger for this
		// critical error.
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}

	setupLogger(cfg.LogLevel)
	logConfigSource()

	app := NewApp(cfg)

	// A failed connect is not fatal: every store operation repairs the
	// connection at its own call boundary once PostgreSQL comes up.
	if err := app.Store.Connect(context.Background()); err != nil {
		slog.Warn("Couldn't connect to Postgres - retrying on next request.")
	} else {
		slog.Info("Connected to Postgres")
	}
	defer func() {
		if err := app.Store.Close(); err != nil {
			slog.Error("Failed to close database connection", "error", err)
		}
	}()

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Starting server", "port", cfg.AppPort)
		if err := app.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		slog.Error("Server failed", "error", err)
		return 1
	case sig := <-quit:
		slog.Info("Shutdown signal received, initiating graceful shutdown", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
		return 1
	}

	slog.Info("Server shutdown complete")
	return 0
}

func logConfigSource() {
	configFileUsed := viper.ConfigFileUsed()
	if configFileUsed != "" {
		slog.Info("Successfully loaded configuration from file.", "file", configFileUsed)
	} else {
		slog.Info("Configuration file not found. Using environment variables and defaults.")
	}
}

func setupLogger(logLevel string) {
	var level slog.Level
	switch strings.ToUpper(logLevel) {
	case "DEBUG":
		level = slog.LevelDebug
	case "WARN":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}
