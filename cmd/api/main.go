// Package main is the entry point for the API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/agrisense-ai/agrisense-backend/internal/config"
	"github.com/agrisense-ai/agrisense-backend/internal/events"
	"github.com/agrisense-ai/agrisense-backend/internal/handler"
	"github.com/agrisense-ai/agrisense-backend/internal/llm"
	"github.com/agrisense-ai/agrisense-backend/internal/middleware"
	"github.com/agrisense-ai/agrisense-backend/internal/service"
	"github.com/agrisense-ai/agrisense-backend/internal/store"
	"github.com/agrisense-ai/agrisense-backend/internal/weather"
	"github.com/agrisense-ai/agrisense-backend/pkg/logger"
	"github.com/agrisense-ai/agrisense-backend/pkg/tracing"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("starting API server")

	// Initialize tracing if enabled
	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "agrisense-backend", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Connect to Postgres and migrate
	db, err := store.Open(cfg.DatabaseURL, log)
	if err != nil {
		log.Error("failed to open database", zap.Error(err))
		os.Exit(1)
	}
	defer db.Close()

	// Connect to NATS if configured (optional analytics sink)
	var publisher *events.Publisher
	if cfg.NATSURL != "" {
		publisher, err = events.Connect(events.Config{URL: cfg.NATSURL, Token: cfg.NATSToken}, log)
		if err != nil {
			log.Warn("failed to connect to NATS, analytics events disabled", zap.Error(err))
			publisher = nil
		} else {
			defer publisher.Close()
		}
	}

	// Initialize LLM client, preferring Gemini
	var provider llm.Provider
	var apiKey, defaultModel string
	switch {
	case cfg.GeminiAPIKey != "":
		provider, apiKey, defaultModel = llm.ProviderGemini, cfg.GeminiAPIKey, cfg.GeminiModel
	case cfg.OpenAIAPIKey != "":
		provider, apiKey = llm.ProviderOpenAI, cfg.OpenAIAPIKey
	case cfg.AnthropicAPIKey != "":
		provider, apiKey = llm.ProviderAnthropic, cfg.AnthropicAPIKey
	default:
		log.Error("no LLM API key configured")
		os.Exit(1)
	}
	llmClient, err := llm.NewClient(ctx, provider, apiKey)
	if err != nil {
		log.Error("failed to create LLM client", zap.Error(err))
		os.Exit(1)
	}
	log.Info("LLM client ready", zap.String("provider", llmClient.Name()))

	// Initialize stores
	userStore := store.NewUserStore(db, log)
	sessionStore := store.NewSessionStore(db, log)
	weatherLogStore := store.NewWeatherLogStore(db, log)

	// Initialize services
	weatherClient := weather.NewClient(cfg.OpenWeatherAPIKey, cfg.OpenWeatherURL, cfg.WeatherTimeout)
	weatherSvc := service.NewWeatherService(weatherClient, weatherLogStore, publisher, log)
	advisor := service.NewAdvisor(llmClient, defaultModel, log)
	authSvc := service.NewAuthService(userStore, cfg.JWTSecret, cfg.JWTExpiration, log)
	userSvc := service.NewUserService(userStore, log)
	sessionSvc := service.NewSessionService(sessionStore, log)
	chatSvc := service.NewChatService(userStore, sessionStore, advisor, weatherSvc, publisher, log)

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(db)
	authHandler := handler.NewAuthHandler(authSvc, log)
	userHandler := handler.NewUserHandler(userSvc, log)
	sessionHandler := handler.NewSessionHandler(sessionSvc, log)
	chatHandler := handler.NewChatHandler(chatSvc, log)
	weatherHandler := handler.NewWeatherHandler(weatherSvc, userSvc, log)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Correlation-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		// Auth (no token required)
		r.Post("/auth/signup", authHandler.Signup)
		r.Post("/auth/signin", authHandler.Signin)

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWTSecret))

			r.Get("/auth/me", authHandler.Me)

			r.Route("/users", func(r chi.Router) {
				r.Get("/profile", userHandler.GetProfile)
				r.Put("/profile", userHandler.UpdateProfile)
				r.Delete("/account", userHandler.DeleteAccount)
			})

			r.Route("/sessions", func(r chi.Router) {
				r.Post("/", sessionHandler.Create)
				r.Get("/", sessionHandler.List)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", sessionHandler.Get)
					r.Put("/", sessionHandler.Update)
					r.Delete("/", sessionHandler.Delete)
				})
			})

			r.Post("/chat/message", chatHandler.SendMessage)
			r.Get("/weather/current", weatherHandler.Current)
		})
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}
