package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alanya-store/order-notifier/internal/config"
	"github.com/alanya-store/order-notifier/internal/handlers"
	"github.com/alanya-store/order-notifier/internal/metrics"
	"github.com/alanya-store/order-notifier/internal/middleware"
	"github.com/alanya-store/order-notifier/internal/service"
	"github.com/alanya-store/order-notifier/internal/telegram"
	"github.com/alanya-store/order-notifier/pkg/logger"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

const version = "1.0.0"

func main() {
	// A .env file is optional; real environment variables take precedence
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Failed to read .env file: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	log.Info("starting order notifier",
		"port", cfg.Server.Port,
		"host", cfg.Server.Host,
		"log_level", cfg.LogLevel,
		"telegram_api", cfg.Telegram.APIBaseURL,
	)

	target := cfg.Telegram.Target()
	if !target.Configured() {
		log.Warn("telegram credentials not configured; order requests will be rejected",
			"token_set", cfg.Telegram.BotToken != "",
			"chat_id_set", cfg.Telegram.ChatID != "",
		)
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	client := telegram.NewClient(cfg.Telegram.APIBaseURL, cfg.Telegram.Timeout(), log)
	orderService := service.NewOrderService(target, client, m, log)

	r := newRouter(orderService, m, prometheus.DefaultGatherer, log)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Info("server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped gracefully")
}

// newRouter wires middleware and routes around the order service
func newRouter(orderService *service.OrderService, m *metrics.Metrics, gatherer prometheus.Gatherer, log *slog.Logger) http.Handler {
	healthHandler := handlers.NewHealthHandler(orderService, version, log)
	orderHandler := handlers.NewOrderHandler(orderService, m, log)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log))
	r.Use(middleware.Metrics(m))
	r.Use(middleware.Recoverer(log))
	r.Use(chimiddleware.Timeout(config.RequestTimeout))
	r.Use(cors.Handler(handlers.CORSOptions()))

	r.Get("/health", healthHandler.ServeHTTP)
	r.Handle("/metrics", metrics.Handler(gatherer))

	// Every method chi knows is routed to the order handler. Unknown
	// methods bypass route lookup, so the order handler answers them too.
	r.Handle("/", orderHandler)
	r.Handle("/api/order", orderHandler)
	r.MethodNotAllowed(orderHandler.ServeHTTP)

	return r
}
