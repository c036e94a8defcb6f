package main

import (
	"context"
	"encoding/json"
	"errors"
	stdlog "log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/username/moneymirror/src/config"
	"github.com/username/moneymirror/src/database"
	"github.com/username/moneymirror/src/handlers"
	"github.com/username/moneymirror/src/logger"
	"github.com/username/moneymirror/src/processors"
	"github.com/username/moneymirror/src/security"
	"github.com/username/moneymirror/src/services"
	"github.com/username/moneymirror/src/storage"
	"golang.org/x/time/rate"
)

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded",
				"method", r.Method,
				"path", r.URL.Path,
				"remoteAddr", r.RemoteAddr)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func enableCORS(allowedOrigin string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && origin == allowedOrigin {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization, X-Requested-With, If-None-Match")
			w.Header().Set("Access-Control-Expose-Headers", "ETag")
			w.Header().Set("Vary", "Origin")
		}

		if r.Method == http.MethodOptions {
			logger.L.Debug("Handling OPTIONS preflight request", "path", r.URL.Path, "origin", origin)
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func limitBody(maxBytes int64, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		next.ServeHTTP(w, r)
	})
}

func main() {
	cfg := config.LoadConfig()
	logger.InitLogger(cfg.LogLevel)
	logger.L.Info("MoneyMirror backend starting...")

	logger.L.Info("Initializing database...", "path", cfg.DatabasePath)
	db, err := database.InitDB(cfg.DatabasePath)
	if err != nil {
		logger.L.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.L.Info("Database initialized successfully.")

	logger.L.Info("Initializing secure store...")
	meta := storage.NewMetaStore(db)
	cipher := security.NewEncryptionService(meta, cfg.KDFIterations)
	store := storage.NewSecureStore(db, cipher)
	store.SetIncognito(cfg.Incognito)

	logger.L.Info("Initializing result cache...", "ttl", cfg.InsightCacheTTL)
	resultCache := services.NewResultCache(cfg.InsightCacheTTL)

	logger.L.Info("Initializing services and handlers...")
	validate := validator.New()
	txService := services.NewTransactionService(store, validate, resultCache)
	journalService := services.NewJournalService(store, validate, resultCache)
	insightService := services.NewInsightService(store,
		processors.NewInsightProcessor(),
		processors.NewBiasDetector(time.Now),
		processors.NewMicroInsightProjector(time.Now, rand.Float64),
		resultCache)
	vault := services.NewVaultService(cipher, meta, store, resultCache)
	sessions := security.NewSessionService(cfg.SessionSecret, cfg.SessionTokenExpiry)

	api := &handlers.API{
		Session:      handlers.NewSessionHandler(vault, sessions),
		Transactions: handlers.NewTransactionHandler(txService),
		Uploads:      handlers.NewUploadHandler(txService, cfg.MaxRequestBodyBytes),
		Journal:      handlers.NewJournalHandler(journalService),
		Insights:     handlers.NewInsightHandler(insightService),
		Privacy:      handlers.NewPrivacyHandler(vault),
	}

	logger.L.Info("Configuring routes...")
	rootMux := http.NewServeMux()
	rootMux.Handle("/api/", api.Routes())
	rootMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" && r.Method == http.MethodGet {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]interface{}{
				"message":   "MoneyMirror backend is running",
				"unlocked":  vault.IsUnlocked(),
				"incognito": vault.Incognito(),
			})
			return
		}
		if !strings.HasPrefix(r.URL.Path, "/api/") {
			logger.L.Warn("Root level path not found", "method", r.Method, "path", r.URL.Path)
			http.NotFound(w, r)
		}
	})

	logger.L.Info("Applying global middleware...")
	// Multipart framing needs a little room above the file limit.
	finalHandler := enableCORS(cfg.AllowedOrigin, rateLimitMiddleware(limitBody(cfg.MaxRequestBodyBytes+64<<10, rootMux)))

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      finalHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.L.Info("Server starting", "address", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L.Error("Failed to start server", "error", err)
			stdlog.Fatalf("Failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.L.Info("Shutting down, wiping key material...")
	vault.Lock()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.L.Error("Graceful shutdown failed", "error", err)
	}
	logger.L.Info("Server stopped gracefully.")
}
