package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/docbricks/docbricks/internal/config"
	dbRedis "github.com/docbricks/docbricks/internal/db/redis"
	logpkg "github.com/docbricks/docbricks/internal/logger"
	"github.com/docbricks/docbricks/internal/metrics"
	artifactrepo "github.com/docbricks/docbricks/internal/repository/artifact"
	indexrepo "github.com/docbricks/docbricks/internal/repository/index"
	registryrepo "github.com/docbricks/docbricks/internal/repository/registry"
	"github.com/docbricks/docbricks/internal/storage"
	httpTransport "github.com/docbricks/docbricks/internal/transport/http"
	openaiTransport "github.com/docbricks/docbricks/internal/transport/openai"
	answeruc "github.com/docbricks/docbricks/internal/usecase/answer"
	documentuc "github.com/docbricks/docbricks/internal/usecase/document"
	healthuc "github.com/docbricks/docbricks/internal/usecase/health"
	ingestuc "github.com/docbricks/docbricks/internal/usecase/ingest"
	retrievaluc "github.com/docbricks/docbricks/internal/usecase/retrieval"
	summaryuc "github.com/docbricks/docbricks/internal/usecase/summary"
	"github.com/docbricks/docbricks/internal/version"
)

func main() {
	// Local runs keep secrets in .env; absence is fine elsewhere.
	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting docbricks API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register pipeline metrics explicitly (no init())
	metrics.RegisterPipelineMetrics()

	embedder := openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Logger:     logger,
	})
	chat := openaiTransport.NewChat(&openaiTransport.ChatConfig{
		APIKey:  cfg.Embedding.APIKey,
		BaseURL: cfg.Embedding.BaseURL,
		Model:   cfg.Chat.Model,
		Logger:  logger,
	})
	logger.Info("Providers created",
		zap.String("embedding_model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
		zap.String("chat_model", cfg.Chat.Model),
	)

	files := storage.New(cfg.Storage.BaseDir)
	if err := files.EnsureDirs(); err != nil {
		logger.Fatal("Failed to create pipeline directories", zap.Error(err))
	}

	// Repositories
	idxRepo := indexrepo.New(store, cfg.Retrieval.Namespace, cfg.Embedding.Dimensions)
	artifacts := artifactrepo.New(cfg.Sparse.ArtifactDir)
	registry := registryrepo.New(store)

	// Use case services
	cache := retrievaluc.NewEncoderCache(artifacts, logger)
	retrievalSvc := retrievaluc.New(idxRepo, embedder, cache, cfg.Retrieval.FusionAlpha(), cfg.Retrieval.TopK)
	ingestSvc := ingestuc.New(idxRepo, embedder, artifacts, files, registry, cache)
	documentSvc := documentuc.New(files, ingestSvc)
	answerSvc := answeruc.New(retrievalSvc, chat)
	summarySvc := summaryuc.New(files, chat)
	healthSvc := healthuc.New(store, embedder, artifacts)

	server := httpTransport.NewServer(
		documentSvc, ingestSvc, retrievalSvc, answerSvc, summarySvc, healthSvc, logger,
	)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
