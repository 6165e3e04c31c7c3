package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/devsift/internal/config"
	dbRedis "github.com/kailas-cloud/devsift/internal/db/redis"
	logpkg "github.com/kailas-cloud/devsift/internal/logger"
	"github.com/kailas-cloud/devsift/internal/metrics"
	"github.com/kailas-cloud/devsift/internal/source"
	chiTransport "github.com/kailas-cloud/devsift/internal/transport/chi"
	healthuc "github.com/kailas-cloud/devsift/internal/usecase/health"
	"github.com/kailas-cloud/devsift/internal/usecase/query"
	"github.com/kailas-cloud/devsift/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, logpkg.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting devsift API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("source_url", cfg.Source.URL),
		zap.Strings("redis_addrs", cfg.Source.Redis.Addrs),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srcOpts := source.Options{
		Timeout:      time.Duration(cfg.Source.TimeoutSec) * time.Second,
		MaxBodyBytes: cfg.Source.MaxBodyBytes,
	}

	// Redis is optional: it only backs redis:// locators.
	var redisPinger healthuc.Pinger
	if len(cfg.Source.Redis.Addrs) > 0 {
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Source.Redis.Addrs,
			Password: cfg.Source.Redis.Password,
			DB:       cfg.Source.Redis.DB,
		})
		if err != nil {
			logger.Fatal("Failed to create redis store", zap.Error(err))
		}
		defer store.Close()

		readiness := time.Duration(cfg.Source.Redis.ReadinessTimeout) * time.Second
		if err := store.WaitForReady(ctx, readiness); err != nil {
			logger.Fatal("Redis not ready", zap.Error(err))
		}
		logger.Info("Connected to redis")
		srcOpts.KV = store
		redisPinger = store
	}
	src := source.New(srcOpts)

	// Register engine metrics explicitly (no init())
	metrics.RegisterEngineMetrics()

	engine := query.New(src, metrics.EngineObserver{}, logger.Named("engine"), query.Config{
		FuzzyThreshold: cfg.Search.FuzzyThreshold,
		CacheSize:      cfg.Engine.QueryCacheSize,
		QueueSize:      cfg.Engine.QueueSize,
		MaxQueryLength: cfg.Search.MaxQueryLength,
	})
	defer func() { _ = engine.Close() }()

	if cfg.Source.URL != "" {
		sum, err := engine.Load(ctx, cfg.Source.URL)
		if err != nil {
			// The server still starts; /v1/load can install data later.
			logger.Error("Initial load failed", zap.String("locator", cfg.Source.URL), zap.Error(err))
		} else {
			logger.Info("Initial load complete",
				zap.Int("rows", sum.Count),
				zap.Uint64("generation", sum.Generation),
			)
		}
		if cfg.Source.Watch {
			startWatcher(ctx, engine, cfg, logger)
		}
	}

	allow, err := source.NewAllowlist(cfg.Source.AllowedLocators...)
	if err != nil {
		logger.Fatal("Invalid source.allowed_locators", zap.Error(err))
	}
	if allow.Len() == 0 {
		logger.Warn("source.allowed_locators is empty; POST /v1/load rejects every locator")
	}

	healthSvc := healthuc.New(engine, redisPinger)
	server := chiTransport.NewServer(engine, healthSvc, allow, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// startWatcher reloads the configured file source whenever it changes.
func startWatcher(ctx context.Context, engine *query.Engine, cfg config.Config, logger *zap.Logger) {
	path, ok := source.FilePath(cfg.Source.URL)
	if !ok {
		logger.Warn("source.watch ignored: locator is not a file", zap.String("locator", cfg.Source.URL))
		return
	}

	debounce := time.Duration(cfg.Source.DebounceMs) * time.Millisecond
	w, err := source.NewWatcher(path, debounce, logger.Named("watch"))
	if err != nil {
		logger.Error("Failed to watch source file", zap.String("path", path), zap.Error(err))
		return
	}

	go w.Run(ctx, func(ctx context.Context) {
		sum, err := engine.Load(ctx, cfg.Source.URL)
		if err != nil {
			logger.Warn("Reload failed, keeping current generation", zap.Error(err))
			return
		}
		logger.Info("Source reloaded",
			zap.Int("rows", sum.Count),
			zap.Uint64("generation", sum.Generation),
		)
	})
	logger.Info("Watching source file", zap.String("path", path))
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					if rvr == http.ErrAbortHandler {
						panic(rvr)
					}
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
						Code:    chiTransport.ErrorCodeInternalError,
						Message: "internal error",
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

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			}
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				fields = append(fields, zap.String("route", rctx.RoutePattern()))
			}
			reqLogger.Info("http_request", fields...)
		})
	}
}
