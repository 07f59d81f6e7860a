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
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/esdata/internal/config"
	"github.com/kailas-cloud/esdata/internal/db"
	dbRedis "github.com/kailas-cloud/esdata/internal/db/redis"
	logpkg "github.com/kailas-cloud/esdata/internal/logger"
	"github.com/kailas-cloud/esdata/internal/metrics"
	documentrepo "github.com/kailas-cloud/esdata/internal/repository/document"
	"github.com/kailas-cloud/esdata/internal/repository/hitcache"
	indexrepo "github.com/kailas-cloud/esdata/internal/repository/index"
	searchrepo "github.com/kailas-cloud/esdata/internal/repository/search"
	"github.com/kailas-cloud/esdata/internal/transport/api"
	chiTransport "github.com/kailas-cloud/esdata/internal/transport/chi"
	documentuc "github.com/kailas-cloud/esdata/internal/usecase/document"
	entityuc "github.com/kailas-cloud/esdata/internal/usecase/entity"
	healthuc "github.com/kailas-cloud/esdata/internal/usecase/health"
	searchuc "github.com/kailas-cloud/esdata/internal/usecase/search"
	"github.com/kailas-cloud/esdata/internal/version"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting esdata API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("es_addresses", cfg.Elasticsearch.Addresses),
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
	)

	// Register store metrics explicitly (no init())
	metrics.RegisterStoreMetrics()

	mc, err := newMappingContext(resolveSchemaPaths(cfg), logger)
	if err != nil {
		return err
	}
	logger.Info("Entities registered", zap.Strings("types", mc.Types()))

	store, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	// Search goes through the cache when one is configured.
	var searcher db.Searcher = store
	var cache healthuc.CachePinger
	if cfg.Cache.Enabled {
		rs, err := openCache(cfg.Cache, logger)
		if err != nil {
			return err
		}
		defer rs.Close()
		searcher = hitcache.New(store, rs, cfg.Cache.TTL(), metrics.SearchCacheTotal, logger)
		cache = rs
	}

	entitySvc := entityuc.New(mc, indexrepo.New(store))
	docSvc := documentuc.New(documentrepo.New(store), entitySvc).
		WithMaxBatchSize(cfg.Search.MaxBatchSize)
	searchSvc := searchuc.New(searchrepo.New(searcher), entitySvc).
		WithLimits(cfg.Search.DefaultPageSize, cfg.Search.MaxPageSize)
	// Pass nil interface (not typed nil pointer) when the cache is off.
	healthSvc := healthuc.New(store, cache)

	if cfg.Schemas.EnsureOnStart {
		results, err := entitySvc.EnsureAll(context.Background())
		if err != nil {
			return fmt.Errorf("ensure indices: %w", err)
		}
		for _, r := range results {
			logger.Info("Index ensured",
				zap.String("entity", r.Type),
				zap.String("index", r.Index),
				zap.Bool("created", r.Created),
			)
		}
	}

	server := chiTransport.NewServer(entitySvc, docSvc, searchSvc, healthSvc, logger)
	r := newRouter(server, cfg.Auth.APIKeys, logger)

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

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("http server: %w", err)
	case <-quit:
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}

func openCache(cfg config.CacheConfig, logger *zap.Logger) (*dbRedis.Store, error) {
	rs, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Addrs,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("create cache: %w", err)
	}
	timeout := time.Duration(cfg.ReadinessTimeout) * time.Second
	if err := rs.WaitForReady(context.Background(), timeout); err != nil {
		rs.Close()
		return nil, fmt.Errorf("cache not ready: %w", err)
	}
	logger.Info("Connected to search cache", zap.Strings("addrs", cfg.Addrs), zap.Duration("ttl", cfg.TTL()))
	return rs, nil
}

func newRouter(server api.ServerInterface, apiKeys []string, logger *zap.Logger) chi.Router {
	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(apiKeys))
	r.Use(metrics.Middleware())
	api.HandlerWithOptions(server, api.ChiServerOptions{
		BaseRouter: r,
		ErrorHandlerFunc: func(w http.ResponseWriter, _ *http.Request, err error) {
			logger.Debug("request parameter rejected", zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(api.ErrorResponse{
				Code:    api.ErrorResponseCodeBadRequest,
				Message: "invalid request",
			})
		},
	})
	return r
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					if rvr == http.ErrAbortHandler { //nolint:errorlint // sentinel panic value
						panic(rvr)
					}
					logpkg.FromContextOr(r.Context(), logger).Error("panic recovered",
						zap.Any("panic", rvr),
						zap.String("path", r.URL.Path),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(api.ErrorResponse{
						Code:    api.ErrorResponseCodeInternalError,
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

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			level := zap.InfoLevel
			if ww.Status() >= http.StatusInternalServerError {
				level = zap.WarnLevel
			}
			reqLogger.Log(level, "http_request",
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
