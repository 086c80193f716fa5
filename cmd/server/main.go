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

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"chatdash.app/api/common/id"
	"chatdash.app/api/common/llm"
	"chatdash.app/api/common/logger"
	"chatdash.app/api/common/otel"
	"chatdash.app/api/core/config"
	"chatdash.app/api/core/db"
	"chatdash.app/api/internal/analytics"
	"chatdash.app/api/internal/dashboard"
	"chatdash.app/api/internal/filter"
	"chatdash.app/api/internal/http/middleware"
	httprouter "chatdash.app/api/internal/http/router"
	"chatdash.app/api/internal/service"
	"chatdash.app/api/internal/session"
	"chatdash.app/api/internal/source"
	"chatdash.app/api/internal/store"
	"chatdash.app/api/internal/worker"
)

const refreshBurst = 3

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeServer)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "chatdash starting", "env", cfg.Env, "upstream", cfg.Upstream.BaseURL, "timezone", cfg.Location.String())
	if err := id.Init(1); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	clock := clockwork.NewRealClock()

	stores := store.NewMemoryStores()
	if cfg.DB.Enabled() {
		database, err := db.New(ctx, cfg.DB)
		if err != nil {
			slog.ErrorContext(ctx, "failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer database.Close()
		applied, err := database.Migrate(ctx)
		if err != nil {
			slog.ErrorContext(ctx, "failed to apply migrations", "error", err)
			os.Exit(1)
		}
		stores = store.NewStores(database.Queries())
		slog.InfoContext(ctx, "database connected", "migrations_applied", applied)
	} else {
		slog.WarnContext(ctx, "DATABASE_URL not set, client registry is in-memory")
	}

	upstream := source.NewHTTPSource(cfg.Upstream)
	var chats source.ChatSource = upstream
	var cache service.CacheInvalidator
	sessions := session.NewMemoryStore(clock)
	if cfg.Redis.Enabled() {
		redisOpts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			slog.ErrorContext(ctx, "failed to parse redis url", "error", err)
			os.Exit(1)
		}
		redisClient := redis.NewClient(redisOpts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			slog.ErrorContext(ctx, "failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()

		sessions = session.NewRedisStore(redisClient, clock)
		if cfg.Redis.CacheTTL > 0 {
			cached := source.NewCached(upstream, redisClient, cfg.Redis.CacheTTL)
			chats, cache = cached, cached
		}
		slog.InfoContext(ctx, "redis connected", "cache_ttl", cfg.Redis.CacheTTL)
	} else {
		slog.WarnContext(ctx, "REDIS_URL not set, sessions are in-memory and the chat cache is off")
	}

	transformerOpts := []analytics.TransformerOption{
		analytics.WithLocation(cfg.Location),
		analytics.WithClock(clock),
	}
	if cfg.Classifier.Enabled() {
		llmClient, err := llm.New(llm.Config{
			APIKey:  cfg.Classifier.APIKey,
			BaseURL: cfg.Classifier.BaseURL,
			Model:   cfg.Classifier.Model,
		})
		if err != nil {
			slog.ErrorContext(ctx, "failed to create classifier llm client", "error", err)
			os.Exit(1)
		}
		transformerOpts = append(transformerOpts,
			analytics.WithClassifier(analytics.NewModelClassifier(llmClient, cfg.Classifier.Timeout)),
			analytics.WithConcurrency(cfg.Classifier.Concurrency),
		)
		slog.InfoContext(ctx, "model classifier enabled",
			"model", llmClient.Model(),
			"concurrency", cfg.Classifier.Concurrency)
	}
	transformer := analytics.NewTransformer(transformerOpts...)

	dashboards := dashboard.NewRegistry(func() *dashboard.Dashboard {
		return dashboard.New(chats, transformer,
			dashboard.WithClock(clock),
			dashboard.WithRateLimit(cfg.Dashboard.RefreshRatePerMinute, refreshBurst),
		)
	}, dashboard.WithRegistryClock(clock))

	services := service.NewServices(service.ServicesConfig{
		Stores:        stores,
		Sessions:      sessions,
		Authenticator: upstream,
		Users:         upstream,
		Dashboards:    dashboards,
		Cache:         cache,
		Filters:       filter.NewEngine(clock, cfg.Location),
		SessionTTL:    cfg.SessionTTL,
		PageSize:      cfg.Dashboard.TablePageSize,
		Clock:         clock,
	})

	refresher := worker.NewRefresher(services.Dashboard(), worker.RefresherConfig{
		Interval: cfg.Dashboard.SweepInterval(),
		MaxIdle:  cfg.Dashboard.IdleTTL,
		Reload:   cfg.Dashboard.RefreshInterval > 0,
		Clock:    clock,
	})
	go refresher.Run(ctx)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, services)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.Upstream.Timeout + 30*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	refresher.Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

func setupRouter(cfg config.Config, services *service.Services) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Origins(),
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.SessionIDHeader},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	httprouter.SetupRoutes(router, services, httprouter.RouterConfig{
		IsProduction: cfg.IsProduction(),
		Location:     cfg.Location,
	})

	return router
}

const banner = `
  ____ _           _   ____            _     
 / ___| |__   __ _| |_|  _ \  __ _ ___| |__  
| |   | '_ \ / _' | __| | | |/ _' / __| '_ \ 
| |___| | | | (_| | |_| |_| | (_| \__ \ | | |
 \____|_| |_|\__,_|\__|____/ \__,_|___/_| |_|
`
