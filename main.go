package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"

	"github.com/lovestory/lovestory/backend/go-services/handlers"
	"github.com/lovestory/lovestory/backend/go-services/internal/config"
	"github.com/lovestory/lovestory/backend/go-services/internal/content/store"
	"github.com/lovestory/lovestory/backend/go-services/internal/database"
	"github.com/lovestory/lovestory/backend/go-services/internal/editor"
	"github.com/lovestory/lovestory/backend/go-services/internal/imaging"
	"github.com/lovestory/lovestory/backend/go-services/internal/projects"
	"github.com/lovestory/lovestory/backend/go-services/internal/sessions"
	"github.com/lovestory/lovestory/backend/go-services/internal/storage"
	"github.com/lovestory/lovestory/backend/go-services/internal/users"
	"github.com/lovestory/lovestory/backend/go-services/pkg/logger"
	"github.com/lovestory/lovestory/backend/go-services/pkg/metrics"
	"github.com/lovestory/lovestory/backend/go-services/pkg/middleware"
)

const connectAttempts = 5

func main() {
	// LOG_LEVEL: debug|info|warn|error|fatal; LOG_FORMAT=json for structured output
	logger.Init(os.Getenv("LOG_LEVEL"))
	if os.Getenv("LOG_FORMAT") == "json" {
		logger.UseJSON()
	}
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	if cfg.Server.Environment == "production" {
		logger.UseJSON()
	}
	logger.Infof("config loaded: backend=%s mongo=%v postgres=%v redis=%v minio=%v",
		cfg.Content.Backend, cfg.MongoDB.URI != "", cfg.Postgres.URL != "", cfg.Redis.Addr() != "", cfg.MinIO.Endpoint != "")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
	logger.Infof("shut down cleanly")
}

func run(ctx context.Context, cfg *config.Config) error {
	checks := map[string]handlers.Check{}

	rdb := connectRedis(ctx, cfg)
	if rdb != nil {
		defer rdb.Close()
		sessions.SetBlacklistClient(rdb)
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	var mongoClient *mongo.Client
	if cfg.MongoDB.URI != "" {
		client, err := database.Retry(ctx, "MongoDB", connectAttempts, func(ctx context.Context) (*mongo.Client, error) {
			return database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
		}, logger.Warnf)
		switch {
		case err == nil:
			mongoClient = client
			defer func() { _ = client.Disconnect(context.Background()) }()
			checks["mongo"] = func(ctx context.Context) error { return client.Ping(ctx, nil) }
		case cfg.Content.Backend == config.BackendMongo:
			return err
		default:
			logger.Warnf("continuing without MongoDB: %v", err)
		}
	}

	projectRepo, closeRepo, err := openProjects(ctx, cfg, mongoClient, checks)
	if err != nil {
		return err
	}
	defer closeRepo()
	projectSvc := projects.NewService(projectRepo)

	var userRepo users.UserRepository
	var sessionRepo sessions.Repository
	switch {
	case mongoClient != nil:
		db := mongoClient.Database(cfg.MongoDB.Database)
		userRepo = users.NewMongoUserRepository(db.Collection("users"))
		sessionRepo = sessions.NewMongoRepository(db.Collection("sessions"), cfg.JWT.RefreshTokenTTL)
	default:
		logger.Warnf("MongoDB not configured: owner accounts are kept in memory only")
		userRepo = users.NewMemoryUserRepository()
		sessionRepo = sessions.NewMemoryRepository()
	}
	// Redis sessions take precedence: they expire on their own
	if rdb != nil {
		sessionRepo = sessions.NewRedisRepository(rdb, "session:", cfg.JWT.RefreshTokenTTL)
		logger.Infof("using Redis for session storage")
	}

	var uploader imaging.Uploader
	if cfg.MinIO.Endpoint != "" {
		s, err := storage.NewMinIOStorage(ctx, &cfg.MinIO)
		if err != nil {
			logger.Warnf("MinIO unavailable, images will be stored inline: %v", err)
		} else {
			uploader = s
			checks["storage"] = s.Ping
		}
	}

	var draftCache store.Cache = store.NewMemoryCache()
	if rdb != nil {
		draftCache = store.NewRedisCache(rdb, "draft:", cfg.JWT.RefreshTokenTTL)
	}
	editors := editor.NewRegistry(editor.Options{
		Projects: projectSvc,
		Cache:    draftCache,
		Debounce: cfg.Content.Debounce,
		IdleTTL:  cfg.Content.WorkspaceTTL,
	})

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), middleware.CORS(cfg.Server.CORSOrigins))
	if cfg.RateLimit.Enabled {
		// global limiter runs before auth, so buckets are per client IP
		if cfg.RateLimit.UseRedis && rdb != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(rdb, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	handlers.Mount(r, handlers.Deps{
		Config:   cfg,
		Users:    users.NewService(userRepo),
		Projects: projectSvc,
		Sessions: sessions.NewService(sessionRepo),
		Editors:  editors,
		Images:   imaging.NewIngestor(uploader, cfg.Content.MaxImageBytes),
		Games:    handlers.NewGamesHandler(30*time.Minute, 10000),
		Checks:   checks,
	})

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("starting lovestory service on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		// Run flushes every open workspace's pending draft when it returns
		return editors.Run(gctx, time.Minute)
	})
	return g.Wait()
}

// connectRedis returns nil when Redis is not configured or unreachable;
// callers fall back to in-process state.
func connectRedis(ctx context.Context, cfg *config.Config) *redis.Client {
	if cfg.Redis.Addr() == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr(), Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warnf("failed to connect to Redis (%s): %v", cfg.Redis.Addr(), err)
		_ = client.Close()
		return nil
	}
	logger.Infof("connected to Redis: %s", cfg.Redis.Addr())
	return client
}

// openProjects returns the project repository selected by CONTENT_BACKEND.
func openProjects(ctx context.Context, cfg *config.Config, mongoClient *mongo.Client, checks map[string]handlers.Check) (projects.Repository, func(), error) {
	switch cfg.Content.Backend {
	case config.BackendMongo:
		col := mongoClient.Database(cfg.MongoDB.Database).Collection("projects")
		return projects.NewMongoRepo(col), func() {}, nil
	case config.BackendPostgres:
		pool, err := database.Retry(ctx, "Postgres", connectAttempts, func(ctx context.Context) (*pgxpool.Pool, error) {
			return database.ConnectPostgres(ctx, cfg.Postgres.URL, cfg.Postgres.MaxConns, 10*time.Second)
		}, logger.Warnf)
		if err != nil {
			return nil, nil, err
		}
		repo := projects.NewPostgresRepo(pool)
		if err := repo.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("migrate projects: %w", err)
		}
		checks["postgres"] = pool.Ping
		return repo, pool.Close, nil
	}
	logger.Warnf("CONTENT_BACKEND=memory: projects are lost on restart")
	return projects.NewMemoryRepo(), func() {}, nil
}
