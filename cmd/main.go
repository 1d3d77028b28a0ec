package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/sbilibin2017/questlog/docs"
	"github.com/sbilibin2017/questlog/internal/handlers"
	"github.com/sbilibin2017/questlog/internal/health"
	"github.com/sbilibin2017/questlog/internal/jwt"
	"github.com/sbilibin2017/questlog/internal/logger"
	"github.com/sbilibin2017/questlog/internal/metrics"
	"github.com/sbilibin2017/questlog/internal/middlewares"
	"github.com/sbilibin2017/questlog/internal/repositories"
	"github.com/sbilibin2017/questlog/internal/services"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Build info variables, set via ldflags at build time.
var (
	buildVersion = "N/A" // Version of the service
	buildDate    = "N/A" // Build date
	buildCommit  = "N/A" // Git commit hash
)

// @title questlog API
// @version 1.0.0
// @description Gamified task tracker: quests, XP, levels and daily streaks
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	printBuildInfo()
	configPath := parseFlags()

	cfg, err := parseConfig(configPath)
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	if err := run(context.Background(), cfg); err != nil {
		log.Fatalf("application stopped with error: %v", err)
	}
}

// printBuildInfo prints the build version, commit hash, and build date.
func printBuildInfo() {
	fmt.Printf("Starting service version %s, commit %s, build %s\n", buildVersion, buildCommit, buildDate)
}

// parseFlags parses command-line flags and returns the config file path.
func parseFlags() string {
	c := flag.String("c", "config.env", "Path to configuration file")
	flag.Parse()
	return *c
}

type userStore interface {
	services.UserReader
	services.UserWriter
}

type taskStore interface {
	services.TaskReader
	services.TaskWriter
}

type stores struct {
	users userStore
	tasks taskStore
}

func memoryStores() stores {
	return stores{
		users: repositories.NewUserMemoryRepository(),
		tasks: repositories.NewTaskMemoryRepository(),
	}
}

func postgresStores(db *sqlx.DB) stores {
	txGetter := repositories.TxGetter(middlewares.GetTxFromContext)
	return stores{
		users: repositories.NewUserRepository(db, txGetter),
		tasks: repositories.NewTaskRepository(db, txGetter),
	}
}

// app bundles everything the router needs. db, cache and events are optional.
type app struct {
	stores  stores
	db      *sqlx.DB
	cache   services.UserCache
	events  services.KafkaWriter
	tokens  *jwt.JWT
	metrics *metrics.Metrics
	checker *health.Checker
	limiter *middlewares.RateLimiter

	swaggerURL string
}

func (a *app) buildServices() (*services.AuthService, *services.UserService, *services.TaskService, *services.ProgressService) {
	var recorder services.ProgressRecorder
	if a.metrics != nil {
		recorder = a.metrics
	}
	progress := services.NewProgressService(a.stores.users, a.stores.users, a.stores.tasks, a.stores.tasks, a.cache, a.events, recorder)
	auth := services.NewAuthService(a.stores.users, a.stores.users, a.tokens, a.cache)
	users := services.NewUserService(a.stores.users, a.stores.users, a.cache)
	tasks := services.NewTaskService(a.stores.users, a.stores.tasks, a.stores.tasks, progress)
	return auth, users, tasks, progress
}

// newRouter wires handlers, middlewares and ops endpoints. Mutating routes run
// in a request transaction when a database is configured.
func newRouter(a *app) http.Handler {
	authService, userService, taskService, progressService := a.buildServices()

	tx := func(next http.Handler) http.Handler { return next }
	if a.db != nil {
		tx = middlewares.TxMiddleware(a.db)
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middlewares.LoggingMiddleware)
	if a.metrics != nil {
		r.Use(middlewares.MetricsMiddleware(a.metrics))
		r.Method(http.MethodGet, "/metrics", a.metrics.Handler())
	}
	if a.checker != nil {
		r.Get("/healthz", a.checker.Handler())
	}
	if a.swaggerURL != "" {
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL(a.swaggerURL)))
	}

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Group(func(r chi.Router) {
			if a.limiter != nil {
				r.Use(a.limiter.Middleware)
			}
			r.With(tx).Post("/users", handlers.NewRegisterHandler(authService))
			r.With(tx).Post("/login", handlers.NewLoginHandler(authService))
		})

		// Protected routes with JWT middleware
		r.Group(func(r chi.Router) {
			r.Use(middlewares.AuthMiddleware(a.tokens))

			r.Get("/users/{id}", handlers.NewGetUserHandler(userService))
			r.With(tx).Patch("/users/{id}", handlers.NewUpdateUserHandler(userService))
			r.Get("/users/{id}/tasks", handlers.NewListTasksHandler(taskService))
			r.With(tx).Post("/users/{id}/tasks", handlers.NewCreateTaskHandler(taskService))
			r.With(tx).Post("/users/{id}/focus", handlers.NewFocusHandler(progressService))
			r.With(tx).Patch("/tasks/{id}", handlers.NewUpdateTaskHandler(taskService))
			r.With(tx).Delete("/tasks/{id}", handlers.NewDeleteTaskHandler(taskService))
		})
	})

	return r
}

// run initializes the logger, stores, optional Redis and Kafka clients, and the
// HTTP and gRPC servers, then blocks until a shutdown signal arrives.
func run(ctx context.Context, cfg config) error {
	if err := logger.Initialize(cfg.LogLevel); err != nil {
		fmt.Println("failed to initialize logger:", err)
		return err
	}
	defer logger.Sync()
	logger.Log.Infow("logger initialized", "level", cfg.LogLevel)

	a := &app{
		tokens: jwt.New(
			jwt.WithSecretKey(cfg.JWTSecretKey),
			jwt.WithExpiration(time.Duration(cfg.JWTExpSecond)*time.Second),
		),
		metrics:    metrics.New(),
		limiter:    middlewares.NewRateLimiter(cfg.LoginRateRPS, cfg.LoginRateBurst, 10*time.Minute),
		swaggerURL: fmt.Sprintf("http://%s:%s/swagger/doc.json", cfg.AppHost, cfg.AppPort),
	}
	docs.SwaggerInfo.Host = fmt.Sprintf("%s:%s", cfg.AppHost, cfg.AppPort)
	pingers := map[string]health.Pinger{}

	// Stores
	switch cfg.StoreDriver {
	case storePostgres:
		logger.Log.Infow("connecting to PostgreSQL", "host", cfg.PGHost, "port", cfg.PGPort, "db", cfg.PGDB)
		db, err := sqlx.ConnectContext(ctx, "pgx", cfg.postgresDSN())
		if err != nil {
			return fmt.Errorf("postgres connection: %w", err)
		}
		defer db.Close()
		db.SetMaxOpenConns(cfg.PGMaxOpenConns)
		db.SetMaxIdleConns(cfg.PGMaxIdleConns)

		if err := repositories.Migrate(db); err != nil {
			return fmt.Errorf("postgres migrations: %w", err)
		}
		a.db = db
		a.stores = postgresStores(db)
		pingers["postgres"] = db
	default:
		logger.Log.Infow("using in-memory stores")
		a.stores = memoryStores()
	}

	// Redis profile cache
	if cfg.RedisHost != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:         fmt.Sprintf("%s:%d", cfg.RedisHost, cfg.RedisPort),
			Password:     cfg.RedisPassword,
			DB:           cfg.RedisDB,
			PoolSize:     cfg.RedisPoolSize,
			MinIdleConns: cfg.RedisMinIdleConns,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis connection: %w", err)
		}
		defer rdb.Close()
		a.cache = repositories.NewUserCacheRepository(rdb, time.Duration(cfg.RedisCacheTTL)*time.Second)
		pingers["redis"] = redisPinger{rdb}
	}

	// Kafka progress events
	if len(cfg.KafkaBrokers) > 0 {
		w := &kafka.Writer{
			Addr:                   kafka.TCP(cfg.KafkaBrokers...),
			Topic:                  cfg.KafkaTopic,
			Balancer:               &kafka.Hash{},
			BatchTimeout:           10 * time.Millisecond,
			WriteTimeout:           2 * time.Second,
			AllowAutoTopicCreation: true,
		}
		defer w.Close()
		a.events = w
		logger.Log.Infow("publishing progress events", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	a.checker = health.NewChecker(pingers)

	if cfg.SeedDemo {
		auth, _, _, _ := a.buildServices()
		if err := seedDemo(ctx, a.stores, auth, time.Now()); err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.AppHost, cfg.AppPort),
		Handler:           newRouter(a),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Graceful shutdown
	errChan := make(chan error, 2)
	ctxShutdown, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	grpcLis, err := net.Listen("tcp", fmt.Sprintf("%s:%s", cfg.AppHost, cfg.GRPCPort))
	if err != nil {
		return fmt.Errorf("gRPC listen: %w", err)
	}
	go a.checker.Watch(ctxShutdown, 15*time.Second)
	go func() {
		if err := a.checker.Serve(ctxShutdown, grpcLis); err != nil {
			errChan <- fmt.Errorf("gRPC server failed: %w", err)
		}
	}()

	go func() {
		logger.Log.Infow("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	select {
	case <-ctxShutdown.Done():
		logger.Log.Info("Shutdown signal received, stopping servers...")
	case serveErr := <-errChan:
		return serveErr
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorw("HTTP server shutdown error", "error", err)
	}

	logger.Log.Info("servers stopped gracefully")
	return nil
}

type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) PingContext(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
