package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"

	"hrms/internal/domain/audit"
	"hrms/internal/domain/auth"
	"hrms/internal/domain/employee"
	"hrms/internal/domain/leave"
	"hrms/internal/domain/notices"
	"hrms/internal/domain/payroll"
	"hrms/internal/domain/period"
	"hrms/internal/domain/policies"
	"hrms/internal/domain/reports"
	"hrms/internal/platform/config"
	"hrms/internal/platform/crypto"
	"hrms/internal/platform/db"
	"hrms/internal/platform/jobs"
	"hrms/internal/platform/logging"
	"hrms/internal/platform/metrics"
	"hrms/internal/platform/storage"
	audithandler "hrms/internal/transport/http/handlers/audit"
	authhandler "hrms/internal/transport/http/handlers/auth"
	employeeshandler "hrms/internal/transport/http/handlers/employees"
	fileshandler "hrms/internal/transport/http/handlers/files"
	leavehandler "hrms/internal/transport/http/handlers/leave"
	mehandler "hrms/internal/transport/http/handlers/me"
	noticeshandler "hrms/internal/transport/http/handlers/notices"
	payrollhandler "hrms/internal/transport/http/handlers/payroll"
	policieshandler "hrms/internal/transport/http/handlers/policies"
	reportshandler "hrms/internal/transport/http/handlers/reports"
	"hrms/internal/transport/http/middleware"
)

const shutdownTimeout = 15 * time.Second

// Registrar is implemented by every HTTP handler.
type Registrar interface {
	RegisterRoutes(r chi.Router)
}

// Routes is everything the router mounts besides health and metrics.
type Routes struct {
	API      []Registrar
	Files    Registrar
	Sessions middleware.SessionChecker
	Ready    func(ctx context.Context) error
	Metrics  *metrics.Collector
}

// Run loads configuration, wires the application and serves until SIGINT or
// SIGTERM.
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, logCloser := logging.New(cfg.LogLevel, cfg.LogFile)
	defer logCloser.Close()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, os.DirFS(cfg.MigrationsDir)); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}

	cipher, err := crypto.New(cfg.DataEncryptionKey)
	if err != nil {
		return fmt.Errorf("data encryption key: %w", err)
	}
	if !cipher.Configured() {
		slog.Warn("DATA_ENCRYPTION_KEY not set; personal identifiers are stored in plain text")
	}

	signer := storage.NewSigner(cfg.JWTSecret)
	files, err := storage.NewLocalStorage(cfg.StorageDir, cfg.PublicBaseURL, signer)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}

	enforcer, err := auth.NewEnforcer()
	if err != nil {
		return fmt.Errorf("rbac: %w", err)
	}

	var collector *metrics.Collector
	if cfg.MetricsEnabled {
		collector = metrics.New()
	}

	selections, closeSelections := selectionStore(ctx, cfg)
	defer closeSelections()
	periods := period.NewResolver(selections, period.Current)

	jobSvc := jobs.New(pool)
	jobSvc.Start(ctx)

	auditSvc := audit.New(pool)

	authSvc := auth.NewService(auth.NewStore(pool), cfg.JWTSecret, cfg.SessionTTL)

	employeeSvc := employee.NewService(employee.NewStore(pool, cipher))
	employeeSvc.Audit = auditSvc

	payrollSvc := payroll.NewService(payroll.NewStore(pool), payroll.NewSQLEngine(pool))
	payrollSvc.Jobs = jobSvc
	payrollSvc.Audit = auditSvc
	payrollSvc.Cipher = cipher
	payrollSvc.AtomicCompensation = cfg.CompensationTx
	if collector != nil {
		payrollSvc.Obs = collector
	}

	leaveSvc := leave.NewService(leave.NewStore(pool), files)
	leaveSvc.Audit = auditSvc
	if collector != nil {
		leaveSvc.Obs = collector
	}

	noticeSvc := notices.NewService(notices.NewStore(pool))
	noticeSvc.Audit = auditSvc

	policySvc := policies.NewService(policies.NewStore(pool), files)
	policySvc.Cleanup = jobSvc
	policySvc.Audit = auditSvc

	reportSvc := reports.NewService(reports.NewStore(pool))

	authHandler := authhandler.NewHandler(authSvc, employeeSvc, payrollSvc, enforcer)
	authHandler.LoginLimit = middleware.LoginRateLimit(cfg.RateLimitPerMinute, time.Minute)

	router := NewRouter(cfg, Routes{
		API: []Registrar{
			authHandler,
			mehandler.NewHandler(periods, employeeSvc),
			employeeshandler.NewHandler(employeeSvc, payrollSvc, enforcer),
			payrollhandler.NewHandler(payrollSvc, reportSvc, periods, enforcer),
			leavehandler.NewHandler(leaveSvc, enforcer),
			noticeshandler.NewHandler(noticeSvc, enforcer),
			policieshandler.NewHandler(policySvc, enforcer),
			reportshandler.NewHandler(reportSvc, periods, enforcer),
			audithandler.NewHandler(auditSvc, enforcer),
		},
		Files:    fileshandler.NewHandler(files, files),
		Sessions: authSvc,
		Ready:    pool.Ping,
		Metrics:  collector,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("hrms server listening", "addr", cfg.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// NewRouter assembles the middleware chain and mounts routes.
func NewRouter(cfg config.Config, routes Routes) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(slog.Default()))
	if routes.Metrics != nil {
		router.Use(routes.Metrics.Middleware)
	}
	router.Use(middleware.SecureHeaders(cfg.IsProduction()))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id", "X-Total-Count", "Retry-After"},
		MaxAge:           300,
	}))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret, routes.Sessions))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if routes.Ready != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := routes.Ready(ctx); err != nil {
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	if routes.Metrics != nil {
		router.Handle("/metrics", routes.Metrics.Handler())
	}

	if routes.Files != nil {
		routes.Files.RegisterRoutes(router)
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
		for _, h := range routes.API {
			h.RegisterRoutes(r)
		}
	})
	return router
}

// selectionStore keeps month selections in Redis when REDIS_ADDR is set and
// reachable, and in process memory otherwise.
func selectionStore(ctx context.Context, cfg config.Config) (period.SelectionStore, func()) {
	if cfg.RedisAddr == "" {
		return period.NewMemoryStore(), func() {}
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		slog.Warn("redis unavailable; month selection kept in memory", "addr", cfg.RedisAddr, "err", err)
		_ = client.Close()
		return period.NewMemoryStore(), func() {}
	}
	return period.NewRedisStore(client), func() {
		if err := client.Close(); err != nil {
			slog.Warn("redis close failed", "err", err)
		}
	}
}
