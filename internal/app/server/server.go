package server

import (
	"context"
	"encoding/json"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"appraisal/internal/domain/audit"
	"appraisal/internal/domain/auth"
	"appraisal/internal/domain/criteria"
	"appraisal/internal/domain/eligibility"
	"appraisal/internal/domain/evaluation"
	"appraisal/internal/domain/identity"
	"appraisal/internal/domain/notifications"
	"appraisal/internal/domain/period"
	"appraisal/internal/domain/scheduler"
	"appraisal/internal/platform/config"
	"appraisal/internal/platform/db"
	"appraisal/internal/platform/email"
	"appraisal/internal/platform/jobs"
	"appraisal/internal/platform/metrics"
	authhandler "appraisal/internal/transport/http/handlers/auth"
	criteriahandler "appraisal/internal/transport/http/handlers/criteria"
	eligibilityhandler "appraisal/internal/transport/http/handlers/eligibility"
	evaluationshandler "appraisal/internal/transport/http/handlers/evaluations"
	notificationshandler "appraisal/internal/transport/http/handlers/notifications"
	periodshandler "appraisal/internal/transport/http/handlers/periods"
	schedulerhandler "appraisal/internal/transport/http/handlers/scheduler"
	"appraisal/internal/transport/http/middleware"
)

type App struct {
	Config  config.Config
	DB      *pgxpool.Pool
	Router  http.Handler
	Jobs    *jobs.Service
	Metrics *metrics.Collector
}

// New wires the full application graph against an existing pool. It is the
// seam tests use to get a running router without the process lifecycle.
func New(cfg config.Config, pool *pgxpool.Pool) *App {
	collector := metrics.New()

	authStore := auth.NewStore(pool)
	directory := identity.NewStore(pool)
	criteriaStore := criteria.NewStore(pool)
	periodStore := period.NewStore(pool)
	eligibilityStore := eligibility.NewStore(pool)
	evaluationStore := evaluation.NewStore(pool)
	notificationStore := notifications.NewStore(pool)

	mailer := email.New(cfg)
	notifier := notifications.NewService(notificationStore, directory, mailer, cfg.EmailFrom)
	auditor := audit.NewService(pool)

	workflow := evaluation.NewWorkflow(evaluationStore, directory, criteriaStore, notifier, auditor)
	sched := scheduler.New(periodStore, eligibilityStore, evaluationStore, directory, notifier)
	jobRunner := jobs.New(sched, collector, cfg.CreationInterval)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(collector))
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
	router.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	if cfg.MetricsEnabled {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(collector.Snapshot())
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		authHandler := authhandler.NewHandler(authStore, cfg.JWTSecret)
		r.Post("/auth/login", authHandler.HandleLogin)
		r.Get("/auth/me", authHandler.HandleMe)

		evaluationshandler.NewHandler(workflow, evaluationStore, periodStore, auditor, authStore).RegisterRoutes(r)
		periodshandler.NewHandler(periodStore, authStore).RegisterRoutes(r)
		criteriahandler.NewHandler(criteriaStore, authStore).RegisterRoutes(r)
		eligibilityhandler.NewHandler(eligibilityStore, directory, authStore).RegisterRoutes(r)
		schedulerhandler.NewHandler(sched, periodStore, authStore, collector, cfg.CronSecret).RegisterRoutes(r)
		notificationshandler.NewHandler(notifier).RegisterRoutes(r)
	})

	return &App{Config: cfg, DB: pool, Router: router, Jobs: jobRunner, Metrics: collector}
}

// Run is the process entrypoint: config, pool, migrations, seed, background
// jobs, then the listener.
func Run() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config invalid: %v", err)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, "migrations"); err != nil {
			log.Fatalf("migrations failed: %v", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			log.Fatalf("seed failed: %v", err)
		}
	}

	app := New(cfg, pool)
	app.Jobs.Start(ctx)

	slog.Info("appraisal server listening", "addr", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, app.Router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
