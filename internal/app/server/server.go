package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"staffreview/internal/domain/audit"
	"staffreview/internal/domain/auth"
	"staffreview/internal/domain/notifications"
	"staffreview/internal/domain/org"
	"staffreview/internal/domain/reports"
	"staffreview/internal/domain/review"
	"staffreview/internal/domain/templates"
	"staffreview/internal/platform/config"
	"staffreview/internal/platform/db"
	"staffreview/internal/platform/email"
	"staffreview/internal/platform/metrics"
	"staffreview/internal/platform/summarizer"
	"staffreview/internal/requestctx"
	"staffreview/internal/transport/http/api"
	audithandler "staffreview/internal/transport/http/handlers/audit"
	authhandler "staffreview/internal/transport/http/handlers/auth"
	cycleshandler "staffreview/internal/transport/http/handlers/cycles"
	notificationshandler "staffreview/internal/transport/http/handlers/notifications"
	orghandler "staffreview/internal/transport/http/handlers/org"
	reportshandler "staffreview/internal/transport/http/handlers/reports"
	templateshandler "staffreview/internal/transport/http/handlers/templates"
	"staffreview/internal/transport/http/middleware"
)

type App struct {
	Config config.Config
	DB     *pgxpool.Pool
	Router http.Handler
}

// New connects, migrates, seeds and wires the router. The caller owns the
// returned App and must Close it.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}

	if cfg.RunMigrations {
		migrationsDir := cfg.MigrationsDir
		if migrationsDir == "" {
			migrationsDir = "migrations"
		}
		if err := db.Migrate(ctx, pool, migrationsDir); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	app := &App{Config: cfg, DB: pool}
	app.Router = buildRouter(cfg, pool)
	return app, nil
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}

// Run serves until the listener fails.
func (a *App) Run() error {
	slog.Info("staff review server listening", "addr", a.Config.Addr, "env", a.Config.Environment)
	server := &http.Server{
		Addr:              a.Config.Addr,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return server.ListenAndServe()
}

func buildRouter(cfg config.Config, pool *pgxpool.Pool) http.Handler {
	var collector *metrics.Collector
	if cfg.MetricsEnabled {
		collector = metrics.New()
	}

	var remote summarizer.Remote
	if cfg.SummarizerEndpoint != "" && cfg.SummarizerAPIKey != "" {
		remote = summarizer.NewClient(cfg.SummarizerEndpoint, cfg.SummarizerAPIKey, cfg.SummarizerPollAttempts, cfg.SummarizerPollInterval)
	}
	summaries := summarizer.NewService(remote)

	mailer := email.New(cfg)
	notifier := notifications.New(notifications.NewStore(pool), mailer, cfg.EmailFrom)
	auditService := audit.New(pool)

	authService := auth.NewService(auth.NewStore(pool), cfg.JWTSecret)
	orgService := org.NewService(org.NewStore(pool))
	templatesService := templates.NewService(pool)
	reviewService := review.NewService(review.NewStore(pool), summaries, cfg.AllowResubmission)
	reportsService := reports.NewService(pool)
	idempotency := middleware.NewIdempotencyStore(pool)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.Metrics(collector))
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

	router.Route("/api/v1", func(r chi.Router) {
		hrOnly := middleware.RequireRole(auth.RoleHRAdmin)

		authHandler := authhandler.NewHandler(authService)
		r.Post("/auth/signup", authHandler.HandleSignup)
		r.Post("/auth/login", authHandler.HandleLogin)
		r.Get("/auth/verify", authHandler.HandleVerify)

		orgHandler := orghandler.NewHandler(orgService, auditService, notifier)
		r.Get("/users", orgHandler.HandleListUsers)
		r.Get("/users/dept-heads", orgHandler.HandleListDeptHeads)
		r.With(hrOnly).Post("/users", orgHandler.HandleCreateUser)
		r.With(hrOnly).Put("/users/{userID}", orgHandler.HandleUpdateUser)
		r.With(hrOnly).Delete("/users/{userID}", orgHandler.HandleDeleteUser)
		r.Get("/departments", orgHandler.HandleListDepartments)
		r.With(hrOnly).Post("/departments", orgHandler.HandleCreateDepartment)
		r.With(hrOnly).Put("/departments/{departmentID}", orgHandler.HandleUpdateDepartment)
		r.With(hrOnly).Delete("/departments/{departmentID}", orgHandler.HandleDeleteDepartment)

		templatesHandler := templateshandler.NewHandler(templatesService, auditService)
		r.Get("/templates", templatesHandler.HandleList)
		r.Get("/templates/{templateID}", templatesHandler.HandleGet)
		r.With(hrOnly).Post("/templates", templatesHandler.HandleCreate)
		r.With(hrOnly).Post("/templates/{templateID}/questions", templatesHandler.HandleAddQuestion)
		r.With(hrOnly).Delete("/templates/questions/{questionID}", templatesHandler.HandleDeleteQuestion)
		r.With(hrOnly).Delete("/templates/{templateID}", templatesHandler.HandleDelete)

		cyclesHandler := cycleshandler.NewHandler(reviewService, auditService, notifier, idempotency)
		r.With(hrOnly).Post("/cycles", cyclesHandler.HandleCreateCycle)
		r.Get("/cycles", cyclesHandler.HandleListCycles)
		r.Get("/cycles/reviewer/{userID}", cyclesHandler.HandleReviewerQueue)
		r.Get("/cycles/reviewee/{userID}", cyclesHandler.HandleRevieweeQueue)
		r.Get("/cycles/review/{reviewID}", cyclesHandler.HandleReviewDetail)
		r.Get("/cycles/review/{reviewID}/pdf", cyclesHandler.HandleExportPDF)
		r.Put("/cycles/review/submit/{reviewID}", cyclesHandler.HandleSubmit)
		r.Put("/cycles/review/acknowledge/{reviewID}", cyclesHandler.HandleAcknowledge)
		r.With(hrOnly).Post("/cycles/test-ai-summary", cyclesHandler.HandleTestSummary)

		reportsHandler := reportshandler.NewHandler(reportsService)
		r.With(hrOnly).Get("/hr/dashboard-metrics", reportsHandler.HandleDashboardMetrics)
		r.With(hrOnly).Get("/hr/avg-ratings-by-question", reportsHandler.HandleAvgRatingsByQuestion)
		r.With(hrOnly).Get("/hr/reviews-by-department", reportsHandler.HandleReviewsByDepartment)
		r.Get("/dept-head/dashboard-metrics/{userID}", reportsHandler.HandleDeptHeadMetrics)
		r.Get("/dept-head/team-stats/{userID}", reportsHandler.HandleTeamStats)

		notificationsHandler := notificationshandler.NewHandler(notifier)
		r.With(middleware.RequireAuth).Get("/notifications", notificationsHandler.HandleList)
		r.With(middleware.RequireAuth).Post("/notifications/{notificationID}/read", notificationsHandler.HandleMarkRead)

		auditHandler := audithandler.NewHandler(auditService)
		r.With(hrOnly).Get("/audit", auditHandler.HandleList)

		r.With(hrOnly).Get("/admin/metrics", func(w http.ResponseWriter, req *http.Request) {
			if collector == nil {
				api.Fail(w, http.StatusNotFound, "not_found", "metrics collection is disabled", requestctx.GetRequestID(req.Context()))
				return
			}
			api.Success(w, collector.Snapshot(), requestctx.GetRequestID(req.Context()))
		})
	})

	router.Mount("/", spaHandler{staticPath: cfg.FrontendDir, indexPath: "index.html"})
	return router
}

type spaHandler struct {
	staticPath string
	indexPath  string
}

func (h spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	path := filepath.Join(h.staticPath, r.URL.Path)
	_, err := os.Stat(path)
	if err == nil {
		http.FileServer(http.Dir(h.staticPath)).ServeHTTP(w, r)
		return
	}

	if os.IsNotExist(err) {
		http.ServeFile(w, r, filepath.Join(h.staticPath, h.indexPath))
		return
	}

	http.NotFound(w, r)
}
