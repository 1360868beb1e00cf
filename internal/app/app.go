package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"membership-service/internal/account"
	"membership-service/internal/admin"
	"membership-service/internal/auth"
	"membership-service/internal/config"
	"membership-service/internal/contact"
	"membership-service/internal/db"
	"membership-service/internal/donation"
	"membership-service/internal/health"
	"membership-service/internal/member"
	"membership-service/internal/metrics"
	"membership-service/internal/middleware"
	"membership-service/internal/notify"
	"membership-service/internal/validation"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
)

type App struct {
	config   *config.Config
	router   chi.Router
	server   *http.Server
	logger   *slog.Logger
	db       *bun.DB
	sessions *auth.SessionManager
	notifier *notify.Dispatcher
}

// New builds every dependency from cfg. Resources opened before a failure are
// released before returning the error.
func New(cfg *config.Config, logger *slog.Logger) (_ *App, err error) {
	logger.Info("initializing application", "env", cfg.Env)

	a := &App{
		config: cfg,
		router: chi.NewRouter(),
		logger: logger,
	}
	defer func() {
		if err != nil {
			a.closeResources()
		}
	}()

	a.db, err = db.New(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx := context.Background()
	if err = db.RunMigrations(ctx, a.db,
		(*member.Enrollment)(nil),
		(*contact.Message)(nil),
		(*donation.Donation)(nil),
		(*account.User)(nil),
	); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	meter := otel.Meter(ServiceName)
	appMetrics, err := metrics.NewWithMeter(meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}
	if err = appMetrics.Database.RegisterDB(a.db.DB, meter); err != nil {
		return nil, fmt.Errorf("failed to register database metrics: %w", err)
	}
	if err = appMetrics.Health.RegisterServiceInfo(meter, ServiceName, Version, cfg.Env); err != nil {
		return nil, fmt.Errorf("failed to register service info: %w", err)
	}

	transport, err := notify.New(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create notifier: %w", err)
	}
	a.notifier = notify.NewDispatcher(transport, cfg.Notify.Recipient, appMetrics, logger)

	store, err := newSessionStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	readiness := []health.Check{{Name: "database", Pinger: a.db}}
	if pinger, ok := store.(health.Pinger); ok {
		readiness = append(readiness, health.Check{Name: "sessions", Pinger: pinger})
	}
	a.sessions = auth.NewSessionManager(store, auth.SessionOptions{
		Secret: cfg.Auth.SessionSecret,
		TTL:    time.Duration(cfg.Auth.SessionTTLHrs) * time.Hour,
		Secure: cfg.IsProduction(),
	}, logger)

	validator := validation.New()
	httpMetrics := middleware.NewHTTPMetrics()

	a.router.Use(chimiddleware.RequestID)
	a.router.Use(chimiddleware.RealIP)
	a.router.Use(middleware.RequestLogger(logger))
	a.router.Use(httpMetrics.Middleware)
	a.router.Use(chimiddleware.Recoverer)
	a.router.Use(middleware.CORS(cfg.Server.CORSOrigins))

	a.router.Handle("/metrics", httpMetrics.Handler())

	memberService := member.NewService(member.NewRepository(a.db, appMetrics), a.notifier, appMetrics, logger)
	contactService := contact.NewService(contact.NewRepository(a.db, appMetrics), a.notifier, appMetrics, logger)
	authService := auth.NewService(account.NewRepository(a.db, appMetrics), appMetrics, logger)

	a.router.Route("/api", func(r chi.Router) {
		health.NewHandler(appMetrics.Health, readiness...).RegisterRoutes(r)
		member.NewHandler(memberService, validator, logger).RegisterRoutes(r)
		contact.NewHandler(contactService, validator, logger).RegisterRoutes(r)
		auth.NewHandler(authService, a.sessions, validator, cfg.Auth.AdminKey, logger).RegisterRoutes(r)
		admin.NewHandler(memberService, contactService, cfg.Auth.AdminKey, logger).RegisterRoutes(r)
	})

	logger.Info("application initialized successfully")
	return a, nil
}

func newSessionStore(ctx context.Context, cfg *config.Config) (auth.SessionStore, error) {
	if cfg.Auth.SessionStore != "redis" {
		return auth.NewMemorySessionStore(), nil
	}

	store := auth.NewRedisSessionStore(auth.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB))
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := store.PingContext(pingCtx); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
	}
	return store, nil
}

// Router exposes the HTTP handler, for tests.
func (a *App) Router() http.Handler {
	return a.router
}

func (a *App) Run() error {
	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%s", a.config.Server.Port),
		Handler:      a.router,
		ReadTimeout:  time.Duration(a.config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(a.config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(a.config.Server.IdleTimeout) * time.Second,
	}

	a.logger.Info("server starting", "port", a.config.Server.Port)
	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, waits for in-flight ones, then closes the
// notifier, session store and database.
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down server")

	var err error
	if a.server != nil {
		err = a.server.Shutdown(ctx)
	}
	return errors.Join(err, a.closeResources())
}

func (a *App) closeResources() error {
	var errs []error
	if a.notifier != nil {
		errs = append(errs, a.notifier.Close())
	}
	if a.sessions != nil {
		errs = append(errs, a.sessions.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}
