package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/SevinYeung429/SC2002/internal/auth"
	"github.com/SevinYeung429/SC2002/internal/config"
	"github.com/SevinYeung429/SC2002/internal/db"
	"github.com/SevinYeung429/SC2002/internal/directory"
	"github.com/SevinYeung429/SC2002/internal/health"
	"github.com/SevinYeung429/SC2002/internal/internship"
	"github.com/SevinYeung429/SC2002/internal/logger"
	"github.com/SevinYeung429/SC2002/internal/messaging"
	"github.com/SevinYeung429/SC2002/internal/metrics"
	"github.com/SevinYeung429/SC2002/internal/middleware"
	"github.com/SevinYeung429/SC2002/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
)

type App struct {
	config   *config.Config
	router   chi.Router
	server   *http.Server
	logger   *slog.Logger
	users    *directory.Service
	data     *directory.DataHandler
	engine   *internship.Engine
	database *bun.DB
	store    *store.Store
	producer *messaging.Producer
}

func New() *App {
	slogLogger := logger.NewWithServiceContext(ServiceName, Version)
	slog.SetDefault(slogLogger)

	slogLogger.Info("initializing application")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	slogLogger.Info("config loaded", "env", cfg.Env)

	app := &App{
		config: cfg,
		router: chi.NewRouter(),
		logger: slogLogger,
	}

	// User directory from CSV
	app.users = directory.NewService()
	app.data = directory.NewDataHandler(
		cfg.Data.StudentsFile,
		cfg.Data.StaffFile,
		cfg.Data.RepresentativesFile,
		cfg.Data.OutputFile,
		slogLogger,
	)
	if err := app.data.Load(context.Background(), app.users, cfg.Data.DefaultPassword); err != nil {
		log.Fatalf("failed to load user directory: %v", err)
	}

	// NATS producer (optional)
	var events internship.EventPublisher
	if cfg.NATS.URL != "" {
		producer, err := messaging.NewProducer(cfg.NATS.URL, cfg.NATS.Subject, slogLogger)
		if err != nil {
			slogLogger.Warn("failed to initialize NATS producer", "error", err)
		} else {
			app.producer = producer
			events = producer
		}
	}

	app.engine = internship.NewEngine(app.users, events, slogLogger)

	// Snapshot store (optional)
	if cfg.Database.Host != "" {
		app.database = db.New(cfg.Database)
		app.store = store.New(app.database, slogLogger)
		ctx := context.Background()
		if err := app.store.Migrate(ctx); err != nil {
			log.Fatal("failed to run migrations:", err)
		}
		snap, err := app.store.Load(ctx)
		if err != nil {
			log.Fatal("failed to load snapshot:", err)
		}
		app.engine.Restore(ctx, snap)
	}

	m, err := metrics.New(otel.Meter(ServiceName))
	if err != nil {
		log.Fatal("failed to initialize metrics:", err)
	}

	app.router.Use(middleware.CORS(cfg.Server.CORSOrigins))

	healthHandler := health.NewHandler()
	healthHandler.RegisterRoutes(app.router)

	tokens := auth.NewTokenManager(cfg.Auth.Secret, time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute)
	authHandler := auth.NewHandler(app.users, tokens, slogLogger)
	authHandler.RegisterRoutes(app.router)

	internshipHandler := internship.NewHandler(app.engine, slogLogger, m)
	directoryHandler := directory.NewHandler(app.users, slogLogger)

	app.router.Route("/api", func(r chi.Router) {
		r.Use(auth.Middleware(tokens, slogLogger))
		internshipHandler.RegisterRoutes(r)
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(directory.RoleStaff))
			directoryHandler.RegisterRoutes(r)
		})
	})

	slogLogger.Info("application initialized successfully")

	return app
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
	return a.server.ListenAndServe()
}

// Shutdown stops the server and writes the final snapshot: users back
// to CSV, engine state to the database when one is configured.
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down server")

	if err := a.data.Save(ctx, a.users); err != nil {
		a.logger.Error("failed to save user snapshot", "error", err)
	}
	if a.store != nil {
		if err := a.store.Save(ctx, a.engine.Snapshot(ctx)); err != nil {
			a.logger.Error("failed to save engine snapshot", "error", err)
		}
	}
	if a.producer != nil {
		_ = a.producer.Close()
	}
	if a.database != nil {
		db.Close(a.database)
	}

	return a.server.Shutdown(ctx)
}
