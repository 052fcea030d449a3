package main

import (
	"context"
	"fmt"

	appanalytics "github.com/jhoicas/supplychain-dashboard/internal/application/analytics"
	"github.com/jhoicas/supplychain-dashboard/internal/application/dashboard"
	"github.com/jhoicas/supplychain-dashboard/internal/application/run"
	"github.com/jhoicas/supplychain-dashboard/internal/infrastructure/backend"
	"github.com/jhoicas/supplychain-dashboard/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/supplychain-dashboard/internal/infrastructure/pdf"
	"github.com/jhoicas/supplychain-dashboard/pkg/config"
	"github.com/jhoicas/supplychain-dashboard/pkg/logger"
)

// components grafo de dependencias compartido por serve y run.
type components struct {
	cfg       *config.Config
	log       *logger.Logger
	metrics   *metrics.Metrics
	store     *dashboard.Store
	session   *run.Session
	dashboard *appanalytics.DashboardUseCase
}

// loadConfig carga la configuración y aplica los overrides de flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("cargar configuración: %w", err)
	}
	if strategyFlag != "" {
		cfg.Backend.Strategy = strategyFlag
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("cargar configuración: %w", err)
		}
	}
	return cfg, nil
}

// wire construye cliente, store, sesión y casos de uso. ctx acota la vida de las ejecuciones.
func wire(ctx context.Context, cfg *config.Config) (*components, error) {
	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})

	m := metrics.New(metrics.DefaultConfig())
	client := backend.New(cfg.Backend, cfg.Fetch, log, backend.WithBreakerObserver(m))
	store := dashboard.NewStore(client, log, dashboard.WithFetchObserver(m))

	reconciler, err := run.NewReconciler(cfg.Backend.Strategy, store, client)
	if err != nil {
		return nil, err
	}
	session := run.NewSession(client, reconciler, dashboard.NewLogBuffer(), log,
		run.WithRecorder(m),
		run.WithBaseContext(ctx),
	)

	uc := appanalytics.NewDashboardUseCase(session, store, infrapdf.NewMarotoPDFGenerator(cfg.App.Name))

	return &components{
		cfg:       cfg,
		log:       log,
		metrics:   m,
		store:     store,
		session:   session,
		dashboard: uc,
	}, nil
}
