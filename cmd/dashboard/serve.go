package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"

	httpRouter "github.com/jhoicas/supplychain-dashboard/internal/interfaces/http"
)

const swaggerFile = "./docs/swagger.json"

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := wire(ctx, cfg)
	if err != nil {
		return err
	}
	log := deps.log
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("backend", cfg.Backend.BaseURL).
		Str("strategy", cfg.Backend.Strategy).
		Msg("iniciando aplicación")

	// Carga inicial de los modelos de lectura; los fallos quedan como avisos.
	if _, err := deps.dashboard.Refresh(ctx); err != nil {
		log.Warn().Err(err).Msg("carga inicial")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Supply-chain Dashboard API",
		}))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		DashboardUC:    deps.dashboard,
		Log:            log,
		JWTSecret:      cfg.JWT.Secret,
		Recorder:       deps.metrics,
		MetricsHandler: deps.metrics.Handler(),
	})
	if cfg.JWT.Secret == "" {
		log.Warn().Msg("JWT_SECRET vacío: POST /api/run y /api/refresh sin autenticación")
	}

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	if err := deps.session.Wait(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("ejecución en curso sin terminar al apagar")
	}

	log.Info().Msg("aplicación detenida")
	return nil
}
