package http

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	appanalytics "github.com/jhoicas/supplychain-dashboard/internal/application/analytics"
	"github.com/jhoicas/supplychain-dashboard/pkg/jwt"
	"github.com/jhoicas/supplychain-dashboard/pkg/logger"
)

// HTTPRecorder registra cada petición atendida (métricas Prometheus).
type HTTPRecorder interface {
	RecordHTTPRequest(method, route string, status int, duration time.Duration)
}

// RouterDeps dependencias para el router.
type RouterDeps struct {
	DashboardUC    *appanalytics.DashboardUseCase
	Log            *logger.Logger
	JWTSecret      string       // vacío = POST /api/run sin autenticación
	Recorder       HTTPRecorder // nil = sin métricas HTTP
	MetricsHandler http.Handler // nil = sin /metrics
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Recorder != nil {
		app.Use(RequestMetrics(deps.Recorder))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	if deps.MetricsHandler != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.MetricsHandler))
	}

	api := app.Group("/api")

	// Lectura (público)
	dashboardHandler := NewDashboardHandler(deps.DashboardUC)
	api.Get("/dashboard", dashboardHandler.GetState)
	api.Get("/inventory", dashboardHandler.ListInventory)
	api.Get("/purchase-orders", dashboardHandler.ListPurchaseOrders)
	api.Get("/sla-violations", dashboardHandler.ListSLAViolations)

	// Ejecución
	runHandler := NewRunHandler(deps.DashboardUC, deps.Log)
	runGroup := api.Group("/run")
	runGroup.Get("/", runHandler.GetState)
	runGroup.Get("/logs", runHandler.GetLogs)
	runGroup.Get("/report.pdf", runHandler.GetReport)

	// Acciones (Bearer Token con rol operator si JWT_SECRET está configurado)
	guard := []fiber.Handler{AuthMiddleware(deps.JWTSecret), RequireRole(deps.JWTSecret, jwt.RoleOperator)}
	runGroup.Post("/", append(guard, runHandler.Start)...)
	api.Post("/refresh", append(guard, dashboardHandler.Refresh)...)
}

// RequestMetrics middleware que mide cada petición por ruta registrada (no por path crudo).
func RequestMetrics(rec HTTPRecorder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		rec.RecordHTTPRequest(c.Method(), c.Route().Path, status, time.Since(start))
		return err
	}
}
