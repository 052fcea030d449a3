package http

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/supplychain-dashboard/internal/application/analytics"
	"github.com/jhoicas/supplychain-dashboard/internal/application/dto"
	"github.com/jhoicas/supplychain-dashboard/internal/domain"
	"github.com/jhoicas/supplychain-dashboard/pkg/logger"
)

// RunHandler dispara ejecuciones y expone su estado, logs y reporte.
type RunHandler struct {
	uc  *appanalytics.DashboardUseCase
	log *logger.Logger
}

// NewRunHandler construye el handler.
func NewRunHandler(uc *appanalytics.DashboardUseCase, log *logger.Logger) *RunHandler {
	return &RunHandler{uc: uc, log: log.Component("run_handler")}
}

// Start godoc
// @Summary      Iniciar una ejecución
// @Description  Vacía el log, pasa a running y abre el stream. Con una ejecución en curso responde 409 sin cambiar nada.
// @Tags         run
// @Security     Bearer
// @Produce      json
// @Success      202  {object}  dto.StartRunResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.StartRunResponse
// @Router       /api/run [post]
func (h *RunHandler) Start(c *fiber.Ctx) error {
	out, err := h.uc.StartRun()
	if err != nil {
		if errors.Is(err, domain.ErrRunInProgress) {
			return c.Status(fiber.StatusConflict).JSON(out)
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	h.log.Info().Str("run_id", out.Run.RunID).Str("operator_id", GetOperatorID(c)).Msg("ejecución solicitada")
	return c.Status(fiber.StatusAccepted).JSON(out)
}

// GetState godoc
// @Summary      Estado de la ejecución actual
// @Tags         run
// @Produce      json
// @Success      200  {object}  dto.RunStateDTO
// @Router       /api/run [get]
func (h *RunHandler) GetState(c *fiber.Ctx) error {
	return c.JSON(h.uc.RunState())
}

// GetLogs godoc
// @Summary      Líneas de log de la ejecución actual
// @Description  Polling incremental: pasar en since y seq los campos next y sequence de la respuesta anterior.
// @Description  Si la ejecución cambió, la respuesta trae reset=true y las líneas desde el inicio.
// @Tags         run
// @Produce      json
// @Param        since  query  int  false  "Offset de la primera línea a devolver"
// @Param        seq    query  int  false  "Secuencia de la ejecución a la que corresponde since"
// @Success      200  {object}  dto.LogsDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/run/logs [get]
func (h *RunHandler) GetLogs(c *fiber.Ctx) error {
	since := c.QueryInt("since", 0)
	if since < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "since debe ser >= 0"})
	}
	var seq uint64
	if raw := c.Query("seq"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "seq debe ser un entero >= 0"})
		}
		seq = v
	}
	return c.JSON(h.uc.GetLogs(since, seq))
}

// GetReport godoc
// @Summary      Reporte PDF de la ejecución actual
// @Tags         run
// @Produce      application/pdf
// @Success      200
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/run/report.pdf [get]
func (h *RunHandler) GetReport(c *fiber.Ctx) error {
	pdf, err := h.uc.RunReportPDF(c.UserContext())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
		}
		h.log.Error().Err(err).Msg("generar reporte PDF")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "no se pudo generar el reporte"})
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="run-report.pdf"`)
	return c.Send(pdf)
}
