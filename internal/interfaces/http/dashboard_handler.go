package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/supplychain-dashboard/internal/application/analytics"
	"github.com/jhoicas/supplychain-dashboard/internal/application/dto"
	"github.com/jhoicas/supplychain-dashboard/internal/domain"
)

// DashboardHandler maneja los endpoints de lectura del dashboard.
type DashboardHandler struct {
	uc *appanalytics.DashboardUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// GetState godoc
// @Summary      Estado completo del dashboard
// @Description  Ejecución actual, logs, KPIs derivados, colecciones y avisos en una sola lectura.
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  dto.DashboardStateDTO
// @Router       /api/dashboard [get]
func (h *DashboardHandler) GetState(c *fiber.Ctx) error {
	return c.JSON(h.uc.GetState(c.UserContext()))
}

// ListInventory godoc
// @Summary      Inventario
// @Tags         dashboard
// @Produce      json
// @Param        limit      query  int   false  "Tamaño de página (máx 500)"
// @Param        offset     query  int   false  "Desplazamiento"
// @Param        low_stock  query  bool  false  "Sólo artículos bajo el umbral"
// @Success      200  {object}  dto.InventoryPageDTO
// @Router       /api/inventory [get]
func (h *DashboardHandler) ListInventory(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros de página inválidos"})
	}
	return c.JSON(h.uc.ListInventory(page, c.QueryBool("low_stock", false)))
}

// ListPurchaseOrders godoc
// @Summary      Órdenes de compra
// @Tags         dashboard
// @Produce      json
// @Param        limit   query  int     false  "Tamaño de página (máx 500)"
// @Param        offset  query  int     false  "Desplazamiento"
// @Param        status  query  string  false  "Filtrar por estado (pending, fulfilled, cancelled, ...)"
// @Success      200  {object}  dto.PurchaseOrderPageDTO
// @Router       /api/purchase-orders [get]
func (h *DashboardHandler) ListPurchaseOrders(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros de página inválidos"})
	}
	return c.JSON(h.uc.ListPurchaseOrders(page, c.Query("status")))
}

// ListSLAViolations godoc
// @Summary      Incumplimientos de SLA
// @Tags         dashboard
// @Produce      json
// @Param        limit     query  int     false  "Tamaño de página (máx 500)"
// @Param        offset    query  int     false  "Desplazamiento"
// @Param        supplier  query  string  false  "Filtrar por proveedor"
// @Success      200  {object}  dto.SLAViolationPageDTO
// @Router       /api/sla-violations [get]
func (h *DashboardHandler) ListSLAViolations(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros de página inválidos"})
	}
	return c.JSON(h.uc.ListSLAViolations(page, c.Query("supplier")))
}

// Refresh godoc
// @Summary      Releer todos los modelos de lectura
// @Description  Consulta los recursos en paralelo; cada fallo conserva el valor anterior y produce un aviso.
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  dto.RefreshResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/refresh [post]
func (h *DashboardHandler) Refresh(c *fiber.Ctx) error {
	out, err := h.uc.Refresh(c.UserContext())
	if err != nil {
		if errors.Is(err, domain.ErrRunInProgress) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "RUN_IN_PROGRESS", Message: "hay una ejecución en curso; los datos se releen al terminar"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}
