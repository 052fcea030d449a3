// Package analytics contiene los casos de uso de lectura del dashboard de supply-chain:
// estado agregado para la vista, listados paginados, control de la ejecución y reporte PDF.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/supplychain-dashboard/internal/application/dashboard"
	"github.com/jhoicas/supplychain-dashboard/internal/application/dto"
	"github.com/jhoicas/supplychain-dashboard/internal/domain"
	"github.com/jhoicas/supplychain-dashboard/internal/domain/entity"
)

// RunController puerto de la sesión de ejecución (run.Session).
type RunController interface {
	Start() (entity.RunState, error)
	State() entity.RunState
	Logs() *dashboard.LogBuffer
}

// ReadModels puerto del store de modelos de lectura (dashboard.Store).
type ReadModels interface {
	Snapshot() dashboard.Snapshot
	Warnings() []dashboard.Warning
	RefreshAll(ctx context.Context, gen uint64) dashboard.RefreshReport
}

// RunReport datos que se vuelcan en el reporte PDF de una ejecución.
type RunReport struct {
	Run         entity.RunState
	Logs        []entity.LogEntry
	Summary     dashboard.Derived
	Snapshot    dashboard.Snapshot
	Warnings    []dashboard.Warning
	GeneratedAt time.Time
}

// RunReportGenerator genera el PDF del reporte (infraestructura: Maroto).
type RunReportGenerator interface {
	GenerateRunReport(ctx context.Context, report RunReport) ([]byte, error)
}

// DashboardUseCase arma el estado de la vista a partir del store y la sesión.
//
// Todo se lee de fotografías (Snapshot, State): la vista nunca observa un estado a medio escribir.
type DashboardUseCase struct {
	session RunController
	store   ReadModels
	reports RunReportGenerator
	now     func() time.Time
}

// NewDashboardUseCase construye el caso de uso. reports puede ser nil si no se expone el PDF.
func NewDashboardUseCase(session RunController, store ReadModels, reports RunReportGenerator) *DashboardUseCase {
	return &DashboardUseCase{
		session: session,
		store:   store,
		reports: reports,
		now:     time.Now,
	}
}

// GetState construye el DashboardStateDTO completo.
func (uc *DashboardUseCase) GetState(_ context.Context) *dto.DashboardStateDTO {
	state := uc.session.State()
	snap := uc.store.Snapshot()
	idx := entity.IndexInventory(snap.Inventory)

	return &dto.DashboardStateDTO{
		Run:            toRunStateDTO(state),
		CanStart:       state.Status != entity.RunStatusRunning,
		Logs:           uc.GetLogs(0, 0),
		Summary:        toSummaryDTO(dashboard.Derive(snap)),
		Inventory:      toInventoryDTOs(snap.Inventory),
		PurchaseOrders: toPurchaseOrderDTOs(snap.PurchaseOrders, idx),
		SLAViolations:  toSLAViolationDTOs(snap.SLAViolations),
		Metrics:        snap.Metrics,
		RestockPlan:    snap.RestockPlan,
		Warnings:       toWarningDTOs(uc.store.Warnings()),
		UpdatedAt:      snap.UpdatedAt,
		Generation:     snap.Generation,
	}
}

// GetLogs líneas recibidas desde el offset since para la ejecución seq.
//
// seq es la secuencia de la respuesta anterior (0 si el cliente no la conoce). Cuando no
// coincide con la ejecución vigente, o since supera el total porque el buffer se vació en
// un Start, se sirve desde el offset 0 con Reset=true: el cliente debe descartar lo que
// tenía. Con el buffer vacío informa el placeholder.
func (uc *DashboardUseCase) GetLogs(since int, seq uint64) dto.LogsDTO {
	if since < 0 {
		since = 0
	}
	buf := uc.session.Logs()

	// Start vacía el buffer bajo el lock de la sesión: si la secuencia cambia mientras se
	// lee, las líneas pueden ser de otra ejecución y se vuelve a leer.
	var (
		state   entity.RunState
		entries []entity.LogEntry
		from    int
		total   int
		reset   bool
	)
	for {
		state = uc.session.State()
		from, reset = since, seq != 0 && seq != state.Sequence
		if reset {
			from = 0
		}
		entries = buf.Since(from)
		total = buf.Len()
		if from > total {
			from, reset = 0, true
			entries = buf.Since(0)
			total = buf.Len()
		}
		if uc.session.State().Sequence == state.Sequence {
			break
		}
	}

	out := dto.LogsDTO{
		RunID:    state.RunID,
		Sequence: state.Sequence,
		Entries:  make([]dto.LogEntryDTO, 0, len(entries)),
		Total:    total,
		Next:     from + len(entries),
		Reset:    reset,
	}
	for _, e := range entries {
		out.Entries = append(out.Entries, dto.LogEntryDTO{Message: e.Message, Timestamp: e.Timestamp})
	}
	if total == 0 {
		out.Placeholder = dashboard.EmptyLogPlaceholder
	}
	return out
}

// RunState estado de la ejecución actual.
func (uc *DashboardUseCase) RunState() dto.RunStateDTO {
	return toRunStateDTO(uc.session.State())
}

// StartRun dispara una ejecución. Si ya hay una en curso devuelve domain.ErrRunInProgress
// junto con el estado vigente, sin iniciar nada.
func (uc *DashboardUseCase) StartRun() (dto.StartRunResponse, error) {
	state, err := uc.session.Start()
	resp := dto.StartRunResponse{Run: toRunStateDTO(state), Started: err == nil}
	return resp, err
}

// Refresh relee todos los recursos fuera de una ejecución (carga inicial o refresco manual).
// Con una ejecución en curso se rechaza: los datos sólo se releen tras el evento terminal.
//
// Si una ejecución arranca mientras el refresco está en vuelo, el store ya reservó su
// generación y descarta lo que llegue después; la respuesta sale con Stale=true.
func (uc *DashboardUseCase) Refresh(ctx context.Context) (dto.RefreshResponse, error) {
	state := uc.session.State()
	if state.Status == entity.RunStatusRunning {
		return dto.RefreshResponse{}, fmt.Errorf("%w: refresco manual (ejecución %d)", domain.ErrRunInProgress, state.Sequence)
	}
	report := uc.store.RefreshAll(ctx, state.Sequence)
	superseded := uc.session.State().Sequence != state.Sequence
	return dto.RefreshResponse{
		Generation: report.Generation,
		Updated:    report.Updated,
		Warnings:   toWarningDTOs(report.Warnings),
		Stale:      report.Stale || superseded,
	}, nil
}

// ListInventory página del inventario; lowStockOnly filtra los artículos bajo el umbral.
func (uc *DashboardUseCase) ListInventory(page dto.PageRequest, lowStockOnly bool) dto.InventoryPageDTO {
	page.DefaultPage()
	items := uc.store.Snapshot().Inventory
	if lowStockOnly {
		filtered := make([]entity.InventoryItem, 0, len(items))
		for _, it := range items {
			if it.IsLowStock() {
				filtered = append(filtered, it)
			}
		}
		items = filtered
	}
	from, to := page.Bounds(len(items))
	return dto.InventoryPageDTO{
		Items: toInventoryDTOs(items[from:to]),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: len(items)},
	}
}

// ListPurchaseOrders página de órdenes; status vacío no filtra.
func (uc *DashboardUseCase) ListPurchaseOrders(page dto.PageRequest, status string) dto.PurchaseOrderPageDTO {
	page.DefaultPage()
	snap := uc.store.Snapshot()
	orders := snap.PurchaseOrders
	if status != "" {
		filtered := make([]entity.PurchaseOrder, 0, len(orders))
		for _, o := range orders {
			if o.Status.Label() == status {
				filtered = append(filtered, o)
			}
		}
		orders = filtered
	}
	from, to := page.Bounds(len(orders))
	return dto.PurchaseOrderPageDTO{
		Items: toPurchaseOrderDTOs(orders[from:to], entity.IndexInventory(snap.Inventory)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: len(orders)},
	}
}

// ListSLAViolations página de incumplimientos; supplier vacío no filtra.
func (uc *DashboardUseCase) ListSLAViolations(page dto.PageRequest, supplier string) dto.SLAViolationPageDTO {
	page.DefaultPage()
	violations := uc.store.Snapshot().SLAViolations
	if supplier != "" {
		filtered := make([]entity.SLAViolation, 0, len(violations))
		for _, v := range violations {
			if v.Supplier == supplier {
				filtered = append(filtered, v)
			}
		}
		violations = filtered
	}
	from, to := page.Bounds(len(violations))
	return dto.SLAViolationPageDTO{
		Items: toSLAViolationDTOs(violations[from:to]),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: len(violations)},
	}
}

// RunReportPDF genera el reporte de la ejecución actual con el snapshot vigente.
func (uc *DashboardUseCase) RunReportPDF(ctx context.Context) ([]byte, error) {
	if uc.reports == nil {
		return nil, fmt.Errorf("%w: reporte PDF deshabilitado", domain.ErrNotFound)
	}
	snap := uc.store.Snapshot()
	report := RunReport{
		Run:         uc.session.State(),
		Logs:        uc.session.Logs().Entries(),
		Summary:     dashboard.Derive(snap),
		Snapshot:    snap,
		Warnings:    uc.store.Warnings(),
		GeneratedAt: uc.now(),
	}
	pdf, err := uc.reports.GenerateRunReport(ctx, report)
	if err != nil {
		return nil, fmt.Errorf("reporte: %w", err)
	}
	return pdf, nil
}
