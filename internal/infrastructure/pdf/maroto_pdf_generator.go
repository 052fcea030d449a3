// Package pdf genera el reporte PDF de una ejecución del backend de supply-chain.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: título + run_id  │  estado + inicio/fin             │
//	│  ─────────────────────────────────────────────────────────  │
//	│  KPIs: artículos / stock bajo / órdenes / cumplimiento / SLA │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: artículos con stock bajo                             │
//	│  TABLA: órdenes de compra                                    │
//	│  TABLA: incumplimientos de SLA                               │
//	│  ─────────────────────────────────────────────────────────  │
//	│  LOG: líneas recibidas durante la ejecución                  │
//	│  FOOTER: avisos de reconciliación + fecha de generación      │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/supplychain-dashboard/internal/application/analytics"
	"github.com/jhoicas/supplychain-dashboard/internal/application/dashboard"
	"github.com/jhoicas/supplychain-dashboard/internal/domain/entity"
)

// maxLogRows líneas de log que entran en el reporte; el resto se resume.
const maxLogRows = 200

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 180, Green: 30, Blue: 30}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa analytics.RunReportGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	author string
}

// NewMarotoPDFGenerator construye el generador; author aparece en los metadatos del PDF.
func NewMarotoPDFGenerator(author string) *MarotoPDFGenerator {
	return &MarotoPDFGenerator{author: author}
}

var _ analytics.RunReportGenerator = (*MarotoPDFGenerator)(nil)

// GenerateRunReport genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateRunReport(ctx context.Context, report analytics.RunReport) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Reporte de ejecución supply-chain", true).
		WithAuthor(g.author, true).
		Build()

	m := maroto.New(cfg)
	idx := entity.IndexInventory(report.Snapshot.Inventory)

	m.AddRows(headerRow(report.Run))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(summaryRow(report.Summary))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(sectionTitle("ARTÍCULOS CON STOCK BAJO"))
	m.AddRows(tableHeaderRow(
		header{"Artículo", 5, align.Left},
		header{"Stock", 2, align.Right},
		header{"Umbral", 2, align.Right},
		header{"Proveedor", 3, align.Left},
	))
	m.AddRows(lowStockRows(report.Summary.LowStockItems)...)

	m.AddRows(sectionTitle("ÓRDENES DE COMPRA"))
	m.AddRows(tableHeaderRow(
		header{"Orden", 2, align.Left},
		header{"Artículo", 4, align.Left},
		header{"Cant.", 1, align.Right},
		header{"Proveedor", 3, align.Left},
		header{"Estado", 2, align.Center},
	))
	m.AddRows(orderRows(report.Snapshot.PurchaseOrders, idx)...)

	m.AddRows(sectionTitle("INCUMPLIMIENTOS DE SLA"))
	m.AddRows(tableHeaderRow(
		header{"Orden", 2, align.Left},
		header{"Proveedor", 3, align.Left},
		header{"Motivo", 5, align.Left},
		header{"Reportado", 2, align.Right},
	))
	m.AddRows(violationRows(report.Snapshot.SLAViolations)...)

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(sectionTitle("LOG DE EJECUCIÓN"))
	m.AddRows(logRows(report.Logs)...)

	m.AddRows(footerRows(report.Warnings, report.GeneratedAt)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: título + run_id (izq) y estado + horarios (der).
func headerRow(run entity.RunState) core.Row {
	statusColor := colorPrimary
	if run.Status == entity.RunStatusError {
		statusColor = colorAlert
	}
	return row.New(20).Add(
		col.New(7).Add(
			text.New("REPORTE DE EJECUCIÓN", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Run: "+nonEmpty(run.RunID, "—"), props.Text{
				Size: 8, Top: 9, Color: colorGray,
			}),
			text.New("Estrategia: "+run.Strategy+"   |   Secuencia: "+strconv.FormatUint(run.Sequence, 10), props.Text{
				Size: 8, Top: 14, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(statusLabel(run.Status), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Color: statusColor, Top: 1,
			}),
			text.New("Inicio: "+formatTime(run.StartedAt), props.Text{
				Size: 8, Align: align.Right, Top: 9, Color: colorGray,
			}),
			text.New("Fin: "+formatTime(run.FinishedAt), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// summaryRow: KPIs derivados del snapshot.
func summaryRow(d dashboard.Derived) core.Row {
	kpi := func(label, value string) core.Col {
		return col.New(2).Add(
			text.New(label, props.Text{Size: 7, Align: align.Center, Color: colorGray, Top: 1}),
			text.New(value, props.Text{Style: fontstyle.Bold, Size: 11, Align: align.Center, Top: 6}),
		)
	}
	return row.New(14).Add(
		kpi("Artículos", strconv.Itoa(d.TotalItems)),
		kpi("Stock bajo", strconv.Itoa(d.LowStockCount)),
		kpi("Órdenes", strconv.Itoa(d.TotalOrders)),
		kpi("Unidades en pedido", strconv.Itoa(d.UnitsOnOrder)),
		kpi("Cumplimiento", d.FulfillmentRate.StringFixed(2)+"%"),
		kpi("Incumplimientos SLA", strconv.Itoa(d.SLAViolationCount)),
	)
}

func sectionTitle(title string) core.Row {
	return row.New(8).Add(col.New(12).Add(
		text.New(title, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 3}),
	))
}

type header struct {
	label string
	size  int
	align align.Type
}

func tableHeaderRow(headers ...header) core.Row {
	cols := make([]core.Col, 0, len(headers))
	for _, h := range headers {
		cols = append(cols, col.New(h.size).Add(text.New(h.label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: h.align, Top: 1, Left: 1, Right: 1,
		})))
	}
	return row.New(6).Add(cols...)
}

func cell(s string, size int, a align.Type) core.Col {
	return col.New(size).Add(text.New(s, props.Text{Size: 8, Align: a, Top: 1, Left: 1, Right: 1}))
}

func emptyRow(msg string) []core.Row {
	return []core.Row{row.New(6).Add(col.New(12).Add(
		text.New(msg, props.Text{Size: 8, Color: colorGray, Top: 1, Left: 1}),
	))}
}

func lowStockRows(items []entity.InventoryItem) []core.Row {
	if len(items) == 0 {
		return emptyRow("Sin artículos bajo el umbral de reorden.")
	}
	rows := make([]core.Row, 0, len(items))
	for _, it := range items {
		rows = append(rows, row.New(6).Add(
			cell(nonEmpty(it.Name, it.ItemID), 5, align.Left),
			cell(strconv.Itoa(it.StockLevel), 2, align.Right),
			cell(strconv.Itoa(it.ReorderThreshold), 2, align.Right),
			cell(it.Supplier, 3, align.Left),
		))
	}
	return rows
}

func orderRows(orders []entity.PurchaseOrder, idx entity.InventoryIndex) []core.Row {
	if len(orders) == 0 {
		return emptyRow("Sin órdenes de compra.")
	}
	rows := make([]core.Row, 0, len(orders))
	for _, o := range orders {
		rows = append(rows, row.New(6).Add(
			cell(o.OrderID, 2, align.Left),
			cell(o.ItemLabel(idx), 4, align.Left),
			cell(strconv.Itoa(o.Quantity), 1, align.Right),
			cell(o.Supplier, 3, align.Left),
			cell(o.Status.Label(), 2, align.Center),
		))
	}
	return rows
}

func violationRows(violations []entity.SLAViolation) []core.Row {
	if len(violations) == 0 {
		return emptyRow("Sin incumplimientos reportados.")
	}
	rows := make([]core.Row, 0, len(violations))
	for _, v := range violations {
		rows = append(rows, row.New(6).Add(
			cell(v.OrderID, 2, align.Left),
			cell(v.Supplier, 3, align.Left),
			cell(v.Reason, 5, align.Left),
			cell(v.ReportedOn, 2, align.Right),
		))
	}
	return rows
}

// logRows: una fila por línea; si hay más de maxLogRows se conservan las últimas.
func logRows(entries []entity.LogEntry) []core.Row {
	if len(entries) == 0 {
		return emptyRow(dashboard.EmptyLogPlaceholder)
	}
	var rows []core.Row
	if skipped := len(entries) - maxLogRows; skipped > 0 {
		rows = append(rows, emptyRow(fmt.Sprintf("… %d líneas anteriores omitidas", skipped))...)
		entries = entries[skipped:]
	}
	for _, e := range entries {
		rows = append(rows, row.New(5).Add(
			col.New(2).Add(text.New(e.Timestamp.Format("15:04:05"), props.Text{
				Size: 7, Color: colorGray, Top: 0.5, Left: 1,
			})),
			col.New(10).Add(text.New(e.Message, props.Text{Size: 7, Top: 0.5})),
		))
	}
	return rows
}

func footerRows(warnings []dashboard.Warning, generatedAt time.Time) []core.Row {
	rows := []core.Row{row.New(4)}
	for _, w := range warnings {
		rows = append(rows, row.New(6).Add(col.New(12).Add(
			text.New(fmt.Sprintf("Aviso (%s): %s", w.Resource, w.Message), props.Text{
				Size: 7, Color: colorAlert, Top: 1,
			}),
		)))
	}
	rows = append(rows, row.New(6).Add(col.New(12).Add(
		text.New("Generado: "+formatTime(generatedAt), props.Text{
			Size: 6.5, Color: colorGray, Top: 2, Align: align.Right,
		}),
	)))
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func statusLabel(s entity.RunStatus) string {
	switch s {
	case entity.RunStatusRunning:
		return "EN CURSO"
	case entity.RunStatusSettled:
		return "FINALIZADA"
	case entity.RunStatusError:
		return "CON ERROR"
	default:
		return "SIN EJECUTAR"
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	return t.Format("02/01/2006 15:04:05")
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
