package pdf_test

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/supplychain-dashboard/internal/application/analytics"
	"github.com/jhoicas/supplychain-dashboard/internal/application/dashboard"
	"github.com/jhoicas/supplychain-dashboard/internal/domain/entity"
	"github.com/jhoicas/supplychain-dashboard/internal/infrastructure/pdf"
)

func sampleReport() analytics.RunReport {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	snap := dashboard.Snapshot{
		Inventory: []entity.InventoryItem{
			{ItemID: "I-1", Name: "Tornillo", StockLevel: 5, ReorderThreshold: 10, Supplier: "Acme"},
		},
		PurchaseOrders: []entity.PurchaseOrder{
			{OrderID: "PO-1001", ItemID: "I-1", Quantity: 50, Supplier: "Acme", Status: entity.OrderStatusPending},
		},
		SLAViolations: []entity.SLAViolation{
			{OrderID: "PO-0999", Supplier: "Acme", Reason: "Entrega tardía", ReportedOn: "2026-02-28"},
		},
	}
	return analytics.RunReport{
		Run: entity.RunState{
			RunID: "run-1", Sequence: 1, Status: entity.RunStatusSettled, Strategy: "pull",
			StartedAt: now, FinishedAt: now.Add(30 * time.Second), Reconciled: true,
		},
		Logs: []entity.LogEntry{
			{Message: "Checking inventory levels...", Timestamp: now},
			{Message: "Placing order PO-1001", Timestamp: now.Add(time.Second)},
		},
		Summary:     dashboard.Derive(snap),
		Snapshot:    snap,
		GeneratedAt: now.Add(time.Minute),
	}
}

func TestGenerateRunReport_GeneraPDF(t *testing.T) {
	gen := pdf.NewMarotoPDFGenerator("supplychain-dashboard")

	out, err := gen.GenerateRunReport(context.Background(), sampleReport())

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestGenerateRunReport_SinDatosYLogExtenso(t *testing.T) {
	report := analytics.RunReport{
		Run: entity.RunState{Status: entity.RunStatusError, LastError: "conexión cerrada"},
		Warnings: []dashboard.Warning{
			{Kind: dashboard.WarningFetchFailure, Resource: "inventory", Message: "HTTP 500"},
		},
	}
	for i := 0; i < 250; i++ {
		report.Logs = append(report.Logs, entity.LogEntry{Message: fmt.Sprintf("línea %d", i)})
	}

	out, err := pdf.NewMarotoPDFGenerator("").GenerateRunReport(context.Background(), report)

	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestGenerateRunReport_ContextoCancelado(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := pdf.NewMarotoPDFGenerator("").GenerateRunReport(ctx, sampleReport())

	assert.ErrorIs(t, err, context.Canceled)
}
