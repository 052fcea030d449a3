package entity_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/supplychain-dashboard/internal/domain/entity"
)

func TestInventoryItem_IsLowStock(t *testing.T) {
	assert.True(t, entity.InventoryItem{StockLevel: 5, ReorderThreshold: 10}.IsLowStock())
	assert.False(t, entity.InventoryItem{StockLevel: 20, ReorderThreshold: 5}.IsLowStock())
	// En el umbral exacto no hay stock bajo: el predicado es estricto.
	assert.False(t, entity.InventoryItem{StockLevel: 10, ReorderThreshold: 10}.IsLowStock())
}

func TestOrderStatus_EnumAbierto(t *testing.T) {
	assert.True(t, entity.OrderStatusPending.Known())
	assert.False(t, entity.OrderStatus("on_hold").Known())
	assert.Equal(t, "on_hold", entity.OrderStatus("on_hold").Label(), "un estado desconocido se muestra tal cual")
	assert.Equal(t, "unknown", entity.OrderStatus("").Label())
}

func TestPurchaseOrder_ItemLabel_ReferenciaColgante(t *testing.T) {
	idx := entity.IndexInventory([]entity.InventoryItem{{ItemID: "I-1", Name: "Tornillos"}})

	assert.Equal(t, "Tornillos", entity.PurchaseOrder{ItemID: "I-1", ItemName: "viejo"}.ItemLabel(idx))
	assert.Equal(t, "Tuercas", entity.PurchaseOrder{ItemID: "I-9", ItemName: "Tuercas"}.ItemLabel(idx))
	assert.Equal(t, "I-9", entity.PurchaseOrder{ItemID: "I-9"}.ItemLabel(idx))
}

func TestSLAViolation_KeyCompuesta(t *testing.T) {
	a := entity.SLAViolation{OrderID: "PO-1", ReportedOn: "2024-01-01"}
	b := entity.SLAViolation{OrderID: "PO-1", ReportedOn: "2024-01-02"}
	assert.NotEqual(t, a.Key(), b.Key(), "la misma orden puede incumplir más de una vez")
}

func TestRunResult_MissingFields(t *testing.T) {
	var full entity.RunResult
	require.NoError(t, json.Unmarshal([]byte(`{
		"inventory_data": [],
		"purchase_orders": [],
		"restock_plan": [],
		"sla_violations": [],
		"metrics": {}
	}`), &full))
	assert.Empty(t, full.MissingFields(), "arreglos vacíos son válidos")

	var partial entity.RunResult
	require.NoError(t, json.Unmarshal([]byte(`{
		"inventory_data": [],
		"purchase_orders": null,
		"restock_plan": null,
		"sla_violations": []
	}`), &partial))
	assert.Equal(t, []string{"purchase_orders", "restock_plan", "metrics"}, partial.MissingFields())

	var nilResult *entity.RunResult
	assert.Len(t, nilResult.MissingFields(), 5)
}

func TestRunStatus_Terminal(t *testing.T) {
	assert.False(t, entity.RunStatusIdle.Terminal())
	assert.False(t, entity.RunStatusRunning.Terminal())
	assert.True(t, entity.RunStatusSettled.Terminal())
	assert.True(t, entity.RunStatusError.Terminal())
}
