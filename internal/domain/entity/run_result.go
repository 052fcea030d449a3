package entity

import (
	"bytes"
	"encoding/json"
)

// RunResult payload combinado que devuelve GET /run (estrategia de reconciliación push).
// Un campo ausente o null deja el slice/mapa en nil; un arreglo vacío es válido.
type RunResult struct {
	Inventory      []InventoryItem            `json:"inventory_data"`
	PurchaseOrders []PurchaseOrder            `json:"purchase_orders"`
	RestockPlan    json.RawMessage            `json:"restock_plan"`
	SLAViolations  []SLAViolation             `json:"sla_violations"`
	Metrics        map[string]json.RawMessage `json:"metrics"`
}

// MissingFields devuelve los campos esperados que no vienen en el payload, en orden de contrato.
func (r *RunResult) MissingFields() []string {
	if r == nil {
		return []string{"inventory_data", "purchase_orders", "restock_plan", "sla_violations", "metrics"}
	}
	var missing []string
	if r.Inventory == nil {
		missing = append(missing, "inventory_data")
	}
	if r.PurchaseOrders == nil {
		missing = append(missing, "purchase_orders")
	}
	if rawMissing(r.RestockPlan) {
		missing = append(missing, "restock_plan")
	}
	if r.SLAViolations == nil {
		missing = append(missing, "sla_violations")
	}
	if r.Metrics == nil {
		missing = append(missing, "metrics")
	}
	return missing
}

// json.RawMessage recibe el literal null tal cual; se trata igual que un campo ausente.
func rawMissing(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
