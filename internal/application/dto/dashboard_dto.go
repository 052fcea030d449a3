package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// DashboardStateDTO respuesta de GET /api/dashboard: todo lo que la vista necesita
// para pintarse en una sola lectura.
type DashboardStateDTO struct {
	Run            RunStateDTO                `json:"run"`
	CanStart       bool                       `json:"can_start"` // false mientras la ejecución corre
	Logs           LogsDTO                    `json:"logs"`
	Summary        SummaryDTO                 `json:"summary"`
	Inventory      []InventoryItemDTO         `json:"inventory"`
	PurchaseOrders []PurchaseOrderDTO         `json:"purchase_orders"`
	SLAViolations  []SLAViolationDTO          `json:"sla_violations"`
	Metrics        map[string]json.RawMessage `json:"metrics,omitempty"`
	RestockPlan    json.RawMessage            `json:"restock_plan,omitempty"`
	Warnings       []WarningDTO               `json:"warnings"`
	UpdatedAt      map[string]time.Time       `json:"updated_at"`
	Generation     uint64                     `json:"generation"`
}

// RunStateDTO estado de la ejecución actual.
type RunStateDTO struct {
	RunID         string     `json:"run_id,omitempty"`
	Sequence      uint64     `json:"sequence"`
	Status        string     `json:"status"` // idle | running | settled | error
	Strategy      string     `json:"strategy"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	FinishedAt    *time.Time `json:"finished_at,omitempty"`
	LastError     string     `json:"last_error,omitempty"`
	Reconciled    bool       `json:"reconciled"`
	ReconcileNote string     `json:"reconcile_note,omitempty"`
}

// LogsDTO líneas de la ejecución actual. Placeholder sólo se informa si no hay líneas.
// Reset indica que las líneas empiezan en el offset 0 de una ejecución distinta a la
// del ?seq= recibido: la vista descarta lo acumulado.
type LogsDTO struct {
	RunID       string        `json:"run_id,omitempty"`
	Sequence    uint64        `json:"sequence"` // valor para el siguiente ?seq=
	Entries     []LogEntryDTO `json:"entries"`
	Total       int           `json:"total"`
	Next        int           `json:"next"` // offset para el siguiente ?since=
	Reset       bool          `json:"reset"`
	Placeholder string        `json:"placeholder,omitempty"`
}

// LogEntryDTO una línea de log.
type LogEntryDTO struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// SummaryDTO KPIs derivados del snapshot.
type SummaryDTO struct {
	TotalItems              int             `json:"total_items"`
	LowStockCount           int             `json:"low_stock_count"`
	TotalOrders             int             `json:"total_orders"`
	OrdersByStatus          map[string]int  `json:"orders_by_status"`
	UnitsOnOrder            int             `json:"units_on_order"`
	SLAViolationCount       int             `json:"sla_violation_count"`
	SuppliersWithViolations int             `json:"suppliers_with_violations"`
	FulfillmentRate         decimal.Decimal `json:"fulfillment_rate"` // porcentaje, 2 decimales
}

// InventoryItemDTO artículo con el indicador de stock bajo ya resuelto.
type InventoryItemDTO struct {
	ItemID           string `json:"item_id"`
	Name             string `json:"name"`
	StockLevel       int    `json:"stock_level"`
	ReorderThreshold int    `json:"reorder_threshold"`
	Supplier         string `json:"supplier"`
	LastUpdated      string `json:"last_updated"`
	LowStock         bool   `json:"low_stock"`
}

// PurchaseOrderDTO orden con el nombre del artículo resuelto.
type PurchaseOrderDTO struct {
	OrderID   string `json:"order_id"`
	ItemID    string `json:"item_id"`
	ItemName  string `json:"item_name"`
	Quantity  int    `json:"quantity"`
	Supplier  string `json:"supplier"`
	OrderDate string `json:"order_date"`
	Status    string `json:"status"`
}

// SLAViolationDTO incumplimiento de SLA.
type SLAViolationDTO struct {
	OrderID    string `json:"order_id"`
	Supplier   string `json:"supplier"`
	Reason     string `json:"reason"`
	ReportedOn string `json:"reported_on"`
}

// WarningDTO aviso no fatal de la última reconciliación.
type WarningDTO struct {
	Kind     string    `json:"kind"`
	Resource string    `json:"resource"`
	Message  string    `json:"message"`
	At       time.Time `json:"at"`
}

// InventoryPageDTO respuesta de GET /api/inventory.
type InventoryPageDTO struct {
	Items []InventoryItemDTO `json:"items"`
	Page  PageResponse       `json:"page"`
}

// PurchaseOrderPageDTO respuesta de GET /api/purchase-orders.
type PurchaseOrderPageDTO struct {
	Items []PurchaseOrderDTO `json:"items"`
	Page  PageResponse       `json:"page"`
}

// SLAViolationPageDTO respuesta de GET /api/sla-violations.
type SLAViolationPageDTO struct {
	Items []SLAViolationDTO `json:"items"`
	Page  PageResponse      `json:"page"`
}

// StartRunResponse respuesta de POST /api/run.
type StartRunResponse struct {
	Run     RunStateDTO `json:"run"`
	Started bool        `json:"started"`
}

// RefreshResponse respuesta de POST /api/refresh.
type RefreshResponse struct {
	Generation uint64       `json:"generation"`
	Updated    []string     `json:"updated"`
	Warnings   []WarningDTO `json:"warnings"`
	Stale      bool         `json:"stale"`
}
