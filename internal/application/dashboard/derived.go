package dashboard

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/supplychain-dashboard/internal/domain/entity"
)

// Derived valores calculados a partir de un snapshot. Nunca se almacenan:
// se recalculan en cada lectura y no pueden desviarse de las colecciones.
type Derived struct {
	TotalItems              int
	LowStockCount           int
	LowStockItems           []entity.InventoryItem
	TotalOrders             int
	OrdersByStatus          map[string]int
	UnitsOnOrder            int // cantidad total de órdenes pendientes
	SLAViolationCount       int
	SuppliersWithViolations int
	FulfillmentRate         decimal.Decimal // % de órdenes cumplidas sobre el total
}

// Derive calcula los valores derivados de un snapshot.
func Derive(s Snapshot) Derived {
	d := Derived{
		TotalItems:        len(s.Inventory),
		TotalOrders:       len(s.PurchaseOrders),
		SLAViolationCount: len(s.SLAViolations),
		OrdersByStatus:    make(map[string]int),
		LowStockItems:     []entity.InventoryItem{},
		FulfillmentRate:   decimal.Zero,
	}

	for _, it := range s.Inventory {
		if it.IsLowStock() {
			d.LowStockCount++
			d.LowStockItems = append(d.LowStockItems, it)
		}
	}

	fulfilled := 0
	for _, o := range s.PurchaseOrders {
		d.OrdersByStatus[o.Status.Label()]++
		switch o.Status {
		case entity.OrderStatusPending:
			d.UnitsOnOrder += o.Quantity
		case entity.OrderStatusFulfilled:
			fulfilled++
		}
	}
	if d.TotalOrders > 0 {
		d.FulfillmentRate = decimal.NewFromInt(int64(fulfilled)).
			Div(decimal.NewFromInt(int64(d.TotalOrders))).
			Mul(decimal.NewFromInt(100)).
			Round(2)
	}

	suppliers := make(map[string]struct{})
	for _, v := range s.SLAViolations {
		suppliers[v.Supplier] = struct{}{}
	}
	d.SuppliersWithViolations = len(suppliers)

	return d
}
