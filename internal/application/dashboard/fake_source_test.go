package dashboard_test

import (
	"context"
	"encoding/json"

	"github.com/jhoicas/supplychain-dashboard/internal/domain/entity"
)

// fakeSource implementa repository.ReadModelSource con funciones configurables por test.
type fakeSource struct {
	inventory  func(ctx context.Context) ([]entity.InventoryItem, error)
	orders     func(ctx context.Context) ([]entity.PurchaseOrder, error)
	violations func(ctx context.Context) ([]entity.SLAViolation, error)
	metrics    func(ctx context.Context) (map[string]json.RawMessage, error)
}

func (f *fakeSource) FetchInventory(ctx context.Context) ([]entity.InventoryItem, error) {
	if f.inventory == nil {
		return []entity.InventoryItem{}, nil
	}
	return f.inventory(ctx)
}

func (f *fakeSource) FetchPurchaseOrders(ctx context.Context) ([]entity.PurchaseOrder, error) {
	if f.orders == nil {
		return []entity.PurchaseOrder{}, nil
	}
	return f.orders(ctx)
}

func (f *fakeSource) FetchSLAViolations(ctx context.Context) ([]entity.SLAViolation, error) {
	if f.violations == nil {
		return []entity.SLAViolation{}, nil
	}
	return f.violations(ctx)
}

func (f *fakeSource) FetchMetrics(ctx context.Context) (map[string]json.RawMessage, bool, error) {
	if f.metrics == nil {
		return nil, false, nil
	}
	m, err := f.metrics(ctx)
	return m, true, err
}
