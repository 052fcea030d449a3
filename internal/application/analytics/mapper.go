package analytics

import (
	"time"

	"github.com/jhoicas/supplychain-dashboard/internal/application/dashboard"
	"github.com/jhoicas/supplychain-dashboard/internal/application/dto"
	"github.com/jhoicas/supplychain-dashboard/internal/domain/entity"
)

func toRunStateDTO(s entity.RunState) dto.RunStateDTO {
	return dto.RunStateDTO{
		RunID:         s.RunID,
		Sequence:      s.Sequence,
		Status:        string(s.Status),
		Strategy:      s.Strategy,
		StartedAt:     timePtr(s.StartedAt),
		FinishedAt:    timePtr(s.FinishedAt),
		LastError:     s.LastError,
		Reconciled:    s.Reconciled,
		ReconcileNote: s.ReconcileNote,
	}
}

func toSummaryDTO(d dashboard.Derived) dto.SummaryDTO {
	return dto.SummaryDTO{
		TotalItems:              d.TotalItems,
		LowStockCount:           d.LowStockCount,
		TotalOrders:             d.TotalOrders,
		OrdersByStatus:          d.OrdersByStatus,
		UnitsOnOrder:            d.UnitsOnOrder,
		SLAViolationCount:       d.SLAViolationCount,
		SuppliersWithViolations: d.SuppliersWithViolations,
		FulfillmentRate:         d.FulfillmentRate,
	}
}

func toInventoryDTOs(items []entity.InventoryItem) []dto.InventoryItemDTO {
	out := make([]dto.InventoryItemDTO, 0, len(items))
	for _, it := range items {
		out = append(out, dto.InventoryItemDTO{
			ItemID:           it.ItemID,
			Name:             it.Name,
			StockLevel:       it.StockLevel,
			ReorderThreshold: it.ReorderThreshold,
			Supplier:         it.Supplier,
			LastUpdated:      it.LastUpdated,
			LowStock:         it.IsLowStock(),
		})
	}
	return out
}

func toPurchaseOrderDTOs(orders []entity.PurchaseOrder, idx entity.InventoryIndex) []dto.PurchaseOrderDTO {
	out := make([]dto.PurchaseOrderDTO, 0, len(orders))
	for _, o := range orders {
		out = append(out, dto.PurchaseOrderDTO{
			OrderID:   o.OrderID,
			ItemID:    o.ItemID,
			ItemName:  o.ItemLabel(idx),
			Quantity:  o.Quantity,
			Supplier:  o.Supplier,
			OrderDate: o.OrderDate,
			Status:    o.Status.Label(),
		})
	}
	return out
}

func toSLAViolationDTOs(violations []entity.SLAViolation) []dto.SLAViolationDTO {
	out := make([]dto.SLAViolationDTO, 0, len(violations))
	for _, v := range violations {
		out = append(out, dto.SLAViolationDTO{
			OrderID:    v.OrderID,
			Supplier:   v.Supplier,
			Reason:     v.Reason,
			ReportedOn: v.ReportedOn,
		})
	}
	return out
}

func toWarningDTOs(warnings []dashboard.Warning) []dto.WarningDTO {
	out := make([]dto.WarningDTO, 0, len(warnings))
	for _, w := range warnings {
		out = append(out, dto.WarningDTO{Kind: w.Kind, Resource: w.Resource, Message: w.Message, At: w.At})
	}
	return out
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
