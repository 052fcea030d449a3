package entity

// OrderStatus es un enum abierto: los valores desconocidos se conservan y se muestran tal cual.
type OrderStatus string

// Estados conocidos de una orden de compra.
const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusFulfilled OrderStatus = "fulfilled"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Known indica si el estado es uno de los reconocidos por el dashboard.
func (s OrderStatus) Known() bool {
	switch s {
	case OrderStatusPending, OrderStatusFulfilled, OrderStatusCancelled:
		return true
	}
	return false
}

// Label devuelve el texto a mostrar. Nunca falla: un estado vacío se muestra como "unknown".
func (s OrderStatus) Label() string {
	if s == "" {
		return "unknown"
	}
	return string(s)
}

// PurchaseOrder orden de compra emitida por el backend.
// ItemName es la copia desnormalizada que se usa cuando item_id no resuelve en el snapshot.
type PurchaseOrder struct {
	OrderID   string      `json:"order_id"`
	ItemID    string      `json:"item_id"`
	ItemName  string      `json:"item_name,omitempty"`
	Quantity  int         `json:"quantity"`
	Supplier  string      `json:"supplier"`
	OrderDate string      `json:"order_date"`
	Status    OrderStatus `json:"status"`
}

// ItemLabel resuelve el nombre del artículo contra el inventario; si la referencia
// está colgando usa item_name y, como último recurso, el item_id crudo.
func (o PurchaseOrder) ItemLabel(idx InventoryIndex) string {
	if it, ok := idx[o.ItemID]; ok && it.Name != "" {
		return it.Name
	}
	if o.ItemName != "" {
		return o.ItemName
	}
	return o.ItemID
}
