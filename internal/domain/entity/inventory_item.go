package entity

// InventoryItem representa un artículo del inventario tal como lo expone el backend.
// "Stock bajo" no se almacena: se deriva en cada lectura con IsLowStock.
type InventoryItem struct {
	ItemID           string `json:"item_id"`
	Name             string `json:"name"`
	StockLevel       int    `json:"stock_level"`
	ReorderThreshold int    `json:"reorder_threshold"`
	Supplier         string `json:"supplier"`
	LastUpdated      string `json:"last_updated"`
}

// IsLowStock indica si el stock está por debajo del umbral de reorden.
func (i InventoryItem) IsLowStock() bool {
	return i.StockLevel < i.ReorderThreshold
}

// InventoryIndex permite resolver item_id → artículo dentro de un snapshot.
type InventoryIndex map[string]InventoryItem

// IndexInventory construye el índice por item_id. Si hay ids repetidos gana el último.
func IndexInventory(items []InventoryItem) InventoryIndex {
	idx := make(InventoryIndex, len(items))
	for _, it := range items {
		idx[it.ItemID] = it
	}
	return idx
}
