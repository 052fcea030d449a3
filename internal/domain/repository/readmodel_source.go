package repository

import (
	"context"
	"encoding/json"

	"github.com/jhoicas/supplychain-dashboard/internal/domain/entity"
)

// Nombres de recurso usados en avisos, logs y métricas.
const (
	ResourceInventory      = "inventory"
	ResourcePurchaseOrders = "purchase_orders"
	ResourceSLAViolations  = "sla_violations"
	ResourceMetrics        = "metrics"
)

// ReadModelSource define el puerto de lectura de los modelos del backend (DIP).
// Cada método es una consulta independiente; ninguna depende de otra.
type ReadModelSource interface {
	FetchInventory(ctx context.Context) ([]entity.InventoryItem, error)
	FetchPurchaseOrders(ctx context.Context) ([]entity.PurchaseOrder, error)
	FetchSLAViolations(ctx context.Context) ([]entity.SLAViolation, error)

	// FetchMetrics devuelve las métricas opcionales. enabled=false si el backend no las expone
	// (ruta no configurada); en ese caso el slot de métricas no participa en el refresco.
	FetchMetrics(ctx context.Context) (metrics map[string]json.RawMessage, enabled bool, err error)
}

// RunResultSource inicia la ejecución con la acción que devuelve el resultado combinado (GET /run).
// No es idempotente: lanzar la llamada ejecuta el job en el backend.
type RunResultSource interface {
	FetchRunResult(ctx context.Context) (*entity.RunResult, error)
}

// RunStream conexión server-push abierta contra el endpoint de ejecución.
type RunStream interface {
	// Next bloquea hasta el siguiente evento despachado. Devuelve io.EOF si el servidor
	// cierra la conexión y un error envuelto en domain.ErrStreamTransport ante fallos de transporte.
	Next(ctx context.Context) (entity.StreamEvent, error)
	Close() error
}

// RunStreamOpener abre el stream de ejecución.
type RunStreamOpener interface {
	OpenRunStream(ctx context.Context) (RunStream, error)
}
