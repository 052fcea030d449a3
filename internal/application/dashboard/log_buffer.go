package dashboard

import (
	"sync"

	"github.com/jhoicas/supplychain-dashboard/internal/domain/entity"
)

// EmptyLogPlaceholder texto que la vista muestra cuando la ejecución aún no emitió líneas.
const EmptyLogPlaceholder = "Sin registros de ejecución todavía."

// LogBuffer secuencia append-only de las líneas recibidas durante la ejecución actual.
// Sólo se vacía al iniciar una nueva ejecución; las entradas nunca se modifican.
type LogBuffer struct {
	mu      sync.RWMutex
	entries []entity.LogEntry
}

// NewLogBuffer construye un buffer vacío.
func NewLogBuffer() *LogBuffer {
	return &LogBuffer{}
}

// Append agrega una entrada al final. O(1) amortizado; no hay límite de tamaño.
func (b *LogBuffer) Append(e entity.LogEntry) {
	b.mu.Lock()
	b.entries = append(b.entries, e)
	b.mu.Unlock()
}

// Clear descarta todas las entradas. La sesión lo invoca únicamente en Start.
func (b *LogBuffer) Clear() {
	b.mu.Lock()
	// Slice nuevo: las copias entregadas antes de Clear siguen siendo válidas.
	b.entries = nil
	b.mu.Unlock()
}

// Len número de entradas.
func (b *LogBuffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}

// Entries devuelve una copia de todas las entradas en orden de llegada (nunca nil).
func (b *LogBuffer) Entries() []entity.LogEntry {
	return b.Since(0)
}

// Since devuelve las entradas posteriores al offset indicado (polling incremental de la vista).
func (b *LogBuffer) Since(offset int) []entity.LogEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if offset < 0 {
		offset = 0
	}
	if offset >= len(b.entries) {
		return []entity.LogEntry{}
	}
	out := make([]entity.LogEntry, len(b.entries)-offset)
	copy(out, b.entries[offset:])
	return out
}
