// Package dashboard contiene los modelos de lectura del dashboard de supply-chain:
// el ReadModelStore, el buffer de logs de la ejecución y los valores derivados.
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/supplychain-dashboard/internal/domain"
	"github.com/jhoicas/supplychain-dashboard/internal/domain/entity"
	"github.com/jhoicas/supplychain-dashboard/internal/domain/repository"
	"github.com/jhoicas/supplychain-dashboard/pkg/logger"
)

// ErrStaleGeneration se devuelve cuando un resultado llega después de que otra
// ejecución más reciente ya escribió en el store; el resultado se descarta.
var ErrStaleGeneration = errors.New("dashboard: resultado de una ejecución anterior descartado")

// Tipos de aviso visibles en la vista.
const (
	WarningFetchFailure     = "fetch_failure"
	WarningMalformedPayload = "malformed_payload"
)

// Warning aviso no fatal de la última reconciliación.
type Warning struct {
	Kind     string
	Resource string
	Message  string
	At       time.Time
}

// Snapshot copia del último estado conocido de los modelos de lectura.
type Snapshot struct {
	Inventory      []entity.InventoryItem
	PurchaseOrders []entity.PurchaseOrder
	SLAViolations  []entity.SLAViolation
	Metrics        map[string]json.RawMessage
	RestockPlan    json.RawMessage
	UpdatedAt      map[string]time.Time // por recurso; ausente = nunca cargado
	Generation     uint64
}

// RefreshReport resultado de un RefreshAll.
type RefreshReport struct {
	Generation uint64
	Updated    []string
	Warnings   []Warning
	Stale      bool
}

// Err devuelve nil si todos los recursos se actualizaron; si no, un error que envuelve
// domain.ErrFetchFailure con el detalle de cada recurso fallido.
func (r RefreshReport) Err() error {
	if len(r.Warnings) == 0 {
		return nil
	}
	parts := make([]string, 0, len(r.Warnings))
	for _, w := range r.Warnings {
		parts = append(parts, w.Resource+": "+w.Message)
	}
	return fmt.Errorf("%w: %s", domain.ErrFetchFailure, strings.Join(parts, "; "))
}

// FetchObserver recibe la duración y el resultado de cada consulta de recurso (métricas).
type FetchObserver interface {
	ObserveFetch(resource string, elapsed time.Duration, err error)
}

// Store mantiene el último snapshot de inventario, órdenes de compra, incumplimientos
// de SLA y métricas opcionales. Sólo se muta mediante RefreshAll y ReplaceAll.
//
// Cada escritura lleva la generación (secuencia de ejecución) que la originó; el store
// descarta escrituras de generaciones anteriores a la última aplicada.
type Store struct {
	source   repository.ReadModelSource
	observer FetchObserver
	log      *logger.Logger
	now      func() time.Time

	mu         sync.RWMutex
	snap       Snapshot
	warnings   []Warning
	generation uint64
}

// StoreOption configura el Store.
type StoreOption func(*Store)

// WithFetchObserver registra un observador de consultas.
func WithFetchObserver(o FetchObserver) StoreOption {
	return func(s *Store) { s.observer = o }
}

// WithClock reemplaza el reloj (tests).
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// NewStore construye el store vacío.
func NewStore(source repository.ReadModelSource, log *logger.Logger, opts ...StoreOption) *Store {
	s := &Store{
		source: source,
		log:    log.Component("readmodel_store"),
		now:    time.Now,
		snap: Snapshot{
			UpdatedAt: map[string]time.Time{},
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RefreshAll consulta todos los recursos configurados en paralelo.
//
// Las consultas se lanzan juntas; cada éxito reemplaza su propio slot en cuanto llega
// y cada fallo conserva el valor anterior y produce un aviso. Ningún fallo es fatal
// ni bloquea a los demás recursos.
func (s *Store) RefreshAll(ctx context.Context, gen uint64) RefreshReport {
	report := RefreshReport{Generation: gen}
	var reportMu sync.Mutex

	record := func(resource string, err error) {
		reportMu.Lock()
		defer reportMu.Unlock()
		switch {
		case errors.Is(err, ErrStaleGeneration):
			report.Stale = true
		case err != nil:
			report.Warnings = append(report.Warnings, Warning{
				Kind:     WarningFetchFailure,
				Resource: resource,
				Message:  err.Error(),
				At:       s.now(),
			})
		default:
			report.Updated = append(report.Updated, resource)
		}
	}

	var g errgroup.Group

	g.Go(func() error {
		start := s.now()
		items, err := s.source.FetchInventory(ctx)
		s.observe(repository.ResourceInventory, start, err)
		record(repository.ResourceInventory, s.applySlot(gen, repository.ResourceInventory, err, func(snap *Snapshot) {
			snap.Inventory = nonNil(items)
		}))
		return nil
	})
	g.Go(func() error {
		start := s.now()
		orders, err := s.source.FetchPurchaseOrders(ctx)
		s.observe(repository.ResourcePurchaseOrders, start, err)
		record(repository.ResourcePurchaseOrders, s.applySlot(gen, repository.ResourcePurchaseOrders, err, func(snap *Snapshot) {
			snap.PurchaseOrders = nonNil(orders)
		}))
		return nil
	})
	g.Go(func() error {
		start := s.now()
		violations, err := s.source.FetchSLAViolations(ctx)
		s.observe(repository.ResourceSLAViolations, start, err)
		record(repository.ResourceSLAViolations, s.applySlot(gen, repository.ResourceSLAViolations, err, func(snap *Snapshot) {
			snap.SLAViolations = nonNil(violations)
		}))
		return nil
	})
	g.Go(func() error {
		start := s.now()
		metrics, enabled, err := s.source.FetchMetrics(ctx)
		if !enabled {
			return nil
		}
		s.observe(repository.ResourceMetrics, start, err)
		record(repository.ResourceMetrics, s.applySlot(gen, repository.ResourceMetrics, err, func(snap *Snapshot) {
			if metrics == nil {
				metrics = map[string]json.RawMessage{}
			}
			snap.Metrics = metrics
		}))
		return nil
	})

	// Las goroutines nunca devuelven error: cada fallo queda registrado en el reporte.
	_ = g.Wait()

	sort.Strings(report.Updated)
	sort.Slice(report.Warnings, func(i, j int) bool {
		return report.Warnings[i].Resource < report.Warnings[j].Resource
	})

	s.mu.Lock()
	if gen >= s.generation {
		s.warnings = report.Warnings
	}
	s.mu.Unlock()

	for _, w := range report.Warnings {
		s.log.Warn().Str("resource", w.Resource).Uint64("generation", gen).Msg("recurso no actualizado: " + w.Message)
	}
	if report.Stale {
		s.log.Debug().Uint64("generation", gen).Msg("refresco de una ejecución anterior descartado parcialmente")
	}
	return report
}

// Advance reserva la generación gen para una ejecución que acaba de empezar: desde ese
// momento se descartan las escrituras de generaciones anteriores (un refresco manual o
// la reconciliación previa todavía en vuelo), aunque gen aún no haya escrito nada.
func (s *Store) Advance(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen > s.generation {
		s.generation = gen
	}
}

// applySlot aplica el resultado de un recurso si la consulta tuvo éxito y su generación sigue vigente.
func (s *Store) applySlot(gen uint64, resource string, fetchErr error, apply func(*Snapshot)) error {
	if fetchErr != nil {
		return fetchErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen < s.generation {
		return ErrStaleGeneration
	}
	s.generation = gen
	apply(&s.snap)
	s.snap.Generation = gen
	s.snap.UpdatedAt[resource] = s.now()
	return nil
}

// ReplaceAll aplica el payload combinado de forma atómica: si falta cualquiera de los campos
// esperados el reemplazo completo se rechaza y el snapshot anterior se conserva.
func (s *Store) ReplaceAll(result *entity.RunResult, gen uint64) error {
	if missing := result.MissingFields(); len(missing) > 0 {
		err := fmt.Errorf("%w: faltan campos %s", domain.ErrMalformedPayload, strings.Join(missing, ", "))
		s.recordWarning(gen, Warning{
			Kind:     WarningMalformedPayload,
			Resource: "run",
			Message:  err.Error(),
			At:       s.now(),
		})
		s.log.Warn().Uint64("generation", gen).Strs("missing", missing).Msg("payload combinado rechazado")
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen < s.generation {
		return ErrStaleGeneration
	}
	now := s.now()
	s.generation = gen
	s.snap = Snapshot{
		Inventory:      result.Inventory,
		PurchaseOrders: result.PurchaseOrders,
		SLAViolations:  result.SLAViolations,
		Metrics:        result.Metrics,
		RestockPlan:    result.RestockPlan,
		Generation:     gen,
		UpdatedAt: map[string]time.Time{
			repository.ResourceInventory:      now,
			repository.ResourcePurchaseOrders: now,
			repository.ResourceSLAViolations:  now,
			repository.ResourceMetrics:        now,
		},
	}
	s.warnings = nil
	return nil
}

// RecordFailure deja constancia de una reconciliación que no pudo obtener datos
// (p. ej. GET /run falló). El snapshot no se toca.
func (s *Store) RecordFailure(gen uint64, resource string, err error) {
	s.recordWarning(gen, Warning{
		Kind:     WarningFetchFailure,
		Resource: resource,
		Message:  err.Error(),
		At:       s.now(),
	})
}

func (s *Store) recordWarning(gen uint64, w Warning) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen < s.generation {
		return
	}
	s.warnings = []Warning{w}
}

// Snapshot devuelve una copia del estado actual.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := Snapshot{
		Inventory:      append([]entity.InventoryItem{}, s.snap.Inventory...),
		PurchaseOrders: append([]entity.PurchaseOrder{}, s.snap.PurchaseOrders...),
		SLAViolations:  append([]entity.SLAViolation{}, s.snap.SLAViolations...),
		Metrics:        make(map[string]json.RawMessage, len(s.snap.Metrics)),
		RestockPlan:    append(json.RawMessage(nil), s.snap.RestockPlan...),
		UpdatedAt:      make(map[string]time.Time, len(s.snap.UpdatedAt)),
		Generation:     s.snap.Generation,
	}
	for k, v := range s.snap.Metrics {
		out.Metrics[k] = v
	}
	for k, v := range s.snap.UpdatedAt {
		out.UpdatedAt[k] = v
	}
	return out
}

// Warnings avisos de la última reconciliación aplicada.
func (s *Store) Warnings() []Warning {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Warning{}, s.warnings...)
}

func (s *Store) observe(resource string, start time.Time, err error) {
	if s.observer != nil {
		s.observer.ObserveFetch(resource, s.now().Sub(start), err)
	}
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
