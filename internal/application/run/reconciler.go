package run

import (
	"context"
	"fmt"

	"github.com/jhoicas/supplychain-dashboard/internal/application/dashboard"
	"github.com/jhoicas/supplychain-dashboard/internal/domain/entity"
	"github.com/jhoicas/supplychain-dashboard/internal/domain/repository"
	"github.com/jhoicas/supplychain-dashboard/pkg/config"
)

// Reconciler estrategia de reconciliación de los modelos de lectura tras una ejecución.
//
// Begin se invoca en Start (antes de abrir el stream) y devuelve la reconciliación de esa
// ejecución; la sesión llama Apply exactamente una vez, después del evento terminal.
type Reconciler interface {
	Strategy() string
	Begin(ctx context.Context, seq uint64) Reconciliation
}

// Reconciliation reconciliación pendiente de una ejecución concreta.
type Reconciliation interface {
	Apply(ctx context.Context) error
}

// NewReconciler selecciona la estrategia por configuración.
func NewReconciler(strategy string, store *dashboard.Store, results repository.RunResultSource) (Reconciler, error) {
	switch strategy {
	case config.StrategyPull:
		return NewPullReconciler(store), nil
	case config.StrategyPush:
		if results == nil {
			return nil, fmt.Errorf("run: la estrategia push requiere una fuente de resultado combinado")
		}
		return NewPushReconciler(store, results), nil
	default:
		return nil, fmt.Errorf("run: estrategia de reconciliación desconocida %q", strategy)
	}
}

// ── Pull: un GET por recurso ──────────────────────────────────────────────────

// PullReconciler refresca cada recurso por separado cuando la ejecución termina.
type PullReconciler struct {
	store *dashboard.Store
}

// NewPullReconciler construye la estrategia pull.
func NewPullReconciler(store *dashboard.Store) *PullReconciler {
	return &PullReconciler{store: store}
}

// Strategy nombre de la estrategia.
func (r *PullReconciler) Strategy() string { return config.StrategyPull }

// Begin no hace I/O: las consultas se lanzan recién en Apply, para no leer el backend a mitad de escritura.
// Sí reserva la generación en el store para que nada anterior a seq se aplique durante la ejecución.
func (r *PullReconciler) Begin(_ context.Context, seq uint64) Reconciliation {
	r.store.Advance(seq)
	return pullReconciliation{store: r.store, seq: seq}
}

type pullReconciliation struct {
	store *dashboard.Store
	seq   uint64
}

func (p pullReconciliation) Apply(ctx context.Context) error {
	return p.store.RefreshAll(ctx, p.seq).Err()
}

// ── Push: payload combinado devuelto por la acción de inicio ──────────────────

// PushReconciler lanza GET /run al iniciar y aplica su payload completo al terminar.
type PushReconciler struct {
	store   *dashboard.Store
	results repository.RunResultSource
}

// NewPushReconciler construye la estrategia push.
func NewPushReconciler(store *dashboard.Store, results repository.RunResultSource) *PushReconciler {
	return &PushReconciler{store: store, results: results}
}

// Strategy nombre de la estrategia.
func (r *PushReconciler) Strategy() string { return config.StrategyPush }

// Begin dispara la acción de inicio en segundo plano; su resultado se espera en Apply.
func (r *PushReconciler) Begin(ctx context.Context, seq uint64) Reconciliation {
	r.store.Advance(seq)
	type outcome struct {
		result *entity.RunResult
		err    error
	}
	ch := make(chan outcome, 1)
	go func() {
		res, err := r.results.FetchRunResult(ctx)
		ch <- outcome{result: res, err: err}
	}()
	return &pushReconciliation{
		store: r.store,
		seq:   seq,
		wait: func(ctx context.Context) (*entity.RunResult, error) {
			select {
			case o := <-ch:
				return o.result, o.err
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		},
	}
}

type pushReconciliation struct {
	store *dashboard.Store
	seq   uint64
	wait  func(ctx context.Context) (*entity.RunResult, error)
}

func (p *pushReconciliation) Apply(ctx context.Context) error {
	res, err := p.wait(ctx)
	if err != nil {
		p.store.RecordFailure(p.seq, "run", err)
		return fmt.Errorf("run: resultado combinado: %w", err)
	}
	return p.store.ReplaceAll(res, p.seq)
}
