// Package run implementa el ciclo de vida de una ejecución del backend: arranque,
// consumo del stream de eventos, detección del fin y reconciliación posterior.
package run

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/supplychain-dashboard/internal/application/dashboard"
	"github.com/jhoicas/supplychain-dashboard/internal/domain"
	"github.com/jhoicas/supplychain-dashboard/internal/domain/entity"
	"github.com/jhoicas/supplychain-dashboard/internal/domain/repository"
	"github.com/jhoicas/supplychain-dashboard/pkg/logger"
)

// Recorder recibe los hitos de cada ejecución (métricas). Las implementaciones no deben bloquear.
type Recorder interface {
	RunStarted()
	LogLineReceived()
	RunFinished(status entity.RunStatus, elapsed time.Duration)
	Reconciled(strategy string, err error)
}

type nopRecorder struct{}

func (nopRecorder) RunStarted()                                {}
func (nopRecorder) LogLineReceived()                           {}
func (nopRecorder) RunFinished(entity.RunStatus, time.Duration) {}
func (nopRecorder) Reconciled(string, error)                   {}

// Session máquina de estados de la ejecución: Idle → Running → Settled | Error → Running ...
//
// El estado es la única fuente de verdad para el disparador y la vista. Sólo puede haber
// una ejecución Running: Start mientras corre es un no-op que devuelve domain.ErrRunInProgress.
type Session struct {
	opener     repository.RunStreamOpener
	reconciler Reconciler
	logs       *dashboard.LogBuffer
	log        *logger.Logger
	recorder   Recorder
	now        func() time.Time
	baseCtx    context.Context

	mu    sync.Mutex
	state entity.RunState
	done  chan struct{} // se cierra cuando la ejecución actual terminó de reconciliar
}

// Option configura la sesión.
type Option func(*Session)

// WithRecorder registra el receptor de métricas.
func WithRecorder(r Recorder) Option {
	return func(s *Session) { s.recorder = r }
}

// WithClock reemplaza el reloj usado para los timestamps de log (tests).
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithBaseContext contexto del que derivan las ejecuciones; cancelarlo corta el stream en curso.
func WithBaseContext(ctx context.Context) Option {
	return func(s *Session) { s.baseCtx = ctx }
}

// NewSession construye la sesión en estado Idle.
func NewSession(
	opener repository.RunStreamOpener,
	reconciler Reconciler,
	logs *dashboard.LogBuffer,
	log *logger.Logger,
	opts ...Option,
) *Session {
	s := &Session{
		opener:     opener,
		reconciler: reconciler,
		logs:       logs,
		log:        log.Component("run_session"),
		recorder:   nopRecorder{},
		now:        time.Now,
		baseCtx:    context.Background(),
		state: entity.RunState{
			Status:   entity.RunStatusIdle,
			Strategy: reconciler.Strategy(),
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	closed := make(chan struct{})
	close(closed)
	s.done = closed
	return s
}

// Start inicia una ejecución: vacía el buffer de logs, pasa a Running y abre el stream.
// Devuelve el estado recién creado. Si ya hay una ejecución en curso no cambia nada.
func (s *Session) Start() (entity.RunState, error) {
	s.mu.Lock()
	if s.state.Status == entity.RunStatusRunning {
		current := s.state
		s.mu.Unlock()
		return current, domain.ErrRunInProgress
	}

	seq := s.state.Sequence + 1
	s.state = entity.RunState{
		RunID:     uuid.New().String(),
		Sequence:  seq,
		Status:    entity.RunStatusRunning,
		Strategy:  s.reconciler.Strategy(),
		StartedAt: s.now(),
	}
	s.logs.Clear()
	done := make(chan struct{})
	s.done = done
	started := s.state
	s.mu.Unlock()

	runLog := s.log.With().Str("run_id", started.RunID).Uint64("seq", seq).Logger()
	runLog.Info().Str("strategy", started.Strategy).Msg("ejecución iniciada")
	s.recorder.RunStarted()

	ctx := s.baseCtx
	reconciliation := s.reconciler.Begin(ctx, seq)

	go s.drive(ctx, seq, reconciliation, done)

	return started, nil
}

// drive consume el stream hasta el evento terminal y luego reconcilia, siempre en ese orden.
func (s *Session) drive(ctx context.Context, seq uint64, reconciliation Reconciliation, done chan struct{}) {
	defer close(done)

	status, cause := s.consume(ctx, seq)
	s.finish(seq, status, cause)

	// El evento terminal ya quedó procesado (stream cerrado, estado escrito):
	// recién ahora se leen los datos del backend.
	err := reconciliation.Apply(ctx)
	if errors.Is(err, dashboard.ErrStaleGeneration) {
		err = nil
	}
	s.recorder.Reconciled(s.reconciler.Strategy(), err)

	s.mu.Lock()
	if s.state.Sequence == seq {
		s.state.Reconciled = true
		if err != nil {
			s.state.ReconcileNote = err.Error()
		}
	}
	s.mu.Unlock()

	if err != nil {
		s.log.Warn().Uint64("seq", seq).Err(err).Msg("reconciliación incompleta; se mantiene el último estado consistente")
		return
	}
	s.log.Info().Uint64("seq", seq).Msg("modelos de lectura reconciliados")
}

// consume abre el stream y agrega cada línea al buffer hasta un evento terminal.
func (s *Session) consume(ctx context.Context, seq uint64) (entity.RunStatus, error) {
	stream, err := s.opener.OpenRunStream(ctx)
	if err != nil {
		return entity.RunStatusError, wrapTransport(err)
	}
	defer func() {
		if cerr := stream.Close(); cerr != nil {
			s.log.Debug().Uint64("seq", seq).Err(cerr).Msg("cerrar stream")
		}
	}()

	for {
		ev, err := stream.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return entity.RunStatusError, fmt.Errorf("%w: conexión cerrada sin evento end", domain.ErrStreamTransport)
			}
			return entity.RunStatusError, wrapTransport(err)
		}

		switch {
		case ev.Name == entity.StreamEventEnd:
			return entity.RunStatusSettled, nil
		case ev.Name == entity.StreamEventError:
			return entity.RunStatusError, fmt.Errorf("%w: el backend reportó un error: %s",
				domain.ErrStreamTransport, strings.TrimSpace(ev.Data))
		case ev.IsDefault():
			s.logs.Append(entity.LogEntry{
				Message:   strings.TrimSpace(ev.Data),
				Timestamp: s.now(),
			})
			s.recorder.LogLineReceived()
		default:
			s.log.Debug().Uint64("seq", seq).Str("event", ev.Name).Msg("evento con nombre desconocido ignorado")
		}
	}
}

// finish escribe el estado terminal de la ejecución.
func (s *Session) finish(seq uint64, status entity.RunStatus, cause error) {
	s.mu.Lock()
	if s.state.Sequence != seq {
		s.mu.Unlock()
		return
	}
	s.state.Status = status
	s.state.FinishedAt = s.now()
	if cause != nil {
		s.state.LastError = cause.Error()
	}
	elapsed := s.state.FinishedAt.Sub(s.state.StartedAt)
	s.mu.Unlock()

	s.recorder.RunFinished(status, elapsed)
	if cause != nil {
		s.log.Warn().Uint64("seq", seq).Err(cause).Msg("ejecución terminada con error")
		return
	}
	s.log.Info().Uint64("seq", seq).Dur("elapsed", elapsed).Msg("ejecución finalizada")
}

// State devuelve la fotografía actual de la sesión.
func (s *Session) State() entity.RunState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Status atajo para el estado de la ejecución.
func (s *Session) Status() entity.RunStatus {
	return s.State().Status
}

// Logs líneas recibidas en la ejecución actual.
func (s *Session) Logs() *dashboard.LogBuffer {
	return s.logs
}

// Wait bloquea hasta que la ejecución actual terminó de reconciliar (o ctx expira).
// Sin ejecución en curso retorna de inmediato.
func (s *Session) Wait(ctx context.Context) error {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func wrapTransport(err error) error {
	if errors.Is(err, domain.ErrStreamTransport) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrStreamTransport, err)
}
