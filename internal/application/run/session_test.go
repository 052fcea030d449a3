package run_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/supplychain-dashboard/internal/application/dashboard"
	"github.com/jhoicas/supplychain-dashboard/internal/application/run"
	"github.com/jhoicas/supplychain-dashboard/internal/domain"
	"github.com/jhoicas/supplychain-dashboard/internal/domain/entity"
	"github.com/jhoicas/supplychain-dashboard/internal/domain/repository"
	"github.com/jhoicas/supplychain-dashboard/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles de test
// ──────────────────────────────────────────────────────────────────────────────

type streamItem struct {
	ev  entity.StreamEvent
	err error
}

// fakeStream stream controlado por el test: cada envío es un evento; cerrar el canal = EOF.
type fakeStream struct {
	items  chan streamItem
	closed atomic.Bool
}

func (f *fakeStream) Next(ctx context.Context) (entity.StreamEvent, error) {
	select {
	case it, ok := <-f.items:
		if !ok {
			return entity.StreamEvent{}, io.EOF
		}
		return it.ev, it.err
	case <-ctx.Done():
		return entity.StreamEvent{}, ctx.Err()
	}
}

func (f *fakeStream) Close() error {
	f.closed.Store(true)
	return nil
}

func (f *fakeStream) message(data string) { f.items <- streamItem{ev: entity.StreamEvent{Data: data}} }
func (f *fakeStream) end()                { f.items <- streamItem{ev: entity.StreamEvent{Name: entity.StreamEventEnd}} }
func (f *fakeStream) fail(err error)      { f.items <- streamItem{err: err} }

type fakeOpener struct {
	mu      sync.Mutex
	streams []*fakeStream
	openErr error
}

func (o *fakeOpener) OpenRunStream(context.Context) (repository.RunStream, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.openErr != nil {
		return nil, o.openErr
	}
	s := &fakeStream{items: make(chan streamItem)}
	o.streams = append(o.streams, s)
	return s, nil
}

func (o *fakeOpener) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.streams)
}

// waitStream espera a que la sesión abra el stream n (el open es asíncrono).
func (o *fakeOpener) waitStream(t *testing.T, n int) *fakeStream {
	t.Helper()
	require.Eventually(t, func() bool { return o.count() >= n }, 2*time.Second, time.Millisecond)
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.streams[n-1]
}

// countingReconciler cuenta los Apply y captura el estado de la sesión en ese momento.
type countingReconciler struct {
	applies    atomic.Int32
	statusSeen func() entity.RunStatus
	seenMu     sync.Mutex
	seen       []entity.RunStatus
	err        error
}

func (r *countingReconciler) Strategy() string { return "test" }

func (r *countingReconciler) Begin(_ context.Context, _ uint64) run.Reconciliation {
	return reconcileFunc(func(context.Context) error {
		r.applies.Add(1)
		if r.statusSeen != nil {
			r.seenMu.Lock()
			r.seen = append(r.seen, r.statusSeen())
			r.seenMu.Unlock()
		}
		return r.err
	})
}

type reconcileFunc func(ctx context.Context) error

func (f reconcileFunc) Apply(ctx context.Context) error { return f(ctx) }

func newTestSession(opener *fakeOpener, rec *countingReconciler) *run.Session {
	s := run.NewSession(opener, rec, dashboard.NewLogBuffer(), logger.Nop())
	rec.statusSeen = s.Status
	return s
}

func messages(entries []entity.LogEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Message)
	}
	return out
}

func waitRun(t *testing.T, s *run.Session) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Wait(ctx))
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestSession_EstadoInicialIdle(t *testing.T) {
	s := newTestSession(&fakeOpener{}, &countingReconciler{})
	assert.Equal(t, entity.RunStatusIdle, s.Status())
	require.NoError(t, s.Wait(context.Background()), "sin ejecución Wait retorna de inmediato")
}

// N líneas sin evento terminal ⇒ buffer con N entradas en orden de llegada.
func TestSession_LineasEnOrdenDeLlegada(t *testing.T) {
	opener := &fakeOpener{}
	s := newTestSession(opener, &countingReconciler{})

	_, err := s.Start()
	require.NoError(t, err)
	stream := opener.waitStream(t, 1)

	want := []string{"Checking inventory levels...", "Placing order PO-1001", "  con espacios  ", ""}
	for _, m := range want {
		stream.message(m)
	}

	require.Eventually(t, func() bool { return s.Logs().Len() == len(want) }, time.Second, time.Millisecond)
	assert.Equal(t, []string{"Checking inventory levels...", "Placing order PO-1001", "con espacios", ""},
		messages(s.Logs().Entries()), "mensajes recortados, sin reordenar ni deduplicar")
	assert.Equal(t, entity.RunStatusRunning, s.Status())

	stream.end()
	waitRun(t, s)
}

// start(); receive("a"); start(); receive("b") ⇒ buffer == ["b"].
func TestSession_StartVaciaElBuffer(t *testing.T) {
	opener := &fakeOpener{}
	s := newTestSession(opener, &countingReconciler{})

	_, err := s.Start()
	require.NoError(t, err)
	first := opener.waitStream(t, 1)
	first.message("a")
	first.end()
	waitRun(t, s)

	_, err = s.Start()
	require.NoError(t, err)
	second := opener.waitStream(t, 2)
	second.message("b")
	require.Eventually(t, func() bool { return s.Logs().Len() == 1 }, time.Second, time.Millisecond)

	assert.Equal(t, []string{"b"}, messages(s.Logs().Entries()))
	second.end()
	waitRun(t, s)
}

// Doble clic: el segundo Start mientras corre es un no-op y sólo hay una conexión.
func TestSession_DobleStartEsNoOp(t *testing.T) {
	opener := &fakeOpener{}
	s := newTestSession(opener, &countingReconciler{})

	first, err := s.Start()
	require.NoError(t, err)
	stream := opener.waitStream(t, 1)
	stream.message("a")
	require.Eventually(t, func() bool { return s.Logs().Len() == 1 }, time.Second, time.Millisecond)

	second, err := s.Start()
	assert.ErrorIs(t, err, domain.ErrRunInProgress)
	assert.Equal(t, first.RunID, second.RunID, "devuelve la ejecución en curso")
	assert.Equal(t, 1, s.Logs().Len(), "el buffer no se vacía")

	stream.end()
	waitRun(t, s)
	assert.Equal(t, 1, opener.count(), "sólo se abrió una conexión")
}

func TestSession_DobleStartConcurrente(t *testing.T) {
	opener := &fakeOpener{}
	s := newTestSession(opener, &countingReconciler{})

	var wg sync.WaitGroup
	var okCount atomic.Int32
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Start(); err == nil {
				okCount.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), okCount.Load())
	opener.waitStream(t, 1).end()
	waitRun(t, s)
	assert.Equal(t, 1, opener.count())
}

// Evento end ⇒ Running → Settled y una única reconciliación, posterior al evento terminal.
func TestSession_EndReconciliaUnaVez(t *testing.T) {
	opener := &fakeOpener{}
	rec := &countingReconciler{}
	s := newTestSession(opener, rec)

	_, err := s.Start()
	require.NoError(t, err)
	stream := opener.waitStream(t, 1)
	stream.message("última línea")
	stream.end()
	waitRun(t, s)

	state := s.State()
	assert.Equal(t, entity.RunStatusSettled, state.Status)
	assert.Empty(t, state.LastError)
	assert.True(t, state.Reconciled)
	assert.Equal(t, int32(1), rec.applies.Load())
	assert.Equal(t, []entity.RunStatus{entity.RunStatusSettled}, rec.seen,
		"la reconciliación empieza con el estado terminal ya escrito")
	assert.True(t, stream.closed.Load(), "el stream se cierra antes de reconciliar")
	assert.Equal(t, []string{"última línea"}, messages(s.Logs().Entries()))
}

// Error de transporte ⇒ Running → Error y la reconciliación igual corre una vez.
func TestSession_ErrorDeTransporteReconciliaIgual(t *testing.T) {
	opener := &fakeOpener{}
	rec := &countingReconciler{}
	s := newTestSession(opener, rec)

	_, err := s.Start()
	require.NoError(t, err)
	stream := opener.waitStream(t, 1)
	stream.message("antes del corte")
	stream.fail(errors.New("connection reset by peer"))
	waitRun(t, s)

	state := s.State()
	assert.Equal(t, entity.RunStatusError, state.Status)
	assert.Contains(t, state.LastError, "connection reset")
	assert.Equal(t, int32(1), rec.applies.Load())
	assert.Equal(t, []entity.RunStatus{entity.RunStatusError}, rec.seen)
	assert.True(t, stream.closed.Load())
}

func TestSession_CierreSinEndEsError(t *testing.T) {
	opener := &fakeOpener{}
	rec := &countingReconciler{}
	s := newTestSession(opener, rec)

	_, err := s.Start()
	require.NoError(t, err)
	close(opener.waitStream(t, 1).items)
	waitRun(t, s)

	assert.Equal(t, entity.RunStatusError, s.Status())
	assert.Contains(t, s.State().LastError, "sin evento end")
	assert.Equal(t, int32(1), rec.applies.Load())
}

func TestSession_EventoErrorDelBackend(t *testing.T) {
	opener := &fakeOpener{}
	rec := &countingReconciler{}
	s := newTestSession(opener, rec)

	_, err := s.Start()
	require.NoError(t, err)
	opener.waitStream(t, 1).items <- streamItem{ev: entity.StreamEvent{Name: entity.StreamEventError, Data: "supplier API down"}}
	waitRun(t, s)

	assert.Equal(t, entity.RunStatusError, s.Status())
	assert.Contains(t, s.State().LastError, "supplier API down")
	assert.Equal(t, int32(1), rec.applies.Load())
}

func TestSession_FalloAlAbrirStream(t *testing.T) {
	opener := &fakeOpener{openErr: errors.New("dial tcp: connection refused")}
	rec := &countingReconciler{}
	s := newTestSession(opener, rec)

	_, err := s.Start()
	require.NoError(t, err, "Start no bloquea en el open; el fallo llega como transición")
	waitRun(t, s)

	assert.Equal(t, entity.RunStatusError, s.Status())
	assert.Equal(t, int32(1), rec.applies.Load())
}

func TestSession_ErrorDeReconciliacionNoEsFatal(t *testing.T) {
	opener := &fakeOpener{}
	rec := &countingReconciler{err: errors.New("sla-violations: HTTP 500")}
	s := newTestSession(opener, rec)

	_, err := s.Start()
	require.NoError(t, err)
	opener.waitStream(t, 1).end()
	waitRun(t, s)

	state := s.State()
	assert.Equal(t, entity.RunStatusSettled, state.Status, "el estado de la ejecución no cambia")
	assert.Contains(t, state.ReconcileNote, "HTTP 500")
}

func TestSession_SecuenciaMonotona(t *testing.T) {
	opener := &fakeOpener{}
	s := newTestSession(opener, &countingReconciler{})

	var seqs []uint64
	for i := 1; i <= 3; i++ {
		st, err := s.Start()
		require.NoError(t, err)
		seqs = append(seqs, st.Sequence)
		opener.waitStream(t, i).end()
		waitRun(t, s)
	}
	assert.Equal(t, []uint64{1, 2, 3}, seqs)
}
