package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyBackend sirve el inventario sólo antes de que arranque el stream; durante la
// reconciliación GET /inventory responde 500.
func flakyBackend(t *testing.T) *httptest.Server {
	t.Helper()
	var streamed atomic.Bool
	mux := http.NewServeMux()
	mux.HandleFunc("/run-full-stream", func(w http.ResponseWriter, r *http.Request) {
		streamed.Store(true)
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = fmt.Fprint(w, "data: Checking inventory levels...\n\n")
		_, _ = fmt.Fprint(w, "event: end\ndata: done\n\n")
	})
	mux.HandleFunc("/inventory", func(w http.ResponseWriter, r *http.Request) {
		if streamed.Load() {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`[
			{"item_id":"I-1","name":"Tornillo","stock_level":3,"reorder_threshold":10},
			{"item_id":"I-2","name":"Tuerca","stock_level":40,"reorder_threshold":10}
		]`))
	})
	mux.HandleFunc("/purchase-orders", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"order_id":"PO-1001","item_id":"I-1","quantity":50,"status":"pending"}]`))
	})
	mux.HandleFunc("/sla-violations", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// Un recurso que falla al reconciliar conserva el valor de la carga inicial en el resumen.
func TestRunOnce_CargaInicialAntesDeLaEjecucion(t *testing.T) {
	srv := flakyBackend(t)
	t.Setenv("BACKEND_BASE_URL", srv.URL)
	t.Setenv("RECONCILE_STRATEGY", "pull")
	t.Setenv("FETCH_MAX_RETRIES", "0")
	t.Setenv("APP_ENV", "test")
	t.Setenv("LOG_LEVEL", "error")

	var out bytes.Buffer
	runCmd.SetOut(&out)
	runCmd.SetContext(context.Background())
	t.Cleanup(func() { runCmd.SetOut(nil) })

	require.NoError(t, runOnce(runCmd, nil))

	printed := out.String()
	assert.Contains(t, printed, "Checking inventory levels...")
	assert.Contains(t, printed, "estado: settled")
	assert.Contains(t, printed, "artículos: 2 (stock bajo: 1)")
	assert.Contains(t, printed, "reconciliación:")
}
