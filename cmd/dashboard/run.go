package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jhoicas/supplychain-dashboard/internal/domain/entity"
)

// logPollInterval cada cuánto se vuelcan las líneas nuevas a la salida.
const logPollInterval = 200 * time.Millisecond

func runOnce(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := wire(ctx, cfg)
	if err != nil {
		return err
	}

	// Carga inicial: con la estrategia pull, un recurso que falle al reconciliar conserva
	// este valor en el resumen.
	if _, err := deps.dashboard.Refresh(ctx); err != nil {
		deps.log.Warn().Err(err).Msg("carga inicial")
	}

	started, err := deps.dashboard.StartRun()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ejecución %s iniciada (estrategia %s)\n", started.Run.RunID, started.Run.Strategy)

	// Volcar el log mientras la sesión no termine de reconciliar.
	done := make(chan error, 1)
	go func() { done <- deps.session.Wait(ctx) }()

	next, seq := 0, started.Run.Sequence
	flush := func() {
		page := deps.dashboard.GetLogs(next, seq)
		for _, e := range page.Entries {
			fmt.Fprintf(out, "[%s] %s\n", e.Timestamp.Format("15:04:05"), e.Message)
		}
		next, seq = page.Next, page.Sequence
	}

	ticker := time.NewTicker(logPollInterval)
	defer ticker.Stop()
	for waiting := true; waiting; {
		select {
		case <-ticker.C:
			flush()
		case err := <-done:
			flush()
			if err != nil {
				return err
			}
			waiting = false
		}
	}

	state := deps.dashboard.GetState(context.Background())
	fmt.Fprintf(out, "estado: %s\n", state.Run.Status)
	if state.Run.LastError != "" {
		fmt.Fprintf(out, "error: %s\n", state.Run.LastError)
	}
	if state.Run.ReconcileNote != "" {
		fmt.Fprintf(out, "reconciliación: %s\n", state.Run.ReconcileNote)
	}
	s := state.Summary
	fmt.Fprintf(out, "artículos: %d (stock bajo: %d) | órdenes: %d (unidades en pedido: %d) | cumplimiento: %s%% | SLA: %d\n",
		s.TotalItems, s.LowStockCount, s.TotalOrders, s.UnitsOnOrder, s.FulfillmentRate.StringFixed(2), s.SLAViolationCount)

	if state.Run.Status == string(entity.RunStatusError) {
		return fmt.Errorf("la ejecución terminó con error")
	}
	return nil
}
