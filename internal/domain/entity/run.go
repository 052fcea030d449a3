package entity

import "time"

// RunStatus estado del ciclo de vida de una ejecución.
type RunStatus string

// Estados de RunSession: Idle → Running → Settled | Error → (nuevo Start) Running.
const (
	RunStatusIdle    RunStatus = "idle"
	RunStatusRunning RunStatus = "running"
	RunStatusSettled RunStatus = "settled"
	RunStatusError   RunStatus = "error"
)

// Terminal indica si el estado cierra una ejecución.
func (s RunStatus) Terminal() bool {
	return s == RunStatusSettled || s == RunStatusError
}

// RunState fotografía de la sesión de ejecución para la vista.
type RunState struct {
	RunID         string
	Sequence      uint64
	Status        RunStatus
	Strategy      string
	StartedAt     time.Time
	FinishedAt    time.Time
	LastError     string
	Reconciled    bool
	ReconcileNote string
}
