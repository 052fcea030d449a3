package entity

import "time"

// LogEntry línea recibida por el stream de ejecución.
// Timestamp es la hora de recepción en el cliente; el protocolo no transmite hora del servidor.
type LogEntry struct {
	Message   string
	Timestamp time.Time
}
