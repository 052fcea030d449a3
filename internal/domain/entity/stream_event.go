package entity

// StreamEventEnd nombre del evento que señala la finalización limpia de una ejecución.
const StreamEventEnd = "end"

// StreamEventError nombre del evento con el que el backend informa un fallo del job.
const StreamEventError = "error"

// StreamEvent evento despachado por el stream de ejecución.
// Name vacío (o "message") corresponde al evento por defecto: una línea de log.
type StreamEvent struct {
	Name string
	Data string
}

// IsDefault indica si el evento es una línea de log.
func (e StreamEvent) IsDefault() bool {
	return e.Name == "" || e.Name == "message"
}
