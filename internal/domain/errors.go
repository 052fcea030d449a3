package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// Ninguno es fatal para el proceso: el núcleo degrada a "último estado bueno + aviso visible".
var (
	ErrNotFound         = errors.New("recurso no encontrado")
	ErrFetchFailure     = errors.New("fallo al consultar recurso del backend")
	ErrStreamTransport  = errors.New("fallo de transporte en el stream de ejecución")
	ErrMalformedPayload = errors.New("payload combinado incompleto o malformado")
	ErrRunInProgress    = errors.New("ya hay una ejecución en curso")
)
