package backend

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jhoicas/supplychain-dashboard/internal/domain"
	"github.com/jhoicas/supplychain-dashboard/internal/domain/entity"
)

// maxSSELine tamaño máximo de una línea del stream.
const maxSSELine = 1 << 20

// SSEDecoder lee eventos text/event-stream línea por línea.
//
// Campos soportados: "event" y "data" (varias líneas data se unen con "\n").
// "id" y "retry" se ignoran; las líneas que empiezan con ":" son comentarios.
// Un evento se despacha con la línea en blanco que lo cierra.
type SSEDecoder struct {
	scanner *bufio.Scanner

	name    string
	data    []string
	pending bool
}

// NewSSEDecoder crea un decoder sobre r.
func NewSSEDecoder(r io.Reader) *SSEDecoder {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxSSELine)
	return &SSEDecoder{scanner: scanner}
}

// Next devuelve el siguiente evento. Al cerrarse el stream retorna io.EOF;
// un evento "end" sin línea en blanco final se despacha igual antes del EOF.
func (d *SSEDecoder) Next() (entity.StreamEvent, error) {
	for d.scanner.Scan() {
		line := strings.TrimSuffix(d.scanner.Text(), "\r")

		if line == "" {
			if d.pending {
				return d.dispatch(), nil
			}
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")

		switch field {
		case "event":
			d.name = value
			d.pending = true
		case "data":
			d.data = append(d.data, value)
			d.pending = true
		}
	}

	if err := d.scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return entity.StreamEvent{}, fmt.Errorf("%w: línea SSE supera %d bytes", domain.ErrStreamTransport, maxSSELine)
		}
		return entity.StreamEvent{}, err
	}

	if d.pending && d.name == entity.StreamEventEnd {
		return d.dispatch(), nil
	}
	return entity.StreamEvent{}, io.EOF
}

func (d *SSEDecoder) dispatch() entity.StreamEvent {
	ev := entity.StreamEvent{
		Name: d.name,
		Data: strings.Join(d.data, "\n"),
	}
	d.name = ""
	d.data = nil
	d.pending = false
	return ev
}
