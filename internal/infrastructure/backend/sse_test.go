package backend_test

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/supplychain-dashboard/internal/domain"
	"github.com/jhoicas/supplychain-dashboard/internal/domain/entity"
	"github.com/jhoicas/supplychain-dashboard/internal/infrastructure/backend"
)

func readAll(t *testing.T, raw string) ([]entity.StreamEvent, error) {
	t.Helper()
	dec := backend.NewSSEDecoder(strings.NewReader(raw))
	var events []entity.StreamEvent
	for {
		ev, err := dec.Next()
		if err != nil {
			return events, err
		}
		events = append(events, ev)
	}
}

func TestSSEDecoder_EventosPorDefectoYEnd(t *testing.T) {
	raw := "data: Checking inventory levels...\n\n" +
		"data: Placing order PO-1001\n\n" +
		"event: end\ndata: done\n\n"

	events, err := readAll(t, raw)

	assert.ErrorIs(t, err, io.EOF)
	require.Len(t, events, 3)
	assert.True(t, events[0].IsDefault())
	assert.Equal(t, "Checking inventory levels...", events[0].Data)
	assert.Equal(t, "Placing order PO-1001", events[1].Data)
	assert.Equal(t, entity.StreamEventEnd, events[2].Name)
}

func TestSSEDecoder_MultilineaComentariosYCRLF(t *testing.T) {
	raw := ": ping\r\n" +
		"id: 7\r\n" +
		"retry: 1000\r\n" +
		"data: primera\r\n" +
		"data:segunda\r\n" +
		"\r\n"

	events, err := readAll(t, raw)

	assert.ErrorIs(t, err, io.EOF)
	require.Len(t, events, 1)
	assert.Equal(t, "primera\nsegunda", events[0].Data)
	assert.Equal(t, "", events[0].Name)
}

func TestSSEDecoder_EndSinLineaEnBlancoFinal(t *testing.T) {
	events, err := readAll(t, "data: uno\n\nevent: end\n")

	assert.ErrorIs(t, err, io.EOF)
	require.Len(t, events, 2)
	assert.Equal(t, entity.StreamEventEnd, events[1].Name)
}

func TestSSEDecoder_EventoIncompletoAlCerrarSeDescarta(t *testing.T) {
	events, err := readAll(t, "data: uno\n\ndata: a medias")

	assert.ErrorIs(t, err, io.EOF)
	require.Len(t, events, 1)
}

func TestSSEDecoder_LineaDemasiadoLarga(t *testing.T) {
	raw := "data: " + strings.Repeat("x", 2<<20) + "\n\n"

	_, err := readAll(t, raw)

	assert.ErrorIs(t, err, domain.ErrStreamTransport)
}

func TestSSEDecoder_LineasEnBlancoSueltasNoDespachan(t *testing.T) {
	events, err := readAll(t, "\n\n\n: comentario\n\n")

	assert.ErrorIs(t, err, io.EOF)
	assert.Empty(t, events)
}
