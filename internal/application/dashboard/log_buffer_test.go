package dashboard_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/supplychain-dashboard/internal/application/dashboard"
	"github.com/jhoicas/supplychain-dashboard/internal/domain/entity"
)

func TestLogBuffer_OrdenDeLlegada(t *testing.T) {
	buf := dashboard.NewLogBuffer()
	const n = 250
	for i := 0; i < n; i++ {
		buf.Append(entity.LogEntry{Message: fmt.Sprintf("línea %d", i), Timestamp: time.Now()})
	}

	entries := buf.Entries()
	require.Len(t, entries, n)
	for i, e := range entries {
		assert.Equal(t, fmt.Sprintf("línea %d", i), e.Message)
	}
}

func TestLogBuffer_VacioNoEsNil(t *testing.T) {
	buf := dashboard.NewLogBuffer()
	assert.NotNil(t, buf.Entries())
	assert.Zero(t, buf.Len())
}

func TestLogBuffer_ClearNoAfectaCopiasPrevias(t *testing.T) {
	buf := dashboard.NewLogBuffer()
	buf.Append(entity.LogEntry{Message: "a"})
	prev := buf.Entries()

	buf.Clear()
	buf.Append(entity.LogEntry{Message: "b"})

	assert.Equal(t, "a", prev[0].Message)
	require.Len(t, buf.Entries(), 1)
	assert.Equal(t, "b", buf.Entries()[0].Message)
}

func TestLogBuffer_Since(t *testing.T) {
	buf := dashboard.NewLogBuffer()
	for _, m := range []string{"a", "b", "c"} {
		buf.Append(entity.LogEntry{Message: m})
	}

	tail := buf.Since(1)
	require.Len(t, tail, 2)
	assert.Equal(t, "b", tail[0].Message)
	assert.Empty(t, buf.Since(3))
	assert.Empty(t, buf.Since(99))
	assert.Len(t, buf.Since(-4), 3)
}
