package events

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopFlusher struct{ flushed int }

func (f *noopFlusher) Flush() { f.flushed++ }

func TestWriter_FramesSingleLineJSON(t *testing.T) {
	var buf bytes.Buffer
	flusher := &noopFlusher{}
	sw := NewWriter(&buf, flusher)

	require.NoError(t, sw.Write(User("how many open tickets")))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "data: "))
	assert.True(t, strings.HasSuffix(out, "\n\n"))
	assert.False(t, strings.Contains(strings.TrimSuffix(out, "\n\n"), "\n"))
	assert.Equal(t, 1, flusher.flushed)
}

func TestWriter_PreservesEventOrder(t *testing.T) {
	var buf bytes.Buffer
	sw := NewWriter(&buf, nil)

	require.NoError(t, sw.Write(User("q")))
	require.NoError(t, sw.Write(Thought("Planning")))
	require.NoError(t, sw.Write(Complete()))

	frames := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n\n")
	require.Len(t, frames, 3)
	assert.Contains(t, frames[0], `"type":"user"`)
	assert.Contains(t, frames[1], `"type":"thought"`)
	assert.Contains(t, frames[2], `"type":"complete"`)
}
