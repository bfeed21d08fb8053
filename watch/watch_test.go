package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWatcher(t *testing.T) (*Watcher, string, string) {
	t.Helper()
	src := t.TempDir()
	out := t.TempDir()

	w, err := New(src, out, false, 50*time.Millisecond)
	require.NoError(t, err)
	t.Cleanup(func() { w.fsw.Close() })
	return w, src, out
}

func TestWantsFile(t *testing.T) {
	w, src, _ := newTestWatcher(t)

	assert.True(t, w.wantsFile(filepath.Join(src, "export.jsonl")))
	assert.False(t, w.wantsFile(filepath.Join(src, "export.json")))
	assert.False(t, w.wantsFile(filepath.Join(src, "export.csv")))
	assert.False(t, w.wantsFile(filepath.Join(src, "normalized_export.jsonl")))
	assert.False(t, w.wantsFile(filepath.Join(src, "discarded_export.jsonl")))
}

func TestProcessFile(t *testing.T) {
	w, src, out := newTestWatcher(t)

	input := filepath.Join(src, "export.jsonl")
	require.NoError(t, os.WriteFile(input, []byte("{\"a\":1}\n42\n"), 0o644))

	require.NoError(t, w.ProcessFile(input))

	norm, err := os.ReadFile(filepath.Join(out, "normalized_export.jsonl"))
	require.NoError(t, err)
	assert.Equal(t, "{\"a\":1}\n", string(norm))

	disc, err := os.ReadFile(filepath.Join(out, "discarded_export.jsonl"))
	require.NoError(t, err)
	assert.Contains(t, string(disc), `"top-level value is not dict or list"`)
}

func TestEnqueueDoesNotBlockAfterRunExits(t *testing.T) {
	w, src, _ := newTestWatcher(t)

	// Saturate the ready buffer and simulate Run having returned.
	for i := 0; i < cap(w.ready); i++ {
		w.ready <- filepath.Join(src, "filler.jsonl")
	}
	close(w.done)

	finished := make(chan struct{})
	go func() {
		w.enqueue(filepath.Join(src, "late.jsonl"))
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("enqueue blocked after watcher shutdown")
	}
}

func TestProcessFileMissingInput(t *testing.T) {
	w, src, _ := newTestWatcher(t)
	err := w.ProcessFile(filepath.Join(src, "nope.jsonl"))
	assert.Error(t, err)
}
