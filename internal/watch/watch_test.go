package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsDocumentFile(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"ms.yaml", true},
		{"ms.YML", true},
		{"ms.json", true},
		{"ms.yaml.swp", false},
		{"ms", false},
	}

	for _, tt := range tests {
		if got := isDocumentFile(tt.path); got != tt.expected {
			t.Errorf("isDocumentFile(%q) = %v, want %v", tt.path, got, tt.expected)
		}
	}
}

func TestMergeOperations(t *testing.T) {
	tests := []struct {
		old, new, expected Operation
	}{
		{OperationCreate, OperationUpdate, OperationCreate},
		{OperationCreate, OperationDelete, OperationDelete},
		{OperationUpdate, OperationDelete, OperationDelete},
		{OperationDelete, OperationCreate, OperationUpdate},
		{OperationUpdate, OperationUpdate, OperationUpdate},
	}

	for _, tt := range tests {
		if got := mergeOperations(tt.old, tt.new); got != tt.expected {
			t.Errorf("mergeOperations(%s, %s) = %s, want %s", tt.old, tt.new, got, tt.expected)
		}
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestWatcher_ReportsDebouncedChange(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "ms.yaml")
	other := filepath.Join(dir, "other.yaml")
	writeFile(t, file, "identifier: a\n")

	w, err := NewWatcher(100*time.Millisecond, file)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes := make(chan Event, 10)
	require.NoError(t, w.Start(ctx, changes))
	defer w.Stop()

	writeFile(t, other, "identifier: b\n")
	for i := 0; i < 5; i++ {
		writeFile(t, file, "identifier: a\n")
	}

	select {
	case ev := <-changes:
		assert.Equal(t, file, ev.Path)
		assert.Contains(t, []Operation{OperationCreate, OperationUpdate}, ev.Operation)
	case <-time.After(2 * time.Second):
		t.Fatal("no change reported")
	}

	select {
	case ev := <-changes:
		t.Fatalf("unexpected second event: %+v", ev)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	w, err := NewWatcher(0, filepath.Join(t.TempDir(), "ms.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultDebounce, w.debounceInterval)

	assert.NoError(t, w.Stop())
	require.NoError(t, w.Start(context.Background(), make(chan Event, 1)))
	assert.NoError(t, w.Stop())
	assert.NoError(t, w.Stop())
}

func TestWatcher_StartFailsForMissingDirectory(t *testing.T) {
	w, err := NewWatcher(0, filepath.Join(t.TempDir(), "missing", "ms.yaml"))
	require.NoError(t, err)
	assert.Error(t, w.Start(context.Background(), make(chan Event, 1)))
}

func TestRun_CallsHandlerUntilCancelled(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "ms.yaml")
	writeFile(t, file, "identifier: a\n")

	w, err := NewWatcher(50*time.Millisecond, file)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, w, func(_ context.Context, ev Event) error {
			calls.Add(1)
			cancel()
			return nil
		})
	}()

	// Keep touching the file until the handler has run and cancelled.
	deadline := time.After(3 * time.Second)
	for calls.Load() == 0 {
		select {
		case <-deadline:
			cancel()
			t.Fatal("handler was not called")
		case <-time.After(100 * time.Millisecond):
			writeFile(t, file, "identifier: b\n")
		}
	}

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
