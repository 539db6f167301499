package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestWatcher_DebouncesChanges(t *testing.T) {
	dir := t.TempDir()
	watched := filepath.Join(dir, "sidebars.json")
	other := filepath.Join(dir, "other.json")
	require.NoError(t, os.WriteFile(watched, []byte("[]"), 0o644))

	var mu sync.Mutex
	var calls [][]string
	w, err := New([]string{watched}, 50*time.Millisecond, func(_ context.Context, changed []string) error {
		mu.Lock()
		defer mu.Unlock()
		calls = append(calls, changed)
		return nil
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(other, []byte("{}"), 0o644))
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(watched, []byte(`["a"]`), 0o644))
	}

	abs, err := filepath.Abs(watched)
	require.NoError(t, err)
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(calls) > 0
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	mu.Lock()
	defer mu.Unlock()
	for _, c := range calls {
		assert.Equal(t, []string{abs}, c)
	}
}

func TestNew_RequiresFiles(t *testing.T) {
	_, err := New(nil, 0, func(context.Context, []string) error { return nil })
	require.Error(t, err)
}
