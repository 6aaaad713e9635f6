package tasks

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iknowag/engage-go/internal/infrastructure/observability/logging"
)

func testLogger(t *testing.T) *logging.ChanneledLogger {
	t.Helper()
	logger, err := logging.NewChanneledLogger(&logging.LoggerConfig{
		OutputToFile:    false,
		OutputToConsole: false,
	})
	require.NoError(t, err)
	return logger
}

func TestDispatcherRunsTasks(t *testing.T) {
	d := NewDispatcher(4, 16, testLogger(t))

	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := 0

	for i := 0; i < 20; i++ {
		wg.Add(1)
		ok := d.Enqueue(fmt.Sprintf("visitor-%d", i), func() {
			defer wg.Done()
			mu.Lock()
			seen++
			mu.Unlock()
		})
		require.True(t, ok)
	}

	wg.Wait()
	d.Close()
	require.Equal(t, 20, seen)
}

func TestDispatcherPreservesOrderPerKey(t *testing.T) {
	d := NewDispatcher(8, 64, testLogger(t))

	const perKey = 50
	keys := []string{"visitor-a", "visitor-b", "visitor-c"}

	var mu sync.Mutex
	order := make(map[string][]int)
	var wg sync.WaitGroup

	for i := 0; i < perKey; i++ {
		for _, key := range keys {
			key, i := key, i
			wg.Add(1)
			ok := d.Enqueue(key, func() {
				defer wg.Done()
				mu.Lock()
				order[key] = append(order[key], i)
				mu.Unlock()
			})
			require.True(t, ok)
		}
	}

	wg.Wait()
	d.Close()

	for _, key := range keys {
		require.Len(t, order[key], perKey)
		for i, got := range order[key] {
			require.Equal(t, i, got, "task %d for %s ran out of order", i, key)
		}
	}
}

func TestDispatcherDropsWhenShardFull(t *testing.T) {
	d := NewDispatcher(1, 1, testLogger(t))
	defer d.Close()

	release := make(chan struct{})
	started := make(chan struct{})

	require.True(t, d.Enqueue("k", func() {
		close(started)
		<-release
	}))
	<-started

	// One slot in the queue, then the shard is full.
	require.True(t, d.Enqueue("k", func() {}))

	dropped := false
	for i := 0; i < 5; i++ {
		if !d.Enqueue("k", func() {}) {
			dropped = true
			break
		}
	}
	require.True(t, dropped, "expected a full shard to drop instead of block")

	close(release)
}

func TestDispatcherCloseDrainsQueuedTasks(t *testing.T) {
	d := NewDispatcher(2, 32, testLogger(t))

	var mu sync.Mutex
	done := 0
	for i := 0; i < 30; i++ {
		require.True(t, d.Enqueue(fmt.Sprintf("visitor-%d", i%4), func() {
			mu.Lock()
			done++
			mu.Unlock()
		}))
	}

	d.Close()
	require.Equal(t, 30, done)

	// After close new work is rejected, not queued.
	require.False(t, d.Enqueue("late", func() {}))
}
