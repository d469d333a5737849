package async_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"chirp/pkg/async"
)

func TestEachLimit(t *testing.T) {
	t.Parallel()

	t.Run("visits every element", func(t *testing.T) {
		t.Parallel()

		var mu sync.Mutex
		seen := map[int]bool{}

		async.EachLimit(t.Context(), []int{1, 2, 3, 4, 5}, 2, func(_ context.Context, i int) {
			mu.Lock()
			seen[i] = true
			mu.Unlock()
		})

		require.Len(t, seen, 5)
	})

	t.Run("bounds concurrency", func(t *testing.T) {
		t.Parallel()

		var active, peak atomic.Int64

		async.EachLimit(t.Context(), make([]struct{}, 50), 4, func(_ context.Context, _ struct{}) {
			n := active.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			active.Add(-1)
		})

		require.LessOrEqual(t, peak.Load(), int64(4))
	})

	t.Run("empty collection returns immediately", func(t *testing.T) {
		t.Parallel()

		async.EachLimit(t.Context(), nil, 4, func(_ context.Context, _ int) {
			t.Fatal("iteratee must not run")
		})
	})
}
