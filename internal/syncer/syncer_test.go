package syncer_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"chirp/internal/core"
	"chirp/internal/syncer"
)

var errRemote = errors.New("remote call failed")

type likeState struct {
	liked bool
	count int64
}

// entityStore is a minimal stand-in for the feed store: one entity that can
// be deleted out from under an outstanding mutation.
type entityStore struct {
	mu      sync.Mutex
	deleted bool
	state   likeState
}

func (s *entityStore) snapshot() (likeState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleted {
		return likeState{}, false
	}
	return s.state, true
}

func (s *entityStore) apply() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleted {
		return
	}
	if s.state.liked {
		s.state.count--
	} else {
		s.state.count++
	}
	s.state.liked = !s.state.liked
}

func (s *entityStore) write(state likeState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

func (s *entityStore) remove() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = true
}

func (s *entityStore) current() likeState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func newSynchronizer(t *testing.T) *syncer.Synchronizer {
	t.Helper()

	s := &syncer.Synchronizer{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	require.NoError(t, s.Init(t.Context()))
	return s
}

var testKey = core.InteractionKey{Entity: core.EntityPost, ID: 1, Kind: core.InteractionLike}

// toggle builds a Toggle over store whose remote call blocks until release
// is closed, then returns canonical or callErr.
func toggle(store *entityStore, calls *atomic.Int64, release <-chan struct{}, canonical likeState, callErr error) syncer.Toggle[likeState] {
	return syncer.Toggle[likeState]{
		Key:      testKey,
		Snapshot: store.snapshot,
		Apply:    store.apply,
		Call: func(ctx context.Context) (likeState, error) {
			calls.Add(1)
			if release != nil {
				<-release
			}
			return canonical, callErr
		},
		Reconcile: store.write,
		Rollback:  store.write,
	}
}

func TestRun_SingleFlight(t *testing.T) {
	t.Parallel()

	s := newSynchronizer(t)
	store := &entityStore{}
	release := make(chan struct{})
	var calls atomic.Int64

	canonical := likeState{liked: true, count: 1}

	done, accepted := syncer.Run(t.Context(), s, toggle(store, &calls, release, canonical, nil))
	require.True(t, accepted)

	// The optimistic guess is visible before the round trip settles.
	require.Equal(t, likeState{liked: true, count: 1}, store.current())
	require.True(t, s.InFlight(testKey))

	// Rapid re-clicks while the first call is outstanding are dropped.
	for range 4 {
		dropped, ok := syncer.Run(t.Context(), s, toggle(store, &calls, release, canonical, nil))
		require.False(t, ok)
		require.Nil(t, dropped)
	}

	close(release)
	require.NoError(t, <-done)

	require.EqualValues(t, 1, calls.Load())
	require.Equal(t, canonical, store.current())
	require.False(t, s.InFlight(testKey))
}

func TestRun_ReconcileOverwritesGuess(t *testing.T) {
	t.Parallel()

	s := newSynchronizer(t)
	store := &entityStore{}
	store.write(likeState{liked: false, count: 2})
	var calls atomic.Int64

	// Other actors liked the post meanwhile: the canonical count disagrees
	// with the optimistic +1 and must win.
	canonical := likeState{liked: true, count: 5}

	done, accepted := syncer.Run(t.Context(), s, toggle(store, &calls, nil, canonical, nil))
	require.True(t, accepted)
	require.NoError(t, <-done)

	require.Equal(t, canonical, store.current())
}

func TestRun_RollbackRestoresSnapshot(t *testing.T) {
	t.Parallel()

	s := newSynchronizer(t)
	store := &entityStore{}
	store.write(likeState{liked: true, count: 7})
	var calls atomic.Int64

	done, accepted := syncer.Run(t.Context(), s, toggle(store, &calls, nil, likeState{}, errRemote))
	require.True(t, accepted)
	require.ErrorIs(t, <-done, errRemote)

	// Pre-click state, exactly.
	require.Equal(t, likeState{liked: true, count: 7}, store.current())

	// The failure released the key: a user re-click is accepted again.
	done, accepted = syncer.Run(t.Context(), s, toggle(store, &calls, nil, likeState{liked: false, count: 6}, nil))
	require.True(t, accepted)
	require.NoError(t, <-done)
	require.EqualValues(t, 2, calls.Load())
}

func TestRun_DiscardsResolutionForRemovedEntity(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		s := newSynchronizer(t)
		store := &entityStore{}
		release := make(chan struct{})
		var calls atomic.Int64

		done, accepted := syncer.Run(t.Context(), s, toggle(store, &calls, release, likeState{liked: true, count: 1}, nil))
		require.True(t, accepted)

		store.remove()
		close(release)
		require.NoError(t, <-done)

		// The canonical payload was not written back anywhere.
		require.True(t, store.deleted)
		require.False(t, s.InFlight(testKey))
	})

	t.Run("failure", func(t *testing.T) {
		t.Parallel()

		s := newSynchronizer(t)
		store := &entityStore{}
		release := make(chan struct{})
		var calls atomic.Int64

		done, accepted := syncer.Run(t.Context(), s, toggle(store, &calls, release, likeState{}, errRemote))
		require.True(t, accepted)

		store.remove()
		close(release)
		require.ErrorIs(t, <-done, errRemote)
		require.False(t, s.InFlight(testKey))
	})
}

func TestRun_RefusesMissingEntity(t *testing.T) {
	t.Parallel()

	s := newSynchronizer(t)
	store := &entityStore{}
	store.remove()
	var calls atomic.Int64

	done, accepted := syncer.Run(t.Context(), s, toggle(store, &calls, nil, likeState{}, nil))
	require.False(t, accepted)
	require.Nil(t, done)
	require.Zero(t, calls.Load())
}
