// Package syncer is the optimistic-update engine behind every togglable
// interaction (like/unlike, follow/unfollow). It applies the local guess
// immediately, confirms it with one round trip, and reconciles or rolls
// back when that round trip settles.
package syncer

import (
	"context"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"chirp/internal/core"
)

var (
	toggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chirp_toggle_mutations_total",
		Help: "The total number of toggle mutations by interaction kind and outcome.",
	}, []string{"kind", "outcome"})
)

// Toggle describes one toggle mutation over an entity whose relevant state
// is S. All callbacks read or write the owning store under its own lock;
// none of them may call back into the Synchronizer.
type Toggle[S any] struct {
	Key core.InteractionKey

	// Snapshot returns the entity's current toggle state. ok is false when
	// the entity is no longer in its owning store.
	Snapshot func() (snap S, ok bool)

	// Apply writes the optimistic guess to the live entity.
	Apply func()

	// Call performs the confirming round trip and returns the canonical
	// state.
	Call func(ctx context.Context) (S, error)

	// Reconcile overwrites the entity with the canonical state. Never a
	// merge: concurrent external actors may have moved the count
	// independently of our guess.
	Reconcile func(canonical S)

	// Rollback restores the pre-click snapshot exactly.
	Rollback func(snap S)
}

// Synchronizer guarantees at most one outstanding mutation per interaction
// key. A duplicate toggle while one is in flight is dropped, not queued.
type Synchronizer struct {
	Logger *slog.Logger

	mu       sync.Mutex
	inFlight map[core.InteractionKey]struct{}
}

func (s *Synchronizer) Init(_ context.Context) error {
	s.inFlight = map[core.InteractionKey]struct{}{}
	s.Logger = s.Logger.With("component", "syncer.Synchronizer")
	return nil
}

// InFlight reports whether a mutation for key is currently outstanding.
func (s *Synchronizer) InFlight(key core.InteractionKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, busy := s.inFlight[key]
	return busy
}

// Run accepts or drops a toggle. The in-flight check, the snapshot and the
// optimistic apply happen under one mutex hold, so two clicks on the same
// key can never both pass the guard.
//
// When accepted, done receives the settle error (nil on success) exactly
// once after reconcile/rollback ran and the key was released. When dropped,
// done is nil.
func Run[S any](ctx context.Context, s *Synchronizer, t Toggle[S]) (done <-chan error, accepted bool) {
	s.mu.Lock()

	if _, busy := s.inFlight[t.Key]; busy {
		s.mu.Unlock()
		toggles.WithLabelValues(string(t.Key.Kind), "dropped").Inc()
		s.Logger.Debug("toggle dropped, already in flight", "key", t.Key)
		return nil, false
	}

	snap, ok := t.Snapshot()
	if !ok {
		s.mu.Unlock()
		toggles.WithLabelValues(string(t.Key.Kind), "missing").Inc()
		return nil, false
	}

	t.Apply()
	s.inFlight[t.Key] = struct{}{}
	s.mu.Unlock()

	ch := make(chan error, 1)

	go func() {
		canonical, err := t.Call(ctx)

		s.mu.Lock()
		if _, alive := t.Snapshot(); !alive {
			// The entity was removed while the call was outstanding.
			// Nothing to write the resolution back to.
			toggles.WithLabelValues(string(t.Key.Kind), "discarded").Inc()
		} else if err != nil {
			t.Rollback(snap)
			toggles.WithLabelValues(string(t.Key.Kind), "rolled_back").Inc()
			s.Logger.Warn("toggle failed, rolled back", "key", t.Key, "error", err)
		} else {
			t.Reconcile(canonical)
			toggles.WithLabelValues(string(t.Key.Kind), "reconciled").Inc()
		}

		// Releasing the key is the final state transition: a re-click is
		// the retry mechanism and it must be accepted from here on.
		delete(s.inFlight, t.Key)
		s.mu.Unlock()

		ch <- err
	}()

	return ch, true
}
