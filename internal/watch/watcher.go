// Package watch polls the home timeline and streams posts it has not
// announced before. Read-only: nothing here mutates interaction state.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/zhulik/pips"
	"github.com/zhulik/pips/apply"

	"chirp/internal/config"
	"chirp/internal/core"
	"chirp/internal/session"
)

type Watcher struct {
	Logger  *slog.Logger
	Config  *config.Config
	Session *session.Manager
	Feed    core.TimelineLoader

	// Notify receives each fresh post. Defaults to printing on stdout.
	Notify func(core.Post)

	seen   map[int64]struct{}
	primed bool
}

func (w *Watcher) Init(_ context.Context) error {
	w.Logger = w.Logger.With("component", "watch.Watcher")
	w.seen = map[int64]struct{}{}

	if w.Notify == nil {
		w.Notify = func(post core.Post) {
			fmt.Printf("%s @%s: %s\n", post.CreatedAt.Format(time.Kitchen), post.Username, post.Content)
		}
	}

	return nil
}

func (w *Watcher) Run(ctx context.Context) error {
	if w.Session.Current() == nil {
		return core.ErrNoSession
	}

	interval := w.Config.WatchInterval
	if interval <= 0 {
		interval = 10 * time.Second
	}

	ticks := make(chan pips.D[time.Time])

	go func() {
		defer close(ticks)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		// Poll once right away, then on every tick.
		select {
		case ticks <- pips.NewD(time.Now()):
		case <-ctx.Done():
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case tick := <-ticker.C:
				select {
				case ticks <- pips.NewD(tick):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	w.Logger.Info("watching the timeline", "interval", interval)

	err := pips.New[time.Time, []core.Post]().
		Then(apply.Map(w.poll)).
		Then(apply.Each(w.announce)).
		Run(ctx, ticks).
		Wait(ctx)

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// poll reloads the timeline and returns the posts not seen before. The
// first load only primes the seen set, so starting the watcher does not
// replay the whole timeline. Transient failures skip the tick; an
// authentication failure stops the watcher.
func (w *Watcher) poll(ctx context.Context, _ time.Time) ([]core.Post, error) {
	if err := w.Feed.Load(ctx, nil); err != nil {
		if errors.Is(err, core.ErrUnauthorized) || errors.Is(err, core.ErrNoSession) {
			return nil, err
		}
		w.Logger.Warn("timeline poll failed, retrying on the next tick", "error", err)
		return nil, nil
	}

	var fresh []core.Post
	for _, post := range w.Feed.Posts() {
		if _, ok := w.seen[post.ID]; ok {
			continue
		}
		w.seen[post.ID] = struct{}{}
		fresh = append(fresh, post)
	}

	if !w.primed {
		w.primed = true
		return nil, nil
	}

	return fresh, nil
}

func (w *Watcher) announce(_ context.Context, posts []core.Post) error {
	for _, post := range posts {
		w.Notify(post)
	}
	return nil
}
