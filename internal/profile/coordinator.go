// Package profile composes the profile summary with the feed store scoped
// to that profile's author and resolves self-vs-other viewing mode.
package profile

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"chirp/internal/core"
	"chirp/internal/feed"
	"chirp/internal/session"
	"chirp/internal/syncer"
)

type Mode string

const (
	ModeSelf  Mode = "self"
	ModeOther Mode = "other"
)

type Coordinator struct {
	Logger  *slog.Logger
	API     core.SocialAPI
	Session *session.Manager
	Syncer  *syncer.Synchronizer
	Feed    *feed.Store

	mu      sync.Mutex
	mode    Mode
	summary *core.ProfileSummary
}

func (c *Coordinator) Init(_ context.Context) error {
	c.Logger = c.Logger.With("component", "profile.Coordinator")
	return nil
}

// ResolveMode decides whether target is the viewer's own profile. A route
// parameter arrives as text and is compared by parsed numeric value, never
// by raw string equality.
func ResolveMode(target string, sess *core.Session) (Mode, int64, error) {
	if sess == nil {
		return "", 0, core.ErrNoSession
	}

	if target == "" {
		return ModeSelf, sess.UserID, nil
	}

	id, err := strconv.ParseInt(target, 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("%w: user id %q is not numeric", core.ErrValidation, target)
	}

	if id == sess.UserID {
		return ModeSelf, id, nil
	}
	return ModeOther, id, nil
}

// Load resolves the viewing mode, fetches the profile summary and loads
// the feed scoped to that user. Gated: no session, no requests.
func (c *Coordinator) Load(ctx context.Context, target string) error {
	mode, userID, err := ResolveMode(target, c.Session.Current())
	if err != nil {
		return err
	}

	var scope *int64
	if mode == ModeOther {
		scope = &userID
	}

	summary, err := c.API.Profile(ctx, scope)
	if err != nil {
		return err
	}

	if err := c.Feed.Load(ctx, &summary.UserID); err != nil {
		return err
	}

	c.mu.Lock()
	c.mode = mode
	c.summary = summary
	c.mu.Unlock()

	return nil
}

func (c *Coordinator) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Summary returns a copy of the loaded profile, or nil before Load.
func (c *Coordinator) Summary() *core.ProfileSummary {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.summary == nil {
		return nil
	}
	summary := *c.summary
	return &summary
}

// UpdateProfile is self-only and never optimistic: the local summary is
// replaced with the server's canonical values after confirmation.
func (c *Coordinator) UpdateProfile(ctx context.Context, update core.ProfileUpdate) (*core.ProfileSummary, error) {
	if c.Mode() != ModeSelf {
		return nil, core.ErrNotSelf
	}

	summary, err := c.API.UpdateProfile(ctx, update)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.summary = summary
	c.mu.Unlock()

	return c.Summary(), nil
}

// ToggleFollow flips the follow state optimistically; the endpoint is
// chosen from the applied intent, so while the call is outstanding the
// view already shows the result. Forbidden on one's own profile.
func (c *Coordinator) ToggleFollow(ctx context.Context) (<-chan error, bool, error) {
	c.mu.Lock()
	if c.summary == nil {
		c.mu.Unlock()
		return nil, false, core.ErrNotFound
	}
	if c.mode == ModeSelf {
		c.mu.Unlock()
		return nil, false, core.ErrSelfFollow
	}
	userID := c.summary.UserID
	c.mu.Unlock()

	key := core.InteractionKey{Entity: core.EntityProfile, ID: userID, Kind: core.InteractionFollow}

	done, accepted := syncer.Run(ctx, c.Syncer, syncer.Toggle[core.FollowState]{
		Key: key,
		Snapshot: func() (core.FollowState, bool) {
			c.mu.Lock()
			defer c.mu.Unlock()

			if c.summary == nil || c.summary.UserID != userID {
				return core.FollowState{}, false
			}
			return core.FollowState{
				IsFollowing:   c.summary.ViewerIsFollowing,
				FollowerCount: c.summary.FollowerCount,
			}, true
		},
		Apply: func() {
			c.mu.Lock()
			defer c.mu.Unlock()

			if c.summary == nil {
				return
			}
			if c.summary.ViewerIsFollowing {
				c.summary.FollowerCount--
			} else {
				c.summary.FollowerCount++
			}
			c.summary.ViewerIsFollowing = !c.summary.ViewerIsFollowing
		},
		Call: func(ctx context.Context) (core.FollowState, error) {
			c.mu.Lock()
			following := c.summary != nil && c.summary.ViewerIsFollowing
			c.mu.Unlock()

			// The optimistic state carries the intent: explicit follow and
			// unfollow endpoints, no ambiguous toggle.
			if following {
				return c.API.Follow(ctx, userID)
			}
			return c.API.Unfollow(ctx, userID)
		},
		Reconcile: func(canonical core.FollowState) {
			c.writeFollowState(userID, canonical)
		},
		Rollback: func(snap core.FollowState) {
			c.writeFollowState(userID, snap)
		},
	})

	return done, accepted, nil
}

func (c *Coordinator) writeFollowState(userID int64, state core.FollowState) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.summary == nil || c.summary.UserID != userID {
		return
	}
	c.summary.ViewerIsFollowing = state.IsFollowing
	c.summary.FollowerCount = state.FollowerCount
}

// FollowList fetches the followers or following listing for userID.
func (c *Coordinator) FollowList(ctx context.Context, userID int64, kind core.FollowListKind) ([]*core.ProfileSummary, error) {
	if c.Session.Current() == nil {
		return nil, core.ErrNoSession
	}
	return c.API.FollowList(ctx, userID, kind)
}
