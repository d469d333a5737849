package profile_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"chirp/internal/core"
	"chirp/internal/feed"
	"chirp/internal/profile"
	"chirp/internal/session"
	"chirp/internal/syncer"
)

var errBackend = errors.New("backend rejected")

type fakeAPI struct {
	ProfileFn       func(ctx context.Context, userID *int64) (*core.ProfileSummary, error)
	UpdateProfileFn func(ctx context.Context, update core.ProfileUpdate) (*core.ProfileSummary, error)
	FollowFn        func(ctx context.Context, userID int64) (core.FollowState, error)
	UnfollowFn      func(ctx context.Context, userID int64) (core.FollowState, error)
	FollowListFn    func(ctx context.Context, userID int64, kind core.FollowListKind) ([]*core.ProfileSummary, error)
}

func (f *fakeAPI) Profile(ctx context.Context, userID *int64) (*core.ProfileSummary, error) {
	return f.ProfileFn(ctx, userID)
}

func (f *fakeAPI) UpdateProfile(ctx context.Context, update core.ProfileUpdate) (*core.ProfileSummary, error) {
	return f.UpdateProfileFn(ctx, update)
}

func (f *fakeAPI) Follow(ctx context.Context, userID int64) (core.FollowState, error) {
	return f.FollowFn(ctx, userID)
}

func (f *fakeAPI) Unfollow(ctx context.Context, userID int64) (core.FollowState, error) {
	return f.UnfollowFn(ctx, userID)
}

func (f *fakeAPI) FollowList(ctx context.Context, userID int64, kind core.FollowListKind) ([]*core.ProfileSummary, error) {
	return f.FollowListFn(ctx, userID, kind)
}

func (f *fakeAPI) Posts(context.Context, *int64) ([]*core.Post, error) {
	return nil, nil
}

func (f *fakeAPI) Comments(context.Context, int64) ([]*core.Comment, error) {
	return nil, nil
}

func (f *fakeAPI) CreatePost(context.Context, core.PostDraft) (*core.Post, error) {
	panic("not used")
}

func (f *fakeAPI) DeletePost(context.Context, int64) error {
	panic("not used")
}

func (f *fakeAPI) CreateComment(context.Context, int64, string) (*core.Comment, error) {
	panic("not used")
}

func (f *fakeAPI) ToggleLike(context.Context, int64) (core.LikeState, error) {
	panic("not used")
}

func (f *fakeAPI) AdminUsers(context.Context) ([]*core.AdminUser, error) {
	panic("not used")
}

type memStore struct {
	session *core.Session
}

func (s *memStore) Load(context.Context) (*core.Session, error) { return s.session, nil }

func (s *memStore) Save(_ context.Context, sess core.Session) error {
	s.session = &sess
	return nil
}

func (s *memStore) Clear(context.Context) error {
	s.session = nil
	return nil
}

type noAuth struct{}

func (noAuth) Signup(context.Context, string, string) error { panic("not used") }

func (noAuth) Login(context.Context, string, string) (*core.Session, error) { panic("not used") }

func summary(userID int64) *core.ProfileSummary {
	return &core.ProfileSummary{UserID: userID, Username: "grace", FollowerCount: 3}
}

// newCoordinator wires a coordinator over fakes, logged in as user 7.
func newCoordinator(t *testing.T, api *fakeAPI) *profile.Coordinator {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	sess := core.Session{Token: "t0ken", UserID: 7, Username: "ada"}
	manager := &session.Manager{Logger: logger, API: noAuth{}, Store: &memStore{session: &sess}}
	require.NoError(t, manager.Init(t.Context()))

	sync := &syncer.Synchronizer{Logger: logger}
	require.NoError(t, sync.Init(t.Context()))

	store := &feed.Store{Logger: logger, API: api, Syncer: sync}
	require.NoError(t, store.Init(t.Context()))

	c := &profile.Coordinator{Logger: logger, API: api, Session: manager, Syncer: sync, Feed: store}
	require.NoError(t, c.Init(t.Context()))
	return c
}

func TestResolveMode(t *testing.T) {
	t.Parallel()

	sess := &core.Session{UserID: 7}

	tests := []struct {
		target string
		mode   profile.Mode
		userID int64
	}{
		{"", profile.ModeSelf, 7},
		{"7", profile.ModeSelf, 7},
		{"8", profile.ModeOther, 8},
	}

	for _, tt := range tests {
		t.Run("target "+tt.target, func(t *testing.T) {
			t.Parallel()

			mode, userID, err := profile.ResolveMode(tt.target, sess)
			require.NoError(t, err)
			require.Equal(t, tt.mode, mode)
			require.Equal(t, tt.userID, userID)
		})
	}

	t.Run("no session", func(t *testing.T) {
		t.Parallel()

		_, _, err := profile.ResolveMode("7", nil)
		require.ErrorIs(t, err, core.ErrNoSession)
	})

	t.Run("non-numeric target", func(t *testing.T) {
		t.Parallel()

		_, _, err := profile.ResolveMode("ada", sess)
		require.ErrorIs(t, err, core.ErrValidation)
	})
}

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("self profile", func(t *testing.T) {
		t.Parallel()

		api := &fakeAPI{ProfileFn: func(_ context.Context, userID *int64) (*core.ProfileSummary, error) {
			require.Nil(t, userID)
			return summary(7), nil
		}}

		c := newCoordinator(t, api)
		require.NoError(t, c.Load(t.Context(), ""))
		require.Equal(t, profile.ModeSelf, c.Mode())
		require.EqualValues(t, 7, c.Summary().UserID)
	})

	t.Run("other profile by route parameter", func(t *testing.T) {
		t.Parallel()

		api := &fakeAPI{ProfileFn: func(_ context.Context, userID *int64) (*core.ProfileSummary, error) {
			require.NotNil(t, userID)
			require.EqualValues(t, 8, *userID)
			return summary(8), nil
		}}

		c := newCoordinator(t, api)
		require.NoError(t, c.Load(t.Context(), "8"))
		require.Equal(t, profile.ModeOther, c.Mode())
	})
}

func TestUpdateProfile(t *testing.T) {
	t.Parallel()

	t.Run("replaces the summary with canonical values", func(t *testing.T) {
		t.Parallel()

		api := &fakeAPI{
			ProfileFn: func(context.Context, *int64) (*core.ProfileSummary, error) {
				return summary(7), nil
			},
			UpdateProfileFn: func(_ context.Context, update core.ProfileUpdate) (*core.ProfileSummary, error) {
				s := summary(7)
				s.Nickname = update.Nickname
				s.Bio = "server-normalized bio"
				return s, nil
			},
		}

		c := newCoordinator(t, api)
		require.NoError(t, c.Load(t.Context(), ""))

		updated, err := c.UpdateProfile(t.Context(), core.ProfileUpdate{Nickname: "Ada", Bio: "raw"})
		require.NoError(t, err)
		require.Equal(t, "Ada", updated.Nickname)
		// The server's canonical rendition wins over what was submitted.
		require.Equal(t, "server-normalized bio", c.Summary().Bio)
	})

	t.Run("forbidden on another profile", func(t *testing.T) {
		t.Parallel()

		api := &fakeAPI{ProfileFn: func(context.Context, *int64) (*core.ProfileSummary, error) {
			return summary(8), nil
		}}

		c := newCoordinator(t, api)
		require.NoError(t, c.Load(t.Context(), "8"))

		_, err := c.UpdateProfile(t.Context(), core.ProfileUpdate{Nickname: "x"})
		require.ErrorIs(t, err, core.ErrNotSelf)
	})

	t.Run("rejected edit mutates nothing", func(t *testing.T) {
		t.Parallel()

		api := &fakeAPI{
			ProfileFn: func(context.Context, *int64) (*core.ProfileSummary, error) {
				return summary(7), nil
			},
			UpdateProfileFn: func(context.Context, core.ProfileUpdate) (*core.ProfileSummary, error) {
				return nil, errBackend
			},
		}

		c := newCoordinator(t, api)
		require.NoError(t, c.Load(t.Context(), ""))

		_, err := c.UpdateProfile(t.Context(), core.ProfileUpdate{})
		require.ErrorIs(t, err, errBackend)
		require.Empty(t, c.Summary().Nickname)
	})
}

func TestToggleFollow(t *testing.T) {
	t.Parallel()

	other := func(t *testing.T, api *fakeAPI) *profile.Coordinator {
		t.Helper()

		api.ProfileFn = func(context.Context, *int64) (*core.ProfileSummary, error) {
			return summary(8), nil
		}
		c := newCoordinator(t, api)
		require.NoError(t, c.Load(t.Context(), "8"))
		return c
	}

	t.Run("optimistic follow then reconciled", func(t *testing.T) {
		t.Parallel()

		release := make(chan struct{})
		var follows, unfollows atomic.Int64

		api := &fakeAPI{
			FollowFn: func(_ context.Context, userID int64) (core.FollowState, error) {
				follows.Add(1)
				require.EqualValues(t, 8, userID)
				<-release
				return core.FollowState{IsFollowing: true, FollowerCount: 9}, nil
			},
			UnfollowFn: func(context.Context, int64) (core.FollowState, error) {
				unfollows.Add(1)
				return core.FollowState{}, nil
			},
		}
		c := other(t, api)

		done, accepted, err := c.ToggleFollow(t.Context())
		require.NoError(t, err)
		require.True(t, accepted)

		// Immediate local feedback.
		require.True(t, c.Summary().ViewerIsFollowing)
		require.EqualValues(t, 4, c.Summary().FollowerCount)

		// Re-click while outstanding is dropped.
		_, again, err := c.ToggleFollow(t.Context())
		require.NoError(t, err)
		require.False(t, again)

		close(release)
		require.NoError(t, <-done)

		require.EqualValues(t, 1, follows.Load())
		require.Zero(t, unfollows.Load())
		require.EqualValues(t, 9, c.Summary().FollowerCount)
	})

	t.Run("unfollow uses the explicit endpoint", func(t *testing.T) {
		t.Parallel()

		api := &fakeAPI{
			UnfollowFn: func(context.Context, int64) (core.FollowState, error) {
				return core.FollowState{IsFollowing: false, FollowerCount: 2}, nil
			},
		}
		api.ProfileFn = func(context.Context, *int64) (*core.ProfileSummary, error) {
			s := summary(8)
			s.ViewerIsFollowing = true
			return s, nil
		}

		c := newCoordinator(t, api)
		require.NoError(t, c.Load(t.Context(), "8"))

		done, accepted, err := c.ToggleFollow(t.Context())
		require.NoError(t, err)
		require.True(t, accepted)
		require.NoError(t, <-done)

		require.False(t, c.Summary().ViewerIsFollowing)
		require.EqualValues(t, 2, c.Summary().FollowerCount)
	})

	t.Run("failure rolls back to the snapshot", func(t *testing.T) {
		t.Parallel()

		api := &fakeAPI{
			FollowFn: func(context.Context, int64) (core.FollowState, error) {
				return core.FollowState{}, errBackend
			},
		}
		c := other(t, api)

		done, accepted, err := c.ToggleFollow(t.Context())
		require.NoError(t, err)
		require.True(t, accepted)
		require.ErrorIs(t, <-done, errBackend)

		require.False(t, c.Summary().ViewerIsFollowing)
		require.EqualValues(t, 3, c.Summary().FollowerCount)

		// Eligible for a fresh attempt.
		_, accepted, err = c.ToggleFollow(t.Context())
		require.NoError(t, err)
		require.True(t, accepted)
	})

	t.Run("forbidden on own profile", func(t *testing.T) {
		t.Parallel()

		api := &fakeAPI{ProfileFn: func(context.Context, *int64) (*core.ProfileSummary, error) {
			return summary(7), nil
		}}

		c := newCoordinator(t, api)
		require.NoError(t, c.Load(t.Context(), ""))

		_, _, err := c.ToggleFollow(t.Context())
		require.ErrorIs(t, err, core.ErrSelfFollow)
	})
}

func TestFollowList(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{FollowListFn: func(_ context.Context, userID int64, kind core.FollowListKind) ([]*core.ProfileSummary, error) {
		require.EqualValues(t, 8, userID)
		require.Equal(t, core.Followers, kind)
		return []*core.ProfileSummary{summary(9)}, nil
	}}

	c := newCoordinator(t, api)

	list, err := c.FollowList(t.Context(), 8, core.Followers)
	require.NoError(t, err)
	require.Len(t, list, 1)
}
