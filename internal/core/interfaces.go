package core

import (
	"context"
)

// AuthAPI is the unauthenticated part of the backend collaborator.
type AuthAPI interface {
	Signup(ctx context.Context, username, password string) error
	Login(ctx context.Context, username, password string) (*Session, error)
}

// SocialAPI is the bearer-authenticated part of the backend collaborator.
// Every call fails with ErrNoSession before touching the network when no
// session is present.
type SocialAPI interface {
	Profile(ctx context.Context, userID *int64) (*ProfileSummary, error)
	UpdateProfile(ctx context.Context, update ProfileUpdate) (*ProfileSummary, error)

	Posts(ctx context.Context, authorID *int64) ([]*Post, error)
	CreatePost(ctx context.Context, draft PostDraft) (*Post, error)
	DeletePost(ctx context.Context, id int64) error
	ToggleLike(ctx context.Context, postID int64) (LikeState, error)

	Comments(ctx context.Context, postID int64) ([]*Comment, error)
	CreateComment(ctx context.Context, postID int64, content string) (*Comment, error)

	Follow(ctx context.Context, userID int64) (FollowState, error)
	Unfollow(ctx context.Context, userID int64) (FollowState, error)
	FollowList(ctx context.Context, userID int64, kind FollowListKind) ([]*ProfileSummary, error)

	AdminUsers(ctx context.Context) ([]*AdminUser, error)
}

// SessionStore persists the session across process restarts. Load returns
// (nil, nil) when nothing is stored.
type SessionStore interface {
	Load(ctx context.Context) (*Session, error)
	Save(ctx context.Context, session Session) error
	Clear(ctx context.Context) error
}

// TimelineLoader is the read side of the feed store, enough for pollers.
type TimelineLoader interface {
	Load(ctx context.Context, authorID *int64) error
	Posts() []Post
}
