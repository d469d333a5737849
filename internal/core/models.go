package core

import (
	"io"
	"time"
)

// Session is the authenticated identity context. It exists only while the
// viewer is logged in; everything personalized is gated on it.
type Session struct {
	Token    string `json:"token"`
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
}

// Post is a single timeline entry as the backend serves it.
type Post struct {
	ID        int64     `json:"id"`
	AuthorID  int64     `json:"user_id"`
	Username  string    `json:"username"`
	Content   string    `json:"content"`
	ImageURL  string    `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	// LikeCount and ViewerHasLiked are mutated only through the toggle
	// synchronizer.
	LikeCount      int64 `json:"likes"`
	ViewerHasLiked bool  `json:"isLiked"`
}

// Comment is append-only per post and ordered by creation. Its id is
// server-assigned; a comment never exists locally before the backend
// confirmed it.
type Comment struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"post_id"`
	AuthorID  int64     `json:"user_id"`
	Username  string    `json:"username"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ProfileSummary describes a user as seen by the current viewer.
type ProfileSummary struct {
	UserID    int64  `json:"user_id"`
	Username  string `json:"username"`
	Nickname  string `json:"nickname"`
	Bio       string `json:"bio"`
	AvatarURL string `json:"profile_image,omitempty"`

	// FollowerCount and ViewerIsFollowing are mutated only through the
	// toggle synchronizer.
	FollowerCount     int64 `json:"followerCount"`
	FollowingCount    int64 `json:"followingCount"`
	ViewerIsFollowing bool  `json:"isFollowing"`
}

// AdminUser is a row of the admin user listing.
type AdminUser struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Nickname  string    `json:"nickname"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

// LikeState is the canonical like state of a post as returned by the
// backend after a toggle. It replaces the optimistic guess wholesale.
type LikeState struct {
	IsLiked   bool  `json:"isLiked"`
	LikeCount int64 `json:"likeCount"`
}

// FollowState is the canonical follow state of a profile as returned by
// the backend after a follow or unfollow.
type FollowState struct {
	IsFollowing   bool  `json:"isFollowing"`
	FollowerCount int64 `json:"followerCount"`
}

type EntityType string

const (
	EntityPost    EntityType = "post"
	EntityProfile EntityType = "profile"
)

type InteractionKind string

const (
	InteractionLike   InteractionKind = "like"
	InteractionFollow InteractionKind = "follow"
)

// InteractionKey identifies one togglable interaction on one entity. It is
// the unit of at-most-one-in-flight mutation tracking.
type InteractionKey struct {
	Entity EntityType
	ID     int64
	Kind   InteractionKind
}

type FollowListKind string

const (
	Followers FollowListKind = "followers"
	Following FollowListKind = "following"
)

// Upload is an optional file attachment for multipart requests.
type Upload struct {
	FileName string
	Reader   io.Reader
}

// PostDraft is the payload of a post creation.
type PostDraft struct {
	Content string
	Image   *Upload
}

// ProfileUpdate is the payload of a profile edit.
type ProfileUpdate struct {
	Nickname string
	Bio      string
	Avatar   *Upload
}
