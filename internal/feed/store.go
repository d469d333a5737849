// Package feed holds the aggregate timeline view: the ordered post list
// plus a comment map keyed by post id, fetched together and replaced
// wholesale on reload. Nothing here is cached across views.
package feed

import (
	"context"
	"log/slog"
	"sync"

	"github.com/samber/lo"

	"chirp/internal/core"
	"chirp/internal/syncer"
	"chirp/pkg/async"
)

// Per-post comment fetches are independent of one another; bounded
// parallelism is a performance choice, not a correctness requirement.
const commentFetchWorkers = 4

type Store struct {
	Logger *slog.Logger
	API    core.SocialAPI
	Syncer *syncer.Synchronizer

	mu       sync.Mutex
	scope    *int64
	posts    []*core.Post
	comments map[int64][]*core.Comment
	loaded   bool
}

func (s *Store) Init(_ context.Context) error {
	s.Logger = s.Logger.With("component", "feed.Store")
	s.comments = map[int64][]*core.Comment{}
	return nil
}

// Load fetches the post list (optionally scoped to one author) and every
// post's comments. The feed becomes ready only once all fetches settled; a
// failed comment fetch degrades that one post to an empty comment list
// instead of failing the load.
func (s *Store) Load(ctx context.Context, authorID *int64) error {
	posts, err := s.API.Posts(ctx, authorID)
	if err != nil {
		return err
	}

	comments := make(map[int64][]*core.Comment, len(posts))
	var cmu sync.Mutex

	async.EachLimit(ctx, posts, commentFetchWorkers, func(ctx context.Context, post *core.Post) {
		list, err := s.API.Comments(ctx, post.ID)
		if err != nil {
			s.Logger.Warn("comment fetch failed, showing the post without comments",
				"post", post.ID, "error", err)
			list = nil
		}

		cmu.Lock()
		comments[post.ID] = list
		cmu.Unlock()
	})

	s.mu.Lock()
	s.scope = authorID
	s.posts = posts
	s.comments = comments
	s.loaded = true
	s.mu.Unlock()

	return nil
}

// Loaded reports whether the store holds a settled view.
func (s *Store) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Posts returns a snapshot copy of the post list.
func (s *Store) Posts() []core.Post {
	s.mu.Lock()
	defer s.mu.Unlock()

	return lo.Map(s.posts, func(post *core.Post, _ int) core.Post {
		return *post
	})
}

// Comments returns a snapshot copy of one post's comment sequence. ok is
// false when the post is not part of the view.
func (s *Store) Comments(postID int64) ([]core.Comment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, ok := s.comments[postID]
	if !ok {
		return nil, false
	}

	return lo.Map(list, func(comment *core.Comment, _ int) core.Comment {
		return *comment
	}), true
}

// CreatePost submits a new post and reloads the current scope: the
// service, not the client, decides where the post lands.
func (s *Store) CreatePost(ctx context.Context, draft core.PostDraft) (*core.Post, error) {
	post, err := s.API.CreatePost(ctx, draft)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	scope := s.scope
	s.mu.Unlock()

	if err := s.Load(ctx, scope); err != nil {
		return post, err
	}

	return post, nil
}

// DeletePost removes the post and its whole comment entry in one state
// transition, so no comment of a deleted post is ever queryable.
func (s *Store) DeletePost(ctx context.Context, id int64) error {
	if err := s.API.DeletePost(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	s.posts = lo.Reject(s.posts, func(post *core.Post, _ int) bool {
		return post.ID == id
	})
	delete(s.comments, id)
	s.mu.Unlock()

	return nil
}

// CreateComment is not optimistic: comment identity (id, ordering) is
// server-assigned, so the sequence is only appended to after confirmation.
func (s *Store) CreateComment(ctx context.Context, postID int64, content string) (*core.Comment, error) {
	comment, err := s.API.CreateComment(ctx, postID, content)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.find(postID) != nil {
		s.comments[postID] = append(s.comments[postID], comment)
	}
	s.mu.Unlock()

	return comment, nil
}

// ToggleLike flips the viewer's like on a post optimistically and lets the
// synchronizer reconcile it against the canonical backend state.
func (s *Store) ToggleLike(ctx context.Context, postID int64) (<-chan error, bool) {
	key := core.InteractionKey{Entity: core.EntityPost, ID: postID, Kind: core.InteractionLike}

	return syncer.Run(ctx, s.Syncer, syncer.Toggle[core.LikeState]{
		Key: key,
		Snapshot: func() (core.LikeState, bool) {
			s.mu.Lock()
			defer s.mu.Unlock()

			post := s.find(postID)
			if post == nil {
				return core.LikeState{}, false
			}
			return core.LikeState{IsLiked: post.ViewerHasLiked, LikeCount: post.LikeCount}, true
		},
		Apply: func() {
			s.mu.Lock()
			defer s.mu.Unlock()

			post := s.find(postID)
			if post == nil {
				return
			}
			if post.ViewerHasLiked {
				post.LikeCount--
			} else {
				post.LikeCount++
			}
			post.ViewerHasLiked = !post.ViewerHasLiked
		},
		Call: func(ctx context.Context) (core.LikeState, error) {
			return s.API.ToggleLike(ctx, postID)
		},
		Reconcile: func(canonical core.LikeState) {
			s.writeLikeState(postID, canonical)
		},
		Rollback: func(snap core.LikeState) {
			s.writeLikeState(postID, snap)
		},
	})
}

func (s *Store) writeLikeState(postID int64, state core.LikeState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post := s.find(postID)
	if post == nil {
		return
	}
	post.ViewerHasLiked = state.IsLiked
	post.LikeCount = state.LikeCount
}

// find is only called with s.mu held.
func (s *Store) find(postID int64) *core.Post {
	for _, post := range s.posts {
		if post.ID == postID {
			return post
		}
	}
	return nil
}
