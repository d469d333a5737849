// Package api is the REST boundary to the backend collaborator. It is the
// single place where responses are interpreted: bearer injection, the
// unauthorized-forces-logout rule and the error taxonomy all live here,
// never at call sites.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"resty.dev/v3"

	"chirp/internal/core"
	"chirp/internal/session"
)

func newRestyClient(baseURL string) *resty.Client {
	client := resty.NewWithTransportSettings(&resty.TransportSettings{
		DialerTimeout:         5 * time.Second,
		IdleConnTimeout:       5 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 5 * time.Second,
		ResponseHeaderTimeout: 5 * time.Second,
	})
	client.SetBaseURL(baseURL)
	client.AddResponseMiddleware(latencyMiddleware)

	return client
}

// Client talks to every bearer-authenticated endpoint. It implements
// core.SocialAPI.
type Client struct {
	Logger  *slog.Logger
	Config  *core.Config
	Session *session.Manager

	client *resty.Client
}

func (c *Client) Init(_ context.Context) error {
	c.Logger = c.Logger.With("component", "api.Client")
	c.client = newRestyClient(c.Config.BaseURL)

	// The one boundary enforcing the cross-cutting rule: any unauthorized
	// response destroys the session, no view re-implements this.
	c.client.AddResponseMiddleware(func(_ *resty.Client, res *resty.Response) error {
		if res.StatusCode() == http.StatusUnauthorized {
			c.Logger.Warn("unauthorized response, invalidating session")
			c.Session.Invalidate()
		}
		return nil
	})

	return nil
}

func (c *Client) Shutdown(_ context.Context) error {
	return c.client.Close()
}

// r prepares an authenticated request. Callers must have obtained sess via
// c.session, so a request is never issued without a session.
func (c *Client) r(ctx context.Context, sess *core.Session) *resty.Request {
	return c.client.R().
		WithContext(ctx).
		SetAuthToken(sess.Token).
		SetError(&apiError{})
}

func (c *Client) session() (*core.Session, error) {
	sess := c.Session.Current()
	if sess == nil {
		return nil, core.ErrNoSession
	}
	return sess, nil
}

func (c *Client) Profile(ctx context.Context, userID *int64) (*core.ProfileSummary, error) {
	sess, err := c.session()
	if err != nil {
		return nil, err
	}

	path := "/profile"
	if userID != nil {
		path = fmt.Sprintf("/profile/%d", *userID)
	}

	res, err := c.r(ctx, sess).
		SetResult(&core.ProfileSummary{}).
		Get(path)
	if err := wireError(res, err); err != nil {
		return nil, err
	}

	return res.Result().(*core.ProfileSummary), nil
}

func (c *Client) UpdateProfile(ctx context.Context, update core.ProfileUpdate) (*core.ProfileSummary, error) {
	sess, err := c.session()
	if err != nil {
		return nil, err
	}

	req := c.r(ctx, sess).
		SetMultipartFormData(map[string]string{
			"nickname": update.Nickname,
			"bio":      update.Bio,
		}).
		SetResult(&core.ProfileSummary{})

	if update.Avatar != nil {
		req.SetMultipartFields(&resty.MultipartField{
			Name:     "avatar",
			FileName: update.Avatar.FileName,
			Reader:   update.Avatar.Reader,
		})
	}

	res, err := req.Post("/profile")
	if err := wireError(res, err); err != nil {
		return nil, err
	}

	return res.Result().(*core.ProfileSummary), nil
}

func (c *Client) Posts(ctx context.Context, authorID *int64) ([]*core.Post, error) {
	sess, err := c.session()
	if err != nil {
		return nil, err
	}

	req := c.r(ctx, sess).SetResult(&[]*core.Post{})
	if authorID != nil {
		req.SetQueryParam("user_id", fmt.Sprintf("%d", *authorID))
	}

	res, err := req.Get("/posts")
	if err := wireError(res, err); err != nil {
		return nil, err
	}

	return *res.Result().(*[]*core.Post), nil
}

func (c *Client) CreatePost(ctx context.Context, draft core.PostDraft) (*core.Post, error) {
	sess, err := c.session()
	if err != nil {
		return nil, err
	}

	req := c.r(ctx, sess).
		SetMultipartFormData(map[string]string{"content": draft.Content}).
		SetResult(&core.Post{})

	if draft.Image != nil {
		req.SetMultipartFields(&resty.MultipartField{
			Name:     "image",
			FileName: draft.Image.FileName,
			Reader:   draft.Image.Reader,
		})
	}

	res, err := req.Post("/posts")
	if err := wireError(res, err); err != nil {
		return nil, err
	}

	return res.Result().(*core.Post), nil
}

func (c *Client) DeletePost(ctx context.Context, id int64) error {
	sess, err := c.session()
	if err != nil {
		return err
	}

	res, err := c.r(ctx, sess).Delete(fmt.Sprintf("/posts/%d", id))
	return wireError(res, err)
}

func (c *Client) ToggleLike(ctx context.Context, postID int64) (core.LikeState, error) {
	sess, err := c.session()
	if err != nil {
		return core.LikeState{}, err
	}

	res, err := c.r(ctx, sess).
		SetResult(&core.LikeState{}).
		Post(fmt.Sprintf("/posts/%d/like", postID))
	if err := wireError(res, err); err != nil {
		return core.LikeState{}, err
	}

	return *res.Result().(*core.LikeState), nil
}

func (c *Client) Comments(ctx context.Context, postID int64) ([]*core.Comment, error) {
	sess, err := c.session()
	if err != nil {
		return nil, err
	}

	res, err := c.r(ctx, sess).
		SetResult(&[]*core.Comment{}).
		Get(fmt.Sprintf("/posts/%d/comments", postID))
	if err := wireError(res, err); err != nil {
		return nil, err
	}

	return *res.Result().(*[]*core.Comment), nil
}

func (c *Client) CreateComment(ctx context.Context, postID int64, content string) (*core.Comment, error) {
	sess, err := c.session()
	if err != nil {
		return nil, err
	}

	res, err := c.r(ctx, sess).
		SetBody(map[string]string{"content": content}).
		SetResult(&core.Comment{}).
		Post(fmt.Sprintf("/posts/%d/comments", postID))
	if err := wireError(res, err); err != nil {
		return nil, err
	}

	return res.Result().(*core.Comment), nil
}

func (c *Client) Follow(ctx context.Context, userID int64) (core.FollowState, error) {
	return c.follow(ctx, userID, "follow")
}

func (c *Client) Unfollow(ctx context.Context, userID int64) (core.FollowState, error) {
	return c.follow(ctx, userID, "unfollow")
}

func (c *Client) follow(ctx context.Context, userID int64, action string) (core.FollowState, error) {
	sess, err := c.session()
	if err != nil {
		return core.FollowState{}, err
	}

	res, err := c.r(ctx, sess).
		SetResult(&core.FollowState{}).
		Post(fmt.Sprintf("/users/%d/%s", userID, action))
	if err := wireError(res, err); err != nil {
		return core.FollowState{}, err
	}

	return *res.Result().(*core.FollowState), nil
}

func (c *Client) FollowList(ctx context.Context, userID int64, kind core.FollowListKind) ([]*core.ProfileSummary, error) {
	sess, err := c.session()
	if err != nil {
		return nil, err
	}

	if kind != core.Followers && kind != core.Following {
		return nil, fmt.Errorf("%w: unknown follow list %q", core.ErrValidation, kind)
	}

	res, err := c.r(ctx, sess).
		SetResult(&[]*core.ProfileSummary{}).
		Get(fmt.Sprintf("/profile/%d/%s", userID, kind))
	if err := wireError(res, err); err != nil {
		return nil, err
	}

	return *res.Result().(*[]*core.ProfileSummary), nil
}

func (c *Client) AdminUsers(ctx context.Context) ([]*core.AdminUser, error) {
	sess, err := c.session()
	if err != nil {
		return nil, err
	}

	res, err := c.r(ctx, sess).
		SetResult(&[]*core.AdminUser{}).
		Get("/admin/users")
	if err := wireError(res, err); err != nil {
		return nil, err
	}

	return *res.Result().(*[]*core.AdminUser), nil
}
