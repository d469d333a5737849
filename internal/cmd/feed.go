package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/k0kubun/pp"
	"github.com/urfave/cli/v3"
	"github.com/zhulik/pal"

	"chirp/internal/config"
	"chirp/internal/core"
	"chirp/internal/feed"
)

var feedCmd = &cli.Command{
	Name:  "feed",
	Usage: "Show the timeline with comments",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "user",
			Usage: "Only show posts of this user id",
		},
	},
	Action: func(ctx context.Context, c *cli.Command) error {
		return run(ctx, c, append(socialServices(),
			pal.Provide(&feedRunner{user: c.String("user")}),
		)...)
	},
}

type feedRunner struct {
	Config *config.Config
	Feed   *feed.Store

	user string
}

func (r *feedRunner) Run(ctx context.Context) error {
	scope, err := parseUserID(r.user)
	if err != nil {
		return err
	}

	if err := r.Feed.Load(ctx, scope); err != nil {
		return loginHint(err)
	}

	printFeed(r.Feed, r.Config.Verbose)
	return nil
}

var postCmd = &cli.Command{
	Name:      "post",
	Usage:     "Publish a post",
	ArgsUsage: "<content>",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "image",
			Usage: "Attach this image file",
		},
	},
	Action: func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() != 1 {
			return cli.Exit("usage: chirp post <content> [--image <path>]", 1)
		}
		return run(ctx, c, append(socialServices(),
			pal.Provide(&postRunner{content: c.Args().First(), image: c.String("image")}),
		)...)
	},
}

type postRunner struct {
	Feed *feed.Store

	content, image string
}

func (r *postRunner) Run(ctx context.Context) error {
	draft := core.PostDraft{Content: r.content}

	if r.image != "" {
		file, err := os.Open(r.image)
		if err != nil {
			return err
		}
		defer file.Close() //nolint:errcheck

		draft.Image = &core.Upload{FileName: filepath.Base(r.image), Reader: file}
	}

	post, err := r.Feed.CreatePost(ctx, draft)
	if err != nil {
		return loginHint(err)
	}

	fmt.Printf("Posted #%d\n", post.ID)
	return nil
}

var rmCmd = &cli.Command{
	Name:      "rm",
	Usage:     "Delete one of your posts",
	ArgsUsage: "<post-id>",
	Action: func(ctx context.Context, c *cli.Command) error {
		id, err := parseID(c, "post")
		if err != nil {
			return err
		}
		return run(ctx, c, append(socialServices(),
			pal.Provide(&rmRunner{postID: id}),
		)...)
	},
}

type rmRunner struct {
	Feed *feed.Store

	postID int64
}

func (r *rmRunner) Run(ctx context.Context) error {
	if err := r.Feed.DeletePost(ctx, r.postID); err != nil {
		return loginHint(err)
	}

	fmt.Printf("Deleted post #%d\n", r.postID)
	return nil
}

var commentCmd = &cli.Command{
	Name:      "comment",
	Usage:     "Comment on a post",
	ArgsUsage: "<post-id> <content>",
	Action: func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() != 2 {
			return cli.Exit("usage: chirp comment <post-id> <content>", 1)
		}
		id, err := strconv.ParseInt(c.Args().Get(0), 10, 64)
		if err != nil {
			return fmt.Errorf("%w: post id %q is not numeric", core.ErrValidation, c.Args().Get(0))
		}
		return run(ctx, c, append(socialServices(),
			pal.Provide(&commentRunner{postID: id, content: c.Args().Get(1)}),
		)...)
	},
}

type commentRunner struct {
	Feed *feed.Store

	postID  int64
	content string
}

func (r *commentRunner) Run(ctx context.Context) error {
	comment, err := r.Feed.CreateComment(ctx, r.postID, r.content)
	if err != nil {
		return loginHint(err)
	}

	fmt.Printf("Commented on post #%d as @%s\n", comment.PostID, comment.Username)
	return nil
}

var likeCmd = &cli.Command{
	Name:      "like",
	Usage:     "Toggle your like on a post",
	ArgsUsage: "<post-id>",
	Action: func(ctx context.Context, c *cli.Command) error {
		id, err := parseID(c, "post")
		if err != nil {
			return err
		}
		return run(ctx, c, append(socialServices(),
			pal.Provide(&likeRunner{postID: id}),
		)...)
	},
}

type likeRunner struct {
	Feed *feed.Store

	postID int64
}

func (r *likeRunner) Run(ctx context.Context) error {
	if err := r.Feed.Load(ctx, nil); err != nil {
		return loginHint(err)
	}

	done, accepted := r.Feed.ToggleLike(ctx, r.postID)
	if !accepted {
		return fmt.Errorf("%w: post %d", core.ErrNotFound, r.postID)
	}
	if err := <-done; err != nil {
		return loginHint(err)
	}

	for _, post := range r.Feed.Posts() {
		if post.ID != r.postID {
			continue
		}
		action := "Liked"
		if !post.ViewerHasLiked {
			action = "Unliked"
		}
		fmt.Printf("%s post #%d, now at %d likes\n", action, post.ID, post.LikeCount)
	}
	return nil
}

func parseID(c *cli.Command, noun string) (int64, error) {
	if c.Args().Len() != 1 {
		return 0, cli.Exit(fmt.Sprintf("usage: chirp %s <%s-id>", c.Name, noun), 1)
	}

	id, err := strconv.ParseInt(c.Args().First(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s id %q is not numeric", core.ErrValidation, noun, c.Args().First())
	}
	return id, nil
}

func parseUserID(raw string) (*int64, error) {
	if raw == "" {
		return nil, nil
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: user id %q is not numeric", core.ErrValidation, raw)
	}
	return &id, nil
}

func printFeed(store *feed.Store, verbose bool) {
	posts := store.Posts()
	if len(posts) == 0 {
		fmt.Println("No posts yet.")
		return
	}

	for _, post := range posts {
		if verbose {
			pp.Println(post)
			continue
		}

		printPost(post)
		comments, _ := store.Comments(post.ID)
		for _, comment := range comments {
			fmt.Printf("      @%s: %s\n", comment.Username, comment.Content)
		}
	}
}

func printPost(post core.Post) {
	liked := " "
	if post.ViewerHasLiked {
		liked = "*"
	}

	fmt.Printf("#%-4d @%s  %s\n", post.ID, post.Username, post.CreatedAt.Format("2006-01-02 15:04"))
	fmt.Printf("      %s\n", post.Content)
	if post.ImageURL != "" {
		fmt.Printf("      [image] %s\n", post.ImageURL)
	}
	fmt.Printf("      [%s] %d likes\n", liked, post.LikeCount)
}
