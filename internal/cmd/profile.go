package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/k0kubun/pp"
	"github.com/urfave/cli/v3"
	"github.com/zhulik/pal"

	"chirp/internal/config"
	"chirp/internal/core"
	"chirp/internal/feed"
	"chirp/internal/profile"
)

func profileServices() []pal.ServiceDef {
	return append(socialServices(), pal.Provide(&profile.Coordinator{}))
}

var profileCmd = &cli.Command{
	Name:      "profile",
	Usage:     "Show a profile and its posts",
	ArgsUsage: "[user-id]",
	Commands: []*cli.Command{
		profileUpdateCmd,
	},
	Action: func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() > 1 {
			return cli.Exit("usage: chirp profile [user-id]", 1)
		}
		return run(ctx, c, append(profileServices(),
			pal.Provide(&profileRunner{target: c.Args().First()}),
		)...)
	},
}

type profileRunner struct {
	Config  *config.Config
	Profile *profile.Coordinator
	Feed    *feed.Store

	target string
}

func (r *profileRunner) Run(ctx context.Context) error {
	if err := r.Profile.Load(ctx, r.target); err != nil {
		return loginHint(err)
	}

	printSummary(r.Profile, r.Config.Verbose)
	fmt.Println()
	printFeed(r.Feed, r.Config.Verbose)
	return nil
}

var profileUpdateCmd = &cli.Command{
	Name:  "update",
	Usage: "Edit your own profile",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "nickname",
			Usage: "New display name",
		},
		&cli.StringFlag{
			Name:  "bio",
			Usage: "New bio text",
		},
		&cli.StringFlag{
			Name:  "avatar",
			Usage: "New avatar image file",
		},
	},
	Action: func(ctx context.Context, c *cli.Command) error {
		return run(ctx, c, append(profileServices(),
			pal.Provide(&profileUpdateRunner{
				nickname: c.String("nickname"),
				bio:      c.String("bio"),
				avatar:   c.String("avatar"),
			}),
		)...)
	},
}

type profileUpdateRunner struct {
	Config  *config.Config
	Profile *profile.Coordinator

	nickname, bio, avatar string
}

func (r *profileUpdateRunner) Run(ctx context.Context) error {
	if err := r.Profile.Load(ctx, ""); err != nil {
		return loginHint(err)
	}

	update := core.ProfileUpdate{Nickname: r.nickname, Bio: r.bio}

	if r.avatar != "" {
		file, err := os.Open(r.avatar)
		if err != nil {
			return err
		}
		defer file.Close() //nolint:errcheck

		update.Avatar = &core.Upload{FileName: filepath.Base(r.avatar), Reader: file}
	}

	if _, err := r.Profile.UpdateProfile(ctx, update); err != nil {
		return loginHint(err)
	}

	fmt.Println("Profile updated")
	printSummary(r.Profile, r.Config.Verbose)
	return nil
}

var followCmd = &cli.Command{
	Name:      "follow",
	Usage:     "Follow a user",
	ArgsUsage: "<user-id>",
	Action: func(ctx context.Context, c *cli.Command) error {
		id, err := parseID(c, "user")
		if err != nil {
			return err
		}
		return run(ctx, c, append(profileServices(),
			pal.Provide(&followRunner{target: fmt.Sprintf("%d", id), want: true}),
		)...)
	},
}

var unfollowCmd = &cli.Command{
	Name:      "unfollow",
	Usage:     "Unfollow a user",
	ArgsUsage: "<user-id>",
	Action: func(ctx context.Context, c *cli.Command) error {
		id, err := parseID(c, "user")
		if err != nil {
			return err
		}
		return run(ctx, c, append(profileServices(),
			pal.Provide(&followRunner{target: fmt.Sprintf("%d", id), want: false}),
		)...)
	},
}

type followRunner struct {
	Profile *profile.Coordinator

	target string
	want   bool
}

func (r *followRunner) Run(ctx context.Context) error {
	if err := r.Profile.Load(ctx, r.target); err != nil {
		return loginHint(err)
	}

	summary := r.Profile.Summary()
	if summary.ViewerIsFollowing == r.want {
		if r.want {
			fmt.Printf("Already following @%s\n", summary.Username)
		} else {
			fmt.Printf("Not following @%s\n", summary.Username)
		}
		return nil
	}

	done, _, err := r.Profile.ToggleFollow(ctx)
	if err != nil {
		return err
	}
	if err := <-done; err != nil {
		return loginHint(err)
	}

	summary = r.Profile.Summary()
	if summary.ViewerIsFollowing {
		fmt.Printf("Following @%s, now at %d followers\n", summary.Username, summary.FollowerCount)
	} else {
		fmt.Printf("Unfollowed @%s, now at %d followers\n", summary.Username, summary.FollowerCount)
	}
	return nil
}

var followsCmd = &cli.Command{
	Name:      "follows",
	Usage:     "List a user's followers or following",
	ArgsUsage: "<user-id>",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "type",
			Usage: "Which listing: followers or following",
			Value: string(core.Followers),
		},
	},
	Action: func(ctx context.Context, c *cli.Command) error {
		id, err := parseID(c, "user")
		if err != nil {
			return err
		}

		kind := core.FollowListKind(c.String("type"))
		if kind != core.Followers && kind != core.Following {
			return fmt.Errorf("%w: listing type %q, allowed values are: followers, following",
				core.ErrValidation, c.String("type"))
		}

		return run(ctx, c, append(profileServices(),
			pal.Provide(&followsRunner{userID: id, kind: kind}),
		)...)
	},
}

type followsRunner struct {
	Config  *config.Config
	Profile *profile.Coordinator

	userID int64
	kind   core.FollowListKind
}

func (r *followsRunner) Run(ctx context.Context) error {
	list, err := r.Profile.FollowList(ctx, r.userID, r.kind)
	if err != nil {
		return loginHint(err)
	}

	if len(list) == 0 {
		fmt.Printf("No %s.\n", r.kind)
		return nil
	}

	for _, summary := range list {
		if r.Config.Verbose {
			pp.Println(summary)
			continue
		}
		fmt.Printf("#%-4d @%s", summary.UserID, summary.Username)
		if summary.Nickname != "" {
			fmt.Printf(" (%s)", summary.Nickname)
		}
		fmt.Println()
	}
	return nil
}

func printSummary(coordinator *profile.Coordinator, verbose bool) {
	summary := coordinator.Summary()

	if verbose {
		pp.Println(summary)
		return
	}

	fmt.Printf("@%s", summary.Username)
	if summary.Nickname != "" {
		fmt.Printf(" (%s)", summary.Nickname)
	}
	if coordinator.Mode() == profile.ModeSelf {
		fmt.Print("  [you]")
	} else if summary.ViewerIsFollowing {
		fmt.Print("  [following]")
	}
	fmt.Println()

	if summary.Bio != "" {
		fmt.Printf("%s\n", summary.Bio)
	}
	fmt.Printf("%d followers, %d following\n", summary.FollowerCount, summary.FollowingCount)
}
