package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/k0kubun/pp"
	"github.com/urfave/cli/v3"
	"github.com/zhulik/pal"

	"chirp/internal/config"
	"chirp/internal/core"
	"chirp/internal/session"
)

var signupCmd = &cli.Command{
	Name:      "signup",
	Usage:     "Create an account",
	ArgsUsage: "<username> <password>",
	Action: func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() != 2 {
			return cli.Exit("usage: chirp signup <username> <password>", 1)
		}
		return run(ctx, c, append(baseServices(),
			pal.Provide(&signupRunner{username: c.Args().Get(0), password: c.Args().Get(1)}),
		)...)
	},
}

type signupRunner struct {
	API core.AuthAPI

	username, password string
}

func (r *signupRunner) Run(ctx context.Context) error {
	if err := r.API.Signup(ctx, r.username, r.password); err != nil {
		return err
	}

	fmt.Printf("Account @%s created, run `chirp login %s <password>` to sign in\n", r.username, r.username)
	return nil
}

var loginCmd = &cli.Command{
	Name:      "login",
	Usage:     "Authenticate and store the session",
	ArgsUsage: "<username> <password>",
	Action: func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() != 2 {
			return cli.Exit("usage: chirp login <username> <password>", 1)
		}
		return run(ctx, c, append(baseServices(),
			pal.Provide(&loginRunner{username: c.Args().Get(0), password: c.Args().Get(1)}),
		)...)
	},
}

type loginRunner struct {
	Session *session.Manager

	username, password string
}

func (r *loginRunner) Run(ctx context.Context) error {
	sess, err := r.Session.Login(ctx, r.username, r.password)
	if err != nil {
		return err
	}

	fmt.Printf("Logged in as @%s (user id %d)\n", sess.Username, sess.UserID)
	return nil
}

var logoutCmd = &cli.Command{
	Name:  "logout",
	Usage: "Drop the stored session",
	Action: func(ctx context.Context, c *cli.Command) error {
		return run(ctx, c, append(baseServices(),
			pal.Provide(&logoutRunner{}),
		)...)
	},
}

type logoutRunner struct {
	Logger  *slog.Logger
	Session *session.Manager
}

func (r *logoutRunner) Run(ctx context.Context) error {
	if err := r.Session.Logout(ctx); err != nil {
		return err
	}

	fmt.Println("Logged out")
	return nil
}

var whoamiCmd = &cli.Command{
	Name:  "whoami",
	Usage: "Show the current session",
	Action: func(ctx context.Context, c *cli.Command) error {
		return run(ctx, c, append(baseServices(),
			pal.Provide(&whoamiRunner{}),
		)...)
	},
}

type whoamiRunner struct {
	Config  *config.Config
	Session *session.Manager
}

func (r *whoamiRunner) Run(context.Context) error {
	sess := r.Session.Current()
	if sess == nil {
		return loginHint(core.ErrNoSession)
	}

	if r.Config.Verbose {
		pp.Println(sess)
		return nil
	}

	fmt.Printf("@%s (user id %d)\n", sess.Username, sess.UserID)
	if sess.IsAdmin {
		fmt.Println("admin")
	}
	return nil
}
