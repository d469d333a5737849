package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"github.com/zhulik/pal"

	"chirp/internal/api"
	"chirp/internal/cmd/flags"
	"chirp/internal/config"
	"chirp/internal/core"
	"chirp/internal/feed"
	"chirp/internal/persistence"
	"chirp/internal/session"
	"chirp/internal/syncer"
	"chirp/pkg/clicfg"
)

const VERSION = "0.1.0"

var cmd = &cli.Command{
	Name:    "chirp",
	Usage:   "Chirp is a terminal client for the chirp social service",
	Version: VERSION,
	Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
		if err := initLogger(c.String("log-level")); err != nil {
			return ctx, err
		}
		return ctx, nil
	},
	Flags: []cli.Flag{
		flags.LogLevel,
		flags.Verbose,
	},
	Commands: []*cli.Command{
		signupCmd,
		loginCmd,
		logoutCmd,
		whoamiCmd,
		feedCmd,
		postCmd,
		rmCmd,
		commentCmd,
		likeCmd,
		profileCmd,
		followCmd,
		unfollowCmd,
		followsCmd,
		adminCmd,
		watchCmd,
	},
}

func Run() {
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func run(ctx context.Context, c *cli.Command, services ...pal.ServiceDef) error {
	cfg := config.Config{}
	if err := clicfg.ParseFlags(c, &cfg); err != nil {
		return err
	}
	services = append(services, pal.Provide(&cfg))

	return pal.New(services...).
		InjectSlog().
		InitTimeout(5*time.Second).
		HealthCheckTimeout(1*time.Second).
		ShutdownTimeout(5*time.Second).
		Run(ctx, syscall.SIGINT, syscall.SIGTERM)
}

// baseServices is the graph every command needs: config, the persisted
// session, and both API clients.
func baseServices() []pal.ServiceDef {
	return []pal.ServiceDef{
		pal.Provide(&core.Config{}),
		persistence.Provide(),
		api.Provide(),
		pal.Provide(&session.Manager{}),
	}
}

// socialServices extends the base graph with the feed aggregate and the
// toggle synchronizer behind it.
func socialServices() []pal.ServiceDef {
	return append(baseServices(),
		pal.Provide(&syncer.Synchronizer{}),
		pal.Provide(&feed.Store{}),
	)
}

// loginHint decorates gating errors with the way out.
func loginHint(err error) error {
	if errors.Is(err, core.ErrNoSession) || errors.Is(err, core.ErrUnauthorized) {
		return fmt.Errorf("%w: run `chirp login <username> <password>` first", err)
	}
	return err
}
