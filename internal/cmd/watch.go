package cmd

import (
	"context"

	"github.com/urfave/cli/v3"
	"github.com/zhulik/pal"

	"chirp/internal/cmd/flags"
	"chirp/internal/core"
	"chirp/internal/feed"
	"chirp/internal/metrics"
	"chirp/internal/syncer"
	"chirp/internal/watch"
)

var watchCmd = &cli.Command{
	Name:  "watch",
	Usage: "Poll the timeline and print posts as they appear",
	Flags: []cli.Flag{
		flags.WatchInterval,
		flags.MetricsAddr,
	},
	Action: func(ctx context.Context, c *cli.Command) error {
		services := append(baseServices(),
			pal.Provide(&syncer.Synchronizer{}),
			pal.Provide[core.TimelineLoader](&feed.Store{}),
			pal.Provide(&watch.Watcher{}),
		)

		if c.String("metrics-addr") != "" {
			services = append(services, pal.Provide(&metrics.Server{}))
		}

		return run(ctx, c, services...)
	},
}
