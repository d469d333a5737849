package flags

import (
	"fmt"
	"slices"
	"time"

	"github.com/urfave/cli/v3"
)

var validLogLevels = []string{"debug", "info", "warn", "error"}

// TODO: extract custom EnumFlag
var LogLevel = &cli.StringFlag{
	Name:    "log-level",
	Aliases: []string{"l"},
	Usage:   "The level of the logs",
	Value:   "warn",
	Validator: func(value string) error {
		if !slices.Contains(validLogLevels, value) {
			return fmt.Errorf("invalid log level: %s, allowed values are: %s", value, validLogLevels)
		}
		return nil
	},
	Sources: cli.EnvVars("CHIRP_LOG_LEVEL"),
}

var Verbose = &cli.BoolFlag{
	Name:    "verbose",
	Usage:   "Dump full entities instead of the compact rendering",
	Value:   false,
	Sources: cli.EnvVars("CHIRP_VERBOSE"),
}

var MetricsAddr = &cli.StringFlag{
	Name:    "metrics-addr",
	Usage:   "Serve prometheus metrics on this address while running",
	Sources: cli.EnvVars("CHIRP_METRICS_ADDR"),
}

var WatchInterval = &cli.DurationFlag{
	Name:    "watch-interval",
	Aliases: []string{"i"},
	Usage:   "How often the watcher polls the timeline",
	Value:   10 * time.Second,
	Sources: cli.EnvVars("CHIRP_WATCH_INTERVAL"),
}
