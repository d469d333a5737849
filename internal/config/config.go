package config

import "time"

// Config carries the CLI-level knobs, filled from flags by clicfg.
type Config struct {
	LogLevel      string        `flag:"log-level"`
	Verbose       bool          `flag:"verbose"`
	MetricsAddr   string        `flag:"metrics-addr"`
	WatchInterval time.Duration `flag:"watch-interval"`
}
