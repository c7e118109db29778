// Package config defines service configuration and its loading order.
package config

import (
	"runtime"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the pending calculation queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of calculation workers.
	WorkerCount int `koanf:"worker_count"`

	// StoreCapacity caps how many calculations are kept in memory.
	StoreCapacity int `koanf:"store_capacity"`

	// DisplayDelayMS is the pause before an asynchronous calculation is done.
	DisplayDelayMS int `koanf:"display_delay_ms"`
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:       "info",
		LogFormat:      "text",
		Addr:           ":9080",
		QueueSize:      10_000,
		WorkerCount:    runtime.NumCPU(),
		StoreCapacity:  50_000,
		DisplayDelayMS: 1500,
	}
}
