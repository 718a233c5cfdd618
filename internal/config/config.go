// Package config defines the service configuration and how it is loaded.
package config

import "time"

// Config contains process configuration.
type Config struct {
	// Addr is the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// LogVerbose also writes info-level logs to stdout when LogFile is set.
	LogVerbose bool `koanf:"log_verbose"`
	// LogFile is where logs go; empty means stdout only.
	LogFile string `koanf:"log_file"`

	// StorageDriver is "memory" or "sqlite".
	StorageDriver string `koanf:"storage_driver"`
	// StoragePath is the sqlite database file.
	StoragePath string `koanf:"storage_path"`

	// MaxUploadMB caps multipart memory for participant uploads.
	MaxUploadMB int `koanf:"max_upload_mb"`

	SpinTickMS              int `koanf:"spin_tick_ms"`
	RevealDelayMS           int `koanf:"reveal_delay_ms"`
	FirstPrizeRevealDelayMS int `koanf:"first_prize_reveal_delay_ms"`
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		Addr:                    ":8080",
		LogVerbose:              true,
		StorageDriver:           "sqlite",
		StoragePath:             "luckydraw.db",
		MaxUploadMB:             8,
		SpinTickMS:              70,
		RevealDelayMS:           800,
		FirstPrizeRevealDelayMS: 300,
	}
}

// SpinTick returns SpinTickMS as a duration.
func (c *Config) SpinTick() time.Duration {
	return time.Duration(c.SpinTickMS) * time.Millisecond
}

// RevealDelays returns the normal and first-prize reveal holds.
func (c *Config) RevealDelays() (normal, firstPrize time.Duration) {
	return time.Duration(c.RevealDelayMS) * time.Millisecond,
		time.Duration(c.FirstPrizeRevealDelayMS) * time.Millisecond
}
