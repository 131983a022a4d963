package ota

import "github.com/rs/zerolog"

// GuardRelease selects when Begin releases the in-progress guard.
type GuardRelease int

const (
	// GuardReleaseAlways releases the guard when Begin returns, on success
	// and on failure. A second update may then be started, but only after
	// the first one has been accepted or rejected (the state machine
	// requires a Valid state to begin). This is the default.
	GuardReleaseAlways GuardRelease = iota

	// GuardHoldOnSuccess keeps the guard set after a successful Begin, so
	// the update session spans until the expected reboot. Failures still
	// release the guard so the update can be retried.
	GuardHoldOnSuccess
)

// Config holds the updater configuration.
type Config struct {
	// ProgressCallback is called during Begin to report progress (optional)
	ProgressCallback ProgressCallback

	// Logger receives structured update logs; zerolog.Nop() by default
	Logger zerolog.Logger

	// GuardRelease selects the in-progress guard policy for Begin
	GuardRelease GuardRelease
}

func defaultConfig() Config {
	return Config{
		Logger:       zerolog.Nop(),
		GuardRelease: GuardReleaseAlways,
	}
}

// Option is a functional option for configuring the Updater.
type Option func(*Config)

// WithProgressCallback sets a callback function to track update progress.
//
// Example:
//
//	up := ota.New(dev,
//	    ota.WithProgressCallback(func(p ota.Progress) {
//	        fmt.Printf("%s: %d bytes\n", p.Phase, p.BytesWritten)
//	    }),
//	)
func WithProgressCallback(callback ProgressCallback) Option {
	return func(c *Config) {
		c.ProgressCallback = callback
	}
}

// WithLogger sets the logger for update operations.
//
// Example:
//
//	up := ota.New(dev, ota.WithLogger(log.With().Str("component", "ota").Logger()))
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithGuardRelease sets the in-progress guard policy. See the GuardRelease
// constants.
func WithGuardRelease(policy GuardRelease) Option {
	return func(c *Config) {
		c.GuardRelease = policy
	}
}
