// Package config loads editor settings from an optional .env file and the
// process environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"reeledit/gate"
	"reeledit/layout"
	"reeledit/timeline"
)

// Environment keys
const (
	KeyAddr            = "REELEDIT_ADDR"
	KeyClipSource      = "REELEDIT_CLIP_SOURCE"
	KeyClipDuration    = "REELEDIT_CLIP_DURATION"
	KeyTextDuration    = "REELEDIT_TEXT_DURATION"
	KeyBlockedMaxWidth = "REELEDIT_BLOCKED_MAX_WIDTH"
	KeyPollInterval    = "REELEDIT_POLL_INTERVAL"
	KeySessionIdle     = "REELEDIT_SESSION_IDLE"
)

// Default values
const (
	DefaultAddr            = ":8000"
	DefaultClipSource      = timeline.DefaultClipSource
	DefaultClipDuration    = timeline.DefaultClipDuration
	DefaultTextDuration    = timeline.DefaultTextDuration
	DefaultBlockedMaxWidth = gate.BlockedMaxWidth
	DefaultPollInterval    = layout.PollInterval
	DefaultSessionIdle     = 30 * time.Minute
)

var ErrInvalid = errors.New("invalid configuration")

// Config holds everything the editor needs at startup.
type Config struct {
	Addr            string
	ClipSource      string
	ClipDuration    int
	TextDuration    int
	BlockedMaxWidth int
	PollInterval    time.Duration

	// SessionIdle is how long a session may go untouched before it is
	// dropped.
	SessionIdle time.Duration

	// EnvFileLoaded reports whether the .env file was found and read.
	EnvFileLoaded bool
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Addr:            DefaultAddr,
		ClipSource:      DefaultClipSource,
		ClipDuration:    DefaultClipDuration,
		TextDuration:    DefaultTextDuration,
		BlockedMaxWidth: DefaultBlockedMaxWidth,
		PollInterval:    DefaultPollInterval,
		SessionIdle:     DefaultSessionIdle,
	}
}

// Load reads envFile (when it exists) into the environment and then builds a
// Config from the environment. A missing env file is not an error; values
// already present in the environment win over the file.
func Load(envFile string) (Config, error) {
	cfg := Default()

	if envFile != "" {
		if err := godotenv.Load(envFile); err == nil {
			cfg.EnvFileLoaded = true
		} else if !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("reading %s: %w", envFile, err)
		}
	}

	if v := os.Getenv(KeyAddr); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv(KeyClipSource); v != "" {
		cfg.ClipSource = v
	}

	var err error
	if cfg.ClipDuration, err = positiveInt(KeyClipDuration, cfg.ClipDuration); err != nil {
		return cfg, err
	}
	if cfg.TextDuration, err = positiveInt(KeyTextDuration, cfg.TextDuration); err != nil {
		return cfg, err
	}
	if cfg.BlockedMaxWidth, err = positiveInt(KeyBlockedMaxWidth, cfg.BlockedMaxWidth); err != nil {
		return cfg, err
	}

	if cfg.PollInterval, err = positiveDuration(KeyPollInterval, cfg.PollInterval); err != nil {
		return cfg, err
	}
	if cfg.SessionIdle, err = positiveDuration(KeySessionIdle, cfg.SessionIdle); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func positiveDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def, fmt.Errorf("%w: %s=%q must be a positive duration", ErrInvalid, key, v)
	}
	return d, nil
}

func positiveInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def, fmt.Errorf("%w: %s=%q must be a positive integer", ErrInvalid, key, v)
	}
	return n, nil
}
