package module

import (
	"time"

	"changeflow/internal/platform/config"
)

// Options holds configuration settings for the attention module
type Options struct {
	MaxAttempts int
	Backoff     time.Duration
	TxTimeout   time.Duration
	LockTimeout time.Duration
}

// FromConfig reads the attention options from config with CORE_ATTENTION_ prefix
func FromConfig(cfg config.Conf) Options {
	ac := cfg.Prefix("CORE_ATTENTION_")
	return Options{
		MaxAttempts: ac.MayPositiveInt("MAX_ATTEMPTS", 3),
		Backoff:     ac.MayDuration("BACKOFF", 50*time.Millisecond),
		TxTimeout:   ac.MayDuration("TX_TIMEOUT", 10*time.Second),
		LockTimeout: ac.MayDuration("LOCK_TIMEOUT", 2*time.Second),
	}
}
