package module

import "changeflow/internal/platform/config"

// Options holds configuration settings for the comments module
type Options struct {
	HardLimit int
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	cc := cfg.Prefix("CORE_COMMENTS_")
	return Options{
		HardLimit: cc.MayPositiveInt("HARD_LIMIT", 10000),
	}
}
