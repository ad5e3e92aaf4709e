package module

import "changeflow/internal/platform/config"

// Options holds configuration settings for the reply module
type Options struct {
	// ServiceUsers are bot accounts that only trigger the negative vote rule
	ServiceUsers []int64
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	rc := cfg.Prefix("CORE_REPLY_")
	return Options{
		ServiceUsers: rc.MayInt64CSV("SERVICE_USERS", nil),
	}
}
