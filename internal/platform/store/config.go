package store

import (
	"strings"
	"time"

	"changeflow/internal/platform/config"
)

// Config aggregates backend configuration
type Config struct {
	AppName string
	PG      PGConfig
}

// PGConfig configures postgres connectivity and tracing
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int
	// StatementTimeout bounds every statement server side; 0 keeps the server default
	StatementTimeout time.Duration

	// boot knobs; zero means default
	ConnectRetries int           // default 20
	PingTimeout    time.Duration // default 3s
}

// PGFromConf reads SERVICE_PGSQL_* style keys from c (already prefixed)
//
//	DBURL (required), MAX_CONNS, SLOW_MS, LOG_SQL, STATEMENT_TIMEOUT, CONNECT_RETRIES, PING_TIMEOUT
func PGFromConf(c config.Conf) PGConfig {
	return PGConfig{
		Enabled:          true,
		URL:              c.MustString("DBURL"),
		MaxConns:         int32(c.MayPositiveInt("MAX_CONNS", 4)),
		SlowQueryMs:      c.MayInt("SLOW_MS", 500),
		LogSQL:           c.MayBool("LOG_SQL", false),
		StatementTimeout: c.MayDuration("STATEMENT_TIMEOUT", 0),
		ConnectRetries:   c.MayPositiveInt("CONNECT_RETRIES", 20),
		PingTimeout:      c.MayDuration("PING_TIMEOUT", 3*time.Second),
	}
}

// appName returns the application_name sent to postgres
func (c Config) appName() string {
	if n := strings.TrimSpace(c.AppName); n != "" {
		return n
	}
	return "changeflow"
}
