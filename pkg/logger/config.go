package logger

import (
	"log/slog"
	"strings"
)

// Config holds logger settings loaded from the environment.
type Config struct {
	Env     string   `env:"GUARD_ENV" envDefault:"development"`
	Level   string   `env:"GUARD_LOG_LEVEL"`
	Service string   `env:"GUARD_SERVICE_NAME" envDefault:"inputguard"`
	Redact  []string `env:"GUARD_LOG_REDACT" envDefault:"input,value" envSeparator:","`
}

// NewFromConfig builds a logger for cfg.Env. A non-empty Level overrides the
// environment's default level; unparsable levels are ignored.
func NewFromConfig(cfg Config, opts ...Option) *slog.Logger {
	options := []Option{WithEnvironment(cfg.Env, cfg.Service)}
	if cfg.Level != "" {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(strings.ToUpper(cfg.Level))); err == nil {
			options = append(options, WithLevel(lvl))
		}
	}
	if len(cfg.Redact) > 0 {
		options = append(options, WithRedactedKeys(cfg.Redact...))
	}
	return New(append(options, opts...)...)
}
