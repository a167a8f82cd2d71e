package ruleset

import "time"

// Config locates the rule definition file. Load it with config.Load.
// ReloadInterval feeds NewReloader; zero disables polling.
type Config struct {
	File           string        `env:"GUARD_RULES_FILE"`
	ReloadInterval time.Duration `env:"GUARD_RULES_RELOAD_INTERVAL" envDefault:"0s"`
}
