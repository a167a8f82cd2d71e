package redis

import "time"

type Config struct {
	ConnectionURL  string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"` // redis://:password@host:6379/0
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"2s"`
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`

	AuditStream string `env:"REDIS_AUDIT_STREAM" envDefault:"inputguard:intrusions"`
	AuditMaxLen int64  `env:"REDIS_AUDIT_MAXLEN" envDefault:"100000"`
}
