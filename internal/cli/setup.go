package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/dmitrymomot/inputguard/pkg/audit"
	"github.com/dmitrymomot/inputguard/pkg/config"
	"github.com/dmitrymomot/inputguard/pkg/logger"
	"github.com/dmitrymomot/inputguard/pkg/pg"
	"github.com/dmitrymomot/inputguard/pkg/redis"
	"github.com/dmitrymomot/inputguard/pkg/ruleset"
	"github.com/dmitrymomot/inputguard/pkg/scan"
	"github.com/dmitrymomot/inputguard/pkg/validator"
)

// auditConfig selects where intrusion events go.
type auditConfig struct {
	Sink    string `env:"GUARD_AUDIT_SINK" envDefault:"none"`
	HashKey string `env:"GUARD_AUDIT_HASH_KEY"`
}

func (a *app) setup(ctx context.Context, stderr io.Writer) error {
	var logCfg logger.Config
	if err := config.Load(&logCfg); err != nil {
		return err
	}
	if a.logLevel != "" {
		logCfg.Level = a.logLevel
	}
	a.log = logger.NewFromConfig(logCfg, logger.WithOutput(stderr))

	var cfg validator.Config
	if err := config.Load(&cfg); err != nil {
		return err
	}
	if a.allowMultiple {
		cfg.AllowMultipleEncoding = true
	}

	opts := []validator.Option{validator.WithLogger(a.log)}

	scanner, err := a.scanner()
	if err != nil {
		return err
	}
	opts = append(opts, validator.WithScanner(scanner))

	rules, err := a.rules()
	if err != nil {
		return err
	}
	if rules != nil {
		opts = append(opts, validator.WithRuleSet(rules))
	}

	recorder, err := a.audit(ctx)
	if err != nil {
		return err
	}
	if recorder != nil {
		opts = append(opts, validator.WithAuditLogger(recorder))
	}

	a.v, err = validator.NewFromConfig(cfg, opts...)
	return err
}

func (a *app) scanner() (scan.Scanner, error) {
	var cfg scan.Config
	if err := config.Load(&cfg); err != nil {
		return nil, err
	}
	if a.clamdAddr != "" {
		cfg.ClamdAddr = a.clamdAddr
	}
	return scan.New(cfg)
}

func (a *app) rules() (*validator.RuleSet, error) {
	var cfg ruleset.Config
	if err := config.Load(&cfg); err != nil {
		return nil, err
	}
	path := cfg.File
	if a.rulesFile != "" {
		path = a.rulesFile
	}
	if path == "" {
		return nil, nil
	}
	return ruleset.LoadFile(path)
}

func (a *app) audit(ctx context.Context) (*audit.Logger, error) {
	var cfg auditConfig
	if err := config.Load(&cfg); err != nil {
		return nil, err
	}
	sink := cfg.Sink
	if a.auditSink != "" {
		sink = a.auditSink
	}

	var opts []audit.Option
	if cfg.HashKey != "" {
		opts = append(opts, audit.WithHasher(audit.NewSHA256Hasher([]byte(cfg.HashKey))))
	}

	var storage audit.BatchStorage
	switch sink {
	case "", "none":
		return nil, nil

	case "redis":
		var rcfg redis.Config
		if err := config.Load(&rcfg); err != nil {
			return nil, err
		}
		client, err := redis.Connect(ctx, rcfg)
		if err != nil {
			return nil, err
		}
		if err := redis.Healthcheck(client)(ctx); err != nil {
			_ = client.Close()
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { return client.Close() })
		storage = audit.NewRedisStorage(client, audit.WithStream(rcfg.AuditStream), audit.WithMaxLen(rcfg.AuditMaxLen))

	case "postgres":
		var pcfg pg.Config
		if err := config.Load(&pcfg); err != nil {
			return nil, err
		}
		pool, err := pg.Connect(ctx, pcfg)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { pool.Close(); return nil })
		storage = audit.NewPostgresStorage(pool, pcfg.AuditTable)

	default:
		return nil, fmt.Errorf("unknown audit sink %q", sink)
	}

	l, flush := audit.NewAsyncLogger(storage, audit.AsyncOptions{}, opts...)
	// flush before the connection closes
	a.closers = append([]func(context.Context) error{flush}, a.closers...)
	return l, nil
}
