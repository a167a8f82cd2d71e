// Package redis connects to Redis for the intrusion audit stream.
//
// Connect parses a redis:// URL, pings the server and retries until it
// answers or the attempts run out. The returned client satisfies
// audit.StreamAdder, so it can be handed straight to audit.NewRedisStorage:
//
//	var cfg redis.Config
//	if err := config.Load(&cfg); err != nil {
//	    return err
//	}
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	storage := audit.NewRedisStorage(client, audit.WithStream(cfg.AuditStream))
//
// Healthcheck returns a probe suitable for readiness endpoints.
package redis
