// Package pg connects to PostgreSQL with pgx/v5 and applies the audit
// schema with goose.
//
//	var cfg pg.Config
//	if err := config.Load(&cfg); err != nil {
//	    return err
//	}
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, audit.Migrations, cfg, log); err != nil {
//	    return err
//	}
//	storage := audit.NewPostgresStorage(pool, cfg.AuditTable)
//
// Migrate reads migrations from any fs.FS, so embedded migrations need no
// files on disk. Connect retries with a linear back-off and honours ctx.
package pg
