package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/inputguard/pkg/audit"
	"github.com/dmitrymomot/inputguard/pkg/config"
	"github.com/dmitrymomot/inputguard/pkg/pg"
)

func (a *app) migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the PostgreSQL intrusion audit table",
		Long: `Apply the bundled audit migrations to the database at DATABASE_URL. Run it
once before using --audit postgres.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			var cfg pg.Config
			if err := config.Load(&cfg); err != nil {
				return err
			}
			pool, err := pg.Connect(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := pg.Migrate(ctx, pool, audit.Migrations, cfg, a.log); err != nil {
				return err
			}
			if err := pg.Healthcheck(pool)(ctx); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "audit schema is up to date")
			return nil
		},
	}
}
