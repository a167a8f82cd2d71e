package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/inputguard/pkg/config"
	"github.com/dmitrymomot/inputguard/pkg/file"
)

var errNoStorage = errors.New("choose one destination: --local or --s3")

func (a *app) storeCommand() *cobra.Command {
	f := &fileFlags{}
	var (
		dir      string
		localDir string
		useS3    bool
	)

	cmd := &cobra.Command{
		Use:   "store <file>",
		Short: "Validate a file as an upload and store it",
		Long: `Validate the file name, the destination directory and the content, then
store the file below the storage root. Use --local for a directory on disk or
--s3 for the bucket configured by the GUARD_S3_* variables. A destination that
escapes the storage root exits with status 2.`,
		Example: `  guard store --local /srv/uploads --dir avatars --types 'image/*' me.png
  guard store --s3 --dir reports/2024 --types application/pdf report.pdf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var store file.Storage
			switch {
			case localDir != "" && useS3:
				return errNoStorage
			case localDir != "":
				local, err := file.NewLocalStorage(localDir, "")
				if err != nil {
					return err
				}
				store = local
			case useS3:
				var cfg file.S3Config
				if err := config.Load(&cfg); err != nil {
					return err
				}
				s3, err := file.NewS3Storage(ctx, cfg)
				if err != nil {
					return err
				}
				store = s3
			default:
				return errNoStorage
			}

			u, err := file.FromPath(args[0], f.contentType)
			if err != nil {
				return err
			}
			stored, err := a.v.SaveValidUpload(ctx, args[0], dir, u, f.types, f.maxSize, store)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\tsha256:%s\n", stored.RelativePath, stored.Size, stored.Checksum)
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&dir, "dir", "", "destination directory below the storage root")
	cmd.Flags().StringVar(&localDir, "local", "", "store below this local directory")
	cmd.Flags().BoolVar(&useS3, "s3", false, "store in the configured S3 bucket")
	return cmd
}
