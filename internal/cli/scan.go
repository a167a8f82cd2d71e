package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/inputguard/pkg/file"
	"github.com/dmitrymomot/inputguard/pkg/validator"
)

const defaultMaxFileSize = 32 << 20

type fileFlags struct {
	contentType string
	types       []string
	maxSize     int64
}

func (f *fileFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.contentType, "content-type", "", "declared content type; sniffed when empty")
	cmd.Flags().StringSliceVar(&f.types, "types", nil, "allowed content types, e.g. image/*,application/pdf")
	cmd.Flags().Int64Var(&f.maxSize, "max-size", defaultMaxFileSize, "maximum file size in bytes")
}

func (a *app) scanCommand() *cobra.Command {
	f := &fileFlags{}

	cmd := &cobra.Command{
		Use:   "scan <file>...",
		Short: "Check file contents: type, size and content scanner verdict",
		Long: `Check each file as an upload would be checked: the content type must be
allowed, the size within --max-size, the sniffed content consistent with the
declared type, and the content scanner must report it clean. The EICAR test
signature is always detected; --clamd adds a clamd daemon.`,
		Example: `  guard scan --types 'image/*' avatar.png
  guard scan --clamd 127.0.0.1:3310 report.pdf`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rejected := 0
			for _, path := range args {
				u, err := file.FromPath(path, f.contentType)
				if err != nil {
					return err
				}
				_, err = a.v.GetValidFileContent(cmd.Context(), path, u, f.types, f.maxSize, false)
				switch {
				case err == nil:
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", path)
				case validator.IsValidationError(err):
					rejected++
					for _, ve := range validator.ExtractValidationErrors(err) {
						_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: rejected: %s\n", path, ve.Message)
					}
				default:
					return err
				}
			}
			if rejected > 0 {
				return fmt.Errorf("%d of %d files rejected", rejected, len(args))
			}
			return nil
		},
	}
	f.register(cmd)
	return cmd
}
