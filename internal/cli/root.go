// Package cli implements the guard command-line tool.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/inputguard/pkg/canonical"
	"github.com/dmitrymomot/inputguard/pkg/logger"
	"github.com/dmitrymomot/inputguard/pkg/validator"
)

// Exit codes.
const (
	ExitOK        = 0
	ExitFailure   = 1
	ExitIntrusion = 2
)

// Version is set at build time.
var Version = "dev"

type app struct {
	logLevel      string
	rulesFile     string
	auditSink     string
	clamdAddr     string
	allowMultiple bool

	log     *slog.Logger
	v       *validator.Validator
	closers []func(context.Context) error
}

// Execute runs the CLI with args and returns the process exit code.
// Intrusions exit with ExitIntrusion, every other error with ExitFailure.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{log: logger.Discard()}
	root := a.rootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if cerr := a.close(context.WithoutCancel(ctx)); cerr != nil {
		a.log.Error("shutdown failed", logger.Error(cerr))
	}
	if err == nil {
		return ExitOK
	}

	_, _ = fmt.Fprintln(stderr, "error:", err)
	if errors.Is(err, canonical.ErrIntrusion) {
		return ExitIntrusion
	}
	return ExitFailure
}

func (a *app) rootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "guard",
		Short: "Canonicalize and validate untrusted input",
		Long: `guard canonicalizes untrusted input, detects multiple and mixed encodings,
and validates it against named rules or built-in kinds.

Exit status is 0 when the input is valid, 1 when it is rejected or an error
occurs, and 2 when the input looks like an attack.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.Context(), cmd.ErrOrStderr())
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error); overrides GUARD_LOG_LEVEL")
	flags.StringVar(&a.rulesFile, "rules", "", "YAML rule definitions; overrides GUARD_RULES_FILE")
	flags.StringVar(&a.auditSink, "audit", "", "intrusion audit sink: none, redis or postgres; overrides GUARD_AUDIT_SINK")
	flags.StringVar(&a.clamdAddr, "clamd", "", "clamd address for content scanning; overrides GUARD_CLAMD_ADDR")
	flags.BoolVar(&a.allowMultiple, "allow-multiple", false, "accept repeated encoding with a single codec")

	cmd.AddCommand(
		a.canonicalizeCommand(),
		a.validateCommand(),
		a.rulesCommand(),
		a.scanCommand(),
		a.storeCommand(),
		a.migrateCommand(),
	)
	return cmd
}

func (a *app) close(ctx context.Context) error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c(ctx))
	}
	a.closers = nil
	return errors.Join(errs...)
}
