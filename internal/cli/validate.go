package cli

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/inputguard/pkg/validator"
)

type validateFlags struct {
	rule      string
	kind      string
	label     string
	maxLength int
	allowNull bool
	raw       bool

	root       string
	layout     string
	choices    []string
	extensions []string
	min, max   float64
}

func (a *app) validateCommand() *cobra.Command {
	f := &validateFlags{}

	cmd := &cobra.Command{
		Use:   "validate <input>",
		Short: "Validate input against a named rule or a built-in kind",
		Long: `Validate one input. With --rule the input is checked against a rule from the
rule definitions (--rules or GUARD_RULES_FILE); with --kind one of the built-in
validations runs. The validated value is printed on success.

Kinds: date, number, credit_card, choice, printable, uri, redirect, directory,
filename, safe_html.`,
		Example: `  guard validate --rules rules.yaml --rule Project.Safe.String 'Hello'
  guard validate --kind credit_card '4111 1111 1111 1111'
  guard validate --kind directory --root /srv/uploads 'avatars/2024'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (f.rule == "") == (f.kind == "") {
				return errors.New("exactly one of --rule or --kind is required")
			}
			label := f.label
			if label == "" {
				label = f.rule + f.kind
			}

			var (
				out any
				err error
			)
			if f.rule != "" {
				out, err = a.v.GetValidInput(cmd.Context(), label, args[0], f.rule, f.maxLength, f.allowNull, !f.raw)
			} else {
				out, err = a.validateKind(cmd.Context(), f, label, args[0])
			}
			if err != nil {
				for _, ve := range validator.ExtractValidationErrors(err) {
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", ve.Field, ve.Message)
				}
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.rule, "rule", "", "name of a rule from the rule definitions")
	flags.StringVar(&f.kind, "kind", "", "built-in kind to validate as")
	flags.StringVar(&f.label, "label", "", "context label reported in errors and audit events")
	flags.IntVar(&f.maxLength, "max-length", 0, "maximum canonical length, 0 for none")
	flags.BoolVar(&f.allowNull, "allow-null", false, "accept blank input")
	flags.BoolVar(&f.raw, "raw", false, "skip canonicalization (--rule only)")
	flags.StringVar(&f.root, "root", "", "root directory for --kind directory")
	flags.StringVar(&f.layout, "layout", "YYYY-MM-DD", "layout for --kind date")
	flags.StringSliceVar(&f.choices, "choices", nil, "allowed values for --kind choice")
	flags.StringSliceVar(&f.extensions, "extensions", nil, "allowed extensions for --kind filename")
	flags.Float64Var(&f.min, "min", math.Inf(-1), "lower bound for --kind number")
	flags.Float64Var(&f.max, "max", math.Inf(1), "upper bound for --kind number")
	return cmd
}

func (a *app) validateKind(ctx context.Context, f *validateFlags, label, input string) (any, error) {
	v := a.v
	switch f.kind {
	case "date":
		t, err := v.GetValidDate(ctx, label, input, f.layout, f.allowNull)
		if err != nil || t.IsZero() {
			return "", err
		}
		return t.Format(validator.GoLayout(f.layout)), nil
	case "number":
		return v.GetValidNumber(ctx, label, input, f.min, f.max, f.allowNull)
	case "credit_card":
		return v.GetValidCreditCard(ctx, label, input, f.allowNull)
	case "choice":
		return v.GetValidChoice(ctx, label, input, f.choices, f.allowNull)
	case "printable":
		return v.GetValidPrintable(ctx, label, input, f.maxLength, f.allowNull)
	case "uri":
		u, err := v.GetValidURI(ctx, label, input, f.maxLength, f.allowNull)
		if err != nil || u == nil {
			return "", err
		}
		return u.String(), nil
	case "redirect":
		u, err := v.GetValidRedirect(ctx, label, input, f.maxLength, f.allowNull)
		if err != nil || u == nil {
			return "", err
		}
		return u.String(), nil
	case "directory":
		if f.root == "" {
			return nil, errors.New("--root is required for --kind directory")
		}
		return v.GetValidDirectoryPath(ctx, label, input, f.root, f.allowNull)
	case "filename":
		return v.GetValidFileName(ctx, label, input, f.extensions, f.allowNull)
	case "safe_html":
		return v.GetValidSafeHTML(ctx, label, input, f.maxLength, f.allowNull)
	}
	return nil, fmt.Errorf("unsupported kind %q; use one of: date, number, credit_card, choice, printable, uri, redirect, directory, filename, safe_html", strings.TrimSpace(f.kind))
}
