package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func (a *app) rulesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "Load the rule definitions and list them",
		Long: `Load the rule definitions from --rules or GUARD_RULES_FILE, report any error
with the name of the offending rule, and list every rule with its kind.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rs := a.v.RuleSet()
			if rs.Len() == 0 {
				return errors.New("no rules loaded; pass --rules or set GUARD_RULES_FILE")
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, name := range rs.Names() {
				rule, _ := rs.Get(name)
				_, _ = fmt.Fprintf(w, "%s\t%s\n", name, rule.Kind())
			}
			return w.Flush()
		},
	}
}
