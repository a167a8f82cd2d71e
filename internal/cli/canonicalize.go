package cli

import (
	"bufio"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

type canonicalOutput struct {
	Value   string   `json:"value"`
	Pattern string   `json:"pattern"`
	Codecs  []string `json:"codecs"`
}

func (a *app) canonicalizeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "canonicalize [input...]",
		Short: "Reduce input to its canonical form",
		Long: `Decode every encoding layer of each input and print the canonical value,
the observed encoding pattern and the codecs that changed it, one JSON object
per line. Inputs are read from stdin, one per line, when no arguments are given.

Mixed encodings, malformed encodings and repeated encodings (unless
--allow-multiple is set) stop processing with exit status 2.`,
		Example: `  guard canonicalize '%3Cscript%3E'
  guard canonicalize --allow-multiple '%253C'
  cat inputs.txt | guard canonicalize`,
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := json.NewEncoder(cmd.OutOrStdout())
			emit := func(input string) error {
				res, err := a.v.Canonicalize(input)
				if err != nil {
					return err
				}
				codecs := res.Codecs
				if codecs == nil {
					codecs = []string{}
				}
				return enc.Encode(canonicalOutput{Value: res.Value, Pattern: res.Pattern.String(), Codecs: codecs})
			}

			if len(args) > 0 {
				for _, in := range args {
					if err := emit(in); err != nil {
						return err
					}
				}
				return nil
			}

			sc := bufio.NewScanner(cmd.InOrStdin())
			for sc.Scan() {
				if err := emit(sc.Text()); err != nil {
					return err
				}
			}
			if err := sc.Err(); err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			return nil
		},
	}
}
