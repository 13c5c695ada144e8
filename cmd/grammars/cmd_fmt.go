package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/dhamidi/grammars/format"
	"github.com/dhamidi/grammars/rules"
	"github.com/spf13/cobra"
)

func newFmtCmd() *cobra.Command {
	var dialect string
	var fmtOverwrite bool
	var topological bool
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "fmt [file]",
		Short: "Rewrite a grammar in W3C EBNF notation",
		Long: `Read a grammar in any supported dialect and print its converted rules
in W3C EBNF notation, one rule per line, root rule first.

Recursion that conversion removed stays removed: left and right
recursive rules are printed as repetitions.

If no file is provided, reads the grammar from stdin.
Use -w to overwrite the file in place (requires a file argument).`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := "-"
			if len(args) > 0 {
				filename = args[0]
			}
			if fmtOverwrite && filename == "-" {
				return fmt.Errorf("-w requires a file argument")
			}

			src, err := readGrammar(filename, dialect)
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			var encoder format.Encoder
			switch outputFormat {
			case "ebnf":
				enc := format.NewEBNFEncoder(&buf)
				if topological {
					enc.Order = (*rules.RuleSet).SortedNames
				}
				encoder = enc
			case "json":
				encoder = format.NewRulesJSONEncoder(&buf)
			case "lines":
				encoder = format.NewLineEncoder(&buf)
			default:
				return fmt.Errorf("unknown format: %s", outputFormat)
			}
			if err := encoder.Encode(src.rules); err != nil {
				return fmt.Errorf("encode: %w", err)
			}

			if fmtOverwrite {
				if outputFormat != "ebnf" {
					return fmt.Errorf("-w only writes the ebnf format")
				}
				return os.WriteFile(filename, buf.Bytes(), 0644)
			}
			_, err = cmd.OutOrStdout().Write(buf.Bytes())
			return err
		},
	}

	cmd.Flags().StringVar(&dialect, "dialect", "", "grammar dialect (bnf, ebnf, w3c, go); detected when empty")
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "ebnf", "output format (ebnf, json, lines)")
	cmd.Flags().BoolVarP(&fmtOverwrite, "write", "w", false, "overwrite the file in place")
	cmd.Flags().BoolVarP(&topological, "topological", "t", false, "print rules after the rules they refer to")

	return cmd
}
