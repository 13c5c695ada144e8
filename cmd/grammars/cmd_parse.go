package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/grammars/format"
	"github.com/dhamidi/grammars/grammar"
	"github.com/dhamidi/grammars/parse"
	"github.com/dhamidi/grammars/pattern"
	"github.com/dhamidi/grammars/rules"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("grammars.cmd")

func newParseCmd() *cobra.Command {
	var grammarFile string
	var dialect string
	var rule string
	var packrat bool
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "parse --grammar <file> [input]",
		Short: "Match input against a grammar and dump the match tree",
		Long: `Load a grammar and match the input against its root rule, or the
rule named by --rule. The whole input must match.

If no input file is provided, reads the input from stdin.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readGrammar(grammarFile, dialect)
			if err != nil {
				return err
			}

			opts := []grammar.Option{}
			if packrat {
				opts = append(opts, grammar.WithPackrat())
			}
			if rule != "" {
				opts = append(opts, grammar.WithRoot(rule))
			}
			engine, err := grammar.LoadRules(src.rules, opts...)
			if err != nil {
				return err
			}

			inputFile := "-"
			if len(args) > 0 {
				inputFile = args[0]
			}
			input, err := readSource(inputFile)
			if err != nil {
				return err
			}

			m, err := parse.Complete(engine, input)
			if p, ok := engine.(*parse.Packrat); ok && p.Cache() != nil {
				log.Infof("packrat cache: %d entries at %d offsets", p.Cache().Len(), len(p.Cache().Positions()))
			}
			if err != nil {
				return fmt.Errorf("parse %s: %w", inputFile, err)
			}

			out := cmd.OutOrStdout()
			switch outputFormat {
			case "json":
				enc := format.NewMatchJSONEncoder(out)
				enc.Rules = src.rules
				if err := enc.Encode(m); err != nil {
					return fmt.Errorf("encode json: %w", err)
				}
				fmt.Fprintln(out)
			case "tree":
				writeTree(out, m, ruleNames(src.rules), 0)
			case "none":
			default:
				return fmt.Errorf("unknown format: %s", outputFormat)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&grammarFile, "grammar", "g", "", "grammar file")
	cmd.Flags().StringVar(&dialect, "dialect", "", "grammar dialect (bnf, ebnf, w3c, go); detected when empty")
	cmd.Flags().StringVarP(&rule, "rule", "r", "", "rule to match instead of the root rule")
	cmd.Flags().BoolVar(&packrat, "packrat", false, "memoize intermediate matches")
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "json", "output format (json, tree, none)")
	cmd.MarkFlagRequired("grammar")

	return cmd
}

func ruleNames(rs *rules.RuleSet) map[pattern.Pattern]string {
	names := make(map[pattern.Pattern]string, rs.Len())
	for _, r := range rs.Rules() {
		if _, ok := names[r.Pattern]; !ok {
			names[r.Pattern] = r.Name
		}
	}
	return names
}

// writeTree prints one line per match: the rule name if the match was
// produced by a rule, its byte range and, for leaves, the matched text.
func writeTree(out io.Writer, m *parse.Match, names map[pattern.Pattern]string, depth int) {
	indent := strings.Repeat("  ", depth)
	if m == nil {
		fmt.Fprintf(out, "%s-\n", indent)
		return
	}
	label := names[m.Pattern]
	if label == "" {
		label = fmt.Sprintf("%T", m.Pattern)
		label = strings.TrimPrefix(label, "*pattern.")
	}
	if m.IsLeaf() {
		fmt.Fprintf(out, "%s%s [%d,%d) %q\n", indent, label, m.Start, m.End, m.Text)
		return
	}
	fmt.Fprintf(out, "%s%s [%d,%d)\n", indent, label, m.Start, m.End)
	for _, c := range m.Children {
		writeTree(out, c, names, depth+1)
	}
}
