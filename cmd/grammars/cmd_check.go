package main

import (
	"errors"
	"fmt"
	"io"
	"reflect"

	"github.com/dhamidi/grammars/format"
	"github.com/dhamidi/grammars/grammar/goebnf"
	"github.com/dhamidi/grammars/rules"
	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	var dialect string
	var startProduction string

	cmd := &cobra.Command{
		Use:   "check <file>...",
		Short: "Read grammar files and report their rules and diagnostics",
		Long: `Read grammar files and report, one line each, every rule with its
reference count and references, every undefined name and every
diagnostic found while converting the grammar.

The dialect is detected unless --dialect is given. Use - to read stdin.
Exits with an error when a grammar cannot be read or has error
diagnostics.`,
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			failed := 0
			for _, filename := range args {
				if err := checkFile(out, filename, dialect, startProduction, len(args) > 1); err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), err)
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d grammars failed", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dialect, "dialect", "", "grammar dialect (bnf, ebnf, w3c, go); detected when empty")
	cmd.Flags().StringVar(&startProduction, "start", "", "start production for Go EBNF verification")

	return cmd
}

func checkFile(out io.Writer, filename, dialect, start string, header bool) error {
	src, err := readGrammar(filename, dialect)
	if src == nil {
		return err
	}
	if header {
		fmt.Fprintf(out, "# %s (%s)\n", filename, src.dialect)
	}
	if encErr := format.NewLineEncoder(out).Encode(src.rules); encErr != nil {
		return fmt.Errorf("encode: %w", encErr)
	}
	if err != nil {
		return err
	}

	if start != "" {
		if src.dialect != "go" {
			return fmt.Errorf("%s: --start requires a Go EBNF grammar, got %s", filename, src.dialect)
		}
		if err := goebnf.Verify(src.text, start); err != nil {
			printErrors(out, err)
			return fmt.Errorf("%s: verification failed", filename)
		}
	}

	for _, d := range src.rules.Diagnostics() {
		if d.Severity == rules.Error {
			return fmt.Errorf("%s: %s", filename, d)
		}
	}
	return nil
}

// printErrors prints one line per error of an error list.
func printErrors(out io.Writer, err error) {
	for errors.Unwrap(err) != nil {
		err = errors.Unwrap(err)
	}
	v := reflect.ValueOf(err)
	if v.Kind() == reflect.Slice {
		for i := 0; i < v.Len(); i++ {
			fmt.Fprintln(out, v.Index(i).Interface())
		}
	} else {
		fmt.Fprintln(out, err)
	}
}
