package format

import (
	"flag"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/dhamidi/grammars/grammar"
	"github.com/dhamidi/grammars/grammar/w3c"
	"github.com/dhamidi/grammars/rules"
)

var testcasesDir string
var testFilter string

func init() {
	flag.StringVar(&testcasesDir, "testcases", "testdata", "directory containing grammar files")
	flag.StringVar(&testFilter, "filter", "", "filter test files by substring match on filename")
}

func TestMain(m *testing.M) {
	flag.Parse()
	os.Exit(m.Run())
}

// TestRoundTrip_Testcases reads every grammar in the testcases directory,
// writes it as W3C EBNF, reads that back and writes it again. Both
// renderings must agree.
// Use -filter to select files: go test ./format -filter=json
func TestRoundTrip_Testcases(t *testing.T) {
	var files []string
	err := filepath.WalkDir(testcasesDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || (testFilter != "" && !strings.Contains(path, testFilter)) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		t.Fatalf("failed to walk testcases directory: %v", err)
	}
	if len(files) == 0 {
		t.Skipf("no grammar files found in %s", testcasesDir)
	}

	for _, file := range files {
		relPath, err := filepath.Rel(testcasesDir, file)
		if err != nil {
			relPath = filepath.Base(file)
		}
		testName := strings.ReplaceAll(relPath, string(filepath.Separator), "_")

		t.Run(testName, func(t *testing.T) {
			runRoundTripTest(t, file)
		})
	}
}

func runRoundTripTest(t *testing.T, filename string) {
	orig, err := grammar.ReadFile(filename)
	if err != nil {
		t.Fatalf("failed to read grammar: %v", err)
	}
	if d := orig.Diagnostics(); len(d) > 0 {
		t.Fatalf("unexpected diagnostics: %v", d)
	}

	first := encodeEBNF(t, orig)
	reread, err := w3c.Read(first)
	if err != nil {
		t.Fatalf("formatted output does not read back: %v\n\n=== Formatted output ===\n%s", err, first)
	}
	second := encodeEBNF(t, reread)
	if first != second {
		t.Errorf("formatting is not stable\n\n=== First ===\n%s\n=== Second ===\n%s", first, second)
	}

	if a, b := sortedRuleNames(orig), sortedRuleNames(reread); a != b {
		t.Errorf("rule names changed: %s -> %s", a, b)
	}
}

func encodeEBNF(t *testing.T, rs *rules.RuleSet) string {
	t.Helper()
	text, err := (&EBNFEncoder{rs: rs, Order: (*rules.RuleSet).Names}).MarshalText()
	if err != nil {
		t.Fatalf("formatter error: %v", err)
	}
	return string(text)
}

func sortedRuleNames(rs *rules.RuleSet) string {
	names := rs.Names()
	sort.Strings(names)
	return strings.Join(names, " ")
}
