package rules

import "fmt"

// Severity classifies a Diagnostic.
type Severity int

const (
	Warning Severity = iota
	Error
)

func (s Severity) String() string {
	switch s {
	case Warning:
		return "warning"
	case Error:
		return "error"
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

// Diagnostic is a problem found while converting a grammar. Conversion
// continues past every diagnostic; the affected rule is omitted or left
// with an unresolved reference.
type Diagnostic struct {
	Severity Severity
	Rule     string // the rule being converted
	Name     string // the referenced name, if any
	Offset   int    // byte offset in the grammar source, -1 if unknown
	Message  string
}

func (d Diagnostic) String() string {
	if d.Rule == "" {
		return fmt.Sprintf("%s: %s", d.Severity, d.Message)
	}
	return fmt.Sprintf("%s: %s: %s", d.Severity, d.Rule, d.Message)
}
