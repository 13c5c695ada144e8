package lsp

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"unicode/utf16"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/dhamidi/grammars/grammar"
	"github.com/dhamidi/grammars/grammar/goebnf"
	"github.com/dhamidi/grammars/parse"
	"github.com/dhamidi/grammars/rules"
)

// Extensions lists the file extensions ScanAll treats as grammars.
var Extensions = []string{".bnf", ".ebnf", ".w3c"}

// Workspace holds the grammar documents of an editor session.
type Workspace struct {
	mu      sync.RWMutex
	rootDir string
	files   map[string]*Document
}

// Document is one grammar file together with the result of reading it.
// Err is set when no dialect accepts Content; Rules is nil then.
type Document struct {
	Path        string
	Content     []byte
	Dialect     string
	Productions []rules.Production
	Rules       *rules.RuleSet
	Err         error
}

func NewWorkspace(rootDir string) *Workspace {
	return &Workspace{
		rootDir: rootDir,
		files:   make(map[string]*Document),
	}
}

func (w *Workspace) RootDir() string {
	return w.rootDir
}

// ScanAll reads every grammar file below the root directory, skipping
// hidden directories.
func (w *Workspace) ScanAll() error {
	return filepath.Walk(w.rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if path != w.rootDir && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if isGrammarFile(path) {
			w.ScanFile(path)
		}
		return nil
	})
}

func isGrammarFile(path string) bool {
	ext := filepath.Ext(path)
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

func (w *Workspace) ScanFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	w.UpdateFile(path, content)
	return nil
}

// UpdateFile replaces the content of path and reads it again.
func (w *Workspace) UpdateFile(path string, content []byte) *Document {
	doc := readDocument(path, content)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.files[path] = doc
	return doc
}

func readDocument(path string, content []byte) *Document {
	doc := &Document{Path: path, Content: content}
	d, prods, err := grammar.Detect(string(content))
	if err != nil {
		doc.Err = err
		log.Debugf("%s: %s", path, err)
		return doc
	}
	doc.Dialect = d.Name
	doc.Productions = prods
	// A failed conversion still leaves the diagnostics explaining it.
	doc.Rules, _ = rules.Convert(prods)
	return doc
}

func (w *Workspace) RemoveFile(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.files, path)
}

func (w *Workspace) GetFile(path string) *Document {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.files[path]
}

// Paths returns the paths of all documents, sorted.
func (w *Workspace) Paths() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	paths := make([]string, 0, len(w.files))
	for path := range w.files {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

const diagnosticSource = "grammars"

// Diagnostics reports the syntax error of the document, or the problems
// found while converting it.
func (d *Document) Diagnostics() []protocol.Diagnostic {
	out := []protocol.Diagnostic{}
	if d.Err != nil {
		offset := 0
		var serr *parse.SyntaxError
		if errors.As(d.Err, &serr) {
			offset = serr.Offset
		}
		return append(out, d.diagnostic(protocol.DiagnosticSeverityError, offset, d.Err.Error()))
	}
	if d.Rules == nil {
		return out
	}
	for _, diag := range d.Rules.Diagnostics() {
		severity := protocol.DiagnosticSeverityWarning
		if diag.Severity == rules.Error {
			severity = protocol.DiagnosticSeverityError
		}
		message := diag.Message
		if diag.Rule != "" {
			message = diag.Rule + ": " + message
		}
		out = append(out, d.diagnostic(severity, diag.Offset, message))
	}
	if d.Dialect == "go" {
		if root, ok := d.Rules.First(); ok {
			if err := goebnf.Verify(string(d.Content), root.Name); err != nil {
				out = append(out, d.diagnostic(protocol.DiagnosticSeverityWarning, 0, err.Error()))
			}
		}
	}
	return out
}

func (d *Document) diagnostic(severity protocol.DiagnosticSeverity, offset int, message string) protocol.Diagnostic {
	source := diagnosticSource
	return protocol.Diagnostic{
		Range:    d.wordRange(offset),
		Severity: &severity,
		Source:   &source,
		Message:  message,
	}
}

// Completions returns the rule names defined in the document that start
// with the word before offset.
func (d *Document) Completions(offset int) []string {
	start, _ := wordBounds(d.Content, offset)
	prefix := string(d.Content[start:clampOffset(d.Content, offset)])

	seen := make(map[string]bool)
	var names []string
	for _, p := range d.Productions {
		if seen[p.Name] || !strings.HasPrefix(p.Name, prefix) {
			continue
		}
		seen[p.Name] = true
		names = append(names, p.Name)
	}
	sort.Strings(names)
	return names
}

// Definition returns the production whose name is under offset, either at
// its definition or at a reference.
func (d *Document) Definition(offset int) (rules.Production, bool) {
	start, end := wordBounds(d.Content, offset)
	if start == end {
		return rules.Production{}, false
	}
	name := string(d.Content[start:end])
	for _, p := range d.Productions {
		if p.Name == name {
			return p, true
		}
	}
	return rules.Production{}, false
}

// Symbols returns one symbol per production, in source order.
func (d *Document) Symbols() []protocol.DocumentSymbol {
	symbols := []protocol.DocumentSymbol{}
	for _, p := range d.Productions {
		detail := d.Dialect
		if d.Rules != nil {
			if _, ok := d.Rules.Get(p.Name); !ok {
				detail += ", not converted"
			}
		}
		r := d.wordRange(p.Offset)
		symbols = append(symbols, protocol.DocumentSymbol{
			Name:           p.Name,
			Detail:         &detail,
			Kind:           protocol.SymbolKindFunction,
			Range:          r,
			SelectionRange: r,
		})
	}
	return symbols
}

// Offset converts an editor position into a byte offset.
func (d *Document) Offset(pos protocol.Position) int {
	return pos.IndexIn(string(d.Content))
}

// wordRange is the range of the rule name starting at offset, or an empty
// range when there is none.
func (d *Document) wordRange(offset int) protocol.Range {
	offset = clampOffset(d.Content, offset)
	_, end := wordBounds(d.Content, offset)
	if end < offset {
		end = offset
	}
	return protocol.Range{
		Start: positionAt(d.Content, offset),
		End:   positionAt(d.Content, end),
	}
}

// positionAt converts a byte offset into a line and a UTF-16 column.
func positionAt(content []byte, offset int) protocol.Position {
	offset = clampOffset(content, offset)
	var pos protocol.Position
	for _, r := range string(content[:offset]) {
		if r == '\n' {
			pos.Line++
			pos.Character = 0
			continue
		}
		pos.Character += protocol.UInteger(utf16.RuneLen(r))
	}
	return pos
}

func clampOffset(content []byte, offset int) int {
	return min(max(offset, 0), len(content))
}

// wordBounds returns the extent of the rule name around offset.
func wordBounds(content []byte, offset int) (int, int) {
	offset = clampOffset(content, offset)
	start, end := offset, offset
	for start > 0 && isNameByte(content[start-1]) {
		start--
	}
	for end < len(content) && isNameByte(content[end]) {
		end++
	}
	return start, end
}

func isNameByte(c byte) bool {
	return c == '_' || c == '-' || c == '.' ||
		('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}
