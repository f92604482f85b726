package style

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"doccov/internal/core/errors"
	"doccov/internal/engine/parser"
)

// SourceParser is the parsing dependency of the builtin checker.
type SourceParser interface {
	ParseFile(path string, content []byte) (*parser.File, error)
}

// BuiltinChecker implements a PEP 257 subset on the tree-sitter syntax tree
// and reports pydocstyle-compatible codes.
type BuiltinChecker struct {
	parser SourceParser
}

func NewBuiltinChecker(p SourceParser) *BuiltinChecker {
	return &BuiltinChecker{parser: p}
}

func (c *BuiltinChecker) Name() string { return CheckerBuiltin }

func (c *BuiltinChecker) Check(ctx context.Context, path string, source []byte, style Style) ([]Violation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := c.parser.ParseFile(path, source)
	if err != nil {
		de := &errors.DomainError{
			Code:    errors.CodeStyleCheckFailed,
			Message: "builtin checker could not parse source",
			Err:     err,
		}
		return nil, de.WithContext(errors.CtxChecker, CheckerBuiltin).WithContext(errors.CtxPath, path)
	}

	rules := rulesFor(style)
	var out []Violation
	report := func(code string, line int, definition, msg string) {
		if rules.ignored[code] {
			return
		}
		out = append(out, Violation{
			Code:       code,
			Line:       line,
			Message:    msg,
			Checker:    CheckerBuiltin,
			Definition: definition,
		})
	}

	if file.ModuleDocstring == nil {
		if isPublicModule(path) {
			report("D100", 1, "module", "Missing docstring in public module")
		}
	} else {
		checkContent(file.ModuleDocstring, "module", nil, rules, report)
	}

	public := make(map[string]bool, len(file.Declarations))
	for _, decl := range file.Declarations {
		pub := isPublic(decl, public)
		public[decl.QualifiedName] = pub
		definition := describe(decl, pub)

		if decl.Docstring == nil {
			if code, msg := missingCode(decl, pub); code != "" {
				report(code, decl.Location.Line, definition, msg)
			}
			continue
		}
		checkContent(decl.Docstring, definition, &decl, rules, report)
	}

	SortViolations(out)
	return out, nil
}

type ruleSet struct {
	style   Style
	ignored map[string]bool
}

// rulesFor mirrors the pydocstyle conventions for the codes implemented here.
func rulesFor(style Style) ruleSet {
	switch style {
	case StyleGoogle:
		return ruleSet{style: style, ignored: map[string]bool{"D400": true, "D407": true}}
	case StyleReST:
		return ruleSet{style: style, ignored: map[string]bool{"D407": true, "D415": true}}
	default:
		return ruleSet{style: StyleNumpy, ignored: map[string]bool{"D107": true, "D415": true}}
	}
}

type reportFunc func(code string, line int, definition, msg string)

func checkContent(doc *parser.Docstring, definition string, decl *parser.Declaration, rules ruleSet, report reportFunc) {
	cleaned := doc.Cleaned()
	if cleaned == "" {
		report("D419", doc.Line, definition, "Docstring is empty")
		return
	}

	if doc.Quote != `"""` && !strings.Contains(doc.Body, `"""`) {
		report("D300", doc.Line, definition,
			fmt.Sprintf(`Use """triple double quotes""" (found %s-quotes)`, doc.Quote))
	}

	lines := strings.Split(cleaned, "\n")
	rawLines := strings.Split(doc.Body, "\n")

	if len(lines) == 1 && len(rawLines) > 1 {
		report("D200", doc.Line, definition,
			fmt.Sprintf("One-line docstring should fit on one line with quotes (found %d)", len(rawLines)))
	}

	if first := rawLines[0]; strings.HasPrefix(first, " ") || strings.HasPrefix(first, "\t") ||
		(len(rawLines) == 1 && strings.TrimRight(first, " \t") != first) {
		report("D210", doc.Line, definition, "No whitespaces allowed surrounding docstring text")
	}

	if len(lines) > 1 {
		blanks := 0
		for _, line := range lines[1:] {
			if line != "" {
				break
			}
			blanks++
		}
		if blanks != 1 {
			report("D205", doc.Line, definition,
				fmt.Sprintf("1 blank line required between summary line and description (found %d)", blanks))
		}
	}
	if len(rawLines) > 1 && strings.TrimSpace(rawLines[len(rawLines)-1]) != "" {
		report("D209", doc.EndLine, definition,
			"Multi-line docstring closing quotes should be on a separate line")
	}

	summary := lines[0]
	r, _ := utf8.DecodeLastRuneInString(summary)
	last := string(r)
	if !strings.HasSuffix(summary, ".") {
		report("D400", doc.Line, definition,
			fmt.Sprintf("First line should end with a period (not %q)", last))
	}
	if !strings.HasSuffix(summary, ".") && !strings.HasSuffix(summary, "?") && !strings.HasSuffix(summary, "!") {
		report("D415", doc.Line, definition,
			fmt.Sprintf("First line should end with a period, question mark, or exclamation point (not %q)", last))
	}

	if rules.style == StyleNumpy {
		for _, section := range missingUnderlines(lines) {
			report("D407", doc.Line, definition,
				fmt.Sprintf("Missing dashed underline after section (%q)", section))
		}
	}

	if decl != nil && decl.Kind == parser.KindFunction {
		if missing := missingArguments(lines, *decl, rules.style); len(missing) > 0 {
			report("D417", doc.Line, definition,
				fmt.Sprintf("Missing argument descriptions in the docstring (argument(s) %s are missing descriptions in %q docstring)",
					strings.Join(missing, ", "), decl.Name))
		}
	}
}

func missingCode(decl parser.Declaration, public bool) (string, string) {
	if !public {
		return "", ""
	}
	if decl.Kind == parser.KindClass {
		return "D101", "Missing docstring in public class"
	}
	if decl.Scope != parser.ScopeClass {
		return "D103", "Missing docstring in public function"
	}
	switch {
	case decl.Name == "__init__":
		return "D107", "Missing docstring in __init__"
	case isMagic(decl.Name):
		return "D105", "Missing docstring in magic method"
	default:
		return "D102", "Missing docstring in public method"
	}
}

// isPublic follows pydocstyle: underscore names are private except dunder
// methods, anything defined inside a function is private, and members of
// private classes are private.
func isPublic(decl parser.Declaration, known map[string]bool) bool {
	if decl.Scope == parser.ScopeFunction {
		return false
	}
	if decl.Parent != "" && !known[decl.Parent] {
		return false
	}
	if decl.Kind == parser.KindFunction && decl.Scope == parser.ScopeClass && isMagic(decl.Name) {
		return true
	}
	return !strings.HasPrefix(decl.Name, "_")
}

func isMagic(name string) bool {
	return len(name) > 4 && strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__")
}

func isPublicModule(path string) bool {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return base == "__init__" || !strings.HasPrefix(base, "_")
}

func describe(decl parser.Declaration, public bool) string {
	visibility := "private"
	if public {
		visibility = "public"
	}
	kind := "class"
	if decl.Kind == parser.KindFunction {
		kind = "function"
		if decl.Scope == parser.ScopeClass {
			kind = "method"
		}
	}
	if decl.Scope == parser.ScopeFunction {
		return fmt.Sprintf("nested %s `%s`", kind, decl.Name)
	}
	return fmt.Sprintf("%s %s `%s`", visibility, kind, decl.Name)
}
