package coverage

import (
	"strings"

	"doccov/internal/engine/parser"
)

// SourceParser is the parsing dependency of the analyzer.
type SourceParser interface {
	ParseFile(path string, content []byte) (*parser.File, error)
}

// Analyzer computes docstring coverage for Python source. It holds no
// per-request state and is safe for concurrent use when its parser is.
type Analyzer struct {
	parser SourceParser
}

func NewAnalyzer(p SourceParser) *Analyzer {
	return &Analyzer{parser: p}
}

// Analyze returns the coverage report for source. Empty or whitespace-only
// source is a vacuous pass and is never parsed. Syntax errors surface as a
// CodeParseFailure error with no report.
func (a *Analyzer) Analyze(path string, source []byte) (*Report, error) {
	if strings.TrimSpace(string(source)) == "" {
		return NewReport(path, nil), nil
	}

	file, err := a.parser.ParseFile(path, source)
	if err != nil {
		return nil, err
	}

	r := NewReport(path, file.Declarations)
	r.HasModuleDocstring = file.ModuleDocstring != nil
	return r, nil
}
