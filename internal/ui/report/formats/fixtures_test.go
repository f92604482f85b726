package formats

import (
	"errors"
	"testing"

	"doccov/internal/core/app"
	domainerrors "doccov/internal/core/errors"
	"doccov/internal/engine/coverage"
	"doccov/internal/engine/parser"
	"doccov/internal/engine/style"
)

func decl(name string, kind parser.DeclarationKind, line int, documented bool) parser.Declaration {
	return parser.Declaration{
		Kind:          kind,
		Name:          name,
		QualifiedName: name,
		Documented:    documented,
		Location:      parser.Location{File: "pkg/mod.py", Line: line, Column: 1},
	}
}

func sampleResults(t *testing.T) ([]app.Result, app.Summary) {
	t.Helper()

	report := coverage.NewReport("/proj/pkg/mod.py", []parser.Declaration{
		decl("Calc", parser.KindClass, 1, true),
		decl("Calc.add", parser.KindFunction, 4, false),
		decl("helper", parser.KindFunction, 9, true),
	})
	compliance, err := coverage.Evaluate(report, 90)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	ok := app.Result{
		Request:    app.Request{Path: "/proj/pkg/mod.py", Style: style.StyleNumpy, Threshold: 90},
		Report:     report,
		Compliance: compliance,
		Violations: []style.Violation{
			{Code: "D102", Line: 4, Message: "Missing docstring in public method", Definition: "public method `add`", Checker: "builtin"},
		},
	}
	broken := app.Result{
		Request:       app.Request{Path: "/proj/pkg/broken.py", Style: style.StyleNumpy, Threshold: 90},
		ParseErr:      domainerrors.New(domainerrors.CodeParseFailure, "syntax error at line 2, column 5"),
		ViolationsErr: errors.New("pydocstyle not found"),
	}

	results := []app.Result{ok, broken}
	return results, app.Summarize(results)
}
