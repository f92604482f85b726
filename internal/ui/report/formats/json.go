package formats

import (
	"encoding/json"
	"time"

	"doccov/internal/core/app"
	"doccov/internal/core/errors"

	"github.com/google/uuid"
)

type jsonReport struct {
	Version     string       `json:"version"`
	GeneratedAt time.Time    `json:"generated_at"`
	Summary     jsonSummary  `json:"summary"`
	Files       []jsonResult `json:"files"`
}

type jsonSummary struct {
	RunID         string  `json:"run_id,omitempty"`
	Files         int     `json:"files"`
	Total         int     `json:"total"`
	Documented    int     `json:"documented"`
	Percentage    float64 `json:"percentage"`
	ParseFailures int     `json:"parse_failures"`
	StyleFailures int     `json:"style_failures"`
	NonCompliant  int     `json:"non_compliant"`
	Violations    int     `json:"violations"`
	Passed        bool    `json:"passed"`
}

type jsonResult struct {
	Path         string            `json:"path"`
	RequestID    string            `json:"request_id"`
	Style        string            `json:"style"`
	Threshold    int               `json:"threshold"`
	Error        *jsonError        `json:"error,omitempty"`
	Total        int               `json:"total"`
	Documented   int               `json:"documented"`
	Percentage   float64           `json:"percentage"`
	Passed       bool              `json:"passed"`
	Vacuous      bool              `json:"vacuous"`
	Shortfall    int               `json:"shortfall"`
	Declarations []jsonDeclaration `json:"declarations"`
	Violations   []jsonViolation   `json:"violations"`
	StyleError   string            `json:"style_error,omitempty"`
}

type jsonError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type jsonDeclaration struct {
	Name          string `json:"name"`
	QualifiedName string `json:"qualified_name"`
	Kind          string `json:"kind"`
	Async         bool   `json:"async,omitempty"`
	Line          int    `json:"line"`
	Documented    bool   `json:"documented"`
}

type jsonViolation struct {
	Code       string `json:"code"`
	Line       int    `json:"line"`
	Message    string `json:"message"`
	Definition string `json:"definition,omitempty"`
	Checker    string `json:"checker,omitempty"`
}

// GenerateJSON renders results as a stable, indented JSON document.
func GenerateJSON(results []app.Result, sum app.Summary, opts Options) ([]byte, error) {
	if opts.GeneratedAt.IsZero() {
		opts.GeneratedAt = time.Now().UTC()
	}
	doc := jsonReport{
		Version:     nonEmpty(opts.Version, "unknown"),
		GeneratedAt: opts.GeneratedAt.UTC(),
		Summary: jsonSummary{
			Files:         sum.Files,
			Total:         sum.Total,
			Documented:    sum.Documented,
			Percentage:    sum.Percentage,
			ParseFailures: sum.ParseFailures,
			StyleFailures: sum.StyleFailures,
			NonCompliant:  sum.NonCompliant,
			Violations:    sum.Violations,
			Passed:        sum.AllPassed,
		},
		Files: make([]jsonResult, 0, len(results)),
	}
	if sum.RunID != uuid.Nil {
		doc.Summary.RunID = sum.RunID.String()
	}

	for _, r := range results {
		out := jsonResult{
			Path:         relPath(opts.ProjectRoot, r.Request.Path),
			RequestID:    r.Request.ID.String(),
			Style:        string(r.Request.Style),
			Threshold:    r.Request.Threshold,
			Passed:       r.Compliance.Passed,
			Vacuous:      r.Compliance.Vacuous,
			Shortfall:    r.Compliance.Shortfall,
			Declarations: []jsonDeclaration{},
			Violations:   []jsonViolation{},
		}
		if r.ParseErr != nil {
			out.Error = &jsonError{Code: string(errorCode(r.ParseErr)), Message: r.ParseErr.Error()}
		}
		if r.Report != nil {
			out.Total = r.Report.Total
			out.Documented = r.Report.Documented
			out.Percentage = r.Report.Percentage
			for _, d := range r.Declarations() {
				out.Declarations = append(out.Declarations, jsonDeclaration{
					Name:          d.Name,
					QualifiedName: d.QualifiedName,
					Kind:          d.Kind.String(),
					Async:         d.Async,
					Line:          d.Location.Line,
					Documented:    d.Documented,
				})
			}
		}
		for _, v := range r.Violations {
			out.Violations = append(out.Violations, jsonViolation{
				Code:       v.Code,
				Line:       v.Line,
				Message:    v.Message,
				Definition: v.Definition,
				Checker:    v.Checker,
			})
		}
		if r.ViolationsErr != nil {
			out.StyleError = r.ViolationsErr.Error()
		}
		doc.Files = append(doc.Files, out)
	}

	return json.MarshalIndent(doc, "", "  ")
}

func errorCode(err error) errors.ErrorCode {
	for _, code := range []errors.ErrorCode{
		errors.CodeParseFailure,
		errors.CodeNotFound,
		errors.CodeValidationError,
		errors.CodeStyleCheckFailed,
	} {
		if errors.IsCode(err, code) {
			return code
		}
	}
	return errors.CodeInternal
}
