package style

import (
	"fmt"
	"sort"
	"strings"

	"doccov/internal/core/errors"
)

// Style is the docstring convention a project follows.
type Style string

const (
	StyleNumpy  Style = "numpy"
	StyleGoogle Style = "google"
	StyleReST   Style = "reST"
)

// Styles lists every supported convention in display order.
var Styles = []Style{StyleNumpy, StyleGoogle, StyleReST}

// ParseStyle accepts a style name in any case. "rest" and
// "restructuredtext" both select reST.
func ParseStyle(s string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "numpy":
		return StyleNumpy, nil
	case "google":
		return StyleGoogle, nil
	case "rest", "restructuredtext":
		return StyleReST, nil
	}
	return "", errors.New(errors.CodeValidationError,
		fmt.Sprintf("unsupported docstring style %q (expected numpy, google or reST)", s))
}

// Convention maps the style to the pydocstyle --convention value.
func (s Style) Convention() string {
	switch s {
	case StyleGoogle:
		return "google"
	case StyleReST:
		return "pep257"
	default:
		return "numpy"
	}
}

func (s Style) String() string {
	return string(s)
}

// Violation is one style problem reported against a docstring.
type Violation struct {
	Code       string
	Line       int
	Message    string
	Checker    string
	Definition string // e.g. "public method `process_item`"
}

func (v Violation) String() string {
	return fmt.Sprintf("%d: %s %s", v.Line, v.Code, v.Message)
}

// SortViolations orders violations by line, then code.
func SortViolations(vs []Violation) {
	sort.SliceStable(vs, func(i, j int) bool {
		if vs[i].Line != vs[j].Line {
			return vs[i].Line < vs[j].Line
		}
		return vs[i].Code < vs[j].Code
	})
}

const (
	CheckerBuiltin    = "builtin"
	CheckerPydocstyle = "pydocstyle"
	CheckerNone       = "none"
)

// Checkers lists the accepted checker names.
var Checkers = []string{CheckerBuiltin, CheckerPydocstyle, CheckerNone}
