package coverage

import (
	"strings"

	"doccov/internal/engine/parser"
)

// Report aggregates docstring coverage over every declaration of one file.
type Report struct {
	Path               string
	Total              int
	Documented         int
	Percentage         float64
	HasModuleDocstring bool
	Declarations       []parser.Declaration
}

// NewReport derives the totals from decls. An empty declaration list is a
// vacuous pass at 100%.
func NewReport(path string, decls []parser.Declaration) *Report {
	r := &Report{
		Path:         path,
		Total:        len(decls),
		Declarations: decls,
	}
	for _, d := range decls {
		if d.Documented {
			r.Documented++
		}
	}
	r.Percentage = Percentage(r.Documented, r.Total)
	return r
}

// Percentage is documented/total*100, and 100 when total is zero.
func Percentage(documented, total int) float64 {
	if total <= 0 {
		return 100
	}
	return float64(documented) * 100 / float64(total)
}

func (r *Report) Undocumented() int {
	return r.Total - r.Documented
}

// Filter returns declarations whose name or qualified name contains query,
// ignoring case. An empty query returns every declaration.
func (r *Report) Filter(query string) []parser.Declaration {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return r.Declarations
	}
	out := make([]parser.Declaration, 0, len(r.Declarations))
	for _, d := range r.Declarations {
		if strings.Contains(strings.ToLower(d.QualifiedName), query) {
			out = append(out, d)
		}
	}
	return out
}

// Counts returns totals split by declaration kind.
func (r *Report) Counts() map[parser.DeclarationKind]KindCount {
	counts := make(map[parser.DeclarationKind]KindCount, 2)
	for _, d := range r.Declarations {
		c := counts[d.Kind]
		c.Total++
		if d.Documented {
			c.Documented++
		}
		counts[d.Kind] = c
	}
	return counts
}

type KindCount struct {
	Total      int
	Documented int
}
