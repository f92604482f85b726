package formats

import (
	"fmt"
	"strings"

	"doccov/internal/core/app"
)

type TSVGenerator struct{}

func NewTSVGenerator() *TSVGenerator {
	return &TSVGenerator{}
}

// Generate emits one row per declaration, parse failure and style
// violation. The Type column tells the row kinds apart.
func (t *TSVGenerator) Generate(results []app.Result, opts Options) (string, error) {
	var buf strings.Builder

	buf.WriteString("Type\tFile\tName\tKind\tLine\tStatus\tCode\tMessage\n")
	for _, r := range results {
		file := relPath(opts.ProjectRoot, r.Request.Path)
		if r.ParseErr != nil {
			buf.WriteString(fmt.Sprintf("parse_failure\t%s\t\t\t0\tERROR\t%s\t%s\n",
				file, errorCode(r.ParseErr), tsvField(r.ParseErr.Error())))
		}
		for _, d := range r.Declarations() {
			buf.WriteString(fmt.Sprintf("declaration\t%s\t%s\t%s\t%d\t%s\t\t\n",
				file,
				d.QualifiedName,
				kindLabel(d),
				d.Location.Line,
				statusLabel(d),
			))
		}
		for _, v := range r.Violations {
			buf.WriteString(fmt.Sprintf("violation\t%s\t\t\t%d\t\t%s\t%s\n",
				file,
				v.Line,
				v.Code,
				tsvField(v.Message),
			))
		}
	}

	return buf.String(), nil
}

// GenerateSummary emits one row per file with its coverage figures.
func (t *TSVGenerator) GenerateSummary(results []app.Result, opts Options) (string, error) {
	var buf strings.Builder

	buf.WriteString("File\tTotal\tDocumented\tPercentage\tThreshold\tStatus\tViolations\n")
	for _, r := range results {
		total, documented, pct := 0, 0, 0.0
		if r.Report != nil {
			total, documented, pct = r.Report.Total, r.Report.Documented, r.Report.Percentage
		}
		buf.WriteString(fmt.Sprintf("%s\t%d\t%d\t%.2f\t%d\t%s\t%d\n",
			relPath(opts.ProjectRoot, r.Request.Path),
			total,
			documented,
			pct,
			r.Request.Threshold,
			complianceLabel(r),
			len(r.Violations),
		))
	}

	return buf.String(), nil
}

func tsvField(s string) string {
	return strings.NewReplacer("\t", " ", "\n", " ", "\r", " ").Replace(s)
}
