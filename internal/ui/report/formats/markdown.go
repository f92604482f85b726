package formats

import (
	"fmt"
	"strings"
	"time"

	"doccov/internal/core/app"
)

type MarkdownGenerator struct{}

func NewMarkdownGenerator() *MarkdownGenerator {
	return &MarkdownGenerator{}
}

func (m *MarkdownGenerator) Generate(results []app.Result, sum app.Summary, opts Options) (string, error) {
	if opts.GeneratedAt.IsZero() {
		opts.GeneratedAt = time.Now().UTC()
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("title: Docstring Coverage Report\n")
	b.WriteString("generated_at: " + opts.GeneratedAt.UTC().Format(time.RFC3339) + "\n")
	b.WriteString("version: " + nonEmpty(opts.Version, "unknown") + "\n")
	b.WriteString("---\n\n")

	b.WriteString("# Docstring Coverage Report\n\n")
	m.writeSummary(&b, sum)

	for _, r := range results {
		m.writeResult(&b, r, opts.ProjectRoot)
	}
	return b.String(), nil
}

// Summary renders only the executive summary table, for embedding into
// existing documents.
func (m *MarkdownGenerator) Summary(sum app.Summary) string {
	var b strings.Builder
	m.writeSummary(&b, sum)
	return strings.TrimRight(b.String(), "\n")
}

func (m *MarkdownGenerator) writeSummary(b *strings.Builder, sum app.Summary) {
	status := "✅ PASSED"
	if !sum.AllPassed {
		status = "❌ FAILED"
	}
	b.WriteString("## Summary\n")
	b.WriteString("| Metric | Value |\n")
	b.WriteString("| --- | --- |\n")
	b.WriteString(fmt.Sprintf("| Files | %d |\n", sum.Files))
	b.WriteString(fmt.Sprintf("| Total Items | %d |\n", sum.Total))
	b.WriteString(fmt.Sprintf("| Documented | %d |\n", sum.Documented))
	b.WriteString(fmt.Sprintf("| Documentation Coverage | %s |\n", formatPercent(sum.Percentage)))
	b.WriteString(fmt.Sprintf("| Style Violations | %d |\n", sum.Violations))
	b.WriteString(fmt.Sprintf("| Compliance Status | %s |\n\n", status))
}

func (m *MarkdownGenerator) writeResult(b *strings.Builder, r app.Result, root string) {
	b.WriteString(fmt.Sprintf("## `%s`\n", displayPath(root, r)))
	if r.ParseErr != nil {
		b.WriteString(fmt.Sprintf("Cannot analyze: %s\n\n", escapeCell(r.ParseErr.Error())))
	} else {
		b.WriteString(fmt.Sprintf("Coverage **%s** of %d items, threshold %d%%: **%s**\n\n",
			formatPercent(r.Report.Percentage), r.Report.Total, r.Request.Threshold, complianceLabel(r)))

		decls := r.Declarations()
		if len(decls) == 0 {
			b.WriteString("No functions or classes found.\n\n")
		} else {
			b.WriteString("| Name | Type | Line | Status |\n")
			b.WriteString("| --- | --- | --- | --- |\n")
			for _, d := range decls {
				b.WriteString(fmt.Sprintf("| `%s` | %s | %d | %s |\n", d.QualifiedName, kindLabel(d), d.Location.Line, statusLabel(d)))
			}
			b.WriteString("\n")
		}
	}

	if r.ViolationsErr != nil {
		b.WriteString(fmt.Sprintf("Style check failed: %s\n\n", escapeCell(r.ViolationsErr.Error())))
		return
	}
	if len(r.Violations) == 0 {
		return
	}
	b.WriteString("| Line | Code | Message | Definition |\n")
	b.WriteString("| --- | --- | --- | --- |\n")
	for _, v := range r.Violations {
		b.WriteString(fmt.Sprintf("| %d | `%s` | %s | %s |\n", v.Line, v.Code, escapeCell(v.Message), escapeCell(v.Definition)))
	}
	b.WriteString("\n")
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}
