package formats

import (
	"fmt"
	"strings"

	"doccov/internal/core/app"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	fileStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true)

	passStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	failStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)

	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

type TextGenerator struct{}

func NewTextGenerator() *TextGenerator {
	return &TextGenerator{}
}

// Generate renders one block per result followed by a batch summary when
// more than one file was analyzed.
func (g *TextGenerator) Generate(results []app.Result, sum app.Summary, opts Options) (string, error) {
	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n")
		}
		g.writeResult(&b, r, opts)
	}
	if len(results) > 1 {
		b.WriteString("\n")
		g.writeSummary(&b, sum)
	}
	return b.String(), nil
}

func (g *TextGenerator) writeResult(b *strings.Builder, r app.Result, opts Options) {
	b.WriteString(fileStyle.Render(displayPath(opts.ProjectRoot, r)))
	b.WriteString("\n")

	if r.ParseErr != nil {
		b.WriteString(failStyle.Render("Cannot analyze: " + r.ParseErr.Error()))
		b.WriteString("\n")
	} else {
		decls := r.Declarations()
		if len(decls) == 0 {
			if r.Request.Filter != "" && r.Report.Total > 0 {
				b.WriteString(mutedStyle.Render(fmt.Sprintf("No declarations match %q.", r.Request.Filter)))
			} else {
				b.WriteString(mutedStyle.Render("No functions or classes found."))
			}
			b.WriteString("\n")
		} else {
			rows := make([][]string, 0, len(decls))
			for _, d := range decls {
				rows = append(rows, []string{
					d.QualifiedName,
					kindLabel(d),
					fmt.Sprintf("%d", d.Location.Line),
					statusLabel(d),
				})
			}
			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("Name", "Type", "Line", "Status").
				Rows(rows...).
				StyleFunc(func(row, col int) lipgloss.Style {
					if row == table.HeaderRow {
						return headerStyle
					}
					if col == 3 && row >= 0 && row < len(rows) {
						if rows[row][3] == "Documented" {
							return cellStyle.Foreground(lipgloss.Color("#10B981"))
						}
						return cellStyle.Foreground(lipgloss.Color("#F87171"))
					}
					return cellStyle
				})
			b.WriteString(t.String())
			b.WriteString("\n")
		}

		status := passStyle.Render(complianceLabel(r))
		if !r.Compliance.Passed {
			status = failStyle.Render(complianceLabel(r))
		}
		b.WriteString(fmt.Sprintf("Total Items: %d | Documentation Coverage: %s | Compliance Status: %s (threshold %d%%)\n",
			r.Report.Total, formatPercent(r.Report.Percentage), status, r.Request.Threshold))
		if !r.Compliance.Passed && r.Compliance.Shortfall > 0 {
			b.WriteString(mutedStyle.Render(fmt.Sprintf("Document %d more declaration(s) to pass.", r.Compliance.Shortfall)))
			b.WriteString("\n")
		}
	}

	switch {
	case r.ViolationsErr != nil:
		b.WriteString(warnStyle.Render("Style check failed: " + r.ViolationsErr.Error()))
		b.WriteString("\n")
	case len(r.Violations) > 0:
		b.WriteString(fmt.Sprintf("Style violations (%s, %d):\n", r.Request.Style, len(r.Violations)))
		for _, v := range r.Violations {
			line := fmt.Sprintf("  %d: %s %s", v.Line, v.Code, v.Message)
			if v.Definition != "" {
				line += mutedStyle.Render(" [" + v.Definition + "]")
			}
			b.WriteString(line + "\n")
		}
	}
}

func (g *TextGenerator) writeSummary(b *strings.Builder, sum app.Summary) {
	status := passStyle.Render("PASSED")
	if !sum.AllPassed {
		status = failStyle.Render("FAILED")
	}
	b.WriteString(fmt.Sprintf("Files: %d | Total Items: %d | Documentation Coverage: %s | Compliance Status: %s\n",
		sum.Files, sum.Total, formatPercent(sum.Percentage), status))
	if sum.ParseFailures > 0 || sum.NonCompliant > 0 || sum.StyleFailures > 0 {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("%d unparseable, %d below threshold, %d style check failures, %d violations",
			sum.ParseFailures, sum.NonCompliant, sum.StyleFailures, sum.Violations)))
		b.WriteString("\n")
	}
}
