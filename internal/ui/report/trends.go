package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"doccov/internal/data/history"
)

func RenderTrendTSV(report history.TrendReport) ([]byte, error) {
	var buf strings.Builder

	buf.WriteString("Timestamp\tRun\tTotal\tDocumented\tPercentage\tPassed\tDeltaPercentage\tDeltaDocumented\n")
	for _, point := range report.Points {
		buf.WriteString(fmt.Sprintf(
			"%s\t%s\t%d\t%d\t%.2f\t%t\t%.2f\t%d\n",
			point.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
			point.RunID,
			point.Total,
			point.Documented,
			point.Percentage,
			point.Passed,
			point.DeltaPercentage,
			point.DeltaDocumented,
		))
	}

	return []byte(buf.String()), nil
}

func RenderTrendJSON(report history.TrendReport) ([]byte, error) {
	return json.MarshalIndent(report, "", "  ")
}

// RenderTrendText is the short human summary printed by -trend.
func RenderTrendText(report history.TrendReport) string {
	scope := report.Path
	if scope == "" {
		scope = "all files"
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("History (%s): %d runs from %s to %s\n",
		scope,
		report.RunCount,
		report.Since.Format("2006-01-02 15:04:05"),
		report.Until.Format("2006-01-02 15:04:05"),
	))
	b.WriteString(fmt.Sprintf("Coverage: %.2f%% -> %.2f%% (%+.2f)\n",
		report.First.Percentage, report.Last.Percentage, report.DeltaPercentage))
	for _, p := range report.Points {
		b.WriteString(fmt.Sprintf("  %s  %6.2f%%  %d/%d  %+.2f\n",
			p.Timestamp.Format("2006-01-02 15:04"), p.Percentage, p.Documented, p.Total, p.DeltaPercentage))
	}
	return b.String()
}
