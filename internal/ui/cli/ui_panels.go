package cli

import (
	"fmt"
	"strings"

	"doccov/internal/data/history"
)

func renderHelp(m model) string {
	keys := "Keys: tab panel | / filter | o open in $EDITOR | t trend | q quit"
	if m.activeList().SettingFilter() {
		keys = "Keys: enter apply filter | esc clear"
	}
	return statusStyle.Render(keys)
}

func renderTrendOverlay(report *history.TrendReport) string {
	if report == nil || len(report.Points) == 0 {
		return statusStyle.Render("Trend unavailable (run with -history to capture snapshots).")
	}
	lines := []string{
		"Coverage Trend",
		fmt.Sprintf("  Runs: %d | %s -> %s", report.RunCount,
			report.Since.Format("2006-01-02 15:04"), report.Until.Format("2006-01-02 15:04")),
		fmt.Sprintf("  Coverage: %.2f%% -> %.2f%% (%+.2f)", report.First.Percentage, report.Last.Percentage, report.DeltaPercentage),
	}
	last := report.Points[len(report.Points)-1]
	lines = append(lines, fmt.Sprintf("  Last run: %d/%d documented (%+d)", last.Documented, last.Total, last.DeltaDocumented))
	return strings.Join(lines, "\n")
}
