package report

import (
	"fmt"
	"os"
	"strings"

	"doccov/internal/core/app"
	"doccov/internal/shared/util"
	"doccov/internal/ui/report/formats"
)

// CoverageMarker names the block InjectSummary rewrites:
//
//	<!-- doccov:coverage:start -->
//	<!-- doccov:coverage:end -->
const CoverageMarker = "coverage"

// InjectSummary replaces the coverage marker block of a markdown file with
// the summary table for sum. The file is rewritten atomically.
func InjectSummary(filePath string, sum app.Summary) error {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("read markdown file %q: %w", filePath, err)
	}

	table := formats.NewMarkdownGenerator().Summary(sum)
	next, err := ReplaceBetweenMarkers(string(content), CoverageMarker, table)
	if err != nil {
		return err
	}

	if err := util.WriteFileAtomic(filePath, []byte(next), 0o644); err != nil {
		return fmt.Errorf("replace markdown file %q: %w", filePath, err)
	}
	return nil
}

func ReplaceBetweenMarkers(content, marker, replacement string) (string, error) {
	marker = strings.TrimSpace(marker)
	if marker == "" {
		return "", fmt.Errorf("markdown marker must not be empty")
	}

	newline := "\n"
	if strings.Contains(content, "\r\n") {
		newline = "\r\n"
	}

	start := fmt.Sprintf("<!-- doccov:%s:start -->", marker)
	end := fmt.Sprintf("<!-- doccov:%s:end -->", marker)

	if strings.Count(content, start) != 1 || strings.Count(content, end) != 1 {
		return "", fmt.Errorf("markdown marker %q must appear exactly once for start and end", marker)
	}

	startIdx := strings.Index(content, start)
	endIdx := strings.Index(content, end)
	if endIdx < startIdx {
		return "", fmt.Errorf("invalid marker order for %q", marker)
	}

	prefix := content[:startIdx+len(start)]
	suffix := content[endIdx:]
	body := strings.TrimRight(replacement, "\r\n")
	if newline != "\n" {
		body = strings.ReplaceAll(body, "\n", newline)
	}

	return prefix + newline + body + newline + suffix, nil
}
