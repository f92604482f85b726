package report

import (
	"fmt"
	"strings"

	"doccov/internal/core/app"
	"doccov/internal/ui/report/formats"
)

const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
	FormatTSV      = "tsv"
	FormatSARIF    = "sarif"
)

// Formats lists every output format Render understands.
var Formats = []string{FormatText, FormatMarkdown, FormatJSON, FormatTSV, FormatSARIF}

type Options = formats.Options

// ParseFormat accepts a format name case-insensitively; "md" is an alias
// for markdown.
func ParseFormat(raw string) (string, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	switch name {
	case "", FormatText:
		return FormatText, nil
	case "md", FormatMarkdown:
		return FormatMarkdown, nil
	case FormatJSON, FormatTSV, FormatSARIF:
		return name, nil
	}
	return "", fmt.Errorf("unknown format %q (want one of %s)", raw, strings.Join(Formats, ", "))
}

// Render formats a batch of results.
func Render(format string, results []app.Result, sum app.Summary, opts Options) ([]byte, error) {
	name, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}

	switch name {
	case FormatMarkdown:
		out, err := formats.NewMarkdownGenerator().Generate(results, sum, opts)
		return []byte(out), err
	case FormatJSON:
		return formats.GenerateJSON(results, sum, opts)
	case FormatTSV:
		out, err := formats.NewTSVGenerator().Generate(results, opts)
		return []byte(out), err
	case FormatSARIF:
		return formats.GenerateSARIF(results, opts)
	default:
		out, err := formats.NewTextGenerator().Generate(results, sum, opts)
		return []byte(out), err
	}
}
