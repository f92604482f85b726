package style

import (
	"regexp"
	"strings"

	"doccov/internal/engine/parser"
)

var numpySections = map[string]bool{
	"Parameters":       true,
	"Other Parameters": true,
	"Returns":          true,
	"Yields":           true,
	"Receives":         true,
	"Raises":           true,
	"Warns":            true,
	"Warnings":         true,
	"See Also":         true,
	"Notes":            true,
	"References":       true,
	"Examples":         true,
	"Attributes":       true,
	"Methods":          true,
}

var (
	dashedLine  = regexp.MustCompile(`^\s*-{3,}\s*$`)
	reSTParam   = regexp.MustCompile(`^\s*:param\s+(?:[^:]*\s)?\*{0,2}([A-Za-z_][A-Za-z0-9_]*)\s*:`)
	googleEntry = regexp.MustCompile(`^\*{0,2}([A-Za-z_][A-Za-z0-9_]*)\s*(\(.*\))?\s*:`)
	numpyEntry  = regexp.MustCompile(`^\*{0,2}[A-Za-z_][A-Za-z0-9_]*(\s*,\s*\*{0,2}[A-Za-z_][A-Za-z0-9_]*)*\s*(:.*)?$`)
)

// missingUnderlines returns numpy section headers not followed by a dashed
// underline.
func missingUnderlines(lines []string) []string {
	var missing []string
	for i, line := range lines {
		name := strings.TrimSpace(line)
		if !numpySections[name] || leadingSpaces(line) > 0 {
			continue
		}
		if i+1 < len(lines) && dashedLine.MatchString(lines[i+1]) {
			continue
		}
		missing = append(missing, name)
	}
	return missing
}

// missingArguments lists parameters absent from the docstring's parameter
// section. Functions whose docstring has no parameter section are skipped.
func missingArguments(lines []string, decl parser.Declaration, style Style) []string {
	var documented map[string]bool
	switch style {
	case StyleGoogle:
		documented = googleArguments(lines)
	case StyleReST:
		documented = reSTArguments(lines)
	default:
		documented = numpyArguments(lines)
	}
	if documented == nil {
		return nil
	}

	var missing []string
	for i, param := range decl.Parameters {
		name := strings.TrimLeft(param, "*")
		if i == 0 && decl.Scope == parser.ScopeClass && (name == "self" || name == "cls") {
			continue
		}
		if !documented[name] {
			missing = append(missing, name)
		}
	}
	return missing
}

func numpyArguments(lines []string) map[string]bool {
	start := -1
	for i := 0; i+1 < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "Parameters" && dashedLine.MatchString(lines[i+1]) {
			start = i + 2
			break
		}
	}
	if start < 0 {
		return nil
	}

	documented := make(map[string]bool)
	for i := start; i < len(lines); i++ {
		line := lines[i]
		if i+1 < len(lines) && dashedLine.MatchString(lines[i+1]) {
			break
		}
		if strings.TrimSpace(line) == "" || leadingSpaces(line) > 0 {
			continue
		}
		if !numpyEntry.MatchString(line) {
			continue
		}
		names := line
		if idx := strings.Index(names, ":"); idx >= 0 {
			names = names[:idx]
		}
		for _, n := range strings.Split(names, ",") {
			documented[strings.TrimLeft(strings.TrimSpace(n), "*")] = true
		}
	}
	return documented
}

func googleArguments(lines []string) map[string]bool {
	start, indent := -1, 0
	for i, line := range lines {
		switch strings.TrimSpace(line) {
		case "Args:", "Arguments:", "Parameters:":
			start, indent = i+1, leadingSpaces(line)
		}
		if start >= 0 {
			break
		}
	}
	if start < 0 {
		return nil
	}

	documented := make(map[string]bool)
	entryIndent := -1
	for _, line := range lines[start:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lead := leadingSpaces(line)
		if lead <= indent {
			break
		}
		if entryIndent < 0 {
			entryIndent = lead
		}
		if lead != entryIndent {
			continue
		}
		if m := googleEntry.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			documented[m[1]] = true
		}
	}
	return documented
}

func reSTArguments(lines []string) map[string]bool {
	var documented map[string]bool
	for _, line := range lines {
		if m := reSTParam.FindStringSubmatch(line); m != nil {
			if documented == nil {
				documented = make(map[string]bool)
			}
			documented[m[1]] = true
		}
	}
	return documented
}

func leadingSpaces(s string) int {
	return len(s) - len(strings.TrimLeft(s, " \t"))
}
