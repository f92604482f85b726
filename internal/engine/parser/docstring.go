package parser

import (
	"strings"
)

// Cleaned returns the docstring body with indentation normalized the way
// Python's inspect.cleandoc does it: tabs expanded, the first line stripped
// of leading whitespace, the common indentation of the remaining lines
// removed, and leading/trailing blank lines dropped.
func (d *Docstring) Cleaned() string {
	if d == nil {
		return ""
	}
	lines := strings.Split(strings.ReplaceAll(expandTabs(d.Body), "\r\n", "\n"), "\n")

	margin := -1
	for _, line := range lines[1:] {
		content := strings.TrimLeft(line, " ")
		if content == "" {
			continue
		}
		indent := len(line) - len(content)
		if margin < 0 || indent < margin {
			margin = indent
		}
	}

	lines[0] = strings.TrimLeft(lines[0], " \t")
	if margin > 0 {
		for i := 1; i < len(lines); i++ {
			if len(lines[i]) >= margin {
				lines[i] = lines[i][margin:]
			} else {
				lines[i] = strings.TrimLeft(lines[i], " ")
			}
		}
	}
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " \t")
	}

	for len(lines) > 0 && lines[0] == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

// Summary returns the first non-blank line of the cleaned docstring.
func (d *Docstring) Summary() string {
	cleaned := d.Cleaned()
	if idx := strings.IndexByte(cleaned, '\n'); idx >= 0 {
		return cleaned[:idx]
	}
	return cleaned
}

// IsTripleQuoted reports whether the literal uses triple quotes.
func (d *Docstring) IsTripleQuoted() bool {
	return d != nil && len(d.Quote) == 3
}

func expandTabs(s string) string {
	if !strings.Contains(s, "\t") {
		return s
	}
	var b strings.Builder
	col := 0
	for _, r := range s {
		switch r {
		case '\t':
			spaces := 8 - col%8
			b.WriteString(strings.Repeat(" ", spaces))
			col += spaces
		case '\n':
			b.WriteRune(r)
			col = 0
		default:
			b.WriteRune(r)
			col++
		}
	}
	return b.String()
}
