package style

import (
	"bufio"
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"doccov/internal/core/errors"
	"doccov/internal/shared/util"
)

const DefaultPydocstylePath = "pydocstyle"

var (
	pydocstyleHeader = regexp.MustCompile(`^(.+):(\d+)\s+(.*?):?\s*$`)
	pydocstyleRecord = regexp.MustCompile(`^\s+(D\d{3}):\s*(.*)$`)
)

// PydocstyleChecker runs the external pydocstyle tool on a temporary copy of
// the source and converts its report into violations.
type PydocstyleChecker struct {
	path    string
	limiter *util.Limiter
}

// NewPydocstyleChecker returns a checker that invokes the binary at path.
// A positive rate caps subprocess launches per second.
func NewPydocstyleChecker(path string, rate float64) *PydocstyleChecker {
	if strings.TrimSpace(path) == "" {
		path = DefaultPydocstylePath
	}
	return &PydocstyleChecker{path: path, limiter: util.NewLimiter(rate, 1)}
}

func (c *PydocstyleChecker) Name() string { return CheckerPydocstyle }

func (c *PydocstyleChecker) Check(ctx context.Context, path string, source []byte, style Style) ([]Violation, error) {
	if err := c.limiter.Wait(ctx, 1); err != nil {
		return nil, c.failure(path, "waiting for launch slot", err)
	}

	dir, err := os.MkdirTemp("", "doccov-*")
	if err != nil {
		return nil, c.failure(path, "create temp dir", err)
	}
	defer os.RemoveAll(dir)

	// The copy keeps the base name: pydocstyle derives module publicness
	// from it.
	copyPath := filepath.Join(dir, tempCopyName(path))
	if err := os.WriteFile(copyPath, source, 0o600); err != nil {
		return nil, c.failure(path, "write temp file", err)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.path, "--convention="+style.Convention(), copyPath)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	// pydocstyle exits 1 when it found violations.
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !stderrors.As(err, &exitErr) || exitErr.ExitCode() != 1 {
			msg := strings.TrimSpace(stderr.String())
			if msg == "" {
				msg = "pydocstyle failed"
			}
			return nil, c.failure(path, msg, err)
		}
	}

	violations, err := ParsePydocstyleOutput(stdout.Bytes())
	if err != nil {
		return nil, c.failure(path, "parse pydocstyle output", err)
	}
	SortViolations(violations)
	return violations, nil
}

func tempCopyName(path string) string {
	base := filepath.Base(strings.TrimSpace(path))
	switch base {
	case "", ".", string(filepath.Separator):
		return "source.py"
	}
	if ext := strings.ToLower(filepath.Ext(base)); ext != ".py" && ext != ".pyi" {
		base += ".py"
	}
	return base
}

func (c *PydocstyleChecker) failure(path, msg string, err error) error {
	de := &errors.DomainError{Code: errors.CodeStyleCheckFailed, Message: msg, Err: err}
	return de.WithContext(errors.CtxChecker, CheckerPydocstyle).WithContext(errors.CtxPath, path)
}

// ParsePydocstyleOutput converts pydocstyle's two-line records
//
//	file.py:12 in public function `f`:
//	        D103: Missing docstring in public function
//
// into violations.
func ParsePydocstyleOutput(out []byte) ([]Violation, error) {
	var (
		violations []Violation
		line       int
		definition string
		pending    bool
	)

	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		text := scanner.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		if m := pydocstyleRecord.FindStringSubmatch(text); m != nil {
			if !pending {
				return nil, fmt.Errorf("violation %s without location header", m[1])
			}
			violations = append(violations, Violation{
				Code:       m[1],
				Line:       line,
				Message:    strings.TrimSpace(m[2]),
				Checker:    CheckerPydocstyle,
				Definition: definition,
			})
			pending = false
			continue
		}
		if m := pydocstyleHeader.FindStringSubmatch(text); m != nil {
			n, err := strconv.Atoi(m[2])
			if err != nil {
				return nil, fmt.Errorf("invalid line number %q: %w", m[2], err)
			}
			line = n
			definition = strings.TrimPrefix(strings.TrimPrefix(m[3], "in "), "at ")
			pending = true
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read pydocstyle output: %w", err)
	}
	return violations, nil
}
