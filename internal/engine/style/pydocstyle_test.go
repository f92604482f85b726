package style

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"doccov/internal/core/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakePydocstyle(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fake requires a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "pydocstyle")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755))
	return path
}

func TestPydocstyle_ParsesViolations(t *testing.T) {
	bin := fakePydocstyle(t, `printf '%s:12 in public function \140f\140:\n' "$2"
echo "        D103: Missing docstring in public function"
echo "$2:1 at module level:"
echo "        D100: Missing docstring in public module"
exit 1
`)
	c := NewPydocstyleChecker(bin, 0)

	vs, err := c.Check(context.Background(), "m.py", []byte("def f(): pass\n"), StyleNumpy)
	require.NoError(t, err)
	require.Len(t, vs, 2)

	assert.Equal(t, Violation{
		Code:       "D100",
		Line:       1,
		Message:    "Missing docstring in public module",
		Checker:    CheckerPydocstyle,
		Definition: "module level",
	}, vs[0])
	assert.Equal(t, "D103", vs[1].Code)
	assert.Equal(t, 12, vs[1].Line)
	assert.Equal(t, "public function `f`", vs[1].Definition)
}

func TestPydocstyle_PassesConventionAndSource(t *testing.T) {
	out := filepath.Join(t.TempDir(), "args")
	bin := fakePydocstyle(t, `echo "$1" > `+out+`
cat "$2" >> `+out+`
exit 0
`)
	c := NewPydocstyleChecker(bin, 0)

	vs, err := c.Check(context.Background(), "m.py", []byte("x = 1\n"), StyleReST)
	require.NoError(t, err)
	assert.Empty(t, vs)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "--convention=pep257\nx = 1\n", string(data))
}

func TestPydocstyle_CopyKeepsBaseName(t *testing.T) {
	out := filepath.Join(t.TempDir(), "name")
	bin := fakePydocstyle(t, `basename "$2" > `+out+`
exit 0
`)
	c := NewPydocstyleChecker(bin, 0)

	_, err := c.Check(context.Background(), "pkg/_private.py", []byte("x = 1\n"), StyleNumpy)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "_private.py\n", string(data))
}

func TestTempCopyName(t *testing.T) {
	assert.Equal(t, "_private.py", tempCopyName("pkg/_private.py"))
	assert.Equal(t, "stubs.pyi", tempCopyName("stubs.pyi"))
	assert.Equal(t, "script.py", tempCopyName("bin/script"))
	assert.Equal(t, "source.py", tempCopyName(""))
}

func TestPydocstyle_FailureExitCode(t *testing.T) {
	bin := fakePydocstyle(t, `echo "boom" >&2
exit 2
`)
	c := NewPydocstyleChecker(bin, 0)

	_, err := c.Check(context.Background(), "m.py", []byte("x = 1\n"), StyleNumpy)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeStyleCheckFailed))
	assert.Contains(t, err.Error(), "boom")
}

func TestPydocstyle_MissingBinary(t *testing.T) {
	c := NewPydocstyleChecker(filepath.Join(t.TempDir(), "does-not-exist"), 0)

	_, err := c.Check(context.Background(), "m.py", []byte("x = 1\n"), StyleNumpy)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeStyleCheckFailed))
}

func TestPydocstyle_RateLimitedRespectsContext(t *testing.T) {
	bin := fakePydocstyle(t, "exit 0\n")
	c := NewPydocstyleChecker(bin, 0.001)

	_, err := c.Check(context.Background(), "m.py", nil, StyleNumpy)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Check(ctx, "m.py", nil, StyleNumpy)
	assert.True(t, errors.IsCode(err, errors.CodeStyleCheckFailed))
}

func TestParsePydocstyleOutput_RecordWithoutHeader(t *testing.T) {
	_, err := ParsePydocstyleOutput([]byte("        D100: Missing docstring in public module\n"))
	assert.Error(t, err)
}

func TestNewPydocstyleChecker_DefaultPath(t *testing.T) {
	c := NewPydocstyleChecker("  ", 0)
	assert.Equal(t, DefaultPydocstylePath, c.path)
	assert.Equal(t, CheckerPydocstyle, c.Name())
}
