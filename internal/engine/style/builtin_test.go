package style

import (
	"context"
	"testing"

	"doccov/internal/core/errors"
	"doccov/internal/engine/parser"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBuiltin(t *testing.T) *BuiltinChecker {
	t.Helper()
	loader, err := parser.NewGrammarLoader()
	require.NoError(t, err)
	p, err := parser.NewParser(loader)
	require.NoError(t, err)
	return NewBuiltinChecker(p)
}

func codes(vs []Violation) []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.Code)
	}
	return out
}

func TestBuiltin_MissingDocstrings(t *testing.T) {
	c := newBuiltin(t)

	code := `class Public:
    def __init__(self):
        pass

    def __repr__(self):
        pass

    def method(self):
        pass

    def _private(self):
        pass

def function():
    def nested():
        pass

def _helper():
    pass

class _Hidden:
    def visible(self):
        pass
`
	vs, err := c.Check(context.Background(), "mod.py", []byte(code), StyleGoogle)
	require.NoError(t, err)

	assert.Equal(t, []string{"D100", "D101", "D107", "D105", "D102", "D103"}, codes(vs))
	assert.Equal(t, 1, vs[1].Line)
	assert.Equal(t, "public class `Public`", vs[1].Definition)
	assert.Equal(t, 14, vs[5].Line)
	for _, v := range vs {
		assert.Equal(t, CheckerBuiltin, v.Checker)
	}
}

func TestBuiltin_NumpyIgnoresInitAndPrivateModules(t *testing.T) {
	c := newBuiltin(t)

	code := "class A:\n    \"\"\"A thing.\"\"\"\n\n    def __init__(self):\n        pass\n"
	vs, err := c.Check(context.Background(), "_internal.py", []byte(code), StyleNumpy)
	require.NoError(t, err)
	assert.Empty(t, vs)
}

func TestBuiltin_ContentChecks(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		style Style
		want  []string
	}{
		{"clean one-liner", `"""Do the thing."""`, StyleNumpy, nil},
		{"empty", `""""""`, StyleNumpy, []string{"D419"}},
		{"whitespace only", `"""   """`, StyleNumpy, []string{"D419"}},
		{"single quotes", `'''Do the thing.'''`, StyleNumpy, []string{"D300"}},
		{"surrounding whitespace", `""" Do the thing. """`, StyleNumpy, []string{"D210"}},
		{"missing period numpy", `"""Do the thing"""`, StyleNumpy, []string{"D400"}},
		{"missing period google", `"""Do the thing"""`, StyleGoogle, []string{"D415"}},
		{"question allowed for google", `"""Do the thing?"""`, StyleGoogle, nil},
		{"question flagged for numpy", `"""Do the thing?"""`, StyleNumpy, []string{"D400"}},
		{"one-liner split", "\"\"\"\n    Do the thing.\n    \"\"\"", StyleNumpy, []string{"D200"}},
		{"no blank after summary", "\"\"\"Do the thing.\n    More detail.\n    \"\"\"", StyleNumpy, []string{"D205"}},
		{"closing quotes on text line", "\"\"\"Do the thing.\n\n    More detail.\"\"\"", StyleNumpy, []string{"D209"}},
		{"well formed multi-line", "\"\"\"Do the thing.\n\n    More detail.\n    \"\"\"", StyleNumpy, nil},
	}

	c := newBuiltin(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := "\"\"\"Module.\"\"\"\n\n\ndef f():\n    " + tt.doc + "\n    return 1\n"
			vs, err := c.Check(context.Background(), "m.py", []byte(code), tt.style)
			require.NoError(t, err)
			if tt.want == nil {
				assert.Empty(t, vs)
				return
			}
			assert.Equal(t, tt.want, codes(vs))
		})
	}
}

func TestBuiltin_MissingArgumentDescriptions(t *testing.T) {
	tests := []struct {
		name  string
		style Style
		doc   string
		want  string
	}{
		{
			name:  "numpy",
			style: StyleNumpy,
			doc: `"""Add values.

    Parameters
    ----------
    a : int
        First.

    Returns
    -------
    int
        Sum.
    """`,
			want: "argument(s) b, kwargs are missing",
		},
		{
			name:  "google",
			style: StyleGoogle,
			doc: `"""Add values.

    Args:
        a (int): First.
            Continued.

    Returns:
        int: Sum.
    """`,
			want: "argument(s) b, kwargs are missing",
		},
		{
			name:  "reST",
			style: StyleReST,
			doc: `"""Add values.

    :param int a: First.
    :returns: Sum.
    """`,
			want: "argument(s) b, kwargs are missing",
		},
	}

	c := newBuiltin(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := "\"\"\"Module.\"\"\"\n\n\nclass C:\n    \"\"\"C.\"\"\"\n\n    def add(self, a, b=1, **kwargs):\n        " +
				indent(tt.doc) + "\n        return a + b\n"
			vs, err := c.Check(context.Background(), "m.py", []byte(code), tt.style)
			require.NoError(t, err)
			require.Equal(t, []string{"D417"}, codes(vs))
			assert.Contains(t, vs[0].Message, tt.want)
			assert.Equal(t, "public method `add`", vs[0].Definition)
		})
	}
}

func TestBuiltin_NoParameterSectionIsNotFlagged(t *testing.T) {
	c := newBuiltin(t)

	code := "\"\"\"Module.\"\"\"\n\n\ndef f(a, b):\n    \"\"\"Do the thing.\"\"\"\n"
	for _, s := range Styles {
		vs, err := c.Check(context.Background(), "m.py", []byte(code), s)
		require.NoError(t, err)
		assert.Empty(t, vs, "style %s", s)
	}
}

func TestBuiltin_NumpySectionUnderline(t *testing.T) {
	c := newBuiltin(t)

	code := `"""Module."""


def f():
    """Compute.

    Returns
    int
    """
`
	vs, err := c.Check(context.Background(), "m.py", []byte(code), StyleNumpy)
	require.NoError(t, err)
	require.Equal(t, []string{"D407"}, codes(vs))
	assert.Contains(t, vs[0].Message, `"Returns"`)

	vs, err = c.Check(context.Background(), "m.py", []byte(code), StyleGoogle)
	require.NoError(t, err)
	assert.Empty(t, vs)
}

func TestBuiltin_ParseFailure(t *testing.T) {
	c := newBuiltin(t)

	_, err := c.Check(context.Background(), "bad.py", []byte("def f(:\n"), StyleNumpy)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeStyleCheckFailed))
}

func TestBuiltin_CancelledContext(t *testing.T) {
	c := newBuiltin(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Check(ctx, "m.py", []byte("x = 1\n"), StyleNumpy)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseStyle(t *testing.T) {
	for in, want := range map[string]Style{
		"numpy":            StyleNumpy,
		"Google":           StyleGoogle,
		"reST":             StyleReST,
		"rest":             StyleReST,
		"restructuredtext": StyleReST,
	} {
		got, err := ParseStyle(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseStyle("epydoc")
	assert.True(t, errors.IsCode(err, errors.CodeValidationError))

	assert.Equal(t, "pep257", StyleReST.Convention())
	assert.Equal(t, "numpy", StyleNumpy.Convention())
	assert.Equal(t, "google", StyleGoogle.Convention())
}

func TestNoopChecker(t *testing.T) {
	vs, err := NoopChecker{}.Check(context.Background(), "m.py", []byte("def f(): pass\n"), StyleNumpy)
	require.NoError(t, err)
	assert.Empty(t, vs)
	assert.Equal(t, CheckerNone, NoopChecker{}.Name())
}

// indent re-indents continuation lines of a docstring written at method
// body depth (4 spaces) to 8 spaces.
func indent(doc string) string {
	out := []byte{}
	for i := 0; i < len(doc); i++ {
		out = append(out, doc[i])
		if doc[i] == '\n' && i+1 < len(doc) && doc[i+1] != '\n' {
			out = append(out, "    "...)
		}
	}
	return string(out)
}
