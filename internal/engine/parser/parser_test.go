package parser

import (
	"testing"

	"doccov/internal/core/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestParser(t *testing.T) *Parser {
	t.Helper()
	loader, err := NewGrammarLoader()
	require.NoError(t, err)
	p, err := NewParser(loader)
	require.NoError(t, err)
	return p
}

func names(decls []Declaration) []string {
	out := make([]string, 0, len(decls))
	for _, d := range decls {
		out = append(out, d.QualifiedName)
	}
	return out
}

func TestParseFile_PreOrderDiscovery(t *testing.T) {
	p := newTestParser(t)

	code := `
class Outer:
    """Outer doc."""

    def method(self):
        def helper():
            pass
        return helper

    class Inner:
        pass

def top():
    pass

if True:
    async def conditional():
        """Doc."""
`
	file, err := p.ParseFile("mod.py", []byte(code))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Outer",
		"Outer.method",
		"Outer.method.helper",
		"Outer.Inner",
		"top",
		"conditional",
	}, names(file.Declarations))

	byName := map[string]Declaration{}
	for _, d := range file.Declarations {
		byName[d.QualifiedName] = d
	}

	assert.Equal(t, KindClass, byName["Outer"].Kind)
	assert.Equal(t, ScopeModule, byName["Outer"].Scope)
	assert.True(t, byName["Outer"].Documented)
	assert.Equal(t, 2, byName["Outer"].Location.Line)

	assert.Equal(t, KindFunction, byName["Outer.method"].Kind)
	assert.Equal(t, ScopeClass, byName["Outer.method"].Scope)
	assert.Equal(t, "Outer", byName["Outer.method"].Parent)
	assert.Equal(t, []string{"self"}, byName["Outer.method"].Parameters)

	assert.Equal(t, ScopeFunction, byName["Outer.method.helper"].Scope)
	assert.Equal(t, ScopeClass, byName["Outer.Inner"].Scope)

	assert.True(t, byName["conditional"].Async)
	assert.True(t, byName["conditional"].Documented)
	assert.False(t, byName["top"].Async)
}

func TestParseFile_DecoratedOuterAndNestedInner(t *testing.T) {
	p := newTestParser(t)

	code := `@st.cache_data  # Decorated function
def outer_func(a):
    def inner_func(b):  # Nested function
        return b * 2
    return inner_func(a)

class EmptyClass:  # Class without methods
    pass
`
	file, err := p.ParseFile("complex_cases.py", []byte(code))
	require.NoError(t, err)

	require.Len(t, file.Declarations, 3)
	assert.Equal(t, []string{"outer_func", "outer_func.inner_func", "EmptyClass"}, names(file.Declarations))
	assert.Equal(t, []string{"st.cache_data"}, file.Declarations[0].Decorators)
	for _, d := range file.Declarations {
		assert.Falsef(t, d.Documented, "%s should be undocumented", d.QualifiedName)
	}
	assert.Nil(t, file.ModuleDocstring)
}

func TestParseFile_DocstringDetection(t *testing.T) {
	p := newTestParser(t)

	tests := []struct {
		name       string
		code       string
		documented bool
	}{
		{"triple double", "def f():\n    \"\"\"Doc.\"\"\"\n", true},
		{"single quoted", "def f():\n    'Doc.'\n", true},
		{"raw prefix", "def f():\n    r\"\"\"Doc \\d.\"\"\"\n", true},
		{"unicode prefix", "def f():\n    u\"Doc.\"\n", true},
		{"empty literal", "def f():\n    \"\"\"\"\"\"\n", true},
		{"comment before docstring", "def f():\n    # note\n    \"\"\"Doc.\"\"\"\n", true},
		{"concatenated", "def f():\n    \"Doc \" \"continued.\"\n", true},
		{"parenthesized", "def f():\n    (\"Doc.\")\n", true},
		{"same line body", "class A: \"Doc.\"\n", true},
		{"f-string", "def f():\n    f\"Doc {x}.\"\n", false},
		{"bytes", "def f():\n    b\"Doc.\"\n", false},
		{"string after statement", "def f():\n    x = 1\n    \"\"\"Doc.\"\"\"\n", false},
		{"assigned string", "def f():\n    x = \"Doc.\"\n", false},
		{"tuple of strings", "def f():\n    \"a\", \"b\"\n", false},
		{"one-element tuple", "def f():\n    \"doc\",\n", false},
		{"parenthesized tuple", "def f():\n    (\"doc\",)\n", false},
		{"pass only", "def f():\n    pass\n", false},
		{"decorator only", "@decorator\ndef f():\n    return 1\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file, err := p.ParseFile("case.py", []byte(tt.code))
			require.NoError(t, err)
			require.Len(t, file.Declarations, 1)
			assert.Equal(t, tt.documented, file.Declarations[0].Documented)
			assert.Equal(t, tt.documented, file.Declarations[0].Docstring != nil)
		})
	}
}

func TestParseFile_ModuleDocstringAndLiteralParts(t *testing.T) {
	p := newTestParser(t)

	code := `"""Temporary upload utilities.

This module provides sample functions.
"""

def f():
    r'''Raw doc.'''
`
	file, err := p.ParseFile("temp_upload.py", []byte(code))
	require.NoError(t, err)

	require.NotNil(t, file.ModuleDocstring)
	assert.Equal(t, 1, file.ModuleDocstring.Line)
	assert.Equal(t, 4, file.ModuleDocstring.EndLine)
	assert.Equal(t, `"""`, file.ModuleDocstring.Quote)
	assert.Equal(t, "Temporary upload utilities.", file.ModuleDocstring.Summary())

	doc := file.Declarations[0].Docstring
	require.NotNil(t, doc)
	assert.Equal(t, "r", doc.Prefix)
	assert.Equal(t, `'''`, doc.Quote)
	assert.Equal(t, "Raw doc.", doc.Body)
	assert.True(t, doc.IsTripleQuoted())
}

func TestParseFile_Parameters(t *testing.T) {
	p := newTestParser(t)

	code := "def f(a, b: int, c=1, d: str = 'x', *args, e, **kwargs):\n    pass\n" +
		"def g(a, /, b, *, c):\n    pass\n"
	file, err := p.ParseFile("params.py", []byte(code))
	require.NoError(t, err)
	require.Len(t, file.Declarations, 2)

	assert.Equal(t, []string{"a", "b", "c", "d", "*args", "e", "**kwargs"}, file.Declarations[0].Parameters)
	assert.Equal(t, []string{"a", "b", "c"}, file.Declarations[1].Parameters)
}

func TestParseFile_SyntaxErrorIsParseFailure(t *testing.T) {
	p := newTestParser(t)

	tests := []struct {
		name string
		code string
	}{
		{"unbalanced brackets", "def f(:\n    return [1, 2\n"},
		{"stray token", "class A:\n    \"\"\"Doc.\"\"\"\n)\n"},
		{"unclosed parameters", "def f(\n"},
		{"python 2 print", "def f():\n    print \"x\"\n"},
		{"python 2 exec", "def f():\n    exec \"code\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file, err := p.ParseFile("broken.py", []byte(tt.code))
			require.Error(t, err)
			assert.Nil(t, file)
			assert.True(t, errors.IsCode(err, errors.CodeParseFailure), "unexpected error: %v", err)
			assert.Contains(t, err.Error(), "invalid syntax")
		})
	}
}

func TestParseFile_PrintCallIsValid(t *testing.T) {
	p := newTestParser(t)

	file, err := p.ParseFile("ok.py", []byte("def f():\n    \"\"\"Doc.\"\"\"\n    print(\"x\")\n"))
	require.NoError(t, err)
	require.Len(t, file.Declarations, 1)
	assert.True(t, file.Declarations[0].Documented)
}

func TestParseFile_LegacyStatementLocation(t *testing.T) {
	p := newTestParser(t)

	_, err := p.ParseFile("legacy.py", []byte("x = 1\nprint \"x\"\n"))
	require.Error(t, err)

	var de *errors.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, 2, de.Context[errors.CtxLine])
	assert.Equal(t, 1, de.Context[errors.CtxColumn])
	assert.Equal(t, "legacy.py", de.Context[errors.CtxPath])
	assert.Contains(t, err.Error(), "print statement")
}

func TestGrammarLoader_SupportedPaths(t *testing.T) {
	loader, err := NewGrammarLoader()
	require.NoError(t, err)

	assert.True(t, loader.IsSupportedPath("pkg/mod.py"))
	assert.True(t, loader.IsSupportedPath("pkg/STUBS.PYI"))
	assert.False(t, loader.IsSupportedPath("main.go"))
	assert.Equal(t, []string{".py", ".pyi"}, loader.SupportedExtensions())
}

func TestDocstring_Cleaned(t *testing.T) {
	doc := &Docstring{Body: "\n    Summary line.\n\n    Parameters\n    ----------\n    a : int\n        Value.\n    "}
	assert.Equal(t, "Summary line.\n\nParameters\n----------\na : int\n    Value.", doc.Cleaned())
	assert.Equal(t, "Summary line.", doc.Summary())

	var missing *Docstring
	assert.Equal(t, "", missing.Cleaned())
	assert.False(t, missing.IsTripleQuoted())
}
