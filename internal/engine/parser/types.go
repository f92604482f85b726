package parser

import (
	"time"
)

// File is the extraction result for one Python source file.
type File struct {
	Path            string
	ModuleDocstring *Docstring
	Declarations    []Declaration
	ParsedAt        time.Time
}

// DeclarationKind is the closed set of documentable declarations.
type DeclarationKind int

const (
	KindFunction DeclarationKind = iota
	KindClass
)

func (k DeclarationKind) String() string {
	switch k {
	case KindFunction:
		return "Function"
	case KindClass:
		return "Class"
	default:
		return "Unknown"
	}
}

// Scope is the kind of block a declaration is defined in.
type Scope string

const (
	ScopeModule   Scope = "module"
	ScopeClass    Scope = "class"
	ScopeFunction Scope = "function"
)

type Declaration struct {
	Kind          DeclarationKind
	Name          string
	QualifiedName string // Outer.inner
	Parent        string // qualified name of the enclosing declaration
	Scope         Scope
	Async         bool
	Decorators    []string
	Parameters    []string // splat parameters keep their * / ** prefix
	Documented    bool
	Docstring     *Docstring
	Location      Location
	EndLine       int
}

// Docstring is a leading string literal exactly as written in source.
type Docstring struct {
	Raw     string // full literal text, prefix and quotes included
	Prefix  string // string prefix letters such as r or u
	Quote   string // `"""`, `'''`, `"` or `'`
	Body    string // text between the quotes, escapes left undecoded
	Line    int
	EndLine int
}

type Location struct {
	File   string
	Line   int
	Column int
}
