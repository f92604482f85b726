package parser

import (
	"strings"
	"time"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// DocstringExtractor collects every function and class definition together
// with its leading docstring, in depth-first pre-order.
type DocstringExtractor struct{}

func (e *DocstringExtractor) Extract(root *sitter.Node, source []byte, filePath string) (*File, error) {
	file := &File{
		Path:     filePath,
		ParsedAt: time.Now(),
	}

	ctx := &ExtractionContext{Source: source, File: file}
	engine := NewExtractorEngine(map[string]NodeHandler{
		"module":              e.extractModule,
		"function_definition": e.extractFunction,
		"class_definition":    e.extractClass,
	})
	engine.Walk(ctx, root)

	return file, nil
}

func (e *DocstringExtractor) extractModule(ctx *ExtractionContext, node *sitter.Node) bool {
	ctx.File.ModuleDocstring = docstringOf(ctx, node)
	return false
}

func (e *DocstringExtractor) extractFunction(ctx *ExtractionContext, node *sitter.Node) bool {
	name := ctx.FieldText(node, "name")
	if name == "" {
		return false
	}

	decl := e.declaration(ctx, node, KindFunction, name)
	decl.Async = isAsyncFunction(node)
	decl.Parameters = pythonParameters(ctx, node.ChildByFieldName("parameters"))
	ctx.File.Declarations = append(ctx.File.Declarations, decl)

	// Nested definitions are enumerated on their own.
	return false
}

func (e *DocstringExtractor) extractClass(ctx *ExtractionContext, node *sitter.Node) bool {
	name := ctx.FieldText(node, "name")
	if name == "" {
		return false
	}

	ctx.File.Declarations = append(ctx.File.Declarations, e.declaration(ctx, node, KindClass, name))
	return false
}

func (e *DocstringExtractor) declaration(ctx *ExtractionContext, node *sitter.Node, kind DeclarationKind, name string) Declaration {
	scope, parents := enclosingDefinitions(ctx, node)
	parent := strings.Join(parents, ".")
	qualified := name
	if parent != "" {
		qualified = parent + "." + name
	}

	doc := docstringOf(ctx, node.ChildByFieldName("body"))
	return Declaration{
		Kind:          kind,
		Name:          name,
		QualifiedName: qualified,
		Parent:        parent,
		Scope:         scope,
		Decorators:    pythonDecorators(ctx, node),
		Documented:    doc != nil,
		Docstring:     doc,
		Location:      ctx.Location(node),
		EndLine:       int(node.EndPosition().Row) + 1,
	}
}

// docstringOf returns the leading docstring of a module or block, or nil.
func docstringOf(ctx *ExtractionContext, block *sitter.Node) *Docstring {
	stmt := firstStatement(block)
	if stmt == nil || stmt.Kind() != "expression_statement" || stmt.NamedChildCount() != 1 {
		return nil
	}
	// A trailing comma makes a one-element tuple, which is not a docstring.
	for i := uint(0); i < stmt.ChildCount(); i++ {
		if child := stmt.Child(i); child != nil && child.Kind() == "," {
			return nil
		}
	}

	literal := stmt.NamedChild(0)
	for literal != nil && literal.Kind() == "parenthesized_expression" && literal.NamedChildCount() == 1 {
		literal = literal.NamedChild(0)
	}
	if literal == nil {
		return nil
	}

	var parts []*sitter.Node
	switch literal.Kind() {
	case "string":
		parts = []*sitter.Node{literal}
	case "concatenated_string":
		for i := uint(0); i < literal.NamedChildCount(); i++ {
			if child := literal.NamedChild(i); child != nil && child.Kind() == "string" {
				parts = append(parts, child)
			}
		}
	default:
		return nil
	}
	if len(parts) == 0 {
		return nil
	}

	doc := &Docstring{
		Raw:     ctx.Text(literal),
		Line:    int(literal.StartPosition().Row) + 1,
		EndLine: int(literal.EndPosition().Row) + 1,
	}

	var body strings.Builder
	for i, part := range parts {
		prefix, quote, content, ok := splitStringLiteral(ctx.Text(part))
		if !ok || !isDocstringPrefix(prefix) {
			return nil
		}
		if i == 0 {
			doc.Prefix = prefix
			doc.Quote = quote
		}
		body.WriteString(content)
	}
	doc.Body = body.String()
	return doc
}

// splitStringLiteral splits a Python string literal into prefix letters,
// quote delimiter and raw content.
func splitStringLiteral(literal string) (prefix, quote, content string, ok bool) {
	i := 0
	for i < len(literal) && strings.ContainsRune("rRuUbBfFtT", rune(literal[i])) {
		i++
	}
	prefix = literal[:i]
	rest := literal[i:]

	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if strings.HasPrefix(rest, q) && strings.HasSuffix(rest, q) && len(rest) >= 2*len(q) {
			return prefix, q, rest[len(q) : len(rest)-len(q)], true
		}
	}
	return "", "", "", false
}

// isDocstringPrefix rejects bytes, f-strings and t-strings: Python only
// treats plain str constants as docstrings.
func isDocstringPrefix(prefix string) bool {
	return !strings.ContainsAny(prefix, "bBfFtT")
}

func isAsyncFunction(node *sitter.Node) bool {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "async":
			return true
		case "def":
			return false
		}
	}
	return false
}

// enclosingDefinitions returns the scope a definition lives in and the names
// of its enclosing definitions, outermost first.
func enclosingDefinitions(ctx *ExtractionContext, node *sitter.Node) (Scope, []string) {
	scope := ScopeModule
	var names []string
	for p := node.Parent(); p != nil; p = p.Parent() {
		switch p.Kind() {
		case "class_definition":
			if scope == ScopeModule && len(names) == 0 {
				scope = ScopeClass
			}
			names = append(names, ctx.FieldText(p, "name"))
		case "function_definition":
			if scope == ScopeModule && len(names) == 0 {
				scope = ScopeFunction
			}
			names = append(names, ctx.FieldText(p, "name"))
		}
	}

	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return scope, names
}

func pythonDecorators(ctx *ExtractionContext, node *sitter.Node) []string {
	parent := node.Parent()
	if parent == nil || parent.Kind() != "decorated_definition" {
		return nil
	}

	decorators := make([]string, 0, parent.ChildCount())
	for i := uint(0); i < parent.ChildCount(); i++ {
		child := parent.Child(i)
		if child == nil || child.Kind() != "decorator" {
			continue
		}
		dec := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(ctx.Text(child)), "@"))
		if dec == "" {
			continue
		}
		decorators = append(decorators, dec)
	}
	return decorators
}

func pythonParameters(ctx *ExtractionContext, params *sitter.Node) []string {
	if params == nil {
		return nil
	}

	var names []string
	for i := uint(0); i < params.NamedChildCount(); i++ {
		if name := parameterName(ctx, params.NamedChild(i)); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func parameterName(ctx *ExtractionContext, node *sitter.Node) string {
	if node == nil {
		return ""
	}

	switch node.Kind() {
	case "identifier":
		return ctx.Text(node)
	case "default_parameter", "typed_default_parameter":
		return parameterName(ctx, node.ChildByFieldName("name"))
	case "typed_parameter":
		for i := uint(0); i < node.NamedChildCount(); i++ {
			child := node.NamedChild(i)
			if child == nil {
				continue
			}
			switch child.Kind() {
			case "identifier", "list_splat_pattern", "dictionary_splat_pattern":
				return parameterName(ctx, child)
			}
		}
	case "list_splat_pattern":
		if name := firstIdentifier(ctx, node); name != "" {
			return "*" + name
		}
	case "dictionary_splat_pattern":
		if name := firstIdentifier(ctx, node); name != "" {
			return "**" + name
		}
	}
	return ""
}

func firstIdentifier(ctx *ExtractionContext, node *sitter.Node) string {
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child != nil && child.Kind() == "identifier" {
			return ctx.Text(child)
		}
	}
	return ""
}
