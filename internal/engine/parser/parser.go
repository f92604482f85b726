package parser

import (
	"fmt"
	"strings"

	"doccov/internal/core/errors"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

type Parser struct {
	loader    *GrammarLoader
	pool      *ParserPool
	extractor *DocstringExtractor
}

func NewParser(loader *GrammarLoader) (*Parser, error) {
	lang, ok := loader.Language(LanguagePython)
	if !ok {
		return nil, errors.New(errors.CodeNotSupported, "python grammar not loaded")
	}
	return &Parser{
		loader:    loader,
		pool:      NewParserPool(lang),
		extractor: &DocstringExtractor{},
	}, nil
}

// ParseFile parses Python source and extracts its declarations. Source with
// any syntax error yields a CodeParseFailure error and no File.
func (p *Parser) ParseFile(path string, content []byte) (*File, error) {
	sp := p.pool.Get()
	defer p.pool.Put(sp)

	tree := sp.Parse(content, nil)
	if tree == nil {
		return nil, errors.New(errors.CodeInternal, "parse failed")
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, syntaxError(root, content, path)
	}
	if node := firstLegacyStatement(root); node != nil {
		return nil, legacySyntaxError(node, content, path)
	}

	res, err := p.extractor.Extract(root, content, path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "extraction failed")
	}
	return res, nil
}

func (p *Parser) IsSupportedPath(path string) bool {
	return p.loader.IsSupportedPath(path)
}

func (p *Parser) SupportedExtensions() []string {
	return p.loader.SupportedExtensions()
}

func syntaxError(root *sitter.Node, source []byte, path string) error {
	node := firstSyntaxError(root)
	if node == nil {
		node = root
	}

	var msg string
	if node.IsMissing() {
		msg = fmt.Sprintf("invalid syntax: missing %q", node.Kind())
	} else if text := snippet(source[node.StartByte():node.EndByte()]); text != "" {
		msg = fmt.Sprintf("invalid syntax near %q", text)
	} else {
		msg = "invalid syntax"
	}

	return parseFailure(msg, node, path)
}

// legacyStatements are Python 2 statements the grammar still accepts but
// Python 3 rejects.
var legacyStatements = map[string]string{
	"print_statement": "print",
	"exec_statement":  "exec",
}

func legacySyntaxError(node *sitter.Node, source []byte, path string) error {
	msg := fmt.Sprintf("invalid syntax: Python 2 %s statement", legacyStatements[node.Kind()])
	if text := snippet(source[node.StartByte():node.EndByte()]); text != "" {
		msg = fmt.Sprintf("%s near %q", msg, text)
	}
	return parseFailure(msg, node, path)
}

func parseFailure(msg string, node *sitter.Node, path string) error {
	de := errors.New(errors.CodeParseFailure, msg).(*errors.DomainError)
	de.WithContext(errors.CtxLine, int(node.StartPosition().Row)+1).
		WithContext(errors.CtxColumn, int(node.StartPosition().Column)+1)
	if path != "" {
		de.WithContext(errors.CtxPath, path)
	}
	return de
}

// firstLegacyStatement returns the first Python 2 only statement in source
// order.
func firstLegacyStatement(node *sitter.Node) *sitter.Node {
	if node == nil {
		return nil
	}
	if _, ok := legacyStatements[node.Kind()]; ok {
		return node
	}
	for i := uint(0); i < node.NamedChildCount(); i++ {
		if found := firstLegacyStatement(node.NamedChild(i)); found != nil {
			return found
		}
	}
	return nil
}

// firstSyntaxError returns the first ERROR or MISSING node in source order.
func firstSyntaxError(node *sitter.Node) *sitter.Node {
	if node == nil {
		return nil
	}
	if node.IsError() || node.IsMissing() {
		return node
	}
	if !node.HasError() {
		return nil
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		if found := firstSyntaxError(node.Child(i)); found != nil {
			return found
		}
	}
	return nil
}

func snippet(text []byte) string {
	s := string(text)
	if idx := strings.IndexAny(s, "\r\n"); idx >= 0 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)
	const maxLen = 40
	if len(s) > maxLen {
		s = s[:maxLen] + "..."
	}
	return s
}
