package parser

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

const LanguagePython = "python"

// LanguageSpec describes which paths route to a grammar.
type LanguageSpec struct {
	Name       string
	Extensions []string
}

var defaultRegistry = map[string]LanguageSpec{
	LanguagePython: {
		Name:       LanguagePython,
		Extensions: []string{".py", ".pyi"},
	},
}

type GrammarLoader struct {
	languages  map[string]*sitter.Language
	extensions map[string]string
}

func NewGrammarLoader() (*GrammarLoader, error) {
	gl := &GrammarLoader{
		languages:  make(map[string]*sitter.Language),
		extensions: make(map[string]string),
	}

	for langID, spec := range defaultRegistry {
		switch langID {
		case LanguagePython:
			gl.languages[langID] = sitter.NewLanguage(tree_sitter_python.Language())
		default:
			return nil, fmt.Errorf("language %q is registered but runtime grammar loading is not implemented", langID)
		}
		for _, ext := range spec.Extensions {
			gl.extensions[strings.ToLower(ext)] = langID
		}
	}

	return gl, nil
}

func (gl *GrammarLoader) Language(langID string) (*sitter.Language, bool) {
	lang, ok := gl.languages[langID]
	return lang, ok
}

// DetectLanguage maps a path to a registered language, or "" when the path
// is not analyzable.
func (gl *GrammarLoader) DetectLanguage(path string) string {
	return gl.extensions[strings.ToLower(filepath.Ext(path))]
}

func (gl *GrammarLoader) IsSupportedPath(path string) bool {
	return gl.DetectLanguage(path) != ""
}

func (gl *GrammarLoader) SupportedExtensions() []string {
	extensions := make([]string, 0, len(gl.extensions))
	for ext := range gl.extensions {
		extensions = append(extensions, ext)
	}
	sort.Strings(extensions)
	return extensions
}
