package parser

import (
	"sync"
	"testing"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

func pythonLanguage() *sitter.Language {
	return sitter.NewLanguage(tree_sitter_python.Language())
}

func TestParserPool_GetPut(t *testing.T) {
	pool := NewParserPool(pythonLanguage())

	sp := pool.Get()
	if sp == nil {
		t.Fatal("expected non-nil parser from pool")
	}
	if pool.Active() != 1 {
		t.Fatalf("expected 1 active lease, got %d", pool.Active())
	}

	pool.Put(sp)
	if pool.Active() != 0 {
		t.Fatalf("expected 0 active leases after Put, got %d", pool.Active())
	}
}

func TestParserPool_PutNil(t *testing.T) {
	pool := NewParserPool(pythonLanguage())

	// Put(nil) must be a no-op.
	pool.Put(nil)
	if pool.Active() != 0 {
		t.Fatalf("expected 0 active leases, got %d", pool.Active())
	}
}

func TestParserPool_ParsesValidPython(t *testing.T) {
	pool := NewParserPool(pythonLanguage())

	sp := pool.Get()
	defer pool.Put(sp)

	tree := sp.Parse([]byte("def main():\n    pass\n"), nil)
	if tree == nil {
		t.Fatal("expected non-nil tree")
	}
	defer tree.Close()

	if tree.RootNode().HasError() {
		t.Fatal("expected clean parse")
	}
}

func TestParserPool_ConcurrentLeases(t *testing.T) {
	pool := NewParserPool(pythonLanguage())
	src := []byte("class A:\n    \"\"\"Doc.\"\"\"\n")

	var wg sync.WaitGroup
	errs := make(chan string, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sp := pool.Get()
			defer pool.Put(sp)
			tree := sp.Parse(src, nil)
			if tree == nil {
				errs <- "nil tree"
				return
			}
			defer tree.Close()
			if tree.RootNode().HasError() {
				errs <- "unexpected parse error"
			}
		}()
	}
	wg.Wait()
	close(errs)

	for msg := range errs {
		t.Error(msg)
	}
	if pool.Active() != 0 {
		t.Fatalf("expected all leases returned, got %d", pool.Active())
	}
}
