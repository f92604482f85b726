package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewWatcher_RejectsNilCallback(t *testing.T) {
	w, err := NewWatcher(Options{Debounce: 100 * time.Millisecond}, nil)
	if err == nil {
		t.Fatal("expected error for nil callback")
	}
	if !errors.Is(err, os.ErrInvalid) {
		t.Fatalf("expected os.ErrInvalid, got %v", err)
	}
	if w != nil {
		t.Fatal("expected nil watcher when callback is invalid")
	}
}

func TestNewWatcher_RejectsBadGlob(t *testing.T) {
	_, err := NewWatcher(Options{ExcludeFiles: []string{"["}}, func([]string) {})
	if err == nil {
		t.Fatal("expected glob compile error")
	}
}

func TestWatcher(t *testing.T) {
	tmpDir := t.TempDir()

	changedFiles := make(chan []string, 4)
	w, err := NewWatcher(Options{
		Debounce:       100 * time.Millisecond,
		ExcludeDirs:    []string{"exclude_dir"},
		ExcludeFiles:   []string{"*_pb2.py"},
		Extensions:     []string{".py", ".pyi"},
		IncludePrivate: true,
	}, func(paths []string) {
		changedFiles <- paths
	})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.Watch([]string{tmpDir}); err != nil {
		t.Fatal(err)
	}

	testFile := filepath.Join(tmpDir, "module.py")
	if err := os.WriteFile(testFile, []byte("def f():\n    pass\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case paths := <-changedFiles:
		found := false
		for _, p := range paths {
			if p == testFile {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Expected to find %s in changed files %v", testFile, paths)
		}
	case <-time.After(2 * time.Second):
		t.Error("Timed out waiting for file change event")
	}

	// Excluded and unsupported files never trigger.
	for _, name := range []string{"messages_pb2.py", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(tmpDir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	select {
	case paths := <-changedFiles:
		for _, p := range paths {
			switch filepath.Base(p) {
			case "messages_pb2.py", "notes.txt":
				t.Errorf("Excluded file %s triggered event", p)
			}
		}
	case <-time.After(500 * time.Millisecond):
	}

	// New directory should be recursively watched after create.
	subdir := filepath.Join(tmpDir, "pkg")
	if err := os.MkdirAll(subdir, 0o755); err != nil {
		t.Fatal(err)
	}
	subFile := filepath.Join(subdir, "nested.py")
	if err := os.WriteFile(subFile, []byte("x = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	foundNested := false
	timeout := time.After(2 * time.Second)
	for !foundNested {
		select {
		case paths := <-changedFiles:
			for _, p := range paths {
				if p == subFile {
					foundNested = true
					break
				}
			}
		case <-timeout:
			t.Fatal("timed out waiting for nested file event in newly created directory")
		}
	}
}

func TestWatcher_SingleFileIgnoresSiblings(t *testing.T) {
	tmpDir := t.TempDir()
	target := filepath.Join(tmpDir, "target.py")
	sibling := filepath.Join(tmpDir, "sibling.py")
	if err := os.WriteFile(target, []byte("x = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	changedFiles := make(chan []string, 8)
	w, err := NewWatcher(Options{Debounce: 50 * time.Millisecond}, func(paths []string) {
		changedFiles <- paths
	})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.Watch([]string{target}); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(sibling, []byte("y = 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(target, []byte("x = 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	timeout := time.After(2 * time.Second)
	for {
		select {
		case paths := <-changedFiles:
			for _, p := range paths {
				if p == sibling {
					t.Fatalf("sibling %s should not be reported", sibling)
				}
				if p == target {
					return
				}
			}
		case <-timeout:
			t.Fatal("timed out waiting for target change")
		}
	}
}

func TestWatcher_RenameTriggersChange(t *testing.T) {
	tmpDir := t.TempDir()

	changedFiles := make(chan []string, 8)
	w, err := NewWatcher(Options{Debounce: 100 * time.Millisecond}, func(paths []string) {
		changedFiles <- paths
	})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.Watch([]string{tmpDir}); err != nil {
		t.Fatal(err)
	}

	oldPath := filepath.Join(tmpDir, "old.py")
	newPath := filepath.Join(tmpDir, "new.py")
	if err := os.WriteFile(oldPath, []byte("x = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(oldPath, newPath); err != nil {
		t.Fatal(err)
	}

	timeout := time.After(2 * time.Second)
	for {
		select {
		case paths := <-changedFiles:
			for _, p := range paths {
				if p == oldPath || p == newPath {
					return
				}
			}
		case <-timeout:
			t.Fatalf("timed out waiting for rename event, old=%s new=%s", oldPath, newPath)
		}
	}
}

func TestWatcher_FileFilters(t *testing.T) {
	tmpDir := t.TempDir()
	w, err := NewWatcher(Options{Extensions: []string{".PY"}}, func([]string) {})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	w.dirs = []string{tmpDir}

	if !w.accepts(filepath.Join(tmpDir, "mod.py")) {
		t.Fatal("expected .py file to be accepted")
	}
	if w.accepts(filepath.Join(tmpDir, "stub.pyi")) {
		t.Fatal("expected .pyi to be rejected when only .py is enabled")
	}
	if w.accepts(filepath.Join(tmpDir, "_private.py")) {
		t.Fatal("expected private module to be rejected when IncludePrivate is false")
	}
	if !w.accepts(filepath.Join(tmpDir, "__init__.py")) {
		t.Fatal("expected package initializer to be accepted")
	}
	if w.accepts(filepath.Join(t.TempDir(), "elsewhere.py")) {
		t.Fatal("expected files outside watched roots to be rejected")
	}
}

func TestIsPrivateModule(t *testing.T) {
	cases := map[string]bool{
		"_impl.py":    true,
		"__main__.py": true,
		"__init__.py": false,
		"public.py":   false,
	}
	for name, want := range cases {
		if got := IsPrivateModule(name); got != want {
			t.Errorf("IsPrivateModule(%q) = %v, want %v", name, got, want)
		}
	}
}
