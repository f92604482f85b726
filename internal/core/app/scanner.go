package app

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"doccov/internal/core/watcher"
	"doccov/internal/shared/util"
)

// ExpandPaths turns the given files and directories into the list of source
// files to analyze. Explicit files are kept as given, even when their
// extension or name would be excluded during a directory walk. Directory
// contents are sorted; duplicates are dropped.
func (s *Service) ExpandPaths(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(p string) {
		clean := filepath.Clean(p)
		if !seen[clean] {
			seen[clean] = true
			files = append(files, clean)
		}
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", root, err)
		}
		if !info.IsDir() {
			add(root)
			continue
		}

		found, err := s.ScanDirectories([]string{root})
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			add(f)
		}
	}
	return files, nil
}

// ScanDirectories walks each root and returns supported source files that
// survive the exclude patterns, sorted per root.
func (s *Service) ScanDirectories(roots []string) ([]string, error) {
	var files []string

	for _, root := range roots {
		var found []string
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			base := filepath.Base(path)
			if d.IsDir() {
				if path != root && s.excludedDir(base) {
					return filepath.SkipDir
				}
				return nil
			}

			if !s.parser.IsSupportedPath(path) {
				return nil
			}
			if !s.Config.IncludePrivate && watcher.IsPrivateModule(base) {
				return nil
			}
			if s.excludedFile(root, path) {
				return nil
			}

			found = append(found, path)
			return nil
		})
		if err != nil {
			return nil, err
		}
		sort.Strings(found)
		files = append(files, found...)
	}

	return files, nil
}

func (s *Service) excludedDir(base string) bool {
	for _, g := range s.excludeDirs {
		if g.Match(base) {
			return true
		}
	}
	return false
}

// excludedFile matches patterns against the base name, and also against the
// slash-separated path relative to root so patterns like "migrations/*.py"
// work.
func (s *Service) excludedFile(root, path string) bool {
	base := filepath.Base(path)
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	rel = util.NormalizePatternPath(filepath.ToSlash(rel))

	for _, g := range s.excludeFiles {
		if g.Match(base) {
			return true
		}
		if util.ContainsPathSeparator(rel) && g.Match(rel) {
			return true
		}
	}
	return false
}
