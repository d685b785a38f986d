// Package fileutil expands command-line paths into the list of job files to lint.
//
// Directories are walked for files with one of the configured extensions.
// Hidden directories and names in ExcludeDirs are never entered. Results are
// absolute, sorted and free of duplicates so repeated or overlapping
// arguments lint each file once.
package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ScanOptions configures how directories are expanded
type ScanOptions struct {
	// Extensions lists file extensions to include (e.g., ".xml"); empty matches all files
	Extensions []string
	// Recursive descends into subdirectories
	Recursive bool
	// ExcludeDirs lists directory names that are skipped (e.g., "builds", "workspace")
	ExcludeDirs []string
}

// ScanResult contains the expanded file list
type ScanResult struct {
	// Files contains absolute paths of matched files, sorted
	Files []string
	// Errors contains non-fatal errors hit while walking
	Errors []error
}

// matcher holds the lookup tables built from ScanOptions
type matcher struct {
	exts    map[string]bool
	exclude map[string]bool
}

func newMatcher(opts ScanOptions) matcher {
	m := matcher{exts: make(map[string]bool), exclude: make(map[string]bool)}
	for _, ext := range opts.Extensions {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		m.exts[strings.ToLower(ext)] = true
	}
	for _, dir := range opts.ExcludeDirs {
		m.exclude[dir] = true
	}
	return m
}

func (m matcher) matchFile(name string) bool {
	if len(m.exts) == 0 {
		return true
	}
	return m.exts[strings.ToLower(filepath.Ext(name))]
}

func (m matcher) skipDir(name string) bool {
	return m.exclude[name] || strings.HasPrefix(name, ".")
}

// ScanDirectory walks dir and returns every file accepted by opts
func ScanDirectory(dir string, opts ScanOptions) (*ScanResult, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to access directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", dir)
	}

	result := &ScanResult{Files: make([]string, 0)}
	if err := scanInto(result, dir, newMatcher(opts), opts.Recursive); err != nil {
		return nil, err
	}
	sort.Strings(result.Files)
	return result, nil
}

func scanInto(result *ScanResult, dir string, m matcher, recursive bool) error {
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("error accessing %s: %w", path, err))
			return nil
		}
		if path == dir {
			return nil
		}

		if d.IsDir() {
			if !recursive || m.skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() || !m.matchFile(d.Name()) {
			return nil
		}

		absPath, err := filepath.Abs(path)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("failed to resolve path %s: %w", path, err))
			return nil
		}
		result.Files = append(result.Files, absPath)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk directory: %w", err)
	}
	return nil
}

// ExpandPaths resolves a mix of files and directories into a sorted,
// deduplicated list of absolute file paths. Files named explicitly are kept
// whatever their extension; directories are scanned with opts. A path that
// does not exist is a fatal error.
func ExpandPaths(paths []string, opts ScanOptions) (*ScanResult, error) {
	result := &ScanResult{Files: make([]string, 0)}
	m := newMatcher(opts)

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to access %s: %w", p, err)
		}

		if info.IsDir() {
			if err := scanInto(result, p, m, opts.Recursive); err != nil {
				return nil, err
			}
			continue
		}

		absPath, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve path %s: %w", p, err)
		}
		result.Files = append(result.Files, absPath)
	}

	result.Files = dedupeSorted(result.Files)
	return result, nil
}

func dedupeSorted(files []string) []string {
	sort.Strings(files)
	out := files[:0]
	for i, f := range files {
		if i > 0 && f == files[i-1] {
			continue
		}
		out = append(out, f)
	}
	return out
}

// AcceptsFile reports whether a file name passes the extension filter
func (o ScanOptions) AcceptsFile(name string) bool {
	return newMatcher(o).matchFile(name)
}

// SkipsDir reports whether a directory name is never entered
func (o ScanOptions) SkipsDir(name string) bool {
	return newMatcher(o).skipDir(name)
}
