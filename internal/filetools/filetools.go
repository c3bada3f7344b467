// Package filetools collects small file and file-name manipulation helpers
// shared by the parsers and the CLI.
package filetools

import (
	"bufio"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// SkipComments advances r past leading lines that start with '#' and returns
// a scanner positioned on the first non-comment line. The returned scanner
// yields that line first and then the rest of the input.
func SkipComments(r io.Reader) *Scanner {
	s := &Scanner{scanner: bufio.NewScanner(r)}
	for s.scanner.Scan() {
		line := s.scanner.Text()
		if strings.HasPrefix(line, "#") {
			continue
		}
		s.pending = &line
		break
	}
	return s
}

// Scanner is a line scanner that can hold back one line. It is what
// SkipComments returns so the first data line is not lost.
type Scanner struct {
	scanner *bufio.Scanner
	pending *string
	line    string
}

// Scan advances to the next line, returning false at end of input.
func (s *Scanner) Scan() bool {
	if s.pending != nil {
		s.line = *s.pending
		s.pending = nil
		return true
	}
	if !s.scanner.Scan() {
		return false
	}
	s.line = s.scanner.Text()
	return true
}

// Text returns the current line.
func (s *Scanner) Text() string { return s.line }

// Err returns the first error encountered by the underlying scanner.
func (s *Scanner) Err() error { return s.scanner.Err() }

// PrefixFilename prepends prefix to the file name part of path, leaving the
// directory part untouched.
//
//	PrefixFilename("/path/to/file.dat", "new_") == "/path/to/new_file.dat"
func PrefixFilename(path, prefix string) string {
	dir, name := filepath.Split(path)
	return filepath.Join(dir, prefix+name)
}

// ScanFiles walks the tree rooted at root and returns the files whose base
// name matches pattern. Patterns use doublestar glob syntax. Files matching
// any of the exclude patterns are dropped. When recursive is false only the
// direct entries of root are considered.
func ScanFiles(fsys fs.FS, root, pattern string, recursive bool, exclude ...string) ([]string, error) {
	var out []string

	err := fs.WalkDir(fsys, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if !recursive && path != root {
				return fs.SkipDir
			}
			return nil
		}

		name := filepath.Base(path)
		ok, err := doublestar.Match(pattern, name)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		for _, ex := range exclude {
			skip, err := doublestar.Match(ex, name)
			if err != nil {
				return err
			}
			if skip {
				return nil
			}
		}
		out = append(out, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
