package source

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

var skipDirs = map[string]bool{
	"bin": true,
	"obj": true,
}

func shouldSkipDir(name string) bool {
	if skipDirs[name] {
		return true
	}
	return strings.HasPrefix(name, ".")
}

// IndexProject walks a project's directory and builds a MethodIndex from
// every .cs file whose name contains "Test", per spec §4.2. Files are
// visited in deterministic (sorted) walk order so that occurrence lists
// are reproducible across runs, and a single Parser is reused for every
// file read. The nearest `.gitignore` at or above dir (searched up to the
// repo root, at most eight levels) is honored, so generated or vendored
// C# the user has ignored never contributes bogus method occurrences;
// ignore files further up are not consulted.
func IndexProject(dir string) (*MethodIndex, error) {
	idx := NewMethodIndex()
	p := NewParser()
	ignoreRoot, ignore := findIgnore(dir)

	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != dir && (shouldSkipDir(d.Name()) || matchesIgnore(ignoreRoot, ignore, path)) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".cs") {
			return nil
		}
		if !strings.Contains(d.Name(), "Test") {
			return nil
		}
		if matchesIgnore(ignoreRoot, ignore, path) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	for _, path := range files {
		if err := indexFile(p, path, idx); err != nil {
			return nil, err
		}
	}
	return idx, nil
}

func indexFile(p *Parser, path string, idx *MethodIndex) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return p.ParseFile(f, idx)
}

// findIgnore looks for a .gitignore starting at dir and walking upward a
// few levels (stopping at a VCS root), returning the directory it was
// found in so paths can be made relative to it.
func findIgnore(dir string) (string, *gitignore.GitIgnore) {
	cur := dir
	for i := 0; i < 8; i++ {
		path := filepath.Join(cur, ".gitignore")
		if _, err := os.Stat(path); err == nil {
			if ig, err := gitignore.CompileIgnoreFile(path); err == nil {
				return cur, ig
			}
		}
		if _, err := os.Stat(filepath.Join(cur, ".git")); err == nil {
			break
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			break
		}
		cur = parent
	}
	return "", nil
}

func matchesIgnore(root string, ignore *gitignore.GitIgnore, path string) bool {
	if ignore == nil {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return ignore.MatchesPath(rel)
}
