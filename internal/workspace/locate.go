// Package workspace locates the project files a run should operate over:
// either the projects named by a solution file, or a recursive scan for
// project files when no solution is found.
package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
)

// ErrNoWorkspace is returned when neither a solution nor any project file
// can be found starting from the given path.
var ErrNoWorkspace = errors.New("no workspace found: no .sln or project file in scope")

// ProjectRef is a project file discovered by Locate, before parsing.
type ProjectRef struct {
	Path string // absolute path to the project file
}

// Result is what Locate returns: the ordered project files in scope, and
// the solution file that produced them, if any.
type Result struct {
	Projects     []ProjectRef
	SolutionFile string // empty if resolved by recursive scan
}

var slnProjectLineRegex = regexp.MustCompile(`Project\("\{[^}]+\}"\)\s*=\s*"[^"]*",\s*"([^"]+)",\s*"\{[^}]+\}"`)

// uncPrefix is the universal-naming-convention prefix Windows sometimes
// prepends to absolute paths; the external test CLI does not accept it.
const uncPrefix = `\\?\`

// Locate resolves the project-file set to operate over, starting from a
// file or directory path, per spec §4.1.
func Locate(startPath string) (*Result, error) {
	info, err := os.Stat(startPath)
	if err != nil {
		return nil, fmt.Errorf("locating workspace: %w", err)
	}

	// 1. Input is itself a project file.
	if !info.IsDir() && isProjectFile(startPath) {
		abs, err := filepath.Abs(startPath)
		if err != nil {
			return nil, err
		}
		return &Result{Projects: []ProjectRef{{Path: abs}}}, nil
	}

	startDir := startPath
	if !info.IsDir() {
		startDir = filepath.Dir(startPath)
	}
	startDir, err = filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	// 2. Walk up to (and including) the VCS root looking for a solution file.
	vcsRoot, _ := findVCSRoot(startDir)
	if slnPath, ok := findSolutionUpward(startDir, vcsRoot); ok {
		projects, err := parseSolution(slnPath)
		if err != nil {
			return nil, fmt.Errorf("parsing solution %s: %w", slnPath, err)
		}
		if len(projects) == 0 {
			return nil, fmt.Errorf("%w: solution %s named no test projects", ErrNoWorkspace, slnPath)
		}
		return &Result{Projects: projects, SolutionFile: slnPath}, nil
	}

	// 3. Recursive scan for project files.
	var found []ProjectRef
	err = filepath.WalkDir(startDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if shouldSkipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if isProjectFile(path) {
			found = append(found, ProjectRef{Path: path})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("%w: no project files under %s", ErrNoWorkspace, startDir)
	}
	return &Result{Projects: found}, nil
}

// FindRoot resolves the workspace root for configuration lookup: the
// directory of the nearest solution file found walking up from dir
// (bounded by the VCS root), else the VCS root itself, else dir
// unchanged. Unlike Locate, it never parses a solution or scans for
// project files, so it's cheap enough to call before project discovery
// has run — grounded on the teacher's cmd/root.go resolving gitRoot via
// git.FindRootFrom(cwd) before config.Load, so the workspace-root
// config tier is reachable on every invocation, not just ones that
// happen to call Locate first.
func FindRoot(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}

	vcsRoot, _ := findVCSRoot(dir)
	if slnPath, ok := findSolutionUpward(dir, vcsRoot); ok {
		return filepath.Dir(slnPath), nil
	}
	if vcsRoot != "" {
		return vcsRoot, nil
	}
	return dir, nil
}

func isProjectFile(path string) bool {
	return strings.HasSuffix(path, ".csproj")
}

func shouldSkipDir(name string) bool {
	if name == "bin" || name == "obj" {
		return true
	}
	return strings.HasPrefix(name, ".")
}

// findVCSRoot walks up from dir looking for a ".git" marker directory.
func findVCSRoot(dir string) (string, bool) {
	for {
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// findSolutionUpward looks for a *.sln file in dir or any ancestor up to
// and including vcsRoot (if vcsRoot is empty, only dir itself is checked).
func findSolutionUpward(dir, vcsRoot string) (string, bool) {
	for {
		entries, err := os.ReadDir(dir)
		if err == nil {
			for _, e := range entries {
				if !e.IsDir() && strings.HasSuffix(e.Name(), ".sln") {
					return filepath.Join(dir, e.Name()), true
				}
			}
		}
		if vcsRoot == "" || dir == vcsRoot {
			return "", false
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// parseSolution extracts Project(...) lines from the .sln file, resolves
// each referenced path relative to the solution's directory, and keeps only
// those whose file-name stem ends (case-sensitively) in "Tests" or "Test".
func parseSolution(slnPath string) ([]ProjectRef, error) {
	content, err := os.ReadFile(slnPath)
	if err != nil {
		return nil, err
	}

	slnDir := filepath.Dir(slnPath)
	var refs []ProjectRef

	matches := slnProjectLineRegex.FindAllStringSubmatch(string(content), -1)
	for _, m := range matches {
		relPath := m[1]
		if !strings.HasSuffix(strings.ToLower(relPath), ".csproj") {
			continue
		}

		// Normalize separators for the host OS.
		if runtime.GOOS == "windows" {
			relPath = strings.ReplaceAll(relPath, "/", `\`)
		} else {
			relPath = strings.ReplaceAll(relPath, `\`, "/")
		}

		absPath := filepath.Clean(filepath.Join(slnDir, relPath))
		absPath = strings.TrimPrefix(absPath, uncPrefix)

		stem := strings.TrimSuffix(filepath.Base(absPath), ".csproj")
		if strings.HasSuffix(stem, "Tests") || strings.HasSuffix(stem, "Test") {
			refs = append(refs, ProjectRef{Path: absPath})
		}
	}

	return refs, nil
}
