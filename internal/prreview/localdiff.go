package prreview

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// findRepoRoot walks up from dir looking for a ".git" marker directory, so
// the adapter can report which repository a PR review ran against without
// requiring the caller to already know.
func findRepoRoot(dir string) (string, error) {
	dir = filepath.Clean(dir)
	for {
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not in a git repository")
		}
		dir = parent
	}
}

// headCommit returns the short hash of HEAD, recorded in LocalContext.
func headCommit(repoRoot string) string {
	out, err := exec.Command("git", "-C", repoRoot, "rev-parse", "--short", "HEAD").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

// dirtyFiles lists uncommitted changes relative to repoRoot, recorded in
// LocalContext.
func dirtyFiles(repoRoot string) []string {
	out, err := exec.Command("git", "-C", repoRoot, "status", "--porcelain").Output()
	if err != nil {
		return nil
	}
	var files []string
	for _, line := range strings.Split(string(out), "\n") {
		if len(line) < 3 {
			continue
		}
		file := strings.TrimSpace(line[3:])
		if idx := strings.Index(file, " -> "); idx >= 0 {
			file = file[idx+4:]
		}
		if file != "" {
			files = append(files, file)
		}
	}
	return files
}

// LocalContext carries the repository context a PR review runs alongside.
// Review uses RepoRoot; HeadCommit and DirtyFiles are recorded but not
// read by anything in this module.
type LocalContext struct {
	RepoRoot   string
	HeadCommit string
	DirtyFiles []string
}

// ResolveLocalContext inspects the local checkout at dir. It never fails
// the PR review outright: a repo that can't be found just yields a zero
// LocalContext, since the review can still proceed against the fetched
// diff alone.
func ResolveLocalContext(dir string) LocalContext {
	root, err := findRepoRoot(dir)
	if err != nil {
		return LocalContext{}
	}
	return LocalContext{
		RepoRoot:   root,
		HeadCommit: headCommit(root),
		DirtyFiles: dirtyFiles(root),
	}
}

// LocalChangedTestFiles falls back to a local "git diff" against a base
// ref when the PR command is given a ref instead of a hosted PR URL
// (`testament pr main`, say, meaning "review my branch's diff against
// main" without any network call).
func LocalChangedTestFiles(repoRoot, baseRef string) ([]string, error) {
	out, err := exec.Command("git", "-C", repoRoot, "diff", "--name-only", baseRef, "HEAD").Output()
	if err != nil {
		checkErr := exec.Command("git", "-C", repoRoot, "rev-parse", "--verify", baseRef).Run()
		if checkErr != nil {
			return nil, fmt.Errorf("unknown git ref: %s", baseRef)
		}
		return nil, err
	}

	var files []string
	for _, line := range strings.Split(string(out), "\n") {
		file := strings.TrimSpace(line)
		if file != "" && isTestFile(file) {
			files = append(files, file)
		}
	}
	return files, nil
}

// LocalDiffPatch returns the unified diff for a single file against
// baseRef, so LocalChangedTestFiles's results can feed ChangedTestMethods
// the same way a fetched DiffFile would.
func LocalDiffPatch(repoRoot, baseRef, path string) (string, error) {
	out, err := exec.Command("git", "-C", repoRoot, "diff", baseRef, "HEAD", "--", path).Output()
	if err != nil {
		return "", err
	}
	return string(out), nil
}
