package prreview

import (
	"context"
	"fmt"
	"strings"

	"github.com/haavardr/testament/internal/model"
)

// Result is the outcome of reviewing one PR (or local ref) change set: the
// tests it resolved to against the already-discovered tree, plus the local
// repository context it ran alongside.
type Result struct {
	ChangedFiles []string
	ChangedNames []string
	Tests        []*model.Test
	Context      LocalContext
}

// Review resolves a PR reference to the set of tests it touches. ref is
// either a URL/number understood by apiBaseURL's hosted review API, or,
// when apiBaseURL is empty, a local git ref diffed against HEAD — the
// "thin adapter... over the core" spec §1 describes, with discovery's
// already-built tree as its only dependency on the rest of the system.
func Review(ctx context.Context, apiBaseURL, workspaceRoot, ref string, projects []*model.TestProject) (*Result, error) {
	lctx := ResolveLocalContext(workspaceRoot)

	var files []DiffFile
	if apiBaseURL != "" {
		client := NewClient(apiBaseURL)
		fetched, err := client.FetchDiff(ctx, ref)
		if err != nil {
			return nil, err
		}
		files = fetched
	} else {
		if lctx.RepoRoot == "" {
			return nil, fmt.Errorf("prreview: no --pr-api configured and %s is not a git repository", workspaceRoot)
		}
		paths, err := LocalChangedTestFiles(lctx.RepoRoot, ref)
		if err != nil {
			return nil, err
		}
		for _, path := range paths {
			patch, err := LocalDiffPatch(lctx.RepoRoot, ref, path)
			if err != nil {
				continue
			}
			files = append(files, DiffFile{Path: path, Patch: patch})
		}
	}

	names := ChangedTestMethods(files)
	tests := ResolveAgainstTree(projects, names)

	var changedPaths []string
	for _, f := range files {
		changedPaths = append(changedPaths, f.Path)
	}

	return &Result{
		ChangedFiles: changedPaths,
		ChangedNames: names,
		Tests:        tests,
		Context:      lctx,
	}, nil
}

// Summary renders a short human-readable line describing a review
// result, printed by `testament pr` before the reviewed tests run.
func (r *Result) Summary() string {
	if len(r.Tests) == 0 {
		return fmt.Sprintf("no changed test methods found across %d changed file(s)", len(r.ChangedFiles))
	}
	names := make([]string, len(r.Tests))
	for i, t := range r.Tests {
		names[i] = t.FullyQualifiedName
	}
	return fmt.Sprintf("%d changed test(s): %s", len(r.Tests), strings.Join(names, ", "))
}
