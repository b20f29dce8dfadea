// Package prreview is the thin PR change-set adapter mentioned in spec §1:
// it fetches a diff from a hosted code-review service, extracts the test
// methods a pull request touched, and hands the result to the core only
// through the discovery tree's own vocabulary (display names to look up),
// never by reaching into discovery's internals.
package prreview

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/haavardr/testament/internal/model"
)

// Client fetches PR diffs from a hosted code-review API.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient builds a Client against baseURL (e.g. a GitHub- or
// GitLab-compatible "pulls/:id/files" API root).
func NewClient(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// DiffFile is one changed file in a PR, with its unified-diff patch text.
type DiffFile struct {
	Path  string
	Patch string
}

// FetchDiff retrieves the set of changed files for a PR URL or number. The
// response is expected in the common "array of {filename, patch}" shape
// that both GitHub's and GitLab's REST APIs use; gjson picks the fields
// out without a generated client.
func (c *Client) FetchDiff(ctx context.Context, pr string) ([]DiffFile, error) {
	url := fmt.Sprintf("%s/%s/files", c.baseURL, strings.TrimPrefix(pr, "/"))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching PR diff: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading PR diff response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetching PR diff: %s returned %d", url, resp.StatusCode)
	}

	var files []DiffFile
	for _, f := range gjson.ParseBytes(body).Array() {
		path := f.Get("filename").String()
		if path == "" {
			path = f.Get("path").String()
		}
		if path == "" {
			continue
		}
		files = append(files, DiffFile{
			Path:  path,
			Patch: f.Get("patch").String(),
		})
	}
	return files, nil
}

// changedMethodRe matches an added (+-prefixed) C# method declaration line
// within a unified diff hunk. It deliberately mirrors the shape of
// internal/source's method-declaration regex rather than sharing it
// directly: a diff hunk line carries a leading "+"/" " marker the source
// indexer never sees, and reusing the exact same compiled regex would
// force that package to accommodate a concern that's only ever diff-side.
var changedMethodRe = regexp.MustCompile(`^\+\s*(?:\[[^\]]*\]\s*)*(?:public|private|protected|internal|static|virtual|override|async|sealed|new|\s)+[\w<>\[\],.?]+\s+([A-Za-z_]\w*)\s*(?:<[^>]*>)?\s*\(`)

// isTestFile reports whether a changed path looks like a test source file,
// mirroring the source indexer's own cheap "contains Test" pre-filter.
func isTestFile(path string) bool {
	return strings.HasSuffix(path, ".cs") && strings.Contains(path, "Test")
}

// ChangedTestMethods scans a diff's test files for added method
// declarations and returns their bare (unqualified) names, de-duplicated.
// These are display names, not fully-qualified identifiers: resolving them
// to concrete tests is the caller's job, via ResolveAgainstTree.
func ChangedTestMethods(files []DiffFile) []string {
	seen := make(map[string]bool)
	var names []string
	for _, f := range files {
		if !isTestFile(f.Path) {
			continue
		}
		for _, line := range strings.Split(f.Patch, "\n") {
			m := changedMethodRe.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			name := m[1]
			if seen[name] {
				continue
			}
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

// ResolveAgainstTree maps changed display names onto the already-discovered
// tree, across every project, so the PR adapter never needs its own
// knowledge of class/namespace structure. This is the "thin adapter...
// via its interface to discovery" spec §1 describes: discovery already
// built the tree, prreview only looks names up in it.
func ResolveAgainstTree(projects []*model.TestProject, changedNames []string) []*model.Test {
	wanted := make(map[string]bool, len(changedNames))
	for _, n := range changedNames {
		wanted[n] = true
	}

	var matches []*model.Test
	for _, p := range projects {
		for _, t := range p.AllTests() {
			if wanted[t.DisplayName] {
				matches = append(matches, t)
			}
		}
	}
	return matches
}

// SaveLastReview encodes the most recent PR review outcome (the PR
// reference and the test display names it resolved to) as a small JSON
// document, using sjson to build it field-by-field rather than marshaling
// a struct — the same incremental-patch style the API response itself is
// read with via gjson. It returns the document; it does not write it to
// disk.
func SaveLastReview(pr string, names []string) ([]byte, error) {
	doc := []byte(`{}`)
	var err error
	doc, err = sjson.SetBytes(doc, "pr", pr)
	if err != nil {
		return nil, err
	}
	doc, err = sjson.SetBytes(doc, "reviewed_at", time.Now().Unix())
	if err != nil {
		return nil, err
	}
	doc, err = sjson.SetBytes(doc, "test_names", names)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// LoadLastReview reads back a document written by SaveLastReview.
func LoadLastReview(doc []byte) (pr string, names []string) {
	pr = gjson.GetBytes(doc, "pr").String()
	for _, n := range gjson.GetBytes(doc, "test_names").Array() {
		names = append(names, n.String())
	}
	return pr, names
}
