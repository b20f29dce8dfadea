// Package model holds the discovered test tree: projects, classes, and
// tests, along with the pure status-aggregation rule used to roll child
// state up to a class.
package model

import (
	"sort"
	"strings"
)

// Status is the lifecycle state of a single test.
type Status int

const (
	NotRun Status = iota
	Running
	Passed
	Failed
	Skipped
)

func (s Status) String() string {
	switch s {
	case Running:
		return "Running"
	case Passed:
		return "Passed"
	case Failed:
		return "Failed"
	case Skipped:
		return "Skipped"
	default:
		return "NotRun"
	}
}

// DiscoveryState tracks where a project is in the discovery pipeline.
type DiscoveryState int

const (
	Pending DiscoveryState = iota
	Discovering
	Ready
	Error
)

// Test is a single leaf test method.
type Test struct {
	FullyQualifiedName string // stable identifier, as reported by the test CLI
	DisplayName        string // bare method name
	lowerDisplayName   string // precomputed for filter matching

	Status       Status
	ErrorMessage string
	StackTrace   string
	DurationMS   int64

	// DocSummary is the text of a "///" XML doc comment found immediately
	// above the method's declaration in source, if any.
	DocSummary string

	Selected bool
}

// NewTest constructs a Test with its derived lowercase form precomputed.
func NewTest(fqn, displayName string) *Test {
	return &Test{
		FullyQualifiedName: fqn,
		DisplayName:        displayName,
		lowerDisplayName:   strings.ToLower(displayName),
	}
}

// MatchesFilter reports whether the test's display name contains the given
// (already-lowercased) substring.
func (t *Test) MatchesFilter(lowerSubstr string) bool {
	if lowerSubstr == "" {
		return true
	}
	return strings.Contains(t.lowerDisplayName, lowerSubstr)
}

// TestClass groups tests declared in one namespace-qualified class.
type TestClass struct {
	FullName      string // namespace-qualified
	lowerFullName string
	Tests         []*Test
}

// NewTestClass constructs an empty TestClass.
func NewTestClass(fullName string) *TestClass {
	return &TestClass{
		FullName:      fullName,
		lowerFullName: strings.ToLower(fullName),
	}
}

// SortTests orders tests case-insensitively by display name, per spec §3.
func (c *TestClass) SortTests() {
	sort.Slice(c.Tests, func(i, j int) bool {
		return strings.ToLower(c.Tests[i].DisplayName) < strings.ToLower(c.Tests[j].DisplayName)
	})
}

// AggregateStatus computes the class-level status as a pure function of its
// children's current statuses (spec §3): Failed if any child failed; else
// Running if any running; else Passed if any passed and none skipped-only;
// else Skipped if all skipped; else NotRun.
func (c *TestClass) AggregateStatus() Status {
	if len(c.Tests) == 0 {
		return NotRun
	}
	var anyFailed, anyRunning, anyPassed, allSkipped bool
	allSkipped = true
	for _, t := range c.Tests {
		switch t.Status {
		case Failed:
			anyFailed = true
		case Running:
			anyRunning = true
		case Passed:
			anyPassed = true
		}
		if t.Status != Skipped {
			allSkipped = false
		}
	}
	switch {
	case anyFailed:
		return Failed
	case anyRunning:
		return Running
	case anyPassed:
		return Passed
	case allSkipped:
		return Skipped
	default:
		return NotRun
	}
}

// TestProject is a root node: one .csproj worth of discovered tests.
type TestProject struct {
	Name      string
	ProjectFile string // absolute path
	Dir       string   // absolute path to containing directory

	Classes []*TestClass

	LoadError string
	State     DiscoveryState
}

// NewTestProject constructs a Pending project, as created by the Workspace
// Locator before discovery runs (spec §4.4: "the UI must have already
// constructed Pending projects before the coordinator starts").
func NewTestProject(name, projectFile, dir string) *TestProject {
	return &TestProject{
		Name:        name,
		ProjectFile: projectFile,
		Dir:         dir,
		State:       Pending,
	}
}

// SortClasses orders classes case-insensitively by full name, per spec §3.
func (p *TestProject) SortClasses() {
	sort.Slice(p.Classes, func(i, j int) bool {
		return strings.ToLower(p.Classes[i].FullName) < strings.ToLower(p.Classes[j].FullName)
	})
}

// FindClass returns the class with the given full name, or nil.
func (p *TestProject) FindClass(fullName string) *TestClass {
	for _, c := range p.Classes {
		if c.FullName == fullName {
			return c
		}
	}
	return nil
}

// AllTests returns every test across every class, in tree order.
func (p *TestProject) AllTests() []*Test {
	var out []*Test
	for _, c := range p.Classes {
		out = append(out, c.Tests...)
	}
	return out
}

// CollapseKey returns the stable cross-session key for a class's collapse
// state (spec §3): scoped by project so that two projects with a
// same-named class don't share collapse state.
func CollapseKey(projectName, classFullName string) string {
	return projectName + "::" + classFullName
}
