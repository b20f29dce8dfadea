// Package uistate owns all mutable interactive state: the project/test
// tree, cursor and focus, selection, filter, collapse state, and the
// streaming output buffer. Exactly one goroutine (the event loop) is
// meant to ever call into a State; it carries no internal locking.
package uistate

import (
	"strings"

	"github.com/haavardr/testament/internal/model"
)

// Pane identifies one of the four visual regions.
type Pane int

const (
	PaneProjects Pane = iota
	PaneTests
	PaneOutput
	PaneDetails
)

// Next and Prev cycle pane focus, matching Tab / Shift+Tab.
func (p Pane) Next() Pane { return (p + 1) % 4 }
func (p Pane) Prev() Pane { return (p + 3) % 4 }

// State is the full interactive session state.
type State struct {
	Projects       []*model.TestProject
	CurrentProject int // index into Projects

	Focus        Pane
	ProjectCursor int
	TestCursor    int // index into the current project's visible-item list

	Selection map[string]bool // keyed by Test.FullyQualifiedName

	collapsed          map[string]bool // keyed by model.CollapseKey
	collapseGeneration int

	Filter       string
	FilterActive bool
	enteringFilter bool
	filterDraft    string

	Output *OutputBuffer

	WatchMode     bool
	RunInProgress bool

	// lastFailed maps a project file path to the FQNs that failed in its
	// most recently completed run, for the 'a' rerun-failures command.
	lastFailed map[string][]string

	visibleCache map[visibleCacheKey][]VisibleItem

	Dirty bool
}

// New constructs an empty State over the given discovered projects.
func New(projects []*model.TestProject) *State {
	return &State{
		Projects:     projects,
		Selection:    make(map[string]bool),
		collapsed:    make(map[string]bool),
		lastFailed:   make(map[string][]string),
		visibleCache: make(map[visibleCacheKey][]VisibleItem),
		Output:       NewOutputBuffer(),
		Dirty:        true,
	}
}

// MarkDirty sets the redraw flag; the event loop clears it after drawing.
func (s *State) MarkDirty() { s.Dirty = true }

// CurrentProjectPtr returns the currently selected project, or nil if
// there are none.
func (s *State) CurrentProjectPtr() *model.TestProject {
	if s.CurrentProject < 0 || s.CurrentProject >= len(s.Projects) {
		return nil
	}
	return s.Projects[s.CurrentProject]
}

// IsCollapsed reports whether a class is collapsed, scoped by project name
// via model.CollapseKey.
func (s *State) IsCollapsed(projectName, classFullName string) bool {
	return s.collapsed[model.CollapseKey(projectName, classFullName)]
}

// ToggleCollapse flips a class's collapse state and bumps the generation
// counter that invalidates the derived visible-item cache.
func (s *State) ToggleCollapse(projectName, classFullName string) {
	key := model.CollapseKey(projectName, classFullName)
	s.collapsed[key] = !s.collapsed[key]
	s.bumpCollapseGeneration()
}

// SetAllCollapsed sets every class in the project to the same collapse
// state, used by the "c" toggle-majority command.
func (s *State) SetAllCollapsed(p *model.TestProject, collapsed bool) {
	for _, c := range p.Classes {
		s.collapsed[model.CollapseKey(p.Name, c.FullName)] = collapsed
	}
	s.bumpCollapseGeneration()
}

// ToggleAllCollapse implements the "c" key: collapses everything if a
// majority of classes are currently expanded, else expands everything.
func (s *State) ToggleAllCollapse(p *model.TestProject) {
	if p == nil || len(p.Classes) == 0 {
		return
	}
	collapsedCount := 0
	for _, c := range p.Classes {
		if s.IsCollapsed(p.Name, c.FullName) {
			collapsedCount++
		}
	}
	majorityCollapsed := collapsedCount*2 >= len(p.Classes)
	s.SetAllCollapsed(p, !majorityCollapsed)
}

func (s *State) bumpCollapseGeneration() {
	s.collapseGeneration++
	s.visibleCache = make(map[visibleCacheKey][]VisibleItem)
	s.MarkDirty()
}

// ToggleSelection flips a test's selection flag.
func (s *State) ToggleSelection(t *model.Test) {
	t.Selected = !t.Selected
	if t.Selected {
		s.Selection[t.FullyQualifiedName] = true
	} else {
		delete(s.Selection, t.FullyQualifiedName)
	}
	s.MarkDirty()
}

// ClearSelection empties the selection set and clears every test's flag.
func (s *State) ClearSelection() {
	for _, p := range s.Projects {
		for _, t := range p.AllTests() {
			t.Selected = false
		}
	}
	s.Selection = make(map[string]bool)
	s.MarkDirty()
}

// SetFilter installs a new active filter, invalidating the visible cache.
func (s *State) SetFilter(text string) {
	s.Filter = text
	s.FilterActive = text != ""
	s.visibleCache = make(map[visibleCacheKey][]VisibleItem)
	s.MarkDirty()
}

// ClearFilter removes any active filter.
func (s *State) ClearFilter() {
	s.SetFilter("")
}

// BeginFilterEntry starts interactive filter text entry ("/").
func (s *State) BeginFilterEntry() {
	s.enteringFilter = true
	s.filterDraft = ""
	s.MarkDirty()
}

// FilterEntryActive reports whether the user is mid-entry of a filter string.
func (s *State) FilterEntryActive() bool { return s.enteringFilter }

// FilterDraft returns the in-progress filter text.
func (s *State) FilterDraft() string { return s.filterDraft }

// AppendFilterRune appends a rune to the in-progress filter entry.
func (s *State) AppendFilterRune(r rune) {
	s.filterDraft += string(r)
	s.MarkDirty()
}

// BackspaceFilterRune removes the last rune of the in-progress filter entry.
func (s *State) BackspaceFilterRune() {
	if s.filterDraft == "" {
		return
	}
	runes := []rune(s.filterDraft)
	s.filterDraft = string(runes[:len(runes)-1])
	s.MarkDirty()
}

// CommitFilterEntry applies the in-progress filter text ("Enter").
func (s *State) CommitFilterEntry() {
	s.enteringFilter = false
	s.SetFilter(s.filterDraft)
	s.filterDraft = ""
}

// CancelFilterEntry implements "Esc" during filter entry: if entering,
// abort entry; otherwise clear any active filter.
func (s *State) CancelFilterEntry() {
	if s.enteringFilter {
		s.enteringFilter = false
		s.filterDraft = ""
		s.MarkDirty()
		return
	}
	s.ClearFilter()
}

// RecordRunResult captures the failed-test set for a project once a run
// completes, for later use by the "a" rerun-failures command.
func (s *State) RecordRunResult(projectFile string, failedFQNs []string) {
	s.lastFailed[projectFile] = failedFQNs
}

// LastFailed returns the FQNs that failed in the most recent completed run
// of a project.
func (s *State) LastFailed(projectFile string) []string {
	return s.lastFailed[projectFile]
}

// lowerFilter returns the active filter lowercased, for substring matching.
func (s *State) lowerFilter() string {
	return strings.ToLower(s.Filter)
}
