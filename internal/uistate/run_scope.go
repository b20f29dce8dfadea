package uistate

import "github.com/haavardr/testament/internal/model"

// ResolveRunScope implements the "r" key's scope-selection precedence:
// selection, else active filter, else cursor-on-test, else cursor-on-class,
// else the whole project.
func (s *State) ResolveRunScope() []*model.Test {
	p := s.CurrentProjectPtr()
	if p == nil {
		return nil
	}

	if len(s.Selection) > 0 {
		var out []*model.Test
		for _, t := range p.AllTests() {
			if s.Selection[t.FullyQualifiedName] {
				out = append(out, t)
			}
		}
		return out
	}

	if s.FilterActive {
		var out []*model.Test
		for _, item := range s.VisibleItems() {
			if item.Kind == ItemTest {
				out = append(out, p.Classes[item.ClassIndex].Tests[item.TestIndex])
			}
		}
		return out
	}

	if item, ok := s.cursorItem(); ok {
		switch item.Kind {
		case ItemTest:
			return []*model.Test{p.Classes[item.ClassIndex].Tests[item.TestIndex]}
		case ItemClass:
			return append([]*model.Test(nil), p.Classes[item.ClassIndex].Tests...)
		}
	}

	return p.AllTests()
}

// ResolveRunAllScope implements "R": every test in the current project,
// ignoring selection and filter.
func (s *State) ResolveRunAllScope() []*model.Test {
	p := s.CurrentProjectPtr()
	if p == nil {
		return nil
	}
	return p.AllTests()
}

// ResolveRerunFailedScope implements "a": the tests whose display name
// matches a name that failed in the project's most recently completed run.
func (s *State) ResolveRerunFailedScope() []*model.Test {
	p := s.CurrentProjectPtr()
	if p == nil {
		return nil
	}
	failed := s.LastFailed(p.ProjectFile)
	if len(failed) == 0 {
		return nil
	}
	suffixes := make(map[string]bool, len(failed))
	for _, f := range failed {
		suffixes[displaySuffix(f)] = true
	}

	var out []*model.Test
	for _, t := range p.AllTests() {
		if suffixes[t.DisplayName] {
			out = append(out, t)
		}
	}
	return out
}

func displaySuffix(fqn string) string {
	for i := len(fqn) - 1; i >= 0; i-- {
		if fqn[i] == '.' {
			return fqn[i+1:]
		}
	}
	return fqn
}

// cursorItem returns the Tests-pane item currently under the cursor, if
// any.
func (s *State) cursorItem() (VisibleItem, bool) {
	items := s.VisibleItems()
	if s.TestCursor < 0 || s.TestCursor >= len(items) {
		return VisibleItem{}, false
	}
	return items[s.TestCursor], true
}

// MarkScopeRunning transitions every test in scope to Running, as required
// before a run starts.
func MarkScopeRunning(scope []*model.Test) {
	for _, t := range scope {
		t.Status = model.Running
	}
}
