package uistate

import "github.com/haavardr/testament/internal/model"

// ItemKind distinguishes a class header row from a test row in the
// flattened Tests-pane list.
type ItemKind int

const (
	ItemClass ItemKind = iota
	ItemTest
)

// VisibleItem is one row of the Tests pane's flattened, filtered,
// collapse-respecting list.
type VisibleItem struct {
	Kind       ItemKind
	Depth      int // 0 for class headers, 1 for tests
	ClassIndex int
	TestIndex  int // meaningful only when Kind == ItemTest
}

type visibleCacheKey struct {
	projectIndex int
	generation   int
	filterText   string
}

// VisibleItems returns the current project's flattened, filter- and
// collapse-aware item list, serving it from a cache keyed by
// (project_index, collapse_generation, filter_text) so that repeated
// redraws between state changes don't re-walk the tree or re-hash
// anything.
func (s *State) VisibleItems() []VisibleItem {
	p := s.CurrentProjectPtr()
	if p == nil {
		return nil
	}
	key := visibleCacheKey{
		projectIndex: s.CurrentProject,
		generation:   s.collapseGeneration,
		filterText:   s.Filter,
	}
	if cached, ok := s.visibleCache[key]; ok {
		return cached
	}

	items := buildVisibleItems(p, s)
	s.visibleCache[key] = items
	return items
}

func buildVisibleItems(p *model.TestProject, s *State) []VisibleItem {
	var items []VisibleItem
	lowerFilter := s.lowerFilter()

	for ci, c := range p.Classes {
		matchingTests := classMatches(c, lowerFilter)
		if len(matchingTests) == 0 {
			continue
		}
		items = append(items, VisibleItem{Kind: ItemClass, Depth: 0, ClassIndex: ci})

		if s.IsCollapsed(p.Name, c.FullName) {
			continue
		}
		for _, ti := range matchingTests {
			items = append(items, VisibleItem{Kind: ItemTest, Depth: 1, ClassIndex: ci, TestIndex: ti})
		}
	}
	return items
}

// classMatches returns the indices of a class's tests that pass the active
// filter. A class with zero matches is hidden entirely, per filter
// semantics.
func classMatches(c *model.TestClass, lowerFilter string) []int {
	if lowerFilter == "" {
		out := make([]int, len(c.Tests))
		for i := range c.Tests {
			out[i] = i
		}
		return out
	}
	var out []int
	for i, t := range c.Tests {
		if t.MatchesFilter(lowerFilter) {
			out = append(out, i)
		}
	}
	return out
}
