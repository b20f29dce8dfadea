package uistate

import (
	"testing"

	"github.com/haavardr/testament/internal/model"
)

func TestResolveRunScope_SelectionTakesPrecedence(t *testing.T) {
	p := buildProject()
	s := New([]*model.TestProject{p})

	target := p.Classes[1].Tests[0]
	s.ToggleSelection(target)
	s.SetFilter("first") // would otherwise select ATests.First

	scope := s.ResolveRunScope()
	if len(scope) != 1 || scope[0] != target {
		t.Fatalf("expected selection to win, got %+v", scope)
	}
}

func TestResolveRunScope_FilterWhenNoSelection(t *testing.T) {
	p := buildProject()
	s := New([]*model.TestProject{p})
	s.SetFilter("third")

	scope := s.ResolveRunScope()
	if len(scope) != 1 || scope[0].DisplayName != "Third" {
		t.Fatalf("expected only Third in scope, got %+v", scope)
	}
}

func TestResolveRunScope_CursorOnClassRunsWholeClass(t *testing.T) {
	p := buildProject()
	s := New([]*model.TestProject{p})
	s.TestCursor = 0 // ATests header

	scope := s.ResolveRunScope()
	if len(scope) != 2 {
		t.Fatalf("expected 2 tests from ATests, got %+v", scope)
	}
}

func TestResolveRunScope_DefaultsToWholeProject(t *testing.T) {
	p := buildProject()
	s := New([]*model.TestProject{p})
	s.TestCursor = -1 // no valid cursor item

	scope := s.ResolveRunScope()
	if len(scope) != 3 {
		t.Fatalf("expected all 3 tests, got %+v", scope)
	}
}

func TestResolveRerunFailedScope_MatchesByDisplaySuffix(t *testing.T) {
	p := buildProject()
	s := New([]*model.TestProject{p})
	s.RecordRunResult(p.ProjectFile, []string{"N.ATests.First"})

	scope := s.ResolveRerunFailedScope()
	if len(scope) != 1 || scope[0].DisplayName != "First" {
		t.Fatalf("expected First in scope, got %+v", scope)
	}
}
