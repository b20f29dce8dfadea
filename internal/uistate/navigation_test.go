package uistate

import (
	"testing"

	"github.com/haavardr/testament/internal/model"
)

func TestMoveTestCursor_ClampsToBounds(t *testing.T) {
	p := buildProject()
	s := New([]*model.TestProject{p})

	s.MoveTestCursor(-5)
	if s.TestCursor != 0 {
		t.Fatalf("expected clamp to 0, got %d", s.TestCursor)
	}

	items := s.VisibleItems()
	s.MoveTestCursor(len(items) + 10)
	if s.TestCursor != len(items)-1 {
		t.Fatalf("expected clamp to %d, got %d", len(items)-1, s.TestCursor)
	}
}

func TestMoveProjectCursor_SwitchesCurrentProject(t *testing.T) {
	p1 := buildProject()
	p2 := model.NewTestProject("Bar.Tests", "/proj2/Bar.Tests.csproj", "/proj2")
	s := New([]*model.TestProject{p1, p2})

	s.MoveProjectCursor(1)
	if s.CurrentProject != 1 {
		t.Fatalf("expected current project 1, got %d", s.CurrentProject)
	}
	if s.CurrentProjectPtr() != p2 {
		t.Fatalf("expected p2, got %+v", s.CurrentProjectPtr())
	}

	s.MoveProjectCursor(10)
	if s.CurrentProject != 1 {
		t.Fatalf("expected clamp to 1, got %d", s.CurrentProject)
	}
}

func TestJumpClass_WrapsAround(t *testing.T) {
	p := buildProject() // classes: ATests (2 tests), BTests (1 test)
	s := New([]*model.TestProject{p})

	// Cursor starts at the first row, the ATests header.
	s.JumpClass(1)
	items := s.VisibleItems()
	if items[s.TestCursor].Kind != ItemClass || items[s.TestCursor].ClassIndex != 1 {
		t.Fatalf("expected cursor on BTests header, got %+v", items[s.TestCursor])
	}

	s.JumpClass(1)
	if items[s.TestCursor].ClassIndex != 0 {
		t.Fatalf("expected wraparound to ATests header, got %+v", items[s.TestCursor])
	}

	s.JumpClass(-1)
	if items[s.TestCursor].ClassIndex != 1 {
		t.Fatalf("expected wraparound back to BTests header, got %+v", items[s.TestCursor])
	}
}
