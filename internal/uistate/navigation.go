package uistate

// MoveTestCursor moves the Tests-pane cursor by delta, clamped to the
// visible-item list bounds.
func (s *State) MoveTestCursor(delta int) {
	items := s.VisibleItems()
	if len(items) == 0 {
		s.TestCursor = 0
		return
	}
	s.TestCursor += delta
	if s.TestCursor < 0 {
		s.TestCursor = 0
	}
	if s.TestCursor >= len(items) {
		s.TestCursor = len(items) - 1
	}
	s.MarkDirty()
}

// MoveProjectCursor moves the Projects-pane cursor by delta, clamped to
// the project list bounds, and switches the active project.
func (s *State) MoveProjectCursor(delta int) {
	if len(s.Projects) == 0 {
		return
	}
	s.ProjectCursor += delta
	if s.ProjectCursor < 0 {
		s.ProjectCursor = 0
	}
	if s.ProjectCursor >= len(s.Projects) {
		s.ProjectCursor = len(s.Projects) - 1
	}
	s.CurrentProject = s.ProjectCursor
	s.TestCursor = 0
	s.MarkDirty()
}

// JumpClass moves the Tests-pane cursor to the previous (-1) or next (+1)
// class header, wrapping around the ends of the list.
func (s *State) JumpClass(direction int) {
	items := s.VisibleItems()
	var headers []int
	for i, item := range items {
		if item.Kind == ItemClass {
			headers = append(headers, i)
		}
	}
	if len(headers) == 0 {
		return
	}

	// currentHeader is the last header row at or before the cursor.
	currentHeader := 0
	for i, h := range headers {
		if h <= s.TestCursor {
			currentHeader = i
		} else {
			break
		}
	}

	next := (currentHeader + direction) % len(headers)
	if next < 0 {
		next += len(headers)
	}

	s.TestCursor = headers[next]
	s.MarkDirty()
}
