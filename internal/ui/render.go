package ui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/haavardr/testament/internal/execute"
	"github.com/haavardr/testament/internal/model"
	"github.com/haavardr/testament/internal/termio"
	"github.com/haavardr/testament/internal/uistate"
)

var (
	styleDefault  = tcell.StyleDefault
	styleBorder   = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleFocus    = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	styleCursor   = tcell.StyleDefault.Reverse(true)
	stylePassed   = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleFailed   = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleRunning  = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleSkipped  = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleStatus   = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorSilver)
	styleError    = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleInternal = tcell.StyleDefault.Foreground(tcell.ColorTeal)
)

// rect is an axis-aligned screen region, end-exclusive.
type rect struct{ x0, y0, x1, y1 int }

func (r rect) width() int  { return r.x1 - r.x0 }
func (r rect) height() int { return r.y1 - r.y0 }

// render draws the four-pane layout plus status bar and clears the dirty
// flag. It is the only place the screen is painted.
func (a *App) render() {
	a.screen.Clear()
	w, h := a.screen.Size()
	if w < 10 || h < 5 {
		a.screen.Show()
		a.state.Dirty = false
		return
	}

	statusRow := h - 1
	body := rect{0, 0, w, statusRow}

	projectsW := body.width() / 4
	if projectsW < 16 {
		projectsW = 16
	}
	remaining := body.width() - projectsW
	testsW := remaining * 2 / 3

	projectsRect := rect{body.x0, body.y0, body.x0 + projectsW, body.y1}
	testsRect := rect{projectsRect.x1, body.y0, projectsRect.x1 + testsW, body.y1}
	rightRect := rect{testsRect.x1, body.y0, body.x1, body.y1}
	outputRect := rect{rightRect.x0, rightRect.y0, rightRect.x1, rightRect.y0 + rightRect.height()/2}
	detailsRect := rect{rightRect.x0, outputRect.y1, rightRect.x1, rightRect.y1}

	a.drawProjectsPane(projectsRect)
	a.drawTestsPane(testsRect)
	a.drawOutputPane(outputRect)
	a.drawDetailsPane(detailsRect)
	a.drawStatusBar(statusRow, w)

	a.screen.Show()
	a.state.Dirty = false
}

func (a *App) drawBorder(r rect, title string, focused bool) rect {
	style := styleBorder
	if focused {
		style = styleFocus
	}
	for x := r.x0; x < r.x1; x++ {
		a.screen.SetContent(x, r.y0, tcell.RuneHLine, nil, style)
	}
	drawText(a.screen, r.x0+1, r.y0, " "+title+" ", style)
	return rect{r.x0, r.y0 + 1, r.x1, r.y1}
}

func drawText(s tcell.Screen, x, y int, text string, style tcell.Style) {
	for i, r := range []rune(text) {
		s.SetContent(x+i, y, r, nil, style)
	}
}

func statusStyle(st model.Status) tcell.Style {
	switch st {
	case model.Passed:
		return stylePassed
	case model.Failed:
		return styleFailed
	case model.Running:
		return styleRunning
	case model.Skipped:
		return styleSkipped
	default:
		return styleDefault
	}
}

func statusGlyph(st model.Status) string {
	switch st {
	case model.Passed:
		return "✓"
	case model.Failed:
		return "✗"
	case model.Running:
		return "…"
	case model.Skipped:
		return "○"
	default:
		return "·"
	}
}

func (a *App) drawProjectsPane(r rect) {
	focused := a.state.Focus == uistate.PaneProjects
	content := a.drawBorder(r, fmt.Sprintf("Projects (%d)", len(a.state.Projects)), focused)

	for i, p := range a.state.Projects {
		y := content.y0 + i
		if y >= content.y1 {
			break
		}
		style := styleDefault
		if focused && i == a.state.ProjectCursor {
			style = styleCursor
		}

		label := p.Name
		switch p.State {
		case model.Pending:
			label = "⋯ " + label
		case model.Discovering:
			label = "… " + label
		case model.Error:
			label = "! " + label
		default:
			agg := aggregateProject(p)
			label = statusGlyph(agg) + " " + label
		}
		drawText(a.screen, content.x0, y, padTrunc(label, content.width()), style)
	}
}

// aggregateProject rolls every class's aggregate status up to one
// project-level glyph, using the same precedence rule as a class does
// over its tests.
func aggregateProject(p *model.TestProject) model.Status {
	var anyFailed, anyRunning, anyPassed, allSkipped bool
	allSkipped = len(p.Classes) > 0
	for _, c := range p.Classes {
		switch c.AggregateStatus() {
		case model.Failed:
			anyFailed = true
		case model.Running:
			anyRunning = true
		case model.Passed:
			anyPassed = true
		}
		if c.AggregateStatus() != model.Skipped {
			allSkipped = false
		}
	}
	switch {
	case anyFailed:
		return model.Failed
	case anyRunning:
		return model.Running
	case anyPassed:
		return model.Passed
	case allSkipped:
		return model.Skipped
	default:
		return model.NotRun
	}
}

func (a *App) drawTestsPane(r rect) {
	focused := a.state.Focus == uistate.PaneTests
	p := a.state.CurrentProjectPtr()
	title := "Tests"
	if p != nil {
		title = fmt.Sprintf("Tests — %s", p.Name)
	}
	if a.state.FilterActive {
		title += fmt.Sprintf(" [filter: %s]", a.state.Filter)
	}
	content := a.drawBorder(r, title, focused)
	if p == nil {
		return
	}

	items := a.state.VisibleItems()
	for i, item := range items {
		y := content.y0 + i
		if y >= content.y1 {
			break
		}

		style := styleDefault
		indent := strings.Repeat("  ", item.Depth)
		var label string
		var aggStatus model.Status

		switch item.Kind {
		case uistate.ItemClass:
			class := p.Classes[item.ClassIndex]
			collapseMark := "▾"
			if a.state.IsCollapsed(p.Name, class.FullName) {
				collapseMark = "▸"
			}
			aggStatus = class.AggregateStatus()
			label = fmt.Sprintf("%s%s %s %s (%d)", indent, collapseMark, statusGlyph(aggStatus), class.FullName, len(class.Tests))
		case uistate.ItemTest:
			test := p.Classes[item.ClassIndex].Tests[item.TestIndex]
			aggStatus = test.Status
			mark := " "
			if test.Selected {
				mark = "*"
			}
			label = fmt.Sprintf("%s%s%s %s", indent, mark, statusGlyph(aggStatus), test.DisplayName)
		}

		style = statusStyle(aggStatus)
		if focused && i == a.state.TestCursor {
			style = styleCursor
		}
		drawText(a.screen, content.x0, y, padTrunc(label, content.width()), style)
	}
}

func (a *App) drawOutputPane(r rect) {
	focused := a.state.Focus == uistate.PaneOutput
	content := a.drawBorder(r, fmt.Sprintf("Output (%d)", a.state.Output.Len()), focused)

	lines := a.state.Output.Lines()
	h := content.height()
	start := 0
	if len(lines) > h {
		start = len(lines) - h
	}
	for i, line := range lines[start:] {
		y := content.y0 + i
		if y >= content.y1 {
			break
		}
		style := styleDefault
		switch line.Source {
		case uistate.SourceError:
			style = styleError
		case uistate.SourceInternal:
			style = styleInternal
		}
		drawText(a.screen, content.x0, y, padTrunc(line.Text, content.width()), style)
	}
}

func (a *App) drawDetailsPane(r rect) {
	focused := a.state.Focus == uistate.PaneDetails
	content := a.drawBorder(r, "Details", focused)

	p := a.state.CurrentProjectPtr()
	if p == nil {
		return
	}
	items := a.state.VisibleItems()
	if a.state.TestCursor < 0 || a.state.TestCursor >= len(items) {
		return
	}
	item := items[a.state.TestCursor]
	if item.Kind != uistate.ItemTest {
		return
	}
	test := p.Classes[item.ClassIndex].Tests[item.TestIndex]

	y := content.y0
	drawText(a.screen, content.x0, y, padTrunc(test.FullyQualifiedName, content.width()), styleDefault)
	y++
	drawText(a.screen, content.x0, y, fmt.Sprintf("status: %s  duration: %dms", test.Status, test.DurationMS), styleDefault)
	y++

	if test.DocSummary != "" && y < content.y1 {
		drawText(a.screen, content.x0, y, padTrunc(test.DocSummary, content.width()), styleSkipped)
		y++
	}
	y++

	if test.Status != model.Failed {
		return
	}
	for _, line := range strings.Split(test.ErrorMessage, "\n") {
		if y >= content.y1 {
			return
		}
		drawText(a.screen, content.x0, y, padTrunc(line, content.width()), styleError)
		y++
	}
	y++
	for _, line := range strings.Split(test.StackTrace, "\n") {
		if y >= content.y1 {
			return
		}
		drawText(a.screen, content.x0, y, padTrunc(line, content.width()), styleSkipped)
		y++
	}
}

func (a *App) drawStatusBar(row, width int) {
	var b strings.Builder
	if a.state.FilterEntryActive() {
		b.WriteString("/" + a.state.FilterDraft())
	} else {
		if a.state.WatchMode {
			b.WriteString("[watch] ")
		}
		if a.running {
			b.WriteString("[running] ")
		}
		b.WriteString("Tab: pane  Space: toggle  r: run  R: run all  a: rerun failed  b: build  w: watch  /: filter  q: quit")
		if hint := a.rerunHint(); hint != "" {
			b.WriteString("  |  " + hint)
		}
	}
	drawText(a.screen, 0, row, padTrunc(b.String(), width), styleStatus)
}

// rerunHint builds the shell-quoted "testament run --filter ..." invocation
// that would reproduce the current project's most recent failures outside
// the TUI, or "" if nothing has failed yet.
func (a *App) rerunHint() string {
	p := a.state.CurrentProjectPtr()
	if p == nil {
		return ""
	}
	failed := a.state.LastFailed(p.ProjectFile)
	if len(failed) == 0 {
		return ""
	}
	filter := execute.BuildFilter(failed)
	if filter == "" {
		return ""
	}
	return "rerun: testament run --filter " + termio.ShellQuoteArgs([]string{filter})
}

func padTrunc(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) > width {
		return string(runes[:width])
	}
	return s + strings.Repeat(" ", width-len(runes))
}
