package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/haavardr/testament/internal/discovery"
	"github.com/haavardr/testament/internal/execute"
	"github.com/haavardr/testament/internal/model"
	"github.com/haavardr/testament/internal/uistate"
)

// busyPollInterval and idlePollInterval are the dynamic redraw-check
// cadences spec §4.8 calls for: tight while discovery or a run is in
// flight, relaxed otherwise.
const (
	busyPollInterval = 33 * time.Millisecond
	idlePollInterval = 250 * time.Millisecond
)

// loop is the single event-loop goroutine: it owns a.state and a.screen
// and is the only place either is ever mutated or drawn.
func (a *App) loop(ctx context.Context, tevents <-chan tcell.Event, discoveryEvents <-chan discovery.Event) {
	var watchChanges <-chan struct{}
	if a.watcher != nil {
		watchChanges = a.watcher.Changes()
	}

	discoveryDone := discoveryEvents == nil
	ticker := time.NewTicker(idlePollInterval)
	defer ticker.Stop()

	a.render()

	for !a.quit {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-tevents:
			if !ok {
				return
			}
			a.handleTermEvent(ev)

		case ev, ok := <-discoveryEvents:
			if !ok {
				discoveryEvents = nil
				continue
			}
			a.handleDiscoveryEvent(ev)
			if ev.Kind == discovery.EventComplete {
				discoveryDone = true
			}

		case ev, ok := <-a.execEvents:
			if !ok {
				a.execEvents = nil
				a.running = false
				a.runCancel = nil
				a.state.RunInProgress = false
				a.state.MarkDirty()
				continue
			}
			a.handleExecEvent(ev)

		case <-watchChanges:
			if !a.running {
				a.triggerWatchRun()
			}

		case <-ticker.C:
			if a.state.Dirty {
				a.render()
			}
			busy := a.running || !discoveryDone
			if busy {
				ticker.Reset(busyPollInterval)
			} else {
				ticker.Reset(idlePollInterval)
			}
		}
	}
}

// handleTermEvent dispatches a single tcell event: a key press or a
// terminal resize.
func (a *App) handleTermEvent(ev tcell.Event) {
	switch e := ev.(type) {
	case *tcell.EventResize:
		a.screen.Sync()
		a.state.MarkDirty()
	case *tcell.EventKey:
		a.handleKey(e)
	}
}

// handleKey implements the key contracts of spec §4.8.
func (a *App) handleKey(ev *tcell.EventKey) {
	if a.state.FilterEntryActive() {
		a.handleFilterEntryKey(ev)
		return
	}

	switch ev.Key() {
	case tcell.KeyTab:
		a.state.Focus = a.state.Focus.Next()
		a.state.MarkDirty()
		return
	case tcell.KeyBacktab:
		a.state.Focus = a.state.Focus.Prev()
		a.state.MarkDirty()
		return
	case tcell.KeyUp:
		a.moveCursor(-1)
		return
	case tcell.KeyDown:
		a.moveCursor(1)
		return
	case tcell.KeyLeft:
		if a.state.Focus == uistate.PaneTests {
			a.state.JumpClass(-1)
		}
		return
	case tcell.KeyRight:
		if a.state.Focus == uistate.PaneTests {
			a.state.JumpClass(1)
		}
		return
	case tcell.KeyEsc:
		a.state.CancelFilterEntry()
		return
	case tcell.KeyEnter:
		return
	}

	switch ev.Rune() {
	case ' ':
		a.handleSpace()
	case 'c':
		a.state.ToggleAllCollapse(a.state.CurrentProjectPtr())
	case 'C':
		a.state.ClearSelection()
	case 'r':
		a.startRun(a.state.ResolveRunScope())
	case 'R':
		a.startRunAll()
	case 'a':
		a.startRun(a.state.ResolveRerunFailedScope())
	case 'b':
		a.startBuild()
	case 'w':
		a.state.WatchMode = !a.state.WatchMode
		a.state.MarkDirty()
	case 'x':
		a.state.Output.Clear()
		a.state.MarkDirty()
	case '/':
		a.state.BeginFilterEntry()
	case 'q':
		a.quit = true
		a.cancelRun()
	}
}

func (a *App) handleFilterEntryKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEnter:
		a.state.CommitFilterEntry()
	case tcell.KeyEsc:
		a.state.CancelFilterEntry()
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		a.state.BackspaceFilterRune()
	case tcell.KeyRune:
		a.state.AppendFilterRune(ev.Rune())
	}
}

// moveCursor routes an up/down press to whichever pane has focus.
func (a *App) moveCursor(delta int) {
	switch a.state.Focus {
	case uistate.PaneProjects:
		a.state.MoveProjectCursor(delta)
	case uistate.PaneTests:
		a.state.MoveTestCursor(delta)
	default:
		// Output/Details panes have no cursor of their own yet; a future
		// scrollback addition would move a pane-local offset here.
	}
}

// handleSpace implements Space's dual meaning: toggling a class's collapse
// state, or a test's selection flag, depending on what's under the cursor.
func (a *App) handleSpace() {
	if a.state.Focus != uistate.PaneTests {
		return
	}
	p := a.state.CurrentProjectPtr()
	if p == nil {
		return
	}
	items := a.state.VisibleItems()
	if a.state.TestCursor < 0 || a.state.TestCursor >= len(items) {
		return
	}
	item := items[a.state.TestCursor]
	switch item.Kind {
	case uistate.ItemClass:
		class := p.Classes[item.ClassIndex]
		a.state.ToggleCollapse(p.Name, class.FullName)
	case uistate.ItemTest:
		test := p.Classes[item.ClassIndex].Tests[item.TestIndex]
		a.state.ToggleSelection(test)
	}
}

// handleDiscoveryEvent folds one coordinator event into the tree.
func (a *App) handleDiscoveryEvent(ev discovery.Event) {
	switch ev.Kind {
	case discovery.EventProjectDiscovered:
		if ev.Index < 0 || ev.Index >= len(a.state.Projects) {
			return
		}
		p := a.state.Projects[ev.Index]
		p.Classes = ev.Classes
		p.SortClasses()
		p.State = model.Ready
	case discovery.EventProjectError:
		if ev.Index < 0 || ev.Index >= len(a.state.Projects) {
			return
		}
		p := a.state.Projects[ev.Index]
		p.LoadError = ev.Message
		p.State = model.Error
	case discovery.EventComplete:
		a.state.Output.Append("discovery complete", uistate.SourceInternal)
	}
	a.state.MarkDirty()
}

// handleExecEvent folds one executor event into the output buffer, the
// progress status, and (on completion) the tree via recordCompletion.
func (a *App) handleExecEvent(ev execute.Event) {
	switch ev.Kind {
	case execute.EventBuildLine, execute.EventTestOutputLine:
		a.state.Output.Append(ev.Line, uistate.SourceStdout)
	case execute.EventProgress:
		a.state.Output.Append(
			fmt.Sprintf("progress: %d passed, %d failed, %d total", ev.Progress.Passed, ev.Progress.Failed, ev.Progress.Total),
			uistate.SourceInternal,
		)
	case execute.EventCompleted:
		if a.runIsBuild {
			a.state.Output.Append("build succeeded", uistate.SourceInternal)
		} else {
			a.recordCompletion(a.runningProject, ev.Results)
		}
		a.running = false
		a.state.RunInProgress = false
	case execute.EventFailed:
		if a.runIsBuild {
			a.state.Output.Append("build failed: "+ev.Reason, uistate.SourceError)
			a.clearProjectRunningTests(a.runningProject)
		} else {
			a.state.Output.Append("run failed: "+ev.Reason, uistate.SourceError)
			a.clearProjectRunningTests(a.runningProject)
		}
		a.running = false
		a.state.RunInProgress = false
	}
	a.state.MarkDirty()
}

// cancelRun kills any in-flight child process on quit.
func (a *App) cancelRun() {
	if a.runCancel != nil {
		a.runCancel()
	}
}
