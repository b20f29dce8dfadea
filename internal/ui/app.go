// Package ui is the single-threaded event loop: it owns the terminal
// screen and the interactive state, and is the only goroutine that ever
// mutates either. Discovery, execution, and file-watching run on helper
// goroutines and communicate only by sending on bounded channels.
package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/haavardr/testament/internal/config"
	"github.com/haavardr/testament/internal/discovery"
	"github.com/haavardr/testament/internal/execute"
	"github.com/haavardr/testament/internal/history"
	"github.com/haavardr/testament/internal/match"
	"github.com/haavardr/testament/internal/model"
	"github.com/haavardr/testament/internal/uistate"
	"github.com/haavardr/testament/internal/watchfiles"
)

// discoveryChanCap and execChanCap are the bounded channel capacities
// mandated for the discovery and executor producers: discovery events are
// infrequent and small, executor output can burst, so it gets a much
// larger buffer to absorb that without blocking the child process.
const (
	discoveryChanCap = 16
	execChanCap      = 256
)

// App wires the discovered project tree, interactive state, and the
// external helpers (discovery, execution, file watching, run history)
// into one running session.
type App struct {
	screen tcell.Screen
	state  *uistate.State
	cfg    *config.Config

	workspaceRoot string
	projectDirs   []string // parallel to state.Projects
	history       *history.DB
	reportDir     string // "" disables per-project console-output report files

	watcher *watchfiles.Watcher

	execEvents     chan execute.Event
	runCancel      context.CancelFunc
	running        bool
	runningProject string
	runIsBuild     bool
	lastRunScope   []string // FQNs, for watch-mode rerun

	quit bool
}

// New builds an App over the project set resolved by the workspace
// locator. projectDirs is parallel to the project slice backing
// state.Projects.
func New(cfg *config.Config, workspaceRoot string, projects *uistate.State, projectDirs []string, historyDB *history.DB, reportDir string) *App {
	return &App{
		state:         projects,
		cfg:           cfg,
		workspaceRoot: workspaceRoot,
		projectDirs:   projectDirs,
		history:       historyDB,
		reportDir:     reportDir,
	}
}

// Run initializes the terminal screen, starts discovery, and runs the
// event loop until the user quits or ctx is cancelled. It always leaves
// the terminal in its original state before returning, even on error.
func (a *App) Run(ctx context.Context) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("initializing screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("initializing screen: %w", err)
	}
	a.screen = screen
	defer screen.Fini()

	screen.SetStyle(tcell.StyleDefault)
	screen.EnableMouse()
	screen.Clear()

	tevents := make(chan tcell.Event, 16)
	tquit := make(chan struct{})
	go screen.ChannelEvents(tevents, tquit)
	defer close(tquit)

	discoveryEvents := make(chan discovery.Event, discoveryChanCap)
	var projectFiles []string
	for _, p := range a.state.Projects {
		projectFiles = append(projectFiles, p.ProjectFile)
	}
	go discovery.Run(ctx, a.cfg.ExternalCLI, projectFiles, a.projectDirs, discoveryEvents)

	if a.cfg.Watch.DebounceMs > 0 {
		debounce := time.Duration(a.cfg.Watch.DebounceMs) * time.Millisecond
		if w, err := watchfiles.New(a.workspaceRoot, debounce); err == nil {
			a.watcher = w
			defer w.Close()
		}
	}

	a.loop(ctx, tevents, discoveryEvents)
	return nil
}

// projectIndexFor returns the index of the project with the given file
// path, or -1.
func (a *App) projectIndexFor(projectFile string) int {
	for i, p := range a.state.Projects {
		if p.ProjectFile == projectFile {
			return i
		}
	}
	return -1
}

// recordCompletion folds a finished run's results into the tree, history
// store, and the "rerun failed" tracking.
func (a *App) recordCompletion(projectFile string, results []*match.Outcome) {
	idx := a.projectIndexFor(projectFile)
	if idx < 0 {
		return
	}
	p := a.state.Projects[idx]

	match.Apply(p.AllTests(), results)

	var failed []string
	for _, t := range p.AllTests() {
		if t.Status == model.Failed {
			failed = append(failed, t.FullyQualifiedName)
		}
	}
	a.state.RecordRunResult(projectFile, failed)

	if a.history != nil {
		a.history.Save(projectFile, history.Entry{
			LastRun:     time.Now().Unix(),
			AllPassed:   len(failed) == 0,
			FailedTests: failed,
		})
	}
	a.state.MarkDirty()
}

// clearProjectRunningTests marks every still-Running test in a project as
// Skipped with reason "no result", per spec §8's boundary case for a run
// that fails outright before producing a results file.
func (a *App) clearProjectRunningTests(projectFile string) {
	idx := a.projectIndexFor(projectFile)
	if idx < 0 {
		return
	}
	for _, t := range a.state.Projects[idx].AllTests() {
		if t.Status == model.Running {
			t.Status = model.Skipped
			t.ErrorMessage = "no result"
		}
	}
}
