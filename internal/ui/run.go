package ui

import (
	"context"
	"path/filepath"

	"github.com/haavardr/testament/internal/execute"
	"github.com/haavardr/testament/internal/model"
	"github.com/haavardr/testament/internal/uistate"
)

// startRun executes an explicit set of tests, used by "r" (scoped by
// uistate.ResolveRunScope's precedence) and "a" (rerun failures). A
// watch-triggered run reuses the most recent scope via triggerWatchRun
// instead of this entry point directly.
func (a *App) startRun(scope []*model.Test) {
	if a.running || len(scope) == 0 {
		return
	}
	p := a.state.CurrentProjectPtr()
	if p == nil {
		return
	}

	names := make([]string, len(scope))
	for i, t := range scope {
		names[i] = t.FullyQualifiedName
	}

	uistate.MarkScopeRunning(scope)
	a.lastRunScope = names
	a.beginRun(p, execute.RunRequest{
		ProjectFile:   p.ProjectFile,
		ProjectDir:    p.Dir,
		Mode:          execute.ModeExplicitNames,
		ExplicitNames: names,
		Configuration: a.cfg.Run.Configuration,
	})
}

// startRunAll implements "R": every test in the project, ignoring
// selection and filter, run unfiltered rather than via an explicit-name
// filter expression.
func (a *App) startRunAll() {
	if a.running {
		return
	}
	p := a.state.CurrentProjectPtr()
	if p == nil {
		return
	}
	scope := a.state.ResolveRunAllScope()
	if len(scope) == 0 {
		return
	}
	uistate.MarkScopeRunning(scope)
	a.lastRunScope = nil
	a.beginRun(p, execute.RunRequest{
		ProjectFile:   p.ProjectFile,
		ProjectDir:    p.Dir,
		Mode:          execute.ModeAll,
		Configuration: a.cfg.Run.Configuration,
	})
}

// startBuild implements "b": a build-only invocation whose output only
// surfaces in the Output pane on failure.
func (a *App) startBuild() {
	if a.running {
		return
	}
	p := a.state.CurrentProjectPtr()
	if p == nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.runCancel = cancel
	a.running = true
	a.runningProject = p.ProjectFile
	a.runIsBuild = true
	a.state.RunInProgress = true
	a.state.Output.Append("building "+p.Name+"...", uistate.SourceInternal)
	a.state.MarkDirty()

	events := make(chan execute.Event, execChanCap)
	a.execEvents = events
	go execute.RunBuild(ctx, a.cfg.ExternalCLI, p.ProjectFile, p.Dir, events)
}

// triggerWatchRun implements the watch-mode run trigger: reuse the most
// recent filter/selection scope, or fall back to the whole project if none
// was ever run. It is a no-op if a run is already in progress.
func (a *App) triggerWatchRun() {
	if !a.state.WatchMode || a.running {
		return
	}
	p := a.state.CurrentProjectPtr()
	if p == nil {
		return
	}

	if len(a.lastRunScope) == 0 {
		a.startRunAll()
		return
	}

	byFQN := make(map[string]*model.Test, len(p.AllTests()))
	for _, t := range p.AllTests() {
		byFQN[t.FullyQualifiedName] = t
	}
	var scope []*model.Test
	for _, fqn := range a.lastRunScope {
		if t, ok := byFQN[fqn]; ok {
			scope = append(scope, t)
		}
	}
	if len(scope) == 0 {
		a.startRunAll()
		return
	}

	uistate.MarkScopeRunning(scope)
	a.beginRun(p, execute.RunRequest{
		ProjectFile:   p.ProjectFile,
		ProjectDir:    p.Dir,
		Mode:          execute.ModeExplicitNames,
		ExplicitNames: a.lastRunScope,
		Configuration: a.cfg.Run.Configuration,
	})
}

// beginRun spawns the executor on a helper goroutine and wires its events
// onto the App's channel, shared by every run-triggering key and the
// watcher.
func (a *App) beginRun(p *model.TestProject, req execute.RunRequest) {
	if a.reportDir != "" {
		req.ReportPath = filepath.Join(a.reportDir, p.Name+".log")
	}
	if req.CLI == "" {
		req.CLI = a.cfg.ExternalCLI
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.runCancel = cancel
	a.running = true
	a.runningProject = p.ProjectFile
	a.runIsBuild = false
	a.state.RunInProgress = true
	a.state.Output.Append("running "+p.Name+"...", uistate.SourceInternal)
	a.state.MarkDirty()

	events := make(chan execute.Event, execChanCap)
	a.execEvents = events
	go execute.Run(ctx, req, events)
}
