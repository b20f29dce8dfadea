package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/haavardr/testament/internal/execute"
	"github.com/haavardr/testament/internal/history"
	"github.com/haavardr/testament/internal/match"
	"github.com/haavardr/testament/internal/model"
	"github.com/haavardr/testament/internal/prreview"
	"github.com/haavardr/testament/internal/termio"
	"github.com/haavardr/testament/internal/ui"
	"github.com/haavardr/testament/internal/uistate"
)

var (
	prFlagAPI           string
	prFlagNoTUI         bool
	prFlagConfiguration string
)

var prCmd = &cobra.Command{
	Use:   "pr <ref-or-url>",
	Short: "Run only the tests a pull request (or local ref) touched",
	Long: `Scope a run to whatever tests a pull request's diff changed.

With --pr-api configured, ref is treated as a PR URL or number fetched
from a hosted code-review API. Without it, ref is a local git ref (e.g.
"main") diffed against HEAD.

Examples:
  testament pr main                      Diff the working branch against main
  testament pr 482 --pr-api https://api.example.com/repos/org/repo/pulls
  testament pr main --no-tui             Print results instead of opening the UI`,
	Args: cobra.ExactArgs(1),
	RunE: runPR,
}

func init() {
	prCmd.Flags().StringVar(&prFlagAPI, "pr-api", "", "Hosted code-review API base URL (overrides config)")
	prCmd.Flags().BoolVar(&prFlagNoTUI, "no-tui", false, "Print the resolved test list instead of opening the UI")
	prCmd.Flags().StringVarP(&prFlagConfiguration, "configuration", "c", "", "Build configuration (e.g. Debug, Release)")
	rootCmd.AddCommand(prCmd)
}

func runPR(cmd *cobra.Command, args []string) error {
	ref := args[0]
	apiBaseURL := prFlagAPI
	if apiBaseURL == "" {
		apiBaseURL = cfg.PR.APIBaseURL
	}
	noTUI := prFlagNoTUI || cfg.PR.NoTUI

	term := termio.New()
	term.SetVerbose(cfg.Verbose)
	term.SetQuiet(cfg.Quiet)

	result, projects, dirs, err := resolveProjects(".")
	if err != nil {
		return err
	}
	workspaceRoot := workspaceRootOf(result, ".")

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	term.Info("discovering tests across %d project(s)...", len(projects))
	if err := discoverAll(ctx, cfg.ExternalCLI, projects, dirs); err != nil {
		return err
	}

	review, err := prreview.Review(ctx, apiBaseURL, workspaceRoot, ref, projects)
	if err != nil {
		return fmt.Errorf("reviewing %s: %w", ref, err)
	}
	term.Info("%s", review.Summary())

	if len(review.Tests) == 0 {
		return nil
	}

	narrowed, cancelled := promptNarrowTests(term, review.Tests)
	if cancelled {
		term.Info("cancelled")
		return nil
	}
	review.Tests = narrowed

	if _, err := prreview.SaveLastReview(ref, namesOf(review.Tests)); err != nil {
		term.Warn("could not persist review: %v", err)
	}

	if noTUI {
		return runPRHeadless(ctx, term, review, dirs, projects)
	}

	return runPRInteractive(review, projects, dirs)
}

// promptNarrowTests offers an interactive, live-filtered narrowing of the
// reviewed test set before it's run, via termio's raw-mode KeyReader —
// Enter accepts the current match set (typing nothing runs every reviewed
// test), Escape or Ctrl-C cancels the whole pr invocation. On a non-TTY
// stdin (CI, pipes) NewKeyReader returns nil and every reviewed test runs
// unprompted.
func promptNarrowTests(term *termio.Terminal, tests []*model.Test) (matched []*model.Test, cancelled bool) {
	kr := termio.NewKeyReader(term)
	if kr == nil {
		return tests, false
	}
	defer kr.Close()

	matched = tests
	prompt := fmt.Sprintf("filter %d reviewed test(s), Enter to run all: ", len(tests))
	_, ok := kr.ReadLineFiltered(prompt, func(input string) int {
		matched = filterTestsByName(tests, input)
		term.Dim("%d test(s) match", len(matched))
		return 1
	})
	if !ok {
		return nil, true
	}
	return matched, false
}

// filterTestsByName narrows tests to those whose display name contains
// substr, case-insensitively; an empty substr matches every test.
func filterTestsByName(tests []*model.Test, substr string) []*model.Test {
	if substr == "" {
		return tests
	}
	lower := strings.ToLower(substr)
	var out []*model.Test
	for _, t := range tests {
		if strings.Contains(strings.ToLower(t.DisplayName), lower) {
			out = append(out, t)
		}
	}
	return out
}

// runPRHeadless runs the resolved tests per-project and prints a summary,
// the same shape "testament run" uses, scoped to the PR's changed tests
// instead of the whole project.
func runPRHeadless(ctx context.Context, term *termio.Terminal, review *prreview.Result, dirs []string, projects []*model.TestProject) error {
	totalFailed := 0
	for i, p := range projects {
		inProject := make(map[string]bool, len(p.AllTests()))
		for _, t := range p.AllTests() {
			inProject[t.FullyQualifiedName] = true
		}

		var scope []*model.Test
		for _, t := range review.Tests {
			if inProject[t.FullyQualifiedName] {
				scope = append(scope, t)
			}
		}
		if len(scope) == 0 {
			continue
		}

		names := make([]string, len(scope))
		for j, t := range scope {
			names[j] = t.FullyQualifiedName
		}

		configuration := prFlagConfiguration
		if configuration == "" {
			configuration = cfg.Run.Configuration
		}

		events := make(chan execute.Event, 256)
		go execute.Run(ctx, execute.RunRequest{
			ProjectFile:   p.ProjectFile,
			ProjectDir:    dirs[i],
			Mode:          execute.ModeExplicitNames,
			ExplicitNames: names,
			Configuration: configuration,
			CLI:           cfg.ExternalCLI,
		}, events)

		var results []*match.Outcome
		var runErr error
		for ev := range events {
			switch ev.Kind {
			case execute.EventCompleted:
				results = ev.Results
			case execute.EventFailed:
				runErr = fmt.Errorf("%s", ev.Reason)
			}
		}
		if runErr != nil {
			term.Error("%s: %v", p.Name, runErr)
			totalFailed++
			continue
		}

		match.Apply(p.AllTests(), results)
		failed := failedNames(p)
		if len(failed) == 0 {
			term.Success("%s: all reviewed tests passed", p.Name)
		} else {
			term.Error("%s: %d reviewed test(s) failed", p.Name, len(failed))
			totalFailed += len(failed)
		}
	}

	if totalFailed > 0 {
		return fmt.Errorf("%d test(s) failed", totalFailed)
	}
	return nil
}

// runPRInteractive opens the full TUI with the reviewed tests
// pre-selected, so "r" immediately runs exactly the PR's changed tests
// via the normal selection-scoped run path (uistate's selection precedence
// puts an explicit selection ahead of cursor position).
func runPRInteractive(review *prreview.Result, projects []*model.TestProject, dirs []string) error {
	state := uistate.New(projects)
	for _, t := range review.Tests {
		state.ToggleSelection(t)
	}
	for i, p := range projects {
		if len(p.AllTests()) == 0 {
			continue
		}
		for _, t := range review.Tests {
			if p.FindClass(classNameOf(t)) != nil {
				state.CurrentProject = i
				break
			}
		}
	}

	var historyDB *history.DB
	workspaceRoot := review.Context.RepoRoot
	if workspaceRoot == "" {
		workspaceRoot = "."
	}
	if dbPath, err := historyDBPath(cfg, workspaceRoot); err == nil {
		if db, err := history.Open(dbPath); err == nil {
			historyDB = db
			defer db.Close()
		}
	}

	reportDir, err := reportsDir(cfg, workspaceRoot)
	if err != nil {
		reportDir = ""
	}

	app := ui.New(cfg, workspaceRoot, state, dirs, historyDB, reportDir)
	return app.Run(context.Background())
}

// classNameOf strips a fully-qualified test name down to its owning
// class's full name (namespace.Class), for locating which project a
// reviewed test lives in.
func classNameOf(t *model.Test) string {
	fqn := t.FullyQualifiedName
	idx := strings.LastIndex(fqn, ".")
	if idx < 0 {
		return fqn
	}
	return fqn[:idx]
}

func namesOf(tests []*model.Test) []string {
	names := make([]string, len(tests))
	for i, t := range tests {
		names[i] = t.DisplayName
	}
	return names
}
