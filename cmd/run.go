package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/haavardr/testament/internal/discovery"
	"github.com/haavardr/testament/internal/execute"
	"github.com/haavardr/testament/internal/match"
	"github.com/haavardr/testament/internal/model"
	"github.com/haavardr/testament/internal/termio"
)

var (
	runFlagFilter        string
	runFlagConfiguration string
)

var runCmd = &cobra.Command{
	Use:   "run [path]",
	Short: "Run tests once, headless, and print a summary",
	Long: `Run tests once without the interactive UI, for CI and scripting.

Discovers the project set the same way the interactive UI does, then
executes every discovered test (or a filtered subset) and prints a plain
pass/fail summary. Exits non-zero if any test failed.

Examples:
  testament run                       Run every discovered test
  testament run ./Tests.csproj        Run a specific project
  testament run --filter "Name~Foo"   Run with a dotnet test filter
  testament run -c Release            Run in Release configuration`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runFlagFilter, "filter", "", "Dotnet test filter expression (e.g. \"Name~Foo\")")
	runCmd.Flags().StringVarP(&runFlagConfiguration, "configuration", "c", "", "Build configuration (e.g. Debug, Release)")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	startPath := "."
	if len(args) > 0 {
		startPath = args[0]
	}

	term := termio.New()
	term.SetVerbose(cfg.Verbose)
	term.SetQuiet(cfg.Quiet)

	result, projects, dirs, err := resolveProjects(startPath)
	if err != nil {
		return err
	}
	workspaceRoot := workspaceRootOf(result, startPath)
	reportDir, err := reportsDir(cfg, workspaceRoot)
	if err != nil {
		reportDir = ""
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	term.Info("discovering tests across %d project(s)...", len(projects))
	if err := discoverAll(ctx, cfg.ExternalCLI, projects, dirs); err != nil {
		return err
	}

	configuration := runFlagConfiguration
	if configuration == "" {
		configuration = cfg.Run.Configuration
	}
	filter := runFlagFilter
	if filter == "" {
		filter = cfg.Run.Filter
	}

	totalFailed := 0
	for i, p := range projects {
		if p.LoadError != "" {
			term.Error("%s: %s", p.Name, p.LoadError)
			totalFailed++
			continue
		}

		req := execute.RunRequest{
			ProjectFile:   p.ProjectFile,
			ProjectDir:    dirs[i],
			Mode:          execute.ModeAll,
			Configuration: configuration,
			CLI:           cfg.ExternalCLI,
		}
		if filter != "" {
			req.Mode = execute.ModeFilterExpression
			req.Filter = filter
		}
		if reportDir != "" {
			req.ReportPath = filepath.Join(reportDir, p.Name+".log")
		}

		term.Info("running %s...", p.Name)
		events := make(chan execute.Event, 256)
		go execute.Run(ctx, req, events)

		var results []*match.Outcome
		var runErr error
		for ev := range events {
			switch ev.Kind {
			case execute.EventBuildLine, execute.EventTestOutputLine:
				term.VerboseLog("%s", ev.Line)
			case execute.EventProgress:
				printProgress(term, p.Name, ev.Progress)
			case execute.EventCompleted:
				results = ev.Results
			case execute.EventFailed:
				runErr = fmt.Errorf("%s", ev.Reason)
			}
		}
		term.ClearLine()
		if runErr != nil {
			term.Error("%s: %v", p.Name, runErr)
			totalFailed++
			continue
		}

		match.Apply(p.AllTests(), results)
		failed := failedNames(p)
		if len(failed) == 0 {
			term.Success("%s: all tests passed", p.Name)
		} else {
			term.Error("%s: %d test(s) failed", p.Name, len(failed))
			for _, n := range failed {
				term.Error("  %s", n)
			}
			totalFailed += len(failed)
		}
	}

	if totalFailed > 0 {
		return fmt.Errorf("%d test(s) failed", totalFailed)
	}
	return nil
}

// discoverAll runs the discovery coordinator to completion and folds its
// events directly into the Pending projects resolveProjects built, the
// same shape the interactive UI's handleDiscoveryEvent uses, just driven
// synchronously to a channel close instead of an event-loop select.
func discoverAll(ctx context.Context, cli string, projects []*model.TestProject, dirs []string) error {
	files := make([]string, len(projects))
	for i, p := range projects {
		files[i] = p.ProjectFile
	}

	events := make(chan discovery.Event, 16)
	go discovery.Run(ctx, cli, files, dirs, events)

	for ev := range events {
		switch ev.Kind {
		case discovery.EventProjectDiscovered:
			if ev.Index < 0 || ev.Index >= len(projects) {
				continue
			}
			projects[ev.Index].Classes = ev.Classes
			projects[ev.Index].SortClasses()
			projects[ev.Index].State = model.Ready
		case discovery.EventProjectError:
			if ev.Index < 0 || ev.Index >= len(projects) {
				continue
			}
			projects[ev.Index].LoadError = ev.Message
			projects[ev.Index].State = model.Error
		}
	}
	return nil
}

// printProgress overwrites the current line with a running pass/fail tally,
// truncated to the terminal's width so a long project name can't wrap the
// line and leave stray characters behind on the next overwrite, grounded
// on the teacher's runner.go showStatus/getTerminalWidth pairing.
func printProgress(term *termio.Terminal, projectName string, p execute.Progress) {
	width, _ := termio.TerminalSize()
	line := fmt.Sprintf("%s: %d passed, %d failed, %d total", projectName, p.Passed, p.Failed, p.Total)
	if width > 0 && len(line) > width-1 {
		line = line[:width-1]
	}
	term.Status("%s", line)
}

func failedNames(p *model.TestProject) []string {
	var names []string
	for _, t := range p.AllTests() {
		if t.Status == model.Failed {
			names = append(names, t.FullyQualifiedName)
		}
	}
	return names
}
