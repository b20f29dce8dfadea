package execute

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// RunBuild invokes the external CLI's build-only mode and reports a single
// terminal event: Completed on success (output is discarded, matching the
// build-only mode's show-output-only-on-failure rule), or Failed with the
// exit code and command line followed by every buffered output line, so
// the caller can dump it to the output pane for diagnosis. cli is the test CLI binary name ("dotnet" unless
// overridden).
func RunBuild(ctx context.Context, cli, projectFile, projectDir string, out chan<- Event) {
	defer close(out)

	cli = cliOrDefault(cli)

	cmd := exec.CommandContext(ctx, cli, "build", projectFile, "--verbosity", "minimal")
	setupProcessGroup(cmd)
	cmd.Dir = projectDir

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		out <- Event{Kind: EventFailed, Reason: err.Error()}
		return
	}
	cmd.Stderr = cmd.Stdout

	commandLine := cli + " build " + projectFile + " --verbosity minimal"

	if err := cmd.Start(); err != nil {
		out <- Event{Kind: EventFailed, Reason: fmt.Sprintf("%s: %v", commandLine, err)}
		return
	}

	var lines []string
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}

	err = cmd.Wait()
	if err != nil {
		out <- Event{Kind: EventFailed, Reason: fmt.Sprintf("exit %v: %s\n%s", exitCode(err), commandLine, strings.Join(lines, "\n"))}
		return
	}
	out <- Event{Kind: EventCompleted}
}
