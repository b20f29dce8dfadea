//go:build windows

package execute

import "os/exec"

// setupProcessGroup on Windows just arranges for cancel to kill the
// process directly; Windows process groups don't map cleanly onto this.
func setupProcessGroup(cmd *exec.Cmd) {
	cmd.Cancel = func() error {
		return cmd.Process.Kill()
	}
}
