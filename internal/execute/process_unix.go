//go:build unix

package execute

import (
	"os/exec"
	"syscall"
)

// setupProcessGroup puts the child in its own process group so a cancel
// can kill the whole tree the build tool may have spawned under it.
func setupProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
