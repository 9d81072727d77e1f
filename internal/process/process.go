// Package process configures external commands so that cancelling their
// context also stops the children they spawn.
package process

import (
	"os/exec"
	"time"
)

// waitDelay bounds how long Wait blocks on stdio after the process is killed.
const waitDelay = 5 * time.Second

// Configure places cmd in its own process group and makes context
// cancellation kill the whole group.
func Configure(cmd *exec.Cmd) {
	setProcessGroup(cmd)
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		KillProcessGroup(cmd.Process.Pid)
		return cmd.Process.Kill()
	}
	cmd.WaitDelay = waitDelay
}
