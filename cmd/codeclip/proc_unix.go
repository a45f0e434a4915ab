//go:build unix

package main

import (
	"os/exec"
	"syscall"
)

// detach starts codeclipd in its own process group so it survives the
// terminal that launched it.
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}
