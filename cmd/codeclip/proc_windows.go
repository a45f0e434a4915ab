//go:build windows

package main

import (
	"os/exec"
	"syscall"
)

// detach starts codeclipd in a new process group, away from the console.
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP}
}
