//go:build windows

// Package process terminates browser process trees left behind by a session.
package process

import (
	"errors"
	"fmt"
	"os/exec"
	"strconv"
)

// KillTree force-kills pid and its children with taskkill.
// taskkill exits with 128 when the process is already gone.
func KillTree(pid int) error {
	if pid <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPID, pid)
	}
	err := exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).Run()
	var exitErr *exec.ExitError
	if err == nil || (errors.As(err, &exitErr) && exitErr.ExitCode() == 128) {
		return nil
	}
	return fmt.Errorf("killing process tree %d: %w", pid, err)
}
