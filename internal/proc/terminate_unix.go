//go:build !windows

package proc

import (
	"errors"
	"fmt"
	"os"
	"syscall"
)

// Terminate kills pid with SIGKILL.
func Terminate(pid int) error {
	if pid <= 0 {
		return notFound(pid)
	}
	p, err := os.FindProcess(pid)
	if err != nil {
		return notFound(pid)
	}
	if err := p.Signal(syscall.Signal(0)); err != nil {
		if errors.Is(err, os.ErrProcessDone) || errors.Is(err, syscall.ESRCH) {
			return notFound(pid)
		}
		return fmt.Errorf("signal PID %d failed: %w", pid, err)
	}
	if err := p.Signal(syscall.SIGKILL); err != nil {
		return fmt.Errorf("signal %v to PID %d failed: %w", syscall.SIGKILL, pid, err)
	}
	return nil
}
