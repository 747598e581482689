//go:build windows

package proc

import (
	"fmt"
	"os"
)

// Terminate ends pid with TerminateProcess.
func Terminate(pid int) error {
	if pid <= 0 {
		return notFound(pid)
	}
	p, err := os.FindProcess(pid)
	if err != nil {
		return notFound(pid)
	}
	defer p.Release()

	if err := p.Kill(); err != nil {
		return fmt.Errorf("terminate PID %d failed: %w", pid, err)
	}
	return nil
}
