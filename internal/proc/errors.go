// Package proc takes point-in-time snapshots of the host process table and
// acts on individual processes.
package proc

import (
	"errors"
	"fmt"
)

// ErrProcessNotFound is returned when a pid does not name a live process.
var ErrProcessNotFound = errors.New("process not found")

func notFound(pid int) error {
	return fmt.Errorf("process %d: %w", pid, ErrProcessNotFound)
}
