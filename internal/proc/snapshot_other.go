//go:build !linux && !darwin && !windows

package proc

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/pranshuparmar/tabwitr/pkg/model"
)

// ListProcesses falls back to ps on other Unix systems. Arguments are split
// on whitespace, since no ordered argv source is available.
func ListProcesses() ([]model.Process, error) {
	out, err := exec.Command("ps", "-axo", "pid=,ppid=,%cpu=,rss=,comm=").Output()
	if err != nil {
		return nil, fmt.Errorf("ps process list: %w", err)
	}

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	processes := make([]model.Process, 0, len(lines))
	for _, line := range lines {
		if p, ok := parsePSLine(line); ok {
			processes = append(processes, p)
		}
	}

	argv, err := exec.Command("ps", "-axww", "-o", "pid=,args=").Output()
	if err != nil {
		return processes, nil
	}
	args := make(map[int][]string)
	for _, line := range strings.Split(string(argv), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		var pid int
		if _, err := fmt.Sscan(fields[0], &pid); err == nil {
			args[pid] = fields[1:]
		}
	}
	for i := range processes {
		processes[i].Args = args[processes[i].PID]
	}
	return processes, nil
}
