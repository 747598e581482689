//go:build darwin

package proc

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/pranshuparmar/tabwitr/pkg/model"
)

// ListProcesses returns every process reported by ps, with the executable
// path and ordered arguments read from the kern.procargs2 sysctl.
func ListProcesses() ([]model.Process, error) {
	out, err := exec.Command("ps", "-axo", "pid=,ppid=,%cpu=,rss=,comm=").Output()
	if err != nil {
		return nil, fmt.Errorf("ps process list: %w", err)
	}

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	processes := make([]model.Process, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		p, ok := parsePSLine(line)
		if !ok {
			continue
		}

		// Other users' processes refuse the sysctl; keep what ps gave us.
		if buf, err := unix.SysctlRaw("kern.procargs2", p.PID); err == nil {
			if exe, args, err := parseProcArgs(buf); err == nil {
				if exe != "" {
					p.Exe = exe
					p.Name = filepath.Base(exe)
				}
				p.Args = args
			}
		}
		processes = append(processes, p)
	}

	return processes, nil
}
