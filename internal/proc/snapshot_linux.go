//go:build linux

package proc

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pranshuparmar/tabwitr/pkg/model"
)

// ListProcesses returns every process visible under /proc. Processes that
// exit or deny access mid-read are skipped.
func ListProcesses() ([]model.Process, error) {
	entries, err := os.ReadDir("/proc")
	if err != nil {
		return nil, fmt.Errorf("read /proc: %w", err)
	}

	boot := bootTime()
	pageSize := uint64(os.Getpagesize())
	now := time.Now()

	processes := make([]model.Process, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		pid, err := strconv.Atoi(entry.Name())
		if err != nil {
			continue
		}

		stat, err := os.ReadFile(fmt.Sprintf("/proc/%d/stat", pid))
		if err != nil {
			continue
		}
		info, err := parseStat(stat)
		if err != nil {
			continue
		}

		p := model.Process{
			PID:       pid,
			PPID:      info.ppid,
			Name:      info.comm,
			MemoryRSS: info.rssPages * pageSize,
		}
		if cmdline, err := os.ReadFile(fmt.Sprintf("/proc/%d/cmdline", pid)); err == nil {
			p.Args = splitCmdline(cmdline)
		}
		if exe, err := os.Readlink(fmt.Sprintf("/proc/%d/exe", pid)); err == nil {
			p.Exe = strings.TrimSuffix(exe, " (deleted)")
			p.Name = filepath.Base(p.Exe)
		}

		ticks := float64(ticksPerSecond())
		started := boot.Add(time.Duration(float64(info.start) / ticks * float64(time.Second)))
		p.CPUPercent = cpuPercent(float64(info.utime+info.stime)/ticks, now.Sub(started).Seconds())

		processes = append(processes, p)
	}

	return processes, nil
}

func bootTime() time.Time {
	f, err := os.Open("/proc/stat")
	if err != nil {
		return time.Now()
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "btime") {
			parts := strings.Fields(line)
			if len(parts) < 2 {
				break
			}
			sec, _ := strconv.ParseInt(parts[1], 10, 64)
			return time.Unix(sec, 0)
		}
	}
	return time.Now()
}

func ticksPerSecond() int {
	return 100 // USER_HZ on every mainstream Linux build
}
