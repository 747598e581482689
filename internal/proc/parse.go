package proc

import (
	"bytes"
	"encoding/binary"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pranshuparmar/tabwitr/pkg/model"
)

// statInfo holds the /proc/<pid>/stat fields a snapshot needs.
type statInfo struct {
	comm     string
	ppid     int
	utime    uint64 // clock ticks
	stime    uint64
	start    uint64 // clock ticks after boot
	rssPages uint64
}

// parseStat reads a /proc/<pid>/stat line. The command name may contain
// spaces and parentheses, so it is taken between the first '(' and the last ')'.
func parseStat(stat []byte) (statInfo, error) {
	raw := string(stat)
	open := strings.Index(raw, "(")
	end := strings.LastIndex(raw, ")")
	if open == -1 || end == -1 || end <= open || end+2 > len(raw) {
		return statInfo{}, fmt.Errorf("invalid stat format")
	}

	// fields[0] is the state, field 3 in proc(5) numbering.
	fields := strings.Fields(raw[end+2:])
	if len(fields) < 22 {
		return statInfo{}, fmt.Errorf("short stat: %d fields", len(fields))
	}

	ppid, err := strconv.Atoi(fields[1])
	if err != nil {
		return statInfo{}, fmt.Errorf("invalid ppid: %w", err)
	}

	info := statInfo{comm: raw[open+1 : end], ppid: ppid}
	info.utime, _ = strconv.ParseUint(fields[11], 10, 64)
	info.stime, _ = strconv.ParseUint(fields[12], 10, 64)
	info.start, _ = strconv.ParseUint(fields[19], 10, 64)
	info.rssPages, _ = strconv.ParseUint(fields[21], 10, 64)
	return info, nil
}

// splitCmdline splits a NUL-separated /proc/<pid>/cmdline.
func splitCmdline(raw []byte) []string {
	raw = bytes.TrimRight(raw, "\x00")
	if len(raw) == 0 {
		return nil
	}
	parts := bytes.Split(raw, []byte{0})
	args := make([]string, 0, len(parts))
	for _, p := range parts {
		args = append(args, string(p))
	}
	return args
}

// parsePSLine parses one line of `ps -axo pid=,ppid=,%cpu=,rss=,comm=`.
// rss is reported in KiB; comm may contain spaces.
func parsePSLine(line string) (model.Process, bool) {
	fields := strings.Fields(line)
	if len(fields) < 5 {
		return model.Process{}, false
	}

	pid, err := strconv.Atoi(fields[0])
	if err != nil {
		return model.Process{}, false
	}
	ppid, err := strconv.Atoi(fields[1])
	if err != nil {
		return model.Process{}, false
	}
	cpu, _ := strconv.ParseFloat(strings.ReplaceAll(fields[2], ",", "."), 64)
	rss, _ := strconv.ParseUint(fields[3], 10, 64)

	comm := strings.Join(fields[4:], " ")
	return model.Process{
		PID:        pid,
		PPID:       ppid,
		Name:       filepath.Base(comm),
		Exe:        comm,
		CPUPercent: cpu,
		MemoryRSS:  rss * 1024,
	}, true
}

// parseProcArgs decodes a kern.procargs2 buffer: a native-endian argc, the
// executable path, NUL padding, then argc NUL-terminated arguments followed
// by the environment.
func parseProcArgs(buf []byte) (string, []string, error) {
	if len(buf) < 4 {
		return "", nil, fmt.Errorf("procargs too short")
	}
	argc := int(binary.LittleEndian.Uint32(buf[:4]))
	rest := buf[4:]

	i := bytes.IndexByte(rest, 0)
	if i < 0 {
		return "", nil, fmt.Errorf("procargs: unterminated exec path")
	}
	exe := string(rest[:i])
	rest = bytes.TrimLeft(rest[i:], "\x00")

	args := make([]string, 0, argc)
	for len(args) < argc && len(rest) > 0 {
		i = bytes.IndexByte(rest, 0)
		if i < 0 {
			args = append(args, string(rest))
			break
		}
		args = append(args, string(rest[:i]))
		rest = rest[i+1:]
	}
	return exe, args, nil
}

// Win32_Process columns requested from PowerShell, plus two computed ones.
const (
	colName    = "Name"
	colPID     = "ProcessId"
	colPPID    = "ParentProcessId"
	colExe     = "ExecutablePath"
	colCmdline = "CommandLine"
	colMemory  = "WorkingSetSize"
	colCPU     = "CPUSeconds"
	colAge     = "AgeSeconds"
)

// parseWin32Processes reads the CSV produced by Get-CimInstance Win32_Process.
// split turns a raw command line into arguments.
func parseWin32Processes(out []byte, split func(string) []string) ([]model.Process, error) {
	r := csv.NewReader(bytes.NewReader(out))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse powershell output: %w", err)
	}

	if len(records) < 2 {
		return []model.Process{}, nil
	}

	idx := make(map[string]int, len(records[0]))
	for i, h := range records[0] {
		idx[strings.TrimSpace(h)] = i
	}
	for _, required := range []string{colName, colPID, colPPID} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("invalid powershell output headers: %v", records[0])
		}
	}

	get := func(record []string, col string) string {
		i, ok := idx[col]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}

	processes := make([]model.Process, 0, len(records)-1)
	for _, record := range records[1:] {
		pid, err := strconv.Atoi(get(record, colPID))
		if err != nil {
			continue
		}
		ppid, err := strconv.Atoi(get(record, colPPID))
		if err != nil {
			continue
		}

		p := model.Process{
			PID:  pid,
			PPID: ppid,
			Name: get(record, colName),
			Exe:  get(record, colExe),
		}
		if cmdline := get(record, colCmdline); cmdline != "" {
			p.Args = split(cmdline)
		}
		p.MemoryRSS, _ = strconv.ParseUint(get(record, colMemory), 10, 64)
		p.CPUPercent = cpuPercent(parseFloat(get(record, colCPU)), parseFloat(get(record, colAge)))
		processes = append(processes, p)
	}

	return processes, nil
}

// cpuPercent is the lifetime average, the way ps reports %cpu.
func cpuPercent(cpuSeconds, ageSeconds float64) float64 {
	if ageSeconds <= 0 {
		return 0
	}
	return cpuSeconds / ageSeconds * 100
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
	return f
}
