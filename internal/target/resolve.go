// Package target turns a process reference from the command line into pids.
package target

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pranshuparmar/tabwitr/pkg/model"
)

var (
	ErrNoMatch   = errors.New("no running process matches")
	ErrAmbiguous = errors.New("process name is ambiguous")
)

// Resolve accepts a pid or a process name. Names are matched
// case-insensitively against the process name, executable and arguments:
// as a substring, or with exact set, as a whole token. The caller at selfPID
// and its ancestors are never matched.
func Resolve(ref string, procs []model.Process, selfPID int, exact bool) ([]int, error) {
	if pid, err := strconv.Atoi(ref); err == nil {
		if pid <= 0 {
			return nil, fmt.Errorf("invalid pid %q", ref)
		}
		return []int{pid}, nil
	}

	query := strings.ToLower(strings.TrimSpace(ref))
	if query == "" {
		return nil, fmt.Errorf("empty process name")
	}

	ignored := ancestry(procs, selfPID)
	var pids []int
	for _, p := range procs {
		if ignored[p.PID] || strconv.Itoa(p.PID) == query {
			continue
		}
		if matches(p, query, exact) {
			pids = append(pids, p.PID)
		}
	}
	if len(pids) == 0 {
		return nil, fmt.Errorf("%w %q", ErrNoMatch, ref)
	}
	sort.Ints(pids)
	return pids, nil
}

// ResolveOne is Resolve for commands that act on a single process.
func ResolveOne(ref string, procs []model.Process, selfPID int, exact bool) (int, error) {
	pids, err := Resolve(ref, procs, selfPID, exact)
	if err != nil {
		return 0, err
	}
	if len(pids) > 1 {
		list := make([]string, len(pids))
		for i, pid := range pids {
			list[i] = strconv.Itoa(pid)
		}
		return 0, fmt.Errorf("%w: %q matches pids %s", ErrAmbiguous, ref, strings.Join(list, ", "))
	}
	return pids[0], nil
}

func matches(p model.Process, query string, exact bool) bool {
	name := strings.ToLower(p.Name)
	// Exclude grep-like processes
	if strings.Contains(name, "grep") {
		return false
	}
	exe := strings.ToLower(filepath.Base(p.Exe))

	if !exact {
		if strings.Contains(name, query) || (p.Exe != "" && strings.Contains(exe, query)) {
			return true
		}
		return strings.Contains(strings.ToLower(strings.Join(p.Args, " ")), query)
	}

	if name == query || strings.TrimSuffix(name, ".exe") == query || (p.Exe != "" && exe == query) {
		return true
	}
	for _, a := range p.Args {
		if strings.ToLower(a) == query {
			return true
		}
	}
	return false
}

// ancestry collects selfPID and its parents, bounded by the snapshot size.
func ancestry(procs []model.Process, selfPID int) map[int]bool {
	parent := make(map[int]int, len(procs))
	for _, p := range procs {
		parent[p.PID] = p.PPID
	}
	seen := map[int]bool{selfPID: true}
	pid := selfPID
	for range len(procs) {
		ppid, ok := parent[pid]
		if !ok || ppid <= 0 || seen[ppid] {
			break
		}
		seen[ppid] = true
		pid = ppid
	}
	return seen
}
