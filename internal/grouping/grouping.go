// Package grouping rebuilds the process forest of one browser family and
// folds every process into the logical instance that owns it.
package grouping

import (
	"sort"
	"strings"

	"github.com/pranshuparmar/tabwitr/internal/classify"
	"github.com/pranshuparmar/tabwitr/pkg/model"
)

// MaxDepth caps the upward parent walk so corrupt or cyclic parent data terminates.
const MaxDepth = 20

const hostNameFlag = "--webview-exe-name="

// Build groups family processes by owning root. all is the full host
// snapshot and is only consulted to name the host application of embedded
// instances; it may be nil.
func Build(family []model.Process, all []model.Process, familyName string) []model.ProcessGroup {
	byPID := make(map[int]model.Process, len(family))
	for _, p := range family {
		byPID[p.PID] = p
	}

	roots := Roots(family)

	members := make(map[int][]model.Process)
	for _, p := range family {
		key := OwningRoot(byPID, roots, p.PID)
		members[key] = append(members[key], p)
	}

	everyone := make(map[int]model.Process, len(all))
	for _, p := range all {
		everyone[p.PID] = p
	}

	groups := make([]model.ProcessGroup, 0, len(members))
	for rootPID, procs := range members {
		sort.Slice(procs, func(i, j int) bool { return procs[i].PID < procs[j].PID })

		g := model.ProcessGroup{
			RootPID:      rootPID,
			InstanceType: groupInstanceType(procs),
			Processes:    procs,
		}
		root, ok := byPID[rootPID]
		if ok {
			g.RootExe = root.Exe
		}
		g.Channel = classify.Channel(g.RootExe)
		if g.InstanceType.Embedded() && ok {
			g.HostApp = hostApp(root, everyone, familyName)
		}
		groups = append(groups, g)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		ri, rj := groups[i].InstanceType.Rank(), groups[j].InstanceType.Rank()
		if ri != rj {
			return ri < rj
		}
		return groups[i].RootPID < groups[j].RootPID
	})
	return groups
}

// Roots returns the pids whose parent is absent or outside the family.
func Roots(family []model.Process) map[int]bool {
	pids := make(map[int]bool, len(family))
	for _, p := range family {
		pids[p.PID] = true
	}

	roots := make(map[int]bool)
	for _, p := range family {
		if p.PPID == 0 || !pids[p.PPID] {
			roots[p.PID] = true
		}
	}
	return roots
}

// OwningRoot walks parent pointers from pid until it reaches a root or a
// process whose parent leaves the family. The walk is capped at MaxDepth
// hops; when the cap is hit the node reached becomes the key.
func OwningRoot(byPID map[int]model.Process, roots map[int]bool, pid int) int {
	current := pid
	for i := 0; i < MaxDepth; i++ {
		if roots[current] {
			return current
		}
		p, ok := byPID[current]
		if !ok || p.PPID == 0 {
			return current
		}
		if _, inFamily := byPID[p.PPID]; !inFamily {
			return current
		}
		current = p.PPID
	}
	return current
}

// groupInstanceType lets Copilot outrank WebView2, which outranks Browser.
func groupInstanceType(procs []model.Process) model.InstanceType {
	typ := model.InstanceBrowser
	for _, p := range procs {
		switch p.InstanceType {
		case model.InstanceCopilot:
			return model.InstanceCopilot
		case model.InstanceWebView2:
			typ = model.InstanceWebView2
		}
	}
	return typ
}

// hostApp names the application embedding a webview instance.
func hostApp(root model.Process, everyone map[int]model.Process, familyName string) string {
	for _, arg := range root.Args {
		if name, ok := strings.CutPrefix(arg, hostNameFlag); ok {
			return name
		}
	}

	parent, ok := everyone[root.PPID]
	if !ok || root.PPID == 0 {
		return ""
	}
	if classify.InFamily(parent.Name, "", familyName) {
		return ""
	}
	return parent.Name
}
