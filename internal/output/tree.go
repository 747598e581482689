package output

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/pranshuparmar/tabwitr/pkg/model"
)

// PrintGroups renders each instance as a tree: the root process first, then
// its members, with the pages owned by each pid nested beneath it.
func PrintGroups(w io.Writer, groups []model.ProcessGroup, pages map[int][]model.PageInfo, colorEnabled bool) {
	c := newPalette(colorEnabled)

	for gi, g := range groups {
		if gi > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s%s%s (%spid %d%s)  %s\n",
			c.root, exeName(g), c.reset, c.dim, g.RootPID, c.reset, groupSummary(g))

		printPages(w, c, "   ", pages[g.RootPID])

		var members []model.Process
		for _, p := range g.Processes {
			if p.PID != g.RootPID {
				members = append(members, p)
			}
		}
		for i, p := range members {
			connector, indent := "├─ ", "│  "
			if i == len(members)-1 {
				connector, indent = "└─ ", "   "
			}
			fmt.Fprintf(w, "%s%s%s%s (%spid %d%s)%s\n",
				c.branch, connector, c.reset, p.Role, c.dim, p.PID, c.reset, processDetail(p))
			printPages(w, c, indent+"   ", pages[p.PID])
		}
	}
}

func printPages(w io.Writer, c palette, prefix string, pages []model.PageInfo) {
	for _, pg := range pages {
		fmt.Fprintf(w, "%s%s•%s %s%s\n", prefix, c.tab, c.reset, pg.Label, typeSuffix(pg))
	}
}

func exeName(g model.ProcessGroup) string {
	if g.RootExe != "" {
		return baseName(g.RootExe)
	}
	if root, ok := g.Root(); ok && root.Name != "" {
		return root.Name
	}
	return "unknown"
}

// baseName handles both separators so Windows paths render on any host.
func baseName(path string) string {
	if i := strings.LastIndexAny(path, `\/`); i >= 0 {
		return path[i+1:]
	}
	return filepath.Base(path)
}

func groupSummary(g model.ProcessGroup) string {
	parts := []string{string(g.InstanceType), string(g.Channel)}
	if g.HostApp != "" {
		parts = append(parts, "host "+g.HostApp)
	}
	parts = append(parts,
		fmt.Sprintf("%d processes", len(g.Processes)),
		FormatBytes(g.MemoryRSS()))
	return "[" + strings.Join(parts, ", ") + "]"
}

func processDetail(p model.Process) string {
	detail := fmt.Sprintf("  %.1f%% %s", p.CPUPercent, FormatBytes(p.MemoryRSS))
	if p.URL != "" {
		detail += "  " + p.URL
	}
	return detail
}

func typeSuffix(p model.PageInfo) string {
	if p.TargetType == "" {
		return ""
	}
	return " (" + p.TargetType + ")"
}

// FormatBytes renders a byte count with a binary unit.
func FormatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
