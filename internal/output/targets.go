package output

import (
	"fmt"
	"io"
	"sort"

	"github.com/pranshuparmar/tabwitr/pkg/model"
)

// PrintTabs renders the port → pages map, ports ascending.
func PrintTabs(w io.Writer, tabs map[int][]model.PageInfo, colorEnabled bool) {
	c := newPalette(colorEnabled)

	ports := make([]int, 0, len(tabs))
	for port := range tabs {
		ports = append(ports, port)
	}
	sort.Ints(ports)

	for _, port := range ports {
		fmt.Fprintf(w, "%sport %d%s\n", c.root, port, c.reset)
		pages := tabs[port]
		for i, pg := range pages {
			connector := "├─ "
			if i == len(pages)-1 {
				connector = "└─ "
			}
			fmt.Fprintf(w, "%s%s%s%spid %d%s  %s%s\n",
				c.branch, connector, c.reset, c.dim, pg.ProcessID, c.reset, pg.Label, typeSuffix(pg))
		}
	}
}

// PrintTargets writes one diagnostic line per raw target.
func PrintTargets(w io.Writer, targets []model.DebugTarget) {
	for _, t := range targets {
		pid := "none"
		if t.PID > 0 {
			pid = fmt.Sprint(t.PID)
		}
		fmt.Fprintf(w, "type=%q processId=%s url=%q title=%q id=%q\n", t.Type, pid, t.URL, t.Title, t.ID)
	}
}
