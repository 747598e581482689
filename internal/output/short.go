package output

import (
	"fmt"
	"io"

	"github.com/pranshuparmar/tabwitr/pkg/model"
)

// PrintShort writes one line per instance.
func PrintShort(w io.Writer, groups []model.ProcessGroup, pages map[int][]model.PageInfo, colorEnabled bool) {
	c := newPalette(colorEnabled)
	for _, g := range groups {
		tabs := 0
		for _, p := range g.Processes {
			tabs += len(pages[p.PID])
		}
		fmt.Fprintf(w, "%s%s%s (%spid %d%s) %s→%s %s %s, %d processes, %d tabs\n",
			c.root, exeName(g), c.reset, c.dim, g.RootPID, c.reset,
			c.branch, c.reset, g.InstanceType, g.Channel, len(g.Processes), tabs)
	}
}
