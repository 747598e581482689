package tui

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/wrap"
	"go.uber.org/zap"

	"github.com/pranshuparmar/tabwitr/internal/output"
	"github.com/pranshuparmar/tabwitr/internal/pipeline"
	"github.com/pranshuparmar/tabwitr/pkg/model"
)

type groupsMsg []model.ProcessGroup

type tabsMsg map[int][]model.PageInfo

// tabsErrMsg reports a failed enrichment; only it ends an enrichment early.
type tabsErrMsg struct{ err error }

// tabRow is one page of the tabs table, tied to the port it was found on.
type tabRow struct {
	port int
	page model.PageInfo
}

func (m MainModel) refreshGroups() tea.Cmd {
	lister, family := m.opts.Lister, m.opts.Family
	return func() tea.Msg {
		groups, err := pipeline.ListGroups(lister, family)
		if err != nil {
			return err
		}
		return groupsMsg(groups)
	}
}

// refreshTabs queries the debugging endpoints separately so the process list
// renders before enrichment finishes.
func (m MainModel) refreshTabs() tea.Cmd {
	if m.opts.Fetcher == nil {
		return nil
	}
	lister, fetcher, cfg := m.opts.Lister, m.opts.Fetcher, m.opts.pipelineConfig()
	return func() tea.Msg {
		tabs, err := pipeline.CollectTabs(context.Background(), lister, fetcher, cfg)
		if err != nil {
			return tabsErrMsg{err}
		}
		return tabsMsg(tabs)
	}
}

func (m *MainModel) setGroups(groups []model.ProcessGroup) {
	m.groups = groups
	m.groupOf = make(map[int]int)
	m.processes = nil
	for gi, g := range groups {
		for _, p := range g.Processes {
			m.groupOf[p.PID] = gi
			m.processes = append(m.processes, p)
		}
	}
}

func (m *MainModel) setTabs(tabs map[int][]model.PageInfo) {
	m.tabs = tabs
	m.pages = model.IndexPages(tabs)

	ports := make([]int, 0, len(tabs))
	for port := range tabs {
		ports = append(ports, port)
	}
	sort.Ints(ports)

	m.tabRows = nil
	for _, port := range ports {
		for _, pg := range tabs[port] {
			m.tabRows = append(m.tabRows, tabRow{port: port, page: pg})
		}
	}
}

func (m *MainModel) sortProcesses() {
	sort.SliceStable(m.processes, func(i, j int) bool {
		a, b := m.processes[i], m.processes[j]
		var less bool
		switch m.sortCol {
		case "pid":
			less = a.PID < b.PID
		case "role":
			less = a.Role < b.Role
		case "instance":
			less = a.InstanceType < b.InstanceType
		case "cpu":
			less = a.CPUPercent < b.CPUPercent
		case "mem":
			less = a.MemoryRSS < b.MemoryRSS
		default:
			less = a.MemoryRSS < b.MemoryRSS
		}
		if m.sortDesc {
			return !less
		}
		return less
	})
}

// pageColumn is the process URL, or the first tab it renders.
func (m *MainModel) pageColumn(p model.Process) string {
	if p.URL != "" {
		return p.URL
	}
	if pages := m.pages[p.PID]; len(pages) > 0 {
		label := pages[0].Label
		if len(pages) > 1 {
			label += fmt.Sprintf(" (+%d)", len(pages)-1)
		}
		return label
	}
	return ""
}

func (m *MainModel) channelOf(pid int) string {
	if gi, ok := m.groupOf[pid]; ok && gi < len(m.groups) {
		return string(m.groups[gi].Channel)
	}
	return ""
}

func (m *MainModel) filterProcesses() {
	filter := strings.ToLower(m.input.Value())
	var rows []table.Row

	m.filtered = nil
	for _, p := range m.processes {
		page := m.pageColumn(p)
		instance := string(p.InstanceType)
		if gi, ok := m.groupOf[p.PID]; ok && gi < len(m.groups) {
			instance = string(m.groups[gi].InstanceType)
		}

		match := filter == "" ||
			strings.Contains(strconv.Itoa(p.PID), filter) ||
			strings.Contains(strings.ToLower(string(p.Role)), filter) ||
			strings.Contains(strings.ToLower(instance), filter) ||
			strings.Contains(strings.ToLower(page), filter)
		if !match {
			for _, pg := range m.pages[p.PID] {
				if strings.Contains(strings.ToLower(pg.Label), filter) {
					match = true
					break
				}
			}
		}
		if !match {
			continue
		}

		m.filtered = append(m.filtered, p)
		rows = append(rows, table.Row{
			strconv.Itoa(p.PID),
			string(p.Role),
			instance,
			m.channelOf(p.PID),
			fmt.Sprintf("%.1f%%", p.CPUPercent),
			output.FormatBytes(p.MemoryRSS),
			page,
		})
	}
	m.table.SetRows(rows)
}

func (m *MainModel) getColumns() []table.Column {
	cols := []table.Column{
		{Title: "PID", Width: 8},
		{Title: "Role", Width: 10},
		{Title: "Instance", Width: 9},
		{Title: "Channel", Width: 8},
		{Title: "CPU%", Width: 6},
		{Title: "Mem", Width: 10},
		{Title: "URL/Tab", Width: 50},
	}

	addArrow := func(idx int, key string) {
		if m.sortCol == key {
			if m.sortDesc {
				cols[idx].Title += " ↓"
			} else {
				cols[idx].Title += " ↑"
			}
		}
	}

	addArrow(0, "pid")
	addArrow(1, "role")
	addArrow(2, "instance")
	addArrow(4, "cpu")
	addArrow(5, "mem")

	return cols
}

// setSort toggles direction on the current column or switches column.
func (m *MainModel) setSort(col string) {
	if m.sortCol == col {
		m.sortDesc = !m.sortDesc
	} else {
		m.sortCol = col
		m.sortDesc = true
	}
	m.sortProcesses()
	m.filterProcesses()

	cols := m.table.Columns()
	newCols := m.getColumns()
	for i := range cols {
		if i < len(newCols) {
			newCols[i].Width = cols[i].Width
		}
	}
	m.table.SetColumns(newCols)
}

func tabColumns() []table.Column {
	return []table.Column{
		{Title: "Port", Width: 6},
		{Title: "PID", Width: 8},
		{Title: "Type", Width: 14},
		{Title: "Page", Width: 50},
	}
}

func (m *MainModel) updateTabTable() {
	filter := strings.ToLower(m.tabInput.Value())
	var rows []table.Row
	for _, r := range m.tabRows {
		pid := ""
		if r.page.Resolved() {
			pid = strconv.Itoa(r.page.ProcessID)
		}
		typ := r.page.TargetType
		if typ == "" {
			typ = "page"
		}
		row := table.Row{strconv.Itoa(r.port), pid, typ, r.page.Label}
		if filter != "" && !strings.Contains(strings.ToLower(strings.Join(row, " ")), filter) {
			continue
		}
		rows = append(rows, row)
	}
	m.tabTable.SetRows(rows)
}

// selectedProcess returns the process under the list cursor.
func (m *MainModel) selectedProcess() (model.Process, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.filtered) {
		return model.Process{}, false
	}
	return m.filtered[idx], true
}

func (m *MainModel) findProcess(pid int) (model.Process, bool) {
	for _, p := range m.processes {
		if p.PID == pid {
			return p, true
		}
	}
	return model.Process{}, false
}

func (m *MainModel) groupFor(pid int) (model.ProcessGroup, bool) {
	gi, ok := m.groupOf[pid]
	if !ok || gi >= len(m.groups) {
		return model.ProcessGroup{}, false
	}
	return m.groups[gi], true
}

// updateTreeViewport renders the side pane for the selected process: its
// instance tree, host application and tabs.
func (m *MainModel) updateTreeViewport() {
	p, ok := m.selectedProcess()
	if !ok {
		m.treeViewport.SetContent("")
		return
	}
	var b strings.Builder

	if g, ok := m.groupFor(p.PID); ok {
		fmt.Fprintf(&b, "%s\n", labelStyle.Render("Instance:"))
		output.PrintGroups(&b, []model.ProcessGroup{g}, m.pages, true)
		if g.HostApp != "" {
			fmt.Fprintf(&b, "\n%s %s\n", labelStyle.Render("Host app:"), g.HostApp)
		}
	}

	fmt.Fprintf(&b, "\n%s\n", labelStyle.Render("Tabs:"))
	m.writePages(&b, p.PID)

	m.treeViewport.SetContent(wrapTo(b.String(), m.treeViewport.Width))
}

func (m *MainModel) writePages(b *strings.Builder, pid int) {
	pages := m.pages[pid]
	switch {
	case len(pages) > 0:
		for _, pg := range pages {
			line := pg.Label
			if pg.TargetType != "" {
				line += " (" + pg.TargetType + ")"
			}
			fmt.Fprintf(b, "  • %s\n", line)
		}
	case m.enriching:
		fmt.Fprintf(b, "  %s\n", dimStyle.Render("Querying debugging ports..."))
	default:
		fmt.Fprintf(b, "  %s\n", dimStyle.Render("No tabs found"))
	}
}

func (m *MainModel) updateDetailViewport() {
	p, ok := m.findProcess(m.selectedPID)
	if !ok {
		m.viewport.SetContent(dimStyle.Render(fmt.Sprintf("Process %d is gone.", m.selectedPID)))
		m.argsViewport.SetContent("")
		return
	}
	var b strings.Builder

	field := func(name, value string) {
		if value == "" {
			return
		}
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render(name+":"), value)
	}
	field("PID", strconv.Itoa(p.PID))
	if p.PPID > 0 {
		field("Parent", strconv.Itoa(p.PPID))
	}
	field("Name", p.Name)
	field("Executable", p.Exe)
	field("Role", string(p.Role))
	field("CPU", fmt.Sprintf("%.1f%%", p.CPUPercent))
	field("Memory", output.FormatBytes(p.MemoryRSS))
	field("URL", p.URL)

	if g, ok := m.groupFor(p.PID); ok {
		field("Instance", string(g.InstanceType))
		field("Channel", string(g.Channel))
		field("Host app", g.HostApp)
		fmt.Fprintf(&b, "\n%s\n", labelStyle.Render("Process tree:"))
		output.PrintGroups(&b, []model.ProcessGroup{g}, m.pages, true)
	}

	fmt.Fprintf(&b, "\n%s\n", labelStyle.Render("Tabs:"))
	m.writePages(&b, p.PID)

	m.viewport.SetContent(wrapTo(b.String(), m.viewport.Width))

	var args strings.Builder
	if len(p.Args) == 0 {
		fmt.Fprintf(&args, "%s\n", dimStyle.Render("No arguments."))
	}
	for _, a := range p.Args {
		fmt.Fprintf(&args, "%s\n", a)
	}
	m.argsViewport.SetContent(wrapTo(args.String(), m.argsViewport.Width))
}

func wrapTo(content string, width int) string {
	if width > 0 {
		return wrap.String(content, width)
	}
	return content
}

func (m *MainModel) logDebug(msg string, fields ...zap.Field) {
	m.opts.Logger.Debug(msg, fields...)
}
