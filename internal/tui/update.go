package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

type tickMsg time.Time

func (m MainModel) waitTick() tea.Cmd {
	return tea.Tick(m.opts.Refresh, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		var cmds []tea.Cmd
		if m.state == stateList && !m.quitting && !m.searching() {
			cmds = append(cmds, m.refreshGroups())
			if !m.enriching && m.opts.Fetcher != nil {
				m.enriching = true
				cmds = append(cmds, m.refreshTabs())
			}
		}
		cmds = append(cmds, m.waitTick())
		return m, tea.Batch(cmds...)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		m.statusMsg = "" // clear any transient error on interaction
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "1":
			if m.state == stateList && !m.searching() {
				m.activeTab = tabProcesses
				return m, nil
			}
		case "2":
			if m.state == stateList && !m.searching() {
				m.activeTab = tabTabs
				m.listFocus = focusMain
				return m, nil
			}
		}

		if m.pendingAction != actionNone {
			return m.handleConfirmKey(msg)
		}
		if m.state == stateList {
			return m.handleListKey(msg)
		}
		return m.handleDetailKey(msg)

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case groupsMsg:
		currentPID := 0
		if p, ok := m.selectedProcess(); ok {
			currentPID = p.PID
		}

		m.setGroups(msg)
		m.sortProcesses()
		m.filterProcesses()
		m.restoreCursor(currentPID)
		m.updateTreeViewport()
		if m.state == stateDetail {
			m.updateDetailViewport()
		}

	case tabsMsg:
		m.enriching = false
		currentPID := 0
		if p, ok := m.selectedProcess(); ok {
			currentPID = p.PID
		}

		m.setTabs(msg)
		m.filterProcesses()
		m.restoreCursor(currentPID)
		m.updateTabTable()
		m.updateTreeViewport()
		if m.state == stateDetail {
			m.updateDetailViewport()
		}
		m.logDebug("tabs refreshed", zap.Int("ports", len(msg)), zap.Int("pages", len(m.tabRows)))

	case terminatedMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}
		m.logDebug("process terminated", zap.Int("pid", msg.pid))
		if m.state == stateDetail && m.selectedPID == msg.pid {
			m.state = stateList
			m.selectedPID = 0
		}
		m.statusMsg = fmt.Sprintf("Process %d terminated", msg.pid)
		return m, m.refreshGroups()

	case debuggerMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Debugger: %v", msg.err)
			return m, nil
		}
		m.statusMsg = fmt.Sprintf("%s attached to PID %d", msg.path, msg.pid)

	case tabsErrMsg:
		m.enriching = false
		m.statusMsg = fmt.Sprintf("Error: %v", msg.err)
		m.logDebug("tab enrichment failed", zap.Error(msg.err))

	case error:
		m.statusMsg = fmt.Sprintf("Error: %v", msg)
		m.logDebug("refresh failed", zap.Error(msg))
	}

	return m, nil
}

func (m MainModel) searching() bool {
	return m.input.Focused() || m.tabInput.Focused()
}

func (m *MainModel) restoreCursor(pid int) {
	if len(m.filtered) == 0 {
		return
	}
	for i, p := range m.filtered {
		if p.PID == pid {
			m.table.SetCursor(i)
			return
		}
	}
	m.table.SetCursor(0)
}

func (m MainModel) openDetail(pid int) (tea.Model, tea.Cmd) {
	if pid <= 0 {
		return m, nil
	}
	m.state = stateDetail
	m.selectedPID = pid
	m.detailFocus = focusDetail
	m.viewport.GotoTop()
	m.argsViewport.GotoTop()
	m.updateDetailViewport()
	return m, nil
}

func (m MainModel) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		action, pid := m.pendingAction, m.actionPID
		m.pendingAction = actionNone
		switch action {
		case actionKill:
			return m, m.terminate(pid)
		case actionDebug:
			return m, m.debug(pid, false)
		case actionDebugChildren:
			return m, m.debug(pid, true)
		}
	case "n", "N", "esc":
		m.pendingAction = actionNone
	}
	return m, nil
}

func (m MainModel) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.activeTab == tabTabs {
		if m.tabInput.Focused() {
			if msg.String() == "enter" || msg.String() == "esc" {
				m.tabInput.Blur()
				return m, nil
			}
			var inputCmd tea.Cmd
			m.tabInput, inputCmd = m.tabInput.Update(msg)
			m.updateTabTable()
			m.tabTable.SetCursor(0)
			return m, inputCmd
		}
		if msg.String() == "/" {
			m.tabInput.Focus()
			return m, textinput.Blink
		}
	} else {
		if m.input.Focused() {
			if msg.String() == "enter" || msg.String() == "esc" {
				m.input.Blur()
				return m, nil
			}
			var inputCmd tea.Cmd
			m.input, inputCmd = m.input.Update(msg)
			m.filterProcesses()
			m.table.SetCursor(0)
			m.updateTreeViewport()
			return m, inputCmd
		}
		if msg.String() == "/" {
			m.input.Focus()
			return m, textinput.Blink
		}
	}

	switch msg.String() {
	case "q", "esc":
		m.quitting = true
		return m, tea.Quit

	case "enter":
		if m.activeTab == tabTabs {
			return m.openDetail(rowPID(m.tabTable.SelectedRow(), 1))
		}
		if p, ok := m.selectedProcess(); ok {
			return m.openDetail(p.PID)
		}
		return m, nil

	case "tab", "right", "left", "l", "h":
		if m.activeTab == tabProcesses {
			if m.listFocus == focusMain {
				m.listFocus = focusSide
			} else {
				m.listFocus = focusMain
			}
		}
		return m, nil

	case "k":
		pid := 0
		if m.activeTab == tabTabs {
			pid = rowPID(m.tabTable.SelectedRow(), 1)
		} else if p, ok := m.selectedProcess(); ok {
			pid = p.PID
		}
		if pid > 0 {
			m.pendingAction = actionKill
			m.actionPID = pid
		}
		return m, nil

	case "r":
		return m, m.refreshGroups()

	case "t":
		if m.opts.Fetcher == nil || m.enriching {
			return m, nil
		}
		m.enriching = true
		m.updateTreeViewport()
		return m, m.refreshTabs()

	case "p", "o", "i", "c", "m":
		if m.activeTab == tabProcesses {
			m.setSort(sortKeys[msg.String()])
			m.updateTreeViewport()
			return m, nil
		}
	}

	// Table navigation or side pane scrolling
	var cmd tea.Cmd
	switch {
	case m.activeTab == tabTabs:
		m.tabTable, cmd = m.tabTable.Update(msg)
	case m.listFocus == focusMain:
		prev := m.table.Cursor()
		m.table, cmd = m.table.Update(msg)
		if m.table.Cursor() != prev {
			m.updateTreeViewport()
		}
	default:
		m.treeViewport, cmd = m.treeViewport.Update(msg)
	}
	return m, cmd
}

var sortKeys = map[string]string{
	"p": "pid",
	"o": "role",
	"i": "instance",
	"c": "cpu",
	"m": "mem",
}

func (m MainModel) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.actionMenuOpen {
		m.actionMenuOpen = false
		m.actionPID = m.selectedPID
		switch msg.String() {
		case "k":
			m.pendingAction = actionKill
		case "d":
			m.pendingAction = actionDebug
		case "c":
			m.pendingAction = actionDebugChildren
		}
		return m, nil
	}

	switch msg.String() {
	case "esc", "q", "backspace":
		m.state = stateList
		m.selectedPID = 0
		m.detailFocus = focusDetail
		return m, m.refreshGroups()
	case "a":
		if _, ok := m.findProcess(m.selectedPID); ok {
			m.actionMenuOpen = true
		}
		return m, nil
	case "left", "h":
		m.detailFocus = focusDetail
		return m, nil
	case "right", "l":
		m.detailFocus = focusArgs
		return m, nil
	case "tab":
		if m.detailFocus == focusDetail {
			m.detailFocus = focusArgs
		} else {
			m.detailFocus = focusDetail
		}
		return m, nil
	}

	var cmd tea.Cmd
	if m.detailFocus == focusDetail {
		m.viewport, cmd = m.viewport.Update(msg)
	} else {
		m.argsViewport, cmd = m.argsViewport.Update(msg)
	}
	return m, cmd
}

func (m *MainModel) listPaneWidth() int {
	w := int(float64(m.width-6) * 0.7)
	if w < 10 {
		w = 10
	}
	return w
}

func (m *MainModel) resize(width, height int) {
	m.width = width
	m.height = height

	availableWidth := width - 6
	if availableWidth < 0 {
		availableWidth = 0
	}

	listHeight := height - 11
	if listHeight < 5 {
		listHeight = 5
	}

	paneWidth := m.listPaneWidth()
	tableWidth := paneWidth - 4
	if tableWidth < 10 {
		tableWidth = 10
	}

	fixedColumnsWidth := 51 // PID(8)+Role(10)+Instance(9)+Channel(8)+CPU(6)+Mem(10)
	pageWidth := tableWidth - fixedColumnsWidth - 14
	if pageWidth < 10 {
		pageWidth = 10
	}
	columns := m.getColumns()
	columns[6].Width = pageWidth
	m.table.SetColumns(columns)
	m.table.SetWidth(tableWidth)
	m.table.SetHeight(listHeight)

	m.treeViewport.Width = availableWidth - paneWidth - 4
	if m.treeViewport.Width < 10 {
		m.treeViewport.Width = 10
	}
	m.treeViewport.Height = listHeight - 2
	if m.treeViewport.Height < 0 {
		m.treeViewport.Height = 0
	}

	tabTableWidth := availableWidth - 2
	if tabTableWidth < 10 {
		tabTableWidth = 10
	}
	tabCols := tabColumns()
	tabCols[3].Width = tabTableWidth - 28 - 8 // Port(6)+PID(8)+Type(14)
	if tabCols[3].Width < 10 {
		tabCols[3].Width = 10
	}
	m.tabTable.SetColumns(tabCols)
	m.tabTable.SetWidth(tabTableWidth)
	m.tabTable.SetHeight(listHeight)

	vpHeight := height - 9
	if vpHeight < 0 {
		vpHeight = 0
	}
	detailWidth := int(float64(availableWidth) * 0.7)
	m.viewport.Width = detailWidth - 4
	if m.viewport.Width < 0 {
		m.viewport.Width = 0
	}
	m.viewport.Height = vpHeight
	m.argsViewport.Width = availableWidth - detailWidth - 4
	if m.argsViewport.Width < 0 {
		m.argsViewport.Width = 0
	}
	m.argsViewport.Height = vpHeight

	m.updateTreeViewport()
	if m.state == stateDetail {
		m.updateDetailViewport()
	}
}
