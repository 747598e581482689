package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

const appTitle = "tabwitr"

var (
	activeBorderColor = lipgloss.Color("#5f5fd7") // Purple/Blue
	dimBorderColor    = lipgloss.Color("#585858") // Dark Gray
	lightGray         = lipgloss.Color("#bcbcbc")
)

func (m MainModel) View() string {
	if m.quitting {
		return ""
	}
	if m.state == stateDetail {
		return m.detailView()
	}
	return m.listView()
}

func (m MainModel) outerStyle() lipgloss.Style {
	return baseStyle.
		Width(m.width-2).
		Height(m.height-2).
		Padding(0, 1)
}

// footer right-aligns the version after the help text when it fits.
func (m MainModel) footer(helpText string, showVersion bool) string {
	content := helpText
	if showVersion && m.opts.Version != "" {
		gap := m.width - 6 - lipgloss.Width(helpText) - lipgloss.Width(m.opts.Version)
		if gap > 0 {
			content = helpText + strings.Repeat(" ", gap) + m.opts.Version
		}
	}
	return footerStyle.Width(m.width - 4).Render(content)
}

func focusedTableStyles(focused bool) table.Styles {
	s := tableStyles()
	if focused {
		s.Header = tableHeaderStyle.BorderForeground(activeBorderColor)
	}
	return s
}

func (m MainModel) confirmText() string {
	switch m.pendingAction {
	case actionKill:
		return confirmStyle.Render(fmt.Sprintf("Terminate PID %d? [y]es / [n]o", m.actionPID))
	case actionDebug:
		return confirmStyle.Render(fmt.Sprintf("Attach debugger to PID %d? [y]es / [n]o", m.actionPID))
	case actionDebugChildren:
		return confirmStyle.Render(fmt.Sprintf("Attach debugger to PID %d and its children? [y]es / [n]o", m.actionPID))
	}
	return ""
}

func (m MainModel) listView() string {
	status := "Mode: Navigation (Press / to search)"
	inputView := m.input.View()
	if m.activeTab == tabTabs {
		inputView = m.tabInput.View()
	}
	switch {
	case m.pendingAction != actionNone:
		status = m.confirmText()
	case m.statusMsg != "":
		status = errorStyle.Render(m.statusMsg)
	case m.searching():
		status = "Mode: Searching (Press Esc/Enter to stop)"
	case m.enriching:
		status = "Mode: Navigation (querying debugging ports...)"
	}

	var mainContent, helpText string
	if m.activeTab == tabTabs {
		m.tabTable.SetStyles(focusedTableStyles(true))
		mainContent = m.tabTable.View()
		if len(m.tabTable.Rows()) == 0 {
			mainContent = lipgloss.JoinVertical(lipgloss.Left, mainContent,
				dimStyle.Render("No pages found. Browsers need --remote-debugging-port or a DevToolsActivePort file."))
		}
		helpText = fmt.Sprintf("Total: %d | Enter: Detail | k: Kill | t: Re-query | Esc/q: Quit | Up/Down: Scroll", len(m.tabTable.Rows()))
	} else {
		mainContent = m.processPane()
		helpText = fmt.Sprintf("Total: %d | Enter: Detail | k: Kill | r/t: Refresh/Tabs | p/o/i/c/m: Sort | Esc/q: Quit | Tab: Focus", len(m.filtered))
	}

	processesTab := inactiveTabStyle.Render("1. Processes")
	tabsTab := inactiveTabStyle.Render("2. Tabs")
	if m.activeTab == tabProcesses {
		processesTab = activeTabStyle.Render("1. Processes")
	} else {
		tabsTab = activeTabStyle.Render("2. Tabs")
	}

	header := lipgloss.JoinHorizontal(lipgloss.Top,
		titleStyle.Render(appTitle),
		processesTab,
		tabsTab,
	)

	return m.outerStyle().Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header,
			lipgloss.NewStyle().Height(1).Render(""),
			lipgloss.NewStyle().MarginBottom(1).PaddingLeft(1).Render(status),
			lipgloss.NewStyle().MarginBottom(1).PaddingLeft(1).Render(inputView),
			mainContent,
			lipgloss.NewStyle().Height(1).Render(""),
			m.footer(helpText, m.pendingAction == actionNone),
		),
	)
}

func (m MainModel) processPane() string {
	treeBorderColor := dimBorderColor
	treeHeaderColor := lightGray
	if m.listFocus == focusSide {
		treeBorderColor = activeBorderColor
		treeHeaderColor = activeBorderColor
	}

	treeContainerStyle := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(treeBorderColor).
		PaddingLeft(2).
		Height(m.table.Height())

	treeHeader := "Details"
	if p, ok := m.selectedProcess(); ok {
		treeHeader = fmt.Sprintf("PID %d", p.PID)
	}
	treeHeader = scrollIndicator(treeHeader, m.treeViewport)

	treeHeaderStyle := tableHeaderStyle.
		Width(m.treeViewport.Width).
		Foreground(treeHeaderColor).
		BorderForeground(treeBorderColor)

	m.table.SetStyles(focusedTableStyles(m.listFocus == focusMain))

	tableView := m.table.View()
	if len(m.filtered) == 0 && len(m.processes) == 0 {
		tableView = lipgloss.JoinVertical(lipgloss.Left, tableView,
			dimStyle.Render(fmt.Sprintf("No %s processes found.", m.familyName())))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(m.listPaneWidth()).Render(tableView),
		treeContainerStyle.Render(
			lipgloss.JoinVertical(lipgloss.Left,
				treeHeaderStyle.Render(treeHeader),
				lipgloss.NewStyle().PaddingLeft(1).Render(m.treeViewport.View()),
			),
		),
	)
}

func (m MainModel) familyName() string {
	if m.opts.Family == "" {
		return "browser"
	}
	return m.opts.Family
}

func (m MainModel) detailView() string {
	availableWidth := m.width - 6
	if availableWidth < 0 {
		availableWidth = 0
	}
	detailWidth := int(float64(availableWidth) * 0.7)
	argsWidth := availableWidth - detailWidth

	argsContainerStyle := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		PaddingLeft(1).
		Width(argsWidth).
		Height(m.viewport.Height + 2)

	detailHeader := tableHeaderStyle
	argsHeader := tableHeaderStyle
	if m.detailFocus == focusDetail {
		detailHeader = detailHeader.BorderForeground(activeBorderColor).Foreground(activeBorderColor)
		argsHeader = argsHeader.BorderForeground(dimBorderColor).Foreground(lightGray)
		argsContainerStyle = argsContainerStyle.BorderForeground(dimBorderColor)
	} else {
		detailHeader = detailHeader.BorderForeground(dimBorderColor).Foreground(lightGray)
		argsHeader = argsHeader.BorderForeground(activeBorderColor).Foreground(activeBorderColor)
		argsContainerStyle = argsContainerStyle.BorderForeground(activeBorderColor)
	}

	splitContent := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(detailWidth).Render(
			lipgloss.JoinVertical(lipgloss.Left,
				detailHeader.Width(m.viewport.Width).Render(scrollIndicator("Process Detail", m.viewport)),
				lipgloss.NewStyle().PaddingLeft(1).Render(m.viewport.View()),
			),
		),
		argsContainerStyle.Render(
			lipgloss.JoinVertical(lipgloss.Left,
				argsHeader.Width(m.argsViewport.Width).Render(scrollIndicator("Command Line", m.argsViewport)),
				lipgloss.NewStyle().PaddingLeft(1).Render(m.argsViewport.View()),
			),
		),
	)

	pidStyle := lipgloss.NewStyle().
		Background(lipgloss.Color("#22aa22")). // Green
		Foreground(lipgloss.Color("#ffffff")). // White
		Padding(0, 1).
		Bold(true)

	var helpText string
	switch {
	case m.actionMenuOpen:
		helpText = actionMenuStyle.Render("Esc/q: cancel | Actions:  [k]ill  [d]ebug  debug with [c]hildren")
	case m.pendingAction != actionNone:
		helpText = m.confirmText()
	case m.statusMsg != "":
		helpText = errorStyle.Render(m.statusMsg)
	default:
		helpText = "a: Actions | Esc/q: Back | Tab: Focus | Up/Down: Scroll"
	}
	showVersion := !m.actionMenuOpen && m.pendingAction == actionNone && m.statusMsg == ""

	return m.outerStyle().Render(
		lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.JoinHorizontal(lipgloss.Center,
				titleStyle.Render(appTitle),
				pidStyle.Render(fmt.Sprintf("PID %d", m.selectedPID)),
			),
			lipgloss.NewStyle().Height(1).Render(""),
			splitContent,
			lipgloss.NewStyle().Height(1).Render(""),
			m.footer(helpText, showVersion),
		),
	)
}
