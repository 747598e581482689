package tui

import (
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
)

// Screen rows of the list layout.
const (
	rowTabs   = 1
	rowSearch = 5
	rowTable  = 7
)

func (m MainModel) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	m.statusMsg = "" // clear any transient error on interaction
	if msg.Action != tea.MouseActionPress && msg.Action != tea.MouseActionMotion && msg.Action != tea.MouseActionRelease {
		return m, nil
	}

	// Required for Windows: isClick is true only for real pointer presses (not scroll wheel).
	isWheel := msg.Button == tea.MouseButtonWheelUp ||
		msg.Button == tea.MouseButtonWheelDown ||
		msg.Button == tea.MouseButtonWheelLeft ||
		msg.Button == tea.MouseButtonWheelRight
	isClick := msg.Action == tea.MouseActionPress && !isWheel
	isDoubleClick := isClick && m.trackClick(msg.X, msg.Y)

	// Title click goes home
	if msg.Y == rowTabs && isClick && msg.X >= 1 && msg.X <= 9 {
		m.state = stateList
		m.activeTab = tabProcesses
		return m, m.refreshGroups()
	}

	if m.state == stateDetail {
		return m.handleDetailMouse(msg, isClick)
	}

	if isClick && msg.Y != rowSearch {
		m.input.Blur()
		m.tabInput.Blur()
	}

	if msg.Y == rowTabs && isClick {
		if msg.X >= 10 && msg.X < 24 { // "1. Processes"
			m.activeTab = tabProcesses
		} else if msg.X >= 24 && msg.X < 33 { // "2. Tabs"
			m.activeTab = tabTabs
			m.listFocus = focusMain
		}
		return m, nil
	}

	if msg.Y == rowSearch && isClick {
		if m.activeTab == tabTabs {
			m.tabInput.Focus()
		} else {
			m.input.Focus()
		}
		return m, nil
	}

	if msg.Y < rowTable {
		return m, nil
	}
	contentX := msg.X - 2
	if contentX < 0 {
		return m, nil
	}

	if m.activeTab == tabTabs {
		if isWheel {
			var cmd tea.Cmd
			m.tabTable, cmd = m.tabTable.Update(wheelKey(msg.Button))
			return m, cmd
		}
		y := msg.Y - rowTable
		if isClick && y > 0 {
			selectRowAtLine(&m.tabTable, y, 3)
			if isDoubleClick {
				return m.openDetail(rowPID(m.tabTable.SelectedRow(), 1))
			}
		}
		return m, nil
	}

	paneWidth := m.listPaneWidth()
	if contentX >= paneWidth {
		if isClick {
			m.listFocus = focusSide
		}
		var cmd tea.Cmd
		treeMsg := msg
		treeMsg.X -= 6 + paneWidth
		treeMsg.Y -= rowTable + 1
		if treeMsg.X >= 0 && treeMsg.Y >= 0 {
			m.treeViewport, cmd = m.treeViewport.Update(treeMsg)
		}
		return m, cmd
	}

	if isClick {
		m.listFocus = focusMain
		if msg.Y == rowTable {
			m.handleProcessHeaderClick(contentX)
			m.updateTreeViewport()
			return m, nil
		}
	}

	prev := m.table.Cursor()
	if isWheel {
		// Convert wheel to key so the table scrolls by one row
		// without jumping the cursor to the mouse Y position.
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(wheelKey(msg.Button))
		if m.table.Cursor() != prev {
			m.updateTreeViewport()
		}
		return m, cmd
	}

	y := msg.Y - rowTable
	if isClick && y > 0 && y <= m.table.Height() {
		selectRowAtLine(&m.table, y, 1)
		if m.table.Cursor() != prev {
			m.updateTreeViewport()
		}
		if isDoubleClick {
			if p, ok := m.selectedProcess(); ok {
				return m.openDetail(p.PID)
			}
		}
	}
	return m, nil
}

func (m MainModel) handleDetailMouse(msg tea.MouseMsg, isClick bool) (tea.Model, tea.Cmd) {
	availableWidth := m.width - 6
	if availableWidth < 0 {
		availableWidth = 0
	}
	detailWidth := int(float64(availableWidth) * 0.7)

	if isClick {
		if msg.X-2 < detailWidth {
			m.detailFocus = focusDetail
		} else {
			m.detailFocus = focusArgs
		}
	}

	var cmd tea.Cmd
	detailMsg := msg
	detailMsg.Y -= 3
	if m.detailFocus == focusDetail {
		detailMsg.X--
		if detailMsg.X >= 0 {
			m.viewport, cmd = m.viewport.Update(detailMsg)
		}
	} else {
		detailMsg.X -= detailWidth + 2
		if detailMsg.X >= 0 {
			m.argsViewport, cmd = m.argsViewport.Update(detailMsg)
		}
	}
	return m, cmd
}

// trackClick records a press and reports whether it completes a double click.
func (m *MainModel) trackClick(x, y int) bool {
	double := false
	if time.Since(m.lastClickTime) < 500*time.Millisecond {
		dx, dy := m.lastClickX-x, m.lastClickY-y
		if dx < 0 {
			dx = -dx
		}
		if dy < 0 {
			dy = -dy
		}
		double = dx <= 2 && dy <= 1
	}
	m.lastClickTime = time.Now()
	m.lastClickX = x
	m.lastClickY = y
	return double
}

func wheelKey(b tea.MouseButton) tea.KeyMsg {
	if b == tea.MouseButtonWheelUp {
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyDown}
}

// selectRowAtLine moves the cursor to the row rendered at line y of the
// table view, matching on the first keyCols columns.
func selectRowAtLine(t *table.Model, y, keyCols int) bool {
	lines := strings.Split(t.View(), "\n")
	if y < 0 || y >= len(lines) {
		return false
	}
	fields := strings.Fields(stripAnsi(lines[y]))
	for i, row := range t.Rows() {
		n := min(keyCols, len(row))
		key := strings.Fields(strings.Join(row[:n], " "))
		if len(key) == 0 || len(key) > len(fields) {
			continue
		}
		if slices.Equal(key, fields[:len(key)]) {
			t.SetCursor(i)
			return true
		}
	}
	return false
}

// returns the column index at x pixels, or -1 if not found.
func (m *MainModel) getColumnAtX(x int, cols []table.Column) int {
	currentX := 0
	for i, col := range cols {
		colWidth := col.Width + 2
		if x >= currentX && x < currentX+colWidth {
			return i
		}
		currentX += colWidth
	}
	return -1
}

var headerSortColumns = map[int]string{
	0: "pid",
	1: "role",
	2: "instance",
	4: "cpu",
	5: "mem",
}

func (m *MainModel) handleProcessHeaderClick(x int) {
	col, ok := headerSortColumns[m.getColumnAtX(x, m.table.Columns())]
	if ok {
		m.setSort(col)
	}
}
