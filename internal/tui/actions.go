package tui

import (
	"runtime"

	tea "github.com/charmbracelet/bubbletea"

	procpkg "github.com/pranshuparmar/tabwitr/internal/proc"
)

type terminatedMsg struct {
	pid int
	err error
}

type debuggerMsg struct {
	pid  int
	path string
	err  error
}

func (m MainModel) terminate(pid int) tea.Cmd {
	terminate := m.opts.Terminate
	return func() tea.Msg {
		return terminatedMsg{pid: pid, err: terminate(pid)}
	}
}

// debug attaches a native debugger. A terminal debugger suspends the TUI
// until it exits; GUI debuggers are started and left running.
func (m MainModel) debug(pid int, includeChildren bool) tea.Cmd {
	d, err := procpkg.FindDebugger(runtime.GOOS, pid, includeChildren, m.opts.LookPath)
	if err != nil {
		return func() tea.Msg { return debuggerMsg{pid: pid, err: err} }
	}

	cmd := procpkg.DebuggerCommand(d)
	if d.Interactive {
		return tea.ExecProcess(cmd, func(err error) tea.Msg {
			return debuggerMsg{pid: pid, path: d.Path, err: err}
		})
	}
	return func() tea.Msg {
		_, err := procpkg.StartDetached(cmd)
		return debuggerMsg{pid: pid, path: d.Path, err: err}
	}
}
