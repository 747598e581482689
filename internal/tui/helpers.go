package tui

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
)

var ansiPattern = regexp.MustCompile(`[\x1b\x9b][[\\]()#;?]*(?:(?:(?:[a-zA-Z\d]*(?:;[a-zA-Z\d]*)*)?[\x07])|(?:(?:\d{1,4}(?:;\d{0,4})*)?[\dA-PRZcf-ntqry=><~]))`)

func stripAnsi(str string) string {
	return ansiPattern.ReplaceAllString(str, "")
}

// rowPID reads the pid column of a table row.
func rowPID(row table.Row, col int) int {
	if col >= len(row) {
		return 0
	}
	pid, err := strconv.Atoi(strings.TrimSpace(row[col]))
	if err != nil {
		return 0
	}
	return pid
}

func scrollIndicator(title string, vp viewport.Model) string {
	switch {
	case !vp.AtTop() && !vp.AtBottom():
		return title + " ↕"
	case !vp.AtTop():
		return title + " ↑"
	case !vp.AtBottom():
		return title + " ↓"
	}
	return title
}
