package devtools

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	debugPortFlag   = "--remote-debugging-port="
	userDataDirFlag = "--user-data-dir="

	// ActivePortFile is written by the browser into its user data directory
	// once the debugging endpoint is listening.
	ActivePortFile = "DevToolsActivePort"
)

// DebugPort returns the port given by an explicit --remote-debugging-port argument.
func DebugPort(args []string) (int, bool) {
	for _, arg := range args {
		value, ok := strings.CutPrefix(arg, debugPortFlag)
		if !ok {
			continue
		}
		if port, ok := parsePort(value); ok {
			return port, true
		}
	}
	return 0, false
}

// UserDataDir returns the --user-data-dir argument with surrounding quotes removed.
func UserDataDir(args []string) (string, bool) {
	for _, arg := range args {
		if dir, ok := strings.CutPrefix(arg, userDataDirFlag); ok {
			return strings.Trim(dir, `"`), true
		}
	}
	return "", false
}

// ReadActivePort reads the port from the first line of dir's DevToolsActivePort file.
func ReadActivePort(dir string) (int, bool) {
	f, err := os.Open(filepath.Join(dir, ActivePortFile))
	if err != nil {
		return 0, false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return 0, false
	}
	return parsePort(scanner.Text())
}

// ResolvePort finds the debugging port of a browser root process, first from
// its arguments and then from the sentinel file in its user data directory.
func ResolvePort(args []string) (int, bool) {
	if port, ok := DebugPort(args); ok {
		return port, true
	}
	dir, ok := UserDataDir(args)
	if !ok || dir == "" {
		return 0, false
	}
	return ReadActivePort(dir)
}

func parsePort(s string) (int, bool) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 16)
	if err != nil || n == 0 {
		return 0, false
	}
	return int(n), true
}
