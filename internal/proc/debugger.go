package proc

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strconv"
)

// ErrNoDebugger is returned when none of the known debuggers is installed.
var ErrNoDebugger = errors.New("no debugger found; install WinDbg Preview (windbgx), WinDbg (windbg) or Visual Studio (vsjitdebugger)")

// Debugger is a resolved debugger invocation.
type Debugger struct {
	Path string
	Args []string
	// Interactive debuggers share the caller's terminal and are waited on.
	Interactive bool
}

type windowsDebugger struct {
	name           string
	followChildren bool
}

var windowsDebuggers = []windowsDebugger{
	{"windbgx.exe", true},
	{"windbg.exe", true},
	{"vsjitdebugger.exe", false},
}

// FindDebugger picks the debugger to attach to pid on goos. On Windows the
// WinDbg variants also follow child processes when includeChildren is set.
func FindDebugger(goos string, pid int, includeChildren bool, lookPath func(string) (string, error)) (Debugger, error) {
	if goos != "windows" {
		path, err := lookPath("lldb")
		if err != nil {
			return Debugger{}, fmt.Errorf("find lldb: %w", err)
		}
		return Debugger{Path: path, Args: []string{"-p", strconv.Itoa(pid)}, Interactive: true}, nil
	}

	for _, d := range windowsDebuggers {
		path, err := lookPath(d.name)
		if err != nil {
			continue
		}
		args := []string{"-p", strconv.Itoa(pid)}
		if includeChildren && d.followChildren {
			args = append(args, "-o")
		}
		return Debugger{Path: path, Args: args}, nil
	}
	return Debugger{}, ErrNoDebugger
}

// DebuggerCommand builds the command that runs d. Interactive debuggers are
// wired to the caller's stdio.
func DebuggerCommand(d Debugger) *exec.Cmd {
	cmd := exec.Command(d.Path, d.Args...)
	if d.Interactive {
		cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
	}
	return cmd
}

// StartDetached starts cmd and releases it so it outlives the caller,
// returning the pid it got.
func StartDetached(cmd *exec.Cmd) (int, error) {
	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("launch %s: %w", cmd.Path, err)
	}
	pid := cmd.Process.Pid
	return pid, cmd.Process.Release()
}

// LaunchDebugger attaches a native debugger to pid. GUI debuggers are left
// running; a terminal debugger takes over stdio until it exits.
func LaunchDebugger(pid int, includeChildren bool) (Debugger, error) {
	d, err := FindDebugger(runtime.GOOS, pid, includeChildren, exec.LookPath)
	if err != nil {
		return d, err
	}

	cmd := DebuggerCommand(d)
	if !d.Interactive {
		_, err := StartDetached(cmd)
		return d, err
	}
	if err := cmd.Run(); err != nil {
		return d, fmt.Errorf("run %s: %w", d.Path, err)
	}
	return d, nil
}
