package proc

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// ErrUnknownPreset is returned for a preset key that is not in FlagPresets.
var ErrUnknownPreset = errors.New("unknown flag preset")

// FlagPreset is a named set of browser command-line flags.
type FlagPreset struct {
	Key   string   `json:"key"`
	Name  string   `json:"name"`
	Flags []string `json:"flags"`
}

// FlagPresets are the built-in presets offered by launch.
var FlagPresets = []FlagPreset{
	{"no-first-run", "No First Run", []string{"--no-first-run"}},
	{"no-browser-check", "No Browser Check", []string{"--no-default-browser-check"}},
	{"no-default-apps", "No Default Apps", []string{"--disable-default-apps"}},
	{"no-sync", "No Sync", []string{"--disable-sync"}},
	{"disable-gpu", "Disable GPU", []string{"--disable-gpu"}},
	{"remote-debugging", "Remote Debugging", []string{"--remote-debugging-port=9222"}},
	{"inprivate", "Incognito", []string{"--inprivate"}},
	{"no-extensions", "Disable Extensions", []string{"--disable-extensions"}},
	{"verbose-logging", "Verbose Logging", []string{"--enable-logging", "--v=1"}},
	{"webrtc-logging", "WebRTC Logging", []string{"--enable-logging", "--vmodule=*/webrtc/*=1"}},
}

// FindPreset looks a preset up by key or display name, ignoring case.
func FindPreset(name string) (FlagPreset, bool) {
	for _, p := range FlagPresets {
		if strings.EqualFold(p.Key, name) || strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return FlagPreset{}, false
}

// LaunchOptions describes one browser launch.
type LaunchOptions struct {
	Exe     string
	Presets []string
	// DebugPort adds --remote-debugging-port when non-zero.
	DebugPort int
	// TempProfile creates a fresh --user-data-dir under ProfileParent
	// (the system temp dir when empty).
	TempProfile   bool
	ProfileParent string
	// Flags are passed through after the generated ones.
	Flags []string
}

// Launched reports a started browser.
type Launched struct {
	PID         int      `json:"pid"`
	Exe         string   `json:"exe"`
	Args        []string `json:"args"`
	UserDataDir string   `json:"userDataDir,omitempty"`
}

// Launcher starts browsers detached from the caller.
type Launcher struct {
	LookPath func(string) (string, error)
	Start    func(*exec.Cmd) (int, error)
}

func DefaultLauncher() Launcher {
	return Launcher{LookPath: exec.LookPath, Start: StartDetached}
}

// LaunchArgs expands presets and options into the browser argument list.
// Repeated flags are kept once, first occurrence wins.
func LaunchArgs(opts LaunchOptions, userDataDir string) ([]string, error) {
	var args []string
	for _, name := range opts.Presets {
		p, ok := FindPreset(name)
		if !ok {
			return nil, fmt.Errorf("%w %q", ErrUnknownPreset, name)
		}
		args = append(args, p.Flags...)
	}
	if opts.DebugPort > 0 {
		args = append(args, "--remote-debugging-port="+strconv.Itoa(opts.DebugPort))
	}
	if userDataDir != "" {
		args = append(args, "--user-data-dir="+userDataDir)
	}
	args = append(args, opts.Flags...)

	seen := make(map[string]bool, len(args))
	out := args[:0]
	for _, a := range args {
		if seen[a] {
			continue
		}
		seen[a] = true
		out = append(out, a)
	}
	return out, nil
}

// TempProfileDir creates an empty browser profile directory under parent.
func TempProfileDir(parent string) (string, error) {
	dir, err := os.MkdirTemp(parent, "tabwitr-profile-")
	if err != nil {
		return "", fmt.Errorf("create profile dir: %w", err)
	}
	return dir, nil
}

// Launch starts the browser described by opts and leaves it running.
func (l Launcher) Launch(opts LaunchOptions) (Launched, error) {
	path, err := l.LookPath(opts.Exe)
	if err != nil {
		return Launched{}, fmt.Errorf("find %s: %w", opts.Exe, err)
	}
	// validate presets before touching the filesystem
	if _, err := LaunchArgs(opts, ""); err != nil {
		return Launched{}, err
	}

	var dir string
	if opts.TempProfile {
		if dir, err = TempProfileDir(opts.ProfileParent); err != nil {
			return Launched{}, err
		}
	}
	args, err := LaunchArgs(opts, dir)
	if err != nil {
		return Launched{}, err
	}

	pid, err := l.Start(exec.Command(path, args...))
	if err != nil {
		if dir != "" {
			_ = os.RemoveAll(dir)
		}
		return Launched{}, err
	}
	return Launched{PID: pid, Exe: path, Args: args, UserDataDir: dir}, nil
}
