package model

// Process is one browser-family process taken from a single OS snapshot.
type Process struct {
	PID  int `json:"pid"`
	PPID int `json:"parent_pid,omitempty"` // 0 when the OS reports no parent

	Name string   `json:"name"`
	Exe  string   `json:"exe_path"`
	Args []string `json:"cmd_args"`

	Role         Role         `json:"process_type"`
	InstanceType InstanceType `json:"instance_type"`
	URL          string       `json:"url,omitempty"`

	MemoryRSS  uint64  `json:"memory_bytes"`
	CPUPercent float64 `json:"cpu_percent"`
}

// ProcessGroup is a logical browser instance: a root process and everything below it.
type ProcessGroup struct {
	RootPID      int          `json:"browser_pid"`
	RootExe      string       `json:"browser_exe"`
	Channel      Channel      `json:"channel"`
	InstanceType InstanceType `json:"instance_type"`
	HostApp      string       `json:"host_app,omitempty"`
	Processes    []Process    `json:"processes"`
}

// Root returns the group's root process record, if it is part of the snapshot.
func (g ProcessGroup) Root() (Process, bool) {
	for _, p := range g.Processes {
		if p.PID == g.RootPID {
			return p, true
		}
	}
	return Process{}, false
}

// MemoryRSS sums resident memory across the group.
func (g ProcessGroup) MemoryRSS() uint64 {
	var total uint64
	for _, p := range g.Processes {
		total += p.MemoryRSS
	}
	return total
}
