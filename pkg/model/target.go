package model

// DebugTarget is a debuggable surface as reported by a remote-debugging endpoint.
type DebugTarget struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Title string `json:"title,omitempty"`
	URL   string `json:"url,omitempty"`
	PID   int    `json:"processId,omitempty"`
}

// PageInfo is an enriched target, tied to the OS process that renders it.
type PageInfo struct {
	ProcessID  int    `json:"process_id,omitempty"` // 0 until resolved
	Label      string `json:"url"`
	TargetType string `json:"target_type,omitempty"` // empty for plain pages
}

func (p PageInfo) Resolved() bool { return p.ProcessID > 0 }

// Result bundles a grouped listing with the tabs discovered for it.
type Result struct {
	Groups []ProcessGroup     `json:"groups"`
	Tabs   map[int][]PageInfo `json:"tabs,omitempty"`
}

// PagesByPID flattens the port map into per-process page lists.
func (r Result) PagesByPID() map[int][]PageInfo {
	return IndexPages(r.Tabs)
}

// IndexPages regroups a port → pages map by owning process id.
func IndexPages(tabs map[int][]PageInfo) map[int][]PageInfo {
	byPID := make(map[int][]PageInfo)
	for _, pages := range tabs {
		for _, p := range pages {
			if !p.Resolved() {
				continue
			}
			byPID[p.ProcessID] = append(byPID[p.ProcessID], p)
		}
	}
	return byPID
}
