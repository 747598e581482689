package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pranshuparmar/tabwitr/pkg/model"
)

func sampleGroups() []model.ProcessGroup {
	return []model.ProcessGroup{
		{
			RootPID:      100,
			RootExe:      `C:\Program Files (x86)\Microsoft\Edge\Application\msedge.exe`,
			Channel:      model.ChannelStable,
			InstanceType: model.InstanceBrowser,
			Processes: []model.Process{
				{PID: 100, Role: model.RoleBrowser, MemoryRSS: 1024 * 1024},
				{PID: 101, PPID: 100, Role: model.RoleRenderer, MemoryRSS: 2048},
				{PID: 102, PPID: 100, Role: model.RoleGPU, URL: "https://app.test"},
			},
		},
		{
			RootPID:      200,
			RootExe:      "/opt/microsoft/msedge/msedgewebview2",
			Channel:      model.ChannelBeta,
			InstanceType: model.InstanceWebView2,
			HostApp:      "Teams.exe",
			Processes:    []model.Process{{PID: 200, Role: model.RoleBrowser}},
		},
	}
}

func TestPrintGroups(t *testing.T) {
	var buf bytes.Buffer
	pages := map[int][]model.PageInfo{
		101: {{ProcessID: 101, Label: "Example \u2014 https://example.com"}},
	}

	PrintGroups(&buf, sampleGroups(), pages, false)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "msedge.exe (pid 100)  [Browser, Stable, 3 processes, 1.0 MiB]", lines[0])
	assert.Equal(t, "├─ Renderer (pid 101)  0.0% 2.0 KiB", lines[1])
	assert.Equal(t, "│     • Example \u2014 https://example.com", lines[2])
	assert.Equal(t, "└─ GPU (pid 102)  0.0% 0 B  https://app.test", lines[3])
	assert.Equal(t, "", lines[4])
	assert.Equal(t, "msedgewebview2 (pid 200)  [WebView2, Beta, host Teams.exe, 1 processes, 0 B]", lines[5])
}

func TestPrintGroupsColor(t *testing.T) {
	var buf bytes.Buffer
	PrintGroups(&buf, sampleGroups()[:1], nil, true)
	assert.Contains(t, buf.String(), colorGreen+"msedge.exe"+colorReset)
	assert.Contains(t, buf.String(), colorMagenta+"└─ "+colorReset)
}

func TestPrintShort(t *testing.T) {
	var buf bytes.Buffer
	PrintShort(&buf, sampleGroups(), map[int][]model.PageInfo{101: {{ProcessID: 101}}, 102: {{ProcessID: 102}}}, false)
	assert.Equal(t,
		"msedge.exe (pid 100) → Browser Stable, 3 processes, 2 tabs\n"+
			"msedgewebview2 (pid 200) → WebView2 Beta, 1 processes, 0 tabs\n",
		buf.String())
}

func TestPrintTabs(t *testing.T) {
	var buf bytes.Buffer
	PrintTabs(&buf, map[int][]model.PageInfo{
		9333: {{ProcessID: 7, Label: "https://sw.test/sw.js", TargetType: "Service Worker"}},
		9222: {
			{ProcessID: 101, Label: "A \u2014 https://a.test"},
			{ProcessID: 102, Label: "https://b.test"},
		},
	}, false)

	assert.Equal(t, "port 9222\n"+
		"├─ pid 101  A \u2014 https://a.test\n"+
		"└─ pid 102  https://b.test\n"+
		"port 9333\n"+
		"└─ pid 7  https://sw.test/sw.js (Service Worker)\n", buf.String())
}

func TestPrintTargets(t *testing.T) {
	var buf bytes.Buffer
	PrintTargets(&buf, []model.DebugTarget{
		{ID: "A1", Type: "page", Title: "Example", URL: "https://example.com", PID: 4242},
		{ID: "B2", Type: "service_worker", URL: "https://example.com/sw.js"},
	})
	assert.Equal(t,
		`type="page" processId=4242 url="https://example.com" title="Example" id="A1"`+"\n"+
			`type="service_worker" processId=none url="https://example.com/sw.js" title="" id="B2"`+"\n",
		buf.String())
}

func TestToJSON(t *testing.T) {
	out, err := ToJSON(model.Result{Groups: sampleGroups()[1:]})
	require.NoError(t, err)
	assert.Contains(t, out, `"browser_pid": 200`)
	assert.Contains(t, out, `"host_app": "Teams.exe"`)
	assert.NotContains(t, out, `"tabs"`)
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", FormatBytes(512))
	assert.Equal(t, "1.5 KiB", FormatBytes(1536))
	assert.Equal(t, "3.0 GiB", FormatBytes(3<<30))
}
