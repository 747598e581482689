package target

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pranshuparmar/tabwitr/pkg/model"
)

func procs() []model.Process {
	return []model.Process{
		{PID: 1, Name: "init"},
		{PID: 10, PPID: 1, Name: "bash"},
		{PID: 20, PPID: 10, Name: "tabwitr", Args: []string{"kill", "msedge"}},
		{PID: 100, PPID: 1, Name: "msedge.exe", Exe: `C:\Edge\msedge.exe`},
		{PID: 101, PPID: 100, Name: "msedge.exe", Exe: `C:\Edge\msedge.exe`, Args: []string{"--type=renderer"}},
		{PID: 200, PPID: 1, Name: "msedgewebview2.exe"},
		{PID: 300, PPID: 10, Name: "grep", Args: []string{"msedge"}},
	}
}

func TestResolvePID(t *testing.T) {
	pids, err := Resolve("4242", nil, 20, false)
	require.NoError(t, err)
	assert.Equal(t, []int{4242}, pids)

	_, err = Resolve("-3", nil, 20, false)
	assert.Error(t, err)
}

func TestResolveName(t *testing.T) {
	tests := []struct {
		name  string
		ref   string
		exact bool
		want  []int
	}{
		{"substring skips self and grep", "msedge", false, []int{100, 101, 200}},
		{"exact name without extension", "msedge", true, []int{100, 101}},
		{"exact argument", "--type=renderer", true, []int{101}},
		{"case insensitive", "MSEDGEWEBVIEW2", false, []int{200}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pids, err := Resolve(tt.ref, procs(), 20, tt.exact)
			require.NoError(t, err)
			assert.Equal(t, tt.want, pids)
		})
	}
}

func TestResolveExcludesAncestry(t *testing.T) {
	_, err := Resolve("bash", procs(), 20, true)
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestResolveOne(t *testing.T) {
	pid, err := ResolveOne("renderer", procs(), 20, false)
	require.NoError(t, err)
	assert.Equal(t, 101, pid)

	_, err = ResolveOne("msedge", procs(), 20, true)
	require.ErrorIs(t, err, ErrAmbiguous)
	assert.Contains(t, err.Error(), "100, 101")

	_, err = ResolveOne("firefox", procs(), 20, false)
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestAncestryStopsOnCycle(t *testing.T) {
	cyclic := []model.Process{{PID: 5, PPID: 6}, {PID: 6, PPID: 5}}
	got := ancestry(cyclic, 5)
	assert.Equal(t, map[int]bool{5: true, 6: true}, got)
}
