package proc

import (
	"encoding/binary"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStat(t *testing.T) {
	stat := "4242 (msedge (beta) x) S 4200 4242 4242 0 -1 4194560 100 0 0 0 " +
		"150 50 0 0 20 0 30 0 12345 1048576 256 18446744073709551615 0 0 0 0 0 0 0 0 0 0 0 0 17 3 0 0 0 0 0\n"

	info, err := parseStat([]byte(stat))

	require.NoError(t, err)
	assert.Equal(t, "msedge (beta) x", info.comm)
	assert.Equal(t, 4200, info.ppid)
	assert.Equal(t, uint64(150), info.utime)
	assert.Equal(t, uint64(50), info.stime)
	assert.Equal(t, uint64(12345), info.start)
	assert.Equal(t, uint64(256), info.rssPages)
}

func TestParseStatInvalid(t *testing.T) {
	for _, stat := range []string{"", "42 no parens", "42 (x) S", "42 (x) S notanumber 1 1 1 1 1 1 1 1 1 1 1 1 1 1 1 1 1 1 1 1 1"} {
		_, err := parseStat([]byte(stat))
		assert.Error(t, err, stat)
	}
}

func TestSplitCmdline(t *testing.T) {
	got := splitCmdline([]byte("/opt/microsoft/msedge/msedge\x00--type=renderer\x00--lang=en-US\x00"))
	assert.Equal(t, []string{"/opt/microsoft/msedge/msedge", "--type=renderer", "--lang=en-US"}, got)

	assert.Nil(t, splitCmdline(nil))
	assert.Nil(t, splitCmdline([]byte("\x00")))
}

func TestParsePSLine(t *testing.T) {
	p, ok := parsePSLine("  812   1   2.5  20480 /Applications/Microsoft Edge.app/Contents/MacOS/Microsoft Edge")

	require.True(t, ok)
	assert.Equal(t, 812, p.PID)
	assert.Equal(t, 1, p.PPID)
	assert.Equal(t, 2.5, p.CPUPercent)
	assert.Equal(t, uint64(20480*1024), p.MemoryRSS)
	assert.Equal(t, "/Applications/Microsoft Edge.app/Contents/MacOS/Microsoft Edge", p.Exe)
	assert.Equal(t, "Microsoft Edge", p.Name)

	_, ok = parsePSLine("x 1 0.0 1 foo")
	assert.False(t, ok)
	_, ok = parsePSLine("1 2 0.0")
	assert.False(t, ok)
}

func TestParseProcArgs(t *testing.T) {
	var buf []byte
	buf = binary.LittleEndian.AppendUint32(buf, 2)
	buf = append(buf, "/Applications/Microsoft Edge.app/Contents/MacOS/Microsoft Edge\x00\x00\x00\x00"...)
	buf = append(buf, "Microsoft Edge\x00--remote-debugging-port=9222\x00HOME=/Users/me\x00"...)

	exe, args, err := parseProcArgs(buf)

	require.NoError(t, err)
	assert.Equal(t, "/Applications/Microsoft Edge.app/Contents/MacOS/Microsoft Edge", exe)
	assert.Equal(t, []string{"Microsoft Edge", "--remote-debugging-port=9222"}, args)

	_, _, err = parseProcArgs([]byte{1, 0})
	assert.Error(t, err)
}

func TestParseWin32Processes(t *testing.T) {
	out := strings.Join([]string{
		`"Name","ProcessId","ParentProcessId","ExecutablePath","CommandLine","WorkingSetSize","CPUSeconds","AgeSeconds"`,
		`"msedge.exe","100","4","C:\Edge\msedge.exe","C:\Edge\msedge.exe --profile-directory=Default","1048576","5","100"`,
		`"msedge.exe","101","100","C:\Edge\msedge.exe","C:\Edge\msedge.exe --type=renderer","2048","0,5","10"`,
		`"System Idle Process","0","0","","","8192","",""`,
		`"broken","x","0","","","",""`,
	}, "\r\n")

	procs, err := parseWin32Processes([]byte(out), strings.Fields)

	require.NoError(t, err)
	require.Len(t, procs, 3)
	assert.Equal(t, 100, procs[0].PID)
	assert.Equal(t, 4, procs[0].PPID)
	assert.Equal(t, `C:\Edge\msedge.exe`, procs[0].Exe)
	assert.Equal(t, []string{`C:\Edge\msedge.exe`, "--profile-directory=Default"}, procs[0].Args)
	assert.Equal(t, uint64(1048576), procs[0].MemoryRSS)
	assert.InDelta(t, 5.0, procs[0].CPUPercent, 0.001)
	assert.InDelta(t, 5.0, procs[1].CPUPercent, 0.001)
	assert.Empty(t, procs[2].Args)
	assert.Zero(t, procs[2].CPUPercent)
}

func TestParseWin32ProcessesHeaders(t *testing.T) {
	_, err := parseWin32Processes([]byte("\"Foo\",\"Bar\"\r\n\"1\",\"2\"\r\n"), strings.Fields)
	assert.Error(t, err)

	procs, err := parseWin32Processes([]byte(""), strings.Fields)
	require.NoError(t, err)
	assert.Empty(t, procs)
}
