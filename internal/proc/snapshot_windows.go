//go:build windows

package proc

import (
	"fmt"
	"os/exec"
	"strings"

	"golang.org/x/sys/windows"

	"github.com/pranshuparmar/tabwitr/pkg/model"
)

const win32ProcessQuery = "Get-CimInstance -ClassName Win32_Process | Select-Object " +
	"Name,ProcessId,ParentProcessId,ExecutablePath,CommandLine,WorkingSetSize," +
	"@{n='CPUSeconds';e={($_.KernelModeTime+$_.UserModeTime)/1e7}}," +
	"@{n='AgeSeconds';e={((Get-Date)-$_.CreationDate).TotalSeconds}} | " +
	"ConvertTo-Csv -NoTypeInformation"

// ListProcesses returns every process reported by Win32_Process.
func ListProcesses() ([]model.Process, error) {
	cmd := exec.Command("powershell", "-NoProfile", "-NonInteractive", win32ProcessQuery)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("powershell process list: %w", err)
	}
	return parseWin32Processes(out, splitCommandLine)
}

// splitCommandLine applies the CommandLineToArgvW quoting rules.
func splitCommandLine(cmdline string) []string {
	args, err := windows.DecomposeCommandLine(cmdline)
	if err != nil {
		return strings.Fields(cmdline)
	}
	return args
}
