package classify

import (
	"strings"

	"github.com/pranshuparmar/tabwitr/pkg/model"
)

// evidence is the lowercased material instance rules look at.
type evidence struct {
	args string
	exe  string
}

type instanceRule struct {
	match func(evidence) bool
	typ   model.InstanceType
}

var webviewArgMarkers = []string{
	"--webview-exe-name",
	"--embedded-browser-webview",
	"--webview2",
}

const webviewExeMarker = "webview2"

// assistantMarkers refine a webview host into the assistant sidecar.
var assistantMarkers = []string{"copilot", "m365"}

// sidecarMarker alone identifies the assistant sidecar outside a webview host.
const sidecarMarker = "copilot"

func isWebView(e evidence) bool {
	return containsAny(e.args, webviewArgMarkers) || strings.Contains(e.exe, webviewExeMarker)
}

var instanceRules = []instanceRule{
	{func(e evidence) bool { return isWebView(e) && containsAny(e.args, assistantMarkers) }, model.InstanceCopilot},
	{isWebView, model.InstanceWebView2},
	{func(e evidence) bool { return strings.Contains(e.args, sidecarMarker) }, model.InstanceCopilot},
}

// InstanceType classifies the instance a process belongs to.
func InstanceType(args []string, exe string) model.InstanceType {
	e := evidence{
		args: strings.ToLower(strings.Join(args, " ")),
		exe:  strings.ToLower(exe),
	}
	for _, r := range instanceRules {
		if r.match(e) {
			return r.typ
		}
	}
	return model.InstanceBrowser
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
