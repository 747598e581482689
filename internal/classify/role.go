// Package classify maps command-line and executable evidence to process
// roles, instance types and release channels.
//
// Each classifier is an ordered rule table evaluated top to bottom; the first
// matching rule wins.
package classify

import (
	"strings"

	"github.com/pranshuparmar/tabwitr/pkg/model"
)

const typeFlag = "--type="

type roleRule struct {
	match func(joined string) bool
	role  model.Role
}

func has(sub string) func(string) bool {
	return func(s string) bool { return strings.Contains(s, sub) }
}

var roleRules = []roleRule{
	{func(s string) bool {
		return strings.Contains(s, "--type=renderer") && strings.Contains(s, "--extension-process")
	}, model.RoleExtension},
	{has("--type=renderer"), model.RoleRenderer},
	{has("--type=gpu-process"), model.RoleGPU},
	{has("--type=utility"), model.RoleUtility},
	{has("--type=crashpad-handler"), model.RoleCrashpad},
	{has("--type=ppapi"), model.RolePlugin},
	{has("--type=broker"), model.RoleBroker},
	{func(s string) bool { return !strings.Contains(s, typeFlag) }, model.RoleBrowser},
}

// Role classifies a process from its arguments. Unknown --type= values are
// passed through verbatim.
func Role(args []string) model.Role {
	joined := strings.Join(args, " ")
	for _, r := range roleRules {
		if r.match(joined) {
			return r.role
		}
	}

	start := strings.Index(joined, typeFlag) + len(typeFlag)
	rest := joined[start:]
	if end := strings.IndexByte(rest, ' '); end != -1 {
		rest = rest[:end]
	}
	return model.Role(rest)
}

// URL returns the first literal http(s) URL or --app= value in argument order.
func URL(args []string) string {
	for _, arg := range args {
		if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
			return arg
		}
		// PWA windows carry their start URL in --app=
		if url, ok := strings.CutPrefix(arg, "--app="); ok {
			return url
		}
	}
	return ""
}
