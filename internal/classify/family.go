package classify

import (
	"strings"

	"github.com/pranshuparmar/tabwitr/pkg/model"
)

// InFamily reports whether a process name or executable path carries the family token.
func InFamily(name, exe, family string) bool {
	token := strings.ToLower(family)
	if token == "" {
		return false
	}
	return strings.Contains(strings.ToLower(name), token) || strings.Contains(strings.ToLower(exe), token)
}

// Annotate fills the derived fields of a raw snapshot record.
func Annotate(p model.Process) model.Process {
	p.Role = Role(p.Args)
	p.InstanceType = InstanceType(p.Args, p.Exe)
	p.URL = URL(p.Args)
	return p
}

// Family selects and annotates the family processes of a snapshot, keeping snapshot order.
func Family(all []model.Process, family string) []model.Process {
	var out []model.Process
	for _, p := range all {
		if !InFamily(p.Name, p.Exe, family) {
			continue
		}
		out = append(out, Annotate(p))
	}
	return out
}
