package classify

import (
	"strings"

	"github.com/pranshuparmar/tabwitr/pkg/model"
)

type channelRule struct {
	markers []string
	channel model.Channel
}

var channelRules = []channelRule{
	{[]string{"edge sxs", "canary"}, model.ChannelCanary},
	{[]string{"edge dev"}, model.ChannelDev},
	{[]string{"edge beta"}, model.ChannelBeta},
	{[]string{`\out\`, "/out/"}, model.ChannelLocalBuild},
}

// Channel derives the release channel from an executable path.
func Channel(exe string) model.Channel {
	lower := strings.ToLower(exe)
	for _, r := range channelRules {
		if containsAny(lower, r.markers) {
			return r.channel
		}
	}
	return model.ChannelStable
}
