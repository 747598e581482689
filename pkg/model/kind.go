package model

// Role is the job a browser-family process performs inside its instance.
type Role string

const (
	RoleBrowser   Role = "Browser"
	RoleRenderer  Role = "Renderer"
	RoleExtension Role = "Extension"
	RoleGPU       Role = "GPU"
	RoleUtility   Role = "Utility"
	RoleCrashpad  Role = "Crashpad"
	RolePlugin    Role = "Plugin"
	RoleBroker    Role = "Broker"
)

// InstanceType tells an ordinary browser apart from embedded hosts.
type InstanceType string

const (
	InstanceBrowser  InstanceType = "Browser"
	InstanceWebView2 InstanceType = "WebView2"
	InstanceCopilot  InstanceType = "Copilot"
)

// Rank orders instance types for listings: Browser, WebView2, Copilot, then anything else.
func (t InstanceType) Rank() int {
	switch t {
	case InstanceBrowser:
		return 0
	case InstanceWebView2:
		return 1
	case InstanceCopilot:
		return 2
	default:
		return 3
	}
}

// Embedded reports whether the instance is hosted inside another application.
func (t InstanceType) Embedded() bool {
	return t == InstanceWebView2 || t == InstanceCopilot
}

type Channel string

const (
	ChannelStable     Channel = "Stable"
	ChannelBeta       Channel = "Beta"
	ChannelDev        Channel = "Dev"
	ChannelCanary     Channel = "Canary"
	ChannelLocalBuild Channel = "Local Build"
)
