package output

var (
	colorReset   = "\033[0m"
	colorMagenta = "\033[35m"
	colorGreen   = "\033[32m"
	colorCyan    = "\033[36m"
	colorDim     = "\033[2m"
)

// palette holds the escape codes for one render; all empty when colour is off.
type palette struct {
	reset, branch, root, tab, dim string
}

func newPalette(colorEnabled bool) palette {
	if !colorEnabled {
		return palette{}
	}
	return palette{
		reset:  colorReset,
		branch: colorMagenta,
		root:   colorGreen,
		tab:    colorCyan,
		dim:    colorDim,
	}
}
