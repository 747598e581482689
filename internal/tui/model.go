package tui

import (
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/pranshuparmar/tabwitr/internal/pipeline"
	"github.com/pranshuparmar/tabwitr/pkg/model"
)

var (
	baseStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("#585858")) // Dark Gray

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")). // White
			Background(lipgloss.Color("#7D56F4")). // Purple
			Padding(0, 1)

	tableHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#5f5fd7")). // Purple/Blue
				Bold(true).
				Border(lipgloss.NormalBorder(), false, false, true, false).
				BorderForeground(lipgloss.Color("#585858")). // Dark Gray
				Padding(0, 1)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5f5fd7")). // Purple/Blue
			Bold(true)

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#767676")). // Dimmed Gray
			Border(lipgloss.NormalBorder(), true, false, false, false).
			BorderForeground(lipgloss.Color("#585858")). // Dark Gray
			Padding(0, 1).
			Width(100)

	activeTabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")). // White
			Background(lipgloss.Color("#22aa22")). // Green
			Padding(0, 1).
			Bold(true)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#ffffff")). // White
				Background(lipgloss.Color("#767676")). // Dimmed Gray
				Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff5f5f")). // Soft red
			Bold(true)

	actionMenuStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffdf87")). // Amber
			Bold(true)

	confirmStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffaf5f")). // Orange-amber
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#af87ff")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#767676"))
)

type tab int

const (
	tabProcesses tab = iota
	tabTabs
)

type modelState int

const (
	stateList modelState = iota
	stateDetail
)

type focusState int

const (
	focusDetail focusState = iota
	focusArgs
	focusMain
	focusSide
)

type actionKind int

const (
	actionNone          actionKind = iota
	actionKill                     // terminate
	actionDebug                    // attach a native debugger
	actionDebugChildren            // debugger that also follows children
)

const defaultRefresh = 10 * time.Second

// Options wires the TUI to the process snapshot and the debugging endpoint.
type Options struct {
	Version     string
	Family      string
	Refresh     time.Duration
	Concurrency int
	Lister      pipeline.Lister
	Fetcher     pipeline.Fetcher
	Terminate   func(pid int) error
	Logger      *zap.Logger

	// LookPath locates debugger executables. Defaults to exec.LookPath.
	LookPath func(string) (string, error)
}

func (o Options) withDefaults() Options {
	if o.Refresh <= 0 {
		o.Refresh = defaultRefresh
	}
	if o.Lister == nil {
		o.Lister = pipeline.HostLister
	}
	if o.Terminate == nil {
		o.Terminate = pipeline.Terminate
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.LookPath == nil {
		o.LookPath = exec.LookPath
	}
	return o
}

func (o Options) pipelineConfig() pipeline.Config {
	return pipeline.Config{Family: o.Family, Concurrency: o.Concurrency, Logger: o.Logger}
}

type MainModel struct {
	opts Options

	state        modelState
	table        table.Model
	input        textinput.Model
	viewport     viewport.Model
	treeViewport viewport.Model
	argsViewport viewport.Model
	tabTable     table.Model
	tabInput     textinput.Model
	detailFocus  focusState
	listFocus    focusState
	activeTab    tab

	groups    []model.ProcessGroup
	processes []model.Process
	filtered  []model.Process
	groupOf   map[int]int
	tabs      map[int][]model.PageInfo
	pages     map[int][]model.PageInfo
	tabRows   []tabRow
	enriching bool

	selectedPID int
	statusMsg   string // transient status/error message shown in status line
	width       int
	height      int
	quitting    bool

	sortCol  string
	sortDesc bool

	// Mouse double-click tracking
	lastClickTime time.Time
	lastClickX    int
	lastClickY    int

	actionMenuOpen bool
	pendingAction  actionKind
	actionPID      int
}

func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = tableHeaderStyle.BorderForeground(lipgloss.Color("#585858"))
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#ffffaf")). // Light Yellow
		Background(lipgloss.Color("#5f00d7")). // Purple
		Bold(false)
	return s
}

func InitialModel(opts Options) MainModel {
	opts = opts.withDefaults()

	m := MainModel{
		opts:        opts,
		state:       stateList,
		detailFocus: focusDetail,
		listFocus:   focusMain,
		activeTab:   tabProcesses,
		sortCol:     "mem",
		sortDesc:    true,
		groupOf:     make(map[int]int),
		enriching:   opts.Fetcher != nil,
	}

	m.table = table.New(
		table.WithColumns(m.getColumns()),
		table.WithFocused(true),
		table.WithHeight(20),
	)
	m.table.SetStyles(tableStyles())

	m.tabTable = table.New(
		table.WithColumns(tabColumns()),
		table.WithFocused(true),
		table.WithHeight(20),
	)
	m.tabTable.SetStyles(tableStyles())

	m.input = newSearchInput("Search PID, Role, Instance, URL, Tab...")
	m.tabInput = newSearchInput("Search Port, PID, Type, Page...")

	m.viewport = viewport.New(0, 0)
	m.treeViewport = viewport.New(0, 0)
	m.argsViewport = viewport.New(0, 0)
	return m
}

func newSearchInput(placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 156
	ti.Width = 50
	ti.Prompt = "> "
	ti.PromptStyle = promptStyle
	ti.Blur()
	return ti
}

// Start runs the TUI on the alternate screen until the user quits.
func Start(opts Options) error {
	if os.Getenv("COLORTERM") == "" {
		os.Setenv("COLORTERM", "truecolor") //nolint:errcheck
	}

	p := tea.NewProgram(InitialModel(opts), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running tui: %w", err)
	}
	return nil
}

func (m MainModel) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.refreshGroups(),
		m.refreshTabs(),
		m.waitTick(),
		tea.EnableMouseCellMotion,
	)
}
