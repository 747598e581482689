// Package app implements the tabwitr command line.
package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pranshuparmar/tabwitr/internal/config"
	"github.com/pranshuparmar/tabwitr/internal/devtools"
	"github.com/pranshuparmar/tabwitr/internal/logging"
	"github.com/pranshuparmar/tabwitr/internal/pipeline"
	procpkg "github.com/pranshuparmar/tabwitr/internal/proc"
	"github.com/pranshuparmar/tabwitr/internal/tui"
)

var (
	version   = ""
	commit    = ""
	buildDate = ""
)

// SetVersionBuildCommitString records the values injected at link time.
func SetVersionBuildCommitString(v, c, d string) {
	version, commit, buildDate = v, c, d
}

func versionString() string {
	v := version
	if v == "" {
		v = "dev"
	}
	if commit != "" {
		v += " (" + commit
		if buildDate != "" {
			v += ", " + buildDate
		}
		v += ")"
	}
	return v
}

// Deps are the side-effecting collaborators of the commands.
type Deps struct {
	Lister         pipeline.Lister
	NewFetcher     func(devtools.Options, *zap.Logger) pipeline.Fetcher
	Terminate      func(pid int) error
	LaunchDebugger func(pid int, includeChildren bool) (procpkg.Debugger, error)
	Launch         func(procpkg.LaunchOptions) (procpkg.Launched, error)
	RunTUI         func(tui.Options) error
}

// DefaultDeps talks to the real host.
func DefaultDeps() Deps {
	return Deps{
		Lister: pipeline.HostLister,
		NewFetcher: func(opts devtools.Options, logger *zap.Logger) pipeline.Fetcher {
			return devtools.NewClient(opts, logger)
		},
		Terminate:      pipeline.Terminate,
		LaunchDebugger: pipeline.LaunchDebugger,
		Launch:         procpkg.DefaultLauncher().Launch,
		RunTUI:         tui.Start,
	}
}

// Execute runs the root command and exits 1 on failure.
func Execute() {
	if err := NewRootCmd(DefaultDeps()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

type globalFlags struct {
	configPath  string
	family      string
	verbose     bool
	noColor     bool
	jsonOut     bool
	logFile     string
	interactive bool
}

// state is populated by the root PersistentPreRunE.
type state struct {
	deps   Deps
	flags  globalFlags
	cfg    *config.Config
	logger *zap.Logger
}

func (st *state) pipelineConfig() pipeline.Config {
	return pipeline.Config{
		Family:      st.cfg.Family,
		Concurrency: st.cfg.Concurrency,
		Logger:      st.logger,
	}
}

func (st *state) fetcher() pipeline.Fetcher {
	return st.deps.NewFetcher(st.cfg.Devtools(), st.logger)
}

func (st *state) color() bool { return !st.flags.noColor }

// NewRootCmd builds the command tree around deps.
func NewRootCmd(deps Deps) *cobra.Command {
	st := &state{deps: deps}
	list := &listFlags{}

	root := &cobra.Command{
		Use:           "tabwitr",
		Short:         "Explain which browser processes are running and what they are showing",
		Version:       versionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return st.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if st.logger != nil {
				_ = st.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if st.flags.interactive {
				return st.deps.RunTUI(tui.Options{
					Version:     versionString(),
					Family:      st.cfg.Family,
					Refresh:     st.cfg.RefreshInterval,
					Concurrency: st.cfg.Concurrency,
					Lister:      st.deps.Lister,
					Fetcher:     st.fetcher(),
					Terminate:   st.deps.Terminate,
					Logger:      st.logger,
				})
			}
			return runList(cmd, st, list)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&st.flags.configPath, "config", "", "config file (default $HOME/.config/tabwitr/config.yaml)")
	pf.StringVar(&st.flags.family, "family", "", "browser family executable name (default msedge)")
	pf.BoolVarP(&st.flags.verbose, "verbose", "v", false, "enable debug logging")
	pf.BoolVar(&st.flags.noColor, "no-color", false, "disable colorized output")
	pf.BoolVar(&st.flags.jsonOut, "json", false, "output as JSON")
	pf.StringVar(&st.flags.logFile, "log-file", "", "write logs to this file instead of stderr")
	root.Flags().BoolVarP(&st.flags.interactive, "interactive", "i", false, "interactive TUI mode")
	list.register(root)

	root.AddCommand(
		newListCmd(st),
		newTabsCmd(st),
		newTargetsCmd(st),
		newKillCmd(st),
		newDebugCmd(st),
		newLaunchCmd(st),
		newPresetsCmd(st),
	)
	return root
}

func (st *state) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(st.flags.configPath)
	if err != nil {
		return err
	}
	if st.flags.family != "" {
		cfg.Family = st.flags.family
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	st.cfg = cfg

	logger, err := logging.New(logging.Options{
		Verbose: st.flags.verbose,
		File:    st.flags.logFile,
		Quiet:   st.flags.interactive,
	})
	if err != nil {
		return err
	}
	st.logger = logger
	st.logger.Debug("configuration loaded",
		zap.String("command", cmd.Name()),
		zap.String("family", cfg.Family),
		zap.Duration("session_budget", cfg.SessionBudget))
	return nil
}
