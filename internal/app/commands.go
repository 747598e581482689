package app

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pranshuparmar/tabwitr/internal/output"
	"github.com/pranshuparmar/tabwitr/internal/pipeline"
	procpkg "github.com/pranshuparmar/tabwitr/internal/proc"
	"github.com/pranshuparmar/tabwitr/internal/target"
	"github.com/pranshuparmar/tabwitr/pkg/model"
)

type listFlags struct {
	short bool
	tabs  bool
}

func (l *listFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&l.short, "short", false, "one line per instance")
	cmd.Flags().BoolVar(&l.tabs, "tabs", false, "query debugging ports and show open tabs")
}

func newListCmd(st *state) *cobra.Command {
	list := &listFlags{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List browser instances grouped by process tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, st, list)
		},
	}
	list.register(cmd)
	return cmd
}

func runList(cmd *cobra.Command, st *state, list *listFlags) error {
	var res model.Result
	if list.tabs {
		var err error
		res, err = pipeline.Inspect(cmd.Context(), st.deps.Lister, st.fetcher(), st.pipelineConfig())
		if err != nil {
			return err
		}
	} else {
		groups, err := pipeline.ListGroups(st.deps.Lister, st.cfg.Family)
		if err != nil {
			return err
		}
		res.Groups = groups
	}

	out := cmd.OutOrStdout()
	switch {
	case st.flags.jsonOut:
		s, err := output.ToJSON(res)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, s)
	case len(res.Groups) == 0:
		fmt.Fprintf(out, "No %s processes found\n", st.cfg.Family)
	case list.short:
		output.PrintShort(out, res.Groups, res.PagesByPID(), st.color())
	default:
		output.PrintGroups(out, res.Groups, res.PagesByPID(), st.color())
	}
	return nil
}

func newTabsCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "tabs",
		Short: "Show the pages behind every browser debugging port",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tabs, err := pipeline.CollectTabs(cmd.Context(), st.deps.Lister, st.fetcher(), st.pipelineConfig())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if st.flags.jsonOut {
				s, err := output.ToJSON(tabs)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, s)
				return nil
			}
			if len(tabs) == 0 {
				fmt.Fprintln(out, "No debuggable tabs found")
				return nil
			}
			output.PrintTabs(out, tabs, st.color())
			return nil
		},
	}
}

func newTargetsCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "targets <port>",
		Short: "Dump the raw target list of a debugging port",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			port, err := parsePort(args[0])
			if err != nil {
				return err
			}
			targets := pipeline.DebugTargets(cmd.Context(), st.fetcher(), port)
			if len(targets) == 0 {
				return fmt.Errorf("no targets on port %d", port)
			}
			out := cmd.OutOrStdout()
			if st.flags.jsonOut {
				s, err := output.ToJSON(targets)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, s)
				return nil
			}
			output.PrintTargets(out, targets)
			return nil
		},
	}
}

func newKillCmd(st *state) *cobra.Command {
	var exact bool
	cmd := &cobra.Command{
		Use:   "kill <pid|name>",
		Short: "Terminate a process",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pid, err := st.resolvePID(args[0], exact)
			if err != nil {
				return err
			}
			if err := st.deps.Terminate(pid); err != nil {
				return err
			}
			st.logger.Info("process terminated", zap.Int("pid", pid))
			fmt.Fprintf(cmd.OutOrStdout(), "Process %d terminated\n", pid)
			return nil
		},
	}
	cmd.Flags().BoolVar(&exact, "exact", false, "match the name exactly instead of as a substring")
	return cmd
}

func newDebugCmd(st *state) *cobra.Command {
	var children, exact bool
	cmd := &cobra.Command{
		Use:   "debug <pid|name>",
		Short: "Attach a native debugger to a process",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pid, err := st.resolvePID(args[0], exact)
			if err != nil {
				return err
			}
			d, err := st.deps.LaunchDebugger(pid, children)
			if err != nil {
				return err
			}
			if !d.Interactive {
				fmt.Fprintf(cmd.OutOrStdout(), "Launched %s for process %d\n", d.Path, pid)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&children, "children", false, "also debug child processes when the debugger supports it")
	cmd.Flags().BoolVar(&exact, "exact", false, "match the name exactly instead of as a substring")
	return cmd
}

func newLaunchCmd(st *state) *cobra.Command {
	var (
		opts      procpkg.LaunchOptions
		debugPort uint16
	)
	cmd := &cobra.Command{
		Use:   "launch <exe> [-- browser flags...]",
		Short: "Start a browser, optionally with a debugging port and a fresh profile",
		Example: "  tabwitr launch msedge --debug-port 9222 --temp-profile\n" +
			"  tabwitr launch msedge --preset no-first-run -- https://example.com",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Exe = args[0]
			opts.Flags = args[1:]
			opts.DebugPort = int(debugPort)

			launched, err := st.deps.Launch(opts)
			if err != nil {
				return err
			}
			st.logger.Info("browser launched",
				zap.Int("pid", launched.PID),
				zap.String("exe", launched.Exe),
				zap.Strings("args", launched.Args))

			out := cmd.OutOrStdout()
			if st.flags.jsonOut {
				s, err := output.ToJSON(launched)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, s)
				return nil
			}
			fmt.Fprintf(out, "Launched %s (pid %d) with %d flags\n", launched.Exe, launched.PID, len(launched.Args))
			if launched.UserDataDir != "" {
				fmt.Fprintf(out, "Profile: %s\n", launched.UserDataDir)
			}
			if opts.DebugPort > 0 {
				fmt.Fprintf(out, "Targets: http://%s/json\n", net.JoinHostPort(st.cfg.Host, strconv.Itoa(opts.DebugPort)))
			}
			return nil
		},
	}
	cmd.Flags().Uint16Var(&debugPort, "debug-port", 0, "add --remote-debugging-port with this port")
	cmd.Flags().BoolVar(&opts.TempProfile, "temp-profile", false, "start with a new empty --user-data-dir")
	cmd.Flags().StringVar(&opts.ProfileParent, "profile-parent", "", "directory for the temporary profile (default: system temp dir)")
	cmd.Flags().StringSliceVar(&opts.Presets, "preset", nil, "flag preset to add, repeatable (see tabwitr presets)")
	return cmd
}

func newPresetsCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List the built-in launch flag presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if st.flags.jsonOut {
				s, err := output.ToJSON(procpkg.FlagPresets)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, s)
				return nil
			}
			for _, p := range procpkg.FlagPresets {
				fmt.Fprintf(out, "%-18s %-20s %s\n", p.Key, p.Name, strings.Join(p.Flags, " "))
			}
			return nil
		},
	}
}

// resolvePID accepts a pid, or a name that must match exactly one process.
func (st *state) resolvePID(ref string, exact bool) (int, error) {
	if _, err := strconv.Atoi(ref); err == nil {
		return target.ResolveOne(ref, nil, 0, exact)
	}
	procs, err := st.deps.Lister.ListProcesses()
	if err != nil {
		return 0, fmt.Errorf("list processes: %w", err)
	}
	return target.ResolveOne(ref, procs, os.Getpid(), exact)
}

func parsePort(s string) (int, error) {
	port, err := strconv.ParseUint(s, 10, 16)
	if err != nil || port == 0 {
		return 0, fmt.Errorf("invalid port %q", s)
	}
	return int(port), nil
}
