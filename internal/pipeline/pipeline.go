// Package pipeline wires the host snapshot, classifier, grouper and
// debugging-endpoint client into the operations exposed by the CLI and TUI.
package pipeline

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pranshuparmar/tabwitr/internal/classify"
	"github.com/pranshuparmar/tabwitr/internal/devtools"
	"github.com/pranshuparmar/tabwitr/internal/grouping"
	procpkg "github.com/pranshuparmar/tabwitr/internal/proc"
	"github.com/pranshuparmar/tabwitr/pkg/model"
)

// Lister takes a snapshot of the host process table.
type Lister interface {
	ListProcesses() ([]model.Process, error)
}

// ListerFunc adapts a function to Lister.
type ListerFunc func() ([]model.Process, error)

func (f ListerFunc) ListProcesses() ([]model.Process, error) { return f() }

// HostLister reads the real process table.
var HostLister Lister = ListerFunc(procpkg.ListProcesses)

// Fetcher queries a debugging endpoint. *devtools.Client implements it.
type Fetcher interface {
	Pages(ctx context.Context, port int) []model.PageInfo
	FetchTargets(ctx context.Context, port int) []model.DebugTarget
}

var _ Fetcher = (*devtools.Client)(nil)

// Config selects the browser family and bounds enrichment fan-out.
type Config struct {
	Family      string
	Concurrency int
	Logger      *zap.Logger
}

func (c Config) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// ListGroups snapshots the host once and returns the family's instances.
func ListGroups(lister Lister, family string) ([]model.ProcessGroup, error) {
	all, err := lister.ListProcesses()
	if err != nil {
		return nil, fmt.Errorf("list processes: %w", err)
	}
	return group(all, family), nil
}

// CollectTabs resolves the debugging port of every browser root of the family
// and returns the pages found behind each port. Ports without pages are
// omitted. It takes its own snapshot, so it can run alongside ListGroups.
func CollectTabs(ctx context.Context, lister Lister, fetcher Fetcher, cfg Config) (map[int][]model.PageInfo, error) {
	all, err := lister.ListProcesses()
	if err != nil {
		return nil, fmt.Errorf("list processes: %w", err)
	}
	return collect(ctx, classify.Family(all, cfg.Family), fetcher, cfg), nil
}

// Inspect groups the family and enriches it from a single snapshot.
func Inspect(ctx context.Context, lister Lister, fetcher Fetcher, cfg Config) (model.Result, error) {
	all, err := lister.ListProcesses()
	if err != nil {
		return model.Result{}, fmt.Errorf("list processes: %w", err)
	}
	family := classify.Family(all, cfg.Family)
	return model.Result{
		Groups: grouping.Build(family, all, cfg.Family),
		Tabs:   collect(ctx, family, fetcher, cfg),
	}, nil
}

// DebugTargets returns the raw target listing of one endpoint.
func DebugTargets(ctx context.Context, fetcher Fetcher, port int) []model.DebugTarget {
	return fetcher.FetchTargets(ctx, port)
}

// Terminate kills pid.
func Terminate(pid int) error {
	return procpkg.Terminate(pid)
}

// LaunchDebugger attaches a native debugger to pid.
func LaunchDebugger(pid int, includeChildren bool) (procpkg.Debugger, error) {
	return procpkg.LaunchDebugger(pid, includeChildren)
}

func group(all []model.Process, family string) []model.ProcessGroup {
	return grouping.Build(classify.Family(all, family), all, family)
}

// BrowserPorts lists the distinct debugging ports of browser-role processes,
// in snapshot order.
func BrowserPorts(family []model.Process) []int {
	seen := make(map[int]bool)
	var ports []int
	for _, p := range family {
		if p.Role != model.RoleBrowser {
			continue
		}
		port, ok := devtools.ResolvePort(p.Args)
		if !ok || seen[port] {
			continue
		}
		seen[port] = true
		ports = append(ports, port)
	}
	return ports
}

func collect(ctx context.Context, family []model.Process, fetcher Fetcher, cfg Config) map[int][]model.PageInfo {
	log := cfg.logger()
	ports := BrowserPorts(family)

	var mu sync.Mutex
	tabs := make(map[int][]model.PageInfo, len(ports))

	eg, egCtx := errgroup.WithContext(ctx)
	if cfg.Concurrency > 0 {
		eg.SetLimit(cfg.Concurrency)
	}
	for _, port := range ports {
		eg.Go(func() error {
			pages := fetcher.Pages(egCtx, port)
			log.Debug("enriched port", zap.Int("port", port), zap.Int("pages", len(pages)))
			if len(pages) == 0 {
				return nil
			}
			mu.Lock()
			tabs[port] = pages
			mu.Unlock()
			return nil
		})
	}
	_ = eg.Wait()

	return tabs
}
