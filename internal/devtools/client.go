// Package devtools talks to a Chromium-style remote debugging endpoint: it
// resolves the endpoint port of a browser instance, queries the plain-HTTP
// discovery routes and runs a short WebSocket session that maps targets to
// the processes rendering them.
//
// Every exported query follows an empty-default contract: an absent,
// slow or misbehaving endpoint produces an empty result and a debug log
// line, never an error.
package devtools

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/pranshuparmar/tabwitr/pkg/model"
)

// Options bounds every network operation the client performs.
type Options struct {
	Host string

	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	// ReadBudget caps the whole HTTP response read, whatever the per-read timeout.
	ReadBudget time.Duration

	SessionIOTimeout time.Duration
	SessionBudget    time.Duration
}

// DefaultOptions returns the timeouts used against a local endpoint.
func DefaultOptions() Options {
	return Options{
		Host:             "127.0.0.1",
		ConnectTimeout:   200 * time.Millisecond,
		ReadTimeout:      500 * time.Millisecond,
		WriteTimeout:     200 * time.Millisecond,
		ReadBudget:       time.Second,
		SessionIOTimeout: 500 * time.Millisecond,
		SessionBudget:    3 * time.Second,
	}
}

// Client queries debugging endpoints. It holds no per-call state and is safe
// for concurrent use.
type Client struct {
	opts   Options
	logger *zap.Logger
}

// NewClient returns a client; zero option fields fall back to DefaultOptions.
func NewClient(opts Options, logger *zap.Logger) *Client {
	def := DefaultOptions()
	if opts.Host == "" {
		opts.Host = def.Host
	}
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = def.ConnectTimeout
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = def.ReadTimeout
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = def.WriteTimeout
	}
	if opts.ReadBudget <= 0 {
		opts.ReadBudget = def.ReadBudget
	}
	if opts.SessionIOTimeout <= 0 {
		opts.SessionIOTimeout = def.SessionIOTimeout
	}
	if opts.SessionBudget <= 0 {
		opts.SessionBudget = def.SessionBudget
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{opts: opts, logger: logger}
}

// Pages returns the resolved pages behind the endpoint on port.
func (c *Client) Pages(ctx context.Context, port int) []model.PageInfo {
	wsURL := c.BrowserWebSocketURL(ctx, port)
	if wsURL == "" {
		return nil
	}
	return c.FetchPages(ctx, wsURL)
}
