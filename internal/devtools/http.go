package devtools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pranshuparmar/tabwitr/pkg/model"
)

const (
	targetsPath = "/json"
	versionPath = "/json/version"

	readBufferSize = 8192
)

// FetchTargets lists the targets reported by GET /json.
func (c *Client) FetchTargets(ctx context.Context, port int) []model.DebugTarget {
	body, ok := c.get(ctx, port, targetsPath)
	if !ok {
		return nil
	}

	array, ok := extractArray(body)
	if !ok {
		c.logger.Debug("no target array in response", zap.Int("port", port), zap.String("path", targetsPath))
		return nil
	}

	var targets []model.DebugTarget
	if err := json.Unmarshal([]byte(array), &targets); err != nil {
		c.logger.Debug("decode targets", zap.Int("port", port), zap.Error(err))
		return nil
	}
	return targets
}

// BrowserWebSocketURL returns the browser-level WebSocket URL from GET /json/version.
func (c *Client) BrowserWebSocketURL(ctx context.Context, port int) string {
	body, ok := c.get(ctx, port, versionPath)
	if !ok {
		return ""
	}

	object, ok := extractObject(body)
	if !ok {
		c.logger.Debug("no version object in response", zap.Int("port", port))
		return ""
	}

	var version struct {
		WebSocketDebuggerURL string `json:"webSocketDebuggerUrl"`
	}
	if err := json.Unmarshal([]byte(object), &version); err != nil {
		c.logger.Debug("decode version", zap.Int("port", port), zap.Error(err))
		return ""
	}
	return version.WebSocketDebuggerURL
}

// get performs one GET over a raw connection and returns the decoded body.
func (c *Client) get(ctx context.Context, port int, path string) (string, bool) {
	addr := net.JoinHostPort(c.opts.Host, strconv.Itoa(port))
	log := c.logger.With(zap.Int("port", port), zap.String("path", path))

	dialer := net.Dialer{Timeout: c.opts.ConnectTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		log.Debug("connect", zap.Error(err))
		return "", false
	}
	defer conn.Close()

	request := fmt.Sprintf("GET %s HTTP/1.1\r\nHost: %s\r\nConnection: close\r\n\r\n", path, addr)
	_ = conn.SetWriteDeadline(time.Now().Add(c.opts.WriteTimeout))
	if _, err := io.WriteString(conn, request); err != nil {
		log.Debug("write request", zap.Error(err))
		return "", false
	}

	raw := c.readAll(ctx, conn, log)
	body, ok := splitResponse(raw)
	if !ok {
		log.Debug("incomplete response", zap.Int("bytes", len(raw)))
		return "", false
	}
	return body, true
}

// readAll reads until EOF, a read timeout, or the read budget runs out.
// Partial data is kept in every case.
func (c *Client) readAll(ctx context.Context, conn net.Conn, log *zap.Logger) string {
	var response []byte
	buf := make([]byte, readBufferSize)
	start := time.Now()

	for time.Since(start) <= c.opts.ReadBudget && ctx.Err() == nil {
		_ = conn.SetReadDeadline(time.Now().Add(c.opts.ReadTimeout))
		n, err := conn.Read(buf)
		response = append(response, buf[:n]...)
		if err != nil {
			var netErr net.Error
			if !errors.Is(err, io.EOF) && !(errors.As(err, &netErr) && netErr.Timeout()) {
				log.Debug("read response", zap.Error(err))
			}
			break
		}
	}
	return string(response)
}

// splitResponse separates the header block from the body and undoes chunked
// transfer encoding.
func splitResponse(raw string) (string, bool) {
	headers, body, ok := strings.Cut(raw, "\r\n\r\n")
	if !ok {
		return "", false
	}
	if isChunked(headers) {
		return Dechunk(body), true
	}
	return body, true
}

func isChunked(headers string) bool {
	for _, line := range strings.Split(headers, crlf) {
		name, value, ok := strings.Cut(line, ":")
		if !ok || !strings.EqualFold(strings.TrimSpace(name), "Transfer-Encoding") {
			continue
		}
		if strings.Contains(strings.ToLower(value), "chunked") {
			return true
		}
	}
	return false
}

// extractArray returns the outermost [...] of body.
func extractArray(body string) (string, bool) {
	return outermost(body, '[', ']')
}

// extractObject returns the outermost {...} of body.
func extractObject(body string) (string, bool) {
	return outermost(body, '{', '}')
}

func outermost(body string, left, right byte) (string, bool) {
	start := strings.IndexByte(body, left)
	end := strings.LastIndexByte(body, right)
	if start < 0 || end <= start {
		return "", false
	}
	return body[start : end+1], true
}
