package devtools

import (
	"context"
	"io"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const targetsJSON = `[{"id":"A1","type":"page","title":"Example","url":"https://example.com","processId":4242},` +
	`{"id":"B2","type":"service_worker","url":"https://example.com/sw.js"}]`

// rawServer answers every connection with response. When hold is set the
// connection stays open after writing, like a keep-alive peer.
func rawServer(t *testing.T, response string, hold bool) (int, <-chan string) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	requests := make(chan string, 4)
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				defer c.Close()
				buf := make([]byte, 1024)
				n, _ := c.Read(buf)
				requests <- string(buf[:n])
				_, _ = io.WriteString(c, response)
				if hold {
					time.Sleep(time.Second)
				}
			}(conn)
		}
	}()
	return ln.Addr().(*net.TCPAddr).Port, requests
}

func testClient(opts Options) *Client {
	return NewClient(opts, zap.NewNop())
}

func TestFetchTargetsPlain(t *testing.T) {
	port, requests := rawServer(t, "HTTP/1.1 200 OK\r\nContent-Type: application/json\r\n\r\n"+targetsJSON, false)

	targets := testClient(Options{}).FetchTargets(context.Background(), port)

	require.Len(t, targets, 2)
	assert.Equal(t, "A1", targets[0].ID)
	assert.Equal(t, 4242, targets[0].PID)
	assert.Equal(t, "service_worker", targets[1].Type)
	assert.Zero(t, targets[1].PID)

	req := <-requests
	assert.True(t, strings.HasPrefix(req, "GET /json HTTP/1.1\r\n"))
	assert.Contains(t, req, "Connection: close\r\n")
}

func TestFetchTargetsChunked(t *testing.T) {
	half := len(targetsJSON) / 2
	body := hexLen(targetsJSON[:half]) + "\r\n" + targetsJSON[:half] + "\r\n" +
		hexLen(targetsJSON[half:]) + "\r\n" + targetsJSON[half:] + "\r\n0\r\n\r\n"
	port, _ := rawServer(t, "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n"+body, false)

	targets := testClient(Options{}).FetchTargets(context.Background(), port)

	require.Len(t, targets, 2)
	assert.Equal(t, "Example", targets[0].Title)
}

func TestFetchTargetsKeepsPartialRead(t *testing.T) {
	port, _ := rawServer(t, "HTTP/1.1 200 OK\r\n\r\n"+targetsJSON, true)

	start := time.Now()
	targets := testClient(Options{ReadTimeout: 100 * time.Millisecond}).FetchTargets(context.Background(), port)

	assert.Len(t, targets, 2)
	assert.Less(t, time.Since(start), 900*time.Millisecond)
}

// tricklingServer sends response, then keeps writing a byte every interval
// so the connection never idles long enough to hit a read timeout.
func tricklingServer(t *testing.T, response string, interval time.Duration) int {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 1024)
		_, _ = conn.Read(buf)
		if _, err := io.WriteString(conn, response); err != nil {
			return
		}
		stop := time.After(5 * time.Second)
		tick := time.NewTicker(interval)
		defer tick.Stop()
		for {
			select {
			case <-stop:
				return
			case <-tick.C:
				if _, err := io.WriteString(conn, " "); err != nil {
					return
				}
			}
		}
	}()
	return ln.Addr().(*net.TCPAddr).Port
}

func TestFetchTargetsStopsAtReadBudget(t *testing.T) {
	port := tricklingServer(t, "HTTP/1.1 200 OK\r\n\r\n"+targetsJSON, 20*time.Millisecond)
	opts := Options{ReadTimeout: 200 * time.Millisecond, ReadBudget: 400 * time.Millisecond}

	start := time.Now()
	targets := testClient(opts).FetchTargets(context.Background(), port)
	elapsed := time.Since(start)

	assert.Len(t, targets, 2)
	assert.GreaterOrEqual(t, elapsed, opts.ReadBudget)
	assert.Less(t, elapsed, opts.ReadBudget+opts.ReadTimeout+400*time.Millisecond)
}

func TestFetchTargetsMalformed(t *testing.T) {
	port, _ := rawServer(t, "HTTP/1.1 200 OK\r\n\r\n{\"not\":\"an array\"}", false)
	assert.Empty(t, testClient(Options{}).FetchTargets(context.Background(), port))

	port, _ = rawServer(t, "HTTP/1.1 200 OK\r\n\r\n[{\"id\": ]", false)
	assert.Empty(t, testClient(Options{}).FetchTargets(context.Background(), port))
}

func TestFetchTargetsUnreachable(t *testing.T) {
	assert.Empty(t, testClient(Options{}).FetchTargets(context.Background(), closedPort(t)))
}

func TestBrowserWebSocketURL(t *testing.T) {
	version := `{"Browser":"Edg/120.0","webSocketDebuggerUrl":"ws://127.0.0.1:9222/devtools/browser/xyz"}`
	port, requests := rawServer(t, "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n"+
		hexLen(version)+"\r\n"+version+"\r\n0\r\n\r\n", false)

	got := testClient(Options{}).BrowserWebSocketURL(context.Background(), port)

	assert.Equal(t, "ws://127.0.0.1:9222/devtools/browser/xyz", got)
	assert.True(t, strings.HasPrefix(<-requests, "GET /json/version HTTP/1.1\r\n"))
}

func TestBrowserWebSocketURLMissing(t *testing.T) {
	port, _ := rawServer(t, "HTTP/1.1 404 Not Found\r\n\r\n", false)
	assert.Empty(t, testClient(Options{}).BrowserWebSocketURL(context.Background(), port))
	assert.Empty(t, testClient(Options{}).BrowserWebSocketURL(context.Background(), closedPort(t)))
}

func hexLen(s string) string {
	return strconv.FormatInt(int64(len(s)), 16)
}

func closedPort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}
