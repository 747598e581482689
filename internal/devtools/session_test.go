package devtools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const browserPath = "/devtools/browser/fake"

// fakeBrowser is a minimal remote-debugging endpoint. Targets listed in
// attachPIDs are acknowledged on attach; any other attach goes unanswered.
type fakeBrowser struct {
	targets    []map[string]any
	attachPIDs map[string]int
	// chatter, when set, floods unrelated events at this interval after an
	// unanswered attach.
	chatter time.Duration

	mu       sync.Mutex
	methods  []string
	flatten  []bool
	detached []string
}

func (f *fakeBrowser) start(t *testing.T) (*httptest.Server, int) {
	t.Helper()

	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	mux.HandleFunc("/json/version", func(w http.ResponseWriter, r *http.Request) {
		wsURL := "ws://" + strings.TrimPrefix(srv.URL, "http://") + browserPath
		_ = json.NewEncoder(w).Encode(map[string]string{
			"Browser":              "Edg/120.0.0.0",
			"webSocketDebuggerUrl": wsURL,
		})
	})
	mux.HandleFunc(browserPath, f.serveWS)

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)
	return srv, port
}

func (f *fakeBrowser) serveWS(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	for {
		var req struct {
			ID     int64           `json:"id"`
			Method string          `json:"method"`
			Params json.RawMessage `json:"params"`
		}
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		f.record(req.Method)

		switch req.Method {
		case "Target.getTargets":
			_ = conn.WriteJSON(map[string]any{"method": "Target.targetCreated", "params": map[string]any{}})
			_ = conn.WriteJSON(map[string]any{"id": req.ID, "result": map[string]any{"targetInfos": f.targets}})

		case "Target.attachToTarget":
			var p struct {
				TargetID string `json:"targetId"`
				Flatten  bool   `json:"flatten"`
			}
			_ = json.Unmarshal(req.Params, &p)
			f.mu.Lock()
			f.flatten = append(f.flatten, p.Flatten)
			f.mu.Unlock()

			pid, ok := f.attachPIDs[p.TargetID]
			if !ok {
				if f.chatter > 0 {
					f.flood(conn)
					return
				}
				continue
			}
			sid := "session-" + p.TargetID
			_ = conn.WriteJSON(map[string]any{
				"method": "Target.attachedToTarget",
				"params": map[string]any{
					"sessionId":          sid,
					"targetInfo":         map[string]any{"targetId": p.TargetID, "type": "page", "pid": pid},
					"waitingForDebugger": false,
				},
			})
			_ = conn.WriteJSON(map[string]any{"id": req.ID, "result": map[string]any{"sessionId": sid}})

		case "Target.detachFromTarget":
			var p struct {
				SessionID string `json:"sessionId"`
			}
			_ = json.Unmarshal(req.Params, &p)
			f.mu.Lock()
			f.detached = append(f.detached, p.SessionID)
			f.mu.Unlock()
		}
	}
}

func (f *fakeBrowser) flood(conn *websocket.Conn) {
	stop := time.After(5 * time.Second)
	tick := time.NewTicker(f.chatter)
	defer tick.Stop()
	for {
		select {
		case <-stop:
			return
		case <-tick.C:
			event := map[string]any{"method": "Target.targetCreated", "params": map[string]any{"targetInfo": map[string]any{"targetId": "noise"}}}
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		}
	}
}

func (f *fakeBrowser) record(method string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.methods = append(f.methods, method)
}

func (f *fakeBrowser) detachedSessions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.detached...)
}

func page(id, typ, title, u string, pid int) map[string]any {
	m := map[string]any{"targetId": id, "type": typ, "title": title, "url": u, "attached": false}
	if pid > 0 {
		m["pid"] = pid
	}
	return m
}

func fastOptions() Options {
	return Options{
		SessionIOTimeout: 150 * time.Millisecond,
		SessionBudget:    600 * time.Millisecond,
	}
}

func TestPagesResolvesPIDThroughAttach(t *testing.T) {
	f := &fakeBrowser{
		targets:    []map[string]any{page("T1", "page", "Example", "https://example.com", 0)},
		attachPIDs: map[string]int{"T1": 555},
	}
	_, port := f.start(t)

	pages := testClient(Options{}).Pages(context.Background(), port)

	require.Len(t, pages, 1)
	assert.Equal(t, 555, pages[0].ProcessID)
	assert.Equal(t, "Example \u2014 https://example.com", pages[0].Label)
	assert.Empty(t, pages[0].TargetType)

	assert.Eventually(t, func() bool {
		return assert.ObjectsAreEqual([]string{"session-T1"}, f.detachedSessions())
	}, time.Second, 10*time.Millisecond)

	f.mu.Lock()
	defer f.mu.Unlock()
	assert.Equal(t, []bool{true}, f.flatten)
	assert.Equal(t, "Target.getTargets", f.methods[0])
}

func TestPagesDropsUnacknowledgedTargets(t *testing.T) {
	f := &fakeBrowser{
		targets: []map[string]any{
			page("T1", "page", "Silent", "https://silent.test", 0),
			page("T2", "page", "", "https://listed.test", 42),
		},
	}
	_, port := f.start(t)

	start := time.Now()
	pages := testClient(fastOptions()).Pages(context.Background(), port)

	require.Len(t, pages, 1)
	assert.Equal(t, 42, pages[0].ProcessID)
	assert.Equal(t, "https://listed.test", pages[0].Label)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestPagesStopsAtBudgetWithChattyPeer(t *testing.T) {
	f := &fakeBrowser{
		targets: []map[string]any{
			page("T1", "page", "Silent", "https://silent.test", 0),
			page("T2", "page", "", "https://listed.test", 42),
		},
		chatter: 20 * time.Millisecond,
	}
	srv, _ := f.start(t)
	wsURL := "ws://" + strings.TrimPrefix(srv.URL, "http://") + browserPath
	opts := fastOptions()

	start := time.Now()
	pages := testClient(opts).FetchPages(context.Background(), wsURL)
	elapsed := time.Since(start)

	require.Len(t, pages, 1)
	assert.Equal(t, 42, pages[0].ProcessID)
	assert.GreaterOrEqual(t, elapsed, opts.SessionBudget-50*time.Millisecond)
	assert.Less(t, elapsed, opts.SessionBudget+opts.SessionIOTimeout+400*time.Millisecond)
}

func TestPagesOnlyUnacknowledged(t *testing.T) {
	f := &fakeBrowser{
		targets: []map[string]any{page("T1", "page", "Silent", "https://silent.test", 0)},
	}
	_, port := f.start(t)

	assert.Empty(t, testClient(fastOptions()).Pages(context.Background(), port))
}

func TestPagesFiltersAndLabels(t *testing.T) {
	f := &fakeBrowser{
		targets: []map[string]any{
			page("B", "browser", "", "https://browser.test", 1),
			page("W", "webview", "", "https://webview.test", 2),
			page("blank", "page", "", "about:blank", 3),
			page("dt", "page", "DevTools", "devtools://devtools/bundled/inspector.html", 4),
			page("ext", "background_page", "", "chrome-extension://abc/bg.html", 5),
			page("ntp", "page", "New tab", "edge://newtab/", 6),
			page("sw", "service_worker", "", "https://app.test/sw.js", 7),
			page("p", "page", "App", "https://app.test/", 0),
			page("frame", "iframe", "https://ads.test/", "https://ads.test/", 0),
		},
		attachPIDs: map[string]int{"p": 8, "frame": 9},
	}
	_, port := f.start(t)

	pages := testClient(Options{}).Pages(context.Background(), port)

	require.Len(t, pages, 3)
	assert.Equal(t, 7, pages[0].ProcessID)
	assert.Equal(t, "Service Worker", pages[0].TargetType)
	assert.Equal(t, 8, pages[1].ProcessID)
	assert.Equal(t, "App \u2014 https://app.test/", pages[1].Label)
	assert.Equal(t, 9, pages[2].ProcessID)
	assert.Equal(t, "iframe", pages[2].TargetType)
	assert.Equal(t, "https://ads.test/", pages[2].Label)
}

func TestPagesNoTargets(t *testing.T) {
	f := &fakeBrowser{}
	_, port := f.start(t)

	assert.Empty(t, testClient(fastOptions()).Pages(context.Background(), port))
}

func TestPagesUnreachable(t *testing.T) {
	assert.Empty(t, testClient(fastOptions()).Pages(context.Background(), closedPort(t)))
}

func TestFetchPagesBadURL(t *testing.T) {
	assert.Empty(t, testClient(fastOptions()).FetchPages(context.Background(), "ws://127.0.0.1:1/nothing"))
}

func TestFetchPagesHonoursCancel(t *testing.T) {
	f := &fakeBrowser{
		targets: []map[string]any{page("T1", "page", "Silent", "https://silent.test", 0)},
	}
	srv, _ := f.start(t)
	wsURL := "ws://" + strings.TrimPrefix(srv.URL, "http://") + browserPath

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	pages := testClient(Options{SessionBudget: 10 * time.Second}).FetchPages(ctx, wsURL)

	assert.Empty(t, pages)
	assert.Less(t, time.Since(start), 2*time.Second)
}
