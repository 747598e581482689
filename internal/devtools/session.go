package devtools

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/chromedp/cdproto"
	"github.com/chromedp/cdproto/target"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/pranshuparmar/tabwitr/pkg/model"
)

const (
	getTargetsID     int64 = 1
	firstAttachID    int64 = 10
	attachedToTarget       = string(cdproto.EventTargetAttachedToTarget)
)

var errBudget = errors.New("session budget exhausted")

type rpcRequest struct {
	ID     int64  `json:"id"`
	Method string `json:"method"`
	Params any    `json:"params,omitempty"`
}

// rpcMessage is either a response (id set) or an event (method set).
type rpcMessage struct {
	ID     int64           `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
	Result json.RawMessage `json:"result"`
}

// targetInfo carries the pid extension some browsers add to Target.TargetInfo.
type targetInfo struct {
	TargetID target.ID `json:"targetId"`
	Type     string    `json:"type"`
	Title    string    `json:"title"`
	URL      string    `json:"url"`
	PID      int       `json:"pid"`
}

type attachedEvent struct {
	SessionID  target.SessionID `json:"sessionId"`
	TargetInfo targetInfo       `json:"targetInfo"`
}

// session is the state of one WebSocket conversation. It lives for a single
// FetchPages call.
type session struct {
	ctx       context.Context
	conn      *websocket.Conn
	ioTimeout time.Duration
	deadline  time.Time
	log       *zap.Logger

	nextID int64
	// pending maps outstanding attach request ids to their target.
	pending map[int64]target.ID
	// slots maps an attached target to its index in pages.
	slots map[target.ID]int
	pages []model.PageInfo

	sessions []target.SessionID
	seen     map[target.SessionID]bool
}

// FetchPages lists the targets behind a browser WebSocket URL and resolves the
// process id of each one, attaching to targets whose listing carries no pid.
// Targets whose attach is never acknowledged within the session budget are
// left out. Pages come back in listing order.
func (c *Client) FetchPages(ctx context.Context, wsURL string) []model.PageInfo {
	ctx, cancel := context.WithTimeout(ctx, c.opts.SessionBudget)
	defer cancel()

	log := c.logger.With(zap.String("url", wsURL))

	dialer := websocket.Dialer{HandshakeTimeout: c.opts.SessionIOTimeout}
	conn, _, err := dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		log.Debug("dial", zap.Error(err))
		return nil
	}
	defer conn.Close()

	deadline, _ := ctx.Deadline()
	s := &session{
		ctx:       ctx,
		conn:      conn,
		ioTimeout: c.opts.SessionIOTimeout,
		deadline:  deadline,
		log:       log,
		nextID:    firstAttachID,
		pending:   make(map[int64]target.ID),
		slots:     make(map[target.ID]int),
		seen:      make(map[target.SessionID]bool),
	}
	defer s.close()

	infos := s.listTargets()
	if len(infos) == 0 {
		return nil
	}

	s.attachAll(infos)
	s.awaitAttached()
	s.detachAll()

	var resolved []model.PageInfo
	for _, p := range s.pages {
		if p.Resolved() {
			resolved = append(resolved, p)
		}
	}
	return resolved
}

func (s *session) listTargets() []targetInfo {
	if err := s.send(getTargetsID, target.CommandGetTargets, target.GetTargets()); err != nil {
		s.log.Debug("send getTargets", zap.Error(err))
		return nil
	}

	for {
		msg, err := s.read()
		if err != nil {
			s.log.Debug("await targets", zap.Error(err))
			return nil
		}
		if msg.ID != getTargetsID {
			continue
		}

		var result struct {
			TargetInfos []targetInfo `json:"targetInfos"`
		}
		if err := json.Unmarshal(msg.Result, &result); err != nil {
			s.log.Debug("decode targets", zap.Error(err))
			return nil
		}
		return result.TargetInfos
	}
}

// attachAll records targets that already carry a pid and sends an attach
// request for every other interesting target, reserving its slot.
func (s *session) attachAll(infos []targetInfo) {
	for _, info := range infos {
		if info.TargetID == "" || !Interesting(info.Type, info.URL) {
			continue
		}

		page := pageInfo(info.Type, info.Title, info.URL)
		if info.PID > 0 {
			page.ProcessID = info.PID
			s.pages = append(s.pages, page)
			continue
		}

		id := s.nextID
		params := target.AttachToTarget(info.TargetID).WithFlatten(true)
		if err := s.send(id, target.CommandAttachToTarget, params); err != nil {
			s.log.Debug("send attach", zap.String("target", string(info.TargetID)), zap.Error(err))
			continue
		}
		s.nextID++
		s.pending[id] = info.TargetID
		s.slots[info.TargetID] = len(s.pages)
		s.pages = append(s.pages, page)
	}
}

// awaitAttached reads until every attach is acknowledged or the budget is
// spent, filling in pids from Target.attachedToTarget events.
func (s *session) awaitAttached() {
	for len(s.pending) > 0 {
		msg, err := s.read()
		if err != nil {
			s.log.Debug("await attach", zap.Int("pending", len(s.pending)), zap.Error(err))
			return
		}

		if msg.Method == attachedToTarget {
			s.onAttached(msg.Params)
		}
		if _, ok := s.pending[msg.ID]; ok {
			delete(s.pending, msg.ID)
			s.onAttachResult(msg.Result)
		}
	}
}

func (s *session) onAttached(raw json.RawMessage) {
	var ev attachedEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return
	}
	s.track(ev.SessionID)

	if ev.TargetInfo.PID <= 0 {
		return
	}
	if idx, ok := s.slots[ev.TargetInfo.TargetID]; ok {
		s.pages[idx].ProcessID = ev.TargetInfo.PID
	}
}

func (s *session) onAttachResult(raw json.RawMessage) {
	var result struct {
		SessionID target.SessionID `json:"sessionId"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return
	}
	s.track(result.SessionID)
}

func (s *session) track(id target.SessionID) {
	if id == "" || s.seen[id] {
		return
	}
	s.seen[id] = true
	s.sessions = append(s.sessions, id)
}

// detachAll releases every session without waiting for replies.
func (s *session) detachAll() {
	for _, sid := range s.sessions {
		params := target.DetachFromTarget().WithSessionID(sid)
		if err := s.send(s.nextID, target.CommandDetachFromTarget, params); err != nil {
			s.log.Debug("send detach", zap.String("session", string(sid)), zap.Error(err))
		}
		s.nextID++
	}
}

// send writes one request. Writes are bounded by the I/O timeout only, so
// detach requests still go out after the read budget is spent.
func (s *session) send(id int64, method string, params any) error {
	_ = s.conn.SetWriteDeadline(time.Now().Add(s.ioTimeout))
	return s.conn.WriteJSON(rpcRequest{ID: id, Method: method, Params: params})
}

func (s *session) read() (rpcMessage, error) {
	var msg rpcMessage
	if err := s.ctx.Err(); err != nil {
		return msg, err
	}
	if !time.Now().Before(s.deadline) {
		return msg, errBudget
	}

	_ = s.conn.SetReadDeadline(s.ioDeadline())
	typ, data, err := s.conn.ReadMessage()
	if err != nil {
		return msg, err
	}
	if typ != websocket.TextMessage {
		return msg, nil
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		s.log.Debug("skip malformed message", zap.Error(err))
		return rpcMessage{}, nil
	}
	return msg, nil
}

func (s *session) ioDeadline() time.Time {
	d := time.Now().Add(s.ioTimeout)
	if d.After(s.deadline) {
		return s.deadline
	}
	return d
}

func (s *session) close() {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(s.ioTimeout))
}
