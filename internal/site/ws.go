package site

import (
	"context"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/ayrahq/ayra/internal/events"
	"github.com/ayrahq/ayra/internal/models"
	"github.com/ayrahq/ayra/internal/playback"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 4 << 10
)

// Client message types.
const (
	wsStart = "start"
	wsStop  = "stop"
)

// wsRequest is a message from the browser.
type wsRequest struct {
	Type        string `json:"type"`
	Scenario    string `json:"scenario,omitempty"`
	Loop        *bool  `json:"loop,omitempty"`
	BaseDelayMs *int64 `json:"base_delay_ms,omitempty"`
}

// wsMessage is a message to the browser. Type is "started", "reveal",
// "reset", "finished", "cancelled" or "error".
type wsMessage struct {
	Type      string          `json:"type"`
	SessionID string          `json:"session_id,omitempty"`
	Scenario  string          `json:"scenario,omitempty"`
	Steps     int             `json:"steps,omitempty"`
	Event     *playback.Event `json:"event,omitempty"`
	Error     string          `json:"error,omitempty"`
}

func (h *handlers) upgrader() *websocket.Upgrader {
	u := &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	if len(h.deps.AllowedOrigins) > 0 {
		allowed := h.deps.AllowedOrigins
		u.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || slices.Contains(allowed, "*") || slices.Contains(allowed, origin)
		}
	}
	return u
}

// playbackConn is one websocket client with its own sequencer.
type playbackConn struct {
	h      *handlers
	conn   *websocket.Conn
	seq    *playback.Sequencer
	logger zerolog.Logger

	send chan wsMessage
	done chan struct{}
	wg   sync.WaitGroup

	// forwarding is closed when the current session's forwarder exits.
	forwarding chan struct{}
}

func (h *handlers) playbackSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader().Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	opts := []playback.Option{playback.WithClock(h.deps.Clock), playback.WithLogger(h.logger)}
	if h.deps.Metrics != nil {
		opts = append(opts, playback.WithRecorder(h.deps.Metrics))
	}
	pc := &playbackConn{
		h:      h,
		conn:   conn,
		seq:    playback.New(opts...),
		logger: h.logger.With().Str("remote_addr", r.RemoteAddr).Logger(),
		send:   make(chan wsMessage, 16),
		done:   make(chan struct{}),
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	pc.wg.Add(1)
	go pc.writePump()

	if name := r.URL.Query().Get("scenario"); name != "" {
		pc.start(ctx, wsRequest{Type: wsStart, Scenario: name})
	}
	pc.readLoop(ctx)

	pc.stop()
	close(pc.done)
	pc.wg.Wait()
	_ = conn.Close()
	pc.logger.Debug().Msg("websocket closed")
}

func (pc *playbackConn) readLoop(ctx context.Context) {
	pc.conn.SetReadLimit(maxMessageSize)
	_ = pc.conn.SetReadDeadline(time.Now().Add(pongWait))
	pc.conn.SetPongHandler(func(string) error {
		return pc.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var req wsRequest
		if err := pc.conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				pc.logger.Warn().Err(err).Msg("websocket read failed")
			}
			return
		}

		switch req.Type {
		case wsStart:
			pc.start(ctx, req)
		case wsStop:
			pc.stop()
		default:
			pc.push(wsMessage{Type: "error", Error: "unknown message type " + req.Type})
		}
	}
}

// start replaces the running session. The previous forwarder is drained
// first so its messages never interleave with the new session's.
func (pc *playbackConn) start(ctx context.Context, req wsRequest) {
	pc.stop()

	scenario, err := pc.h.scenarioFor(req.Scenario)
	if err != nil {
		pc.push(wsMessage{Type: "error", Scenario: req.Scenario, Error: err.Error()})
		return
	}

	cfg := pc.h.deps.Playback
	if req.Loop != nil {
		cfg.Loop = *req.Loop
	}
	if req.BaseDelayMs != nil {
		cfg.BaseDelay = time.Duration(*req.BaseDelayMs) * time.Millisecond
	}

	sess := pc.seq.Start(ctx, scenario, cfg)
	payload := models.PlaybackPayload{Scenario: scenario.Name, Steps: scenario.Len(), Loop: cfg.Loop}
	if err := events.LogPlaybackStarted(ctx, pc.h.deps.Events, sess.ID(), payload); err != nil {
		pc.logger.Warn().Err(err).Msg("failed to record playback start")
	}

	pc.push(wsMessage{Type: "started", SessionID: sess.ID(), Scenario: scenario.Name, Steps: scenario.Len()})

	forwarding := make(chan struct{})
	pc.forwarding = forwarding
	pc.wg.Add(1)
	go pc.forward(context.WithoutCancel(ctx), sess, payload, forwarding)
}

func (pc *playbackConn) stop() {
	pc.seq.Cancel()
	if pc.forwarding != nil {
		<-pc.forwarding
		pc.forwarding = nil
	}
}

func (pc *playbackConn) forward(ctx context.Context, sess *playback.Session, payload models.PlaybackPayload, done chan struct{}) {
	defer pc.wg.Done()
	defer close(done)

	for ev := range sess.Events() {
		ev := ev // per-iteration copy; &ev is queued (go.mod targets go1.21 loop semantics)
		if !pc.push(wsMessage{Type: string(ev.Kind), SessionID: ev.SessionID, Scenario: ev.Scenario, Event: &ev}) {
			sess.Cancel()
		}
	}

	final := sess.State()
	pc.push(wsMessage{Type: final.String(), SessionID: sess.ID(), Scenario: sess.Scenario()})

	payload.Iterations = sess.Iteration() + 1
	payload.Revealed = len(sess.Prefix())
	if err := events.LogPlaybackEnded(ctx, pc.h.deps.Events, sess.ID(), final == playback.StateCancelled, payload); err != nil {
		pc.logger.Warn().Err(err).Msg("failed to record playback end")
	}
}

// push queues msg for the writer. It reports false once the connection is
// shutting down.
func (pc *playbackConn) push(msg wsMessage) bool {
	select {
	case pc.send <- msg:
		return true
	case <-pc.done:
		return false
	}
}

func (pc *playbackConn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		pc.wg.Done()
	}()

	for {
		select {
		case msg := <-pc.send:
			_ = pc.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := pc.conn.WriteJSON(msg); err != nil {
				pc.logger.Debug().Err(err).Msg("websocket write failed")
				_ = pc.conn.Close()
				pc.discard()
				return
			}

		case <-ticker.C:
			_ = pc.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := pc.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = pc.conn.Close()
				pc.discard()
				return
			}

		case <-pc.done:
			_ = pc.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = pc.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// discard drops queued messages after the writer failed, until shutdown.
func (pc *playbackConn) discard() {
	for {
		select {
		case <-pc.send:
		case <-pc.done:
			return
		}
	}
}
