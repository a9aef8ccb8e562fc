package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/matzehuels/reasontree/pkg/errors"
	"github.com/matzehuels/reasontree/pkg/session"
	"github.com/matzehuels/reasontree/pkg/view"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 16 << 20
	sendBuffer     = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  2048,
	WriteBufferSize: 2048,
	CheckOrigin:     checkOrigin,
}

// checkOrigin accepts same-host pages and local development origins.
func checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if u.Host == r.Host {
		return true
	}
	switch u.Hostname() {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	return false
}

// Message types exchanged over /ws.
const (
	msgHello   = "hello"
	msgFrame   = "frame"
	msgClear   = "clear"
	msgState   = "state"
	msgError   = "error"
	msgSelect  = "select"
	msgDismiss = "dismiss"
	msgLoad    = "load"
)

// inbound is a message from the page.
type inbound struct {
	Type    string   `json:"type"`
	Nodes   []string `json:"nodes,omitempty"`
	Name    string   `json:"name,omitempty"`
	Content string   `json:"content,omitempty"`
}

// outbound is a message to the page.
type outbound struct {
	Type    string         `json:"type"`
	Session string         `json:"session,omitempty"`
	SVG     string         `json:"svg,omitempty"`
	State   *session.State `json:"state,omitempty"`
	Error   string         `json:"error,omitempty"`
	Code    string         `json:"code,omitempty"`
}

// wsSurface is a view.Surface that paints by sending frames to a client.
type wsSurface struct {
	client *client

	mu        sync.Mutex
	listeners map[int]func(ids []string)
	next      int
}

func newSurface(c *client) *wsSurface {
	return &wsSurface{client: c, listeners: make(map[int]func([]string))}
}

func (s *wsSurface) Paint(frame view.Frame) error {
	s.client.send(outbound{Type: msgFrame, SVG: string(frame.Data)})
	return nil
}

func (s *wsSurface) Clear() error {
	s.client.send(outbound{Type: msgClear})
	return nil
}

func (s *wsSurface) Listen(fn func(ids []string)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next
	s.next++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// click delivers ids to every attached listener.
func (s *wsSurface) click(ids []string) {
	s.mu.Lock()
	fns := make([]func([]string), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(ids)
	}
}

// client is one websocket connection and the session it drives.
type client struct {
	conn    *websocket.Conn
	logger  *log.Logger
	sess    *session.Session
	surface *wsSurface

	out  chan outbound
	done chan struct{}
	once sync.Once
}

// send queues msg. Messages for a closed or stalled client are dropped.
func (c *client) send(msg outbound) {
	select {
	case <-c.done:
		return
	default:
	}
	select {
	case c.out <- msg:
	case <-c.done:
	default:
		c.logger.Warn("send buffer full, dropping message", "type", msg.Type)
	}
}

func (c *client) close() {
	c.once.Do(func() { close(c.done) })
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade", "err", err)
		return
	}

	c := &client{
		conn: conn,
		out:  make(chan outbound, sendBuffer),
		done: make(chan struct{}),
	}
	c.surface = newSurface(c)
	c.sess = session.New(view.New(s.engine, c.surface, s.logger), s.cfg.View, s.logger)
	c.logger = s.logger.With("session", c.sess.ID()[:8])
	s.store.Put(c.sess)

	c.sess.OnChange(func(st session.State) {
		c.send(outbound{Type: msgState, State: &st})
	})
	c.send(outbound{Type: msgHello, Session: c.sess.ID()})
	c.logger.Info("client connected", "remote", r.RemoteAddr)

	go c.writePump()
	s.readPump(r.Context(), c)

	c.close()
	if err := s.store.Delete(c.sess.ID()); err != nil {
		c.logger.Warn("close session", "err", err)
	}
	c.logger.Info("client disconnected")
}

func (s *Server) readPump(ctx context.Context, c *client) {
	defer c.conn.Close()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket read", "err", err)
			}
			return
		}
		var msg inbound
		if err := json.Unmarshal(data, &msg); err != nil {
			c.send(outbound{Type: msgError, Error: "malformed message", Code: string(errors.ErrCodeInvalidInput)})
			continue
		}
		s.routeMessage(ctx, c, msg)
	}
}

func (s *Server) routeMessage(ctx context.Context, c *client, msg inbound) {
	c.sess.Touch()
	switch msg.Type {
	case msgSelect:
		c.surface.click(msg.Nodes)
	case msgDismiss:
		c.sess.Dismiss()
	case msgLoad:
		if err := errors.ValidateTreeFilename(msg.Name); err != nil {
			c.send(outbound{Type: msgError, Error: errors.UserMessage(err), Code: string(errors.GetCode(err))})
			return
		}
		// Load failures reach the page through the state message.
		if err := c.sess.Load(ctx, msg.Name, []byte(msg.Content)); err != nil && !errors.IsLoadFailure(err) {
			c.send(outbound{Type: msgError, Error: errors.UserMessage(err), Code: string(errors.GetCode(err))})
		}
	default:
		c.logger.Debug("unknown message type", "type", msg.Type)
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.out:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				c.logger.Debug("websocket write", "err", err)
				c.close()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
