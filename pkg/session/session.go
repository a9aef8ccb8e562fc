// Package session holds the viewer state for one user: the loaded graph, the
// selected node and the last load error.
//
// A Session owns a [view.View] and keeps it in step with its state:
//
//   - a successful load replaces the graph, clears the selection and the
//     error, and re-renders the view
//   - a failed load keeps the previous graph and selection, records the
//     error and closes the view until the next successful load
//   - a click on a rendered node sets the selection; Dismiss clears it
//
// Every load bumps a generation counter. Selection callbacks carry the
// generation of the graph they were rendered for, so a click that arrives
// after its graph was replaced is dropped.
//
// Sessions live in a [Store] and expire after a period of inactivity:
//
//	store := session.NewStore(2*time.Hour, logger)
//	sess := session.New(v, view.DefaultOptions(), logger)
//	store.Put(sess)
//	err := sess.Load(ctx, "tree.json", data)
package session

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/reasontree/pkg/errors"
	"github.com/matzehuels/reasontree/pkg/graph"
	"github.com/matzehuels/reasontree/pkg/observability"
	"github.com/matzehuels/reasontree/pkg/tree"
	"github.com/matzehuels/reasontree/pkg/view"
)

// State is a point-in-time copy of a session.
type State struct {
	ID         string        `json:"id"`
	Filename   string        `json:"filename,omitempty"`
	Graph      *graph.Graph  `json:"-"`
	Nodes      int           `json:"nodes"`
	Edges      int           `json:"edges"`
	Selected   *graph.Detail `json:"selected"`
	Error      string        `json:"error,omitempty"`
	Generation uint64        `json:"generation"`
	Rendering  bool          `json:"rendering"`
}

// ChangeFunc is called with the new state after every change.
type ChangeFunc func(State)

// Session is the state of one viewer. All methods are safe for concurrent
// use.
type Session struct {
	id     string
	view   *view.View
	opts   view.Options
	logger *log.Logger

	mu       sync.Mutex
	graph    *graph.Graph
	selected *graph.Detail
	loadErr  error
	filename string
	gen      uint64
	touched  time.Time
	onChange ChangeFunc
	closed   bool
}

// New creates an empty session that renders through v with opts.
// A nil logger discards output.
func New(v *view.View, opts view.Options, logger *log.Logger) *Session {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	id := uuid.NewString()
	return &Session{
		id:      id,
		view:    v,
		opts:    opts,
		logger:  logger.With("session", id[:8]),
		touched: time.Now(),
	}
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// OnChange registers fn to receive the state after every change. Only the
// most recent function is kept.
func (s *Session) OnChange(fn ChangeFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// Load parses data as a tree document and shows it. On a LoadFailure the
// previous graph and selection are kept, the error is recorded and returned,
// and the view is closed. The load that completes last wins.
func (s *Session) Load(ctx context.Context, filename string, data []byte) error {
	start := time.Now()
	root, err := tree.Parse(data)
	var g *graph.Graph
	if err == nil {
		g = graph.Convert(root)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New(errors.ErrCodeSessionNotFound, "session %s is closed", s.id)
	}
	s.gen++
	s.touched = time.Now()

	if err != nil {
		s.loadErr = err
		observability.Load().OnLoadFailure(ctx, err)
		s.logger.Warn("load failed", "file", filename, "err", errors.UserMessage(err))
		if cerr := s.view.Close(); cerr != nil {
			s.logger.Warn("close view", "err", cerr)
		}
		s.notifyLocked()
		return err
	}

	s.graph = g
	s.selected = nil
	s.loadErr = nil
	s.filename = filename
	observability.Load().OnLoad(ctx, g.NodeCount(), g.EdgeCount(), time.Since(start))
	s.logger.Info("loaded tree", "file", filename, "nodes", g.NodeCount(), "edges", g.EdgeCount())

	rerr := s.renderLocked(ctx)
	s.notifyLocked()
	return rerr
}

// Restyle re-renders the current graph with new view options.
func (s *Session) Restyle(ctx context.Context, opts view.Options) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if opts == s.opts {
		return nil
	}
	s.opts = opts
	s.gen++
	s.selected = nil
	s.touched = time.Now()
	if s.loadErr != nil {
		s.notifyLocked()
		return nil
	}
	err := s.renderLocked(ctx)
	s.notifyLocked()
	return err
}

// renderLocked hands the current graph to the view with a callback bound to
// the current generation.
func (s *Session) renderLocked(ctx context.Context) error {
	gen := s.gen
	err := s.view.Render(ctx, s.graph, s.opts, func(d graph.Detail) {
		s.selectDetail(gen, d)
	})
	if err != nil {
		s.logger.Error("render failed", "err", err)
	}
	return err
}

func (s *Session) selectDetail(gen uint64, d graph.Detail) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen || s.closed || s.loadErr != nil {
		s.logger.Debug("dropped stale selection", "node", d.NodeID.String(), "gen", gen, "current", s.gen)
		return
	}
	s.selected = &d
	s.touched = time.Now()
	s.logger.Debug("selected node", "node", d.NodeID.String())
	s.notifyLocked()
}

// Dismiss closes the detail panel.
func (s *Session) Dismiss() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched = time.Now()
	if s.selected == nil {
		return
	}
	s.selected = nil
	s.notifyLocked()
}

// Snapshot returns the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// Selected returns the current selection, or nil.
func (s *Session) Selected() *graph.Detail {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// Err returns the error of the last load, or nil if it succeeded.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadErr
}

// Graph returns the most recently loaded graph, which stays set while a
// load error is shown.
func (s *Session) Graph() *graph.Graph {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph
}

// Close unmounts the view. Later loads fail.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.onChange = nil
	return s.view.Close()
}

// Touch marks the session as used.
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched = time.Now()
}

// idleSince returns when the session was last used.
func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched
}

func (s *Session) stateLocked() State {
	st := State{
		ID:         s.id,
		Filename:   s.filename,
		Graph:      s.graph,
		Nodes:      s.graph.NodeCount(),
		Edges:      s.graph.EdgeCount(),
		Generation: s.gen,
		Rendering:  s.view.State() == view.StateRendering,
	}
	if s.selected != nil {
		d := *s.selected
		st.Selected = &d
	}
	if s.loadErr != nil {
		st.Error = errors.UserMessage(s.loadErr)
	}
	return st
}

func (s *Session) notifyLocked() {
	if s.onChange != nil {
		s.onChange(s.stateLocked())
	}
}
