package reasoning

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/reasontree/pkg/errors"
)

// MaxIterations bounds a run when the replayer is not told otherwise.
const MaxIterations = 20

// Action kinds accepted in a replay stream.
const (
	KindContinue = "continue"
	KindMove     = "move"
	KindFinish   = "finish"
)

// Action is one line of a replay stream.
type Action struct {
	Kind      string `json:"action"`
	Reasoning string `json:"reasoning,omitempty"`
	Brief     string `json:"brief,omitempty"`
	NodeID    *int   `json:"node_id,omitempty"`
}

// Result summarizes a replay.
type Result struct {
	RunID      string
	Iterations int
	Size       int
	Finished   bool
	Snapshots  []string
}

// Replayer applies an action stream to a Manager. Journal and Snapshots
// are optional.
type Replayer struct {
	Manager       *Manager
	Journal       *Journal
	Snapshots     *Snapshotter
	Task          string
	MaxIterations int
	Logger        *log.Logger
}

// Run reads actions from in until a finish action, the end of the stream or
// the iteration limit. Before each action the compressed tree is
// snapshotted and journaled. Reaching the limit is not an error; a
// malformed line or a move to an unknown node is.
func (r *Replayer) Run(ctx context.Context, in io.Reader) (Result, error) {
	m := r.Manager
	if m == nil {
		m = New()
		r.Manager = m
	}
	maxIter := r.MaxIterations
	if maxIter <= 0 {
		maxIter = MaxIterations
	}
	logger := r.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	res := Result{RunID: m.ID()}
	r.journal(ActionSessionStart, F("task", r.Task), F("tree_manager_id", m.ID()))

	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 64*1024), 4<<20)
	line := 0

	for i := 0; i < maxIter; i++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		if err := r.snapshot(&res, i, maxIter); err != nil {
			return res, err
		}

		act, ok, err := nextAction(sc, &line)
		if err != nil {
			r.journal(ActionError, F("message", errors.UserMessage(err)), F("current_node_id", m.Current()))
			return res, err
		}
		if !ok {
			r.journal(ActionError, F("message", "No parsed response available"), F("current_node_id", m.Current()))
			logger.Warn("action stream ended before finish", "iterations", i)
			return res, nil
		}
		res.Iterations = i + 1

		switch act.Kind {
		case KindContinue:
			prev := m.Current()
			n, err := m.Continue(Step{Reasoning: act.Reasoning, Brief: act.Brief})
			if err != nil {
				return res, errors.Wrap(errors.ErrCodeInvalidInput, err, "line %d", line)
			}
			r.journal(ActionContinue,
				F("node_id", n.ID.String()),
				F("reasoning", act.Reasoning),
				F("brief", act.Brief),
				F("previous_node_id", prev),
				F("current_node_id", m.Current()))
			logger.Debug("continue", "node", n.ID.String(), "brief", act.Brief)

		case KindMove:
			prev := m.Current()
			if act.NodeID == nil {
				return res, errors.New(errors.ErrCodeInvalidInput, "line %d: move needs node_id", line)
			}
			if err := m.MoveTo(*act.NodeID); err != nil {
				r.journal(ActionError, F("message", errors.UserMessage(err)), F("current_node_id", prev))
				return res, err
			}
			r.journal(ActionMove,
				F("target_node_id", *act.NodeID),
				F("previous_node_id", prev),
				F("current_node_id", m.Current()))
			logger.Debug("move", "from", prev, "to", *act.NodeID)

		case KindFinish:
			r.journal(ActionFinished, F("current_node_id", m.Current()), F("tree_size", m.Size()))
			r.journal(ActionSessionEnd, F("tree_manager_id", m.ID()))
			res.Finished = true
			res.Size = m.Size()
			return res, nil

		default:
			return res, errors.New(errors.ErrCodeInvalidInput, "line %d: unknown action %q", line, act.Kind)
		}
		res.Size = m.Size()
	}

	r.journal(ActionError, F("message", "Max iterations reached"), F("current_node_id", m.Current()))
	logger.Warn("max iterations reached", "max", maxIter)
	return res, nil
}

func (r *Replayer) snapshot(res *Result, iteration, maxIter int) error {
	compressed := r.Manager.Compressed()
	if r.Snapshots != nil {
		path, err := r.Snapshots.Write(r.Manager)
		if err != nil {
			return err
		}
		if n := len(res.Snapshots); n == 0 || res.Snapshots[n-1] != path {
			res.Snapshots = append(res.Snapshots, path)
		}
	}
	if r.Journal != nil {
		data, err := json.MarshalIndent(compressed, "", "  ")
		if err != nil {
			return err
		}
		return r.Journal.LogTree(iteration, maxIter, data)
	}
	return nil
}

func (r *Replayer) journal(action string, fields ...Field) {
	if r.Journal == nil {
		return
	}
	if err := r.Journal.LogAction(action, fields...); err != nil && r.Logger != nil {
		r.Logger.Warn("journal write", "err", err)
	}
}

// nextAction returns the next non-blank line decoded as an Action.
func nextAction(sc *bufio.Scanner, line *int) (Action, bool, error) {
	for sc.Scan() {
		*line++
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}
		var act Action
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&act); err != nil {
			return Action{}, false, errors.Wrap(errors.ErrCodeInvalidInput, err, "line %d", *line)
		}
		return act, true, nil
	}
	if err := sc.Err(); err != nil {
		return Action{}, false, errors.Wrap(errors.ErrCodeInvalidInput, err, "read actions")
	}
	return Action{}, false, nil
}
