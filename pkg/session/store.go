package session

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/reasontree/pkg/errors"
)

// DefaultTTL is how long an idle session is kept.
const DefaultTTL = 2 * time.Hour

// Store keeps sessions in memory and expires idle ones.
type Store struct {
	ttl    time.Duration
	logger *log.Logger
	now    func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore creates an empty store. A ttl <= 0 means [DefaultTTL].
func NewStore(ttl time.Duration, logger *log.Logger) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Store{
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Put adds sess to the store.
func (st *Store) Put(sess *Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[sess.ID()] = sess
}

// Get returns the session with id and marks it as used.
func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	sess, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil, errors.New(errors.ErrCodeSessionNotFound, "session %q not found", id)
	}
	sess.Touch()
	return sess, nil
}

// Delete closes and removes the session with id. Deleting an unknown id is
// a no-op.
func (st *Store) Delete(id string) error {
	st.mu.Lock()
	sess, ok := st.sessions[id]
	delete(st.sessions, id)
	st.mu.Unlock()
	if !ok {
		return nil
	}
	return sess.Close()
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Cleanup closes and removes sessions idle for longer than the TTL and
// returns how many were removed.
func (st *Store) Cleanup() int {
	cutoff := st.now().Add(-st.ttl)

	st.mu.Lock()
	var expired []*Session
	for id, sess := range st.sessions {
		if sess.idleSince().Before(cutoff) {
			expired = append(expired, sess)
			delete(st.sessions, id)
		}
	}
	st.mu.Unlock()

	for _, sess := range expired {
		if err := sess.Close(); err != nil {
			st.logger.Warn("close expired session", "session", sess.ID(), "err", err)
		}
	}
	if len(expired) > 0 {
		st.logger.Debug("expired sessions", "count", len(expired))
	}
	return len(expired)
}

// Run calls Cleanup every interval until ctx is done, then closes every
// remaining session.
func (st *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			st.CloseAll()
			return
		case <-ticker.C:
			st.Cleanup()
		}
	}
}

// CloseAll closes and removes every session.
func (st *Store) CloseAll() {
	st.mu.Lock()
	all := st.sessions
	st.sessions = make(map[string]*Session)
	st.mu.Unlock()
	for _, sess := range all {
		_ = sess.Close()
	}
}
