package editor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"reeledit/gate"
	"reeledit/timeline"
)

var ErrSessionNotFound = errors.New("session not found")

// Session is the state behind one page load. It is discarded when the page
// goes away or sits idle too long.
type Session struct {
	ID      string
	Store   *timeline.Store
	Gate    *gate.Gate
	Created time.Time

	lastSeen atomic.Int64 // unix nanoseconds
	attached atomic.Int32 // open play-head streams
}

func (s *Session) touch(now time.Time) {
	s.lastSeen.Store(now.UnixNano())
}

// LastSeen returns when the session was last looked up.
func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

// Sessions is the set of live sessions.
type Sessions struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	newStore     func() *timeline.Store
	blockedWidth int
	now          func() time.Time
	log          *zap.SugaredLogger
}

func newSessions(newStore func() *timeline.Store, blockedWidth int, log *zap.SugaredLogger) *Sessions {
	return &Sessions{
		sessions:     make(map[string]*Session),
		newStore:     newStore,
		blockedWidth: blockedWidth,
		now:          time.Now,
		log:          log,
	}
}

// Create starts a session with an empty timeline.
func (s *Sessions) Create() *Session {
	now := s.now()
	sess := &Session{
		ID:      uuid.NewString(),
		Store:   s.newStore(),
		Gate:    gate.New(s.blockedWidth),
		Created: now,
	}
	sess.touch(now)

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	n := len(s.sessions)
	s.mu.Unlock()

	s.log.Debugw("session created", "session", sess.ID, "live", n)
	return sess
}

// Get looks up a session by ID and marks it as in use.
func (s *Sessions) Get(id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.touch(s.now())
	return sess, nil
}

// Drop discards a session. Dropping an unknown session is a no-op.
func (s *Sessions) Drop(id string) bool {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if ok {
		s.log.Debugw("session dropped", "session", id)
	}
	return ok
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// attach marks a long-lived connection on the session. Attached sessions are
// never reaped. The returned func detaches.
func (s *Sessions) attach(sess *Session) (detach func()) {
	sess.attached.Add(1)
	return func() {
		sess.attached.Add(-1)
		sess.touch(s.now())
	}
}

// Reap drops every session that has no play-head stream and has not been
// looked up within maxIdle. It returns how many were dropped.
func (s *Sessions) Reap(maxIdle time.Duration) int {
	cutoff := s.now().Add(-maxIdle)

	s.mu.Lock()
	var dropped []*Session
	for id, sess := range s.sessions {
		if sess.attached.Load() == 0 && sess.LastSeen().Before(cutoff) {
			delete(s.sessions, id)
			dropped = append(dropped, sess)
		}
	}
	live := len(s.sessions)
	s.mu.Unlock()

	for _, sess := range dropped {
		s.log.Debugw("session expired", "session", sess.ID, "age", s.now().Sub(sess.Created))
	}
	if len(dropped) > 0 {
		s.log.Infow("idle sessions reaped", "dropped", len(dropped), "live", live)
	}
	return len(dropped)
}

// RunReaper reaps idle sessions every interval until ctx is done.
func (s *Sessions) RunReaper(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Reap(maxIdle)
		}
	}
}
