package orchestrator

import (
	"fmt"
	"sync"

	"github.com/uaip-labs/uaip/internal/domain"
	uaiperrors "github.com/uaip-labs/uaip/internal/errors"
)

// managedSession pairs a session with its own mutex. The mutex guards
// the session struct; it is never held across interviews, LLM calls, or
// store I/O.
type managedSession struct {
	mu   sync.Mutex
	sess *domain.Session

	// created is closed once the background initial persist has finished
	// (successfully or not). Later persists wait on it so an in-flight
	// create cannot overwrite newer state. Nil for sessions loaded from
	// the store, which already exist on disk.
	created chan struct{}
}

// arena is the in-memory session registry. Its mutex guards only
// structural mutation of the map, never session state.
type arena struct {
	mu       sync.Mutex
	sessions map[string]*managedSession
}

func newArena() *arena {
	return &arena{sessions: make(map[string]*managedSession)}
}

// get looks up a managed session.
func (a *arena) get(sessionID string) (*managedSession, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	ms, ok := a.sessions[sessionID]
	return ms, ok
}

// add registers a new session; the ID must be unused.
func (a *arena) add(sess *domain.Session) (*managedSession, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.sessions[sess.ID]; ok {
		return nil, fmt.Errorf("%w: %s", uaiperrors.ErrSessionExists, sess.ID)
	}
	ms := &managedSession{sess: sess, created: make(chan struct{})}
	a.sessions[sess.ID] = ms
	return ms, nil
}

// getOrAdd registers the session if absent and returns the managed
// entry either way; a concurrent loader's entry wins over ours.
func (a *arena) getOrAdd(sess *domain.Session) *managedSession {
	a.mu.Lock()
	defer a.mu.Unlock()
	if ms, ok := a.sessions[sess.ID]; ok {
		return ms
	}
	ms := &managedSession{sess: sess}
	a.sessions[sess.ID] = ms
	return ms
}

// replace installs fresh session state, overwriting any existing entry.
// Used by resume, where the store is authoritative.
func (a *arena) replace(sess *domain.Session) *managedSession {
	a.mu.Lock()
	defer a.mu.Unlock()
	if ms, ok := a.sessions[sess.ID]; ok {
		ms.mu.Lock()
		ms.sess = sess
		ms.mu.Unlock()
		return ms
	}
	ms := &managedSession{sess: sess}
	a.sessions[sess.ID] = ms
	return ms
}
