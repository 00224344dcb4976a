package widget

import "sync"

// sessionStore keeps live sessions in memory. Sessions only die with the
// process, mirroring the browser-tab lifetime of the original widget.
type sessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func newSessionStore() *sessionStore {
	return &sessionStore{
		sessions: make(map[string]*Session),
	}
}

func (st *sessionStore) add(sess *Session) {
	st.mu.Lock()
	st.sessions[sess.ID] = sess
	st.mu.Unlock()
}

func (st *sessionStore) get(id string) (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	sess, ok := st.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}
