package control

import (
	"fmt"
	"sync"
)

// TokenName is the name under which the session token is persisted.
const TokenName = "token"

// TokenStore persists the session token between runs. Load returns "" and a
// nil error when no token is stored.
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// Session holds the authentication state shared by the API client, the
// guard and the poller. The id and the authenticated flag always change
// together: Authenticated implies a non-empty ID.
//
// A Session is safe for concurrent use; writes are last-writer-wins.
type Session struct {
	store TokenStore

	mu            sync.Mutex
	id            string
	authenticated bool
	lastError     string
	loaded        bool // persisted token already consulted
}

// NewSession returns an unauthenticated session backed by store. A nil store
// keeps the token in memory only.
func NewSession(store TokenStore) *Session {
	if store == nil {
		store = &MemoryTokens{}
	}
	return &Session{store: store}
}

// ID returns the in-memory session id.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Authenticated reports whether the session is believed valid.
func (s *Session) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

// LastError returns the message of the last failed login, if any.
func (s *Session) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

// Token returns the session id to send with a call. When memory holds none,
// the persisted token is read once and cached.
func (s *Session) Token() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.id != "" || s.loaded {
		return s.id, nil
	}
	s.loaded = true
	tok, err := s.store.Load()
	if err != nil {
		return "", fmt.Errorf("load %s: %w", TokenName, err)
	}
	s.id = tok
	return s.id, nil
}

// Restore marks the session authenticated when a token is persisted. It
// reports whether a token was found.
func (s *Session) Restore() (bool, error) {
	tok, err := s.store.Load()
	if err != nil {
		return false, fmt.Errorf("load %s: %w", TokenName, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = true
	if tok == "" {
		s.id = ""
		s.authenticated = false
		return false, nil
	}
	s.id = tok
	s.authenticated = true
	return true, nil
}

// Establish records a successful login and persists the token.
func (s *Session) Establish(id string) error {
	if id == "" {
		return fmt.Errorf("empty session id: %w", ErrValidation)
	}
	if err := s.store.Save(id); err != nil {
		return fmt.Errorf("save %s: %w", TokenName, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = id
	s.authenticated = true
	s.lastError = ""
	s.loaded = true
	return nil
}

// Fail records a rejected login. Any previous id is dropped.
func (s *Session) Fail(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = ""
	s.authenticated = false
	s.lastError = message
}

// Clear logs the session out: memory and the persisted token are both reset.
func (s *Session) Clear() error {
	s.mu.Lock()
	s.id = ""
	s.authenticated = false
	s.loaded = true
	s.mu.Unlock()
	if err := s.store.Clear(); err != nil {
		return fmt.Errorf("clear %s: %w", TokenName, err)
	}
	return nil
}

// MemoryTokens is a TokenStore that lives only as long as the process.
type MemoryTokens struct {
	mu    sync.Mutex
	token string
}

// Load returns the stored token.
func (m *MemoryTokens) Load() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

// Save stores token.
func (m *MemoryTokens) Save(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

// Clear removes the stored token.
func (m *MemoryTokens) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}

// Interface compliance check.
var _ TokenStore = (*MemoryTokens)(nil)
