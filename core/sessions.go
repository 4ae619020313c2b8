package orchestration

import (
	"errors"
	"sync"

	"github.com/jinzhu/copier"
)

var ErrSessionNotFound = errors.New("session not found")

// transcriptSeparator joins accepted input chunks into the session transcript.
const transcriptSeparator = "\n"

type session struct {
	mu sync.Mutex

	transcript string
	summary    string
	flags      map[string]bool
}

func newSession() *session {
	return &session{
		flags: map[string]bool{
			FlagRecording: false,
			FlagCamera:    false,
		},
	}
}

// Session flag keys with engine-provided defaults.
const (
	FlagRecording = "recording"
	FlagCamera    = "camera"
)

// SessionSnapshot is a point-in-time copy of one session's state.
type SessionSnapshot struct {
	ID         string
	Transcript string
	Summary    string
	Flags      map[string]bool
}

// sessionStore holds per-session mutable state. The registry map has its own
// lock; every session carries a per-entry lock so unrelated sessions never
// contend with each other.
type sessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*session
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: map[string]*session{}}
}

// Create inserts a fresh session with an empty transcript and default flags.
// An existing session under the same id is overwritten: reconnecting with a
// previously used id is a valid scenario and starts the session over.
func (s *sessionStore) Create(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sessionID] = newSession()
}

// Destroy removes the session. No-op if the session is absent.
func (s *sessionStore) Destroy(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionID)
}

func (s *sessionStore) Exists(sessionID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.sessions[sessionID]
	return ok
}

func (s *sessionStore) lookup(sessionID string) (*session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return entry, nil
}

// AppendTranscript appends text plus the separator to the session transcript
// and returns the post-append transcript.
func (s *sessionStore) AppendTranscript(sessionID string, text string) (string, error) {
	entry, err := s.lookup(sessionID)
	if err != nil {
		return "", err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	entry.transcript += text + transcriptSeparator
	return entry.transcript, nil
}

func (s *sessionStore) SetFlag(sessionID string, key string, value bool) error {
	entry, err := s.lookup(sessionID)
	if err != nil {
		return err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	entry.flags[key] = value
	return nil
}

// SetSummary sets the free-form summary field. Reserved for privileged
// callers; the engine does not broadcast the change.
func (s *sessionStore) SetSummary(sessionID string, text string) error {
	entry, err := s.lookup(sessionID)
	if err != nil {
		return err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	entry.summary = text
	return nil
}

// Get returns a defensive snapshot of the session.
func (s *sessionStore) Get(sessionID string) (SessionSnapshot, error) {
	entry, err := s.lookup(sessionID)
	if err != nil {
		return SessionSnapshot{}, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	snapshot := SessionSnapshot{
		ID:         sessionID,
		Transcript: entry.transcript,
		Summary:    entry.summary,
	}
	copier.Copy(&snapshot.Flags, entry.flags)
	return snapshot, nil
}
