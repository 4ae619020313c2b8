package events

const (
	// KindSessionConnected identifies the connection acknowledgment.
	KindSessionConnected Kind = "session.connected"
	// KindTranscriptUpdated identifies full transcript snapshots after appends.
	KindTranscriptUpdated Kind = "session.transcript_updated"
)

// SessionConnected acknowledges a new connection with its assigned session id.
type SessionConnected struct {
	Base
	SessionID string `json:"session_id"`
}

// NewSessionConnected creates a connection acknowledgment event.
func NewSessionConnected(sessionID string) SessionConnected {
	return SessionConnected{Base: NewBase(KindSessionConnected), SessionID: sessionID}
}

// TranscriptUpdated carries the full transcript after an accepted append.
type TranscriptUpdated struct {
	Base
	Transcript string `json:"transcript"`
}

// NewTranscriptUpdated creates a transcript snapshot event.
func NewTranscriptUpdated(transcript string) TranscriptUpdated {
	return TranscriptUpdated{Base: NewBase(KindTranscriptUpdated), Transcript: transcript}
}
