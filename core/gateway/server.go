// Package gateway adapts the engine's event contract onto a websocket
// transport. One connection is one session: the session is created on
// upgrade, fed from inbound JSON envelopes, and destroyed when the
// connection drops.
package gateway

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	orchestration "github.com/koscakluka/scribe-core/core"
	"github.com/koscakluka/scribe-core/core/events"
)

// Inbound message types.
const (
	typeInputChunk   = "input_chunk"
	typeSetSummary   = "set_summary"
	typeSetFlag      = "set_flag"
	typeJoinRoom     = "join_room"
	typeLeaveRoom    = "leave_room"
	typeAudioChunk   = "audio_chunk"
	typeGenerateNote = "generate_note"
)

type inboundEnvelope struct {
	Type    string    `json:"type"`
	RoomID  string    `json:"room_id,omitempty"`
	Text    string    `json:"text,omitempty"`
	Key     string    `json:"key,omitempty"`
	Value   bool      `json:"value,omitempty"`
	Hints   string    `json:"hints,omitempty"`
	Samples []float32 `json:"samples,omitempty"`
}

type outboundEnvelope struct {
	Type    string       `json:"type"`
	Payload events.Event `json:"payload"`
}

type connection struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

// writeEvent delivers one outbound event. Fire-and-forget: write failures
// are logged, never propagated back into the engine.
func (c *connection) writeEvent(event events.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.WriteJSON(outboundEnvelope{
		Type:    string(event.Kind()),
		Payload: event,
	}); err != nil {
		log.Println("Failed to write event to client", "error", err)
	}
}

// Server owns the engine and the per-session connection registry.
type Server struct {
	engine   *orchestration.Engine
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[string]*connection
}

// NewServer builds the engine from the given options with the gateway
// attached as its outbound event sink.
func NewServer(opts ...orchestration.EngineOption) *Server {
	s := &Server{
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		conns:    map[string]*connection{},
	}

	opts = append(opts, orchestration.WithEventCallback(s.deliver))
	s.engine = orchestration.NewEngine(opts...)

	return s
}

// Engine exposes the engine for programmatic operations beside the
// websocket surface.
func (s *Server) Engine() *orchestration.Engine {
	return s.engine
}

func (s *Server) Close() {
	s.engine.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("failed to upgrade connection", "error", err)
		return
	}

	sessionID := uuid.NewString()

	c := &connection{conn: conn}
	s.mu.Lock()
	s.conns[sessionID] = c
	s.mu.Unlock()

	s.engine.Connect(sessionID)

	defer func() {
		s.engine.Disconnect(sessionID)

		s.mu.Lock()
		delete(s.conns, sessionID)
		s.mu.Unlock()

		conn.Close()
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug("connection read ended", "session_id", sessionID, "error", err)
			}
			return
		}

		var envelope inboundEnvelope
		if err := json.Unmarshal(msg, &envelope); err != nil {
			logger.Warn("failed to unmarshal client message", "session_id", sessionID, "error", err)
			continue
		}

		s.handle(sessionID, envelope)
	}
}

func (s *Server) handle(sessionID string, envelope inboundEnvelope) {
	switch envelope.Type {
	case typeInputChunk:
		if _, err := s.engine.OnInput(sessionID, envelope.Text); err != nil {
			logger.Warn("failed to handle input chunk", "session_id", sessionID, "error", err)
		}
	case typeSetSummary:
		if err := s.engine.SetSummary(sessionID, envelope.Text); err != nil {
			logger.Warn("failed to set summary", "session_id", sessionID, "error", err)
		}
	case typeSetFlag:
		if err := s.engine.SetFlag(sessionID, envelope.Key, envelope.Value); err != nil {
			logger.Warn("failed to set flag", "session_id", sessionID, "error", err)
		}
	case typeJoinRoom:
		s.engine.JoinRoom(envelope.RoomID, sessionID)
	case typeLeaveRoom:
		s.engine.LeaveRoom(envelope.RoomID, sessionID)
	case typeAudioChunk:
		if err := s.engine.SubmitAudio(envelope.RoomID, envelope.Samples); err != nil {
			logger.Warn("failed to submit audio", "session_id", sessionID,
				"room_id", envelope.RoomID, "error", err)
		}
	case typeGenerateNote:
		// Note jobs outlive the connection, like the rest of the pipeline:
		// the result is dropped at routing time if the session is gone.
		if err := s.engine.GenerateNote(context.Background(), sessionID, envelope.Hints); err != nil {
			logger.Warn("failed to generate note", "session_id", sessionID, "error", err)
		}
	default:
		logger.Debug("ignoring unknown message type", "session_id", sessionID, "type", envelope.Type)
	}
}

func (s *Server) deliver(sessionID string, event events.Event) {
	s.mu.Lock()
	c, ok := s.conns[sessionID]
	s.mu.Unlock()
	if !ok {
		// Session outlived its connection or is driven programmatically.
		return
	}

	c.writeEvent(event)
}
