package orchestration

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"unicode/utf8"

	"github.com/koscakluka/scribe-core/core/audio"
	"github.com/koscakluka/scribe-core/core/speechtotext"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var ErrNoSuchRoom = errors.New("no such room")

// room is a named group of sessions sharing one audio ingestion path. A room
// exists iff it has at least one member; the last member leaving tears the
// room down, pool included.
type room struct {
	id      string
	members map[string]struct{}
	pool    *workerPool

	// liveStream is set in live-captioning mode. Audio then bypasses the
	// decode pool and is forwarded to the stream in submission order.
	liveStream speechtotext.StreamingTranscriber
}

type roomManager struct {
	mu    sync.Mutex
	rooms map[string]*room

	// transcriber decodes buffered chunks; a nil transcriber means submitted
	// audio is accepted and dropped at decode time.
	transcriber speechtotext.Transcriber
	// liveFactory, when set, switches rooms to live-captioning mode with one
	// stream per room.
	liveFactory func() speechtotext.StreamingTranscriber

	poolWorkers    int
	noiseThreshold int

	// broadcast hands decoded text to the pipeline for every current member
	// of the room.
	broadcast func(ctx context.Context, roomID string, text string)

	baseContext context.Context
}

func newRoomManager(
	baseContext context.Context,
	transcriber speechtotext.Transcriber,
	liveFactory func() speechtotext.StreamingTranscriber,
	poolWorkers int,
	noiseThreshold int,
	broadcast func(ctx context.Context, roomID string, text string),
) *roomManager {
	return &roomManager{
		rooms:          map[string]*room{},
		transcriber:    transcriber,
		liveFactory:    liveFactory,
		poolWorkers:    poolWorkers,
		noiseThreshold: noiseThreshold,
		broadcast:      broadcast,
		baseContext:    baseContext,
	}
}

// Join adds the session to the room, creating the room with a fresh worker
// pool on first join. Idempotent on repeat joins.
func (m *roomManager) Join(roomID string, sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.rooms[roomID]
	if !ok {
		r = &room{
			id:      roomID,
			members: map[string]struct{}{},
			pool:    newWorkerPool(m.poolWorkers),
		}
		if m.liveFactory != nil {
			r.liveStream = m.liveFactory()
			if err := r.liveStream.Start(m.baseContext,
				speechtotext.WithTranscriptionCallback(func(transcript string) {
					m.handleDecoded(m.baseContext, roomID, transcript)
				}),
				speechtotext.WithEncodingInfo(audio.GetDefaultEncodingInfo()),
			); err != nil {
				log.Println("Failed to start live transcription stream", "room_id", roomID, "error", err)
				r.liveStream = nil
			}
		}
		m.rooms[roomID] = r
	}

	r.members[sessionID] = struct{}{}
}

// Leave removes the session from the room. When membership reaches zero the
// room's pool is shut down synchronously and the room is removed; queued
// decode tasks still drain, but no new submissions are accepted.
func (m *roomManager) Leave(roomID string, sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.rooms[roomID]
	if !ok {
		return
	}

	delete(r.members, sessionID)
	if len(r.members) == 0 {
		m.teardownLocked(r)
	}
}

// RemoveFromAllRooms handles a session disconnecting without leaving its
// rooms first: the session is removed from every membership and any room
// left empty is torn down, so no pool leaks.
func (m *roomManager) RemoveFromAllRooms(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.rooms {
		if _, ok := r.members[sessionID]; !ok {
			continue
		}
		delete(r.members, sessionID)
		if len(r.members) == 0 {
			m.teardownLocked(r)
		}
	}
}

func (m *roomManager) teardownLocked(r *room) {
	delete(m.rooms, r.id)
	r.pool.Shutdown()

	if r.liveStream != nil {
		if err := r.liveStream.Close(m.baseContext); err != nil {
			log.Println("Failed to close live transcription stream", "error", err)
		}
	}
}

// Members returns a snapshot of the room's current membership.
func (m *roomManager) Members(roomID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.rooms[roomID]
	if !ok {
		return nil
	}

	members := make([]string, 0, len(r.members))
	for member := range r.members {
		members = append(members, member)
	}
	return members
}

// SubmitAudio submits one chunk of raw samples for decoding. Fails with
// ErrNoSuchRoom if the room does not exist (including a room torn down
// between lookup and submission).
func (m *roomManager) SubmitAudio(roomID string, samples []float32) error {
	m.mu.Lock()
	r, ok := m.rooms[roomID]
	m.mu.Unlock()
	if !ok {
		return ErrNoSuchRoom
	}

	if r.liveStream != nil {
		if err := r.liveStream.SendAudio(audio.BytesFromSamples(samples)); err != nil {
			return fmt.Errorf("failed to forward audio to live stream: %w", err)
		}
		return nil
	}

	err := r.pool.Submit(func() { m.decode(m.baseContext, roomID, samples) })
	if errors.Is(err, ErrPoolClosed) {
		return ErrNoSuchRoom
	}
	return err
}

// decode runs on a room pool worker. A failed decode drops the chunk and
// never affects the room or other chunks.
func (m *roomManager) decode(ctx context.Context, roomID string, samples []float32) {
	if m.transcriber == nil {
		return
	}

	ctx, span := tracer.Start(ctx, "decode audio chunk", trace.WithAttributes(
		attribute.String("room.id", roomID),
		attribute.Int("chunk.samples", len(samples)),
	))
	defer span.End()

	text, err := m.transcriber.Transcribe(ctx, samples)
	if err != nil {
		recordedErr := fmt.Errorf("failed to transcribe audio chunk: %w", err)
		span.RecordError(recordedErr)
		span.SetStatus(codes.Error, recordedErr.Error())
		return
	}

	m.handleDecoded(ctx, roomID, text)
}

// handleDecoded gates decoded text against the noise threshold and hands it
// to the pipeline. Decoded text is broadcast to every member present in the
// room at decode-completion time, not just the submitter: in a multi-listener
// room each participant's session keeps its own copy of the shared
// conversation.
func (m *roomManager) handleDecoded(ctx context.Context, roomID string, text string) {
	if utf8.RuneCountInString(text) <= m.noiseThreshold {
		logger.Debug("ignoring decoded noise", "room_id", roomID, "text", text)
		return
	}

	m.broadcast(ctx, roomID, text)
}

// CloseAll tears down every room regardless of membership.
func (m *roomManager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.rooms {
		m.teardownLocked(r)
	}
}
