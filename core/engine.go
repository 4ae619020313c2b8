package orchestration

import (
	"context"
	"sync"

	"github.com/koscakluka/scribe-core/core/events"
	"github.com/koscakluka/scribe-core/core/inference"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// defaultInputNoiseThreshold rejects text chunks this many runes long or
	// shorter as noise fragments.
	defaultInputNoiseThreshold = 1
	// defaultDecodeNoiseThreshold discards decoded audio text this many
	// runes long or shorter as noise.
	defaultDecodeNoiseThreshold = 8
	// defaultRoomPoolWorkers bounds concurrent decode tasks per room.
	defaultRoomPoolWorkers = 4
)

// Engine orchestrates per-session transcript assembly, fan-out analysis
// dispatch, result routing and room-based audio ingestion.
//
// Sessions and rooms execute concurrently and independently: one session's
// pending inference never blocks another session, and one room's decode
// backlog never starves another room's pool.
type Engine struct {
	store      *sessionStore
	dispatcher *dispatcher
	router     *resultRouter
	rooms      *roomManager

	options EngineOptions

	closeOnce   sync.Once
	baseContext context.Context
	cancel      context.CancelFunc
}

func NewEngine(opts ...EngineOption) *Engine {
	options := EngineOptions{
		roomPoolWorkers:      defaultRoomPoolWorkers,
		inputNoiseThreshold:  defaultInputNoiseThreshold,
		decodeNoiseThreshold: defaultDecodeNoiseThreshold,
	}
	for _, opt := range opts {
		opt(&options)
	}

	baseContext, cancel := context.WithCancel(context.Background())

	store := newSessionStore()
	router := newResultRouter(store, newCallbackEventEmitter(options))

	e := &Engine{
		store:       store,
		router:      router,
		options:     options,
		baseContext: baseContext,
		cancel:      cancel,
	}
	e.dispatcher = newDispatcher(store, router, options.inferenceClient, options.inputNoiseThreshold)
	e.rooms = newRoomManager(
		baseContext,
		options.transcriber,
		options.liveFactory,
		options.roomPoolWorkers,
		options.decodeNoiseThreshold,
		e.broadcastDecoded,
	)

	return e
}

// Connect creates the session and acknowledges it on the session's own
// channel. Connecting with an id already in use starts that session over.
func (e *Engine) Connect(sessionID string) {
	e.store.Create(sessionID)
	e.router.emitEvent(sessionID, events.NewSessionConnected(sessionID))
}

// Disconnect removes the session from every room it joined, tearing down
// rooms left empty, then destroys the session. Analysis jobs already in
// flight keep running; their results are dropped at routing time.
func (e *Engine) Disconnect(sessionID string) {
	e.rooms.RemoveFromAllRooms(sessionID)
	e.store.Destroy(sessionID)
}

// OnInput handles one text input chunk for the session; see
// dispatcher.OnInput for acceptance and ordering semantics.
func (e *Engine) OnInput(sessionID string, text string) (bool, error) {
	return e.dispatcher.OnInput(e.baseContext, sessionID, text)
}

// SetSummary sets the session's free-form summary field (privileged caller;
// nothing is broadcast).
func (e *Engine) SetSummary(sessionID string, text string) error {
	return e.store.SetSummary(sessionID, text)
}

func (e *Engine) SetFlag(sessionID string, key string, value bool) error {
	return e.store.SetFlag(sessionID, key, value)
}

// Session returns a point-in-time snapshot of session state.
func (e *Engine) Session(sessionID string) (SessionSnapshot, error) {
	return e.store.Get(sessionID)
}

func (e *Engine) JoinRoom(roomID string, sessionID string) {
	e.rooms.Join(roomID, sessionID)
}

func (e *Engine) LeaveRoom(roomID string, sessionID string) {
	e.rooms.Leave(roomID, sessionID)
}

// SubmitAudio submits one chunk of raw float32 samples to the room's
// ingestion path. The sample rate is agreed out-of-band
// (audio.DefaultSampleRate).
func (e *Engine) SubmitAudio(roomID string, samples []float32) error {
	return e.rooms.SubmitAudio(roomID, samples)
}

// GenerateNote launches an on-demand clinical note generation using the
// doctor's hints against the current transcript snapshot. The result is
// routed to the session like any other note-generation job. Clients capable
// of structured note generation are preferred over raw text output.
func (e *Engine) GenerateNote(ctx context.Context, sessionID string, hints string) error {
	snapshot, err := e.store.Get(sessionID)
	if err != nil {
		return err
	}

	client := e.dispatcher.client
	if client == nil {
		return nil
	}

	go func() {
		ctx, span := tracer.Start(ctx, "generate clinical note",
			trace.WithAttributes(attribute.Int("transcript.length", len(snapshot.Transcript))))
		defer span.End()

		if generator, ok := client.(inference.NoteGenerator); ok {
			note, err := generator.GenerateNote(ctx, snapshot.Transcript, hints)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				e.router.Route(sessionID, inference.TaskNoteGeneration, "", err)
				return
			}
			e.router.Route(sessionID, inference.TaskNoteGeneration, note.Render(), nil)
			return
		}

		output, err := client.Infer(ctx, inference.TaskNoteGeneration,
			inference.Input{Transcript: snapshot.Transcript, Hints: hints})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		e.router.Route(sessionID, inference.TaskNoteGeneration, output, err)
	}()

	return nil
}

// broadcastDecoded dispatches room-decoded text as an input chunk for every
// current member of the room.
func (e *Engine) broadcastDecoded(ctx context.Context, roomID string, text string) {
	for _, member := range e.rooms.Members(roomID) {
		if _, err := e.dispatcher.OnInput(ctx, member, text); err != nil {
			logger.Debug("failed to dispatch decoded text",
				"room_id", roomID, "session_id", member, "error", err)
		}
	}
}

// Close tears down every room and releases engine resources. In-flight
// decode tasks and analysis jobs run to completion; their results are
// dropped once their sessions are gone.
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		e.rooms.CloseAll()
		e.cancel()
	})
}
