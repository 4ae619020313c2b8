package orchestration

import (
	"github.com/koscakluka/scribe-core/core/events"
	"github.com/koscakluka/scribe-core/core/inference"
	"github.com/koscakluka/scribe-core/core/speechtotext"
)

type EngineOptions struct {
	inferenceClient inference.Client
	transcriber     speechtotext.Transcriber
	liveFactory     func() speechtotext.StreamingTranscriber

	roomPoolWorkers      int
	inputNoiseThreshold  int
	decodeNoiseThreshold int

	onEvent           func(sessionID string, event events.Event)
	onConnected       func(sessionID string)
	onTranscript      func(sessionID string, transcript string)
	onDiagnosis       func(sessionID string, scores map[string]int)
	onQuestions       func(sessionID string, questions string)
	onSymptoms        func(sessionID string, symptoms []string)
	onNote            func(sessionID string, note string)
	onAnalysisFailure func(sessionID string, jobKind string, reason string)
}

type EngineOption func(*EngineOptions)

// WithInferenceClient configures the external inference backend used for
// fan-out analysis jobs. Without it, transcripts still assemble but no jobs
// are launched.
func WithInferenceClient(client inference.Client) EngineOption {
	return func(o *EngineOptions) {
		o.inferenceClient = client
	}
}

// WithTranscriber configures chunked audio decoding for room ingestion.
func WithTranscriber(client speechtotext.Transcriber) EngineOption {
	return func(o *EngineOptions) {
		o.transcriber = client
	}
}

// WithLiveTranscription switches rooms to live-captioning mode: each room
// opens its own stream from the factory at creation and forwards submitted
// audio to it in submission order instead of decoding chunks on its pool.
func WithLiveTranscription(factory func() speechtotext.StreamingTranscriber) EngineOption {
	return func(o *EngineOptions) {
		o.liveFactory = factory
	}
}

// WithRoomPoolWorkers bounds concurrent decode tasks per room.
func WithRoomPoolWorkers(workers int) EngineOption {
	return func(o *EngineOptions) {
		if workers > 0 {
			o.roomPoolWorkers = workers
		}
	}
}

// WithInputNoiseThreshold overrides the rune-length threshold at or below
// which text input chunks are rejected.
func WithInputNoiseThreshold(threshold int) EngineOption {
	return func(o *EngineOptions) {
		o.inputNoiseThreshold = threshold
	}
}

// WithDecodeNoiseThreshold overrides the rune-length threshold at or below
// which decoded audio text is discarded.
func WithDecodeNoiseThreshold(threshold int) EngineOption {
	return func(o *EngineOptions) {
		o.decodeNoiseThreshold = threshold
	}
}

// WithEventCallback registers a sink receiving every outbound event together
// with its destination session id. This is the transport attachment point.
func WithEventCallback(callback func(sessionID string, event events.Event)) EngineOption {
	return func(o *EngineOptions) {
		o.onEvent = callback
	}
}

// WithConnectedCallback registers a callback for connection acknowledgments.
func WithConnectedCallback(callback func(sessionID string)) EngineOption {
	return func(o *EngineOptions) {
		o.onConnected = callback
	}
}

// WithTranscriptCallback registers a callback for transcript snapshots after
// accepted appends.
func WithTranscriptCallback(callback func(sessionID string, transcript string)) EngineOption {
	return func(o *EngineOptions) {
		o.onTranscript = callback
	}
}

// WithDiagnosisCallback registers a callback for differential diagnosis
// results.
func WithDiagnosisCallback(callback func(sessionID string, scores map[string]int)) EngineOption {
	return func(o *EngineOptions) {
		o.onDiagnosis = callback
	}
}

// WithQuestionsCallback registers a callback for suggested questions.
func WithQuestionsCallback(callback func(sessionID string, questions string)) EngineOption {
	return func(o *EngineOptions) {
		o.onQuestions = callback
	}
}

// WithSymptomsCallback registers a callback for extracted symptom keywords.
func WithSymptomsCallback(callback func(sessionID string, symptoms []string)) EngineOption {
	return func(o *EngineOptions) {
		o.onSymptoms = callback
	}
}

// WithNoteCallback registers a callback for generated clinical notes.
func WithNoteCallback(callback func(sessionID string, note string)) EngineOption {
	return func(o *EngineOptions) {
		o.onNote = callback
	}
}

// WithAnalysisFailureCallback registers a callback for failed analysis jobs.
func WithAnalysisFailureCallback(callback func(sessionID string, jobKind string, reason string)) EngineOption {
	return func(o *EngineOptions) {
		o.onAnalysisFailure = callback
	}
}
