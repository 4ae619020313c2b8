package speechtotext

import (
	"context"

	"github.com/koscakluka/scribe-core/core/audio"
)

// Transcriber decodes one buffered chunk of audio samples into text.
//
// Calls may take arbitrarily long; callers are expected to run them off any
// goroutine that routes network events.
type Transcriber interface {
	Transcribe(ctx context.Context, samples []float32) (string, error)
}

// StreamingTranscriber transcribes a continuous audio stream, delivering
// final transcripts through the configured callback as they are produced.
type StreamingTranscriber interface {
	Start(ctx context.Context, opts ...TranscriptionOption) error
	SendAudio(audio []byte) error
	Close(ctx context.Context) error
}

type TranscriptionOptions struct {
	TranscriptionCallback func(transcript string)

	EncodingInfo audio.EncodingInfo
}

type TranscriptionOption func(*TranscriptionOptions)

// WithTranscriptionCallback registers a callback for final transcripts.
func WithTranscriptionCallback(callback func(transcript string)) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.TranscriptionCallback = callback
	}
}

func WithEncodingInfo(encodingInfo audio.EncodingInfo) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.EncodingInfo = encodingInfo
	}
}
