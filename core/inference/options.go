package inference

import "context"

// Client executes one analysis task against an external inference backend
// and returns its raw text output.
//
// Calls may take arbitrarily long and fail independently; callers run them
// off any goroutine that routes network events and contain failures at the
// job boundary.
type Client interface {
	Infer(ctx context.Context, task Task, input Input) (string, error)
}

// NoteGenerator is an optional capability for clients that can produce a
// structured clinical note instead of raw text.
type NoteGenerator interface {
	GenerateNote(ctx context.Context, transcript string, hints string) (*ClinicalNote, error)
}

// Input carries the immutable inputs of one analysis job: the transcript
// snapshot taken at dispatch time and optional privileged-caller hints.
type Input struct {
	Transcript string
	Hints      string
}
