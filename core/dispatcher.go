package orchestration

import (
	"context"
	"unicode/utf8"

	"github.com/koscakluka/scribe-core/core/inference"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// dispatcher turns accepted input chunks into transcript appends plus a
// fan-out of independent analysis jobs.
type dispatcher struct {
	store  *sessionStore
	router *resultRouter

	// client stores the configured inference implementation. A nil client
	// means transcript assembly still works but no jobs are launched.
	client inference.Client

	fanOut         []inference.Task
	noiseThreshold int
}

func newDispatcher(store *sessionStore, router *resultRouter, client inference.Client, noiseThreshold int) *dispatcher {
	return &dispatcher{
		store:          store,
		router:         router,
		client:         client,
		fanOut:         defaultFanOut,
		noiseThreshold: noiseThreshold,
	}
}

// OnInput handles one input chunk for a session.
//
// Chunks at or below the noise threshold are rejected with (false, nil) and
// produce no side effects. On acceptance the chunk is appended to the
// session transcript and one analysis job per fan-out kind is launched
// against the post-append transcript snapshot; the call returns without
// waiting for any job to complete.
//
// Job completions carry no ordering guarantee, neither across kinds nor
// across successive calls for the same kind: a later-dispatched job may
// finish first. Consumers treat every delivered result as "latest known".
// This favors per-job latency over ordering and is deliberate.
func (d *dispatcher) OnInput(ctx context.Context, sessionID string, text string) (bool, error) {
	if utf8.RuneCountInString(text) <= d.noiseThreshold {
		logger.Debug("rejecting noise input chunk", "session_id", sessionID, "length", len(text))
		return false, nil
	}

	ctx, span := tracer.Start(ctx, "dispatch input chunk",
		trace.WithAttributes(attribute.Int("input.length", len(text))))
	defer span.End()

	transcript, err := d.store.AppendTranscript(sessionID, text)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, err
	}

	d.router.RouteTranscript(sessionID, transcript)

	for _, task := range d.fanOut {
		job := newAnalysisJob(task, sessionID, transcript)
		go d.run(ctx, job)
	}

	return true, nil
}

// run executes one job and reports its completion to the router exactly
// once. Failures are contained here: one failed job never cancels or taints
// its siblings. No automatic retry is performed; inference inputs are
// re-derivable from current transcript state, so a blind retry would only
// risk duplicate expensive calls.
func (d *dispatcher) run(ctx context.Context, job analysisJob) {
	if d.client == nil {
		return
	}

	ctx, span := tracer.Start(ctx, "run analysis job", trace.WithAttributes(
		attribute.String("job.id", job.id),
		attribute.String("job.kind", string(job.task)),
	))
	defer span.End()

	output, err := d.client.Infer(ctx, job.task, inference.Input{Transcript: job.transcript})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	d.router.Route(job.sessionID, job.task, output, err)
}
