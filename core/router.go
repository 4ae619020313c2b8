package orchestration

import (
	"strconv"
	"strings"

	"github.com/koscakluka/scribe-core/core/events"
	"github.com/koscakluka/scribe-core/core/inference"
)

// resultRouter maps a completed analysis job back to the originating
// session's outbound channel. The destination is resolved at routing time:
// results for sessions that no longer exist are dropped silently, which is
// the expected outcome whenever a session disconnects while jobs are still
// in flight.
type resultRouter struct {
	store     *sessionStore
	emitEvent eventEmitter
}

func newResultRouter(store *sessionStore, emitEvent eventEmitter) *resultRouter {
	return &resultRouter{store: store, emitEvent: emitEvent}
}

// Route delivers one job completion. Called exactly once per job, with
// either the raw inference output or the job's error.
func (r *resultRouter) Route(sessionID string, task inference.Task, output string, err error) {
	if !r.store.Exists(sessionID) {
		logger.Debug("dropping result for destroyed session",
			"session_id", sessionID, "task", string(task))
		return
	}

	if err != nil {
		r.emitEvent(sessionID, events.NewAnalysisFailed(string(task), err.Error()))
		return
	}

	switch task {
	case inference.TaskDifferentialDiagnosis:
		r.emitEvent(sessionID, events.NewDiagnosisRanked(ParseScoredLabels(output)))
	case inference.TaskSymptomExtraction:
		r.emitEvent(sessionID, events.NewSymptomsExtracted(SplitKeywords(output)))
	case inference.TaskQuestionSuggestion:
		r.emitEvent(sessionID, events.NewQuestionsSuggested(output))
	case inference.TaskNoteGeneration:
		r.emitEvent(sessionID, events.NewNoteGenerated(output))
	}
}

// RouteTranscript delivers a transcript snapshot after an accepted append.
func (r *resultRouter) RouteTranscript(sessionID string, transcript string) {
	if !r.store.Exists(sessionID) {
		return
	}
	r.emitEvent(sessionID, events.NewTranscriptUpdated(transcript))
}

// ParseScoredLabels parses "Label [score]" lines into a label-to-score map.
// Labels are trimmed; lines without a parseable integer score are skipped.
func ParseScoredLabels(text string) map[string]int {
	result := map[string]int{}
	for _, line := range strings.Split(text, "\n") {
		if !strings.Contains(line, " [") || !strings.Contains(line, "]") {
			continue
		}

		label, rest, _ := cutLast(line, " [")
		score, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(rest), "]"))
		if err != nil {
			continue
		}
		result[strings.TrimSpace(label)] = score
	}
	return result
}

// SplitKeywords splits delimiter-separated keywords into an ordered slice.
// Tokens are not trimmed: whitespace around the | delimiter is preserved,
// matching the upstream model output contract.
func SplitKeywords(text string) []string {
	return strings.Split(text, "|")
}

func cutLast(s string, sep string) (before string, after string, found bool) {
	if i := strings.LastIndex(s, sep); i >= 0 {
		return s[:i], s[i+len(sep):], true
	}
	return s, "", false
}
