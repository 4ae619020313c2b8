package orchestration

import "github.com/koscakluka/scribe-core/core/events"

// eventEmitter delivers one outbound event to a session's channel.
// Delivery is fire-and-forget: no acknowledgment or backpressure from the
// client is waited upon.
type eventEmitter func(sessionID string, event events.Event)

func newCallbackEventEmitter(opts EngineOptions) eventEmitter {
	return func(sessionID string, event events.Event) {
		if opts.onEvent != nil {
			opts.onEvent(sessionID, event)
		}

		switch typedEvent := event.(type) {
		case events.SessionConnected:
			if opts.onConnected != nil {
				opts.onConnected(sessionID)
			}
		case events.TranscriptUpdated:
			if opts.onTranscript != nil {
				opts.onTranscript(sessionID, typedEvent.Transcript)
			}
		case events.DiagnosisRanked:
			if opts.onDiagnosis != nil {
				opts.onDiagnosis(sessionID, typedEvent.Scores)
			}
		case events.QuestionsSuggested:
			if opts.onQuestions != nil {
				opts.onQuestions(sessionID, typedEvent.Questions)
			}
		case events.SymptomsExtracted:
			if opts.onSymptoms != nil {
				opts.onSymptoms(sessionID, typedEvent.Symptoms)
			}
		case events.NoteGenerated:
			if opts.onNote != nil {
				opts.onNote(sessionID, typedEvent.Note)
			}
		case events.AnalysisFailed:
			if opts.onAnalysisFailure != nil {
				opts.onAnalysisFailure(sessionID, typedEvent.JobKind, typedEvent.Reason)
			}
		}
	}
}
