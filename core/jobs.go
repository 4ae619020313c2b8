package orchestration

import (
	"github.com/google/uuid"
	"github.com/koscakluka/scribe-core/core/inference"
)

// defaultFanOut is the set of analysis jobs launched for every accepted
// input chunk.
var defaultFanOut = []inference.Task{
	inference.TaskNoteGeneration,
	inference.TaskDifferentialDiagnosis,
	inference.TaskQuestionSuggestion,
	inference.TaskSymptomExtraction,
}

// analysisJob captures one unit of fan-out work. Jobs are immutable once
// created: the transcript is a snapshot taken at dispatch time and the
// destination session id is bound at construction, so later transcript
// appends or session churn cannot affect an in-flight job.
type analysisJob struct {
	id         string
	task       inference.Task
	sessionID  string
	transcript string
}

func newAnalysisJob(task inference.Task, sessionID string, transcript string) analysisJob {
	return analysisJob{
		id:         uuid.NewString(),
		task:       task,
		sessionID:  sessionID,
		transcript: transcript,
	}
}
