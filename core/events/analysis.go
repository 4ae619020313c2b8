package events

const (
	// KindDiagnosisRanked identifies differential diagnosis results.
	KindDiagnosisRanked Kind = "analysis.diagnosis_ranked"
	// KindQuestionsSuggested identifies suggested follow-up questions.
	KindQuestionsSuggested Kind = "analysis.questions_suggested"
	// KindSymptomsExtracted identifies extracted symptom keywords.
	KindSymptomsExtracted Kind = "analysis.symptoms_extracted"
	// KindNoteGenerated identifies generated clinical notes.
	KindNoteGenerated Kind = "analysis.note_generated"
	// KindAnalysisFailed identifies a failed fan-out job.
	KindAnalysisFailed Kind = "analysis.failed"
)

// DiagnosisRanked carries diagnosis labels mapped to confidence scores (0-100).
type DiagnosisRanked struct {
	Base
	Scores map[string]int `json:"scores"`
}

// NewDiagnosisRanked creates a differential diagnosis result event.
func NewDiagnosisRanked(scores map[string]int) DiagnosisRanked {
	return DiagnosisRanked{Base: NewBase(KindDiagnosisRanked), Scores: scores}
}

// QuestionsSuggested carries suggested follow-up questions as raw text.
type QuestionsSuggested struct {
	Base
	Questions string `json:"questions"`
}

// NewQuestionsSuggested creates a question suggestion result event.
func NewQuestionsSuggested(questions string) QuestionsSuggested {
	return QuestionsSuggested{Base: NewBase(KindQuestionsSuggested), Questions: questions}
}

// SymptomsExtracted carries symptom keywords in model output order.
//
// Tokens keep the whitespace surrounding the source delimiter; consumers that
// want trimmed keywords trim on their side.
type SymptomsExtracted struct {
	Base
	Symptoms []string `json:"symptoms"`
}

// NewSymptomsExtracted creates a symptom extraction result event.
func NewSymptomsExtracted(symptoms []string) SymptomsExtracted {
	return SymptomsExtracted{Base: NewBase(KindSymptomsExtracted), Symptoms: symptoms}
}

// NoteGenerated carries a generated clinical note as raw text.
type NoteGenerated struct {
	Base
	Note string `json:"note"`
}

// NewNoteGenerated creates a clinical note result event.
func NewNoteGenerated(note string) NoteGenerated {
	return NoteGenerated{Base: NewBase(KindNoteGenerated), Note: note}
}

// AnalysisFailed reports that a single fan-out job failed.
type AnalysisFailed struct {
	Base
	JobKind string `json:"job_kind"`
	Reason  string `json:"reason"`
}

// NewAnalysisFailed creates a job failure event.
func NewAnalysisFailed(jobKind string, reason string) AnalysisFailed {
	return AnalysisFailed{Base: NewBase(KindAnalysisFailed), JobKind: jobKind, Reason: reason}
}
