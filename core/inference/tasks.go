package inference

import "fmt"

// Task enumerates the analysis kinds the engine fans out on every accepted
// input chunk.
type Task string

const (
	TaskNoteGeneration        Task = "note-generation"
	TaskDifferentialDiagnosis Task = "differential-diagnosis"
	TaskQuestionSuggestion    Task = "question-suggestion"
	TaskSymptomExtraction     Task = "symptom-extraction"
)

const diagnosisInstructions = `Based on the provided transcript snippets from a doctor-patient consultation, generate a differential diagnosis. List each possible diagnosis on its own line with a model confidence score from 0-100 in square brackets (example: Influenza [30]), 100 being most confident. Consider the patient's stated symptoms, their medical history, and any other relevant information in the transcript. Output only the diagnosis lines.`

const questionInstructions = `Based on the provided transcript snippets from a doctor-patient consultation, internally form a differential diagnosis, then suggest the top 3 short, succinct questions the doctor could ask to clarify the diagnosis or gather more information. Do not output the differential diagnosis, only the questions.`

const symptomInstructions = `Based on the provided transcript snippets from a doctor-patient consultation, extract medical keywords about the patient's stated symptoms, medical history, and any other medically relevant information. Return the recognized keywords separated by | (example: fever | cough | feeling cold).`

const noteInstructions = `Based on the conversation transcript and the doctor's hints provided, generate a clinical note with the following sections: Diagnosis, History of Presenting Illness, Medications (Prescribed), Lab Tests (Ordered). Consider any information in the transcript relevant to each section and use the doctor's hints as a guide.`

// Instructions returns the system prompt for the task.
func (t Task) Instructions() string {
	switch t {
	case TaskDifferentialDiagnosis:
		return diagnosisInstructions
	case TaskQuestionSuggestion:
		return questionInstructions
	case TaskSymptomExtraction:
		return symptomInstructions
	case TaskNoteGeneration:
		return noteInstructions
	}
	return ""
}

// Prompt renders the user prompt for the task from the job input.
func (t Task) Prompt(input Input) string {
	if t == TaskNoteGeneration && input.Hints != "" {
		return fmt.Sprintf("### Conversation Transcript\n%s\n\n### Doctor's Hint\n%s", input.Transcript, input.Hints)
	}
	return input.Transcript
}
