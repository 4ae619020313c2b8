// Package events defines the typed outbound event contract of the engine.
//
// Every event is addressed to exactly one session's outbound channel; the
// engine resolves the destination at routing time and drops events whose
// session no longer exists.
//
// Event kinds are grouped by receiver-facing namespaces:
//
//   - session.*
//   - analysis.*
//
// session events
//
//   - SessionConnected (session.connected): acknowledgment carrying the
//     session id assigned for the connection.
//   - TranscriptUpdated (session.transcript_updated): full transcript
//     snapshot after an accepted input chunk was appended.
//
// analysis events
//
// Analysis events carry the output of one fan-out inference job. They are
// unordered: a job dispatched later may complete and arrive earlier, so each
// payload is a "latest known" value, never a monotonic stream.
//
//   - DiagnosisRanked (analysis.diagnosis_ranked): differential diagnosis
//     labels mapped to confidence scores.
//   - QuestionsSuggested (analysis.questions_suggested): suggested follow-up
//     questions, raw text.
//   - SymptomsExtracted (analysis.symptoms_extracted): extracted symptom
//     keywords in model output order, tokens not trimmed.
//   - NoteGenerated (analysis.note_generated): generated clinical note text.
//   - AnalysisFailed (analysis.failed): one job failed; carries the job kind
//     and the failure description. Sibling jobs are unaffected.
package events
