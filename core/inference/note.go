package inference

import (
	"fmt"
	"strings"
)

// ClinicalNote is the structured form of a generated clinical note.
type ClinicalNote struct {
	Diagnosis                  string   `json:"diagnosis" jsonschema:"title=Diagnosis,description=The working diagnosis for the consultation"`
	HistoryOfPresentingIllness string   `json:"history_of_presenting_illness" jsonschema:"title=History of Presenting Illness,description=Summary of the presenting illness based on the transcript"`
	Medications                []string `json:"medications" jsonschema:"title=Medications (Prescribed),description=Current and newly added medications with continuation status"`
	LabTests                   []string `json:"lab_tests" jsonschema:"title=Lab Tests (Ordered),description=Lab tests ordered during the consultation"`
}

// Render formats the note the way it is delivered to clients.
func (n ClinicalNote) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Diagnosis: %s\n", n.Diagnosis)
	fmt.Fprintf(&b, "History of Presenting Illness: %s\n", n.HistoryOfPresentingIllness)
	b.WriteString("Medications (Prescribed):\n")
	for _, medication := range n.Medications {
		fmt.Fprintf(&b, "%s\n", medication)
	}
	b.WriteString("Lab Tests (Ordered):")
	if len(n.LabTests) == 0 {
		b.WriteString(" None")
	} else {
		for _, labTest := range n.LabTests {
			fmt.Fprintf(&b, "\n%s", labTest)
		}
	}
	return b.String()
}
