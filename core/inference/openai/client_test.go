package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/koscakluka/scribe-core/core/inference"
)

func newTestClient(server *httptest.Server) *Client {
	return &Client{
		apiKey:     "test-key",
		model:      defaultModel,
		baseURL:    server.URL,
		httpClient: server.Client(),
	}
}

func TestInferSendsTaskPromptAndReturnsContent(t *testing.T) {
	var gotRequest requestBody
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &gotRequest); err != nil {
			t.Errorf("failed to unmarshal request body: %v", err)
		}
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Flu [80]\nCold [40]"}}]}`))
	}))
	defer server.Close()

	client := newTestClient(server)

	output, err := client.Infer(context.Background(),
		inference.TaskDifferentialDiagnosis,
		inference.Input{Transcript: "patient reports fever and cough"})
	if err != nil {
		t.Fatalf("expected infer to succeed, got %v", err)
	}

	if output != "Flu [80]\nCold [40]" {
		t.Fatalf("expected raw model output, got %q", output)
	}
	if len(gotRequest.Messages) != 2 {
		t.Fatalf("expected system and user messages, got %d", len(gotRequest.Messages))
	}
	if gotRequest.Messages[0].Role != messageRoleSystem || gotRequest.Messages[0].Content == "" {
		t.Fatalf("expected task instructions as system message, got %+v", gotRequest.Messages[0])
	}
	if gotRequest.Messages[1].Content != "patient reports fever and cough" {
		t.Fatalf("expected transcript as user message, got %q", gotRequest.Messages[1].Content)
	}
}

func TestInferReportsNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newTestClient(server)

	if _, err := client.Infer(context.Background(),
		inference.TaskSymptomExtraction, inference.Input{Transcript: "text"}); err == nil {
		t.Fatalf("expected an error for non-OK status")
	}
}

func TestGenerateNoteRequestsSchemaAndParsesNote(t *testing.T) {
	var gotRequest requestBody
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &gotRequest); err != nil {
			t.Errorf("failed to unmarshal request body: %v", err)
		}
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"diagnosis\":\"Uncontrolled Diabetes\",\"history_of_presenting_illness\":\"Adherent but uncontrolled.\",\"medications\":[\"[Added] Jalra-OD 100mg\"],\"lab_tests\":[]}"}}]}`))
	}))
	defer server.Close()

	client := newTestClient(server)

	note, err := client.GenerateNote(context.Background(), "transcript text", "uncontrolled diabetes")
	if err != nil {
		t.Fatalf("expected note generation to succeed, got %v", err)
	}

	if note.Diagnosis != "Uncontrolled Diabetes" {
		t.Fatalf("expected diagnosis to be parsed, got %q", note.Diagnosis)
	}
	if len(note.Medications) != 1 {
		t.Fatalf("expected one medication, got %v", note.Medications)
	}
	if gotRequest.ResponseFormat == nil || gotRequest.ResponseFormat.Type != "json_schema" {
		t.Fatalf("expected a json_schema response format, got %+v", gotRequest.ResponseFormat)
	}
	if gotRequest.ResponseFormat.JSONSchema == nil || gotRequest.ResponseFormat.JSONSchema.Name != "ClinicalNote" {
		t.Fatalf("expected the ClinicalNote schema to be requested")
	}
}

func TestGenerateNoteStripsCodeFences(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"` + "```" + `{\"diagnosis\":\"Flu\",\"history_of_presenting_illness\":\"\",\"medications\":[],\"lab_tests\":[]}` + "```" + `"}}]}`))
	}))
	defer server.Close()

	client := newTestClient(server)

	note, err := client.GenerateNote(context.Background(), "transcript", "")
	if err != nil {
		t.Fatalf("expected note generation to succeed, got %v", err)
	}
	if note.Diagnosis != "Flu" {
		t.Fatalf("expected fenced JSON to be parsed, got %q", note.Diagnosis)
	}
}
