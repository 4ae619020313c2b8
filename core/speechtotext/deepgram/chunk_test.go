package deepgram

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/koscakluka/scribe-core/core/audio"
)

func TestChunkClientTranscribeParsesFirstAlternative(t *testing.T) {
	var gotBody []byte
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotBody, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{"results":{"channels":[{"alternatives":[{"transcript":" patient reports fever ","confidence":0.98}]}]}}`))
	}))
	defer server.Close()

	client := &ChunkClient{
		apiKey:     "test-key",
		encoding:   audio.GetDefaultEncodingInfo(),
		baseURL:    server.URL,
		httpClient: server.Client(),
	}

	transcript, err := client.Transcribe(context.Background(), []float32{0, 0.25, -0.25, 0.5})
	if err != nil {
		t.Fatalf("expected transcribe to succeed, got %v", err)
	}

	if transcript != "patient reports fever" {
		t.Fatalf("expected trimmed transcript, got %q", transcript)
	}
	if gotAuth != "Token test-key" {
		t.Fatalf("expected token auth header, got %q", gotAuth)
	}
	if len(gotBody) != 8 {
		t.Fatalf("expected 4 samples as 8 linear16 bytes, got %d bytes", len(gotBody))
	}
}

func TestChunkClientTranscribeReportsNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := &ChunkClient{
		apiKey:     "test-key",
		encoding:   audio.GetDefaultEncodingInfo(),
		baseURL:    server.URL,
		httpClient: server.Client(),
	}

	if _, err := client.Transcribe(context.Background(), []float32{0}); err == nil {
		t.Fatalf("expected an error for non-OK status")
	}
}

func TestChunkClientTranscribeReturnsEmptyWithoutAlternatives(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":{"channels":[]}}`))
	}))
	defer server.Close()

	client := &ChunkClient{
		apiKey:     "test-key",
		encoding:   audio.GetDefaultEncodingInfo(),
		baseURL:    server.URL,
		httpClient: server.Client(),
	}

	transcript, err := client.Transcribe(context.Background(), []float32{0})
	if err != nil {
		t.Fatalf("expected transcribe to succeed, got %v", err)
	}
	if transcript != "" {
		t.Fatalf("expected empty transcript, got %q", transcript)
	}
}
