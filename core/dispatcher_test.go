package orchestration

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/koscakluka/scribe-core/core/events"
	"github.com/koscakluka/scribe-core/core/inference"
)

type stubInferenceClient struct {
	mu     sync.Mutex
	inputs map[inference.Task][]inference.Input

	outputs map[inference.Task]string
	errs    map[inference.Task]error

	// block, when set, holds every Infer call until the channel closes.
	block chan struct{}
}

func newStubInferenceClient() *stubInferenceClient {
	return &stubInferenceClient{
		inputs:  map[inference.Task][]inference.Input{},
		outputs: map[inference.Task]string{},
		errs:    map[inference.Task]error{},
	}
}

func (c *stubInferenceClient) Infer(ctx context.Context, task inference.Task, input inference.Input) (string, error) {
	if c.block != nil {
		<-c.block
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inputs[task] = append(c.inputs[task], input)
	return c.outputs[task], c.errs[task]
}

func (c *stubInferenceClient) inputsFor(task inference.Task) []inference.Input {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]inference.Input{}, c.inputs[task]...)
}

func newTestDispatcher(client inference.Client) (*dispatcher, *sessionStore, chan events.Event) {
	store := newSessionStore()
	captured := make(chan events.Event, 64)
	router := newResultRouter(store, func(sessionID string, event events.Event) {
		captured <- event
	})
	return newDispatcher(store, router, client, defaultInputNoiseThreshold), store, captured
}

func collectEvents(t *testing.T, captured chan events.Event, count int) []events.Event {
	t.Helper()

	collected := []events.Event{}
	for len(collected) < count {
		select {
		case event := <-captured:
			collected = append(collected, event)
		case <-time.After(time.Second):
			t.Fatalf("Timed out waiting for events, got %d of %d", len(collected), count)
		}
	}
	return collected
}

func TestDispatcherRejectsNoiseInput(t *testing.T) {
	client := newStubInferenceClient()
	d, store, captured := newTestDispatcher(client)
	store.Create("session-1")

	for _, text := range []string{"", "a", "…"} {
		accepted, err := d.OnInput(context.Background(), "session-1", text)
		if err != nil {
			t.Fatalf("Unexpected error for input %q: %v", text, err)
		}
		if accepted {
			t.Fatalf("Expected input %q to be rejected", text)
		}
	}

	select {
	case event := <-captured:
		t.Fatalf("Expected no events for rejected input, got %T", event)
	case <-time.After(50 * time.Millisecond):
	}

	snapshot, err := store.Get("session-1")
	if err != nil {
		t.Fatalf("Unexpected error getting session: %v", err)
	}
	if snapshot.Transcript != "" {
		t.Fatalf("Expected rejected input to leave transcript empty, got %q", snapshot.Transcript)
	}
}

func TestDispatcherFansOutOnAcceptedInput(t *testing.T) {
	client := newStubInferenceClient()
	client.outputs[inference.TaskDifferentialDiagnosis] = "Influenza [80]"
	client.outputs[inference.TaskSymptomExtraction] = "fever|cough"
	client.outputs[inference.TaskQuestionSuggestion] = "How high is the fever?"
	client.outputs[inference.TaskNoteGeneration] = "Diagnosis: influenza"

	d, store, captured := newTestDispatcher(client)
	store.Create("session-1")

	accepted, err := d.OnInput(context.Background(), "session-1", "I have a fever and a cough")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !accepted {
		t.Fatal("Expected input to be accepted")
	}

	collected := collectEvents(t, captured, 5)

	// The transcript snapshot is emitted synchronously, before any job lands.
	transcript, ok := collected[0].(events.TranscriptUpdated)
	if !ok {
		t.Fatalf("Expected TranscriptUpdated first, got %T", collected[0])
	}
	if transcript.Transcript != "I have a fever and a cough\n" {
		t.Errorf("Unexpected transcript: %q", transcript.Transcript)
	}

	kinds := map[events.Kind]int{}
	for _, event := range collected[1:] {
		kinds[event.Kind()]++
	}
	for _, kind := range []events.Kind{
		events.KindDiagnosisRanked,
		events.KindSymptomsExtracted,
		events.KindQuestionsSuggested,
		events.KindNoteGenerated,
	} {
		if kinds[kind] != 1 {
			t.Errorf("Expected exactly one %q event, got %d", kind, kinds[kind])
		}
	}
}

func TestDispatcherJobsSnapshotTranscriptAtDispatch(t *testing.T) {
	client := newStubInferenceClient()
	d, store, captured := newTestDispatcher(client)
	store.Create("session-1")

	if _, err := d.OnInput(context.Background(), "session-1", "first chunk"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	collectEvents(t, captured, 5)

	if _, err := d.OnInput(context.Background(), "session-1", "second chunk"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	collectEvents(t, captured, 5)

	inputs := client.inputsFor(inference.TaskDifferentialDiagnosis)
	if len(inputs) != 2 {
		t.Fatalf("Expected 2 diagnosis jobs, got %d", len(inputs))
	}
	if inputs[0].Transcript != "first chunk\n" {
		t.Errorf("Unexpected first job transcript: %q", inputs[0].Transcript)
	}
	if inputs[1].Transcript != "first chunk\nsecond chunk\n" {
		t.Errorf("Unexpected second job transcript: %q", inputs[1].Transcript)
	}
}

func TestDispatcherContainsJobFailures(t *testing.T) {
	client := newStubInferenceClient()
	client.errs[inference.TaskDifferentialDiagnosis] = errors.New("backend unavailable")

	d, store, captured := newTestDispatcher(client)
	store.Create("session-1")

	if _, err := d.OnInput(context.Background(), "session-1", "I have a fever"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	failures, successes := 0, 0
	for _, event := range collectEvents(t, captured, 5)[1:] {
		if failure, ok := event.(events.AnalysisFailed); ok {
			failures++
			if failure.JobKind != string(inference.TaskDifferentialDiagnosis) {
				t.Errorf("Unexpected failed job kind: %q", failure.JobKind)
			}
			continue
		}
		successes++
	}

	if failures != 1 {
		t.Errorf("Expected exactly 1 failure, got %d", failures)
	}
	if successes != 3 {
		t.Errorf("Expected the 3 sibling jobs to complete, got %d", successes)
	}
}

// gatedInferenceClient holds every job of the dispatch matching hold until
// the gate closes, letting later dispatches complete first.
type gatedInferenceClient struct {
	gate chan struct{}
	hold string
}

func (c *gatedInferenceClient) Infer(ctx context.Context, task inference.Task, input inference.Input) (string, error) {
	if input.Transcript == c.hold {
		<-c.gate
	}
	if task == inference.TaskDifferentialDiagnosis {
		if input.Transcript == c.hold {
			return "Influenza [80]", nil
		}
		return "Common Cold [40]", nil
	}
	return "", nil
}

func awaitDiagnosis(t *testing.T, captured chan events.Event) events.DiagnosisRanked {
	t.Helper()

	deadline := time.After(time.Second)
	for {
		select {
		case event := <-captured:
			if diagnosis, ok := event.(events.DiagnosisRanked); ok {
				return diagnosis
			}
		case <-deadline:
			t.Fatal("Timed out waiting for a diagnosis event")
		}
	}
}

func TestDispatcherDeliversOutOfOrderCompletionsIntact(t *testing.T) {
	client := &gatedInferenceClient{gate: make(chan struct{}), hold: "first chunk\n"}
	d, store, captured := newTestDispatcher(client)
	store.Create("session-1")

	if _, err := d.OnInput(context.Background(), "session-1", "first chunk"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, err := d.OnInput(context.Background(), "session-1", "second chunk"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// The second dispatch's diagnosis lands while the first is still running.
	second := awaitDiagnosis(t, captured)
	if !reflect.DeepEqual(second.Scores, map[string]int{"Common Cold": 40}) {
		t.Fatalf("Unexpected later-dispatch scores: %v", second.Scores)
	}

	close(client.gate)

	first := awaitDiagnosis(t, captured)
	if !reflect.DeepEqual(first.Scores, map[string]int{"Influenza": 80}) {
		t.Fatalf("Unexpected earlier-dispatch scores: %v", first.Scores)
	}
}

func TestDispatcherDropsResultsAfterSessionDestroyed(t *testing.T) {
	client := newStubInferenceClient()
	client.block = make(chan struct{})

	d, store, captured := newTestDispatcher(client)
	store.Create("session-1")

	if _, err := d.OnInput(context.Background(), "session-1", "I have a fever"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	collectEvents(t, captured, 1) // transcript snapshot

	store.Destroy("session-1")
	close(client.block)

	select {
	case event := <-captured:
		t.Fatalf("Expected results for a destroyed session to be dropped, got %T", event)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDispatcherWithoutClientStillAssemblesTranscript(t *testing.T) {
	d, store, captured := newTestDispatcher(nil)
	store.Create("session-1")

	accepted, err := d.OnInput(context.Background(), "session-1", "I have a fever")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !accepted {
		t.Fatal("Expected input to be accepted")
	}

	collectEvents(t, captured, 1)
	select {
	case event := <-captured:
		t.Fatalf("Expected no analysis events without a client, got %T", event)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDispatcherUnknownSession(t *testing.T) {
	d, _, _ := newTestDispatcher(nil)

	if _, err := d.OnInput(context.Background(), "ghost", "long enough input"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Expected ErrSessionNotFound, got %v", err)
	}
}
