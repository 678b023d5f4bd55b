package ollama_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/garnizeh/eduverify/pkg/ollama"
)

// writeSequence writes each object as a JSON line and flushes; useful to simulate Ollama's streaming.
func writeSequence(w http.ResponseWriter, seq []map[string]any, delay time.Duration) {
	enc := json.NewEncoder(w)
	for i, obj := range seq {
		_ = enc.Encode(obj)
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		if i < len(seq)-1 && delay > 0 {
			time.Sleep(delay)
		}
	}
}

func tagsHandler(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet && r.URL.Path == "/api/tags" {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(body))
			return
		}
		http.NotFound(w, r)
	}
}

func newClient(t *testing.T, srv *httptest.Server, cfg ollama.Config) *ollama.Client {
	t.Helper()
	cfg.BaseURL = srv.URL
	if cfg.Timeout == 0 {
		cfg.Timeout = 2 * time.Second
	}
	client, err := ollama.NewClient(cfg, srv.Client())
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestNewClient_InvalidURL(t *testing.T) {
	if _, err := ollama.NewClient(ollama.Config{BaseURL: "not a url"}, nil); err == nil {
		t.Fatalf("expected error for invalid base url")
	}
}

func TestClient_ListModelsAndHealth_Success(t *testing.T) {
	srv := httptest.NewServer(tagsHandler(`{"models":[{"name":"test-model","size":42}]}`))
	defer srv.Close()

	client := newClient(t, srv, ollama.Config{})
	ctx := context.Background()

	models, err := client.ListModels(ctx)
	if err != nil {
		t.Fatalf("ListModels failed: %v", err)
	}
	if len(models) != 1 || models[0].Name != "test-model" || models[0].Size != 42 {
		t.Fatalf("unexpected models: %#v", models)
	}

	if err := client.Health(ctx); err != nil {
		t.Fatalf("Health failed: %v", err)
	}
}

func TestClient_Health_NoModels_Fails(t *testing.T) {
	srv := httptest.NewServer(tagsHandler(`{"models":[]}`))
	defer srv.Close()

	client := newClient(t, srv, ollama.Config{})
	if err := client.Health(context.Background()); err == nil {
		t.Fatalf("expected Health to fail when no models returned")
	}
}

func TestClient_Generate_Streaming_Success(t *testing.T) {
	var gotFormat string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.URL.Path == "/api/generate" {
			var body struct {
				Format json.RawMessage `json:"format"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			gotFormat = string(body.Format)

			w.Header().Set("Content-Type", "application/x-ndjson")
			writeSequence(w, []map[string]any{
				{"response": `{"skills": [`, "done": false},
				{"response": `"Go"]}`, "done": true},
			}, 10*time.Millisecond)
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	client := newClient(t, srv, ollama.Config{})
	res, err := client.Generate(context.Background(), "test-model", "prompt")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if res.Text != `{"skills": ["Go"]}` {
		t.Fatalf("unexpected Generate.Text: %q", res.Text)
	}
	if gotFormat != `"json"` {
		t.Fatalf("expected json format request, got %s", gotFormat)
	}
	if res.Meta["model"] != "test-model" {
		t.Fatalf("unexpected meta: %#v", res.Meta)
	}
}

func TestClient_Generate_Non200_Fails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "server error", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newClient(t, srv, ollama.Config{})
	if _, err := client.Generate(context.Background(), "test-model", "prompt"); err == nil {
		t.Fatalf("expected Generate to fail on non-200")
	}
}

func TestClient_Generate_MalformedJSON_Fails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{ this is : not json `))
	}))
	defer srv.Close()

	client := newClient(t, srv, ollama.Config{})
	if _, err := client.Generate(context.Background(), "test-model", "prompt"); err == nil {
		t.Fatalf("expected Generate to fail on malformed JSON")
	}
}

func TestClient_Generate_Retries_Backoff_Succeeds(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if atomic.AddInt32(&attempts, 1) == 1 {
				http.Error(w, "temporary", http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			writeSequence(w, []map[string]any{{"response": "ok", "done": true}}, 0)
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	client := newClient(t, srv, ollama.Config{Retries: 2, Backoff: 10 * time.Millisecond, CircuitFailureThreshold: 10})
	res, err := client.Generate(context.Background(), "m", "p")
	if err != nil {
		t.Fatalf("Generate expected success after retry, got error: %v", err)
	}
	if _, ok := res.Meta["latency_ms"]; !ok {
		t.Fatalf("expected latency_ms in meta")
	}
	if atomic.LoadInt32(&attempts) != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
}

func TestClient_Generate_ContextCanceledDuringBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := newClient(t, srv, ollama.Config{Retries: 3, Backoff: time.Minute})
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := client.Generate(ctx, "m", "p")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Fatalf("backoff ignored context cancellation")
	}
}

func TestClient_CircuitBreaker_Opens(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		http.Error(w, "permanent", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newClient(t, srv, ollama.Config{Timeout: time.Second, Backoff: time.Millisecond, CircuitFailureThreshold: 2, CircuitReset: time.Minute})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := client.Generate(ctx, "m", "p"); err == nil || errors.Is(err, ollama.ErrCircuitOpen) {
			t.Fatalf("expected plain error on attempt %d, got %v", i+1, err)
		}
	}

	if _, err := client.Generate(ctx, "m", "p"); !errors.Is(err, ollama.ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
	if got := atomic.LoadInt32(&attempts); got != 2 {
		t.Fatalf("expected open circuit to short-circuit requests, server saw %d", got)
	}
}

func TestGenerateResult_MarshalMeta(t *testing.T) {
	gr := ollama.GenerateResult{Text: "ok", Raw: json.RawMessage(`{"x":1}`), Meta: map[string]any{"model": "m", "latency_ms": 123}}
	b, err := json.Marshal(gr)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if s := string(b); !strings.Contains(s, "latency_ms") || !strings.Contains(s, "model") {
		t.Fatalf("unexpected marshaled result: %s", s)
	}
}

func TestRenderTemplate(t *testing.T) {
	out, err := ollama.RenderTemplate("Describe: {{.Description}}", struct{ Description string }{"solar pump"})
	if err != nil {
		t.Fatalf("RenderTemplate: %v", err)
	}
	if out != "Describe: solar pump" {
		t.Fatalf("unexpected render %q", out)
	}
	if _, err := ollama.RenderTemplate("{{.Missing}}", struct{ Description string }{}); err == nil {
		t.Fatalf("expected error for unknown field")
	}
	if _, err := ollama.RenderTemplate("{{", nil); err == nil {
		t.Fatalf("expected parse error")
	}
}
