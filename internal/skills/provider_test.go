package skills_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/garnizeh/eduverify/internal/config"
	"github.com/garnizeh/eduverify/internal/skills"
	"github.com/garnizeh/eduverify/pkg/ollama"
)

func TestNew_Providers(t *testing.T) {
	ctx := context.Background()

	ex, closeFn, err := skills.New(ctx, config.SkillsConfig{Provider: config.ProviderStatic}, nil)
	if err != nil {
		t.Fatalf("static: %v", err)
	}
	if _, ok := ex.(*skills.Static); !ok {
		t.Fatalf("expected *skills.Static, got %T", ex)
	}
	if err := closeFn(); err != nil {
		t.Fatalf("close: %v", err)
	}

	ex, closeFn, err = skills.New(ctx, config.SkillsConfig{
		Provider: config.ProviderOpenAI,
		OpenAI:   config.OpenAIConfig{APIKey: "sk-test", Model: "gpt-test"},
	}, nil)
	if err != nil {
		t.Fatalf("openai: %v", err)
	}
	if _, ok := ex.(*skills.OpenAI); !ok {
		t.Fatalf("expected *skills.OpenAI, got %T", ex)
	}
	_ = closeFn()

	oc := ollama.DefaultConfig()
	ex, closeFn, err = skills.New(ctx, config.SkillsConfig{Provider: config.ProviderOllama, TemplateVersion: "v1", Ollama: oc}, seededPrompts(t))
	if err != nil {
		t.Fatalf("ollama: %v", err)
	}
	if _, ok := ex.(*skills.Ollama); !ok {
		t.Fatalf("expected *skills.Ollama, got %T", ex)
	}
	if err := closeFn(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestNew_Errors(t *testing.T) {
	ctx := context.Background()
	cases := []config.SkillsConfig{
		{Provider: "magic"},
		{Provider: config.ProviderOllama, TemplateVersion: "v1", Ollama: ollama.DefaultConfig()},
		{Provider: config.ProviderOpenAI},
	}
	for _, c := range cases {
		_, closeFn, err := skills.New(ctx, c, nil)
		if err == nil {
			t.Fatalf("provider %q: expected error", c.Provider)
		}
		if closeFn == nil {
			t.Fatalf("provider %q: close func must not be nil", c.Provider)
		}
	}
}

func TestNew_OllamaChecksInstance(t *testing.T) {
	var tags int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			http.NotFound(w, r)
			return
		}
		atomic.AddInt32(&tags, 1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"models": []map[string]any{{"name": "llama3:latest", "size": 1}}})
	}))
	defer srv.Close()

	oc := ollama.DefaultConfig()
	oc.BaseURL = srv.URL
	ex, closeFn, err := skills.New(context.Background(), config.SkillsConfig{Provider: config.ProviderOllama, TemplateVersion: "v1", Ollama: oc}, seededPrompts(t))
	if err != nil {
		t.Fatalf("ollama: %v", err)
	}
	defer closeFn()

	if _, ok := ex.(skills.Reloader); !ok {
		t.Fatalf("ollama extractor should support schema reload")
	}
	if atomic.LoadInt32(&tags) == 0 {
		t.Fatalf("expected a startup health check against /api/tags")
	}
}
