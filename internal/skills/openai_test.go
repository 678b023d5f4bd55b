package skills_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/garnizeh/eduverify/internal/skills"
)

func TestOpenAI_ExtractSkills(t *testing.T) {
	var gotFormat string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		var req struct {
			ResponseFormat struct {
				Type string `json:"type"`
			} `json:"response_format"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		gotFormat = req.ResponseFormat.Type

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  "gpt-test",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": `{"skills": ["Figma", "UX Research"]}`},
			}},
		})
	}))
	defer srv.Close()

	ex, err := skills.NewOpenAI("sk-test", srv.URL+"/v1", "gpt-test")
	if err != nil {
		t.Fatalf("NewOpenAI: %v", err)
	}
	got, err := ex.ExtractSkills(context.Background(), "Transit app redesign")
	if err != nil {
		t.Fatalf("ExtractSkills: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"Figma", "UX Research"}) {
		t.Fatalf("unexpected skills %v", got)
	}
	if gotFormat != "json_object" {
		t.Fatalf("expected json_object response format, got %q", gotFormat)
	}
}

func TestOpenAI_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited","type":"requests"}}`))
	}))
	defer srv.Close()

	ex, err := skills.NewOpenAI("sk-test", srv.URL+"/v1", "gpt-test")
	if err != nil {
		t.Fatalf("NewOpenAI: %v", err)
	}
	if _, err := ex.ExtractSkills(context.Background(), "x"); err == nil {
		t.Fatalf("expected error on 429")
	}
}

func TestNewOpenAI_RequiresKey(t *testing.T) {
	if _, err := skills.NewOpenAI("", "", "m"); err == nil {
		t.Fatalf("expected error without api key")
	}
}
