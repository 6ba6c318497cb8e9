package grader

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNew_RequiresAPIKey(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Fatal("New() should fail without an API key")
	}
}

func TestEvaluate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
		}

		var req chatRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.ResponseFormat.Type != "json_object" {
			t.Errorf("response format = %q, want json_object", req.ResponseFormat.Type)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}
		if !strings.Contains(req.Messages[1].Content, "What is TCP?") {
			t.Errorf("user prompt missing question: %s", req.Messages[1].Content)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{
					"content": `{"evaluation": "正确", "feedback": "Solid answer."}`,
				}},
			},
		})
	}))
	defer server.Close()

	client, err := New("test-key", WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	eval, err := client.Evaluate(context.Background(), "What is TCP?", "A transport protocol.", "My answer.")
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if eval.Evaluation != "正确" {
		t.Errorf("evaluation = %q, want 正确", eval.Evaluation)
	}
	if eval.Feedback != "Solid answer." {
		t.Errorf("feedback = %q", eval.Feedback)
	}
}

func TestEvaluate_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": "rate limited"}`))
	}))
	defer server.Close()

	client, _ := New("k", WithBaseURL(server.URL))
	if _, err := client.Evaluate(context.Background(), "q", "r", "a"); err == nil {
		t.Fatal("Evaluate() should surface API errors")
	}
}

func TestEvaluate_MissingKeysRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": `{"evaluation": "正确"}`}},
			},
		})
	}))
	defer server.Close()

	client, _ := New("k", WithBaseURL(server.URL))
	if _, err := client.Evaluate(context.Background(), "q", "r", "a"); err == nil {
		t.Fatal("Evaluate() should reject a response missing required keys")
	}
}

func TestEvaluate_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer server.Close()

	client, _ := New("k", WithBaseURL(server.URL))
	if _, err := client.Evaluate(context.Background(), "q", "r", "a"); err == nil {
		t.Fatal("Evaluate() should fail on an empty choices list")
	}
}
