package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// newFakeLLM spins up a chat-completions stub and points both provider
// endpoints at it.
func newFakeLLM(t *testing.T, handler http.HandlerFunc) *LLMClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewLLMClient("test-key", srv.URL, "test-key", srv.URL)
}

// replyWith wraps content in the chat-completions response envelope
func replyWith(content string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}
}

func TestCompleteSendsModelAndAuth(t *testing.T) {
	var gotAuth, gotModel string
	llm := newFakeLLM(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		var req chatRequest
		json.NewDecoder(r.Body).Decode(&req)
		gotModel = req.Model
		replyWith("hello")(w, r)
	})

	text, err := llm.complete(context.Background(), chatParams{selector: "deepseek", user: "hi"})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if text != "hello" {
		t.Errorf("text = %q", text)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("auth header = %q", gotAuth)
	}
	if gotModel != "deepseek/deepseek-chat" {
		t.Errorf("model = %q, want deepseek/deepseek-chat", gotModel)
	}
}

func TestResolveSelectorMapping(t *testing.T) {
	llm := NewLLMClient("oa-key", "https://oa", "or-key", "https://or")

	cases := []struct {
		selector string
		baseURL  string
		modelID  string
	}{
		{"chatgpt", "https://oa", "gpt-4o-mini"},
		{"gemini", "https://or", "google/gemini-2.0-flash-exp:free"},
		{"deepseek", "https://or", "deepseek/deepseek-chat"},
		{"", "https://oa", "gpt-4o-mini"},
		{"unknown-model", "https://oa", "gpt-4o-mini"},
	}
	for _, c := range cases {
		up := llm.resolve(c.selector)
		if up.baseURL != c.baseURL || up.modelID != c.modelID {
			t.Errorf("resolve(%q) = {%s %s}, want {%s %s}", c.selector, up.baseURL, up.modelID, c.baseURL, c.modelID)
		}
	}
}

func TestCompleteMissingKey(t *testing.T) {
	llm := NewLLMClient("", "https://oa", "", "https://or")
	if _, err := llm.complete(context.Background(), chatParams{user: "hi"}); err == nil {
		t.Fatal("expected error with no API key configured")
	}
}

func TestCompleteJSONStripsFences(t *testing.T) {
	llm := newFakeLLM(t, replyWith("```json\n{\"value\": 42}\n```"))

	var out struct {
		Value int `json:"value"`
	}
	if err := llm.completeJSON(context.Background(), chatParams{user: "hi"}, nil, &out); err != nil {
		t.Fatalf("completeJSON: %v", err)
	}
	if out.Value != 42 {
		t.Errorf("value = %d, want 42", out.Value)
	}
}

func TestCompleteJSONSchemaRejection(t *testing.T) {
	llm := newFakeLLM(t, replyWith(`{"unrelated": true}`))

	schema := mustSchema(`{"type": "object", "required": ["value"]}`)
	var out map[string]any
	if err := llm.completeJSON(context.Background(), chatParams{user: "hi"}, schema, &out); err == nil {
		t.Fatal("expected schema validation error")
	}
}

func TestStripCodeFences(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{`{"a":1}`, `{"a":1}`},
		{"plain text", "plain text"},
	}
	for _, c := range cases {
		if got := stripCodeFences(c.in); got != c.want {
			t.Errorf("stripCodeFences(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
