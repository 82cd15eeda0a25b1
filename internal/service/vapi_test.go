package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/yourusername/prepcall-api/internal/model"
)

var testQuestions = []model.Question{
	{ID: 1, Question: "Describe a hard bug you fixed.", ExpectedDuration: "3-5 minutes"},
	{ID: 2, Question: "How do you review code?", ExpectedDuration: "3-5 minutes"},
}

var testConfig = model.InterviewConfig{
	AIModel:    model.ModelChatGPT,
	Type:       model.TypeTechnical,
	Difficulty: model.DifficultyIntermediate,
	Duration:   30,
}

func TestVapiPrepareInterview(t *testing.T) {
	var gotPath, gotAuth string
	var gotPayload assistantPayload

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotPayload)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"id": "asst_123"})
	}))
	defer srv.Close()

	client := NewVapiClient("priv-key", "phone-1", srv.URL)
	setup, err := client.PrepareInterview(context.Background(), "sess-1", testQuestions, testConfig)
	if err != nil {
		t.Fatalf("PrepareInterview: %v", err)
	}

	if setup.AssistantID != "asst_123" {
		t.Errorf("assistantID = %q", setup.AssistantID)
	}
	if setup.PhoneNumberID != "phone-1" {
		t.Errorf("phoneNumberID = %q", setup.PhoneNumberID)
	}
	if gotPath != "/assistant" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAuth != "Bearer priv-key" {
		t.Errorf("auth = %q", gotAuth)
	}
	if gotPayload.MaxDurationSeconds != (30+5)*60 {
		t.Errorf("maxDurationSeconds = %d", gotPayload.MaxDurationSeconds)
	}
	if !strings.Contains(gotPayload.Model.SystemPrompt, "Describe a hard bug you fixed.") {
		t.Error("system prompt missing the first question")
	}
	if gotPayload.Metadata["sessionId"] != "sess-1" {
		t.Errorf("metadata sessionId = %v", gotPayload.Metadata["sessionId"])
	}
}

func TestVapiPrepareInterviewErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewVapiClient("priv-key", "", srv.URL)
	if _, err := client.PrepareInterview(context.Background(), "s", testQuestions, testConfig); err == nil {
		t.Error("expected error on upstream 401")
	}

	noKey := NewVapiClient("", "", srv.URL)
	if _, err := noKey.PrepareInterview(context.Background(), "s", testQuestions, testConfig); err == nil {
		t.Error("expected error with no private key")
	}

	if _, err := client.PrepareInterview(context.Background(), "s", nil, testConfig); err == nil {
		t.Error("expected error with no questions")
	}
}

func TestInlineProviderBuildsConfig(t *testing.T) {
	p := NewInlineVoiceProvider("pub-key")
	setup, err := p.PrepareInterview(context.Background(), "sess-1", testQuestions, testConfig)
	if err != nil {
		t.Fatalf("PrepareInterview: %v", err)
	}

	if setup.PublicKey != "pub-key" {
		t.Errorf("publicKey = %q", setup.PublicKey)
	}
	if setup.AssistantID != "" {
		t.Error("inline mode must not set an assistant id")
	}

	var cfg inlineAssistantConfig
	if err := json.Unmarshal(setup.InlineConfig, &cfg); err != nil {
		t.Fatalf("inline config is not valid JSON: %v", err)
	}
	if cfg.Transcriber.Provider != "deepgram" || cfg.Transcriber.Model != "nova-2" {
		t.Errorf("transcriber = %+v", cfg.Transcriber)
	}
	if len(cfg.Model.Messages) == 0 || !strings.Contains(cfg.Model.Messages[0].Content, "How do you review code?") {
		t.Error("inline system prompt missing questions")
	}
}

func TestInlineProviderRequiresKey(t *testing.T) {
	p := NewInlineVoiceProvider("")
	if _, err := p.PrepareInterview(context.Background(), "s", testQuestions, testConfig); err == nil {
		t.Error("expected error with no public key")
	}
}

func TestBuildInterviewScript(t *testing.T) {
	script := BuildInterviewScript(testQuestions, testConfig)

	for _, want := range []string{
		"technical interview at intermediate level",
		"1. Describe a hard bug you fixed.",
		"2. How do you review code?",
		"Duration: 30 minutes",
		"Number of questions: 2",
	} {
		if !strings.Contains(script, want) {
			t.Errorf("script missing %q", want)
		}
	}
}

func TestWelcomeMessage(t *testing.T) {
	msg := WelcomeMessage(testConfig)
	if !strings.Contains(msg, "technical interview") || !strings.Contains(msg, "30-minute") {
		t.Errorf("welcome message = %q", msg)
	}
}
