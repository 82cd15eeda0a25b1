package service

import (
	"context"
	"net/http"
	"testing"
)

func TestGenerateFollowUpReturnsModelText(t *testing.T) {
	llm := newFakeLLM(t, replyWith("  Great, how did you measure that impact?  "))

	got := llm.GenerateFollowUp(context.Background(), "Tell me about a project.", "I led a migration.", "technical")
	if got != "Great, how did you measure that impact?" {
		t.Errorf("follow-up = %q", got)
	}
}

func TestGenerateFollowUpNeverFails(t *testing.T) {
	llm := newFakeLLM(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	})

	got := llm.GenerateFollowUp(context.Background(), "Q", "A", "behavioral")
	if got == "" {
		t.Fatal("follow-up must never be empty")
	}

	found := false
	for _, canned := range fallbackFollowUps {
		if got == canned {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("degraded follow-up %q is not one of the canned responses", got)
	}
}

func TestGenerateFollowUpEmptyReply(t *testing.T) {
	llm := newFakeLLM(t, replyWith("   "))

	got := llm.GenerateFollowUp(context.Background(), "Q", "A", "")
	if got == "" {
		t.Fatal("blank model reply must still produce a follow-up")
	}
}
