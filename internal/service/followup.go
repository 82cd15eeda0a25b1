package service

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/yourusername/prepcall-api/internal/model"
)

const followUpSystemTemplate = `You are an experienced AI interviewer conducting a %s interview. Your role is to:

1. Acknowledge the candidate's response professionally
2. Ask 1-2 relevant follow-up questions to dive deeper
3. Keep responses conversational and under 50 words
4. Be encouraging but professional
5. Focus on getting specific examples and details

Current question being discussed: "%s"

Generate a natural, conversational follow-up response that encourages the candidate to elaborate or provide more specific details.`

const followUpUserTemplate = `The candidate just answered: "%s"

Please provide a brief, encouraging follow-up response that asks for more specific details or examples. Keep it conversational and under 50 words.`

// fallbackFollowUps covers common interview scenarios when the upstream
// model is unavailable
var fallbackFollowUps = []string{
	"That's a great point! Can you walk me through a specific example?",
	"Interesting approach! What was the outcome of that situation?",
	"I'd love to hear more details about that experience.",
	"That sounds challenging! How did you handle the pressure?",
	"Can you elaborate on the steps you took to achieve that result?",
}

// GenerateFollowUp asks the model for a short conversational follow-up to a
// candidate's answer. Upstream failure degrades to a canned response, never
// an error. The interview must keep moving.
func (c *LLMClient) GenerateFollowUp(ctx context.Context, question, userAnswer, questionType string) string {
	if questionType == "" {
		questionType = "professional"
	}

	text, err := c.complete(ctx, chatParams{
		selector:    model.ModelDeepSeek,
		system:      fmt.Sprintf(followUpSystemTemplate, questionType, question),
		user:        fmt.Sprintf(followUpUserTemplate, userAnswer),
		temperature: 0.7,
		maxTokens:   150,
	})
	if err != nil {
		log.Warn().Err(err).Msg("Follow-up generation failed, using canned response")
		return fallbackFollowUps[rand.Intn(len(fallbackFollowUps))]
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "Thank you for sharing that. Could you provide a specific example to illustrate your point?"
	}
	return text
}
