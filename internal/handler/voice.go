package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/yourusername/prepcall-api/internal/model"
	"github.com/yourusername/prepcall-api/internal/service"
)

type VoiceHandler struct {
	provider service.VoiceProvider
	sessions sessionStore
}

func NewVoiceHandler(provider service.VoiceProvider, sessions sessionStore) *VoiceHandler {
	return &VoiceHandler{provider: provider, sessions: sessions}
}

type setupRequest struct {
	SessionID string                `json:"sessionId"`
	Questions []model.Question      `json:"questions"`
	Config    model.InterviewConfig `json:"config"`
}

// Setup handles POST /api/setup-vapi
// This endpoint never fails the journey: if the voice platform is down or
// misconfigured the response still carries a placeholder assistant id, with
// the error surfaced alongside it so the client can show a degraded banner.
func (h *VoiceHandler) Setup(c *gin.Context) {
	var req setupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	questions := req.Questions
	cfg := req.Config

	var session *model.Session
	if req.SessionID != "" {
		id, err := uuid.Parse(req.SessionID)
		if err == nil {
			if userID, uerr := getUserID(c); uerr == nil {
				session, _ = h.sessions.FindByID(c.Request.Context(), id, userID)
			}
		}
		if session != nil {
			if len(questions) == 0 {
				questions = session.GeneratedQuestions
			}
			if cfg.AIModel == "" {
				cfg = model.InterviewConfig{
					AIModel:    session.AIModel,
					Type:       session.InterviewType,
					Difficulty: session.Difficulty,
					Duration:   session.InterviewDuration,
				}
			}
		}
	}

	setup, err := h.provider.PrepareInterview(c.Request.Context(), req.SessionID, questions, cfg)
	if err != nil {
		log.Warn().Err(err).Str("session_id", req.SessionID).Msg("Voice setup failed, issuing placeholder assistant")
		setup = &service.AssistantSetup{
			AssistantID: fmt.Sprintf("mock-assistant-%d", time.Now().UnixMilli()),
		}
	}

	if session != nil && setup.AssistantID != "" {
		userID, uerr := getUserID(c)
		if uerr == nil {
			if serr := h.sessions.SetQuestions(c.Request.Context(), session.ID, userID, questions, setup.AssistantID); serr != nil {
				log.Error().Err(serr).Str("session_id", req.SessionID).Msg("Failed to store assistant id")
			}
		}
	}

	resp := gin.H{
		"assistantId": setup.AssistantID,
		"publicKey":   setup.PublicKey,
	}
	if req.SessionID != "" {
		resp["sessionId"] = req.SessionID
	}
	if setup.PhoneNumberID != "" {
		resp["phoneNumberId"] = setup.PhoneNumberID
	}
	if len(setup.InlineConfig) > 0 {
		resp["assistantConfig"] = setup.InlineConfig
	}
	if err != nil {
		resp["error"] = "Voice assistant setup degraded"
	}

	c.JSON(http.StatusOK, resp)
}
