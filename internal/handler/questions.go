package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/yourusername/prepcall-api/internal/model"
	"github.com/yourusername/prepcall-api/internal/service"
)

type QuestionHandler struct {
	llm      *service.LLMClient
	sessions sessionStore
}

func NewQuestionHandler(llm *service.LLMClient, sessions sessionStore) *QuestionHandler {
	return &QuestionHandler{llm: llm, sessions: sessions}
}

type questionsRequest struct {
	SessionID          string                `json:"sessionId"`
	ResumeText         string                `json:"resumeText"`
	JobDescriptionText string                `json:"jobDescriptionText"`
	Config             model.InterviewConfig `json:"config"`
}

// Generate handles POST /api/generate-questions
// If the session already carries generated questions the stored set is
// returned, so a retried request never produces a second question list.
func (h *QuestionHandler) Generate(c *gin.Context) {
	var req questionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	var session *model.Session
	if req.SessionID != "" {
		var ok bool
		session, ok = h.loadSession(c, req.SessionID)
		if !ok {
			return
		}
		if len(session.GeneratedQuestions) > 0 {
			c.JSON(http.StatusOK, gin.H{
				"questions": session.GeneratedQuestions,
				"sessionId": req.SessionID,
				"fallback":  false,
				"cached":    true,
			})
			return
		}
		if req.ResumeText == "" {
			req.ResumeText = session.ResumeContent
		}
		if req.JobDescriptionText == "" {
			req.JobDescriptionText = session.JobDescriptionContent
		}
		if req.Config.AIModel == "" {
			req.Config = model.InterviewConfig{
				AIModel:    session.AIModel,
				Type:       session.InterviewType,
				Difficulty: session.Difficulty,
				Duration:   session.InterviewDuration,
			}
		}
	}

	if strings.TrimSpace(req.ResumeText) == "" || strings.TrimSpace(req.JobDescriptionText) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Resume and job description are required"})
		return
	}

	result, err := h.llm.GenerateQuestions(c.Request.Context(), req.ResumeText, req.JobDescriptionText, req.Config)
	if err != nil {
		log.Error().Err(err).Msg("Question generation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not generate questions"})
		return
	}
	if result.Fallback {
		log.Warn().Str("model", req.Config.AIModel).Msg("Serving fallback question set")
	}

	if session != nil {
		userID, err := getUserID(c)
		if err == nil {
			if err := h.sessions.SetQuestions(c.Request.Context(), session.ID, userID, result.Questions, session.AssistantID); err != nil {
				log.Error().Err(err).Str("session_id", req.SessionID).Msg("Failed to store questions")
			}
		}
	}

	resp := gin.H{
		"questions": result.Questions,
		"fallback":  result.Fallback,
	}
	if req.SessionID != "" {
		resp["sessionId"] = req.SessionID
	}
	c.JSON(http.StatusOK, resp)
}

type followUpRequest struct {
	Question     string `json:"question"`
	UserAnswer   string `json:"userAnswer"`
	QuestionType string `json:"questionType"`
}

// FollowUp handles POST /api/generate-followup
// Always answers 200 with a follow-up line; a model failure yields one of
// the canned prompts instead of an error
func (h *QuestionHandler) FollowUp(c *gin.Context) {
	var req followUpRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.UserAnswer == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userAnswer is required"})
		return
	}

	followUp := h.llm.GenerateFollowUp(c.Request.Context(), req.Question, req.UserAnswer, req.QuestionType)
	c.JSON(http.StatusOK, gin.H{"response": followUp})
}

func (h *QuestionHandler) loadSession(c *gin.Context, sessionID string) (*model.Session, bool) {
	id, err := uuid.Parse(sessionID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session id"})
		return nil, false
	}
	userID, err := getUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return nil, false
	}

	session, err := h.sessions.FindByID(c.Request.Context(), id, userID)
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("Failed to load session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return nil, false
	}
	if session == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return nil, false
	}
	return session, true
}
