package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/yourusername/prepcall-api/internal/model"
	"github.com/yourusername/prepcall-api/internal/repository"
)

type SessionHandler struct {
	sessionRepo *repository.SessionRepo
}

func NewSessionHandler(sessionRepo *repository.SessionRepo) *SessionHandler {
	return &SessionHandler{sessionRepo: sessionRepo}
}

type createSessionRequest struct {
	ResumeContent         string `json:"resumeContent"`
	ResumeFileURL         string `json:"resumeFileUrl"`
	JobDescriptionContent string `json:"jobDescriptionContent"`
	JobDescriptionFileURL string `json:"jobDescriptionFileUrl"`
}

// Create handles POST /api/sessions
func (h *SessionHandler) Create(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.ResumeContent == "" && req.ResumeFileURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Resume content or file URL is required"})
		return
	}

	session := &model.Session{
		UserID:                userID,
		ResumeContent:         req.ResumeContent,
		ResumeFileURL:         req.ResumeFileURL,
		JobDescriptionContent: req.JobDescriptionContent,
		JobDescriptionFileURL: req.JobDescriptionFileURL,
		Status:                model.StatusUploading,
	}

	created, err := h.sessionRepo.Create(c.Request.Context(), session)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	c.JSON(http.StatusCreated, created)
}

// List handles GET /api/sessions
func (h *SessionHandler) List(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	sessions, err := h.sessionRepo.ListByUser(c.Request.Context(), userID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list sessions")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list sessions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

// Progress handles GET /api/progress
// Aggregates the caller's interview history into the dashboard summary.
func (h *SessionHandler) Progress(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	sessions, err := h.sessionRepo.ListByUser(c.Request.Context(), userID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load sessions for progress")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load progress"})
		return
	}

	c.JSON(http.StatusOK, model.AggregateProgress(sessions))
}

// Get handles GET /api/sessions/:id
func (h *SessionHandler) Get(c *gin.Context) {
	session, ok := h.fetch(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, session)
}

type configRequest struct {
	AIModel    string `json:"aiModel"`
	Type       string `json:"type"`
	Difficulty string `json:"difficulty"`
	Duration   int    `json:"duration"`
}

// UpdateConfig handles PUT /api/sessions/:id/config
func (h *SessionHandler) UpdateConfig(c *gin.Context) {
	id, userID, ok := h.ids(c)
	if !ok {
		return
	}

	var req configRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if req.AIModel != model.ModelChatGPT && req.AIModel != model.ModelGemini && req.AIModel != model.ModelDeepSeek {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown AI model"})
		return
	}
	if !model.ValidInterviewType(req.Type) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown interview type"})
		return
	}
	if !model.ValidDifficulty(req.Difficulty) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown difficulty"})
		return
	}
	if !model.ValidDuration(req.Duration) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Duration must be one of 15, 30, 45, 60, 75, 90"})
		return
	}

	cfg := model.InterviewConfig{
		AIModel:    req.AIModel,
		Type:       req.Type,
		Difficulty: req.Difficulty,
		Duration:   req.Duration,
	}
	if err := h.sessionRepo.SetConfig(c.Request.Context(), id, userID, cfg); err != nil {
		h.writeUpdateError(c, err, "Failed to save configuration")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"config":        cfg,
		"questionCount": model.QuestionCount(req.Duration),
	})
}

type statusRequest struct {
	Status string `json:"status"`
	CallID string `json:"callId"`
}

// UpdateStatus handles PUT /api/sessions/:id/status
func (h *SessionHandler) UpdateStatus(c *gin.Context) {
	id, userID, ok := h.ids(c)
	if !ok {
		return
	}

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Status == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}
	if !model.ValidStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status"})
		return
	}

	if err := h.sessionRepo.UpdateStatus(c.Request.Context(), id, userID, req.Status); err != nil {
		h.writeUpdateError(c, err, "Failed to update status")
		return
	}

	if req.CallID != "" {
		if err := h.sessionRepo.SetCallID(c.Request.Context(), id, userID, req.CallID); err != nil {
			log.Error().Err(err).Str("session_id", id.String()).Msg("Failed to store call id")
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": req.Status})
}

type completeRequest struct {
	OverallScore       int             `json:"overallScore"`
	TechnicalScore     int             `json:"technicalScore"`
	CommunicationScore int             `json:"communicationScore"`
	ConfidenceScore    int             `json:"confidenceScore"`
	Feedback           json.RawMessage `json:"feedback"`
	ImprovementAreas   []string        `json:"improvementAreas"`
	Strengths          []string        `json:"strengths"`
}

// Complete handles POST /api/sessions/:id/complete
func (h *SessionHandler) Complete(c *gin.Context) {
	id, userID, ok := h.ids(c)
	if !ok {
		return
	}

	var req completeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	out := repository.Outcome{
		OverallScore:       req.OverallScore,
		TechnicalScore:     req.TechnicalScore,
		CommunicationScore: req.CommunicationScore,
		ConfidenceScore:    req.ConfidenceScore,
		FeedbackData:       req.Feedback,
		ImprovementAreas:   req.ImprovementAreas,
		Strengths:          req.Strengths,
	}
	if err := h.sessionRepo.Complete(c.Request.Context(), id, userID, out); err != nil {
		h.writeUpdateError(c, err, "Failed to complete session")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": model.StatusCompleted})
}

// ── Helpers ──

func (h *SessionHandler) ids(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session id"})
		return uuid.Nil, uuid.Nil, false
	}
	userID, err := getUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return uuid.Nil, uuid.Nil, false
	}
	return id, userID, true
}

func (h *SessionHandler) fetch(c *gin.Context) (*model.Session, bool) {
	id, userID, ok := h.ids(c)
	if !ok {
		return nil, false
	}

	session, err := h.sessionRepo.FindByID(c.Request.Context(), id, userID)
	if err != nil {
		log.Error().Err(err).Str("session_id", id.String()).Msg("Failed to load session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return nil, false
	}
	if session == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return nil, false
	}
	return session, true
}

func (h *SessionHandler) writeUpdateError(c *gin.Context, err error, msg string) {
	var invalid *model.ErrInvalidTransition
	if errors.As(err, &invalid) {
		c.JSON(http.StatusConflict, gin.H{"error": invalid.Error()})
		return
	}
	log.Error().Err(err).Msg(msg)
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}
