package handler

import (
	"context"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/yourusername/prepcall-api/internal/model"
	"github.com/yourusername/prepcall-api/internal/transcript"
)

// sessionStore is the slice of the session repository the journey handlers
// need. Keeping it an interface lets handler tests run without a database.
type sessionStore interface {
	FindByID(ctx context.Context, id, userID uuid.UUID) (*model.Session, error)
	UpdateStatus(ctx context.Context, id, userID uuid.UUID, status string) error
	SetQuestions(ctx context.Context, id, userID uuid.UUID, questions []model.Question, assistantID string) error
	SetATSResult(ctx context.Context, id, userID uuid.UUID, score int, report, parsedResume []byte, resumeText, jobDescriptionText string) error
}

// InterviewHandler keeps one transcript controller per live session. The
// browser relays raw voice-platform events here and reads back the
// assembled transcript, so a reconnecting tab picks up the full history.
type InterviewHandler struct {
	sessions sessionStore

	mu    sync.Mutex
	calls map[string]*transcript.Controller
}

func NewInterviewHandler(sessions sessionStore) *InterviewHandler {
	return &InterviewHandler{
		sessions: sessions,
		calls:    make(map[string]*transcript.Controller),
	}
}

type eventRequest struct {
	Type       string  `json:"type"`
	Role       string  `json:"role"`
	Transcript string  `json:"transcript"`
	Volume     float64 `json:"volume"`
	Error      string  `json:"error"`
}

// HandleEvent handles POST /api/sessions/:id/interview/events
func (h *InterviewHandler) HandleEvent(c *gin.Context) {
	id, userID, ok := h.authorize(c)
	if !ok {
		return
	}

	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Type == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type is required"})
		return
	}

	ctrl := h.controller(id.String())
	ctrl.Handle(transcript.Event{
		Type:       req.Type,
		Role:       req.Role,
		Transcript: req.Transcript,
		Volume:     req.Volume,
		ErrMessage: req.Error,
	})

	switch req.Type {
	case transcript.EventCallStart:
		if err := h.sessions.UpdateStatus(c.Request.Context(), id, userID, model.StatusInProgress); err != nil {
			log.Warn().Err(err).Str("session_id", id.String()).Msg("Could not mark session in progress")
		}
	case transcript.EventCallEnd:
		// Keep the controller around so the transcript stays readable
		// until the session is completed
	}

	c.JSON(http.StatusOK, ctrl.State())
}

// Transcript handles GET /api/sessions/:id/interview/transcript
func (h *InterviewHandler) Transcript(c *gin.Context) {
	id, _, ok := h.authorize(c)
	if !ok {
		return
	}

	ctrl := h.controller(id.String())
	c.JSON(http.StatusOK, gin.H{
		"transcript": ctrl.Transcript(),
		"state":      ctrl.State(),
	})
}

// End handles POST /api/sessions/:id/interview/end
// Flushes any pending fragment and releases the in-memory controller
func (h *InterviewHandler) End(c *gin.Context) {
	id, _, ok := h.authorize(c)
	if !ok {
		return
	}

	h.mu.Lock()
	ctrl := h.calls[id.String()]
	delete(h.calls, id.String())
	h.mu.Unlock()

	if ctrl == nil {
		c.JSON(http.StatusOK, gin.H{"transcript": []transcript.Entry{}})
		return
	}

	ctrl.Handle(transcript.Event{Type: transcript.EventCallEnd})
	entries := ctrl.Transcript()
	ctrl.Close()

	c.JSON(http.StatusOK, gin.H{"transcript": entries})
}

func (h *InterviewHandler) controller(sessionID string) *transcript.Controller {
	h.mu.Lock()
	defer h.mu.Unlock()

	ctrl, ok := h.calls[sessionID]
	if !ok {
		ctrl = transcript.NewController()
		h.calls[sessionID] = ctrl
	}
	return ctrl
}

// authorize resolves the session id and caller, then verifies ownership
// before any controller is touched. A transcript is as private as the
// session it belongs to.
func (h *InterviewHandler) authorize(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
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

	session, err := h.sessions.FindByID(c.Request.Context(), id, userID)
	if err != nil {
		log.Error().Err(err).Str("session_id", id.String()).Msg("Failed to load session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return uuid.Nil, uuid.Nil, false
	}
	if session == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return uuid.Nil, uuid.Nil, false
	}
	return id, userID, true
}
