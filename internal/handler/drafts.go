package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/yourusername/prepcall-api/internal/middleware"
	"github.com/yourusername/prepcall-api/internal/model"
	"github.com/yourusername/prepcall-api/internal/repository"
)

type DraftHandler struct {
	drafts *repository.DraftStore
}

func NewDraftHandler(drafts *repository.DraftStore) *DraftHandler {
	return &DraftHandler{drafts: drafts}
}

// Save handles POST /api/drafts and PUT /api/drafts/:id
// Drafts hold intake data between the upload steps so a page reload on
// another device does not lose the in-progress setup
func (h *DraftHandler) Save(c *gin.Context) {
	var draft model.Draft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	draft.UserID = middleware.GetUserID(c)
	if id := c.Param("id"); id != "" {
		draft.ID = id
	}

	saved, err := h.drafts.Put(c.Request.Context(), &draft)
	if err != nil {
		log.Error().Err(err).Msg("Failed to save draft")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save draft"})
		return
	}

	c.JSON(http.StatusOK, saved)
}

// Get handles GET /api/drafts/:id
func (h *DraftHandler) Get(c *gin.Context) {
	draft, err := h.drafts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		log.Error().Err(err).Msg("Failed to load draft")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load draft"})
		return
	}
	if draft == nil || draft.UserID != middleware.GetUserID(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Draft not found"})
		return
	}

	c.JSON(http.StatusOK, draft)
}

// Delete handles DELETE /api/drafts/:id
// Deleting an already-expired draft is not an error
func (h *DraftHandler) Delete(c *gin.Context) {
	if err := h.drafts.Delete(c.Request.Context(), c.Param("id")); err != nil {
		log.Error().Err(err).Msg("Failed to delete draft")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete draft"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
