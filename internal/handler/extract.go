package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/yourusername/prepcall-api/internal/service"
)

const maxUploadBytes = 20 << 20 // 20MB

type ExtractHandler struct{}

func NewExtractHandler() *ExtractHandler {
	return &ExtractHandler{}
}

// Extract handles POST /api/extract-text
// Accepts either a multipart file upload or a JSON body with a fileUrl
func (h *ExtractHandler) Extract(c *gin.Context) {
	contentType := c.GetHeader("Content-Type")

	if strings.HasPrefix(contentType, "multipart/form-data") {
		h.extractFromUpload(c)
		return
	}

	var req struct {
		FileURL string `json:"fileUrl"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.FileURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Provide a file upload or a fileUrl"})
		return
	}

	text, err := service.ExtractTextFromURL(c.Request.Context(), req.FileURL)
	if err != nil {
		h.extractError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"text": text})
}

func (h *ExtractHandler) extractFromUpload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing file"})
		return
	}
	if fileHeader.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File exceeds 20MB limit"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read file"})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not read file"})
		return
	}

	text, err := service.ExtractText(data, fileHeader.Filename)
	if err != nil {
		h.extractError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"text":     text,
		"fileName": fileHeader.Filename,
		"fileSize": fileHeader.Size,
	})
}

func (h *ExtractHandler) extractError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrUnsupportedFileType) {
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "Unsupported file type. Use PDF, DOCX, or TXT"})
		return
	}
	log.Error().Err(err).Msg("Text extraction failed")
	c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Could not extract text from file"})
}
