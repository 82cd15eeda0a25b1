package handler

import (
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/yourusername/prepcall-api/internal/service"
)

var allowedUploadExts = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".txt":  true,
}

type UploadHandler struct {
	storage *service.ImageKitClient
}

func NewUploadHandler(storage *service.ImageKitClient) *UploadHandler {
	return &UploadHandler{storage: storage}
}

// Upload handles POST /api/upload
// Stores a resume or job description file and returns its URL
func (h *UploadHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing file"})
		return
	}
	if fileHeader.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File exceeds 20MB limit"})
		return
	}

	ext := strings.ToLower(path.Ext(fileHeader.Filename))
	if !allowedUploadExts[ext] {
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "Unsupported file type. Use PDF, DOCX, or TXT"})
		return
	}

	folder := c.PostForm("folder")
	if folder == "" {
		folder = "/uploads"
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

	result, err := h.storage.Upload(c.Request.Context(), data, fileHeader.Filename, folder)
	if err != nil {
		log.Error().Err(err).Str("file", fileHeader.Filename).Msg("Upload to storage failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "File upload failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"url":      result.URL,
		"fileId":   result.FileID,
		"filePath": result.FilePath,
	})
}
