package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/yourusername/prepcall-api/internal/model"
	"github.com/yourusername/prepcall-api/internal/service"
)

type ReportHandler struct {
	llm      *service.LLMClient
	sessions sessionStore
}

func NewReportHandler(llm *service.LLMClient, sessions sessionStore) *ReportHandler {
	return &ReportHandler{llm: llm, sessions: sessions}
}

type atsRequest struct {
	SessionID          string `json:"sessionId"`
	ResumeText         string `json:"resumeText"`
	JobDescriptionText string `json:"jobDescriptionText"`
	ResumeURL          string `json:"resumeUrl"`
	JobDescriptionURL  string `json:"jobDescriptionUrl"`
}

// Generate handles POST /api/generate-ats-report
// Resume and job description arrive as text, as uploaded files, or as URLs.
// All three intake paths converge on plain text before the model call.
func (h *ReportHandler) Generate(c *gin.Context) {
	req, resumeText, jdText, ok := h.readIntake(c)
	if !ok {
		return
	}

	// Sessions advance through ats_processing while the model runs
	if req.SessionID != "" {
		h.markProcessing(c, req.SessionID)
	}

	result, err := h.llm.GenerateATSReport(c.Request.Context(), resumeText, jdText)
	if err != nil {
		// GenerateATSReport falls back internally; an error here means the
		// fallback itself could not be built
		log.Error().Err(err).Msg("ATS report generation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not generate report"})
		return
	}
	if result.Fallback {
		log.Warn().Msg("Serving fallback ATS report")
	}

	parsed, err := h.llm.ParseResumeStructure(c.Request.Context(), resumeText)
	if err != nil {
		log.Error().Err(err).Msg("Resume parsing failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not parse resume"})
		return
	}

	// Persist against the session when one is referenced
	if req.SessionID != "" {
		h.persist(c, req.SessionID, result, parsed, resumeText, jdText)
	}

	c.JSON(http.StatusOK, gin.H{
		"atsReport":                   result.Report,
		"parsedResumeData":            parsed.Resume,
		"fallback":                    result.Fallback || parsed.Fallback,
		"extractedResumeText":         resumeText,
		"extractedJobDescriptionText": jdText,
	})
}

func (h *ReportHandler) readIntake(c *gin.Context) (atsRequest, string, string, bool) {
	var req atsRequest

	if strings.HasPrefix(c.GetHeader("Content-Type"), "multipart/form-data") {
		req.SessionID = c.PostForm("sessionId")
		req.ResumeText = c.PostForm("resumeText")
		req.JobDescriptionText = c.PostForm("jobDescriptionText")

		var ok bool
		if req.ResumeText == "" {
			if req.ResumeText, ok = h.extractFormFile(c, "resume"); !ok {
				return req, "", "", false
			}
		}
		if req.JobDescriptionText == "" {
			if req.JobDescriptionText, ok = h.extractFormFile(c, "jobDescription"); !ok {
				return req, "", "", false
			}
		}
	} else {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return req, "", "", false
		}
	}

	resumeText := req.ResumeText
	jdText := req.JobDescriptionText

	var err error
	if resumeText == "" && req.ResumeURL != "" {
		resumeText, err = service.ExtractTextFromURL(c.Request.Context(), req.ResumeURL)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Could not extract resume text"})
			return req, "", "", false
		}
	}
	if jdText == "" && req.JobDescriptionURL != "" {
		jdText, err = service.ExtractTextFromURL(c.Request.Context(), req.JobDescriptionURL)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Could not extract job description text"})
			return req, "", "", false
		}
	}

	if strings.TrimSpace(resumeText) == "" || strings.TrimSpace(jdText) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Resume and job description are required"})
		return req, "", "", false
	}

	return req, resumeText, jdText, true
}

func (h *ReportHandler) extractFormFile(c *gin.Context, field string) (string, bool) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		return "", true // absent is fine, caller validates the combined intake
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read " + field})
		return "", false
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not read " + field})
		return "", false
	}

	text, err := service.ExtractText(data, fileHeader.Filename)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Could not extract text from " + field})
		return "", false
	}
	return text, true
}

func (h *ReportHandler) markProcessing(c *gin.Context, sessionID string) {
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		return
	}
	// A rerun against an already-analyzed session is fine; the transition
	// check just declines and the report is regenerated in place
	if err := h.sessions.UpdateStatus(c.Request.Context(), id, userID, model.StatusATSProcessing); err != nil {
		log.Debug().Err(err).Str("session_id", sessionID).Msg("Session not moved to ats_processing")
	}
}

func (h *ReportHandler) persist(c *gin.Context, sessionID string, result *service.ATSResult, parsed *service.ParsedResumeResult, resumeText, jdText string) {
	id, err := uuid.Parse(sessionID)
	if err != nil {
		log.Warn().Str("session_id", sessionID).Msg("Ignoring malformed session id on ATS report")
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		return
	}

	reportJSON, err := json.Marshal(result.Report)
	if err != nil {
		log.Error().Err(err).Msg("Failed to encode ATS report")
		return
	}
	parsedJSON, err := json.Marshal(parsed.Resume)
	if err != nil {
		log.Error().Err(err).Msg("Failed to encode parsed resume")
		return
	}

	if err := h.sessions.SetATSResult(c.Request.Context(), id, userID, result.Report.OverallScore, reportJSON, parsedJSON, resumeText, jdText); err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("Failed to store ATS result")
	}
}
