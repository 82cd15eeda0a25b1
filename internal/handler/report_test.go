package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yourusername/prepcall-api/internal/middleware"
	"github.com/yourusername/prepcall-api/internal/model"
)

func newReportRouter(t *testing.T, store *fakeSessionStore) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := NewReportHandler(degradedLLM(t), store)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextKeyUserID, store.ownerID.String())
		c.Next()
	})
	r.POST("/api/generate-ats-report", h.Generate)
	return r
}

func TestGenerateReportEnvelope(t *testing.T) {
	store := &fakeSessionStore{
		sessionID: uuid.New(),
		ownerID:   uuid.New(),
		status:    model.StatusUploading,
	}
	r := newReportRouter(t, store)

	body := `{"resumeText":"Go developer with five years of backend work.","jobDescriptionText":"Backend engineer, Go and Postgres."}`
	req := httptest.NewRequest("POST", "/api/generate-ats-report", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	for _, key := range []string{"atsReport", "parsedResumeData", "fallback", "extractedResumeText", "extractedJobDescriptionText"} {
		if _, ok := resp[key]; !ok {
			t.Errorf("response missing %q key", key)
		}
	}

	report, ok := resp["atsReport"].(map[string]any)
	if !ok {
		t.Fatal("atsReport is not an object")
	}
	if _, ok := report["overallScore"]; !ok {
		t.Error("atsReport missing overallScore")
	}
}
