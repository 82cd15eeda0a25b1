package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yourusername/prepcall-api/internal/middleware"
	"github.com/yourusername/prepcall-api/internal/model"
	"github.com/yourusername/prepcall-api/internal/service"
)

// degradedLLM returns a client whose upstreams always answer 500, so every
// call lands on the canned fallback path.
func degradedLLM(t *testing.T) *service.LLMClient {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	return service.NewLLMClient("test-key", srv.URL, "test-key", srv.URL)
}

func newQuestionRouter(t *testing.T, store *fakeSessionStore) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := NewQuestionHandler(degradedLLM(t), store)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextKeyUserID, store.ownerID.String())
		c.Next()
	})
	r.POST("/api/generate-questions", h.Generate)
	r.POST("/api/generate-followup", h.FollowUp)
	return r
}

func postJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGenerateQuestionsEchoesSessionID(t *testing.T) {
	store := &fakeSessionStore{
		sessionID: uuid.New(),
		ownerID:   uuid.New(),
		status:    model.StatusConfigured,
	}
	r := newQuestionRouter(t, store)

	body := fmt.Sprintf(`{"sessionId":%q,"resumeText":"Go developer","jobDescriptionText":"Backend role","config":{"duration":30}}`, store.sessionID)
	w := postJSON(r, "/api/generate-questions", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Questions []model.Question `json:"questions"`
		SessionID string           `json:"sessionId"`
		Fallback  bool             `json:"fallback"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if resp.SessionID != store.sessionID.String() {
		t.Errorf("sessionId = %q, want %q", resp.SessionID, store.sessionID)
	}
	if len(resp.Questions) == 0 {
		t.Error("expected a question list even on fallback")
	}
	if !resp.Fallback {
		t.Error("expected fallback flag with a degraded upstream")
	}
}

func TestGenerateQuestionsWithoutSession(t *testing.T) {
	store := &fakeSessionStore{sessionID: uuid.New(), ownerID: uuid.New()}
	r := newQuestionRouter(t, store)

	w := postJSON(r, "/api/generate-questions", `{"resumeText":"Go developer","jobDescriptionText":"Backend role","config":{"duration":15}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]any
	json.Unmarshal(w.Body.Bytes(), &resp)
	if _, ok := resp["sessionId"]; ok {
		t.Error("sessionId should be absent when the request carries none")
	}
	if _, ok := resp["questions"]; !ok {
		t.Error("questions missing from response")
	}
}

func TestFollowUpEnvelope(t *testing.T) {
	store := &fakeSessionStore{sessionID: uuid.New(), ownerID: uuid.New()}
	r := newQuestionRouter(t, store)

	w := postJSON(r, "/api/generate-followup", `{"question":"Describe a hard bug.","userAnswer":"A race in our queue consumer.","questionType":"technical"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if strings.TrimSpace(resp.Response) == "" {
		t.Error("response key missing or empty")
	}
}
