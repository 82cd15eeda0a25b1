package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newExtractRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/extract-text", NewExtractHandler().Extract)
	return r
}

func multipartFile(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile(field, filename)
	if err != nil {
		t.Fatal(err)
	}
	fw.Write(content)
	w.Close()
	return &buf, w.FormDataContentType()
}

func TestExtractTextUpload(t *testing.T) {
	r := newExtractRouter(t)

	body, contentType := multipartFile(t, "file", "resume.txt", []byte("Jane Doe, Engineer"))
	req := httptest.NewRequest("POST", "/api/extract-text", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var resp map[string]any
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["text"] != "Jane Doe, Engineer" {
		t.Errorf("text = %v", resp["text"])
	}
	if resp["fileName"] != "resume.txt" {
		t.Errorf("fileName = %v", resp["fileName"])
	}
}

func TestExtractTextUploadUnsupportedType(t *testing.T) {
	r := newExtractRouter(t)

	body, contentType := multipartFile(t, "file", "resume.png", []byte{0x89, 0x50, 0x4e, 0x47})
	req := httptest.NewRequest("POST", "/api/extract-text", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnsupportedMediaType {
		t.Errorf("status = %d, want 415", w.Code)
	}
}

func TestExtractTextMissingInputs(t *testing.T) {
	r := newExtractRouter(t)

	req := httptest.NewRequest("POST", "/api/extract-text", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestExtractTextFromRemoteURL(t *testing.T) {
	fileSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hosted resume text"))
	}))
	defer fileSrv.Close()

	r := newExtractRouter(t)
	body := `{"fileUrl":"` + fileSrv.URL + `/resume.txt"}`
	req := httptest.NewRequest("POST", "/api/extract-text", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var resp map[string]string
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["text"] != "hosted resume text" {
		t.Errorf("text = %q", resp["text"])
	}
}
