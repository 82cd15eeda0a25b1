package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestImageKitUpload(t *testing.T) {
	var gotUser, gotFile, gotFolder, gotUnique string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _, _ = r.BasicAuth()
		r.ParseMultipartForm(32 << 20)
		gotFile = r.FormValue("file")
		gotFolder = r.FormValue("folder")
		gotUnique = r.FormValue("useUniqueFileName")
		json.NewEncoder(w).Encode(UploadResult{
			URL:      "https://ik.example.com/uploads/resume_x1.pdf",
			FileID:   "file_1",
			FilePath: "/uploads/resume_x1.pdf",
		})
	}))
	defer srv.Close()

	client := NewImageKitClient("ik-private", "https://ik.example.com", srv.URL)
	result, err := client.Upload(context.Background(), []byte("pdf bytes"), "resume.pdf", "/resumes")
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if result.FileID != "file_1" || result.URL == "" {
		t.Errorf("result = %+v", result)
	}
	if gotUser != "ik-private" {
		t.Errorf("basic auth user = %q", gotUser)
	}
	if gotFolder != "/resumes" {
		t.Errorf("folder = %q", gotFolder)
	}
	if gotUnique != "true" {
		t.Errorf("useUniqueFileName = %q", gotUnique)
	}

	decoded, err := base64.StdEncoding.DecodeString(gotFile)
	if err != nil || string(decoded) != "pdf bytes" {
		t.Errorf("file field decoded to %q, err %v", decoded, err)
	}
}

func TestImageKitUploadDefaultFolder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseMultipartForm(32 << 20)
		if got := r.FormValue("folder"); got != "/uploads" {
			t.Errorf("folder = %q, want /uploads", got)
		}
		json.NewEncoder(w).Encode(UploadResult{FileID: "f"})
	}))
	defer srv.Close()

	client := NewImageKitClient("k", "", srv.URL)
	if _, err := client.Upload(context.Background(), []byte("x"), "a.txt", ""); err != nil {
		t.Fatalf("Upload: %v", err)
	}
}

func TestImageKitUploadErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"bad key"}`, http.StatusForbidden)
	}))
	defer srv.Close()

	client := NewImageKitClient("k", "", srv.URL)
	if _, err := client.Upload(context.Background(), []byte("x"), "a.txt", ""); err == nil {
		t.Error("expected error on upstream 403")
	}

	noKey := NewImageKitClient("", "", srv.URL)
	if _, err := noKey.Upload(context.Background(), []byte("x"), "a.txt", ""); err == nil {
		t.Error("expected error with no private key")
	}

	if _, err := client.Upload(context.Background(), nil, "a.txt", ""); err == nil {
		t.Error("expected error with empty file")
	}
}
