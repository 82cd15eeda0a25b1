package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// ImageKitClient wraps the ImageKit media upload API. Authentication is
// HTTP basic with the private key as username and an empty password.
type ImageKitClient struct {
	privateKey  string
	urlEndpoint string
	uploadURL   string
	client      *http.Client
}

func NewImageKitClient(privateKey, urlEndpoint, uploadURL string) *ImageKitClient {
	return &ImageKitClient{
		privateKey:  privateKey,
		urlEndpoint: urlEndpoint,
		uploadURL:   uploadURL,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// UploadResult is the subset of the upload response the app uses
type UploadResult struct {
	URL      string `json:"url"`
	FileID   string `json:"fileId"`
	FilePath string `json:"filePath"`
}

// Upload stores a file and returns its public URL. Files are base64-encoded
// per the upload API contract; unique file names are requested so repeated
// uploads never collide.
func (c *ImageKitClient) Upload(ctx context.Context, data []byte, fileName, folder string) (*UploadResult, error) {
	if c.privateKey == "" {
		return nil, fmt.Errorf("storage private key not configured")
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty file")
	}
	if folder == "" {
		folder = "/uploads"
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := map[string]string{
		"file":              base64.StdEncoding.EncodeToString(data),
		"fileName":          fileName,
		"folder":            folder,
		"useUniqueFileName": "true",
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("building upload form: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("closing upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.uploadURL, &buf)
	if err != nil {
		return nil, fmt.Errorf("creating upload request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.SetBasicAuth(c.privateKey, "")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling storage API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading upload response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("storage API returned %d: %s", resp.StatusCode, string(body[:min(len(body), 500)]))
	}

	var result UploadResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("parsing upload response: %w", err)
	}

	log.Info().
		Str("fileName", fileName).
		Str("folder", folder).
		Int("bytes", len(data)).
		Str("fileId", result.FileID).
		Msg("File uploaded to storage")

	return &result, nil
}
