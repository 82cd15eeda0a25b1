package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fumiama/go-docx"
	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog/log"
)

// ErrUnsupportedFileType is wrapped into extraction errors for unknown
// extensions so handlers can reject it cleanly.
var ErrUnsupportedFileType = fmt.Errorf("unsupported file type")

// ExtractText normalizes an uploaded resume or job-description file to
// plain text. Supported: .txt, .pdf, .docx, .doc.
func ExtractText(data []byte, filename string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))

	switch ext {
	case "txt":
		if !utf8.Valid(data) {
			return "", fmt.Errorf("text file is not valid UTF-8")
		}
		return string(data), nil
	case "pdf":
		return extractPDFText(data)
	case "docx", "doc":
		// Legacy .doc goes through the same parser; genuinely old binary
		// .doc files fail here and the user is asked to paste text instead.
		return extractDocxText(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFileType, ext)
	}
}

// ExtractTextFromURL downloads a previously uploaded file and extracts its
// text, inferring the format from the URL extension or the content type.
func ExtractTextFromURL(ctx context.Context, fileURL string) (string, error) {
	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	req, err := http.NewRequestWithContext(ctx, "GET", fileURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("downloading file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("file URL returned status %d", resp.StatusCode)
	}

	// Cap at 20MB; resumes should be nowhere near this
	data, err := io.ReadAll(io.LimitReader(resp.Body, 20*1024*1024))
	if err != nil {
		return "", fmt.Errorf("reading file: %w", err)
	}

	ext := strings.ToLower(strings.TrimPrefix(path.Ext(strippedURLPath(fileURL)), "."))
	if ext == "" {
		contentType := resp.Header.Get("Content-Type")
		switch {
		case strings.Contains(contentType, "pdf"):
			ext = "pdf"
		case strings.Contains(contentType, "document"):
			ext = "docx"
		default:
			ext = "txt"
		}
	}

	return ExtractText(data, "remote."+ext)
}

// strippedURLPath drops any query string before extension sniffing
func strippedURLPath(fileURL string) string {
	if idx := strings.IndexAny(fileURL, "?#"); idx != -1 {
		return fileURL[:idx]
	}
	return fileURL
}

func extractPDFText(data []byte) (string, error) {
	if len(data) < 4 || string(data[:4]) != "%PDF" {
		return "", fmt.Errorf("invalid PDF file")
	}

	// Write to temp file, the pdf package reads through a file handle
	tmpFile, err := os.CreateTemp("", "extract-*.pdf")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmpFile.Name())
	defer tmpFile.Close()

	if _, err := tmpFile.Write(data); err != nil {
		return "", fmt.Errorf("writing temp file: %w", err)
	}

	f, reader, err := pdf.Open(tmpFile.Name())
	if err != nil {
		return "", fmt.Errorf("opening PDF: %w", err)
	}
	defer f.Close()

	var sb strings.Builder
	numPages := reader.NumPage()

	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			log.Warn().Int("page", i).Err(err).Msg("Failed to extract text from PDF page")
			continue
		}

		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(text)
	}

	result := strings.TrimSpace(sb.String())
	if result == "" {
		return "", fmt.Errorf("no text extracted; PDF may be image-based or corrupted")
	}
	return result, nil
}

func extractDocxText(data []byte) (string, error) {
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening document: %w", err)
	}

	var sb strings.Builder
	for _, item := range doc.Document.Body.Items {
		switch item.(type) {
		case *docx.Paragraph, *docx.Table:
			fmt.Fprintln(&sb, item)
		}
	}

	result := strings.TrimSpace(sb.String())
	if result == "" {
		return "", fmt.Errorf("no text extracted from document")
	}
	return result, nil
}
