package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/liuyuqiaoe/local-hirag/helper"
	"github.com/liuyuqiaoe/local-hirag/model"
)

// ConversionClient talks to the remote document-conversion microservice:
// POST /api/jobs submits a file, GET /api/jobs/{id} reports status, and
// GET /api/jobs/{id}/result returns the converted markdown.
type ConversionClient struct {
	BaseURL string
	HTTP    *http.Client
}

// NewConversionClient builds a client against baseURL with a generous
// per-request timeout; the overall job wait is governed by PollUntilDone.
func NewConversionClient(baseURL string) *ConversionClient {
	return &ConversionClient{BaseURL: strings.TrimRight(baseURL, "/"), HTTP: &http.Client{Timeout: 30 * time.Second}}
}

type jobStatus struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

// Submit uploads the file at path in the given mode and returns the job id.
func (c *ConversionClient) Submit(ctx context.Context, path, mode string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", helper.NewError("open document for conversion", err)
	}
	defer f.Close()

	var body strings.Builder
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", helper.NewError("build conversion request", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", helper.NewError("build conversion request", err)
	}
	if err := w.WriteField("mode", mode); err != nil {
		return "", helper.NewError("build conversion request", err)
	}
	if err := w.Close(); err != nil {
		return "", helper.NewError("build conversion request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/jobs", strings.NewReader(body.String()))
	if err != nil {
		return "", helper.NewError("build conversion request", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", helper.NewError("submit conversion job", err)
	}
	defer resp.Body.Close()

	var created struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", helper.NewError("decode conversion job response", err)
	}
	return created.ID, nil
}

// PollUntilDone polls the job every 2s until it completes, fails, or 3600s
// elapse, then fetches and returns the resulting markdown.
func (c *ConversionClient) PollUntilDone(ctx context.Context, jobID string) (string, error) {
	bo := backoff.NewConstantBackOff(2 * time.Second)
	bounded := backoff.WithContext(backoff.WithMaxElapsedTime(bo, 3600*time.Second), ctx)

	var last jobStatus
	err := backoff.Retry(func() error {
		status, err := c.fetchStatus(ctx, jobID)
		if err != nil {
			return backoff.Permanent(err)
		}
		last = *status
		switch status.Status {
		case "completed":
			return nil
		case "failed":
			return backoff.Permanent(fmt.Errorf("conversion job %s failed: %s", jobID, status.Error))
		default:
			return fmt.Errorf("conversion job %s still %s", jobID, status.Status)
		}
	}, bounded)
	if err != nil {
		return "", helper.NewError("poll conversion job", err)
	}
	if last.Status != "completed" {
		return "", helper.NewError("poll conversion job", fmt.Errorf("job %s did not complete within 3600s", jobID))
	}

	return c.fetchResult(ctx, jobID)
}

func (c *ConversionClient) fetchStatus(ctx context.Context, jobID string) (*jobStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/jobs/"+jobID, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var status jobStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *ConversionClient) fetchResult(ctx context.Context, jobID string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/jobs/"+jobID+"/result", nil)
	if err != nil {
		return "", helper.NewError("fetch conversion result", err)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", helper.NewError("fetch conversion result", err)
	}
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", helper.NewError("fetch conversion result", err)
	}
	return string(out), nil
}

// ConversionLoader routes a document through the remote conversion service
// and wraps the returned markdown as a File.
type ConversionLoader struct {
	client      *ConversionClient
	contentType model.ContentType
}

func (l *ConversionLoader) Load(ctx context.Context, path string) (*model.File, error) {
	jobID, err := l.client.Submit(ctx, path, string(l.contentType))
	if err != nil {
		return nil, err
	}
	markdown, err := l.client.PollUntilDone(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return model.NewFile(strings.TrimSpace(markdown), l.contentType, filepath.Base(path), "file://"+path, false), nil
}

// sniffingLoader chooses between a local legacy-OLE2 loader and the remote
// conversion service based on the file's actual container format, since
// .doc/.ppt and .docx/.pptx share a content type but not binary layouts.
type sniffingLoader struct {
	contentType model.ContentType
	legacy      *LegacyOLELoader
	remote      *ConversionLoader
}

func (l *sniffingLoader) Load(ctx context.Context, path string) (*model.File, error) {
	if isLegacyOLE(path) {
		return l.legacy.Load(ctx, path)
	}
	return l.remote.Load(ctx, path)
}
