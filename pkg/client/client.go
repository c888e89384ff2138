// Package client is a small Go client for the docbricks HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 60 * time.Second

// Client talks to a running docbricks server.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTimeout sets the request timeout on the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// New creates a Client for the given base URL, e.g. "http://localhost:8080".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("docbricks: %s (%d): %s", e.Code, e.StatusCode, e.Message)
}

// UploadResult describes a stored upload.
type UploadResult struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
	Size     int    `json:"size"`
}

// Upload stores a raw file on the server.
func (c *Client) Upload(ctx context.Context, filename string, data io.Reader) (UploadResult, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return UploadResult{}, fmt.Errorf("docbricks: build form: %w", err)
	}
	if _, err := io.Copy(fw, data); err != nil {
		return UploadResult{}, fmt.Errorf("docbricks: read upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return UploadResult{}, fmt.Errorf("docbricks: close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/uploadfile", &body)
	if err != nil {
		return UploadResult{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out UploadResult
	if err := c.do(req, &out); err != nil {
		return UploadResult{}, err
	}
	return out, nil
}

// ListFiles returns the file names in one pipeline directory
// (uploaded_files, parsed_files, edited_files, summarized_files).
func (c *Client) ListFiles(ctx context.Context, directory string) ([]string, error) {
	var out struct {
		Files []string `json:"files"`
	}
	if err := c.get(ctx, "/listfiles/"+url.PathEscape(directory), &out); err != nil {
		return nil, err
	}
	return out.Files, nil
}

// ParseFile extracts and returns the plain text of an uploaded file.
func (c *Client) ParseFile(ctx context.Context, filename string) (string, error) {
	var out struct {
		Content string `json:"content"`
	}
	if err := c.get(ctx, "/parsefile/"+url.PathEscape(filename), &out); err != nil {
		return "", err
	}
	return out.Content, nil
}

// SaveContent stores an edited version of a file's text.
func (c *Client) SaveContent(ctx context.Context, filename, content string) error {
	payload, err := json.Marshal(map[string]string{"content": content})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/savecontent/"+url.PathEscape(filename), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, nil)
}

// Summarize returns the cached-or-generated summary of a file.
func (c *Client) Summarize(ctx context.Context, filename string) (string, error) {
	var out struct {
		Content string `json:"content"`
	}
	if err := c.get(ctx, "/summarizecontent/"+url.PathEscape(filename), &out); err != nil {
		return "", err
	}
	return out.Content, nil
}

// Ingest indexes a file's text into the dense and sparse indexes and
// returns the assigned document id.
func (c *Client) Ingest(ctx context.Context, filename string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/ingestdocuments/"+url.PathEscape(filename), nil)
	if err != nil {
		return "", err
	}
	var out struct {
		DocumentID string `json:"document_id"`
	}
	if err := c.do(req, &out); err != nil {
		return "", err
	}
	return out.DocumentID, nil
}

// SearchResult is a ranked source passage behind an answer.
type SearchResult struct {
	ID         string  `json:"id"`
	Score      float64 `json:"score"`
	Content    string  `json:"content"`
	SourceName string  `json:"source_name"`
	FileName   string  `json:"file_name"`
}

// Answer is a grounded completion with its supporting passages.
type Answer struct {
	Answer  string         `json:"answer"`
	Sources []SearchResult `json:"sources"`
}

// HybridSearch answers a question from the indexed documents.
func (c *Client) HybridSearch(ctx context.Context, question string) (Answer, error) {
	payload, err := json.Marshal(map[string]string{"question": question})
	if err != nil {
		return Answer{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/hybridsearch", bytes.NewReader(payload))
	if err != nil {
		return Answer{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	var out Answer
	if err := c.do(req, &out); err != nil {
		return Answer{}, err
	}
	return out, nil
}

// DeleteFile removes a file from one pipeline directory.
func (c *Client) DeleteFile(ctx context.Context, directory, filename string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		c.baseURL+"/deletefile/"+url.PathEscape(directory)+"/"+url.PathEscape(filename), nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// Health returns the server's component health report.
func (c *Client) Health(ctx context.Context) (map[string]string, error) {
	var out struct {
		Checks map[string]string `json:"checks"`
	}
	if err := c.get(ctx, "/health", &out); err != nil {
		return nil, err
	}
	return out.Checks, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("docbricks: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil {
			apiErr.Code = "unknown"
			apiErr.Message = resp.Status
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("docbricks: decode response: %w", err)
	}
	return nil
}
