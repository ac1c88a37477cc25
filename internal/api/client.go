// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api is the HTTP client for the Pocket Poker Pal answer and
// transcription endpoints.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/jeranaias/pppw/internal/audio"
)

// Endpoint paths, relative to the base URL.
const (
	AskPath        = "/api/ask"
	TranscribePath = "/api/transcribe-audio"

	// AudioField is the multipart field carrying the recording.
	AudioField = "audio"

	// MaxResponseSize is the maximum accepted response body size.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB limit
)

var (
	// ErrNotConfigured indicates no base URL is set.
	ErrNotConfigured = errors.New("API base URL not configured")

	// ErrNetwork wraps transport failures (DNS, refused connection, reset).
	ErrNetwork = errors.New("network request failed")

	// ErrInvalidResponse indicates a 2xx response that could not be decoded.
	ErrInvalidResponse = errors.New("invalid response")
)

// Error is a non-2xx response. Message is the server's "error" field when
// present, otherwise "HTTP <status>".
type Error struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// AskResponse is the body of a successful /api/ask call.
type AskResponse struct {
	Answer string `json:"answer,omitempty"`
	Error  string `json:"error,omitempty"`
}

// TranscribeResponse is the body of a successful /api/transcribe-audio call.
type TranscribeResponse struct {
	Transcript string `json:"transcript,omitempty"`
	Error      string `json:"error,omitempty"`
}

type askRequest struct {
	Question string `json:"question"`
}

type errorBody struct {
	Error string `json:"error"`
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the remote API. Requests have no client-side timeout and
// are never retried; callers bound them with ctx if they want to.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

// NewClient creates a client for baseURL (e.g. "https://pppw.example.com").
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{},
		userAgent:  "pppw",
	}
}

// WithBaseURL sets the base URL.
func (c *Client) WithBaseURL(url string) *Client {
	c.baseURL = strings.TrimSuffix(strings.TrimSpace(url), "/")
	return c
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc != nil {
		c.httpClient = hc
	}
	return c
}

// WithUserAgent sets the User-Agent header.
func (c *Client) WithUserAgent(ua string) *Client {
	c.userAgent = ua
	return c
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// IsConfigured reports whether a base URL is set.
func (c *Client) IsConfigured() bool {
	return c.baseURL != ""
}

// =============================================================================
// ENDPOINTS
// =============================================================================

// Ask submits a question to the answer endpoint.
func (c *Client) Ask(ctx context.Context, question string) (*AskResponse, error) {
	body, err := json.Marshal(askRequest{Question: question})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var out AskResponse
	if err := c.post(ctx, AskPath, "application/json", bytes.NewReader(body), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Transcribe uploads a recording to the transcription endpoint as multipart
// field "audio" named recording.<ext>.
func (c *Client) Transcribe(ctx context.Context, data []byte, mimeType string) (*TranscribeResponse, error) {
	contentType := audio.NormalizeUploadType(mimeType)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, AudioField, audio.FileName(contentType)))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}

	var out TranscribeResponse
	if err := c.post(ctx, TranscribePath, mw.FormDataContentType(), &buf, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// post sends one request and decodes a JSON body into out.
func (c *Client) post(ctx context.Context, path, contentType string, body io.Reader, out any) error {
	if !c.IsConfigured() {
		return ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	c.logRequest(req)
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("API_NETWORK_ERROR | path=%s error=%v", path, err)
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()
	c.logResponse(req, resp, time.Since(start))

	data, err := readResponse(resp)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return handleErrorResponse(resp.StatusCode, data)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return nil
}

// readResponse reads the body with a size limit.
func readResponse(resp *http.Response) ([]byte, error) {
	limitedReader := io.LimitReader(resp.Body, MaxResponseSize+1)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", ErrNetwork, err)
	}
	if int64(len(body)) > MaxResponseSize {
		return nil, fmt.Errorf("%w: response exceeded maximum size of %d bytes", ErrInvalidResponse, MaxResponseSize)
	}
	return body, nil
}

// handleErrorResponse converts a non-2xx response into *Error.
func handleErrorResponse(statusCode int, body []byte) error {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil && strings.TrimSpace(eb.Error) != "" {
		return &Error{Status: statusCode, Message: eb.Error}
	}
	return &Error{Status: statusCode, Message: fmt.Sprintf("HTTP %d", statusCode)}
}

// logRequest logs method and path only; bodies carry user questions and audio.
func (c *Client) logRequest(req *http.Request) {
	log.Printf("API_REQUEST | method=%s path=%s", req.Method, req.URL.Path)
}

func (c *Client) logResponse(req *http.Request, resp *http.Response, duration time.Duration) {
	log.Printf("API_RESPONSE | path=%s status=%d duration=%v", req.URL.Path, resp.StatusCode, duration.Round(time.Millisecond))
}
