package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/autopost/autopost/internal/platform"
)

const defaultTimeout = 30 * time.Second

// CredentialProvider supplies the bearer token for a platform. Selection is
// keyed by platform identity, never by inspecting the request URL. An empty
// token means the request goes out unauthenticated and the backend decides.
type CredentialProvider interface {
	Token(ctx context.Context, p platform.Platform) (string, error)
}

// Client talks to the backend service that performs OAuth and posts on the
// user's behalf. It only shapes requests and interprets response envelopes;
// all platform API semantics live server-side.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	credentials CredentialProvider
}

// Config holds configuration for the backend client.
type Config struct {
	BaseURL     string
	Timeout     time.Duration
	Credentials CredentialProvider
}

// NewClient creates a new backend client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		credentials: cfg.Credentials,
	}
}

// Error is a failure reported by the backend, carrying the server-supplied
// message so callers can surface it verbatim.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("backend request failed (status %d)", e.StatusCode)
}

// envelope is the response wrapper every backend endpoint uses.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
}

// doJSON sends a JSON request and decodes the standard envelope. auth names
// the platform whose stored token authenticates the call; an empty auth
// sends no Authorization header.
func (c *Client) doJSON(ctx context.Context, method, path string, auth platform.Platform, reqBody any) (*envelope, error) {
	var body io.Reader
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if err := c.authorize(ctx, req, auth); err != nil {
		return nil, err
	}

	return c.send(req)
}

// doMultipart sends a multipart/form-data request and decodes the envelope.
func (c *Client) doMultipart(ctx context.Context, path string, auth platform.Platform, fields map[string]string, fileField, fileName string, file []byte) (*envelope, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for key, val := range fields {
		if err := w.WriteField(key, val); err != nil {
			return nil, fmt.Errorf("write form field %s: %w", key, err)
		}
	}

	part, err := w.CreateFormFile(fileField, fileName)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(file); err != nil {
		return nil, fmt.Errorf("write form file: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", w.FormDataContentType())

	if err := c.authorize(ctx, req, auth); err != nil {
		return nil, err
	}

	return c.send(req)
}

func (c *Client) authorize(ctx context.Context, req *http.Request, auth platform.Platform) error {
	if auth == "" || c.credentials == nil {
		return nil
	}
	token, err := c.credentials.Token(ctx, auth)
	if err != nil {
		return fmt.Errorf("load %s credentials: %w", auth, err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return nil
}

func (c *Client) send(req *http.Request) (*envelope, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return nil, &Error{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("unexpected response (status %d)", resp.StatusCode),
		}
	}

	if resp.StatusCode >= 400 || !env.Success {
		return nil, &Error{StatusCode: resp.StatusCode, Message: env.Message}
	}

	return &env, nil
}

func decodeData(env *envelope, out any) error {
	if len(env.Data) == 0 {
		return fmt.Errorf("response has no data")
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("parse response data: %w", err)
	}
	return nil
}
