package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/existflow/activityboard/internal/logger"
	"github.com/existflow/activityboard/internal/model"
	"github.com/google/uuid"
)

// Config holds what the client needs to reach the activity API
type Config struct {
	BaseURL  string
	Username string
	Password string
	Timeout  time.Duration // 0 means no client-side timeout
}

// Client talks to the remote activity store. Every request carries basic
// auth with the configured credentials. Calls are never retried.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
}

// NewClient creates a new activity API client
func NewClient(cfg Config) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		username:   cfg.Username,
		password:   cfg.Password,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// WithHTTPClient replaces the underlying HTTP client
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// BaseURL returns the API root the client sends requests to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListUnfinished returns the activities that are not done yet
func (c *Client) ListUnfinished(ctx context.Context) ([]model.Activity, error) {
	return c.list(ctx, "/unfinished")
}

// ListFinished returns the completed activities
func (c *Client) ListFinished(ctx context.Context) ([]model.Activity, error) {
	return c.list(ctx, "/finished")
}

// Create registers a new activity; the server assigns its id
func (c *Client) Create(ctx context.Context, description string, createdAt time.Time) (model.Activity, error) {
	body := model.CreateRequest{Description: description, CreatedAt: createdAt}
	return c.single(ctx, http.MethodPost, "/create", body)
}

// Finish marks an activity as done
func (c *Client) Finish(ctx context.Context, id int64) (model.Activity, error) {
	return c.single(ctx, http.MethodPut, "/finish/"+formatID(id), struct{}{})
}

// Revert reopens a finished activity
func (c *Client) Revert(ctx context.Context, id int64) (model.Activity, error) {
	return c.single(ctx, http.MethodPut, "/revert/"+formatID(id), struct{}{})
}

// Edit changes the description of an activity
func (c *Client) Edit(ctx context.Context, id int64, description string) (model.Activity, error) {
	body := model.EditRequest{ID: id, Description: description}
	return c.single(ctx, http.MethodPut, "/edit", body)
}

// Delete removes an activity
func (c *Client) Delete(ctx context.Context, id int64) error {
	resp, err := c.do(ctx, http.MethodDelete, "/delete/"+formatID(id), nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// GetByID fetches a single activity
func (c *Client) GetByID(ctx context.Context, id int64) (model.Activity, error) {
	return c.single(ctx, http.MethodGet, "/"+formatID(id), nil)
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func (c *Client) list(ctx context.Context, path string) ([]model.Activity, error) {
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	activities, err := decodeList(resp.Body)
	if err != nil {
		logger.Error("Malformed list payload", logger.F("path", path), logger.F("error", err))
		return nil, err
	}
	return activities, nil
}

func (c *Client) single(ctx context.Context, method, path string, body interface{}) (model.Activity, error) {
	resp, err := c.do(ctx, method, path, body)
	if err != nil {
		return model.Activity{}, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	a, err := decodeOne(resp.Body)
	if err != nil {
		logger.Error("Malformed activity payload", logger.F("method", method), logger.F("path", path), logger.F("error", err))
		return model.Activity{}, err
	}
	return a, nil
}

// do sends one authenticated request. Non-2xx responses are turned into
// *StatusError and their body is consumed.
func (c *Client) do(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.username, c.password)

	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	logger.Debug("HTTP Request",
		logger.F("method", method),
		logger.F("url", url),
		logger.F("requestID", requestID))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Error("HTTP request failed", logger.F("error", err), logger.F("url", url), logger.F("requestID", requestID))
		return nil, &TransportError{Method: method, URL: url, Err: err}
	}

	logger.Debug("HTTP Response",
		logger.F("status", resp.StatusCode),
		logger.F("requestID", requestID),
		logger.F("duration", time.Since(start).String()))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer func() {
			_ = resp.Body.Close()
		}()
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		logger.Warn("Request rejected",
			logger.F("method", method),
			logger.F("url", url),
			logger.F("status", resp.StatusCode),
			logger.F("response", string(respBody)))
		return nil, newStatusError(method, url, resp.StatusCode, respBody)
	}

	return resp, nil
}
