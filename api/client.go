// File: scuolaguida/api/client.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Client talks to the scheduling backend. Every coordinator's network
// traffic goes through here: one shared http.Client, one outbound request
// limiter, and the ambient auth/company headers the backend expects.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter

	mu        sync.RWMutex
	token     string
	companyID string
}

// New builds a client for the given base URL. requestsPerMin paces outbound
// traffic so tap storms and refresh loops cannot hammer the backend.
func New(baseURL string, timeout time.Duration, requestsPerMin int) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if requestsPerMin <= 0 {
		requestsPerMin = 60
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		limiter:    rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMin)), requestsPerMin),
	}
}

// SetToken installs the bearer token sent with every request. An empty
// token removes the Authorization header.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// SetCompanyID installs the active-company header. The backend scopes every
// school-level read to it.
func (c *Client) SetCompanyID(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.companyID = id
}

// do issues one JSON request. Non-2xx replies come back as *Error; domain
// conflicts the protocol expresses as response shapes (matched:false,
// accepted:false) arrive as normal decoded payloads.
func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("request pacing interrupted: %w", err)
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.mu.RLock()
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.companyID != "" {
		req.Header.Set("X-Company-ID", c.companyID)
	}
	c.mu.RUnlock()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response failed: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &Error{Status: resp.StatusCode}
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		apiErr.Message = body.Error
		if apiErr.Message == "" {
			apiErr.Message = body.Message
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
