package postman

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-hclog"
)

// Client calls the Postman API on behalf of a single workspace.
type Client struct {
	config *Config
	client *http.Client
	logger hclog.Logger
}

// APIError is returned for any non-2xx response from the Postman API.
type APIError struct {
	Method     string
	Path       string
	StatusCode int

	// Name and Message come from the {"error": {"name", "message"}}
	// payload, when Postman sends one.
	Name    string
	Message string

	// Body is the raw response body.
	Body string
}

func (e *APIError) Error() string {
	switch {
	case e.Name != "" && e.Message != "":
		return fmt.Sprintf("postman API error (status %d) on %s %s: %s: %s",
			e.StatusCode, e.Method, e.Path, e.Name, e.Message)
	case e.Message != "":
		return fmt.Sprintf("postman API error (status %d) on %s %s: %s",
			e.StatusCode, e.Method, e.Path, e.Message)
	default:
		return fmt.Sprintf("postman API returned status %d on %s %s: %s",
			e.StatusCode, e.Method, e.Path, e.Body)
	}
}

// IsNotFound reports whether err is an *APIError with a 404 status.
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

// IsForbidden reports whether err is an *APIError with a 403 status.
func IsForbidden(err error) bool {
	return hasStatus(err, http.StatusForbidden)
}

func hasStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

// NewClient creates a new Postman client.
func NewClient(cfg *Config) (*Client, error) {
	defaults := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaults.BaseURL
	}
	if cfg.TLSVerify == nil {
		cfg.TLSVerify = defaults.TLSVerify
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.Logger == nil {
		cfg.Logger = hclog.NewNullLogger()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid postman client config: %w", err)
	}

	return &Client{
		config: cfg,
		client: cfg.NewHTTPClient(),
		logger: cfg.Logger.Named("postman-client"),
	}, nil
}

// WorkspaceID returns the workspace the client operates in.
func (c *Client) WorkspaceID() string {
	return c.config.WorkspaceID
}

// doRequest executes a single HTTP request against the Postman API. The
// response body is decoded into result when result is non-nil.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body interface{}, result interface{}) error {
	endpoint := c.config.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-Api-Key", c.config.APIKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Info("calling postman", "method", method, "path", path)
	start := time.Now()

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("call failed", "method", method, "path", path, "error", err)
		return fmt.Errorf("request %s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug("response received",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
		}

		var payload struct {
			Error struct {
				Name    string `json:"name"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.Unmarshal(respBody, &payload); err == nil {
			apiErr.Name = payload.Error.Name
			apiErr.Message = payload.Error.Message
		}

		c.logger.Warn("call failed", "method", method, "path", path, "status", resp.StatusCode)
		return apiErr
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// workspaceQuery scopes a request to the configured workspace.
func (c *Client) workspaceQuery() url.Values {
	return url.Values{"workspace": []string{c.config.WorkspaceID}}
}
