package postman

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-hclog"
)

// DefaultBaseURL is the public Postman API endpoint.
const DefaultBaseURL = "https://api.getpostman.com"

// Config contains configuration for the Postman client.
type Config struct {
	// BaseURL is the base URL of the Postman API.
	// Default: https://api.getpostman.com
	BaseURL string `json:"baseUrl"`

	// APIKey is sent in the X-Api-Key header.
	APIKey string `json:"-"`

	// WorkspaceID is the workspace every API is created in.
	WorkspaceID string `json:"workspaceId"`

	// TLSVerify controls TLS certificate verification.
	// Set to false only for development/testing with self-signed certs.
	TLSVerify *bool `json:"tlsVerify,omitempty"`

	// Timeout for API requests.
	// Default: 30 seconds
	Timeout time.Duration `json:"timeout,omitempty"`

	// Logger receives one line per call issued, completed or failed.
	Logger hclog.Logger `json:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	tlsVerify := true
	return &Config{
		BaseURL:   DefaultBaseURL,
		TLSVerify: &tlsVerify,
		Timeout:   30 * time.Second,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}

	parsedURL, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base_url: %w", err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("base_url must use http or https scheme, got: %s", parsedURL.Scheme)
	}

	if c.APIKey == "" {
		return fmt.Errorf("api key is required")
	}

	if c.WorkspaceID == "" {
		return fmt.Errorf("workspace id is required")
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got: %v", c.Timeout)
	}

	return nil
}

// NewHTTPClient creates a configured HTTP client for the Postman API.
func (c *Config) NewHTTPClient() *http.Client {
	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     90 * time.Second,
	}

	if c.TLSVerify != nil && !*c.TLSVerify {
		transport.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true,
		}
	}

	return &http.Client{
		Timeout:   c.Timeout,
		Transport: transport,
	}
}
