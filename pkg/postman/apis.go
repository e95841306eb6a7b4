package postman

import (
	"context"
	"fmt"
	"net/http"
)

// FindAPIByName lists the APIs visible to the API key and returns the first
// one whose name matches exactly, or nil when none does.
func (c *Client) FindAPIByName(ctx context.Context, name string) (*API, error) {
	var resp struct {
		APIs []API `json:"apis"`
	}
	if err := c.doRequest(ctx, http.MethodGet, "/apis", nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list APIs: %w", err)
	}

	for i := range resp.APIs {
		if resp.APIs[i].Name == name {
			return &resp.APIs[i], nil
		}
	}

	return nil, nil
}

// CreateAPI creates a new API in the configured workspace.
func (c *Client) CreateAPI(ctx context.Context, name string) (*API, error) {
	requestBody := map[string]interface{}{
		"api": map[string]interface{}{
			"name": name,
		},
	}

	var resp struct {
		API *API `json:"api"`
	}
	if err := c.doRequest(ctx, http.MethodPost, "/apis", c.workspaceQuery(), requestBody, &resp); err != nil {
		return nil, fmt.Errorf("failed to create API: %w", err)
	}
	if resp.API == nil || resp.API.ID == "" {
		return nil, fmt.Errorf("failed to create API: response did not contain an API")
	}

	return resp.API, nil
}
