package postman

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// GetAPIVersionByName lists the versions of an API and returns the first one
// whose name matches exactly, or nil when none does.
func (c *Client) GetAPIVersionByName(ctx context.Context, apiID, name string) (*APIVersion, error) {
	path := fmt.Sprintf("/apis/%s/versions", url.PathEscape(apiID))

	var resp struct {
		Versions []APIVersion `json:"versions"`
	}
	if err := c.doRequest(ctx, http.MethodGet, path, nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list API versions: %w", err)
	}

	for i := range resp.Versions {
		if resp.Versions[i].Name == name {
			return &resp.Versions[i], nil
		}
	}

	return nil, nil
}

// GetAPIVersionByID retrieves a single version, including its schema
// references. Nil is returned when the version does not exist.
func (c *Client) GetAPIVersionByID(ctx context.Context, apiID, versionID string) (*APIVersion, error) {
	path := fmt.Sprintf("/apis/%s/versions/%s", url.PathEscape(apiID), url.PathEscape(versionID))

	var resp struct {
		Version *APIVersion `json:"version"`
	}
	if err := c.doRequest(ctx, http.MethodGet, path, nil, nil, &resp); err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get API version: %w", err)
	}

	return resp.Version, nil
}

// CreateAPIVersion creates a new version under an API.
func (c *Client) CreateAPIVersion(ctx context.Context, apiID, name string) (*APIVersion, error) {
	path := fmt.Sprintf("/apis/%s/versions", url.PathEscape(apiID))

	requestBody := map[string]interface{}{
		"version": map[string]interface{}{
			"name": name,
		},
	}

	var resp struct {
		Version *APIVersion `json:"version"`
	}
	if err := c.doRequest(ctx, http.MethodPost, path, nil, requestBody, &resp); err != nil {
		return nil, fmt.Errorf("failed to create API version: %w", err)
	}
	if resp.Version == nil || resp.Version.ID == "" {
		return nil, fmt.Errorf("failed to create API version: response did not contain a version")
	}

	return resp.Version, nil
}
