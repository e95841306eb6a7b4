package postman

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// CreateSchema attaches a new OpenAPI 3 schema to a version.
func (c *Client) CreateSchema(ctx context.Context, apiID, versionID, content string) (*Schema, error) {
	path := fmt.Sprintf("/apis/%s/versions/%s/schemas",
		url.PathEscape(apiID), url.PathEscape(versionID))

	var resp struct {
		Schema *Schema `json:"schema"`
	}
	if err := c.doRequest(ctx, http.MethodPost, path, nil, newSchemaBody(content), &resp); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	if resp.Schema == nil || resp.Schema.ID == "" {
		return nil, fmt.Errorf("failed to create schema: response did not contain a schema")
	}

	return resp.Schema, nil
}

// UpdateSchema overwrites the content of an existing schema.
func (c *Client) UpdateSchema(ctx context.Context, apiID, versionID, schemaID, content string) (*Schema, error) {
	path := fmt.Sprintf("/apis/%s/versions/%s/schemas/%s",
		url.PathEscape(apiID), url.PathEscape(versionID), url.PathEscape(schemaID))

	var resp struct {
		Schema *Schema `json:"schema"`
	}
	if err := c.doRequest(ctx, http.MethodPut, path, nil, newSchemaBody(content), &resp); err != nil {
		return nil, fmt.Errorf("failed to update schema: %w", err)
	}
	if resp.Schema == nil || resp.Schema.ID == "" {
		return nil, fmt.Errorf("failed to update schema: response did not contain a schema")
	}

	return resp.Schema, nil
}
