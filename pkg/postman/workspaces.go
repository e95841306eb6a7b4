package postman

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// GetWorkspace retrieves the configured workspace. A nil workspace and a nil
// error are returned when the workspace does not exist or the API key is not
// allowed to see it.
func (c *Client) GetWorkspace(ctx context.Context) (*Workspace, error) {
	path := fmt.Sprintf("/workspaces/%s", url.PathEscape(c.config.WorkspaceID))

	var resp struct {
		Workspace *Workspace `json:"workspace"`
	}
	if err := c.doRequest(ctx, http.MethodGet, path, nil, nil, &resp); err != nil {
		if IsNotFound(err) || IsForbidden(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get workspace: %w", err)
	}

	return resp.Workspace, nil
}
