package postman

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// CreateCollectionFromSchema generates a collection from a schema and links
// it to the version with a documentation relation. Nil is returned when
// Postman accepts the request but reports no collection.
func (c *Client) CreateCollectionFromSchema(ctx context.Context, apiID, versionID, schemaID, name string) (*SchemaCollection, error) {
	path := fmt.Sprintf("/apis/%s/versions/%s/schemas/%s/collections",
		url.PathEscape(apiID), url.PathEscape(versionID), url.PathEscape(schemaID))

	requestBody := map[string]interface{}{
		"name": name,
		"relations": []map[string]string{
			{"type": RelationDocumentation},
		},
	}

	var resp SchemaCollection
	if err := c.doRequest(ctx, http.MethodPost, path, c.workspaceQuery(), requestBody, &resp); err != nil {
		return nil, fmt.Errorf("failed to create collection from schema: %w", err)
	}
	if resp.Collection.ID == "" {
		return nil, nil
	}

	return &resp, nil
}

// GetDocumentationCollectionID returns the id of the collection linked to the
// version by a documentation relation, or "" when there is none.
func (c *Client) GetDocumentationCollectionID(ctx context.Context, apiID, versionID string) (string, error) {
	path := fmt.Sprintf("/apis/%s/versions/%s/%s",
		url.PathEscape(apiID), url.PathEscape(versionID), RelationDocumentation)

	var resp struct {
		Documentation []DocumentationRelation `json:"documentation"`
	}
	if err := c.doRequest(ctx, http.MethodGet, path, nil, nil, &resp); err != nil {
		if IsNotFound(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get documentation relations: %w", err)
	}

	if len(resp.Documentation) == 0 {
		return "", nil
	}

	return resp.Documentation[0].CollectionID, nil
}

// UpdateCollection overwrites the content of an existing collection. The
// collection argument is sent as-is under the "collection" key.
func (c *Client) UpdateCollection(ctx context.Context, collectionID string, collection interface{}) (*Collection, error) {
	path := fmt.Sprintf("/collections/%s", url.PathEscape(collectionID))

	requestBody := map[string]interface{}{
		"collection": collection,
	}

	var resp struct {
		Collection *Collection `json:"collection"`
	}
	if err := c.doRequest(ctx, http.MethodPut, path, nil, requestBody, &resp); err != nil {
		return nil, fmt.Errorf("failed to update collection: %w", err)
	}

	return resp.Collection, nil
}
