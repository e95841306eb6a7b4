package postman

import (
	"time"

	"github.com/araddon/dateparse"
)

// Schema languages and types accepted by the Postman API.
const (
	SchemaLanguageYAML = "yaml"
	SchemaLanguageJSON = "json"

	SchemaTypeOpenAPI3 = "openapi3"
	SchemaTypeOpenAPI2 = "openapi2"
)

// RelationDocumentation tags a collection as the documentation of a version.
const RelationDocumentation = "documentation"

// Workspace is a Postman workspace.
type Workspace struct {
	ID          string                `json:"id"`
	Name        string                `json:"name"`
	Type        string                `json:"type"`
	Description string                `json:"description,omitempty"`
	CreatedAt   string                `json:"createdAt,omitempty"`
	UpdatedAt   string                `json:"updatedAt,omitempty"`
	Collections []WorkspaceCollection `json:"collections,omitempty"`
}

// WorkspaceCollection is a collection reference listed in a workspace.
type WorkspaceCollection struct {
	ID   string `json:"id"`
	UID  string `json:"uid"`
	Name string `json:"name"`
}

// API is a Postman API resource.
type API struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Summary     string `json:"summary,omitempty"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
	CreatedBy   string `json:"createdBy,omitempty"`
	UpdatedBy   string `json:"updatedBy,omitempty"`
}

// APIVersion is a named version of an API.
type APIVersion struct {
	ID         string `json:"id"`
	API        string `json:"api,omitempty"`
	Name       string `json:"name"`
	Summary    string `json:"summary,omitempty"`
	Stage      string `json:"stage,omitempty"`
	Visibility string `json:"visibility,omitempty"`
	CreatedAt  string `json:"createdAt,omitempty"`
	UpdatedAt  string `json:"updatedAt,omitempty"`
	CreatedBy  string `json:"createdBy,omitempty"`
	UpdatedBy  string `json:"updatedBy,omitempty"`

	// Schema lists the ids of the schemas attached to this version.
	Schema []string `json:"schema,omitempty"`
}

// LatestSchemaID returns the last schema reference of the version, or ""
// when the version has no schema.
func (v *APIVersion) LatestSchemaID() string {
	if v == nil || len(v.Schema) == 0 {
		return ""
	}
	return v.Schema[len(v.Schema)-1]
}

// LastUpdated parses UpdatedAt. The zero time is returned when the field is
// missing or not a recognizable timestamp.
func (v *APIVersion) LastUpdated() time.Time {
	if v == nil || v.UpdatedAt == "" {
		return time.Time{}
	}
	t, err := dateparse.ParseAny(v.UpdatedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Schema is an API definition attached to a version.
type Schema struct {
	ID         string `json:"id"`
	APIVersion string `json:"apiVersion,omitempty"`
	Language   string `json:"language"`
	Type       string `json:"type"`
	CreatedAt  string `json:"createdAt,omitempty"`
	UpdatedAt  string `json:"updatedAt,omitempty"`
	CreatedBy  string `json:"createdBy,omitempty"`
	UpdatedBy  string `json:"updatedBy,omitempty"`
}

// CollectionRef identifies a collection.
type CollectionRef struct {
	ID  string `json:"id"`
	UID string `json:"uid,omitempty"`
}

// Relation links a collection to an API version.
type Relation struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// SchemaCollection is the result of generating a collection from a schema.
type SchemaCollection struct {
	Collection CollectionRef `json:"collection"`
	Relations  []Relation    `json:"relations"`
}

// DocumentationRelation is one documentation relation of a version.
type DocumentationRelation struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	CollectionID string `json:"collectionId"`
	UpdatedAt    string `json:"updatedAt,omitempty"`
}

// Collection is the summary Postman returns after a collection update.
type Collection struct {
	ID   string `json:"id"`
	UID  string `json:"uid,omitempty"`
	Name string `json:"name"`
}

// schemaBody is the request payload for schema creation and update.
type schemaBody struct {
	Schema schemaPayload `json:"schema"`
}

type schemaPayload struct {
	Language string `json:"language"`
	Schema   string `json:"schema"`
	Type     string `json:"type"`
}

func newSchemaBody(content string) schemaBody {
	return schemaBody{
		Schema: schemaPayload{
			Language: SchemaLanguageYAML,
			Schema:   content,
			Type:     SchemaTypeOpenAPI3,
		},
	}
}
