package oasconv

// CollectionSchemaURL identifies the Postman collection v2.1 format.
const CollectionSchemaURL = "https://schema.getpostman.com/json/collection/v2.1.0/collection.json"

// BaseURLVariable is the collection variable every request URL starts with.
const BaseURLVariable = "baseUrl"

// Collection is a Postman collection in the v2.1 format.
type Collection struct {
	Info     Info       `json:"info"`
	Item     []*Item    `json:"item"`
	Variable []Variable `json:"variable,omitempty"`
}

// WithName returns a shallow copy of the collection with a new display name.
func (c *Collection) WithName(name string) *Collection {
	renamed := *c
	renamed.Info.Name = name
	return &renamed
}

// Requests returns every request item, depth first.
func (c *Collection) Requests() []*Item {
	var out []*Item
	var walk func(items []*Item)
	walk = func(items []*Item) {
		for _, it := range items {
			if it.Request != nil {
				out = append(out, it)
			}
			walk(it.Item)
		}
	}
	walk(c.Item)
	return out
}

// Info describes a collection.
type Info struct {
	PostmanID   string `json:"_postman_id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Schema      string `json:"schema"`
}

// Item is either a folder (Item set) or a request (Request set).
type Item struct {
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Item        []*Item    `json:"item,omitempty"`
	Request     *Request   `json:"request,omitempty"`
	Response    []Response `json:"response,omitempty"`
}

// IsFolder reports whether the item groups other items.
func (i *Item) IsFolder() bool {
	return i.Request == nil
}

// Request is a single HTTP request.
type Request struct {
	Method      string   `json:"method"`
	Header      []Header `json:"header"`
	Body        *Body    `json:"body,omitempty"`
	URL         URL      `json:"url"`
	Description string   `json:"description,omitempty"`
}

// URL is a structured request URL.
type URL struct {
	Raw      string       `json:"raw"`
	Host     []string     `json:"host"`
	Path     []string     `json:"path"`
	Query    []QueryParam `json:"query,omitempty"`
	Variable []Variable   `json:"variable,omitempty"`
}

// Header is a request or response header.
type Header struct {
	Key         string `json:"key"`
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
	Disabled    bool   `json:"disabled,omitempty"`
}

// QueryParam is a URL query parameter.
type QueryParam struct {
	Key         string `json:"key"`
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
	Disabled    bool   `json:"disabled,omitempty"`
}

// Variable is a collection or path variable.
type Variable struct {
	Key         string `json:"key"`
	Value       string `json:"value"`
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
}

// Body is a request body.
type Body struct {
	Mode       string       `json:"mode"`
	Raw        string       `json:"raw,omitempty"`
	URLEncoded []QueryParam `json:"urlencoded,omitempty"`
	Options    *BodyOptions `json:"options,omitempty"`
}

// BodyOptions carries the editor language of a raw body.
type BodyOptions struct {
	Raw BodyRawOptions `json:"raw"`
}

type BodyRawOptions struct {
	Language string `json:"language"`
}

// Response is an example response saved with a request.
type Response struct {
	Name                   string   `json:"name"`
	OriginalRequest        *Request `json:"originalRequest,omitempty"`
	Status                 string   `json:"status"`
	Code                   int      `json:"code"`
	Header                 []Header `json:"header"`
	Body                   string   `json:"body"`
	PostmanPreviewLanguage string   `json:"_postman_previewlanguage,omitempty"`
}
