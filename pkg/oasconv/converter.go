// Package oasconv converts OpenAPI documents into Postman collections.
//
// Swagger 2.0 documents are up-converted to OpenAPI 3 before conversion.
// Conversion never returns an error: a document that cannot be converted
// yields a Result with OK unset and a Reason.
package oasconv

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/hashicorp/go-hclog"
	"github.com/iancoleman/strcase"
	"sigs.k8s.io/yaml"

	"github.com/hashicorp-forge/syncman/pkg/oasfile"
)

// Result is the outcome of a conversion.
type Result struct {
	OK         bool
	Reason     string
	Collection *Collection
}

func failed(format string, args ...interface{}) Result {
	return Result{Reason: fmt.Sprintf(format, args...)}
}

// Converter turns OpenAPI documents into Postman collections.
type Converter struct {
	logger hclog.Logger
}

// NewConverter creates a Converter. A nil logger discards output.
func NewConverter(logger hclog.Logger) *Converter {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Converter{logger: logger.Named("oasconv")}
}

// Convert converts a YAML or JSON OpenAPI document.
func (c *Converter) Convert(ctx context.Context, spec string, opts Options) Result {
	if err := opts.Validate(); err != nil {
		return failed("invalid options: %v", err)
	}
	if strings.TrimSpace(spec) == "" {
		return failed("specification is empty")
	}

	doc, err := c.load(ctx, []byte(spec))
	if err != nil {
		return failed("%v", err)
	}

	b := &builder{doc: doc, opts: opts}
	collection := b.build()

	c.logger.Debug("converted specification",
		"title", collection.Info.Name,
		"requests", len(collection.Requests()),
		"folders", len(collection.Item)-b.rootRequests,
	)

	return Result{OK: true, Collection: collection}
}

func (c *Converter) load(ctx context.Context, data []byte) (*openapi3.T, error) {
	meta := oasfile.Parse("", data)

	loader := openapi3.NewLoader()
	loader.Context = ctx

	var doc *openapi3.T
	if meta.IsSwagger2() {
		c.logger.Debug("converting swagger 2.0 document to openapi 3")

		jsonData, err := yaml.YAMLToJSON(data)
		if err != nil {
			return nil, fmt.Errorf("invalid swagger document: %w", err)
		}

		var doc2 openapi2.T
		if err := json.Unmarshal(jsonData, &doc2); err != nil {
			return nil, fmt.Errorf("invalid swagger document: %w", err)
		}

		doc, err = openapi2conv.ToV3(&doc2)
		if err != nil {
			return nil, fmt.Errorf("cannot convert swagger document to openapi 3: %w", err)
		}
		if err := loader.ResolveRefsIn(doc, nil); err != nil {
			return nil, fmt.Errorf("cannot resolve references: %w", err)
		}
	} else {
		var err error
		doc, err = loader.LoadFromData(data)
		if err != nil {
			return nil, fmt.Errorf("invalid openapi document: %w", err)
		}
	}

	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}

	return doc, nil
}

var methodOrder = []string{
	http.MethodGet,
	http.MethodPut,
	http.MethodPost,
	http.MethodDelete,
	http.MethodOptions,
	http.MethodHead,
	http.MethodPatch,
	http.MethodTrace,
}

var serverVarPattern = regexp.MustCompile(`\{([^}]+)\}`)

type builder struct {
	doc  *openapi3.T
	opts Options

	folders      map[string]*Item
	rootRequests int
}

func (b *builder) build() *Collection {
	col := &Collection{
		Info: Info{
			Schema: CollectionSchemaURL,
		},
		Item: []*Item{},
		Variable: []Variable{{
			Key:   BaseURLVariable,
			Value: b.baseURL(),
			Type:  "string",
		}},
	}
	if b.doc.Info != nil {
		col.Info.Name = b.doc.Info.Title
		col.Info.Description = b.doc.Info.Description
	}

	b.folders = map[string]*Item{}

	// Declared tags fix the folder order.
	if b.opts.FolderStrategy == FolderStrategyTags {
		for _, tag := range b.doc.Tags {
			if tag == nil {
				continue
			}
			col.Item = append(col.Item, b.folder(tag.Name, tag.Description))
		}
	}

	if b.doc.Paths != nil {
		paths := b.doc.Paths.Map()
		for _, path := range sortedKeys(paths) {
			pathItem := paths[path]
			if pathItem == nil {
				continue
			}
			for _, method := range methodOrder {
				op := pathItem.GetOperation(method)
				if op == nil {
					continue
				}
				item := b.requestItem(path, method, pathItem, op)
				key, desc := b.folderKey(path, op)
				if key == "" {
					col.Item = append(col.Item, item)
					b.rootRequests++
					continue
				}
				f, ok := b.folders[key]
				if !ok {
					f = b.folder(key, desc)
					col.Item = append(col.Item, f)
				}
				f.Item = append(f.Item, item)
			}
		}
	}

	// Drop declared tags that ended up without requests.
	items := col.Item[:0]
	for _, it := range col.Item {
		if it.IsFolder() && len(it.Item) == 0 {
			continue
		}
		items = append(items, it)
	}
	col.Item = items

	return col
}

func (b *builder) folder(name, description string) *Item {
	f := &Item{Name: name, Description: description, Item: []*Item{}}
	b.folders[name] = f
	return f
}

// folderKey returns the folder an operation belongs in, or "" for the root.
func (b *builder) folderKey(path string, op *openapi3.Operation) (string, string) {
	switch b.opts.FolderStrategy {
	case FolderStrategyTags:
		if len(op.Tags) == 0 {
			return "", ""
		}
		name := op.Tags[0]
		var desc string
		if tag := b.doc.Tags.Get(name); tag != nil {
			desc = tag.Description
		}
		return name, desc
	case FolderStrategyPaths:
		segments := strings.Split(strings.Trim(path, "/"), "/")
		if len(segments) == 0 || segments[0] == "" {
			return "", ""
		}
		return segments[0], ""
	}
	return "", ""
}

func (b *builder) baseURL() string {
	if len(b.doc.Servers) == 0 || b.doc.Servers[0] == nil {
		return "/"
	}
	server := b.doc.Servers[0]
	return serverVarPattern.ReplaceAllStringFunc(server.URL, func(match string) string {
		name := match[1 : len(match)-1]
		if v, ok := server.Variables[name]; ok && v != nil {
			return v.Default
		}
		return match
	})
}

func (b *builder) requestItem(path, method string, pathItem *openapi3.PathItem, op *openapi3.Operation) *Item {
	req := &Request{
		Method:      method,
		Header:      []Header{},
		Description: op.Description,
	}

	params := mergeParameters(pathItem.Parameters, op.Parameters)

	req.URL = b.requestURL(path, params)
	for _, p := range params {
		if p.In != openapi3.ParameterInHeader {
			continue
		}
		req.Header = append(req.Header, Header{
			Key:         p.Name,
			Value:       b.parameterValue(p),
			Description: p.Description,
		})
	}

	if mediaType, media := b.requestMedia(op); media != nil {
		req.Header = append(req.Header, Header{Key: "Content-Type", Value: mediaType})
		req.Body = b.requestBody(mediaType, media)
	}

	accept := b.responseMediaType(op)
	if accept != "" {
		req.Header = append(req.Header, Header{Key: "Accept", Value: accept})
	}

	return &Item{
		Name:     requestName(method, path, op),
		Request:  req,
		Response: b.responses(req, op),
	}
}

func (b *builder) requestURL(path string, params []*openapi3.Parameter) URL {
	u := URL{
		Host: []string{"{{" + BaseURLVariable + "}}"},
		Path: []string{},
	}

	for _, seg := range strings.Split(strings.Trim(path, "/"), "/") {
		if seg == "" {
			continue
		}
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			seg = ":" + seg[1:len(seg)-1]
		}
		u.Path = append(u.Path, seg)
	}

	var query []string
	for _, p := range params {
		switch p.In {
		case openapi3.ParameterInPath:
			u.Variable = append(u.Variable, Variable{
				Key:         p.Name,
				Value:       b.parameterValue(p),
				Description: p.Description,
			})
		case openapi3.ParameterInQuery:
			value := b.parameterValue(p)
			u.Query = append(u.Query, QueryParam{
				Key:         p.Name,
				Value:       value,
				Description: p.Description,
			})
			query = append(query, p.Name+"="+value)
		}
	}

	u.Raw = "{{" + BaseURLVariable + "}}/" + strings.Join(u.Path, "/")
	if len(query) > 0 {
		u.Raw += "?" + strings.Join(query, "&")
	}
	return u
}

func (b *builder) parameterValue(p *openapi3.Parameter) string {
	if b.opts.RequestParametersResolution == ResolutionSchema {
		return placeholder(p.Schema)
	}
	if p.Example != nil {
		return formatValue(p.Example)
	}
	for _, name := range sortedKeys(p.Examples) {
		if ex := p.Examples[name]; ex != nil && ex.Value != nil && ex.Value.Value != nil {
			return formatValue(ex.Value.Value)
		}
	}
	return formatValue(exampleValue(p.Schema))
}

func (b *builder) requestMedia(op *openapi3.Operation) (string, *openapi3.MediaType) {
	if op.RequestBody == nil || op.RequestBody.Value == nil {
		return "", nil
	}
	return pickMedia(op.RequestBody.Value.Content)
}

func (b *builder) requestBody(mediaType string, media *openapi3.MediaType) *Body {
	if mediaType == "application/x-www-form-urlencoded" {
		body := &Body{Mode: "urlencoded", URLEncoded: []QueryParam{}}
		if media.Schema != nil && media.Schema.Value != nil {
			for _, name := range sortedKeys(media.Schema.Value.Properties) {
				prop := media.Schema.Value.Properties[name]
				value := placeholder(prop)
				if b.opts.SchemaFaker {
					value = formatValue(exampleValue(prop))
				}
				body.URLEncoded = append(body.URLEncoded, QueryParam{Key: name, Value: value})
			}
		}
		return body
	}

	body := &Body{Mode: "raw"}
	if isJSON(mediaType) {
		body.Options = &BodyOptions{Raw: BodyRawOptions{Language: "json"}}
	}
	if b.opts.SchemaFaker {
		body.Raw = b.mediaExample(media, isJSON(mediaType))
	}
	return body
}

func (b *builder) mediaExample(media *openapi3.MediaType, asJSON bool) string {
	var value interface{}
	if media.Example != nil {
		value = media.Example
	} else if len(media.Examples) > 0 {
		for _, name := range sortedKeys(media.Examples) {
			if ex := media.Examples[name]; ex != nil && ex.Value != nil && ex.Value.Value != nil {
				value = ex.Value.Value
				break
			}
		}
	}
	if value == nil {
		value = exampleValue(media.Schema)
	}
	if asJSON {
		return prettyJSON(value)
	}
	return formatValue(value)
}

func (b *builder) responseMediaType(op *openapi3.Operation) string {
	if op.Responses == nil {
		return ""
	}
	responses := op.Responses.Map()
	for _, code := range sortedKeys(responses) {
		ref := responses[code]
		if ref == nil || ref.Value == nil {
			continue
		}
		if mediaType, media := pickMedia(ref.Value.Content); media != nil {
			return mediaType
		}
	}
	return ""
}

func (b *builder) responses(req *Request, op *openapi3.Operation) []Response {
	if !b.opts.SchemaFaker || op.Responses == nil {
		return nil
	}

	var out []Response
	responses := op.Responses.Map()
	for _, code := range sortedKeys(responses) {
		status, err := strconv.Atoi(code)
		if err != nil {
			continue
		}
		ref := responses[code]
		if ref == nil || ref.Value == nil {
			continue
		}

		name := http.StatusText(status)
		if ref.Value.Description != nil && *ref.Value.Description != "" {
			name = *ref.Value.Description
		}

		resp := Response{
			Name:            name,
			OriginalRequest: req,
			Status:          http.StatusText(status),
			Code:            status,
			Header:          []Header{},
		}
		if mediaType, media := pickMedia(ref.Value.Content); media != nil {
			resp.Header = append(resp.Header, Header{Key: "Content-Type", Value: mediaType})
			resp.Body = b.mediaExample(media, isJSON(mediaType))
			if isJSON(mediaType) {
				resp.PostmanPreviewLanguage = "json"
			} else {
				resp.PostmanPreviewLanguage = "text"
			}
		}
		out = append(out, resp)
	}
	return out
}

// pickMedia prefers JSON content, then the first media type by name.
func pickMedia(content openapi3.Content) (string, *openapi3.MediaType) {
	if len(content) == 0 {
		return "", nil
	}
	keys := sortedKeys(content)
	for _, k := range keys {
		if isJSON(k) && content[k] != nil {
			return k, content[k]
		}
	}
	for _, k := range keys {
		if content[k] != nil {
			return k, content[k]
		}
	}
	return "", nil
}

func isJSON(mediaType string) bool {
	base := strings.TrimSpace(strings.SplitN(mediaType, ";", 2)[0])
	return base == "application/json" || strings.HasSuffix(base, "+json")
}

// mergeParameters returns path-level parameters overridden by
// operation-level parameters with the same name and location.
func mergeParameters(pathParams, opParams openapi3.Parameters) []*openapi3.Parameter {
	type key struct{ in, name string }

	var out []*openapi3.Parameter
	index := map[key]int{}
	for _, list := range []openapi3.Parameters{pathParams, opParams} {
		for _, ref := range list {
			if ref == nil || ref.Value == nil {
				continue
			}
			k := key{ref.Value.In, ref.Value.Name}
			if i, ok := index[k]; ok {
				out[i] = ref.Value
				continue
			}
			index[k] = len(out)
			out = append(out, ref.Value)
		}
	}
	return out
}

// requestName uses the summary, then the operation id split into words,
// then "METHOD path".
func requestName(method, path string, op *openapi3.Operation) string {
	if s := strings.TrimSpace(op.Summary); s != "" {
		return s
	}
	if op.OperationID != "" {
		words := strcase.ToDelimited(op.OperationID, ' ')
		runes := []rune(words)
		if len(runes) > 0 {
			runes[0] = unicode.ToUpper(runes[0])
		}
		return string(runes)
	}
	return method + " " + path
}
