package oasconv

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/getkin/kin-openapi/openapi3"
)

// maxExampleDepth bounds nested object generation; recursive schemas are
// cut off at this depth.
const maxExampleDepth = 8

// exampleValue builds an example value for a schema: a declared example,
// the default, the first enum value, or a type-based value.
func exampleValue(ref *openapi3.SchemaRef) interface{} {
	return generateExample(ref, 0, map[*openapi3.Schema]bool{})
}

func generateExample(ref *openapi3.SchemaRef, depth int, active map[*openapi3.Schema]bool) interface{} {
	if ref == nil || ref.Value == nil {
		return nil
	}
	s := ref.Value

	if s.Example != nil {
		return s.Example
	}
	if s.Default != nil {
		return s.Default
	}
	if len(s.Enum) > 0 {
		return s.Enum[0]
	}

	if depth > maxExampleDepth || active[s] {
		return nil
	}
	active[s] = true
	defer delete(active, s)

	if len(s.AllOf) > 0 {
		merged := map[string]interface{}{}
		for _, sub := range s.AllOf {
			if obj, ok := generateExample(sub, depth+1, active).(map[string]interface{}); ok {
				for k, v := range obj {
					merged[k] = v
				}
			}
		}
		for k, v := range objectExample(s, depth, active) {
			merged[k] = v
		}
		return merged
	}
	if len(s.OneOf) > 0 {
		return generateExample(s.OneOf[0], depth+1, active)
	}
	if len(s.AnyOf) > 0 {
		return generateExample(s.AnyOf[0], depth+1, active)
	}

	switch schemaType(s) {
	case openapi3.TypeObject:
		return objectExample(s, depth, active)
	case openapi3.TypeArray:
		item := generateExample(s.Items, depth+1, active)
		if item == nil {
			return []interface{}{}
		}
		return []interface{}{item}
	case openapi3.TypeString:
		return stringExample(s.Format)
	case openapi3.TypeInteger:
		if s.Min != nil {
			return int64(*s.Min)
		}
		return 0
	case openapi3.TypeNumber:
		if s.Min != nil {
			return *s.Min
		}
		return 0.0
	case openapi3.TypeBoolean:
		return true
	}

	if len(s.Properties) > 0 {
		return objectExample(s, depth, active)
	}
	return nil
}

func objectExample(s *openapi3.Schema, depth int, active map[*openapi3.Schema]bool) map[string]interface{} {
	obj := make(map[string]interface{}, len(s.Properties))
	for _, name := range sortedKeys(s.Properties) {
		prop := s.Properties[name]
		if prop != nil && prop.Value != nil && prop.Value.ReadOnly {
			continue
		}
		if v := generateExample(prop, depth+1, active); v != nil {
			obj[name] = v
		}
	}
	return obj
}

func stringExample(format string) string {
	switch format {
	case "date-time":
		return "2024-01-01T00:00:00Z"
	case "date":
		return "2024-01-01"
	case "email":
		return "user@example.com"
	case "uuid":
		return "3fa85f64-5717-4562-b3fc-2c963f66afa6"
	case "uri", "url":
		return "https://example.com"
	case "hostname":
		return "example.com"
	case "ipv4":
		return "192.168.0.1"
	case "byte":
		return "U3dhZ2dlciByb2Nrcw=="
	}
	return "string"
}

// placeholder renders a schema as a type placeholder such as "<integer>".
func placeholder(ref *openapi3.SchemaRef) string {
	if ref == nil || ref.Value == nil {
		return "<string>"
	}
	t := schemaType(ref.Value)
	if t == "" {
		t = openapi3.TypeString
	}
	if ref.Value.Format != "" && t == openapi3.TypeString {
		return "<" + ref.Value.Format + ">"
	}
	return "<" + t + ">"
}

func schemaType(s *openapi3.Schema) string {
	if s == nil || s.Type == nil {
		return ""
	}
	types := s.Type.Slice()
	for _, t := range types {
		if t != openapi3.TypeNull {
			return t
		}
	}
	return ""
}

// formatValue renders an example as a parameter value.
func formatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool, int, int64, float64, float32:
		return fmt.Sprint(val)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

// prettyJSON renders an example as an indented JSON body.
func prettyJSON(v interface{}) string {
	if v == nil {
		return ""
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ""
	}
	return string(data)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
