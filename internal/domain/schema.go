package domain

import (
	"github.com/invopop/jsonschema"
)

// schemaReflector inlines argument structs into a single object schema.
// Fields without omitempty are reported as required.
var schemaReflector = &jsonschema.Reflector{
	DoNotReference:            true,
	ExpandedStruct:            true,
	AllowAdditionalProperties: true,
	Anonymous:                 true,
}

// InputSchemaFor reflects the MCP input schema of a tool argument struct.
func InputSchemaFor(args interface{}) JSONSchema {
	s := schemaReflector.Reflect(args)

	props := make(map[string]interface{})
	if s.Properties != nil {
		for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
			props[pair.Key] = pair.Value
		}
	}

	return JSONSchema{
		Type:       "object",
		Properties: props,
		Required:   s.Required,
	}
}
