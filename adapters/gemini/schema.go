package gemini

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/kaptinlin/jsonrepair"
	"google.golang.org/genai"
)

func str(desc string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "string", Description: desc}
}

func enum[T ~string](values []T) *jsonschema.Schema {
	s := &jsonschema.Schema{Type: "string"}
	for _, v := range values {
		s.Enum = append(s.Enum, string(v))
	}
	return s
}

func array(items *jsonschema.Schema) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "array", Items: items}
}

func object(props map[string]*jsonschema.Schema, required ...string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "object", Properties: props, Required: required}
}

// responseSchema pairs a declared JSON schema with its resolved validator.
type responseSchema struct {
	schema   *jsonschema.Schema
	resolved *jsonschema.Resolved
	gemini   *genai.Schema
}

func newResponseSchema(s *jsonschema.Schema) *responseSchema {
	resolved, err := s.Resolve(nil)
	if err != nil {
		panic(fmt.Sprintf("gemini: invalid response schema: %v", err))
	}
	return &responseSchema{schema: s, resolved: resolved, gemini: convSchema(s)}
}

// decode parses a model reply into v. Syntax errors are repaired once with
// jsonrepair; the repaired document must then satisfy the schema.
func (r *responseSchema) decode(text string, v any) error {
	data := []byte(text)
	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		if _, ok := err.(*json.SyntaxError); !ok {
			return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		fixed, rerr := jsonrepair.JSONRepair(text)
		if rerr != nil {
			return fmt.Errorf("%w: %v", ErrMalformedResponse, rerr)
		}
		data = []byte(fixed)
		if err := json.Unmarshal(data, &instance); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
	}

	if err := r.resolved.Validate(instance); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

func convSchema(schema *jsonschema.Schema) *genai.Schema {
	if schema == nil {
		return nil
	}

	enums := make([]string, 0, len(schema.Enum))
	for _, v := range schema.Enum {
		enums = append(enums, fmt.Sprintf("%v", v))
	}

	gs := genai.Schema{
		Format:      schema.Format,
		Description: schema.Description,
		Enum:        enums,
		Items:       convSchema(schema.Items),
		Required:    schema.Required,
	}

	if n := len(schema.Properties); n > 0 {
		gs.Properties = make(map[string]*genai.Schema, n)
		for k, prop := range schema.Properties {
			gs.Properties[k] = convSchema(prop)
		}
	}

	typ := schema.Type
	if typ == "" {
		for _, t := range schema.Types {
			if t != "null" {
				typ = t
				break
			}
		}
	}
	switch typ {
	case "object":
		gs.Type = genai.TypeObject
	case "array":
		gs.Type = genai.TypeArray
	case "string":
		gs.Type = genai.TypeString
	case "number":
		gs.Type = genai.TypeNumber
	case "integer":
		gs.Type = genai.TypeInteger
	case "boolean":
		gs.Type = genai.TypeBoolean
	}
	return &gs
}
