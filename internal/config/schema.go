// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Circle Contributors

package config

import (
	"encoding/json"
	"sync"

	"github.com/invopop/jsonschema"
	"github.com/samber/oops"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"

	"github.com/circlehub/circle/internal/event"
)

// SchemaID is the $id of the configuration schema.
const SchemaID = "https://circle.dev/schemas/config.schema.json"

// EventSchemaID is the $id of the event payload schema.
const EventSchemaID = "https://circle.dev/schemas/event.schema.json"

func reflector() *jsonschema.Reflector {
	return &jsonschema.Reflector{
		DoNotReference:             true,
		FieldNameTag:               "koanf",
		RequiredFromJSONSchemaTags: true,
	}
}

// GenerateSchema returns the JSON Schema of the configuration file.
func GenerateSchema() ([]byte, error) {
	schema := reflector().Reflect(&Config{})
	schema.ID = SchemaID
	schema.Title = "Circle configuration"
	schema.Description = "Schema for the circle.yaml configuration file"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, oops.Code("SCHEMA_FAILED").Wrapf(err, "marshal config schema")
	}
	return data, nil
}

// GenerateEventSchema returns the JSON Schema of the event stream payload.
func GenerateEventSchema() ([]byte, error) {
	schema := (&jsonschema.Reflector{DoNotReference: true}).Reflect(&event.Payload{})
	schema.ID = EventSchemaID
	schema.Title = "Circle event"
	schema.Description = "Payload of each server-sent event on /events"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, oops.Code("SCHEMA_FAILED").Wrapf(err, "marshal event schema")
	}
	return data, nil
}

var compiledSchema = sync.OnceValues(func() (*jschema.Schema, error) {
	data, err := GenerateSchema()
	if err != nil {
		return nil, err
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, oops.Code("SCHEMA_FAILED").Wrapf(err, "parse config schema")
	}

	c := jschema.NewCompiler()
	if err := c.AddResource("config.schema.json", doc); err != nil {
		return nil, oops.Code("SCHEMA_FAILED").Wrapf(err, "add config schema")
	}
	sch, err := c.Compile("config.schema.json")
	if err != nil {
		return nil, oops.Code("SCHEMA_FAILED").Wrapf(err, "compile config schema")
	}
	return sch, nil
})

// ValidateYAML checks a configuration document against the schema. Unknown
// keys, wrong types, and out-of-range values are rejected.
func ValidateYAML(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return oops.Code("CONFIG_INVALID").Wrapf(err, "invalid YAML")
	}
	if doc == nil {
		return nil
	}

	sch, err := compiledSchema()
	if err != nil {
		return err
	}
	if err := sch.Validate(toJSONTypes(doc)); err != nil {
		return oops.Code("CONFIG_INVALID").Wrapf(err, "configuration does not match schema")
	}
	return nil
}

// toJSONTypes normalises YAML-decoded values to what the validator expects.
func toJSONTypes(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = toJSONTypes(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = toJSONTypes(item)
		}
		return out
	case string, int, int64, float64, bool, nil:
		return val
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return val
		}
		var out any
		if err := json.Unmarshal(b, &out); err != nil {
			return val
		}
		return out
	}
}
