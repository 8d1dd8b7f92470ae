package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const manifestSchemaURL = "schema://unilang/manifest.json"

// manifestSchema describes the structure of a command manifest. Kinds and validation
// rules are checked for shape here and parsed precisely when the manifest is decoded.
const manifestSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["commands"],
  "additionalProperties": false,
  "properties": {
    "version": {"type": "string"},
    "requires": {"type": "string"},
    "commands": {
      "type": "array",
      "items": {"$ref": "#/$defs/command"}
    }
  },
  "$defs": {
    "stringList": {"type": "array", "items": {"type": "string"}},
    "command": {
      "type": "object",
      "required": ["name"],
      "additionalProperties": false,
      "properties": {
        "name": {"type": "string", "minLength": 1},
        "namespace": {"type": "string", "pattern": "^(\\.[^.]+)*$"},
        "description": {"type": "string"},
        "hint": {"type": "string"},
        "status": {"enum": ["stable", "beta", "experimental", "deprecated"]},
        "version": {"type": "string"},
        "aliases": {"$ref": "#/$defs/stringList"},
        "tags": {"$ref": "#/$defs/stringList"},
        "examples": {"$ref": "#/$defs/stringList"},
        "permissions": {"$ref": "#/$defs/stringList"},
        "idempotent": {"type": "boolean"},
        "deprecation_message": {"type": "string"},
        "routine_link": {"type": "string"},
        "arguments": {
          "type": "array",
          "items": {"$ref": "#/$defs/argument"}
        }
      }
    },
    "argument": {
      "type": "object",
      "required": ["name", "kind"],
      "additionalProperties": false,
      "properties": {
        "name": {"type": "string", "minLength": 1},
        "description": {"type": "string"},
        "hint": {"type": "string"},
        "kind": {"type": "string", "minLength": 1},
        "attributes": {
          "type": "object",
          "additionalProperties": false,
          "properties": {
            "optional": {"type": "boolean"},
            "multiple": {"type": "boolean"},
            "interactive": {"type": "boolean"},
            "sensitive": {"type": "boolean"},
            "default": {"type": ["string", "number", "boolean"]}
          }
        },
        "validation_rules": {
          "type": "array",
          "items": {"type": "string", "pattern": "^(min|max|min_length|max_length|pattern|min_items):"}
        },
        "aliases": {"$ref": "#/$defs/stringList"},
        "tags": {"$ref": "#/$defs/stringList"}
      }
    }
  }
}`

var (
	compiledSchema     *jsonschema.Schema
	compiledSchemaErr  error
	compiledSchemaOnce sync.Once
)

func loadManifestSchema() (*jsonschema.Schema, error) {
	compiledSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource(manifestSchemaURL, strings.NewReader(manifestSchema)); err != nil {
			compiledSchemaErr = err
			return
		}
		compiledSchema, compiledSchemaErr = compiler.Compile(manifestSchemaURL)
	})
	return compiledSchema, compiledSchemaErr
}

// ValidateManifestDocument checks a decoded manifest document against the manifest schema.
// The document is normalised through JSON so YAML scalars compare like JSON values.
func ValidateManifestDocument(doc interface{}) error {
	schema, err := loadManifestSchema()
	if err != nil {
		return fmt.Errorf("failed to compile manifest schema: %w", err)
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("manifest is not representable as JSON: %w", err)
	}
	var normalized interface{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&normalized); err != nil {
		return fmt.Errorf("failed to normalise manifest: %w", err)
	}

	if err := schema.Validate(normalized); err != nil {
		return fmt.Errorf("manifest does not match schema: %w", err)
	}
	return nil
}
