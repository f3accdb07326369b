package config

import (
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/aledsdavies/invariant/errs"
)

// fileSchema bounds the shape of an optional on-disk config file, catching
// a malformed field with a precise pointer rather than a generic unmarshal
// error once it reaches koanf's Unmarshal.
const fileSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "store": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "disk_root": {"type": "string", "minLength": 1},
        "memory_policy": {"type": "string", "enum": ["unbounded", "lru", "lfu"]},
        "memory_capacity": {"type": "integer", "minimum": 1}
      }
    },
    "log": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "level": {"type": "string", "enum": ["debug", "info", "warn", "error"]},
        "format": {"type": "string", "enum": ["text", "json"]}
      }
    }
  }
}`

var fileValidator = func() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	url := "schema://invariant-config.json"
	if err := compiler.AddResource(url, strings.NewReader(fileSchema)); err != nil {
		panic(err)
	}
	schema, err := compiler.Compile(url)
	if err != nil {
		panic(err)
	}
	return schema
}()

// validateFile validates the decoded JSON document (as produced by koanf's
// file provider + JSON parser, i.e. a map[string]any) against fileSchema
// before it is merged into the layered Config.
func validateFile(doc map[string]any) error {
	if err := fileValidator.Validate(doc); err != nil {
		return errs.New(errs.ConfigInvalid, "config file failed schema validation: %v", err)
	}
	return nil
}
