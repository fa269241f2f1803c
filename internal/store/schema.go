package store

import (
	"encoding/json"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// itemsSchema describes the decoded snapshot string.
const itemsSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id", "content"],
    "properties": {
      "id": {"type": "string", "minLength": 1},
      "content": {"type": "string"},
      "checked": {"type": "boolean"}
    }
  }
}`

// recordSchema describes the jsonbox record envelope around the snapshot.
const recordSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["_id", "items"],
  "properties": {
    "_id": {"type": "string", "minLength": 1},
    "items": {"type": "string"},
    "_createdOn": {"type": "string"},
    "_updatedOn": {"type": "string"}
  }
}`

var (
	compiledItems  = jsonschema.MustCompileString("dragdo://items.json", itemsSchema)
	compiledRecord = jsonschema.MustCompileString("dragdo://record.json", recordSchema)
)

// SchemaError reports where a payload broke its schema.
type SchemaError struct {
	Path    string
	Message string
}

func (e *SchemaError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("payload invalid at %s: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("payload invalid: %s", e.Message)
}

// validateSnapshot checks a snapshot string before it is decoded into items.
func validateSnapshot(s string) error {
	s = strings.TrimSpace(s)
	if s == "" || s == "null" {
		return nil
	}
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return fmt.Errorf("json unmarshal: %w", err)
	}
	return validate(compiledItems, v)
}

// validateRecord checks the envelope a record was read into. The struct is
// round-tripped through JSON so the schema sees the wire field names.
func validateRecord(rec any) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("json unmarshal: %w", err)
	}
	return validate(compiledRecord, v)
}

func validate(schema *jsonschema.Schema, v any) error {
	err := schema.Validate(v)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return &SchemaError{Message: err.Error()}
	}
	// Report the deepest cause; that is the one pointing at the bad field.
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return &SchemaError{Path: ve.InstanceLocation, Message: ve.Message}
}
