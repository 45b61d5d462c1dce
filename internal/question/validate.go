package question

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const schemaURL = "schema://question.json"

// recordSchema accepts both historical record shapes.
const recordSchema = `{
  "type": "object",
  "required": ["question_id", "question_text", "options"],
  "properties": {
    "question_id": {"type": "string", "minLength": 1},
    "question_text": {"type": "string"},
    "question_continuation": {"type": ["string", "null"]},
    "question_text_formula": {"type": ["string", "null"]},
    "has_table": {"type": ["boolean", "null"]},
    "table_data": {
      "type": ["object", "null"],
      "properties": {
        "headers": {"type": ["array", "null"]},
        "rows": {"type": ["array", "null"], "items": {"type": "array"}}
      }
    },
    "difficulty": {"type": ["string", "null"]},
    "options": {
      "oneOf": [
        {
          "type": "array",
          "minItems": 1,
          "items": {
            "type": "object",
            "required": ["id", "text"],
            "properties": {
              "id": {"type": "string", "minLength": 1},
              "text": {"type": "string"},
              "formula": {"type": ["string", "null"]}
            }
          }
        },
        {
          "type": "object",
          "minProperties": 1,
          "additionalProperties": {"type": "string"}
        }
      ]
    },
    "correct_option_id": {"type": ["string", "null"]},
    "correct_answer": {"type": ["string", "null"]},
    "explanation": {"type": ["string", "null"]},
    "explanation_formula": {"type": ["string", "null"]},
    "explanation_wrong": {
      "type": ["object", "null"],
      "additionalProperties": {"type": ["string", "object"]}
    },
    "calculator_steps": {"type": ["array", "null"], "items": {"type": "string"}}
  }
}`

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

// ValidationError reports a record that does not match the question schema.
type ValidationError struct {
	QuestionID string
	Err        error
}

func (e *ValidationError) Error() string {
	if e.QuestionID == "" {
		return fmt.Sprintf("invalid question record: %v", e.Err)
	}
	return fmt.Sprintf("invalid question record %s: %v", e.QuestionID, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// ValidateRaw checks one raw JSON record against the question schema.
func ValidateRaw(data []byte) error {
	sch, err := recordValidator()
	if err != nil {
		return err
	}

	var parsed any
	if err := json.Unmarshal(data, &parsed); err != nil {
		return &ValidationError{Err: fmt.Errorf("invalid JSON: %w", err)}
	}
	if err := sch.Validate(parsed); err != nil {
		var id string
		if m, ok := parsed.(map[string]any); ok {
			id, _ = m["question_id"].(string)
		}
		return &ValidationError{QuestionID: id, Err: err}
	}
	return nil
}

// ParseValidated validates then decodes a record.
func ParseValidated(data []byte) (Raw, error) {
	if err := ValidateRaw(data); err != nil {
		return Raw{}, err
	}
	return ParseRaw(data)
}

func recordValidator() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		var doc any
		if err := json.Unmarshal([]byte(recordSchema), &doc); err != nil {
			compileErr = fmt.Errorf("parse question schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, doc); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiled, compileErr = c.Compile(schemaURL)
	})
	return compiled, compileErr
}
