package prompt

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const outputSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["assessments"],
  "properties": {
    "assessments": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "match", "reason"],
        "properties": {
          "name":   {"type": "string"},
          "match":  {"type": "boolean"},
          "reason": {"type": "string"}
        }
      }
    }
  }
}`

var outputSchemaLoader = gojsonschema.NewStringLoader(outputSchema)

// OutputError reports model output that does not match the assessment
// schema.
type OutputError struct {
	Problems []string
}

func (e *OutputError) Error() string {
	return "screening output does not match schema: " + strings.Join(e.Problems, "; ")
}

func validateOutput(raw string) error {
	result, err := gojsonschema.Validate(outputSchemaLoader, gojsonschema.NewStringLoader(raw))
	if err != nil {
		return &OutputError{Problems: []string{fmt.Sprintf("unreadable output: %v", err)}}
	}
	if result.Valid() {
		return nil
	}
	problems := make([]string, 0, len(result.Errors()))
	for _, re := range result.Errors() {
		problems = append(problems, fmt.Sprintf("%s: %s", re.Field(), re.Description()))
	}
	return &OutputError{Problems: problems}
}
