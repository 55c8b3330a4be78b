// pkg/schemas/schemas.go
package schemas

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// RankRequestSchema is the JSON Schema a ranking request must satisfy before
// the engine sees it.
const RankRequestSchema = `{
  "type": "object",
  "required": ["requirement", "candidates"],
  "properties": {
    "requirement": {
      "type": "object",
      "required": ["id"],
      "properties": {
        "id": {"type": "string", "minLength": 1},
        "title": {"type": "string"},
        "summary": {"type": "string"},
        "required_skills": {"type": "array", "items": {"type": "string"}},
        "required_qualifications": {"type": "array", "items": {"type": "string"}},
        "technical_skills": {"type": "array", "items": {"type": "string"}},
        "preferred_skills": {"type": "array", "items": {"type": "string"}},
        "soft_skills": {"type": "array", "items": {"type": "string"}},
        "certifications": {"type": "array", "items": {"type": "string"}},
        "responsibilities": {"type": "array", "items": {"type": "string"}},
        "years_of_experience": {"type": "number", "minimum": 0},
        "mandatory_skills": {"type": "array", "items": {"type": "string"}},
        "optional_skills": {"type": "array", "items": {"type": "string"}}
      }
    },
    "candidates": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["id"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "summary": {"type": "string"},
          "skills": {"type": "array", "items": {"type": "string"}},
          "experience": {"type": "array", "items": {"type": "string"}},
          "projects": {"type": "array", "items": {"type": "string"}},
          "achievements": {"type": "array", "items": {"type": "string"}},
          "education": {"type": "array", "items": {"type": "string"}},
          "certifications": {"type": "array", "items": {"type": "string"}},
          "years_of_experience": {"type": "number", "minimum": 0},
          "vector_similarity": {"type": "number", "minimum": 0, "maximum": 1},
          "section_similarity": {"type": "object"}
        }
      }
    },
    "top_k": {"type": "integer", "minimum": 1}
  }
}`

// ValidateRankRequest validates raw request JSON against RankRequestSchema.
func ValidateRankRequest(raw []byte) error {
	return validate(RankRequestSchema, raw)
}

func validate(schema string, raw []byte) error {
	schemaLoader := gojsonschema.NewStringLoader(schema)
	documentLoader := gojsonschema.NewBytesLoader(raw)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, e := range result.Errors() {
			errs[i] = e.String()
		}
		return fmt.Errorf("request validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
