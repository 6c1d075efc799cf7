package schedule

import (
	"encoding/json"

	"github.com/xeipuuv/gojsonschema"

	"github.com/mrjrask/desk-display/pkg/models"
)

// documentSchema is the first-pass shape check applied to raw submissions
// before decoding. Semantic rules (references, cycles, rule shapes) are
// checked afterwards against the typed document.
const documentSchema = `{
  "type": "object",
  "required": ["version", "sequence"],
  "properties": {
    "version": {"type": "integer"},
    "catalog": {"type": "object"},
    "metadata": {"type": "object"},
    "playlists": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "required": ["steps"],
        "properties": {
          "label": {"type": "string"},
          "steps": {"type": "array", "items": {"type": "object"}},
          "conditions": {"type": "object"}
        }
      }
    },
    "sequence": {"type": "array", "items": {"type": "object"}}
  }
}`

// ValidateRaw validates a raw JSON document: shape first, then the full
// semantic pass. On success it returns the decoded document.
func ValidateRaw(data []byte) (*models.Document, ValidationErrors) {
	schemaLoader := gojsonschema.NewStringLoader(documentSchema)
	dataLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, dataLoader)
	if err != nil {
		return nil, ValidationErrors{{
			Kind:    KindSchema,
			Message: "document is not valid JSON: " + err.Error(),
		}}
	}

	if !result.Valid() {
		errs := make(ValidationErrors, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			errs = append(errs, ValidationError{
				Kind:    KindSchema,
				Path:    desc.Field(),
				Message: desc.Description(),
			})
		}

		return nil, errs
	}

	var doc models.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, ValidationErrors{{
			Kind:    KindSchema,
			Message: err.Error(),
		}}
	}

	if errs := Validate(&doc); len(errs) > 0 {
		return nil, errs
	}

	return &doc, nil
}
