package config

import (
	"embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

// FieldError is a single schema violation.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every schema violation found in one section.
type ValidationError struct {
	Section string
	Errors  []FieldError
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: validation failed", ve.Section)
	for _, err := range ve.Errors {
		fmt.Fprintf(&sb, "; %s: %s", err.Field, err.Message)
	}
	return sb.String()
}

func validateSection(section string, doc map[string]any) error {
	schema, err := schemaFS.ReadFile("schemas/" + section + ".schema.json")
	if err != nil {
		return fmt.Errorf("%s: no schema: %w", section, err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schema),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return fmt.Errorf("%s: schema validation failed during load: %w", section, err)
	}

	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Section: section,
		Errors:  make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}

	return validationErr
}
