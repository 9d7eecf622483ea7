// Package params decodes the loosely typed step parameter map into a node's
// own configuration struct.
//
// Decoding happens in three stages: the raw map is validated against the
// node's JSON schema, re-encoded into the typed struct, and the struct's
// validate tags are checked. Any failure is an invalid parameter error
// naming the node and, when known, the offending field.
package params

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/dukex/cognipipe/pkg/protocol"
	"github.com/go-playground/validator/v10"
	"github.com/xeipuuv/gojsonschema"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report wire names ("query") instead of Go field names ("Query").
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	return v
}

// Decode validates raw against schema and fills target, which must be a pointer to a struct.
func Decode(node string, schema map[string]any, raw map[string]any, target any) error {
	if raw == nil {
		raw = map[string]any{}
	}

	if schema != nil {
		if err := validateSchema(node, schema, raw); err != nil {
			return err
		}
	}

	payload, err := json.Marshal(raw)
	if err != nil {
		return protocol.NewInvalidParameterError(node, "", fmt.Errorf("parameters are not serializable: %w", err))
	}

	if err := json.Unmarshal(payload, target); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return protocol.NewInvalidParameterError(node, typeErr.Field, fmt.Errorf("expected %s, got %s", typeErr.Type, typeErr.Value))
		}

		return protocol.NewInvalidParameterError(node, "", err)
	}

	if err := validate.Struct(target); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
			fieldErr := validationErrors[0]

			return protocol.NewInvalidParameterError(node, fieldErr.Field(), fmt.Errorf("failed on the '%s' rule", fieldErr.Tag()))
		}

		return protocol.NewInvalidParameterError(node, "", err)
	}

	return nil
}

func validateSchema(node string, schema map[string]any, raw map[string]any) error {
	result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(schema), gojsonschema.NewGoLoader(raw))
	if err != nil {
		return protocol.NewInvalidParameterError(node, "", fmt.Errorf("schema validation failed: %w", err))
	}

	if result.Valid() {
		return nil
	}

	first := result.Errors()[0]
	field := first.Field()

	if field == gojsonschema.STRING_ROOT_SCHEMA_PROPERTY {
		field = ""
		if property, ok := first.Details()["property"].(string); ok {
			field = property
		}
	}

	return protocol.NewInvalidParameterError(node, field, errors.New(first.Description()))
}
