package formapage

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// ValidateAgainstSchema checks jsonData against rawSchema (a JSON schema
// given as raw bytes, a JSON string, or any value json.Marshal accepts)
// before a caller attempts to turn the same payload into criteria-values
// via ParseNumeric/ParseBool/NewEnumerated. It exists so a service sitting
// in front of this library can reject a malformed filter payload with a
// schema-shaped error instead of a confusing parse failure three layers
// deeper.
func ValidateAgainstSchema(rawSchema any, jsonData any) error {
	schemaBytes, err := toJSONBytes(rawSchema)
	if err != nil {
		return fmt.Errorf("formapage: failed to marshal schema for validation: %w", err)
	}

	var schema jsonschema.Schema
	if err := json.Unmarshal(schemaBytes, &schema); err != nil {
		return fmt.Errorf("formapage: failed to unmarshal into jsonschema.Schema: %w", err)
	}

	resolved, err := schema.Resolve(&jsonschema.ResolveOptions{})
	if err != nil {
		return fmt.Errorf("formapage: failed to resolve JSON schema: %w", err)
	}

	dataBytes, err := toJSONBytes(jsonData)
	if err != nil {
		return fmt.Errorf("formapage: failed to marshal data for validation: %w", err)
	}
	var data any
	if err := json.Unmarshal(dataBytes, &data); err != nil {
		return fmt.Errorf("formapage: failed to unmarshal data for validation: %w", err)
	}

	if err := resolved.Validate(data); err != nil {
		return fmt.Errorf("formapage: schema validation failed: %w", err)
	}
	return nil
}

func toJSONBytes(value any) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return json.Marshal(v)
	}
}
