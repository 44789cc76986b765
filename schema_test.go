package formapage

import "testing"

func TestValidateAgainstSchemaAcceptsMatchingPayload(t *testing.T) {
	schema := `{"type":"object","properties":{"status":{"type":"string"}},"required":["status"]}`
	if err := ValidateAgainstSchema(schema, `{"status":"ACTIVE"}`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateAgainstSchemaRejectsMismatch(t *testing.T) {
	schema := `{"type":"object","properties":{"status":{"type":"string"}},"required":["status"]}`
	if err := ValidateAgainstSchema(schema, `{"status":42}`); err == nil {
		t.Fatal("expected a validation error for a type mismatch")
	}
}
