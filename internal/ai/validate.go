package ai

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// decodePayload extracts, decodes and validates a model reply into v.
func decodePayload(content string, v any) error {
	raw := ExtractJSON(content)
	if raw == "" {
		return fmt.Errorf("%w: no JSON object in reply", ErrInvalidPayload)
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return nil
}

// ParseDiagnosis validates a raw diagnosis reply.
func ParseDiagnosis(content string) (*Diagnosis, error) {
	var d Diagnosis
	if err := decodePayload(content, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// ParseReport validates a raw report reply.
func ParseReport(content string) (*Report, error) {
	var r Report
	if err := decodePayload(content, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
