package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// MaxJSONBodyBytes caps JSON request bodies.
const MaxJSONBodyBytes = 1 << 20

// ErrInvalidJSON is returned for bodies that are not a single JSON value of the expected shape.
var ErrInvalidJSON = errors.New("invalid JSON body")

// Global validator instance for reuse
var validate = validator.New()

// DecodeJSON decodes the request body into the given struct.
func DecodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxJSONBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return nil
}

// DecodePatch decodes a JSON object body into v and returns the keys it
// contained, so callers can reject fields outside an allowed set before
// any write happens. Type mismatches (e.g. a string where a bool is expected)
// fail the decode.
func DecodePatch(r *http.Request, v interface{}) ([]string, error) {
	var raw map[string]json.RawMessage
	if err := DecodeJSON(r, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: expected an object", ErrInvalidJSON)
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}

	body, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return keys, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return keys, nil
}

// ValidateRequest validates the given struct using the validator package.
func ValidateRequest(v interface{}) error {
	if validator, ok := v.(interface{ Validate() error }); ok {
		return validator.Validate()
	}
	return validate.Struct(v)
}
