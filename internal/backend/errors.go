package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrUnauthorized is matched with errors.Is when the backend rejects the
// session token. The transport layer never navigates; the session middleware
// owns the forced logout and redirect.
var ErrUnauthorized = errors.New("backend: unauthorized")

// APIError is a backend-declared failure: validation, business-rule conflict,
// missing resource or auth rejection, with the structured payload preserved.
type APIError struct {
	StatusCode int
	Payload    map[string]interface{}
	Raw        string
}

func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode: status,
		Raw:        strings.TrimSpace(string(body)),
	}
	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err == nil {
		apiErr.Payload = payload
	}
	return apiErr
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Message())
}

// Is lets errors.Is(err, ErrUnauthorized) match any 401 from the backend
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// Message extracts a human-readable message from the structured payload,
// preferring message, then error, then detail, then non_field_errors joined,
// falling back to the raw body.
func (e *APIError) Message() string {
	for _, key := range []string{"message", "error", "detail"} {
		if v, ok := e.Payload[key]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	if v, ok := e.Payload["non_field_errors"]; ok {
		if joined := joinStrings(v); joined != "" {
			return joined
		}
	}
	if e.Raw != "" {
		return e.Raw
	}
	return http.StatusText(e.StatusCode)
}

// FieldDetails returns field-level validation errors when the backend
// supplied them, each value joined into readable text.
func (e *APIError) FieldDetails() map[string]string {
	details, ok := e.Payload["details"].(map[string]interface{})
	if !ok {
		// DRF-style payloads put field arrays at the top level
		details = e.Payload
	}

	out := make(map[string]string)
	for field, v := range details {
		switch field {
		case "message", "error", "detail", "non_field_errors", "status":
			continue
		}
		if joined := joinStrings(v); joined != "" {
			out[field] = joined
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Detail returns a single string field from the payload, e.g. the
// assigned_to_name of an assignment conflict.
func (e *APIError) Detail(key string) string {
	if v, ok := e.Payload[key].(string); ok {
		return v
	}
	return ""
}

// IsNotFound reports whether the backend answered 404
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsConflict reports whether the backend signalled a role or assignment
// conflict (403)
func (e *APIError) IsConflict() bool {
	return e.StatusCode == http.StatusForbidden
}

func joinStrings(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case []interface{}:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	}
	return ""
}

// AsAPIError unwraps err into an *APIError when the failure was declared by
// the backend rather than the transport.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
