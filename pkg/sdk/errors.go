package ragdex

import (
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/ragdex/internal/schema"
)

// APIError is a non-200 response from the server. Violations is
// populated for validation failures (HTTP 400 with code
// "validation_failed").
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Violations []schema.Violation
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("ragdex: %s (%d): %s", e.Code, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("ragdex: http %d", e.StatusCode)
}

func parseAPIError(status int, body []byte) error {
	apiErr := &APIError{StatusCode: status}

	var wire struct {
		Code       string             `json:"code"`
		Message    string             `json:"message"`
		Violations []schema.Violation `json:"violations"`
	}
	if err := json.Unmarshal(body, &wire); err == nil {
		apiErr.Code = wire.Code
		apiErr.Message = wire.Message
		apiErr.Violations = wire.Violations
	}
	return apiErr
}
