package llm

import (
	"errors"
	"fmt"
)

// ErrorType classifies a failed remote call into the conditions the UI
// distinguishes. Everything else collapses into ErrGeneric.
type ErrorType int

const (
	// ErrQuota means the provider rejected the call for exhausted quota.
	ErrQuota ErrorType = iota
	// ErrAuth means the credential was missing or invalid.
	ErrAuth
	// ErrModelNotFound means the requested model is not available.
	ErrModelNotFound
	// ErrEmptyResult means the call succeeded transport-wise but returned
	// no usable text.
	ErrEmptyResult
	// ErrGeneric covers every other provider or transport failure.
	ErrGeneric
)

func (t ErrorType) String() string {
	switch t {
	case ErrQuota:
		return "Quota"
	case ErrAuth:
		return "Auth"
	case ErrModelNotFound:
		return "ModelNotFound"
	case ErrEmptyResult:
		return "EmptyResult"
	default:
		return "Generic"
	}
}

// maxRawMessageLen bounds how much raw provider text reaches the UI.
const maxRawMessageLen = 220

// APIError is a classified remote-call failure carrying the user-facing
// message for the status line.
type APIError struct {
	Type    ErrorType
	Message string
	Status  int
	Cause   error
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Cause
}

// AsAPIError extracts an *APIError from err's chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// classifyError maps a failing HTTP status plus the provider's structured
// error object to the fixed user-facing messages.
func classifyError(status int, apiErr *Error, model string) *APIError {
	errType := ""
	errMessage := ""
	if apiErr != nil {
		errType = apiErr.Type
		errMessage = apiErr.Message
	}

	if status == 429 && errType == "insufficient_quota" {
		return &APIError{
			Type:    ErrQuota,
			Status:  status,
			Message: "OpenAI API quota exceeded. Add billing/credits in platform.openai.com, then retry.",
		}
	}

	if status == 401 || errType == "invalid_api_key" {
		return &APIError{
			Type:    ErrAuth,
			Status:  status,
			Message: "Invalid OpenAI API key. Check key in Settings.",
		}
	}

	if status == 404 || errType == "model_not_found" {
		return &APIError{
			Type:    ErrModelNotFound,
			Status:  status,
			Message: fmt.Sprintf("Model not available: %s", model),
		}
	}

	fallback := errMessage
	if fallback == "" {
		fallback = "Unknown API error"
	}
	return &APIError{
		Type:    ErrGeneric,
		Status:  status,
		Message: fmt.Sprintf("OpenAI API error %d: %s", status, truncate(fallback, maxRawMessageLen)),
	}
}

// newEmptyResultError reports a transport-successful call with no usable
// text. Treated identically to a remote-call error downstream.
func newEmptyResultError(what string) *APIError {
	return &APIError{
		Type:    ErrEmptyResult,
		Message: fmt.Sprintf("Empty %s response", what),
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
