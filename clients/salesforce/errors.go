package salesforce

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

const (
	ErrorCodeInvalidSessionID = "INVALID_SESSION_ID"
	ErrorCodeInvalidField     = "INVALID_FIELD"
)

// ErrorDetail is one entry of a Salesforce error response
type ErrorDetail struct {
	Message   string   `json:"message"`
	ErrorCode string   `json:"errorCode"`
	Fields    []string `json:"fields"`
}

// APIError is a non-2xx response from Salesforce
type APIError struct {
	StatusCode int
	Errors     []ErrorDetail
}

func (e *APIError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("salesforce API error (status %d)", e.StatusCode)
	}
	messages := make([]string, 0, len(e.Errors))
	for _, detail := range e.Errors {
		messages = append(messages, fmt.Sprintf("%s: %s", detail.ErrorCode, detail.Message))
	}
	return fmt.Sprintf("salesforce API error (status %d): %s", e.StatusCode, strings.Join(messages, "; "))
}

// HasErrorCode reports whether any error detail carries the given code
func (e *APIError) HasErrorCode(code string) bool {
	for _, detail := range e.Errors {
		if strings.EqualFold(detail.ErrorCode, code) {
			return true
		}
	}
	return false
}

// parseAPIError decodes the error shapes Salesforce returns: an array of
// {message, errorCode, fields}, a single such object, or an OAuth {error, error_description}.
func parseAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode}
	parsed := gjson.ParseBytes(body)

	switch {
	case parsed.IsArray():
		parsed.ForEach(func(_, value gjson.Result) bool {
			apiErr.Errors = append(apiErr.Errors, errorDetailFrom(value))
			return true
		})
	case parsed.Get("errorCode").Exists():
		apiErr.Errors = append(apiErr.Errors, errorDetailFrom(parsed))
	case parsed.Get("error").Exists():
		apiErr.Errors = append(apiErr.Errors, ErrorDetail{
			ErrorCode: parsed.Get("error").String(),
			Message:   parsed.Get("error_description").String(),
		})
	default:
		message := strings.TrimSpace(string(body))
		if len(message) > 200 {
			message = message[:200]
		}
		if message == "" {
			message = http.StatusText(statusCode)
		}
		apiErr.Errors = append(apiErr.Errors, ErrorDetail{ErrorCode: "UNKNOWN", Message: message})
	}

	return apiErr
}

func errorDetailFrom(value gjson.Result) ErrorDetail {
	detail := ErrorDetail{
		Message:   value.Get("message").String(),
		ErrorCode: value.Get("errorCode").String(),
	}
	for _, field := range value.Get("fields").Array() {
		detail.Fields = append(detail.Fields, field.String())
	}
	return detail
}

// IsSessionExpired reports whether err means the access token is no longer valid
func IsSessionExpired(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == http.StatusUnauthorized || apiErr.HasErrorCode(ErrorCodeInvalidSessionID) {
			return true
		}
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "invalid_session_id") ||
		strings.Contains(message, "session expired or invalid")
}

// IsInvalidField reports whether err means a referenced field does not exist in the org
func IsInvalidField(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.HasErrorCode(ErrorCodeInvalidField) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such column")
}
