package salesforce

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAPIError(t *testing.T) {
	t.Run("ErrorArray", func(t *testing.T) {
		apiErr := parseAPIError(400, []byte(`[{"message":"No such column 'Foo__c' on sobject of type Opportunity","errorCode":"INVALID_FIELD","fields":["Foo__c"]}]`))

		require.Len(t, apiErr.Errors, 1)
		assert.Equal(t, "INVALID_FIELD", apiErr.Errors[0].ErrorCode)
		assert.Equal(t, []string{"Foo__c"}, apiErr.Errors[0].Fields)
		assert.Contains(t, apiErr.Error(), "status 400")
	})

	t.Run("SingleObject", func(t *testing.T) {
		apiErr := parseAPIError(401, []byte(`{"message":"Session expired or invalid","errorCode":"INVALID_SESSION_ID"}`))

		require.Len(t, apiErr.Errors, 1)
		assert.True(t, apiErr.HasErrorCode(ErrorCodeInvalidSessionID))
	})

	t.Run("OAuthError", func(t *testing.T) {
		apiErr := parseAPIError(400, []byte(`{"error":"invalid_client","error_description":"invalid client credentials"}`))

		require.Len(t, apiErr.Errors, 1)
		assert.Equal(t, "invalid_client", apiErr.Errors[0].ErrorCode)
		assert.Equal(t, "invalid client credentials", apiErr.Errors[0].Message)
	})

	t.Run("NonJSONBody", func(t *testing.T) {
		apiErr := parseAPIError(503, []byte(""))

		require.Len(t, apiErr.Errors, 1)
		assert.Equal(t, "Service Unavailable", apiErr.Errors[0].Message)
	})
}

func TestIsSessionExpired(t *testing.T) {
	assert.False(t, IsSessionExpired(nil))
	assert.True(t, IsSessionExpired(&APIError{StatusCode: 401}))
	assert.True(t, IsSessionExpired(fmt.Errorf("query failed: %w", &APIError{
		StatusCode: 400,
		Errors:     []ErrorDetail{{ErrorCode: "INVALID_SESSION_ID", Message: "Session expired or invalid"}},
	})))
	assert.True(t, IsSessionExpired(fmt.Errorf("INVALID_SESSION_ID: Session expired or invalid")))
	assert.False(t, IsSessionExpired(&APIError{StatusCode: 400, Errors: []ErrorDetail{{ErrorCode: "MALFORMED_QUERY"}}}))
}

func TestIsInvalidField(t *testing.T) {
	assert.False(t, IsInvalidField(nil))
	assert.True(t, IsInvalidField(&APIError{StatusCode: 400, Errors: []ErrorDetail{{ErrorCode: "INVALID_FIELD"}}}))
	assert.True(t, IsInvalidField(fmt.Errorf("No such column 'Deployment_Type__c' on sobject of type Opportunity")))
	assert.False(t, IsInvalidField(&APIError{StatusCode: 400, Errors: []ErrorDetail{{ErrorCode: "REQUIRED_FIELD_MISSING"}}}))
}
