package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSensitiveFieldName(t *testing.T) {
	cases := map[string]bool{
		"Authorization": true,
		"X-API-Key":     true,
		"api_key":       true,
		"Cookie":        true,
		"Set-Cookie":    true,
		"password":      true,
		"Content-Type":  false,
		"X-Request-ID":  false,
	}
	for name, want := range cases {
		assert.Equal(t, want, IsSensitiveFieldName(name), name)
	}
}

func TestRedactHeaders_RedactsOnlySensitiveValues(t *testing.T) {
	headers := map[string]string{
		"Authorization": "Bearer secret-token",
		"Content-Type":  "application/json",
	}
	redacted := RedactHeaders(headers)

	assert.Equal(t, redactedValue, redacted["Authorization"])
	assert.Equal(t, "application/json", redacted["Content-Type"])
}

func TestRedactHeaders_NilInputReturnsNil(t *testing.T) {
	assert.Nil(t, RedactHeaders(nil))
}
