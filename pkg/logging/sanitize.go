package logging

import "strings"

// SensitiveFieldNames is the canonical vocabulary of header/field names that
// must never reach a structured log line in the clear.
var SensitiveFieldNames = []string{"password", "token", "api_key", "authorization", "cookie", "secret"}

const redactedValue = "***REDACTED***"

// IsSensitiveFieldName reports whether name (case-insensitive, ignoring
// separators) matches one of SensitiveFieldNames.
func IsSensitiveFieldName(name string) bool {
	normalized := strings.ToLower(strings.NewReplacer("-", "", "_", "", " ", "").Replace(name))
	for _, sensitive := range SensitiveFieldNames {
		if strings.Contains(normalized, strings.ReplaceAll(sensitive, "_", "")) {
			return true
		}
	}
	return false
}

// RedactHeaders returns a copy of headers with sensitive values replaced,
// safe to pass straight to a slog attribute.
func RedactHeaders(headers map[string]string) map[string]string {
	if headers == nil {
		return nil
	}
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		if IsSensitiveFieldName(k) {
			out[k] = redactedValue
		} else {
			out[k] = v
		}
	}
	return out
}
