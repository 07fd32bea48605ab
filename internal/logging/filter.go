// Package logging provides log redaction for the U-AIP scoping
// assistant. Interview transcripts may carry credentials or internal
// hostnames pasted by the user; the filter masks them before anything
// reaches a log file.
package logging

import (
	"io"
	"regexp"
	"strings"
)

// redactedValue replaces any value identified as sensitive.
const redactedValue = "[REDACTED]"

// sensitivePatterns match secrets embedded in free-form text.
//
//nolint:gochecknoglobals // read-only pattern table
var sensitivePatterns = []*regexp.Regexp{
	// API keys and tokens with recognizable prefixes.
	regexp.MustCompile(`\bsk-[A-Za-z0-9_-]{16,}\b`),
	regexp.MustCompile(`\bghp_[A-Za-z0-9]{36}\b`),
	regexp.MustCompile(`\bgithub_pat_[A-Za-z0-9_]{22,}\b`),
	regexp.MustCompile(`\bxox[baprs]-[A-Za-z0-9-]{10,}\b`),
	regexp.MustCompile(`\bAKIA[0-9A-Z]{16}\b`),
	// Bearer headers.
	regexp.MustCompile(`(?i)\bbearer\s+[A-Za-z0-9._~+/=-]{16,}`),
	// key=value assignments for credential-ish keys. The value class
	// stops at quotes so a match inside a JSON field does not swallow
	// the rest of the log line.
	regexp.MustCompile(`(?i)\b(api[_-]?key|token|secret|password|passwd|credential)s?\s*[:=]\s*[^"'\s]+`),
	// Connection strings with inline credentials.
	regexp.MustCompile(`(?i)\b[a-z][a-z0-9+.-]*://[^/\s:@]+:[^@\s]+@`),
}

// sensitiveFieldNames are log field keys whose values are always
// masked regardless of content.
//
//nolint:gochecknoglobals // read-only field table
var sensitiveFieldNames = map[string]struct{}{
	"api_key":       {},
	"token":         {},
	"secret":        {},
	"password":      {},
	"credential":    {},
	"authorization": {},
}

// FilterSensitiveValue masks secret-shaped substrings in s.
func FilterSensitiveValue(s string) string {
	for _, pattern := range sensitivePatterns {
		s = pattern.ReplaceAllString(s, redactedValue)
	}
	return s
}

// RedactIfSensitive returns redactedValue when the field name itself
// marks the value as secret, otherwise filters the value's content.
func RedactIfSensitive(field, value string) string {
	if _, ok := sensitiveFieldNames[strings.ToLower(field)]; ok {
		return redactedValue
	}
	return FilterSensitiveValue(value)
}

// FilteringWriter wraps an io.Writer and masks sensitive content in
// every write. Used for the rotated log file so secrets never land on
// disk.
type FilteringWriter struct {
	W io.Writer
}

// NewFilteringWriter wraps w with sensitive-data filtering.
func NewFilteringWriter(w io.Writer) *FilteringWriter {
	return &FilteringWriter{W: w}
}

// Write implements io.Writer. The returned length is the original
// input length so wrapped writers do not report short writes.
func (fw *FilteringWriter) Write(p []byte) (int, error) {
	filtered := FilterSensitiveValue(string(p))
	if _, err := fw.W.Write([]byte(filtered)); err != nil {
		return 0, err
	}
	return len(p), nil
}
