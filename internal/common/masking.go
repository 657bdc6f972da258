package common

import (
	"regexp"
	"strings"
)

const maskedValue = "***MASKED***"

// sensitiveKeys are attribute keys whose values are never written to logs.
// Matching is case-insensitive and ignores separators ("-" vs "_").
var sensitiveKeys = map[string]struct{}{
	"password":      {},
	"passwd":        {},
	"pwd":           {},
	"secret":        {},
	"client_secret": {},
	"token":         {},
	"access_token":  {},
	"auth_token":    {},
	"api_key":       {},
	"apikey":        {},
	"authorization": {},
}

// headerValueRe matches Authorization-style header values embedded in strings.
var headerValueRe = regexp.MustCompile(`(?i)(Bearer|Basic)\s+[A-Za-z0-9\-._~+/]+=*`)

// Masker hides credentials and tokens in log attributes.
type Masker struct {
	enabled bool
}

// NewMasker creates a masker with masking enabled.
func NewMasker() *Masker {
	return &Masker{enabled: true}
}

// SetEnabled toggles masking.
func (m *Masker) SetEnabled(enabled bool) {
	m.enabled = enabled
}

// IsEnabled reports whether masking is active.
func (m *Masker) IsEnabled() bool {
	return m != nil && m.enabled
}

// IsSensitiveKey reports whether an attribute key holds secret material.
func IsSensitiveKey(key string) bool {
	k := strings.ToLower(strings.ReplaceAll(key, "-", "_"))
	_, ok := sensitiveKeys[k]
	return ok
}

// MaskValue returns the value to log for the given attribute. Sensitive keys
// are replaced wholesale; string values additionally have embedded
// Bearer/Basic credentials scrubbed.
func (m *Masker) MaskValue(key string, value any) any {
	if !m.IsEnabled() {
		return value
	}
	if IsSensitiveKey(key) {
		return maskedValue
	}
	if s, ok := value.(string); ok && headerValueRe.MatchString(s) {
		return headerValueRe.ReplaceAllString(s, "${1} "+maskedValue)
	}
	return value
}

// Global masking switch mirrored by handlers created before configuration.
var globalMasking = true

// EnableMasking sets the process-wide masking default.
func EnableMasking(enabled bool) {
	globalMasking = enabled
}

// MaskingEnabled returns the process-wide masking default.
func MaskingEnabled() bool {
	return globalMasking
}
