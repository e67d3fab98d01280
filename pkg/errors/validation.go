package errors

import "unicode"

// MaxCorrelationIDLength bounds caller-supplied correlation ids.
// Ids are opaque tokens echoed back verbatim; the cap only protects
// logs and cache keys from pathological input.
const MaxCorrelationIDLength = 128

// ValidateCorrelationID validates a caller-supplied correlation id.
// Empty ids are allowed (the boundary generates one); non-empty ids
// must be printable and within MaxCorrelationIDLength.
func ValidateCorrelationID(id string) error {
	if id == "" {
		return nil
	}
	if len(id) > MaxCorrelationIDLength {
		return New(ErrCodeInvalidRequest, "correlation id too long (max %d characters)", MaxCorrelationIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidRequest, "correlation id contains control characters")
		}
	}
	return nil
}

// ValidateEventID validates an event identifier. Event ids must be
// non-empty, printable, and reasonably sized: they end up in layout
// results, conflict sets, DOT node names, and cache keys.
func ValidateEventID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidEvent, "event id cannot be empty")
	}
	if len(id) > 256 {
		return New(ErrCodeInvalidEvent, "event id too long (max 256 characters)")
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidEvent, "event id contains control characters")
		}
	}
	return nil
}
