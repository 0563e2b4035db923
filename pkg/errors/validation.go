package errors

import (
	"math"
	"regexp"
	"strings"
	"unicode"
)

// mimeRegex matches "type/subtype" with RFC 6838 restricted names, plus an
// optional parameter section.
var mimeRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9!#$&^_.+-]{0,126}/[A-Za-z0-9][A-Za-z0-9!#$&^_.+-]{0,126}(;.*)?$`)

// ValidateMIME validates a MIME type used as a format key.
//
// Validation rules:
//   - Cannot be empty
//   - No control characters or whitespace
//   - Must have the form type/subtype
func ValidateMIME(mime string) error {
	if mime == "" {
		return New(ErrCodeInvalidFormat, "MIME type cannot be empty")
	}
	for _, r := range mime {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidFormat, "MIME type %q contains whitespace or control characters", mime)
		}
	}
	if !mimeRegex.MatchString(mime) {
		return New(ErrCodeInvalidFormat, "invalid MIME type %q (want type/subtype)", mime)
	}
	return nil
}

// handlerNameRegex matches normalized handler names.
var handlerNameRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)

// ValidateHandlerName validates a handler name after normalization
// (lowercase, trimmed).
func ValidateHandlerName(name string) error {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return New(ErrCodeInvalidRegistry, "handler name cannot be empty")
	}
	if len(name) > 64 {
		return New(ErrCodeInvalidRegistry, "handler name too long (max 64 characters)")
	}
	if !handlerNameRegex.MatchString(name) {
		return New(ErrCodeInvalidRegistry, "invalid handler name %q", name)
	}
	return nil
}

// ValidateCategory validates a format category such as "image".
func ValidateCategory(category string) error {
	if category == "" {
		return New(ErrCodeInvalidRule, "category cannot be empty")
	}
	if strings.TrimSpace(category) != category || strings.ContainsFunc(category, unicode.IsSpace) {
		return New(ErrCodeInvalidRule, "category %q contains whitespace", category)
	}
	return nil
}

// ValidateCost validates a rule cost: finite and non-negative.
func ValidateCost(cost float64) error {
	if math.IsNaN(cost) || math.IsInf(cost, 0) {
		return New(ErrCodeInvalidRule, "cost must be finite, got %v", cost)
	}
	if cost < 0 {
		return New(ErrCodeInvalidRule, "cost must not be negative, got %v", cost)
	}
	return nil
}
