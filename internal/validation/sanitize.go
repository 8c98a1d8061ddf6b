package validation

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"

	apperrors "github.com/julianstephens/habitchain/internal/errors"
)

var strictPolicy = bluemonday.StrictPolicy()

// suspiciousPatterns catch script, event-handler and URI-scheme payloads that
// survive as plain text after sanitizing.
var suspiciousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)<script`),
	regexp.MustCompile(`(?i)javascript\s*:`),
	regexp.MustCompile(`(?i)on\w+\s*=`),
	regexp.MustCompile(`(?i)data:text/html`),
	regexp.MustCompile(`(?i)vbscript\s*:`),
	regexp.MustCompile(`(?i)<iframe`),
	regexp.MustCompile(`(?i)<embed`),
	regexp.MustCompile(`(?i)<object`),
	regexp.MustCompile(`(?i)expression\s*\(`),
	regexp.MustCompile(`(?i)url\s*\(`),
}

// SanitizeInput strips all markup from text, returning plain text truncated
// to maxLen runes with surrounding whitespace removed. Entities are decoded
// and the result re-sanitized until it stops changing, so the output is a
// fixed point: sanitizing it again returns it unchanged.
func SanitizeInput(text string, maxLen int) string {
	out := text
	// every changing pass decodes an entity or drops markup, so the loop ends
	// well before the bound
	for i := 0; i <= len(text); i++ {
		next := strings.TrimSpace(truncate(html.UnescapeString(strictPolicy.Sanitize(out)), maxLen))
		if next == out {
			break
		}
		out = next
	}
	return out
}

func truncate(s string, maxLen int) string {
	if maxLen <= 0 || utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen])
}

// ValidateInput rejects text that is empty, longer than maxLen runes, or
// matches a suspicious pattern.
func ValidateInput(text string, maxLen int) error {
	if strings.TrimSpace(text) == "" {
		return apperrors.Validationf("value cannot be empty")
	}
	if n := utf8.RuneCountInString(text); n > maxLen {
		return apperrors.Validationf("value is %d characters, maximum is %d", n, maxLen)
	}
	for _, p := range suspiciousPatterns {
		if p.MatchString(text) {
			return apperrors.Validationf("value contains disallowed content")
		}
	}
	return nil
}

// ValidateOptional is ValidateInput for fields that may be left blank.
func ValidateOptional(text string, maxLen int) error {
	if text == "" {
		return nil
	}
	return ValidateInput(text, maxLen)
}

// CleanField sanitizes text and validates the result. Field names the
// offending field in the error.
func CleanField(field, text string, maxLen int, required bool) (string, error) {
	clean := SanitizeInput(text, maxLen)
	var err error
	if required {
		err = ValidateInput(clean, maxLen)
	} else {
		err = ValidateOptional(clean, maxLen)
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", field, err)
	}
	return clean, nil
}
