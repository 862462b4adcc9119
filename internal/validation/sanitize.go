package validation

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	controlChars  = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)
	whitespaceRun = regexp.MustCompile(`\s+`)
	scriptBlock   = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script\s*>`)
	eventHandler  = regexp.MustCompile(`(?i)\s*\bon\w+\s*=\s*("[^"]*"|'[^']*')`)
	nonDigit      = regexp.MustCompile(`\D`)
)

// SanitizeString trims the input and removes null bytes and control
// characters other than tab, newline and carriage return.
func SanitizeString(input string) string {
	if input == "" {
		return ""
	}
	sanitized := strings.TrimSpace(input)
	sanitized = strings.ReplaceAll(sanitized, "\x00", "")
	return controlChars.ReplaceAllString(sanitized, "")
}

// SanitizeHTML strips <script> blocks and inline event handler attributes.
// It is meant for display of trusted-ish markup, not as a full HTML sanitizer.
func SanitizeHTML(html string) string {
	if html == "" {
		return ""
	}
	sanitized := scriptBlock.ReplaceAllString(html, "")
	return eventHandler.ReplaceAllString(sanitized, "")
}

// SanitizeEmail trims and lowercases an e-mail address.
func SanitizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SanitizeName collapses whitespace and title-cases every word.
func SanitizeName(name string) string {
	sanitized := whitespaceRun.ReplaceAllString(strings.TrimSpace(name), " ")
	if sanitized == "" {
		return ""
	}
	// cases.Caser is stateful, so one per call.
	return cases.Title(language.Und).String(sanitized)
}

// SanitizeAddress trims and collapses whitespace.
func SanitizeAddress(address string) string {
	return whitespaceRun.ReplaceAllString(strings.TrimSpace(address), " ")
}

// SanitizePhone keeps digits only, preserving a leading +.
func SanitizePhone(phone string) string {
	trimmed := strings.TrimSpace(phone)
	if strings.HasPrefix(trimmed, "+") {
		return "+" + nonDigit.ReplaceAllString(trimmed[1:], "")
	}
	return nonDigit.ReplaceAllString(trimmed, "")
}
