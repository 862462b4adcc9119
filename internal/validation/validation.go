// Package validation validates and normalises user-supplied form input.
//
// Validators never panic or return errors: they report a Result. Sanitizers
// never reject input; they only normalise it.
package validation

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// DefaultPasswordMinLength is the minimum password length when none is given.
const DefaultPasswordMinLength = 8

// maxEmailLength is the RFC 5321 path limit.
const maxEmailLength = 254

var (
	emailPattern  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	namePattern   = regexp.MustCompile(`[<>{}\[\]\\/]`)
	usZipPattern  = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
	ukPostPattern = regexp.MustCompile(`(?i)^[A-Z]{1,2}\d{1,2}[A-Z]?\s?\d[A-Z]{2}$`)
	phoneStripper = regexp.MustCompile(`[\s\-()]`)
	phonePattern  = regexp.MustCompile(`^\+?\d{10,15}$`)
)

// Result is the outcome of a single validation.
type Result struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

func ok() Result {
	return Result{Valid: true}
}

func fail(msg string) Result {
	return Result{Valid: false, Error: msg}
}

func length(s string) int {
	return utf8.RuneCountInString(s)
}

// ValidateEmail checks that email is present, not too long and shaped like
// local@domain.tld once surrounding whitespace is removed.
func ValidateEmail(email string) Result {
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return fail("Email is required")
	}
	if length(email) > maxEmailLength {
		return fail("Email address is too long")
	}
	if !emailPattern.MatchString(trimmed) {
		return fail("Please enter a valid email address")
	}
	return ok()
}

// ValidatePassword checks presence and minimum length. A minLength of zero or
// less uses DefaultPasswordMinLength.
func ValidatePassword(password string, minLength int) Result {
	if minLength <= 0 {
		minLength = DefaultPasswordMinLength
	}
	if strings.TrimSpace(password) == "" {
		return fail("Password is required")
	}
	if length(password) < minLength {
		return fail(fmt.Sprintf("Password must be at least %d characters long", minLength))
	}
	return ok()
}

// ValidateName checks a person name. fieldName is used in messages and
// defaults to "Name".
func ValidateName(name, fieldName string) Result {
	if fieldName == "" {
		fieldName = "Name"
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fail(fieldName + " is required")
	}
	if length(trimmed) < 2 {
		return fail(fieldName + " must be at least 2 characters long")
	}
	if length(trimmed) > 100 {
		return fail(fieldName + " is too long")
	}
	if namePattern.MatchString(trimmed) {
		return fail(fieldName + " contains invalid characters")
	}
	return ok()
}

// ValidateAddress checks a street address.
func ValidateAddress(address string) Result {
	trimmed := strings.TrimSpace(address)
	if trimmed == "" {
		return fail("Address is required")
	}
	if length(trimmed) < 5 {
		return fail("Address must be at least 5 characters long")
	}
	if length(trimmed) > 200 {
		return fail("Address is too long")
	}
	return ok()
}

// ValidateCity checks a city name.
func ValidateCity(city string) Result {
	trimmed := strings.TrimSpace(city)
	if trimmed == "" {
		return fail("City is required")
	}
	if length(trimmed) < 2 {
		return fail("City must be at least 2 characters long")
	}
	if length(trimmed) > 100 {
		return fail("City name is too long")
	}
	return ok()
}

// ValidateZipCode checks a postal code for the given country. US and UK codes
// are pattern-checked; every region must be 3 to 20 characters long. An empty
// country means US.
func ValidateZipCode(zipCode, country string) Result {
	if country == "" {
		country = "US"
	}
	trimmed := strings.TrimSpace(zipCode)
	if trimmed == "" {
		return fail("ZIP code is required")
	}

	switch strings.ToUpper(country) {
	case "US":
		if !usZipPattern.MatchString(trimmed) {
			return fail("Please enter a valid US ZIP code (e.g., 12345 or 12345-6789)")
		}
	case "UK", "GB":
		if !ukPostPattern.MatchString(trimmed) {
			return fail("Please enter a valid UK postcode")
		}
	}

	if length(trimmed) < 3 || length(trimmed) > 20 {
		return fail("ZIP code must be between 3 and 20 characters")
	}
	return ok()
}

// ValidatePhone accepts an empty value; otherwise 10 to 15 digits with an
// optional leading + once spaces, parentheses and hyphens are removed.
func ValidatePhone(phone string) Result {
	if strings.TrimSpace(phone) == "" {
		return ok()
	}
	cleaned := phoneStripper.ReplaceAllString(phone, "")
	if !phonePattern.MatchString(cleaned) {
		return fail("Please enter a valid phone number")
	}
	return ok()
}

// ValidateNumber parses value as a float and checks the optional bounds.
func ValidateNumber(value string, min, max *float64) Result {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fail("This field is required")
	}
	num, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(num) {
		return fail("Please enter a valid number")
	}
	if min != nil && num < *min {
		return fail(fmt.Sprintf("Value must be at least %s", strconv.FormatFloat(*min, 'f', -1, 64)))
	}
	if max != nil && num > *max {
		return fail(fmt.Sprintf("Value must be at most %s", strconv.FormatFloat(*max, 'f', -1, 64)))
	}
	return ok()
}
