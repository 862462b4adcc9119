package validation

import "sort"

// Rule validates the value of one form field.
type Rule func(value string) Result

// FormResult is the outcome of validating a whole form.
type FormResult struct {
	Valid  bool              `json:"valid"`
	Errors map[string]string `json:"errors"`
}

// ValidateFormData runs every rule against the matching value in data.
// Missing fields are validated as the empty string. All rules run, so the
// result carries one message per failing field.
func ValidateFormData(data map[string]string, rules map[string]Rule) FormResult {
	result := FormResult{Valid: true, Errors: make(map[string]string)}

	fields := make([]string, 0, len(rules))
	for field := range rules {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	for _, field := range fields {
		res := rules[field](data[field])
		if !res.Valid {
			result.Valid = false
			result.Errors[field] = res.Error
		}
	}

	return result
}

// NameRule adapts ValidateName to a Rule for the given field label.
func NameRule(fieldName string) Rule {
	return func(value string) Result {
		return ValidateName(value, fieldName)
	}
}

// ZipCodeRule adapts ValidateZipCode to a Rule for a fixed country.
func ZipCodeRule(country string) Rule {
	return func(value string) Result {
		return ValidateZipCode(value, country)
	}
}

// CheckoutRules returns the rules applied to the checkout form.
func CheckoutRules(country string) map[string]Rule {
	return map[string]Rule{
		"name":    NameRule("Name"),
		"email":   ValidateEmail,
		"phone":   ValidatePhone,
		"address": ValidateAddress,
		"city":    ValidateCity,
		"zipCode": ZipCodeRule(country),
	}
}

// ProfileRules returns the rules applied when a user saves a profile.
func ProfileRules() map[string]Rule {
	return map[string]Rule{
		"name":  NameRule("Name"),
		"email": ValidateEmail,
		"phone": ValidatePhone,
	}
}

// ContactRules returns the rules applied to the contact form.
func ContactRules() map[string]Rule {
	return map[string]Rule{
		"name":    NameRule("Name"),
		"email":   ValidateEmail,
		"subject": required("Subject"),
		"message": required("Message"),
	}
}

func required(fieldName string) Rule {
	return func(value string) Result {
		if SanitizeString(value) == "" {
			return fail(fieldName + " is required")
		}
		return ok()
	}
}
