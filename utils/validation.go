package utils

import (
	"regexp"
	"sort"
	"strings"
)

var (
	emailPattern   = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	numericPattern = regexp.MustCompile(`^[0-9]+$`)
	phonePattern   = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)
)

// IsValidEmail checks the basic local@domain.tld shape
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// IsNumeric reports whether s is one or more ASCII digits
func IsNumeric(s string) bool {
	return numericPattern.MatchString(s)
}

// ValidatePhone checks if a phone number is in a valid international format
func ValidatePhone(phone string) bool {
	return phonePattern.MatchString(NormalizePhone(phone))
}

// NormalizePhone strips spaces, dashes and parentheses
func NormalizePhone(phone string) string {
	return strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(phone)
}

// MissingFields returns the sorted names of fields whose trimmed value is empty
func MissingFields(fields map[string]string) []string {
	var missing []string
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}
