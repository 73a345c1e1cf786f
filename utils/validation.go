package utils

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Optional leading plus, first digit non-zero, at most 16 digits.
var phonePattern = regexp.MustCompile(`^\+?[1-9]\d{0,15}$`)

var validate = validator.New()

// ValidEmail checks s against the validator's address grammar.
func ValidEmail(s string) bool {
	return validate.Var(s, "required,email") == nil
}

func ValidPhone(s string) bool {
	return phonePattern.MatchString(s)
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
