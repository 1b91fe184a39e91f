package accounts

import (
	"errors"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
)

var (
	hasUpper = regexp.MustCompile(`[A-Z]`)
	hasLower = regexp.MustCompile(`[a-z]`)
	hasDigit = regexp.MustCompile(`\d`)
)

// PasswordPolicyRules is the strength policy applied to every new password:
// 8 to 12 characters with at least one uppercase letter, one lowercase
// letter, and one digit.
func PasswordPolicyRules() []validation.Rule {
	return []validation.Rule{
		validation.Required.Error("password is required"),
		validation.Length(8, 12).Error("password must be 8 to 12 characters"),
		validation.Match(hasUpper).Error("password must contain an uppercase letter"),
		validation.Match(hasLower).Error("password must contain a lowercase letter"),
		validation.Match(hasDigit).Error("password must contain a digit"),
	}
}

// ValidateStringEquals will check that both values match
func ValidateStringEquals(str string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s != str {
			return errors.New("values must match")
		}
		return nil
	}
}
