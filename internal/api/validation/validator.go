package validation

import (
	"errors"
	"regexp"

	"github.com/geonix/geonix-web/internal/api/dto/common"

	"github.com/go-playground/validator/v10"
)

var contactEmailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// New returns a validator with the custom rules registered
func New() *validator.Validate {
	v := validator.New()
	RegisterValidators(v)
	return v
}

// RegisterValidators registers custom validators
func RegisterValidators(v *validator.Validate) {
	v.RegisterValidation("contactemail", validateContactEmail)
}

// validateContactEmail checks the loose address pattern the website uses
func validateContactEmail(fl validator.FieldLevel) bool {
	return IsValidEmail(fl.Field().String())
}

// IsValidEmail reports whether email looks like local@domain.tld
func IsValidEmail(email string) bool {
	return contactEmailRegex.MatchString(email)
}

// ValidationError represents a validation error
type ValidationError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
	Value string `json:"value"`
}

// FormatValidationError flattens validator errors for logging
func FormatValidationError(err error) []ValidationError {
	var out []ValidationError
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			out = append(out, ValidationError{
				Field: e.Field(),
				Tag:   e.Tag(),
				Value: e.Param(),
			})
		}
	}
	return out
}

// Rank of each contact error code; the lowest rank present is reported.
var codeRank = map[common.ErrorCode]int{
	common.ErrCodeMissingFields:  0,
	common.ErrCodeInvalidEmail:   1,
	common.ErrCodeFieldTooLong:   2,
	common.ErrCodeMessageTooLong: 3,
}

// ContactErrorCode maps a validation failure of a contact.ContactRequest to
// the single error code the website expects. Missing fields win over a bad
// email, which wins over length violations.
func ContactErrorCode(err error) common.ErrorCode {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return common.ErrCodeMissingFields
	}

	best := common.ErrorCode("")
	for _, e := range validationErrors {
		code := codeFor(e)
		if best == "" || codeRank[code] < codeRank[best] {
			best = code
		}
	}
	return best
}

func codeFor(e validator.FieldError) common.ErrorCode {
	switch e.Tag() {
	case "required":
		return common.ErrCodeMissingFields
	case "contactemail":
		return common.ErrCodeInvalidEmail
	case "max":
		if e.StructField() == "Message" {
			return common.ErrCodeMessageTooLong
		}
		return common.ErrCodeFieldTooLong
	default:
		return common.ErrCodeMissingFields
	}
}
