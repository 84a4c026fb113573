// Package validation checks request bodies with go-playground/validator v10.
//
// Rules are evaluated one tag at a time rather than through struct tags, so
// a field breaking two rules (a short username with punctuation) reports both.
package validation

import (
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// dateLayouts are the calendar date formats accepted for birthdays.
var dateLayouts = []string{"2006-01-02", "2006/01/02"}

// GetValidator returns the singleton validator instance with the custom
// calendardate tag registered.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("calendardate", func(fl validator.FieldLevel) bool {
			_, err := ParseDate(fl.Field().String())
			return err == nil
		})
	})
	return validate
}

// ParseDate parses a birthday in one of the accepted layouts, as UTC midnight.
// Surrounding whitespace is not accepted.
func ParseDate(s string) (time.Time, error) {
	var err error
	for _, layout := range dateLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

// Rule is one check applied to one field.
type Rule struct {
	Field   string
	Tag     string
	Message string
	// Secret fields are reported without their value.
	Secret bool
}

// FieldError is a single failed rule, serialized into the 422 body.
type FieldError struct {
	Location string `json:"location"`
	Param    string `json:"param"`
	Value    string `json:"value,omitempty"`
	Msg      string `json:"msg"`
}

// RequestValidationError collects every failed rule of a request.
type RequestValidationError struct {
	errors []FieldError
}

// Errors returns the failed rules in rule order.
func (ve *RequestValidationError) Errors() []FieldError {
	return ve.errors
}

// Error joins every failed rule into one line.
func (ve *RequestValidationError) Error() string {
	if len(ve.errors) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(ve.errors))
	for i, e := range ve.errors {
		msgs[i] = e.Param + ": " + e.Msg
	}
	return strings.Join(msgs, "; ")
}

// UserRules apply to registration and profile update bodies.
var UserRules = []Rule{
	{Field: "username", Tag: "min=5", Message: "Username is required"},
	{Field: "username", Tag: "alphanum", Message: "Username contains non alphanumeric characters - not allowed."},
	{Field: "password", Tag: "required", Message: "Password is required", Secret: true},
	{Field: "email", Tag: "email", Message: "Email does not appear to be valid"},
	{Field: "birthday", Tag: "calendardate", Message: "Birthday does not appear to be valid"},
}

// ValidateFields runs every rule against values[rule.Field]. It returns nil
// when all rules pass.
func ValidateFields(values map[string]string, rules []Rule) *RequestValidationError {
	v := GetValidator()
	var failed []FieldError
	for _, r := range rules {
		value := values[r.Field]
		if err := v.Var(value, r.Tag); err != nil {
			fe := FieldError{Location: "body", Param: r.Field, Msg: r.Message}
			if !r.Secret {
				fe.Value = value
			}
			failed = append(failed, fe)
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return &RequestValidationError{errors: failed}
}
