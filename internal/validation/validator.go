package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 \-]{6,18}[0-9]$`)

// stringRules are the clinic's custom tags. Each applies to string fields only.
var stringRules = map[string]func(string) bool{
	"date": func(s string) bool {
		_, err := time.Parse(time.DateOnly, s)
		return err == nil
	},
	"clock": func(s string) bool {
		_, err := time.Parse("15:04", s)
		return err == nil && len(s) == len("15:04")
	},
	"phone": IsPhone,
}

type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)
	for tag, rule := range stringRules {
		rule := rule
		v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			if fl.Field().Kind() != reflect.String {
				return false
			}
			return rule(fl.Field().String())
		})
	}
	return &Validator{v: v}
}

// jsonFieldName reports fields by their wire name so error details match the
// request body. Untagged fields keep their Go name.
func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

func (v *Validator) Struct(s interface{}) error {
	return v.v.Struct(s)
}

func (v *Validator) ValidationErrors(err error) validator.ValidationErrors {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return ve
	}
	return nil
}

// IsPhone accepts numbers written with optional +, spaces and dashes as long
// as at least ten digits remain.
func IsPhone(value string) bool {
	value = strings.TrimSpace(value)
	return phonePattern.MatchString(value) && len(Digits(value)) >= 10
}

func Digits(value string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, value)
}
