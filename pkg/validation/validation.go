// Package validation configures the request validator shared by the services.
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

var regNoPattern = regexp.MustCompile(`^[A-Za-z]{2,3}\d{3,5}$`)

// Validator bundles a validator instance with its English translator.
type Validator struct {
	*validator.Validate
	trans ut.Translator
}

// New builds a validator that reports JSON field names and knows the
// record-specific tags regno and coursecode.
func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("regno", func(fl validator.FieldLevel) bool {
		return IsRegNo(fl.Field().String())
	})
	_ = v.RegisterValidation("coursecode", func(fl validator.FieldLevel) bool {
		return IsCourseCode(fl.Field().String())
	})

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	_ = enTranslations.RegisterDefaultTranslations(v, trans)
	registerMessage(v, trans, "regno", "{0} must be 2-3 letters followed by 3-5 digits")
	registerMessage(v, trans, "coursecode", "{0} must be letters followed by a course number")

	return &Validator{Validate: v, trans: trans}
}

// Translate flattens validation failures into field -> message pairs.
func (v *Validator) Translate(err error) map[string]string {
	fields := make(map[string]string)
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			fields[fe.Field()] = fe.Translate(v.trans)
		}
		return fields
	}
	if err != nil {
		fields["detail"] = err.Error()
	}
	return fields
}

// IsRegNo reports whether raw is a registration number such as CS1001.
func IsRegNo(raw string) bool {
	return regNoPattern.MatchString(raw)
}

// IsCourseCode performs the same letters-then-digits check as course code parsing.
func IsCourseCode(raw string) bool {
	code := strings.TrimSpace(raw)
	split := strings.IndexFunc(code, func(r rune) bool { return !unicode.IsLetter(r) })
	if split <= 0 {
		return false
	}
	for _, r := range code[split:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func registerMessage(v *validator.Validate, trans ut.Translator, tag, text string) {
	_ = v.RegisterTranslation(tag, trans, func(t ut.Translator) error {
		return t.Add(tag, text, true)
	}, func(t ut.Translator, fe validator.FieldError) string {
		msg, _ := t.T(tag, fe.Field())
		return msg
	})
}
