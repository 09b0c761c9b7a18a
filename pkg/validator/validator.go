package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	playground "github.com/go-playground/validator/v10"
)

const (
	maxFileNameLen    = 255
	asciiControlStart = 32
	asciiDelete       = 127

	errFileNameEmptyFmt        = "file name cannot be empty"
	errFileNameMaxLengthFmt    = "file name must not exceed %d characters"
	errFileNamePathSepFmt      = "file name cannot contain path separators"
	errFileNameControlCharsFmt = "file name cannot contain control characters"
	errFieldRuleFmt            = "%s: %s"
	errFieldRuleParamFmt       = "%s: %s=%s"
)

// Validator adapts go-playground/validator to echo's Validator interface.
type Validator struct {
	v *playground.Validate
}

func New() *Validator {
	v := playground.New(playground.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	return &Validator{v: v}
}

// Validate returns the first failing field as "<json name>: <rule>".
func (cv *Validator) Validate(i interface{}) error {
	return fieldError(cv.v.Struct(i), "")
}

// Var checks a single value against validate tags, reporting it as field.
func (cv *Validator) Var(field string, value interface{}, tag string) error {
	return fieldError(cv.v.Var(value, tag), field)
}

func fieldError(err error, field string) error {
	if err == nil {
		return nil
	}

	var verrs playground.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		name := fe.Field()
		if field != "" {
			name = field
		}
		if fe.Param() != "" {
			return fmt.Errorf(errFieldRuleParamFmt, name, fe.Tag(), fe.Param())
		}
		return fmt.Errorf(errFieldRuleFmt, name, fe.Tag())
	}

	return err
}

// FileName rejects names that could escape the object key prefix.
func FileName(name string) error {
	if name == "" {
		return fmt.Errorf(errFileNameEmptyFmt)
	}

	if len(name) > maxFileNameLen {
		return fmt.Errorf(errFileNameMaxLengthFmt, maxFileNameLen)
	}

	if strings.Contains(name, "..") || strings.Contains(name, "/") || strings.Contains(name, "\\") {
		return fmt.Errorf(errFileNamePathSepFmt)
	}

	for _, char := range name {
		if char < asciiControlStart || char == asciiDelete {
			return fmt.Errorf(errFileNameControlCharsFmt)
		}
	}

	return nil
}
