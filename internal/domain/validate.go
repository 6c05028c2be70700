package domain

import (
	"errors"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

var fieldMessages = map[string]string{
	"customerName": "customer name is required",
	"primaryPhone": "primary phone is required",
	"address":      "address is required",
	"items":        "at least one item is required",
}

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// Validate checks the fields required before an invoice may be saved.
// It returns a *ValidationError naming every failing field, or nil.
func (i *Invoice) Validate() error {
	err := validate.Struct(i)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &ValidationError{}
	for _, fe := range verrs {
		name := lowerFirst(fe.StructField())
		msg, ok := fieldMessages[name]
		if !ok {
			msg = name + " is invalid"
		}
		out.Fields = append(out.Fields, FieldError{Field: name, Message: msg})
	}
	return out
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}
