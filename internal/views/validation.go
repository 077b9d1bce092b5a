package views

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

var fieldLabels = map[string]string{
	"identifier":      "Email or username",
	"username":        "Username",
	"email":           "Email",
	"password":        "Password",
	"title":           "Title",
	"author":          "Author",
	"category":        "Category",
	"year":            "Year",
	"purchasePrice":   "Purchase price",
	"rentTwoWeeks":    "Two-week rental price",
	"rentOneMonth":    "One-month rental price",
	"rentThreeMonths": "Three-month rental price",
}

func fieldLabel(field string) string {
	if label, ok := fieldLabels[field]; ok {
		return label
	}
	return field
}

// firstViolation turns the first validator failure into a form message.
func firstViolation(err error) (string, bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "", false
	}
	fe := verrs[0]
	label := fieldLabel(fe.Field())
	switch fe.Tag() {
	case "required":
		return label + " is required", true
	case "email":
		return label + " must be a valid email address", true
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", label, fe.Param()), true
		}
		return fmt.Sprintf("%s must be at most %s", label, fe.Param()), true
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", label, fe.Param()), true
	}
	return label + " is invalid", true
}
