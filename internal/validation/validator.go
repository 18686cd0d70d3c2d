// Package validation holds the shared go-playground validator and turns its
// field errors into validation AppErrors keyed by JSON field name.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/pageza/foodgram/backend/internal/models"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// usernamePattern allows letters, digits and @.+-_ as account usernames.
var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// GetValidator returns the singleton validator instance.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		_ = validate.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return usernamePattern.MatchString(fl.Field().String())
		})
		_ = validate.RegisterValidation("hexcolor", func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			return len(s) == 7 && strings.HasPrefix(s, "#") && strings.Trim(s[1:], "0123456789abcdefABCDEF") == ""
		})
	})
	return validate
}

// Struct validates s and returns nil or a validation *models.AppError.
func Struct(s interface{}) error {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return models.NewValidationError(err.Error())
	}

	appErr := &models.AppError{
		Kind:    models.KindValidation,
		Message: "invalid input",
		Fields:  make(map[string][]string, len(validationErrs)),
	}
	for _, fe := range validationErrs {
		field := fieldPath(fe)
		appErr.Fields[field] = append(appErr.Fields[field], translateError(fe))
	}
	return appErr
}

// fieldPath drops the root struct name: "RecipeRequest.ingredients[0].amount" -> "ingredients[0].amount".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

var errorMessageTemplates = map[string]string{
	"required": "this field is required",
	"email":    "enter a valid email address",
	"username": "letters, digits and @/./+/-/_ only",
	"hexcolor": "must be a color like #49B64E",
}

var errorMessageWithParam = map[string]string{
	"gte": "must be greater than or equal to %s",
	"lte": "must be less than or equal to %s",
	"gt":  "must be greater than %s",
	"lt":  "must be less than %s",
}

func translateError(fe validator.FieldError) string {
	if msg, ok := errorMessageTemplates[fe.Tag()]; ok {
		return msg
	}
	if template, ok := errorMessageWithParam[fe.Tag()]; ok {
		return fmt.Sprintf(template, fe.Param())
	}

	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "min":
		if isString {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
