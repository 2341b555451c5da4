package helper

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ValidationFieldErrors maps validator errors to json-ish field names.
// ok is false when err is not a validation error.
func ValidationFieldErrors(err error) (fields map[string][]string, ok bool) {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil, false
	}
	fields = make(map[string][]string, len(ve))
	for _, fe := range ve {
		name := toSnake(fe.Field())
		msg := fe.Tag()
		if p := fe.Param(); p != "" {
			msg += "=" + p
		}
		fields[name] = append(fields[name], msg)
	}
	return fields, true
}

// ValidationError answers 422 for validator errors and 400 for anything else.
func ValidationError(c *fiber.Ctx, err error) error {
	if fields, ok := ValidationFieldErrors(err); ok {
		return JsonValidationError(c, fields)
	}
	return JsonError(c, fiber.StatusBadRequest, "Invalid input")
}

// FromFiberError turns a *fiber.Error into the standard envelope, anything else into 500.
func FromFiberError(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return JsonError(c, fe.Code, fe.Message)
	}
	return JsonError(c, fiber.StatusInternalServerError, err.Error())
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
