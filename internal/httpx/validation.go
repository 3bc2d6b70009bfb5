package httpx

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var (
	// ErrValidationFailed is returned when struct validation fails.
	ErrValidationFailed = errors.New("validation failed")
	// ErrFieldRequired is returned when a required field is missing.
	ErrFieldRequired = errors.New("field is required")
	// ErrFieldMaxLength is returned when a field exceeds maximum length.
	ErrFieldMaxLength = errors.New("field exceeds maximum length")
	// ErrBodyParseFailed is returned when request body parsing fails.
	ErrBodyParseFailed = errors.New("failed to parse request body")
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator. Field names in errors follow the
// json tags so messages match the request payload.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// ValidateStruct validates payload tags and reports the first violation.
func ValidateStruct(payload any) error {
	if err := Validator().Struct(payload); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return formatFieldError(fieldErrs[0])
		}
		return fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}
	return nil
}

// ParseBody decodes the request body into payload and validates it, returning
// a 400 fiber error on any failure.
func ParseBody(c *fiber.Ctx, payload any) error {
	if len(c.Body()) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, ErrBodyParseFailed.Error()+": empty body")
	}
	if err := c.BodyParser(payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("%s: %s", ErrBodyParseFailed, err))
	}
	if err := ValidateStruct(payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

func formatFieldError(fe validator.FieldError) error {
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%w: '%s'", ErrFieldRequired, fe.Field())
	case "max":
		return fmt.Errorf("%w: '%s' must be at most %s", ErrFieldMaxLength, fe.Field(), fe.Param())
	default:
		return fmt.Errorf("%w: '%s' failed '%s' check", ErrValidationFailed, fe.Field(), fe.Tag())
	}
}
