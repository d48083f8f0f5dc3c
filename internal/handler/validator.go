package handler

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/sumire/issuetracker/internal/domain"
)

// AppValidator wraps go-playground/validator for echo.
type AppValidator struct {
	validator *validator.Validate
}

// NewAppValidator creates a new AppValidator.
func NewAppValidator() *AppValidator {
	return &AppValidator{validator: validator.New()}
}

// Validate validates a struct using go-playground/validator tags. A failed
// "required" tag is reported as domain.ErrRequiredFieldsMissing.
func (v *AppValidator) Validate(i any) error {
	err := v.validator.Struct(i)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, fe := range validationErrors {
			if fe.Tag() == "required" {
				return fmt.Errorf("%w: %s", domain.ErrRequiredFieldsMissing, fe.Field())
			}
		}
		fe := validationErrors[0]
		return fmt.Errorf("%w: %s failed on '%s' validation", domain.ErrInvalidInput, fe.Field(), fe.Tag())
	}
	return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
}
