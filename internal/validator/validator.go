package validator

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	ErrRequired     = "is required"
	ErrEmail        = "must be a valid email address"
	ErrMinValue     = "must be at least %s"
	ErrMaxValue     = "must be at most %s"
	ErrCalendarDate = "must be a calendar date in YYYY-MM-DD format"
	ErrClockTime    = "must be a time of day in HH:MM format"
	ErrUuid         = "must be a valid reservation id"
	ErrOneOf        = "must be one of: %s"
	ErrInvalid      = "is invalid"
)

func NewValidator() *validator.Validate {
	validator := validator.New(validator.WithRequiredStructEnabled())

	validator.RegisterValidation("calendar_date", validateCalendarDate)
	validator.RegisterValidation("clock_time", validateClockTime)

	return validator
}

func validateCalendarDate(fl validator.FieldLevel) bool {
	_, err := time.Parse("2006-01-02", fl.Field().String())
	return err == nil
}

func validateClockTime(fl validator.FieldLevel) bool {
	_, err := time.Parse("15:04", fl.Field().String())
	return err == nil
}

// ValidationMessage converts validator errors into readable messages
func ValidationMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return ErrRequired
	case "email":
		return ErrEmail
	case "min":
		return fmt.Sprintf(ErrMinValue, err.Param())
	case "max":
		return fmt.Sprintf(ErrMaxValue, err.Param())
	case "calendar_date":
		return ErrCalendarDate
	case "clock_time":
		return ErrClockTime
	case "uuid4":
		return ErrUuid
	case "oneof":
		return fmt.Sprintf(ErrOneOf, err.Param())
	default:
		return ErrInvalid
	}
}
