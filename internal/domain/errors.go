package domain

import "errors"

// Common store errors
var (
	// ErrNotFound is returned when an operation targets an id that is not in the collection
	ErrNotFound = errors.New("record not found")

	// ErrInvalidTransition is returned when a status change must go through a workflow operation
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidInput is returned when caller-side validation fails
	ErrInvalidInput = errors.New("invalid input")
)

// ValidationFieldError maps a field name to its validation error message
type ValidationFieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationMessages provides human-readable validation error messages
// These map validator tags to user-friendly messages
var ValidationMessages = map[string]string{
	"required": "This field is required",
	"email":    "Must be a valid email address",
	"max":      "Exceeds maximum length",
	"min":      "Below minimum length",
	"gte":      "Must be greater than or equal to minimum value",
	"gt":       "Must be greater than minimum value",
	"lte":      "Must be less than or equal to maximum value",
	"lt":       "Must be less than maximum value",
	"oneof":    "Must be one of the allowed values",
	"numeric":  "Must be a numeric value",
}

// GetValidationMessage returns a human-readable message for a validation tag
func GetValidationMessage(tag string) string {
	if msg, ok := ValidationMessages[tag]; ok {
		return msg
	}
	return "Validation failed: " + tag
}
