package config

import (
	"fmt"
	"strings"

	"healthsync/pkg/logging"
)

// ValidationError represents a validation error with context
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (ve ValidationError) Error() string {
	if ve.Field == "" {
		return ve.Message
	}
	return fmt.Sprintf("field '%s': %s", ve.Field, ve.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for multiple validation errors
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}
	if len(ve) == 1 {
		return ve[0].Error()
	}

	var messages []string
	for _, err := range ve {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

// HasErrors returns true if there are any validation errors
func (ve ValidationErrors) HasErrors() bool {
	return len(ve) > 0
}

// Add adds a new validation error
func (ve *ValidationErrors) Add(field, message string, value ...interface{}) {
	var val interface{}
	if len(value) > 0 {
		val = value[0]
	}
	*ve = append(*ve, ValidationError{
		Field:   field,
		Value:   val,
		Message: message,
	})
}

// ValidateOneOf checks if a value is in a list of allowed values
func ValidateOneOf(field, value string, allowed []string) error {
	for _, allowedValue := range allowed {
		if value == allowedValue {
			return nil
		}
	}
	return ValidationError{
		Field:   field,
		Value:   value,
		Message: fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")),
	}
}

// Validate checks every field of the configuration.
func (c Config) Validate() error {
	var errs ValidationErrors

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs.Add("log.level", "must be one of: debug, info, warn, error", c.Log.Level)
	}
	if err := ValidateOneOf("log.format", c.Log.Format, []string{string(logging.FormatText), string(logging.FormatJSON)}); err != nil {
		errs = append(errs, err.(ValidationError))
	}
	if err := ValidateOneOf("store.type", string(c.Store.Type), []string{string(StoreTypeFile), string(StoreTypeMemory)}); err != nil {
		errs = append(errs, err.(ValidationError))
	}
	if c.Store.Type == StoreTypeFile && strings.TrimSpace(c.Store.Path) == "" {
		errs.Add("store.path", "is required for the file store")
	}
	if c.Plan.Parallelism < 1 {
		errs.Add("plan.parallelism", "must be at least 1", c.Plan.Parallelism)
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}
