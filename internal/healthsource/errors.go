package healthsource

import (
	"errors"
	"fmt"
	"strings"

	"healthsync/internal/cvconfig"
)

// ValidationError is a rule violated by a health source specification.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (ve ValidationError) Error() string {
	if ve.Field == "" {
		return ve.Message
	}
	return fmt.Sprintf("field '%s': %s", ve.Field, ve.Message)
}

// ValidationErrors collects every violation found by one Validate call.
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}
	if len(ve) == 1 {
		return ve[0].Error()
	}

	messages := make([]string, 0, len(ve))
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
func (ve *ValidationErrors) Add(field, message string, value ...any) {
	var val any
	if len(value) > 0 {
		val = value[0]
	}
	*ve = append(*ve, ValidationError{
		Field:   field,
		Value:   val,
		Message: message,
	})
}

// Err returns ve as an error, or nil when it is empty.
func (ve ValidationErrors) Err() error {
	if !ve.HasErrors() {
		return nil
	}
	return ve
}

// requireField records a violation when value is blank.
func (ve *ValidationErrors) requireField(field, value string) {
	if strings.TrimSpace(value) == "" {
		ve.Add(field, "is required", value)
	}
}

// MappingError is raised while expanding a valid specification into
// configs, for example on a malformed JSON path or an unknown metric pack.
type MappingError struct {
	Type    cvconfig.DataSourceType
	Field   string
	Message string
	Err     error
}

func (e *MappingError) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = e.Err.Error()
		if e.Message != "" {
			msg = e.Message + ": " + msg
		}
	}
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.Type, msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.Type, e.Field, msg)
}

func (e *MappingError) Unwrap() error {
	return e.Err
}

// UnknownTypeError is returned when no health source is registered for a type tag.
type UnknownTypeError struct {
	Type cvconfig.DataSourceType
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown health source type %q", e.Type)
}

// IsValidationError reports whether err carries a ValidationError.
func IsValidationError(err error) bool {
	var many ValidationErrors
	if errors.As(err, &many) {
		return true
	}
	var one ValidationError
	return errors.As(err, &one)
}

// IsMappingError reports whether err carries a *MappingError.
func IsMappingError(err error) bool {
	var me *MappingError
	return errors.As(err, &me)
}

// IsUnknownType reports whether err carries an *UnknownTypeError.
func IsUnknownType(err error) bool {
	var ute *UnknownTypeError
	return errors.As(err, &ute)
}
