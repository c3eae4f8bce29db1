package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeNavigation represents failures reaching a page
	ErrorTypeNavigation ErrorType = "navigation"
	// ErrorTypeEvaluation represents script execution failures in the page
	ErrorTypeEvaluation ErrorType = "evaluation"
	// ErrorTypeParsing represents unexpected text or token shapes
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypeAction represents failures triggering the action control
	ErrorTypeAction ErrorType = "action"
	// ErrorTypeCache represents cache-related errors
	ErrorTypeCache ErrorType = "cache"
	// ErrorTypePublisher represents publisher-related errors
	ErrorTypePublisher ErrorType = "publisher"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// AutomationError represents a typed failure raised while driving the site
type AutomationError struct {
	Type    ErrorType
	Target  string
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *AutomationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Target, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Target, e.Message)
}

// Unwrap returns the underlying error
func (e *AutomationError) Unwrap() error {
	return e.Err
}

// IsRecoverable reports whether a single item may be skipped and the batch
// continued after this error.
func (e *AutomationError) IsRecoverable() bool {
	switch e.Type {
	case ErrorTypeEvaluation, ErrorTypeParsing, ErrorTypeAction:
		return true
	case ErrorTypeCache, ErrorTypePublisher:
		return true
	default:
		return false
	}
}

// New creates a new AutomationError
func New(errType ErrorType, target, message string, err error) *AutomationError {
	return &AutomationError{
		Type:    errType,
		Target:  target,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewNavigation creates a new navigation error
func NewNavigation(target, message string, err error) *AutomationError {
	return New(ErrorTypeNavigation, target, message, err)
}

// NewEvaluation creates a new script evaluation error
func NewEvaluation(target, message string, err error) *AutomationError {
	return New(ErrorTypeEvaluation, target, message, err)
}

// NewParsing creates a new parsing error
func NewParsing(target, message string, err error) *AutomationError {
	return New(ErrorTypeParsing, target, message, err)
}

// NewAction creates a new action error
func NewAction(target, message string, err error) *AutomationError {
	return New(ErrorTypeAction, target, message, err)
}

// NewCache creates a new cache error
func NewCache(target, message string, err error) *AutomationError {
	return New(ErrorTypeCache, target, message, err)
}

// NewPublisher creates a new publisher error
func NewPublisher(target, message string, err error) *AutomationError {
	return New(ErrorTypePublisher, target, message, err)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *AutomationError {
	return New(ErrorTypeConfiguration, "", message, err)
}

// TypeOf returns the ErrorType of the first AutomationError in err's chain,
// or an empty ErrorType when there is none.
func TypeOf(err error) ErrorType {
	var ae *AutomationError
	if stderrors.As(err, &ae) {
		return ae.Type
	}
	return ""
}

// IsNavigation reports whether err carries a navigation failure
func IsNavigation(err error) bool {
	return TypeOf(err) == ErrorTypeNavigation
}

// IsEvaluation reports whether err carries a script evaluation failure
func IsEvaluation(err error) bool {
	return TypeOf(err) == ErrorTypeEvaluation
}

// IsParsing reports whether err carries a parsing failure
func IsParsing(err error) bool {
	return TypeOf(err) == ErrorTypeParsing
}

// IsRecoverable reports whether err may be absorbed at item level. Errors
// that are not AutomationErrors are treated as fatal.
func IsRecoverable(err error) bool {
	var ae *AutomationError
	if stderrors.As(err, &ae) {
		return ae.IsRecoverable()
	}
	return false
}
