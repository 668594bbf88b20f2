// Package errors defines the coded error types used across the relay.
package errors

import (
	"errors"
	"fmt"
)

// Standard error codes for the application.
const (
	CodeUnknown = "UNKNOWN"
	CodeConfig  = "CONFIG"
	CodeSend    = "SEND"
)

// Sentinels matched by errors.Is against the typed errors below.
var (
	ErrConfig = errors.New("configuration error")
	ErrSend   = errors.New("send failed")
)

// ApplicationError is the interface that all our custom errors implement.
type ApplicationError interface {
	error
	Code() string
	Unwrap() error
}

// Error represents a basic application error.
type Error struct {
	code    string
	message string
	err     error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.message, e.err)
	}

	return e.message
}

func (e *Error) Code() string {
	return e.code
}

func (e *Error) Unwrap() error {
	return e.err
}

// Code returns the code of the first ApplicationError in err's chain,
// or CodeUnknown if there is none.
func Code(err error) string {
	var appErr ApplicationError
	if errors.As(err, &appErr) {
		return appErr.Code()
	}

	return CodeUnknown
}

// ConfigError is returned when startup configuration is missing or invalid.
// It is always fatal.
type ConfigError struct {
	base Error
}

func (e *ConfigError) Error() string {
	return e.base.Error()
}

func (e *ConfigError) Code() string {
	return e.base.Code()
}

func (e *ConfigError) Unwrap() error {
	return e.base.Unwrap()
}

func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}

func NewConfigError(message string, cause error) error {
	return &ConfigError{
		base: Error{
			code:    CodeConfig,
			message: message,
			err:     cause,
		},
	}
}

// SendError is returned when a single message could not be delivered.
// It does not distinguish between rejected requests and transport failures.
type SendError struct {
	base      Error
	Recipient int64
}

func (e *SendError) Error() string {
	return e.base.Error()
}

func (e *SendError) Code() string {
	return e.base.Code()
}

func (e *SendError) Unwrap() error {
	return e.base.Unwrap()
}

func (e *SendError) Is(target error) bool {
	return target == ErrSend
}

func NewSendError(recipient int64, cause error) error {
	return &SendError{
		base: Error{
			code:    CodeSend,
			message: fmt.Sprintf("failed to send message to %d", recipient),
			err:     cause,
		},
		Recipient: recipient,
	}
}
