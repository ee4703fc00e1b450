package errortypes

import (
	"context"
	"errors"
)

// ArgumentType should be used when a caller passes a value of the wrong shape to an operation,
// e.g. a bare string where a list of strings is expected.
//
// ArgumentType errors are returned before anything is sent across the bridge.
type ArgumentType struct {
	Message string
}

func (err *ArgumentType) Error() string {
	return err.Message
}

func (err *ArgumentType) Code() int {
	return ArgumentTypeErrorCode
}

func (err *ArgumentType) Severity() Severity {
	return SeverityFatal
}

// ArgumentValue should be used when the argument has the right shape but an unacceptable value,
// e.g. an empty list of publisher IDs or an enum value outside its table.
//
// ArgumentValue errors are returned before anything is sent across the bridge.
type ArgumentValue struct {
	Message string
}

func (err *ArgumentValue) Error() string {
	return err.Message
}

func (err *ArgumentValue) Code() int {
	return ArgumentValueErrorCode
}

func (err *ArgumentValue) Severity() Severity {
	return SeverityFatal
}

// InvalidState should be used when an operation is valid in general but not for the current
// state of the object, e.g. showing an ad that has not loaded.
type InvalidState struct {
	Message string
}

func (err *InvalidState) Error() string {
	return err.Message
}

func (err *InvalidState) Code() int {
	return InvalidStateErrorCode
}

func (err *InvalidState) Severity() Severity {
	return SeverityFatal
}

// Bridge carries a failure reported by the native layer. The message is passed through verbatim
// and is never interpreted here.
//
// Operation names the bridge call that failed. It is not part of the message.
type Bridge struct {
	Operation string
	Message   string
}

func (err *Bridge) Error() string {
	return err.Message
}

func (err *Bridge) Code() int {
	return BridgeErrorCode
}

func (err *Bridge) Severity() Severity {
	return SeverityFatal
}

// Warning is a non-fatal diagnostic, e.g. a publisher ID that does not look like one.
type Warning struct {
	Message     string
	WarningCode int
}

func (err *Warning) Error() string {
	return err.Message
}

func (err *Warning) Code() int {
	return err.WarningCode
}

func (err *Warning) Severity() Severity {
	return SeverityWarning
}

// NewBridge converts an error returned by the native layer into a *Bridge error. Errors that already
// are *Bridge, and context cancellation or deadline errors owned by the caller, are returned unchanged.
func NewBridge(operation string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*Bridge); ok {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &Bridge{Operation: operation, Message: err.Error()}
}
