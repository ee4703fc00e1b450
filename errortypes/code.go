package errortypes

// Defines numeric codes for well-known errors.
const (
	UnknownErrorCode      = 999
	ArgumentTypeErrorCode = iota
	ArgumentValueErrorCode
	InvalidStateErrorCode
	BridgeErrorCode
	InvalidConfigErrorCode
)

// Defines numeric codes for well-known warnings.
const (
	UnknownWarningCode                 = 10999
	UnrecognizedPublisherIDWarningCode = iota + 10000
	UnknownEventTypeWarningCode
)

// Coder provides an error or warning code with severity.
type Coder interface {
	Code() int
	Severity() Severity
}

// ReadCode returns the error or warning code, or UnknownErrorCode if unavailable.
func ReadCode(err error) int {
	if e, ok := err.(Coder); ok {
		return e.Code()
	}
	return UnknownErrorCode
}

// IsArgumentError reports whether err was raised by local argument validation rather than by the bridge.
func IsArgumentError(err error) bool {
	switch ReadCode(err) {
	case ArgumentTypeErrorCode, ArgumentValueErrorCode:
		return true
	}
	return false
}

// IsBridgeError reports whether err was surfaced from the native layer.
func IsBridgeError(err error) bool {
	return ReadCode(err) == BridgeErrorCode
}
