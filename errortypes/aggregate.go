package errortypes

import (
	"bytes"
	"strconv"
)

// AggregateErrors collects every problem found in one validation pass so they can be reported together.
type AggregateErrors struct {
	Message string
	Errors  []error
}

// NewAggregateErrors builds a AggregateErrors struct.
func NewAggregateErrors(msg string, errs []error) AggregateErrors {
	return AggregateErrors{
		Message: msg,
		Errors:  errs,
	}
}

// Error lists the collected errors one per line, numbered from 1.
func (e AggregateErrors) Error() string {
	if len(e.Errors) == 0 {
		return ""
	}

	b := bytes.Buffer{}
	b.WriteString(e.Message)

	if len(e.Errors) == 1 {
		b.WriteString(" (1 error):\n")
	} else {
		b.WriteString(" (")
		b.WriteString(strconv.Itoa(len(e.Errors)))
		b.WriteString(" errors):\n")
	}

	for i, err := range e.Errors {
		b.WriteString("  ")
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString(": ")
		b.WriteString(err.Error())
		b.WriteString("\n")
	}

	return b.String()
}

func (e AggregateErrors) Code() int {
	return InvalidConfigErrorCode
}

func (e AggregateErrors) Severity() Severity {
	if ContainsFatalError(e.Errors) {
		return SeverityFatal
	}
	return SeverityWarning
}
