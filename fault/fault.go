// Package fault classifies the errors the feedback system distinguishes:
// schema fetch failures are retryable, validation errors are local and
// recoverable, submission errors keep the draft intact for a resubmit,
// and desync errors indicate a draft/schema mismatch bug.
package fault

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("resource not found")

type Kind int

const (
	KindValidation Kind = iota
	KindSchema
	KindSubmission
	KindDesync
	KindInternal
)

type Fault struct {
	Kind    Kind
	Message string
	Err     error
}

func (f *Fault) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", f.kindString(), f.Message, f.Err)
	}
	return fmt.Sprintf("[%s] %s", f.kindString(), f.Message)
}

// Unwrap allows errors.Is and errors.As to work.
func (f *Fault) Unwrap() error {
	return f.Err
}

func (f *Fault) kindString() string {
	switch f.Kind {
	case KindValidation:
		return "ValidationError"
	case KindSchema:
		return "SchemaFetchError"
	case KindSubmission:
		return "SubmissionError"
	case KindDesync:
		return "DesyncError"
	case KindInternal:
		return "InternalError"
	default:
		return "UnknownError"
	}
}

func New(kind Kind, msg string, err error) error {
	return &Fault{Kind: kind, Message: msg, Err: err}
}

// Is reports whether err is a Fault of the given kind.
func Is(err error, kind Kind) bool {
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind == kind
	}
	return false
}

// Retryable reports whether the failure may be retried by explicit user
// action. Validation and desync failures are not: the former needs a
// corrected draft, the latter a rebuilt one.
func Retryable(err error) bool {
	return Is(err, KindSchema) || Is(err, KindSubmission)
}
