package analysis

import (
	"errors"
	"fmt"
)

// ErrMalformedInput is returned when the input matches no supported shape.
// It is the only error that aborts an analysis run.
var ErrMalformedInput = errors.New("malformed input")

var errNonFinite = errors.New("non-finite value")

// StageErrorKind names the stage a contained failure happened in.
type StageErrorKind string

const (
	ColumnProfilingError StageErrorKind = "ColumnProfilingError"
	ClassificationError  StageErrorKind = "ClassificationError"
	ExtractionError      StageErrorKind = "ExtractionError"
	SynthesisError       StageErrorKind = "SynthesisError"
)

// StageError is a failure contained at a stage boundary. Stages log it and
// degrade to their sentinel output instead of returning it.
type StageError struct {
	Kind    StageErrorKind
	Subject string
	Err     error
}

func (e *StageError) Error() string {
	if e.Subject != "" {
		return fmt.Sprintf("%s (%s): %v", e.Kind, e.Subject, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// guard runs fn and turns both a returned error and a panic into a StageError.
func guard(kind StageErrorKind, subject string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &StageError{Kind: kind, Subject: subject, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	if err := fn(); err != nil {
		var se *StageError
		if errors.As(err, &se) {
			return se
		}
		return &StageError{Kind: kind, Subject: subject, Err: err}
	}
	return nil
}
