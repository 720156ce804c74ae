package assistant

import (
	"fmt"
	"strings"
)

// The pipeline's error taxonomy. None of these are retried by the core;
// retry policy, if any, belongs to the failing collaborator.

// NotFoundError reports a use case id that is not in the registry.
type NotFoundError struct {
	ID UseCaseID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("use case %d not found", e.ID)
}

// ResolutionError wraps a failed intent resolution. Fatal for Answer.
type ResolutionError struct {
	Err error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("intent resolution failed: %v", e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// ExtractionError wraps a failed field or category extraction. Fatal for Answer.
type ExtractionError struct {
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("field extraction failed: %v", e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// SynthesisError wraps a failed response synthesis. Fatal for the request.
type SynthesisError struct {
	Err error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("response synthesis failed: %v", e.Err)
}

func (e *SynthesisError) Unwrap() error { return e.Err }

// MissingFieldError is the dispatch precondition violation: a selected use
// case requires fields that are not keys of the field map. It always names
// the use case and every missing field. This indicates an upstream pipeline
// bug, not a transient condition, and is never silently dropped.
type MissingFieldError struct {
	UseCase string
	Fields  []FieldName
}

func (e *MissingFieldError) Error() string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = string(f)
	}
	return fmt.Sprintf("missing fields [%s] for %s", strings.Join(names, ", "), e.UseCase)
}
