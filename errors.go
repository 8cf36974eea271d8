package trialseq

import (
	"errors"
	"fmt"
)

// errNoImporter is the cause attached to a ResourceImportError when a
// resource name was given but no Importer was configured.
var errNoImporter = errors.New("no importer configured")

// InvalidConditionTableError reports a condition input whose shape the
// loader does not understand. It is fatal at construction and never
// retried.
type InvalidConditionTableError struct {
	// Input is the offending value passed as the condition source.
	Input any

	// Err carries the underlying cause when the rows themselves were
	// rejected, e.g. by schema validation. Nil for pure shape errors.
	Err error
}

func (e *InvalidConditionTableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid condition table: %v", e.Err)
	}
	return fmt.Sprintf(
		"invalid condition table: unsupported input type %T", e.Input)
}

func (e *InvalidConditionTableError) Unwrap() error {
	return e.Err
}

// ResourceImportError reports a failed condition import. The original
// cause from the importer is attached and reachable via errors.Unwrap.
// Fatal at construction, never retried.
type ResourceImportError struct {
	// Resource is the name that was passed to the importer.
	Resource string

	// Err is the importer's failure.
	Err error
}

func (e *ResourceImportError) Error() string {
	return fmt.Sprintf("import conditions %q: %v", e.Resource, e.Err)
}

func (e *ResourceImportError) Unwrap() error {
	return e.Err
}

// UnknownOrderingError reports an ordering value that is none of
// [OrderSequential], [OrderRandom], or [OrderFullRandom]. Fatal at
// construction.
type UnknownOrderingError struct {
	Ordering Ordering
}

func (e *UnknownOrderingError) Error() string {
	return fmt.Sprintf("unknown trial ordering %q", string(e.Ordering))
}
