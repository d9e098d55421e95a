package cocache

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation matches every *ValidationError.
	ErrValidation = errors.New("cocache: invalid record")
	// ErrShape matches every *ShapeError.
	ErrShape = errors.New("cocache: invalid collection input")
	// ErrHistoryRange matches every *HistoryRangeError.
	ErrHistoryRange = errors.New("cocache: rollback target does not exist")

	// ErrMissingID is the cause of a ValidationError for records without an id.
	ErrMissingID = errors.New("record must have a non-empty string identifier")
)

// ValidationError reports a record rejected by a validator, by the id
// extractor or by the freezer. Nothing was written.
type ValidationError struct {
	Cache string
	ID    string // "" when the id could not be derived
	Index int    // position in the batch, -1 for single inserts
	Err   error
}

func (e *ValidationError) Error() string {
	where := ""
	if e.Index >= 0 {
		where = fmt.Sprintf(" at index %d", e.Index)
	}
	if e.ID != "" {
		return fmt.Sprintf("cocache[%s]: invalid record %q%s: %v", e.Cache, e.ID, where, e.Err)
	}
	return fmt.Sprintf("cocache[%s]: invalid record%s: %v", e.Cache, where, e.Err)
}

func (e *ValidationError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrValidation}
	}
	return []error{ErrValidation, e.Err}
}

// ShapeError reports collection input of the wrong shape, such as a key
// with no canonical form.
type ShapeError struct {
	Cache string
	Op    string
	Key   any
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("cocache[%s]: %s: collection key of type %T has no canonical form "+
		"(want string, number or keyed structure)", e.Cache, e.Op, e.Key)
}

func (e *ShapeError) Unwrap() error { return ErrShape }

// HistoryRangeError reports a rollback further back than the recorded
// history. State and history are untouched.
type HistoryRangeError struct {
	Steps     int
	Available int
}

func (e *HistoryRangeError) Error() string {
	return fmt.Sprintf("cocache: cannot roll back %d step(s), only %d recorded", e.Steps, e.Available)
}

func (e *HistoryRangeError) Unwrap() error { return ErrHistoryRange }
