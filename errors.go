package persist

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrMissingRequired reports that a required member resolved to no value
// during load. The whole containing object's load is aborted and no instance
// is returned.
var ErrMissingRequired = errors.New("persist: missing required member")

// ErrShapeMismatch reports that a member declared a container shape the
// engine cannot handle. It aborts the containing load the same way a missing
// required member does.
var ErrShapeMismatch = errors.New("persist: container shape mismatch")

// PersistError captures member metadata alongside the originating error.
type PersistError struct {
	Op   string
	Key  string
	Type reflect.Type
	Err  error
}

func (e *PersistError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("persist: %s key=%q type=%s: %v", e.Op, e.Key, describeType(e.Type), e.Err)
}

func (e *PersistError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func describeType(t reflect.Type) string {
	if t == nil {
		return "<none>"
	}
	return t.String()
}

func wrapPersistError(op, key string, typ reflect.Type, err error) error {
	if err == nil {
		return nil
	}

	var perr *PersistError
	if errors.As(err, &perr) {
		if perr.Op == "" {
			perr.Op = op
		}
		if perr.Key == "" {
			perr.Key = key
		}
		if perr.Type == nil {
			perr.Type = typ
		}
		return perr
	}

	return &PersistError{
		Op:   op,
		Key:  key,
		Type: typ,
		Err:  err,
	}
}
