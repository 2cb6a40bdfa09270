package resource

import (
	"errors"
	"fmt"
)

var (
	// ErrRead is matched by every *ReadError.
	ErrRead = errors.New("cannot read resource")
	// ErrWrite is matched by every *WriteError.
	ErrWrite = errors.New("cannot write resource")
	// ErrUnknownFormat is returned when no codec handles a format or file
	// extension.
	ErrUnknownFormat = errors.New("unknown resource format")
	// ErrShape is matched by every *ShapeError.
	ErrShape = errors.New("key is both a value and a group")
)

// ReadError reports a resource that could not be loaded: the file is
// missing, unreadable or malformed.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("reading %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

func (e *ReadError) Is(target error) bool { return target == ErrRead }

// WriteError reports a resource that could not be saved.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writing %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

func (e *WriteError) Is(target error) bool { return target == ErrWrite }

// ShapeError reports an edit that would leave Key both holding a value and
// having child keys in a nested resource file.
type ShapeError struct {
	Path string
	Key  string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: key %q would be both a value and a group", e.Path, e.Key)
}

func (e *ShapeError) Is(target error) bool { return target == ErrShape }
