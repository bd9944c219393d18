package bootimg

import (
	"errors"
	"fmt"
)

var (
	ErrNotRecognized   = errors.New("not a recognized boot image")
	ErrInvalidPageSize = errors.New("invalid page size")
	ErrNoAboot         = errors.New("an aboot image is required")
	ErrTooLarge        = errors.New("image exceeds 4 GiB")
)

// ParseError is returned when a boot image cannot be decoded. The image
// that produced it must be discarded.
type ParseError struct {
	Variant Variant
	Err     error
}

func (e *ParseError) Error() string {
	if e.Variant == UNKNOWN {
		return fmt.Sprintf("parse boot image: %v", e.Err)
	}
	return fmt.Sprintf("parse %s boot image: %v", e.Variant, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// BuildError is returned when the current fields cannot be serialized for
// the target variant.
type BuildError struct {
	Variant Variant
	Err     error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("build %s boot image: %v", e.Variant, e.Err)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// IOError wraps a failure to read or write a file or device.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}
