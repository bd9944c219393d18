package bootimg

import (
	"fmt"
	"math/bits"

	"github.com/hashicorp/go-multierror"
)

// ErrOverflow is returned when an offset computation wraps around.
type ErrOverflow struct {
	A, B uint64
}

func (e *ErrOverflow) Error() string {
	return fmt.Sprintf("offset overflow: %#x + %#x", e.A, e.B)
}

// ErrStartBeyondLength is returned when a section starts past the buffer end.
type ErrStartBeyondLength struct {
	Length uint64
	Start  uint64
}

func (e *ErrStartBeyondLength) Error() string {
	return fmt.Sprintf("start %#x is beyond buffer length %#x", e.Start, e.Length)
}

// ErrEndGreaterThanLength is returned when a section ends past the buffer end.
type ErrEndGreaterThanLength struct {
	Length uint64
	End    uint64
}

func (e *ErrEndGreaterThanLength) Error() string {
	return fmt.Sprintf("end %#x exceeds buffer length %#x by %d bytes", e.End, e.Length, e.End-e.Length)
}

func checkedAdd(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, &ErrOverflow{A: a, B: b}
	}
	return sum, nil
}

// checkRange verifies that [offset, offset+size) lies within a buffer of
// the given length. Every violated condition is reported.
func checkRange(length, offset, size uint64) error {
	var result *multierror.Error
	if offset > length {
		result = multierror.Append(result, &ErrStartBeyondLength{Length: length, Start: offset})
	}
	end, err := checkedAdd(offset, size)
	if err != nil {
		result = multierror.Append(result, err)
	} else if end > length {
		result = multierror.Append(result, &ErrEndGreaterThanLength{Length: length, End: end})
	}
	return result.ErrorOrNil()
}

// sectionReader walks page aligned sections of a raw image.
type sectionReader struct {
	data []byte
	pos  uint64
}

func newSectionReader(data []byte, pos uint64) *sectionReader {
	return &sectionReader{data: data, pos: pos}
}

func (r *sectionReader) skip(n uint64) error {
	pos, err := checkedAdd(r.pos, n)
	if err != nil {
		return err
	}
	r.pos = pos
	return nil
}

// take copies size bytes at the current position and advances past them.
// An empty section is never bounds checked.
func (r *sectionReader) take(name string, size uint64) ([]byte, error) {
	if size == 0 {
		return nil, nil
	}
	if err := checkRange(uint64(len(r.data)), r.pos, size); err != nil {
		return nil, fmt.Errorf("%s image exceeds boot image size: %w", name, err)
	}
	out := make([]byte, size)
	copy(out, r.data[r.pos:r.pos+size])
	r.pos += size
	return out, nil
}

// page copies a section and skips the padding that follows it.
func (r *sectionReader) page(name string, size uint64, pageSize uint32) ([]byte, error) {
	out, err := r.take(name, size)
	if err != nil {
		return nil, err
	}
	if err := r.skip(Padding(size, uint64(pageSize))); err != nil {
		return nil, err
	}
	return out, nil
}
