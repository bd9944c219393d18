package bootimg

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
)

// CheckEnv reports whether the environment variable key is set to "true".
func CheckEnv(key string) bool {
	value, ret := os.LookupEnv(key)
	if ret {
		if value == "true" {
			return true
		}
	}
	return false
}

// Padding returns the number of zero bytes needed after n bytes to reach
// the next multiple of page.
func Padding(n, page uint64) uint64 {
	if page == 0 {
		return 0
	}
	return (page - n%page) % page
}

func alignTo(n, page uint64) uint64 {
	return n + Padding(n, page)
}

func validPageSize(size uint32) bool {
	switch size {
	case 2048, 4096, 8192, 16384, 32768, 65536, 131072:
		return true
	}
	return false
}

func sizeU32(name string, b []byte) (uint32, error) {
	if uint64(len(b)) > math.MaxUint32 {
		return 0, fmt.Errorf("%s: %w", name, ErrTooLarge)
	}
	return uint32(len(b)), nil
}

func writeLE32(w io.Writer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.Write(b[:])
}

func writePadded(buf *bytes.Buffer, data []byte, page uint32) {
	buf.Write(data)
	buf.Write(make([]byte, Padding(uint64(len(data)), uint64(page))))
}

// cString returns the bytes of b up to the first NUL.
func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return string(b[:i])
	}
	return string(b)
}

// putCString copies s into dst, truncated so a terminating NUL always fits.
func putCString(dst []byte, s string) {
	n := copy(dst[:len(dst)-1], s)
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
