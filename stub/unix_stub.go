//go:build !windows
// +build !windows

package stub

import (
	"golang.org/x/sys/unix"
)

// Stub functions link to unix libraries

func Major(dev uint64) uint32 {
	return unix.Major(dev)
}

func Minor(dev uint64) uint32 {
	return unix.Minor(dev)
}

type Stat_t struct {
	unix.Stat_t
}

func Stat(path string, stat *Stat_t) error {
	return unix.Stat(path, &stat.Stat_t)
}

// Device returns the device number of a device node.
func (s *Stat_t) Device() uint64 {
	return uint64(s.Rdev)
}
