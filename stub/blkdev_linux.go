//go:build linux

package stub

import (
	"os"

	"golang.org/x/sys/unix"
)

// BlockDeviceSize returns the size in bytes of the block device behind f.
func BlockDeviceSize(f *os.File) (int64, error) {
	size, err := unix.IoctlGetInt(int(f.Fd()), unix.BLKGETSIZE64)
	if err != nil {
		return 0, err
	}
	return int64(size), nil
}
