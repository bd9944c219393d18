//go:build !linux

package stub

import (
	"errors"
	"os"
)

func BlockDeviceSize(f *os.File) (int64, error) {
	return 0, errors.New("block devices are only supported on linux")
}
