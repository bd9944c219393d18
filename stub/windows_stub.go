//go:build windows

package stub

// Stub functions, always return 0

func Major(dev uint64) uint32 {
	return 0
}

func Minor(dev uint64) uint32 {
	return 0
}

type Stat_t struct {
	Rdev uint64
}

func Stat(path string, stat *Stat_t) error {
	stat.Rdev = uint64(0)
	return nil
}

func (s *Stat_t) Device() uint64 {
	return s.Rdev
}
