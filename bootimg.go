package bootimg

import (
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"

	"bootimg/log"
	"bootimg/stub"
)

// BootImage is a decoded boot image. It is not safe for concurrent use.
type BootImage struct {
	i10e intermediate

	source Variant
	target Variant

	err      error
	warnings []string
}

// New returns an empty Android image with mkbootimg's default addresses.
func New() *BootImage {
	b := &BootImage{source: ANDROID, target: ANDROID}
	b.i10e.pageSize = DEFAULT_PAGE_SIZE
	b.SetAddresses(DEFAULT_BASE, DEFAULT_KERNEL_OFFSET, DEFAULT_RAMDISK_OFFSET,
		DEFAULT_SECOND_OFFSET, DEFAULT_TAGS_OFFSET)
	return b
}

// Load detects the variant of data and decodes it. data is not retained.
func Load(data []byte) (*BootImage, error) {
	b := &BootImage{}
	v, ok := Detect(data)
	if !ok {
		return nil, &ParseError{Err: ErrNotRecognized}
	}
	log.Debugf("Detected %s boot image", v)

	if err := newCodec(v, &b.i10e, b.warnf).loadImage(data); err != nil {
		return nil, &ParseError{Variant: v, Err: err}
	}

	b.source = v
	b.target = v
	// Loki images can only be rewrapped with the device's aboot.
	if v == LOKI {
		b.target = ANDROID
	}
	return b, nil
}

// LoadFile maps path read-only and decodes it. Block devices are sized
// with an ioctl since stat reports zero for them.
func LoadFile(path string) (*BootImage, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Op: "open", Path: path, Err: err}
	}
	defer file.Close()

	st, err := file.Stat()
	if err != nil {
		return nil, &IOError{Op: "stat", Path: path, Err: err}
	}
	size := st.Size()
	if st.Mode()&os.ModeDevice != 0 {
		if size, err = stub.BlockDeviceSize(file); err != nil {
			return nil, &IOError{Op: "size", Path: path, Err: err}
		}
	}
	if size == 0 {
		return nil, &ParseError{Err: ErrNotRecognized}
	}
	if int64(int(size)) != size {
		return nil, &IOError{Op: "map", Path: path, Err: ErrTooLarge}
	}

	fmap, err := mmap.MapRegion(file, int(size), mmap.RDONLY, 0, 0)
	if err != nil {
		return nil, &IOError{Op: "map", Path: path, Err: err}
	}
	defer fmap.Unmap()

	return Load(fmap)
}

// Create serializes the image as the target variant.
func (b *BootImage) Create() ([]byte, error) {
	c := newCodec(b.target, &b.i10e, b.warnf)
	if c == nil {
		b.err = &BuildError{Variant: b.target, Err: fmt.Errorf("unsupported target variant %d", int(b.target))}
		return nil, b.err
	}
	data, err := c.createImage()
	if err != nil {
		b.err = &BuildError{Variant: b.target, Err: err}
		return nil, b.err
	}
	return data, nil
}

// CreateFile serializes the image and writes it to path.
func (b *BootImage) CreateFile(path string) error {
	data, err := b.Create()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		b.err = &IOError{Op: "write", Path: path, Err: err}
		return b.err
	}
	return nil
}

// Err returns the last error reported by Create or CreateFile. Load and
// LoadFile return their error directly since no image exists on failure.
func (b *BootImage) Err() error {
	return b.err
}

// Warnings returns the non-fatal problems found while loading.
func (b *BootImage) Warnings() []string {
	return b.warnings
}

func (b *BootImage) warnf(format string, args ...interface{}) {
	b.warnings = append(b.warnings, fmt.Sprintf(format, args...))
	log.Warnf(format, args...)
}

func (b *BootImage) SourceVariant() Variant {
	return b.source
}

func (b *BootImage) TargetVariant() Variant {
	return b.target
}

func (b *BootImage) SetTargetVariant(v Variant) {
	b.target = v
}

// Supports reports whether the target variant serializes c.
func (b *BootImage) Supports(c Capability) bool {
	return CapabilityMask(b.target).Has(c)
}

// Equal compares the contents of two images, ignoring their variants.
func (b *BootImage) Equal(o *BootImage) bool {
	if b == nil || o == nil {
		return b == o
	}
	return b.i10e.equal(&o.i10e)
}
