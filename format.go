package bootimg

import (
	"bytes"
	"strings"
)

// Variant is one of the supported on-disk boot image layouts.
type Variant int

const (
	UNKNOWN Variant = iota
	ANDROID
	LOKI
	BUMP
	MTK
	SONY_ELF
)

const (
	BOOT_MAGIC    = "ANDROID!"
	MTK_MAGIC     = "\x88\x16\x88\x58"
	LG_BUMP_MAGIC = "\x41\xa9\xe4\x67\x74\x4d\x1d\x1b\xa4\x29\xf2\xec\xea\x65\x52\x79"
	LOKI_MAGIC    = "LOKI"
	SONY_E_IDENT  = "\x7fELF\x01\x01\x01\x61"
	GZIP_MAGIC    = "\x1f\x8b\x08"
)

// Variants lists every variant in detection order. Loki and Bump images
// are also valid Android images, and Mtk images are Android images with
// sub-headers, so the wrappers must be tried first.
var Variants = []Variant{LOKI, BUMP, MTK, ANDROID, SONY_ELF}

func (v Variant) String() string {
	switch v {
	case ANDROID:
		return "android"
	case LOKI:
		return "loki"
	case BUMP:
		return "bump"
	case MTK:
		return "mtk"
	case SONY_ELF:
		return "sonyelf"
	default:
		return "unknown"
	}
}

// Name2Variant maps a variant name back to its Variant. Unknown names
// return UNKNOWN.
func Name2Variant(name string) Variant {
	switch strings.ToLower(name) {
	case "android":
		return ANDROID
	case "loki":
		return LOKI
	case "bump":
		return BUMP
	case "mtk":
		return MTK
	case "sonyelf", "sony_elf", "sony":
		return SONY_ELF
	default:
		return UNKNOWN
	}
}

// Match reports whether data looks like an image of variant v. It does not
// allocate the model and never reads past the buffer.
func (v Variant) Match(data []byte) bool {
	switch v {
	case ANDROID:
		return androidIsValid(data)
	case LOKI:
		return lokiIsValid(data)
	case BUMP:
		return bumpIsValid(data)
	case MTK:
		return mtkIsValid(data)
	case SONY_ELF:
		return sonyIsValid(data)
	default:
		return false
	}
}

// Detect returns the first variant in detection order that matches data.
func Detect(data []byte) (Variant, bool) {
	for _, v := range Variants {
		if v.Match(data) {
			return v, true
		}
	}
	return UNKNOWN, false
}

// IsValid reports whether data is a boot image of any supported variant.
func IsValid(data []byte) bool {
	_, ok := Detect(data)
	return ok
}

type warnFunc func(format string, args ...interface{})

type codec interface {
	loadImage(data []byte) error
	createImage() ([]byte, error)
}

func newCodec(v Variant, i *intermediate, warn warnFunc) codec {
	switch v {
	case ANDROID:
		return &androidCodec{i: i}
	case LOKI:
		return &lokiCodec{i: i}
	case BUMP:
		return &bumpCodec{androidCodec{i: i}}
	case MTK:
		return &mtkCodec{androidCodec: androidCodec{i: i}, warn: warn}
	case SONY_ELF:
		return &sonyElfCodec{i: i, warn: warn}
	default:
		return nil
	}
}

func hasPrefix(data []byte, off int, magic string) bool {
	if off < 0 || off+len(magic) > len(data) {
		return false
	}
	return bytes.Equal(data[off:off+len(magic)], []byte(magic))
}
