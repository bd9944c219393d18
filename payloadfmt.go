package bootimg

import "bytes"

// Format identifies the encoding of a payload such as the kernel or the
// ramdisk. Payloads are never decoded, the format is only reported.
type Format int

const (
	RAW Format = iota
	/* Compression formats */
	GZIP
	XZ
	LZMA
	BZIP2
	LZ4
	LZ4_LEGACY
	LZOP
	/* Misc */
	DTB
	ZIMAGE
)

const (
	GZIP1_MAGIC   = "\x1f\x8b"
	GZIP2_MAGIC   = "\x1f\x9e"
	LZOP_MAGIC    = "\x89LZO"
	XZ_MAGIC      = "\xfd7zXZ"
	BZIP_MAGIC    = "BZh"
	LZ4_LEG_MAGIC = "\x02\x21\x4c\x18"
	LZ41_MAGIC    = "\x03\x21\x4c\x18"
	LZ42_MAGIC    = "\x04\x22\x4d\x18"
	DTB_MAGIC     = "\xd0\x0d\xfe\xed"
	ZIMAGE_MAGIC  = "\x18\x28\x6f\x01"
)

func COMPRESSED(f Format) bool {
	return f >= GZIP && f <= LZOP
}

// CheckFmt sniffs the format of buf from its leading magic.
func CheckFmt(buf []byte) Format {
	match := func(p string) bool {
		return bytes.HasPrefix(buf, []byte(p))
	}

	switch {
	case match(GZIP1_MAGIC) || match(GZIP2_MAGIC):
		return GZIP
	case match(LZOP_MAGIC):
		return LZOP
	case match(XZ_MAGIC):
		return XZ
	case len(buf) >= 13 && match("\x5d\x00\x00") && (buf[12] == 0xff || buf[12] == 0x00):
		return LZMA
	case match(BZIP_MAGIC):
		return BZIP2
	case match(LZ41_MAGIC) || match(LZ42_MAGIC):
		return LZ4
	case match(LZ4_LEG_MAGIC):
		return LZ4_LEGACY
	case match(DTB_MAGIC):
		return DTB
	case hasPrefix(buf, 0x24, ZIMAGE_MAGIC):
		return ZIMAGE
	default:
		return RAW
	}
}

func (f Format) String() string {
	switch f {
	case GZIP:
		return "gzip"
	case LZOP:
		return "lzop"
	case XZ:
		return "xz"
	case LZMA:
		return "lzma"
	case BZIP2:
		return "bzip2"
	case LZ4:
		return "lz4"
	case LZ4_LEGACY:
		return "lz4_legacy"
	case DTB:
		return "dtb"
	case ZIMAGE:
		return "zimage"
	default:
		return "raw"
	}
}
