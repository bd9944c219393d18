package bootimg_test

import (
	"bytes"
	"crypto/sha1"
	"encoding/binary"
)

// testImage describes an Android image built independently of the
// package, the way AOSP mkbootimg lays it out.
type testImage struct {
	page        uint32
	kernelAddr  uint32
	ramdiskAddr uint32
	secondAddr  uint32
	tagsAddr    uint32
	name        string
	cmdline     string
	kernel      []byte
	ramdisk     []byte
	second      []byte
	dt          []byte
}

func le32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func pad(b []byte, page uint32) []byte {
	n := (int(page) - len(b)%int(page)) % int(page)
	return append(append([]byte{}, b...), make([]byte, n)...)
}

func mkbootimgId(kernel, ramdisk, second, dt []byte) []byte {
	h := sha1.New()
	h.Write(kernel)
	h.Write(le32(uint32(len(kernel))))
	h.Write(ramdisk)
	h.Write(le32(uint32(len(ramdisk))))
	h.Write(second)
	h.Write(le32(uint32(len(second))))
	if len(dt) > 0 {
		h.Write(dt)
		h.Write(le32(uint32(len(dt))))
	}
	return h.Sum(nil)
}

func (ti testImage) header() []byte {
	le := binary.LittleEndian
	hdr := make([]byte, 1632)
	copy(hdr, "ANDROID!")
	le.PutUint32(hdr[8:], uint32(len(ti.kernel)))
	le.PutUint32(hdr[12:], ti.kernelAddr)
	le.PutUint32(hdr[16:], uint32(len(ti.ramdisk)))
	le.PutUint32(hdr[20:], ti.ramdiskAddr)
	le.PutUint32(hdr[24:], uint32(len(ti.second)))
	le.PutUint32(hdr[28:], ti.secondAddr)
	le.PutUint32(hdr[32:], ti.tagsAddr)
	le.PutUint32(hdr[36:], ti.page)
	le.PutUint32(hdr[40:], uint32(len(ti.dt)))
	copy(hdr[48:63], ti.name)
	copy(hdr[64:575], ti.cmdline)
	copy(hdr[576:608], mkbootimgId(ti.kernel, ti.ramdisk, ti.second, ti.dt))
	return hdr
}

func (ti testImage) build() []byte {
	var buf bytes.Buffer
	buf.Write(pad(ti.header(), ti.page))
	buf.Write(pad(ti.kernel, ti.page))
	buf.Write(pad(ti.ramdisk, ti.page))
	if len(ti.second) > 0 {
		buf.Write(pad(ti.second, ti.page))
	}
	if len(ti.dt) > 0 {
		buf.Write(pad(ti.dt, ti.page))
	}
	return buf.Bytes()
}

func fill(n int, b byte) []byte {
	return bytes.Repeat([]byte{b}, n)
}

func sampleImage() testImage {
	return testImage{
		page:        2048,
		kernelAddr:  0x10008000,
		ramdiskAddr: 0x11000000,
		secondAddr:  0x10f00000,
		tagsAddr:    0x10000100,
		name:        "msm8974",
		cmdline:     "console=ttyHSL0,115200,n8 androidboot.hardware=qcom",
		kernel:      []byte{1, 2, 3, 4, 5},
		ramdisk:     fill(3000, 0xaa),
		second:      fill(10, 0xbb),
		dt:          fill(100, 0xcc),
	}
}

// mtkHdr builds a 512 byte MTK sub-header.
func mtkHdr(size uint32, name string) []byte {
	b := make([]byte, 512)
	copy(b, "\x88\x16\x88\x58")
	binary.LittleEndian.PutUint32(b[4:], size)
	copy(b[8:40], name)
	return b
}
