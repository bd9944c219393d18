package bootimg

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"bootimg/log"
)

const LOKI_MAGIC_OFFSET = 0x400
const LOKI_HDR_SIZE = 148

type LokiHdr struct {
	Magic           [4]byte
	Recovery        uint32 // 0 = boot.img, 1 = recovery.img
	Build           [128]byte
	OrigKernelSize  uint32
	OrigRamdiskSize uint32
	RamdiskAddr     uint32
}

func (h *LokiHdr) dump() {
	log.Debugf("Loki header:")
	log.Debugf("- magic:             %s", h.Magic[:])
	log.Debugf("- recovery:          %d", h.Recovery)
	log.Debugf("- build:             %s", cString(h.Build[:]))
	log.Debugf("- orig_kernel_size:  %d", h.OrigKernelSize)
	log.Debugf("- orig_ramdisk_size: %d", h.OrigRamdiskSize)
	log.Debugf("- ramdisk_addr:      0x%08x", h.RamdiskAddr)
}

// Shellcode injected over check_sigs. The 0xffffffff slot receives the
// address of the boot image header and the 0xeeeeeeee slot receives the
// real ramdisk address.
var LOKI_SHELLCODE = []byte{
	0xfe, 0xb5, 0x0d, 0x4d, 0xd5, 0xf8, 0x88, 0x04,
	0xab, 0x68, 0x98, 0x42, 0x12, 0xd0, 0xd5, 0xf8,
	0x90, 0x64, 0x0a, 0x4c, 0xd5, 0xf8, 0x8c, 0x74,
	0x07, 0xf5, 0x80, 0x57, 0x0f, 0xce, 0x0f, 0xc4,
	0x10, 0x3f, 0xfb, 0xdc, 0xd5, 0xf8, 0x88, 0x04,
	0x04, 0x49, 0xd5, 0xf8, 0x8c, 0x24, 0xa8, 0x60,
	0x69, 0x61, 0x2a, 0x61, 0x00, 0x20, 0xfe, 0xbd,
	0xff, 0xff, 0xff, 0xff, 0xee, 0xee, 0xee, 0xee,
}

const (
	LOKI_SHELLCODE_PREFIX_SIZE  = 56
	LOKI_SHELLCODE_HDR_SLOT     = 56
	LOKI_SHELLCODE_RAMDISK_SLOT = 60
)

// check_sigs prologues of the supported aboot builds.
var LOKI_CHECK_SIGS_PATTERNS = [][]byte{
	{0xf0, 0xb5, 0x8f, 0xb0, 0x06, 0x46, 0xf0, 0xf7},
	{0xf0, 0xb5, 0x8f, 0xb0, 0x07, 0x46, 0xf0, 0xf7},
	{0x2d, 0xe9, 0xf0, 0x41, 0x86, 0xb0, 0xf1, 0xf7},
	{0x2d, 0xe9, 0xf0, 0x4f, 0xad, 0xf5, 0xc6, 0x6d},
	{0x2d, 0xe9, 0xf0, 0x4f, 0xad, 0xf5, 0x21, 0x7d},
	{0x2d, 0xe9, 0xf0, 0x4f, 0xf3, 0xb0, 0x05, 0x46},
}

func lokiIsValid(data []byte) bool {
	return len(data) >= LOKI_MAGIC_OFFSET+LOKI_HDR_SIZE && hasPrefix(data, LOKI_MAGIC_OFFSET, LOKI_MAGIC)
}

func readLokiHdr(data []byte) (*LokiHdr, error) {
	if err := checkRange(uint64(len(data)), LOKI_MAGIC_OFFSET, LOKI_HDR_SIZE); err != nil {
		return nil, fmt.Errorf("loki header: %w", err)
	}
	hdr := &LokiHdr{}
	if err := binary.Read(bytes.NewReader(data[LOKI_MAGIC_OFFSET:]), binary.LittleEndian, hdr); err != nil {
		return nil, err
	}
	return hdr, nil
}

// lokiFakeSize is the amount of aboot code carried between the ramdisk and
// the device tree. It depends on where the patched ramdisk address points.
func lokiFakeSize(hdr *BootImgHdr) uint64 {
	if hdr.RamdiskAddr > 0x88f00000 || hdr.RamdiskAddr < 0xfa00000 {
		return uint64(hdr.PageSize)
	}
	return 0x200
}

func lokiShellcodeRamdiskAddr(data []byte) (uint32, bool) {
	off := bytes.Index(data, LOKI_SHELLCODE[:LOKI_SHELLCODE_PREFIX_SIZE])
	if off < 0 || checkRange(uint64(len(data)), uint64(off), uint64(len(LOKI_SHELLCODE))) != nil {
		return 0, false
	}
	return binary.LittleEndian.Uint32(data[off+LOKI_SHELLCODE_RAMDISK_SLOT:]), true
}

type lokiCodec struct {
	i *intermediate
}

func (c *lokiCodec) loadImage(data []byte) error {
	if !hasPrefix(data, 0, BOOT_MAGIC) {
		return fmt.Errorf("loki image must start with the Android header: %w", ErrNotRecognized)
	}
	hdr, err := readBootHdr(data, 0)
	if err != nil {
		return err
	}
	if !validPageSize(hdr.PageSize) {
		return fmt.Errorf("%w: %d", ErrInvalidPageSize, hdr.PageSize)
	}
	hdr.dump()
	loki, err := readLokiHdr(data)
	if err != nil {
		return err
	}
	loki.dump()

	c.i.copyHeader(hdr)
	c.i.setSecond(nil)

	if loki.OrigKernelSize != 0 && loki.OrigRamdiskSize != 0 && loki.RamdiskAddr != 0 {
		return c.loadNewImage(data, hdr, loki)
	}
	return c.loadOldImage(data, hdr, loki)
}

// loadNewImage handles images patched by loki 2.x, which records the
// original sizes in the loki header.
func (c *lokiCodec) loadNewImage(data []byte, hdr *BootImgHdr, loki *LokiHdr) error {
	ramdiskAddr, ok := lokiShellcodeRamdiskAddr(data)
	if !ok {
		return fmt.Errorf("failed to find loki shellcode")
	}

	r := newSectionReader(data, uint64(hdr.PageSize))
	kernel, err := r.page("kernel", uint64(loki.OrigKernelSize), hdr.PageSize)
	if err != nil {
		return err
	}
	ramdisk, err := r.page("ramdisk", uint64(loki.OrigRamdiskSize), hdr.PageSize)
	if err != nil {
		return err
	}
	if err := r.skip(lokiFakeSize(hdr)); err != nil {
		return err
	}
	dt, err := r.page("device tree", uint64(hdr.DtSize), hdr.PageSize)
	if err != nil {
		return err
	}

	c.i.ramdiskAddr = ramdiskAddr
	c.i.setKernel(kernel)
	c.i.setRamdisk(ramdisk)
	c.i.setDt(dt)
	return nil
}

// loadOldImage handles images from loki 1.x, where the original sizes were
// not saved and the sections have to be found again.
func (c *lokiCodec) loadOldImage(data []byte, hdr *BootImgHdr, loki *LokiHdr) error {
	size := uint64(len(data))
	page := uint64(hdr.PageSize)

	c.i.tagsAddr = hdr.KernelAddr - 0x8000 + 0x100

	// The zImage header stores the end of the kernel at 0x2c.
	if err := checkRange(size, page+0x2c, 4); err != nil {
		return fmt.Errorf("zImage header: %w", err)
	}
	kernelSize := uint64(binary.LittleEndian.Uint32(data[page+0x2c:]))

	r := newSectionReader(data, page)
	kernel, err := r.take("kernel", kernelSize)
	if err != nil {
		return err
	}

	start := int(r.pos)
	off := -1
	for _, flags := range []byte{0x08, 0x00} {
		if i := bytes.Index(data[start:], append([]byte(GZIP_MAGIC), flags)); i >= 0 {
			off = start + i
			break
		}
	}
	if off < 0 {
		return fmt.Errorf("failed to find gzip ramdisk after the kernel")
	}

	// A copy of the patched aboot code occupies the last 0x200 bytes.
	if uint64(off)+0x200 > size {
		return fmt.Errorf("ramdisk at 0x%x overlaps the trailing aboot code", off)
	}
	end := len(data) - 0x200
	for end > off && data[end-1] == 0 {
		end--
	}
	ramdisk := cloneBytes(data[off:end])

	if loki.RamdiskAddr != 0 {
		addr, ok := lokiShellcodeRamdiskAddr(data)
		if !ok {
			return fmt.Errorf("failed to find loki shellcode")
		}
		c.i.ramdiskAddr = addr
	} else {
		c.i.ramdiskAddr = hdr.KernelAddr - 0x8000 + 0x02000000
	}

	c.i.setKernel(kernel)
	c.i.setRamdisk(ramdisk)
	c.i.setDt(nil)
	return nil
}

// lokiFindCheckSigs locates check_sigs in an aboot image and returns its
// load address and file offset.
func lokiFindCheckSigs(aboot []byte) (uint32, int, error) {
	if len(aboot) < 16 {
		return 0, 0, fmt.Errorf("aboot image is too small")
	}
	base := binary.LittleEndian.Uint32(aboot[12:]) - 0x28
	for _, p := range LOKI_CHECK_SIGS_PATTERNS {
		if off := bytes.Index(aboot, p); off >= 0 {
			return base + uint32(off), off, nil
		}
	}
	return 0, 0, fmt.Errorf("failed to find check_sigs in aboot image")
}

func (c *lokiCodec) createImage() ([]byte, error) {
	if len(c.i.abootImage) == 0 {
		return nil, ErrNoAboot
	}
	if !validPageSize(c.i.pageSize) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPageSize, c.i.pageSize)
	}
	checkSigs, abootOff, err := lokiFindCheckSigs(c.i.abootImage)
	if err != nil {
		return nil, err
	}
	log.Debugf("Found check_sigs at 0x%08x", checkSigs)

	hdr := c.i.bootHdr()
	// Second images are not supported, only the size takes part in the hash.
	data, err := buildAndroid(hdr, c.i.kernelImage, c.i.ramdiskImage, nil, nil)
	if err != nil {
		return nil, err
	}
	if len(c.i.dtImage) > 0 {
		if hdr.DtSize, err = sizeU32("dt", c.i.dtImage); err != nil {
			return nil, err
		}
		hdr.Id = computeId(hdr, c.i.kernelImage, c.i.ramdiskImage, nil, c.i.dtImage)
	}

	origRamdiskAddr := hdr.RamdiskAddr
	hdr.RamdiskAddr = checkSigs
	fakeSize := lokiFakeSize(hdr)
	if checkRange(uint64(len(c.i.abootImage)), uint64(abootOff), fakeSize) != nil {
		return nil, fmt.Errorf("aboot image is too small for a 0x%x byte patch", fakeSize)
	}

	fake := cloneBytes(c.i.abootImage[abootOff : uint64(abootOff)+fakeSize])
	copy(fake, LOKI_SHELLCODE)
	binary.LittleEndian.PutUint32(fake[LOKI_SHELLCODE_HDR_SLOT:], hdr.KernelAddr-0x8000)
	binary.LittleEndian.PutUint32(fake[LOKI_SHELLCODE_RAMDISK_SLOT:], origRamdiskAddr)

	loki := &LokiHdr{
		OrigKernelSize:  hdr.KernelSize,
		OrigRamdiskSize: hdr.RamdiskSize,
		RamdiskAddr:     hdr.KernelAddr + uint32(alignTo(uint64(hdr.KernelSize), uint64(hdr.PageSize))),
	}
	copy(loki.Magic[:], LOKI_MAGIC)

	var buf bytes.Buffer
	buf.Grow(len(data) + int(fakeSize) + int(alignTo(uint64(len(c.i.dtImage)), uint64(hdr.PageSize))))
	buf.Write(data)
	buf.Write(fake)
	if len(c.i.dtImage) > 0 {
		writePadded(&buf, c.i.dtImage, hdr.PageSize)
	}

	out := buf.Bytes()
	copy(out, hdr.bytes())
	var lh bytes.Buffer
	binary.Write(&lh, binary.LittleEndian, loki)
	copy(out[LOKI_MAGIC_OFFSET:], lh.Bytes())
	return out, nil
}
