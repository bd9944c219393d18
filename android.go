package bootimg

import (
	"bytes"
	"crypto/sha1"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"bootimg/log"
)

const BOOT_MAGIC_SIZE = 8
const BOOT_NAME_SIZE = 16
const BOOT_ARGS_SIZE = 512
const BOOT_EXTRA_ARGS_SIZE = 1024
const BOOT_HDR_SIZE = 1632

// Magic is searched for in the first 512 bytes.
const BOOT_SEARCH_RANGE = 512

const (
	DEFAULT_PAGE_SIZE      = 2048
	DEFAULT_BASE           = 0x10000000
	DEFAULT_KERNEL_OFFSET  = 0x00008000
	DEFAULT_RAMDISK_OFFSET = 0x01000000
	DEFAULT_SECOND_OFFSET  = 0x00f00000
	DEFAULT_TAGS_OFFSET    = 0x00000100
)

type BootImgHdr struct {
	Magic        [BOOT_MAGIC_SIZE]byte
	KernelSize   uint32 // size in bytes
	KernelAddr   uint32 // physical load addr
	RamdiskSize  uint32 // size in bytes
	RamdiskAddr  uint32 // physical load addr
	SecondSize   uint32 // size in bytes
	SecondAddr   uint32 // physical load addr
	TagsAddr     uint32 // physical addr for kernel tags
	PageSize     uint32 // flash page size we assume
	DtSize       uint32 // device tree in bytes
	Unused       uint32
	Name         [BOOT_NAME_SIZE]byte
	Cmdline      [BOOT_ARGS_SIZE]byte
	Id           [8]uint32 // sha1 digest, zero padded
	ExtraCmdline [BOOT_EXTRA_ARGS_SIZE]byte
} // 总大小: 8 + 10*4 + 16 + 512 + 32 + 1024 = 1632 字节

func (h *BootImgHdr) bytes() []byte {
	var buf bytes.Buffer
	buf.Grow(BOOT_HDR_SIZE)
	binary.Write(&buf, binary.LittleEndian, h)
	return buf.Bytes()
}

func (h *BootImgHdr) dump() {
	if !log.DebugEnabled() {
		return
	}
	log.Debugf("Android header:")
	log.Debugf("- magic:        %q", h.Magic[:])
	log.Debugf("- kernel_size:  %d", h.KernelSize)
	log.Debugf("- kernel_addr:  0x%08x", h.KernelAddr)
	log.Debugf("- ramdisk_size: %d", h.RamdiskSize)
	log.Debugf("- ramdisk_addr: 0x%08x", h.RamdiskAddr)
	log.Debugf("- second_size:  %d", h.SecondSize)
	log.Debugf("- second_addr:  0x%08x", h.SecondAddr)
	log.Debugf("- tags_addr:    0x%08x", h.TagsAddr)
	log.Debugf("- page_size:    %d", h.PageSize)
	log.Debugf("- dt_size:      %d", h.DtSize)
	log.Debugf("- unused:       0x%08x", h.Unused)
	log.Debugf("- name:         %s", cString(h.Name[:]))
	log.Debugf("- cmdline:      %s", cString(h.Cmdline[:]))
	log.Debugf("- id:           %s", hex.EncodeToString(idBytes(h.Id)))
}

// findHeader returns the offset of the Android magic within the search
// range, provided a whole header fits behind it.
func findHeader(data []byte, searchRange int) (int, bool) {
	if len(data) < BOOT_HDR_SIZE {
		return 0, false
	}
	limit := min(searchRange, len(data)-BOOT_HDR_SIZE)
	idx := bytes.Index(data[:limit+BOOT_MAGIC_SIZE], []byte(BOOT_MAGIC))
	if idx < 0 {
		return 0, false
	}
	return idx, true
}

func readBootHdr(data []byte, offset int) (*BootImgHdr, error) {
	if err := checkRange(uint64(len(data)), uint64(offset), BOOT_HDR_SIZE); err != nil {
		return nil, fmt.Errorf("boot image header: %w", err)
	}
	hdr := &BootImgHdr{}
	if err := binary.Read(bytes.NewReader(data[offset:]), binary.LittleEndian, hdr); err != nil {
		return nil, err
	}
	return hdr, nil
}

// loadHeader locates, reads and validates the Android header and copies
// its scalar fields into the model.
func (c *androidCodec) loadHeader(data []byte) (*BootImgHdr, int, error) {
	idx, ok := findHeader(data, BOOT_SEARCH_RANGE)
	if !ok {
		return nil, 0, fmt.Errorf("failed to find Android header: %w", ErrNotRecognized)
	}
	log.Debugf("Found Android boot image header at: %d", idx)

	hdr, err := readBootHdr(data, idx)
	if err != nil {
		return nil, 0, err
	}
	if !validPageSize(hdr.PageSize) {
		return nil, 0, fmt.Errorf("%w: %d", ErrInvalidPageSize, hdr.PageSize)
	}
	hdr.dump()

	c.i.copyHeader(hdr)
	return hdr, idx, nil
}

func (i *intermediate) copyHeader(hdr *BootImgHdr) {
	i.kernelAddr = hdr.KernelAddr
	i.ramdiskAddr = hdr.RamdiskAddr
	i.secondAddr = hdr.SecondAddr
	i.tagsAddr = hdr.TagsAddr
	i.pageSize = hdr.PageSize
	i.boardName = cString(hdr.Name[:])
	i.cmdline = cString(hdr.Cmdline[:])
	i.hdrKernelSize = hdr.KernelSize
	i.hdrRamdiskSize = hdr.RamdiskSize
	i.hdrSecondSize = hdr.SecondSize
	i.hdrDtSize = hdr.DtSize
	i.hdrUnused = hdr.Unused
	i.hdrId = hdr.Id
}

// bootHdr builds a header from the model scalars. Size and id fields are
// left for the caller.
func (i *intermediate) bootHdr() *BootImgHdr {
	hdr := &BootImgHdr{
		KernelAddr:  i.kernelAddr,
		RamdiskAddr: i.ramdiskAddr,
		SecondAddr:  i.secondAddr,
		TagsAddr:    i.tagsAddr,
		PageSize:    i.pageSize,
		Unused:      i.hdrUnused,
	}
	copy(hdr.Magic[:], BOOT_MAGIC)
	putCString(hdr.Name[:], i.boardName)
	putCString(hdr.Cmdline[:], i.cmdline)
	return hdr
}

func idBytes(id [8]uint32) []byte {
	b := make([]byte, 32)
	for n, v := range id {
		binary.LittleEndian.PutUint32(b[n*4:], v)
	}
	return b
}

// computeId hashes the sections the way mkbootimg does. The second size is
// always hashed, even when there is no second image.
func computeId(hdr *BootImgHdr, kernel, ramdisk, second, dt []byte) [8]uint32 {
	h := sha1.New()
	h.Write(kernel)
	writeLE32(h, hdr.KernelSize)
	h.Write(ramdisk)
	writeLE32(h, hdr.RamdiskSize)
	if len(second) > 0 {
		h.Write(second)
	}
	writeLE32(h, hdr.SecondSize)
	if len(dt) > 0 {
		h.Write(dt)
		writeLE32(h, hdr.DtSize)
	}

	var digest [32]byte
	copy(digest[:], h.Sum(nil))
	var id [8]uint32
	for n := range id {
		id[n] = binary.LittleEndian.Uint32(digest[n*4:])
	}
	log.Debugf("Computed new ID hash: %s", hex.EncodeToString(digest[:sha1.Size]))
	return id
}

// buildAndroid fills in the size and id fields of hdr and lays out the
// header followed by each page aligned section. Empty second and dt
// sections are omitted.
func buildAndroid(hdr *BootImgHdr, kernel, ramdisk, second, dt []byte) ([]byte, error) {
	var err error
	if hdr.KernelSize, err = sizeU32("kernel", kernel); err != nil {
		return nil, err
	}
	if hdr.RamdiskSize, err = sizeU32("ramdisk", ramdisk); err != nil {
		return nil, err
	}
	if hdr.SecondSize, err = sizeU32("second", second); err != nil {
		return nil, err
	}
	if hdr.DtSize, err = sizeU32("dt", dt); err != nil {
		return nil, err
	}
	hdr.Id = computeId(hdr, kernel, ramdisk, second, dt)

	page := uint64(hdr.PageSize)
	total := alignTo(BOOT_HDR_SIZE, page)
	for _, s := range [][]byte{kernel, ramdisk, second, dt} {
		if total, err = checkedAdd(total, alignTo(uint64(len(s)), page)); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	buf.Grow(int(total))
	writePadded(&buf, hdr.bytes(), hdr.PageSize)
	writePadded(&buf, kernel, hdr.PageSize)
	writePadded(&buf, ramdisk, hdr.PageSize)
	if len(second) > 0 {
		writePadded(&buf, second, hdr.PageSize)
	}
	if len(dt) > 0 {
		writePadded(&buf, dt, hdr.PageSize)
	}
	return buf.Bytes(), nil
}

func androidIsValid(data []byte) bool {
	_, ok := findHeader(data, BOOT_SEARCH_RANGE)
	return ok
}

type androidCodec struct {
	i *intermediate
}

func (c *androidCodec) loadImage(data []byte) error {
	hdr, idx, err := c.loadHeader(data)
	if err != nil {
		return err
	}

	r := newSectionReader(data, uint64(idx))
	if err := r.skip(alignTo(BOOT_HDR_SIZE, uint64(hdr.PageSize))); err != nil {
		return err
	}

	kernel, err := r.page("kernel", uint64(hdr.KernelSize), hdr.PageSize)
	if err != nil {
		return err
	}
	ramdisk, err := r.page("ramdisk", uint64(hdr.RamdiskSize), hdr.PageSize)
	if err != nil {
		return err
	}
	second, err := r.page("second bootloader", uint64(hdr.SecondSize), hdr.PageSize)
	if err != nil {
		return err
	}
	dt, err := r.page("device tree", uint64(hdr.DtSize), hdr.PageSize)
	if err != nil {
		return err
	}

	c.i.setKernel(kernel)
	c.i.setRamdisk(ramdisk)
	c.i.setSecond(second)
	c.i.setDt(dt)
	return nil
}

func (c *androidCodec) createImage() ([]byte, error) {
	if !validPageSize(c.i.pageSize) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPageSize, c.i.pageSize)
	}
	return buildAndroid(c.i.bootHdr(), c.i.kernelImage, c.i.ramdiskImage, c.i.secondImage, c.i.dtImage)
}
