package bootimg

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"bootimg/log"
)

const MTK_HDR_SIZE = 512

type MtkHdr struct {
	Magic   [4]byte
	Size    uint32
	Name    [32]byte
	Padding [472]byte
}

func (h *MtkHdr) bytes() []byte {
	var buf bytes.Buffer
	buf.Grow(MTK_HDR_SIZE)
	binary.Write(&buf, binary.LittleEndian, h)
	return buf.Bytes()
}

func (h *MtkHdr) dump() {
	log.Debugf("MTK header:")
	log.Debugf("- magic:        %x", h.Magic[:])
	log.Debugf("- size:         %d", h.Size)
	log.Debugf("- type:         %s", cString(h.Name[:]))
}

func readMtkHdr(b []byte) (*MtkHdr, error) {
	if len(b) < MTK_HDR_SIZE {
		return nil, fmt.Errorf("MTK header needs %d bytes, have %d", MTK_HDR_SIZE, len(b))
	}
	hdr := &MtkHdr{}
	if err := binary.Read(bytes.NewReader(b), binary.LittleEndian, hdr); err != nil {
		return nil, err
	}
	return hdr, nil
}

func mtkIsValid(data []byte) bool {
	idx, ok := findHeader(data, BOOT_SEARCH_RANGE)
	if !ok {
		return false
	}
	hdr, err := readBootHdr(data, idx)
	if err != nil || !validPageSize(hdr.PageSize) {
		return false
	}
	page := uint64(hdr.PageSize)
	size := uint64(len(data))

	pos := uint64(idx) + alignTo(BOOT_HDR_SIZE, page)
	if checkRange(size, pos, uint64(hdr.KernelSize)) != nil {
		return false
	}
	if hdr.KernelSize >= MTK_HDR_SIZE && hasPrefix(data, int(pos), MTK_MAGIC) {
		return true
	}

	pos += alignTo(uint64(hdr.KernelSize), page)
	if checkRange(size, pos, uint64(hdr.RamdiskSize)) != nil {
		return false
	}
	if hdr.RamdiskSize >= MTK_HDR_SIZE && hasPrefix(data, int(pos), MTK_MAGIC) {
		return true
	}

	// The sub-headers only ever precede the kernel and the ramdisk.
	return false
}

type mtkCodec struct {
	androidCodec
	warn warnFunc
}

// splitMtkHdr detaches a leading sub-header from payload. The stored copy
// has its size counter zeroed since it goes stale as soon as the payload
// is edited.
func splitMtkHdr(payload []byte) (sub, rest []byte, hdr *MtkHdr, err error) {
	hdr, err = readMtkHdr(payload)
	if err != nil {
		return nil, nil, nil, err
	}
	hdr.dump()
	declared := hdr.Size
	hdr.Size = 0
	sub = hdr.bytes()
	rest = cloneBytes(payload[MTK_HDR_SIZE:])
	hdr.Size = declared
	return sub, rest, hdr, nil
}

func (c *mtkCodec) loadImage(data []byte) error {
	if err := c.androidCodec.loadImage(data); err != nil {
		return err
	}

	if len(c.i.kernelImage) >= MTK_HDR_SIZE && hasPrefix(c.i.kernelImage, 0, MTK_MAGIC) {
		sub, rest, hdr, err := splitMtkHdr(c.i.kernelImage)
		if err != nil {
			return err
		}
		expected := uint64(MTK_HDR_SIZE) + uint64(hdr.Size)
		actual := uint64(len(c.i.kernelImage))
		if actual < expected {
			return fmt.Errorf("expected %d byte kernel image, but have %d bytes", expected, actual)
		} else if actual != expected {
			c.warn("Expected %d byte kernel image, but have %d bytes", expected, actual)
			c.warn("Repacked boot image will not be byte-for-byte identical to original")
		}
		c.i.mtkKernelHdr = sub
		c.i.setKernel(rest)
	}

	if len(c.i.ramdiskImage) >= MTK_HDR_SIZE && hasPrefix(c.i.ramdiskImage, 0, MTK_MAGIC) {
		sub, rest, hdr, err := splitMtkHdr(c.i.ramdiskImage)
		if err != nil {
			return err
		}
		expected := uint64(MTK_HDR_SIZE) + uint64(hdr.Size)
		actual := uint64(len(c.i.ramdiskImage))
		// TODO: decide whether an oversized ramdisk should only warn like the kernel does.
		if actual != expected {
			return fmt.Errorf("expected %d byte ramdisk image, but have %d bytes", expected, actual)
		}
		c.i.mtkRamdiskHdr = sub
		c.i.setRamdisk(rest)
	}

	return nil
}

// joinMtkHdr refreshes the size counter of a stored sub-header and puts it
// back in front of the payload.
func joinMtkHdr(name string, sub, payload []byte) ([]byte, error) {
	if len(sub) == 0 {
		return payload, nil
	}
	if len(sub) != MTK_HDR_SIZE {
		return nil, fmt.Errorf("expected %d byte %s MTK header, but have %d bytes", MTK_HDR_SIZE, name, len(sub))
	}
	hdr, err := readMtkHdr(sub)
	if err != nil {
		return nil, err
	}
	if hdr.Size, err = sizeU32(name, payload); err != nil {
		return nil, err
	}
	out := make([]byte, 0, MTK_HDR_SIZE+len(payload))
	out = append(out, hdr.bytes()...)
	return append(out, payload...), nil
}

func (c *mtkCodec) createImage() ([]byte, error) {
	if !validPageSize(c.i.pageSize) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPageSize, c.i.pageSize)
	}
	kernel, err := joinMtkHdr("kernel", c.i.mtkKernelHdr, c.i.kernelImage)
	if err != nil {
		return nil, err
	}
	ramdisk, err := joinMtkHdr("ramdisk", c.i.mtkRamdiskHdr, c.i.ramdiskImage)
	if err != nil {
		return nil, err
	}
	return buildAndroid(c.i.bootHdr(), kernel, ramdisk, c.i.secondImage, c.i.dtImage)
}
