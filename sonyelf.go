package bootimg

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"fmt"

	"bootimg/log"
)

const (
	SONY_EHDR_SIZE = 52
	SONY_PHDR_SIZE = 32
	// Segment data starts after the first 4096 bytes.
	SONY_DATA_OFFSET = 4096
)

const (
	SONY_E_TYPE_KERNEL  = 1
	SONY_E_TYPE_RAMDISK = 1
	SONY_E_TYPE_IPL     = 1
	SONY_E_TYPE_CMDLINE = 4
	SONY_E_TYPE_RPM     = 1
	SONY_E_TYPE_APPSBL  = 1
	SONY_E_TYPE_SIN     = 0x53494e21 // "SIN!"

	SONY_E_FLAGS_KERNEL  = 0x00000000
	SONY_E_FLAGS_RAMDISK = 0x80000000
	SONY_E_FLAGS_IPL     = 0x40000000
	SONY_E_FLAGS_CMDLINE = 0x20000000
	SONY_E_FLAGS_RPM     = 0x01000000
	SONY_E_FLAGS_APPSBL  = 0x02000000
)

func sonyIsValid(data []byte) bool {
	return len(data) >= SONY_EHDR_SIZE && hasPrefix(data, 0, SONY_E_IDENT)
}

func dumpEhdr(hdr *elf.Header32) {
	log.Debugf("ELF32 header:")
	log.Debugf("- e_type:      %d", hdr.Type)
	log.Debugf("- e_machine:   %d", hdr.Machine)
	log.Debugf("- e_entry:     0x%08x", hdr.Entry)
	log.Debugf("- e_phoff:     %d", hdr.Phoff)
	log.Debugf("- e_phnum:     %d", hdr.Phnum)
}

func dumpPhdr(phdr *elf.Prog32, n int) {
	log.Debugf("ELF32 program segment header %d:", n)
	log.Debugf("- p_type:      0x%08x", phdr.Type)
	log.Debugf("- p_offset:    %d", phdr.Off)
	log.Debugf("- p_vaddr:     0x%08x", phdr.Vaddr)
	log.Debugf("- p_memsz:     %d", phdr.Memsz)
	log.Debugf("- p_flags:     0x%08x", phdr.Flags)
}

func encodeLE(v interface{}) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, v)
	return buf.Bytes()
}

type sonyElfCodec struct {
	i    *intermediate
	warn warnFunc
}

func (c *sonyElfCodec) loadImage(data []byte) error {
	size := uint64(len(data))
	if err := checkRange(size, 0, SONY_EHDR_SIZE); err != nil {
		return fmt.Errorf("ELF32 header: %w", err)
	}
	hdr := &elf.Header32{}
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, hdr); err != nil {
		return err
	}
	dumpEhdr(hdr)

	c.i.entrypoint = hdr.Entry
	off := uint64(hdr.Phoff)
	for n := 0; n < int(hdr.Phnum); n++ {
		if err := checkRange(size, off, SONY_PHDR_SIZE); err != nil {
			return fmt.Errorf("ELF32 program segment header %d: %w", n, err)
		}
		phdr := &elf.Prog32{}
		if err := binary.Read(bytes.NewReader(data[off:]), binary.LittleEndian, phdr); err != nil {
			return err
		}
		off += SONY_PHDR_SIZE

		if err := checkRange(size, uint64(phdr.Off), uint64(phdr.Memsz)); err != nil {
			return fmt.Errorf("program segment %d data: %w", n, err)
		}
		dumpPhdr(phdr, n)

		begin := uint64(phdr.Off)
		end := begin + uint64(phdr.Memsz)
		segment := func() []byte { return cloneBytes(data[begin:end]) }

		switch {
		case phdr.Type == SONY_E_TYPE_KERNEL && phdr.Flags == SONY_E_FLAGS_KERNEL:
			c.i.setKernel(segment())
			c.i.kernelAddr = phdr.Vaddr
		case phdr.Type == SONY_E_TYPE_RAMDISK && phdr.Flags == SONY_E_FLAGS_RAMDISK:
			c.i.setRamdisk(segment())
			c.i.ramdiskAddr = phdr.Vaddr
		case phdr.Type == SONY_E_TYPE_IPL && phdr.Flags == SONY_E_FLAGS_IPL:
			c.i.iplImage = segment()
			c.i.iplAddr = phdr.Vaddr
		case phdr.Type == SONY_E_TYPE_CMDLINE && phdr.Flags == SONY_E_FLAGS_CMDLINE:
			c.i.cmdline = string(data[begin:end])
		case phdr.Type == SONY_E_TYPE_RPM && phdr.Flags == SONY_E_FLAGS_RPM:
			c.i.rpmImage = segment()
			c.i.rpmAddr = phdr.Vaddr
		case phdr.Type == SONY_E_TYPE_APPSBL && phdr.Flags == SONY_E_FLAGS_APPSBL:
			c.i.appsblImage = segment()
			c.i.appsblAddr = phdr.Vaddr
		case phdr.Type == SONY_E_TYPE_SIN:
			// Two bytes past p_memsz belong to the SIN image in every
			// known image.
			if end+2 > size {
				c.warn("Trailing two bytes after \"SIN!\" image are truncated")
			} else if data[end] == 0 && data[end+1] == 0 {
				c.warn("Trailing two bytes after \"SIN!\" image are zero")
			} else {
				end += 2
			}
			c.i.sonySinImage = segment()

			sinHdr := *phdr
			sinHdr.Off = 0
			c.i.sonySinHdr = encodeLE(&sinHdr)
		default:
			return fmt.Errorf("invalid type and/or flags in ELF32 program segment header %d", n)
		}
	}

	return nil
}

type sonySegment struct {
	typ, flags uint32
	addr       uint32
	data       []byte
}

func (c *sonyElfCodec) createImage() ([]byte, error) {
	segments := []sonySegment{
		{SONY_E_TYPE_KERNEL, SONY_E_FLAGS_KERNEL, c.i.kernelAddr, c.i.kernelImage},
		{SONY_E_TYPE_RAMDISK, SONY_E_FLAGS_RAMDISK, c.i.ramdiskAddr, c.i.ramdiskImage},
		{SONY_E_TYPE_CMDLINE, SONY_E_FLAGS_CMDLINE, 0, []byte(c.i.cmdline)},
		{SONY_E_TYPE_IPL, SONY_E_FLAGS_IPL, c.i.iplAddr, c.i.iplImage},
		{SONY_E_TYPE_RPM, SONY_E_FLAGS_RPM, c.i.rpmAddr, c.i.rpmImage},
		{SONY_E_TYPE_APPSBL, SONY_E_FLAGS_APPSBL, c.i.appsblAddr, c.i.appsblImage},
	}
	var present []sonySegment
	for _, s := range segments {
		if len(s.data) > 0 {
			present = append(present, s)
		}
	}
	haveSin := len(c.i.sonySinImage) > 0 && len(c.i.sonySinHdr) > 0

	phnum := len(present)
	if haveSin {
		phnum++
	}

	entry := c.i.entrypoint
	if entry == 0 && len(c.i.kernelImage) > 0 {
		entry = c.i.kernelAddr
	}

	hdr := elf.Header32{
		Type:      2,
		Machine:   40,
		Version:   1,
		Entry:     entry,
		Phoff:     SONY_EHDR_SIZE,
		Ehsize:    SONY_EHDR_SIZE,
		Phentsize: SONY_PHDR_SIZE,
		Phnum:     uint16(phnum),
	}
	copy(hdr.Ident[:], SONY_E_IDENT)

	var buf bytes.Buffer
	buf.Write(encodeLE(&hdr))

	offset := uint64(SONY_DATA_OFFSET)
	for _, s := range present {
		n, err := sizeU32("segment", s.data)
		if err != nil {
			return nil, err
		}
		if offset > 0xffffffff {
			return nil, fmt.Errorf("segment offset: %w", ErrTooLarge)
		}
		phdr := elf.Prog32{
			Type:   s.typ,
			Off:    uint32(offset),
			Vaddr:  s.addr,
			Paddr:  s.addr,
			Filesz: n,
			Memsz:  n,
			Flags:  s.flags,
		}
		buf.Write(encodeLE(&phdr))
		offset += uint64(n)
	}

	if haveSin {
		if len(c.i.sonySinHdr) != SONY_PHDR_SIZE {
			return nil, fmt.Errorf("the sin header is not %d bytes", SONY_PHDR_SIZE)
		}
		phdr := &elf.Prog32{}
		if err := binary.Read(bytes.NewReader(c.i.sonySinHdr), binary.LittleEndian, phdr); err != nil {
			return nil, err
		}
		// The sin image directly follows the phdrs
		phdr.Off = uint32(SONY_EHDR_SIZE + phnum*SONY_PHDR_SIZE)

		sinSize := uint64(len(c.i.sonySinImage))
		if uint64(phdr.Filesz)+2 == sinSize {
			log.Debugf("The sin image contains the two unidentified trailing bytes")
		} else if uint64(phdr.Filesz) != sinSize {
			return nil, fmt.Errorf("the sin image size does not match the size in the phdr")
		}
		if uint64(phdr.Off)+uint64(phdr.Filesz) >= SONY_DATA_OFFSET || uint64(phdr.Off)+sinSize > SONY_DATA_OFFSET {
			return nil, fmt.Errorf("the sin image does not fit within the first %d bytes", SONY_DATA_OFFSET)
		}

		buf.Write(encodeLE(phdr))
		buf.Write(c.i.sonySinImage)
	}

	// Pad to 4096 bytes
	buf.Write(make([]byte, SONY_DATA_OFFSET-buf.Len()))

	for _, s := range present {
		buf.Write(s.data)
	}
	return buf.Bytes(), nil
}
