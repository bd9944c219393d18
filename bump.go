package bootimg

// Bump images are Android images followed by a fixed 16 byte signature
// that LG bootloaders accept in place of a real one.

func bumpIsValid(data []byte) bool {
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
	for _, n := range []uint32{hdr.KernelSize, hdr.RamdiskSize, hdr.SecondSize, hdr.DtSize} {
		if checkRange(size, pos, uint64(n)) != nil {
			return false
		}
		if pos, err = checkedAdd(pos, alignTo(uint64(n), page)); err != nil {
			return false
		}
	}

	if checkRange(size, pos, uint64(len(LG_BUMP_MAGIC))) != nil {
		return false
	}
	return hasPrefix(data, int(pos), LG_BUMP_MAGIC)
}

type bumpCodec struct {
	androidCodec
}

func (c *bumpCodec) createImage() ([]byte, error) {
	data, err := c.androidCodec.createImage()
	if err != nil {
		return nil, err
	}
	return append(data, LG_BUMP_MAGIC...), nil
}
