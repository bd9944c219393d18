package bootimg

import "bytes"

// intermediate holds every field any variant reads or writes. Codecs edit
// it in place; the BootImage owns exactly one.
type intermediate struct {
	boardName   string
	cmdline     string
	pageSize    uint32
	kernelAddr  uint32
	ramdiskAddr uint32
	secondAddr  uint32
	tagsAddr    uint32
	iplAddr     uint32
	rpmAddr     uint32
	appsblAddr  uint32
	entrypoint  uint32

	// Raw header fields. The sizes always track the payload lengths.
	hdrKernelSize  uint32
	hdrRamdiskSize uint32
	hdrSecondSize  uint32
	hdrDtSize      uint32
	hdrUnused      uint32
	hdrId          [8]uint32

	kernelImage   []byte
	ramdiskImage  []byte
	secondImage   []byte
	dtImage       []byte
	abootImage    []byte
	mtkKernelHdr  []byte
	mtkRamdiskHdr []byte
	iplImage      []byte
	rpmImage      []byte
	appsblImage   []byte
	sonySinImage  []byte
	sonySinHdr    []byte
}

func (i *intermediate) setKernel(b []byte) {
	i.kernelImage = b
	i.hdrKernelSize = uint32(len(b))
}

func (i *intermediate) setRamdisk(b []byte) {
	i.ramdiskImage = b
	i.hdrRamdiskSize = uint32(len(b))
}

func (i *intermediate) setSecond(b []byte) {
	i.secondImage = b
	i.hdrSecondSize = uint32(len(b))
}

func (i *intermediate) setDt(b []byte) {
	i.dtImage = b
	i.hdrDtSize = uint32(len(b))
}

// equal compares content only; the variant that produced either side is
// not part of the model. The unused header word is ignored.
func (i *intermediate) equal(o *intermediate) bool {
	blobs := [][2][]byte{
		{i.kernelImage, o.kernelImage},
		{i.ramdiskImage, o.ramdiskImage},
		{i.secondImage, o.secondImage},
		{i.dtImage, o.dtImage},
		{i.abootImage, o.abootImage},
		{i.mtkKernelHdr, o.mtkKernelHdr},
		{i.mtkRamdiskHdr, o.mtkRamdiskHdr},
		{i.iplImage, o.iplImage},
		{i.rpmImage, o.rpmImage},
		{i.appsblImage, o.appsblImage},
		{i.sonySinImage, o.sonySinImage},
		{i.sonySinHdr, o.sonySinHdr},
	}
	for _, b := range blobs {
		if !bytes.Equal(b[0], b[1]) {
			return false
		}
	}

	return i.boardName == o.boardName &&
		i.cmdline == o.cmdline &&
		i.pageSize == o.pageSize &&
		i.kernelAddr == o.kernelAddr &&
		i.ramdiskAddr == o.ramdiskAddr &&
		i.secondAddr == o.secondAddr &&
		i.tagsAddr == o.tagsAddr &&
		i.iplAddr == o.iplAddr &&
		i.rpmAddr == o.rpmAddr &&
		i.appsblAddr == o.appsblAddr &&
		i.entrypoint == o.entrypoint &&
		i.hdrKernelSize == o.hdrKernelSize &&
		i.hdrRamdiskSize == o.hdrRamdiskSize &&
		i.hdrSecondSize == o.hdrSecondSize &&
		i.hdrDtSize == o.hdrDtSize &&
		i.hdrId == o.hdrId
}
