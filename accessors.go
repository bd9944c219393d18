package bootimg

// Image setters keep a private copy of their argument and update the
// matching size field. Getters return the stored slice, which must not be
// modified.

func (b *BootImage) BoardName() string        { return b.i10e.boardName }
func (b *BootImage) SetBoardName(name string) { b.i10e.boardName = name }

func (b *BootImage) KernelCmdline() string           { return b.i10e.cmdline }
func (b *BootImage) SetKernelCmdline(cmdline string) { b.i10e.cmdline = cmdline }

func (b *BootImage) PageSize() uint32        { return b.i10e.pageSize }
func (b *BootImage) SetPageSize(size uint32) { b.i10e.pageSize = size }

func (b *BootImage) KernelAddress() uint32        { return b.i10e.kernelAddr }
func (b *BootImage) SetKernelAddress(addr uint32) { b.i10e.kernelAddr = addr }

func (b *BootImage) RamdiskAddress() uint32        { return b.i10e.ramdiskAddr }
func (b *BootImage) SetRamdiskAddress(addr uint32) { b.i10e.ramdiskAddr = addr }

func (b *BootImage) SecondBootloaderAddress() uint32        { return b.i10e.secondAddr }
func (b *BootImage) SetSecondBootloaderAddress(addr uint32) { b.i10e.secondAddr = addr }

func (b *BootImage) KernelTagsAddress() uint32        { return b.i10e.tagsAddr }
func (b *BootImage) SetKernelTagsAddress(addr uint32) { b.i10e.tagsAddr = addr }

func (b *BootImage) IplAddress() uint32        { return b.i10e.iplAddr }
func (b *BootImage) SetIplAddress(addr uint32) { b.i10e.iplAddr = addr }

func (b *BootImage) RpmAddress() uint32        { return b.i10e.rpmAddr }
func (b *BootImage) SetRpmAddress(addr uint32) { b.i10e.rpmAddr = addr }

func (b *BootImage) AppsblAddress() uint32        { return b.i10e.appsblAddr }
func (b *BootImage) SetAppsblAddress(addr uint32) { b.i10e.appsblAddr = addr }

func (b *BootImage) EntrypointAddress() uint32        { return b.i10e.entrypoint }
func (b *BootImage) SetEntrypointAddress(addr uint32) { b.i10e.entrypoint = addr }

// SetAddresses sets every Android load address from a base and offsets,
// the way mkbootimg's --base option does.
func (b *BootImage) SetAddresses(base, kernelOffset, ramdiskOffset, secondOffset, tagsOffset uint32) {
	b.i10e.kernelAddr = base + kernelOffset
	b.i10e.ramdiskAddr = base + ramdiskOffset
	b.i10e.secondAddr = base + secondOffset
	b.i10e.tagsAddr = base + tagsOffset
}

func (b *BootImage) ID() [8]uint32      { return b.i10e.hdrId }
func (b *BootImage) SetID(id [8]uint32) { b.i10e.hdrId = id }

func (b *BootImage) Unused() uint32     { return b.i10e.hdrUnused }
func (b *BootImage) SetUnused(v uint32) { b.i10e.hdrUnused = v }

func (b *BootImage) KernelSize() uint32           { return b.i10e.hdrKernelSize }
func (b *BootImage) RamdiskSize() uint32          { return b.i10e.hdrRamdiskSize }
func (b *BootImage) SecondBootloaderSize() uint32 { return b.i10e.hdrSecondSize }
func (b *BootImage) DeviceTreeSize() uint32       { return b.i10e.hdrDtSize }

func (b *BootImage) KernelImage() []byte         { return b.i10e.kernelImage }
func (b *BootImage) SetKernelImage(data []byte)  { b.i10e.setKernel(cloneBytes(data)) }
func (b *BootImage) RamdiskImage() []byte        { return b.i10e.ramdiskImage }
func (b *BootImage) SetRamdiskImage(data []byte) { b.i10e.setRamdisk(cloneBytes(data)) }

func (b *BootImage) SecondBootloaderImage() []byte        { return b.i10e.secondImage }
func (b *BootImage) SetSecondBootloaderImage(data []byte) { b.i10e.setSecond(cloneBytes(data)) }

func (b *BootImage) DeviceTreeImage() []byte        { return b.i10e.dtImage }
func (b *BootImage) SetDeviceTreeImage(data []byte) { b.i10e.setDt(cloneBytes(data)) }

func (b *BootImage) AbootImage() []byte        { return b.i10e.abootImage }
func (b *BootImage) SetAbootImage(data []byte) { b.i10e.abootImage = cloneBytes(data) }

func (b *BootImage) KernelMtkHeader() []byte        { return b.i10e.mtkKernelHdr }
func (b *BootImage) SetKernelMtkHeader(data []byte) { b.i10e.mtkKernelHdr = cloneBytes(data) }

func (b *BootImage) RamdiskMtkHeader() []byte        { return b.i10e.mtkRamdiskHdr }
func (b *BootImage) SetRamdiskMtkHeader(data []byte) { b.i10e.mtkRamdiskHdr = cloneBytes(data) }

func (b *BootImage) IplImage() []byte        { return b.i10e.iplImage }
func (b *BootImage) SetIplImage(data []byte) { b.i10e.iplImage = cloneBytes(data) }

func (b *BootImage) RpmImage() []byte        { return b.i10e.rpmImage }
func (b *BootImage) SetRpmImage(data []byte) { b.i10e.rpmImage = cloneBytes(data) }

func (b *BootImage) AppsblImage() []byte        { return b.i10e.appsblImage }
func (b *BootImage) SetAppsblImage(data []byte) { b.i10e.appsblImage = cloneBytes(data) }

func (b *BootImage) SinImage() []byte        { return b.i10e.sonySinImage }
func (b *BootImage) SetSinImage(data []byte) { b.i10e.sonySinImage = cloneBytes(data) }

func (b *BootImage) SinHeader() []byte        { return b.i10e.sonySinHdr }
func (b *BootImage) SetSinHeader(data []byte) { b.i10e.sonySinHdr = cloneBytes(data) }
