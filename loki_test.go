package bootimg_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"bootimg"
)

const checkSigsAddr = 0x88e00800

// abootImage returns a fake aboot loaded at base whose check_sigs prologue
// sits at 0x800.
func abootImage(size int, base uint32) []byte {
	aboot := fill(size, 0x11)
	binary.LittleEndian.PutUint32(aboot[12:], base+0x28)
	copy(aboot[0x800:], []byte{0x2d, 0xe9, 0xf0, 0x41, 0x86, 0xb0, 0xf1, 0xf7})
	return aboot
}

func lokiSample() testImage {
	ti := sampleImage()
	ti.second = nil
	return ti
}

func TestLokiNeedsAboot(t *testing.T) {
	img, err := bootimg.Load(lokiSample().build())
	require.NoError(t, err)
	img.SetTargetVariant(bootimg.LOKI)

	_, err = img.Create()
	var berr *bootimg.BuildError
	require.True(t, errors.As(err, &berr))
	require.Equal(t, bootimg.LOKI, berr.Variant)
	require.True(t, errors.Is(err, bootimg.ErrNoAboot))
}

func TestLokiRoundTrip(t *testing.T) {
	ti := lokiSample()
	android := ti.build()

	img, err := bootimg.Load(android)
	require.NoError(t, err)
	require.True(t, img.Supports(bootimg.SUPPORTS_SECOND_IMAGE))
	img.SetTargetVariant(bootimg.LOKI)
	require.False(t, img.Supports(bootimg.SUPPORTS_SECOND_IMAGE))
	require.True(t, img.Supports(bootimg.SUPPORTS_ABOOT_IMAGE))
	img.SetAbootImage(abootImage(4096, 0x88e00000))

	data, err := img.Create()
	require.NoError(t, err)
	require.Equal(t, "LOKI", string(data[0x400:0x404]))
	require.Equal(t, uint32(checkSigsAddr), binary.LittleEndian.Uint32(data[20:]))
	// still a readable Android image
	require.True(t, bootimg.ANDROID.Match(data))

	v, ok := bootimg.Detect(data)
	require.True(t, ok)
	require.Equal(t, bootimg.LOKI, v)

	loaded, err := bootimg.Load(data)
	require.NoError(t, err)
	require.Equal(t, bootimg.LOKI, loaded.SourceVariant())
	require.Equal(t, bootimg.ANDROID, loaded.TargetVariant())
	require.Equal(t, ti.kernel, loaded.KernelImage())
	require.Equal(t, ti.ramdisk, loaded.RamdiskImage())
	require.Equal(t, ti.dt, loaded.DeviceTreeImage())
	require.Equal(t, ti.ramdiskAddr, loaded.RamdiskAddress())
	require.Equal(t, img.ID(), loaded.ID())

	unwrapped, err := loaded.Create()
	require.NoError(t, err)
	require.True(t, bytes.Equal(android, unwrapped), "unwrapped image differs from the original")
}

// A check_sigs address outside 0x0fa00000..0x88f00000 carries a full page
// of aboot code ahead of the device tree.
func TestLokiPageSizedFakeArea(t *testing.T) {
	ti := lokiSample()
	ti.page = 4096
	android := ti.build()

	img, err := bootimg.Load(android)
	require.NoError(t, err)
	img.SetTargetVariant(bootimg.LOKI)
	img.SetAbootImage(abootImage(8192, 0x00200000))

	data, err := img.Create()
	require.NoError(t, err)
	require.Equal(t, uint32(0x00200800), binary.LittleEndian.Uint32(data[20:]))
	// header, kernel, ramdisk, aboot page, device tree
	require.Len(t, data, 5*4096)
	require.Equal(t, ti.dt, data[4*4096:4*4096+len(ti.dt)])

	loaded, err := bootimg.Load(data)
	require.NoError(t, err)
	require.Equal(t, bootimg.LOKI, loaded.SourceVariant())
	require.Equal(t, ti.dt, loaded.DeviceTreeImage())
	require.Equal(t, ti.ramdiskAddr, loaded.RamdiskAddress())

	unwrapped, err := loaded.Create()
	require.NoError(t, err)
	require.True(t, bytes.Equal(android, unwrapped), "unwrapped image differs from the original")
}

func TestLokiOldStyleImage(t *testing.T) {
	const page = 2048
	le := binary.LittleEndian

	kernel := fill(64, 0x55)
	le.PutUint32(kernel[0x2c:], 64)

	data := make([]byte, 6144)
	copy(data, "ANDROID!")
	le.PutUint32(data[8:], 0x1000)
	le.PutUint32(data[12:], 0x80208000)
	le.PutUint32(data[16:], 0x1000)
	le.PutUint32(data[20:], checkSigsAddr)
	le.PutUint32(data[36:], page)
	copy(data[0x400:], "LOKI")
	copy(data[page:], kernel)
	copy(data[4096:], []byte{0x1f, 0x8b, 0x08, 0x08})
	copy(data[4100:], fill(28, 0x33))
	data = append(data, fill(0x200, 0x44)...)

	img, err := bootimg.Load(data)
	require.NoError(t, err)
	require.Equal(t, bootimg.LOKI, img.SourceVariant())
	require.Equal(t, kernel, img.KernelImage())
	require.Len(t, img.RamdiskImage(), 32)
	require.Equal(t, []byte{0x1f, 0x8b, 0x08, 0x08}, img.RamdiskImage()[:4])
	require.Equal(t, uint32(0x80200100), img.KernelTagsAddress())
	require.Equal(t, uint32(0x82200000), img.RamdiskAddress())
	require.Empty(t, img.DeviceTreeImage())
	require.Equal(t, uint32(64), img.KernelSize())
	require.Equal(t, uint32(32), img.RamdiskSize())
}

func TestLokiMissingGzipRamdisk(t *testing.T) {
	le := binary.LittleEndian
	data := make([]byte, 8192)
	copy(data, "ANDROID!")
	le.PutUint32(data[12:], 0x80208000)
	le.PutUint32(data[36:], 2048)
	copy(data[0x400:], "LOKI")
	le.PutUint32(data[2048+0x2c:], 64)

	_, err := bootimg.Load(data)
	var perr *bootimg.ParseError
	require.True(t, errors.As(err, &perr))
	require.Equal(t, bootimg.LOKI, perr.Variant)
}
