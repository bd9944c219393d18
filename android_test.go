package bootimg_test

import (
	"bytes"
	"crypto/sha1"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bootimg"
)

func TestAndroidRoundTrip(t *testing.T) {
	ti := sampleImage()
	data := ti.build()

	v, ok := bootimg.Detect(data)
	require.True(t, ok)
	require.Equal(t, bootimg.ANDROID, v)

	img, err := bootimg.Load(data)
	require.NoError(t, err)
	assert.Equal(t, bootimg.ANDROID, img.SourceVariant())
	assert.Equal(t, bootimg.ANDROID, img.TargetVariant())
	assert.Equal(t, ti.name, img.BoardName())
	assert.Equal(t, ti.cmdline, img.KernelCmdline())
	assert.Equal(t, ti.page, img.PageSize())
	assert.Equal(t, ti.kernelAddr, img.KernelAddress())
	assert.Equal(t, ti.ramdiskAddr, img.RamdiskAddress())
	assert.Equal(t, ti.secondAddr, img.SecondBootloaderAddress())
	assert.Equal(t, ti.tagsAddr, img.KernelTagsAddress())
	assert.Equal(t, ti.kernel, img.KernelImage())
	assert.Equal(t, ti.ramdisk, img.RamdiskImage())
	assert.Equal(t, ti.second, img.SecondBootloaderImage())
	assert.Equal(t, ti.dt, img.DeviceTreeImage())
	assert.Empty(t, img.Warnings())

	out, err := img.Create()
	require.NoError(t, err)
	require.True(t, bytes.Equal(data, out), "re-created image differs from the original")
}

func TestKernelSectionPadding(t *testing.T) {
	ti := sampleImage()
	ti.second = nil
	ti.dt = nil
	data := ti.build()

	require.Equal(t, uint64(2043), bootimg.Padding(5, 2048))
	// header page, kernel page, two ramdisk pages
	require.Len(t, data, 2048+2048+4096)
	require.Equal(t, []byte{1, 2, 3, 4, 5}, data[2048:2053])
	require.Equal(t, make([]byte, 2043), data[2053:4096])

	img, err := bootimg.Load(data)
	require.NoError(t, err)
	require.Equal(t, ti.ramdisk, img.RamdiskImage())
}

func TestIdentifierHashesSecondSize(t *testing.T) {
	img := bootimg.New()
	img.SetKernelImage(fill(700, 0x01))
	img.SetRamdiskImage(fill(300, 0x02))

	data, err := img.Create()
	require.NoError(t, err)

	h := sha1.New()
	h.Write(img.KernelImage())
	h.Write(le32(700))
	h.Write(img.RamdiskImage())
	h.Write(le32(300))
	h.Write(le32(0))
	want := make([]byte, 32)
	copy(want, h.Sum(nil))
	require.Empty(t, cmp.Diff(want, data[576:608]))

	loaded, err := bootimg.Load(data)
	require.NoError(t, err)
	var id [8]uint32
	for n := range id {
		id[n] = binary.LittleEndian.Uint32(want[n*4:])
	}
	require.Equal(t, id, loaded.ID())
}

func TestHeaderAfterLeadingBytes(t *testing.T) {
	ti := sampleImage()
	clean := ti.build()
	data := append(fill(256, 0x5a), clean...)

	img, err := bootimg.Load(data)
	require.NoError(t, err)
	require.Equal(t, ti.kernel, img.KernelImage())

	out, err := img.Create()
	require.NoError(t, err)
	require.True(t, bytes.Equal(clean, out))
}

func TestTruncatedImage(t *testing.T) {
	ti := sampleImage()
	data := ti.build()

	tests := map[string][]byte{
		"kernel": data[:2048+3],
		"dt":     data[:len(data)-2048],
	}
	for name, buf := range tests {
		t.Logf("Truncate in %s", name)
		_, err := bootimg.Load(buf)
		var perr *bootimg.ParseError
		require.True(t, errors.As(err, &perr), "expected parse error, got %v", err)
		require.Equal(t, bootimg.ANDROID, perr.Variant)
	}

	huge := append([]byte{}, data...)
	binary.LittleEndian.PutUint32(huge[8:], 0xffffffff)
	_, err := bootimg.Load(huge)
	var end *bootimg.ErrEndGreaterThanLength
	require.True(t, errors.As(err, &end), "expected bounds error, got %v", err)
}

func TestInvalidPageSize(t *testing.T) {
	data := sampleImage().build()
	binary.LittleEndian.PutUint32(data[36:], 1000)
	_, err := bootimg.Load(data)
	var perr *bootimg.ParseError
	require.True(t, errors.As(err, &perr))
	require.True(t, errors.Is(err, bootimg.ErrInvalidPageSize))

	img := bootimg.New()
	img.SetPageSize(1000)
	_, err = img.Create()
	var berr *bootimg.BuildError
	require.True(t, errors.As(err, &berr))
	require.True(t, errors.Is(err, bootimg.ErrInvalidPageSize))
	require.Equal(t, err, img.Err())
}

func TestLongStringsAreTruncated(t *testing.T) {
	img := bootimg.New()
	img.SetBoardName("abcdefghijklmnopqrstuvwxyz")
	img.SetKernelCmdline(string(fill(600, 'c')))
	img.SetKernelImage([]byte{1})

	data, err := img.Create()
	require.NoError(t, err)
	loaded, err := bootimg.Load(data)
	require.NoError(t, err)
	require.Equal(t, "abcdefghijklmno", loaded.BoardName())
	require.Len(t, loaded.KernelCmdline(), 511)
}
