package bootimg_test

import (
	"debug/elf"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"bootimg"
)

func TestAlign(t *testing.T) {
	t.Log("Test structure align size")

	tests := map[interface{}]int{
		bootimg.BootImgHdr{}: 1632,
		bootimg.MtkHdr{}:     512,
		bootimg.LokiHdr{}:    148,
		elf.Header32{}:       52,
		elf.Prog32{}:         32,
	}

	for v, s := range tests {
		rt := reflect.TypeOf(v)
		t.Logf("Check align of: %v", rt.Name())
		if ret := binary.Size(v); ret != s {
			t.Fatalf("Align mismatch at: %v, Except: %v, But: %v", rt.Name(), s, ret)
		}
	}
}

func TestNewDefaults(t *testing.T) {
	img := bootimg.New()
	require.Equal(t, bootimg.ANDROID, img.SourceVariant())
	require.Equal(t, bootimg.ANDROID, img.TargetVariant())
	require.Equal(t, uint32(2048), img.PageSize())
	require.Equal(t, uint32(0x10008000), img.KernelAddress())
	require.Equal(t, uint32(0x11000000), img.RamdiskAddress())
	require.Equal(t, uint32(0x10f00000), img.SecondBootloaderAddress())
	require.Equal(t, uint32(0x10000100), img.KernelTagsAddress())
	require.Empty(t, img.KernelImage())

	data, err := img.Create()
	require.NoError(t, err)
	// header page plus empty kernel and ramdisk
	require.Len(t, data, 2048)
}

func TestSizesTrackPayloads(t *testing.T) {
	img := bootimg.New()
	img.SetKernelImage(fill(10, 1))
	img.SetRamdiskImage(fill(20, 2))
	img.SetSecondBootloaderImage(fill(30, 3))
	img.SetDeviceTreeImage(fill(40, 4))
	require.Equal(t, uint32(10), img.KernelSize())
	require.Equal(t, uint32(20), img.RamdiskSize())
	require.Equal(t, uint32(30), img.SecondBootloaderSize())
	require.Equal(t, uint32(40), img.DeviceTreeSize())

	img.SetDeviceTreeImage(nil)
	require.Equal(t, uint32(0), img.DeviceTreeSize())

	// setters keep their own copy
	kernel := fill(4, 9)
	img.SetKernelImage(kernel)
	kernel[0] = 0
	require.Equal(t, fill(4, 9), img.KernelImage())
}

func TestCapabilities(t *testing.T) {
	tests := map[bootimg.Variant][]string{
		bootimg.ANDROID: {"kernel_address", "ramdisk_address", "second_address", "tags_address",
			"page_size", "board_name", "cmdline", "kernel_image", "ramdisk_image", "second_image", "dt_image"},
		bootimg.LOKI: {"kernel_address", "ramdisk_address", "second_address", "tags_address",
			"page_size", "board_name", "cmdline", "kernel_image", "ramdisk_image", "dt_image", "aboot_image"},
		bootimg.MTK: {"kernel_address", "ramdisk_address", "second_address", "tags_address",
			"page_size", "board_name", "cmdline", "kernel_image", "ramdisk_image", "second_image", "dt_image",
			"kernel_mtkhdr", "ramdisk_mtkhdr"},
		bootimg.SONY_ELF: {"kernel_address", "ramdisk_address", "ipl_address", "rpm_address", "appsbl_address",
			"entrypoint", "cmdline", "kernel_image", "ramdisk_image", "ipl_image", "rpm_image", "appsbl_image",
			"sin_image", "sin_header"},
	}
	for v, names := range tests {
		t.Logf("Check capabilities of: %v", v)
		if diff := cmp.Diff(names, bootimg.CapabilityMask(v).Names()); diff != "" {
			t.Fatalf("capability mismatch for %v (-want +got):\n%s", v, diff)
		}
	}
	require.Equal(t, bootimg.CapabilityMask(bootimg.ANDROID), bootimg.CapabilityMask(bootimg.BUMP))
	require.Zero(t, bootimg.CapabilityMask(bootimg.UNKNOWN))

	img := bootimg.New()
	require.True(t, img.Supports(bootimg.SUPPORTS_SECOND_IMAGE|bootimg.SUPPORTS_DT_IMAGE))
	require.False(t, img.Supports(bootimg.SUPPORTS_IPL_IMAGE))
	img.SetTargetVariant(bootimg.SONY_ELF)
	require.True(t, img.Supports(bootimg.SUPPORTS_IPL_IMAGE))
	require.False(t, img.Supports(bootimg.SUPPORTS_PAGE_SIZE))
}

func TestLoadUnrecognized(t *testing.T) {
	for name, data := range map[string][]byte{
		"empty": nil,
		"short": []byte("ANDROID!"),
		"junk":  fill(4096, 0x5a),
	} {
		t.Logf("Check %s", name)
		_, err := bootimg.Load(data)
		var perr *bootimg.ParseError
		require.True(t, errors.As(err, &perr))
		require.True(t, errors.Is(err, bootimg.ErrNotRecognized))
		require.False(t, bootimg.IsValid(data))
	}
}

func TestUnknownTarget(t *testing.T) {
	img := bootimg.New()
	require.NoError(t, img.Err())
	img.SetTargetVariant(bootimg.UNKNOWN)
	_, err := img.Create()
	var berr *bootimg.BuildError
	require.True(t, errors.As(err, &berr))
	require.Equal(t, err, img.Err())
}

func TestEqualIgnoresUnused(t *testing.T) {
	a, err := bootimg.Load(sampleImage().build())
	require.NoError(t, err)
	b, err := bootimg.Load(sampleImage().build())
	require.NoError(t, err)

	b.SetUnused(0x1234)
	require.True(t, a.Equal(b))
	b.SetPageSize(4096)
	require.False(t, a.Equal(b))
}

func TestFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "boot.img")
	data := sampleImage().build()
	require.NoError(t, os.WriteFile(in, data, 0644))

	img, err := bootimg.LoadFile(in)
	require.NoError(t, err)
	require.Equal(t, bootimg.ANDROID, img.SourceVariant())

	out := filepath.Join(dir, bootimg.NEW_BOOT)
	require.NoError(t, img.CreateFile(out))
	written, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, data, written)
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := bootimg.LoadFile(filepath.Join(dir, "missing.img"))
	var ioerr *bootimg.IOError
	require.True(t, errors.As(err, &ioerr))
	require.True(t, errors.Is(err, os.ErrNotExist))

	empty := filepath.Join(dir, "empty.img")
	require.NoError(t, os.WriteFile(empty, nil, 0644))
	_, err = bootimg.LoadFile(empty)
	var perr *bootimg.ParseError
	require.True(t, errors.As(err, &perr))

	img := bootimg.New()
	err = img.CreateFile(filepath.Join(dir, "no", "such", "dir", "boot.img"))
	require.True(t, errors.As(err, &ioerr))
	require.Equal(t, err, img.Err())
}

func TestUnpackRepack(t *testing.T) {
	ti, _, _ := mtkImage(100, 200)
	ti.cmdline = "console=\"ttyMSM0\" quiet"
	img, err := bootimg.Load(ti.build())
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "unpacked")
	require.NoError(t, img.Unpack(dir))
	for _, name := range []string{bootimg.HEADER_FILE, bootimg.KERNEL_FILE, bootimg.RAMDISK_FILE,
		bootimg.SECOND_FILE, bootimg.DTB_FILE, bootimg.KERNEL_MTK_FILE, bootimg.RAMDISK_MTK_FILE} {
		require.FileExists(t, filepath.Join(dir, name))
	}
	require.NoFileExists(t, filepath.Join(dir, bootimg.ABOOT_FILE))

	repacked, err := bootimg.Repack(dir)
	require.NoError(t, err)
	require.Equal(t, bootimg.MTK, repacked.TargetVariant())
	require.True(t, img.Equal(repacked))

	a, err := img.Create()
	require.NoError(t, err)
	b, err := repacked.Create()
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestRepackMissingHeader(t *testing.T) {
	_, err := bootimg.Repack(t.TempDir())
	var ioerr *bootimg.IOError
	require.True(t, errors.As(err, &ioerr))
}
