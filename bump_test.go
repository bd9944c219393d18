package bootimg_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"bootimg"
)

func TestBumpRoundTrip(t *testing.T) {
	android := sampleImage().build()
	data := append(append([]byte{}, android...), bootimg.LG_BUMP_MAGIC...)

	v, ok := bootimg.Detect(data)
	require.True(t, ok)
	require.Equal(t, bootimg.BUMP, v)

	img, err := bootimg.Load(data)
	require.NoError(t, err)
	require.Equal(t, bootimg.BUMP, img.SourceVariant())
	require.Equal(t, bootimg.BUMP, img.TargetVariant())

	out, err := img.Create()
	require.NoError(t, err)
	require.True(t, bytes.Equal(data, out))

	// Dropping the signature yields the plain Android image.
	img.SetTargetVariant(bootimg.ANDROID)
	out, err = img.Create()
	require.NoError(t, err)
	require.True(t, bytes.Equal(android, out))
}

func TestBumpEqualsAndroid(t *testing.T) {
	android := sampleImage().build()
	plain, err := bootimg.Load(android)
	require.NoError(t, err)
	bumped, err := bootimg.Load(append(append([]byte{}, android...), bootimg.LG_BUMP_MAGIC...))
	require.NoError(t, err)

	require.True(t, plain.Equal(bumped))
	require.True(t, bumped.Equal(plain))

	bumped.SetKernelCmdline("console=null")
	require.False(t, plain.Equal(bumped))
}

func TestBumpMagicMustFollowLastSection(t *testing.T) {
	data := sampleImage().build()
	data = append(data, make([]byte, 16)...)
	data = append(data, bootimg.LG_BUMP_MAGIC...)

	require.False(t, bootimg.BUMP.Match(data))
	v, ok := bootimg.Detect(data)
	require.True(t, ok)
	require.Equal(t, bootimg.ANDROID, v)
}
