package compressor

import (
	"bytes"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/objcodec/pkg/util/merr"
)

func TestNew(t *testing.T) {
	c, err := New("")
	require.NoError(t, err)
	assert.IsType(t, NopCompressor{}, c)

	c, err = New("ZSTD")
	require.NoError(t, err)
	assert.IsType(t, &ZstdCompressor{}, c)
	c.(*ZstdCompressor).Close()

	_, err = New("lz4")
	assert.ErrorIs(t, err, merr.ErrParameterInvalid)
}

func TestValidate(t *testing.T) {
	for _, name := range []string{"", "none", "NONE", "zstd", "Zstd"} {
		assert.NoError(t, Validate(name), name)
	}
	assert.ErrorIs(t, Validate("snappy"), merr.ErrParameterInvalid)
}

func TestZstdDecodedSizeLimit(t *testing.T) {
	c, err := NewZstdCompressorWithLimit(1, 4096)
	require.NoError(t, err)
	defer c.Close()

	small := bytes.Repeat([]byte{'a'}, 2048)
	packet, err := c.Compress(nil, small)
	require.NoError(t, err)
	plain, err := c.Decompress(nil, packet)
	require.NoError(t, err)
	assert.Equal(t, small, plain)

	bomb, err := c.Compress(nil, make([]byte, 1<<20))
	require.NoError(t, err)
	assert.Less(t, len(bomb), 1<<12)
	_, err = c.Decompress(nil, bomb)
	assert.ErrorIs(t, err, merr.ErrStructuralViolation)

	nc, err := NewWithLimit("zstd", 4096)
	require.NoError(t, err)
	defer nc.(*ZstdCompressor).Close()
	_, err = nc.Decompress(nil, bomb)
	assert.ErrorIs(t, err, merr.ErrStructuralViolation)
}

func TestZstdRoundTrip(t *testing.T) {
	c, err := NewZstdCompressorWithConcurrency(2)
	require.NoError(t, err)
	defer c.Close()

	src := bytes.Repeat([]byte("objcodec"), 512)
	packet, err := c.Compress(nil, src)
	require.NoError(t, err)
	assert.Equal(t, frameZstd, packet[0])
	assert.Less(t, len(packet), len(src))

	plain, err := c.Decompress(nil, packet)
	require.NoError(t, err)
	assert.Equal(t, src, plain)
}

func TestZstdBelowThreshold(t *testing.T) {
	c, err := NewZstdCompressor()
	require.NoError(t, err)
	defer c.Close()
	c.SetMinCompressSize(64)

	src := []byte("short")
	packet, err := c.Compress(nil, src)
	require.NoError(t, err)
	assert.Equal(t, append([]byte{frameRaw}, src...), packet)

	plain, err := c.Decompress(nil, packet)
	require.NoError(t, err)
	assert.Equal(t, src, plain)
}

func TestZstdCorrupted(t *testing.T) {
	c, err := NewZstdCompressor()
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Decompress(nil, nil)
	assert.ErrorIs(t, err, merr.ErrStructuralViolation)
	_, err = c.Decompress(nil, []byte{0x07, 1, 2})
	assert.ErrorIs(t, err, merr.ErrStructuralViolation)
	_, err = c.Decompress(nil, []byte{frameZstd, 1, 2, 3})
	assert.ErrorIs(t, err, merr.ErrStructuralViolation)
}

func TestZstdClosed(t *testing.T) {
	c, err := NewZstdCompressor()
	require.NoError(t, err)
	c.Close()
	_, err = c.Compress(nil, []byte("x"))
	assert.ErrorIs(t, err, zstd.ErrEncoderClosed)
	_, err = c.Decompress(nil, []byte{frameRaw})
	assert.ErrorIs(t, err, zstd.ErrDecoderClosed)
}

func TestNop(t *testing.T) {
	src := []byte("abc")
	out, err := NopCompressor{}.Compress(nil, src)
	require.NoError(t, err)
	assert.Equal(t, src, out)
	out, err = NopCompressor{}.Decompress(nil, out)
	require.NoError(t, err)
	assert.Equal(t, src, out)
}
