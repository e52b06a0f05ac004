package compressor

import (
	"github.com/klauspost/compress/zstd"

	"github.com/lk2023060901/objcodec/pkg/util/hardware"
	"github.com/lk2023060901/objcodec/pkg/util/merr"
)

// 压缩数据的第一个字节标记负载形式。
const (
	frameRaw  byte = 0x00
	frameZstd byte = 0x01
)

// ZstdCompressor 基于 github.com/klauspost/compress/zstd 的压缩实现。
//
// 低于 minCompressSize 的输入原样保存，输出首字节记录负载形式，Decompress 据此还原。
type ZstdCompressor struct {
	enc             *zstd.Encoder
	dec             *zstd.Decoder
	minCompressSize int
}

var _ Compressor = (*ZstdCompressor)(nil)

// NewZstdCompressor 创建一个 ZstdCompressor，默认并发度为主机 CPU 核心数。
func NewZstdCompressor() (*ZstdCompressor, error) {
	return NewZstdCompressorWithConcurrency(0)
}

// NewZstdCompressorWithConcurrency 创建一个 ZstdCompressor，concurrency <= 0 时使用主机 CPU 核心数。
func NewZstdCompressorWithConcurrency(concurrency int) (*ZstdCompressor, error) {
	return NewZstdCompressorWithLimit(concurrency, DefaultMaxDecodedSize)
}

// NewZstdCompressorWithLimit 创建一个 ZstdCompressor，解压输出超过 maxDecodedSize 字节时返回错误。
// maxDecodedSize <= 0 时使用 DefaultMaxDecodedSize。
func NewZstdCompressorWithLimit(concurrency int, maxDecodedSize int) (*ZstdCompressor, error) {
	if concurrency <= 0 {
		concurrency = hardware.GetCPUNum()
	}
	if maxDecodedSize <= 0 {
		maxDecodedSize = DefaultMaxDecodedSize
	}

	enc, err := zstd.NewWriter(nil,
		zstd.WithZeroFrames(true),
		zstd.WithEncoderConcurrency(concurrency),
	)
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(nil,
		zstd.WithDecoderConcurrency(concurrency),
		zstd.WithDecoderMaxMemory(uint64(maxDecodedSize)),
	)
	if err != nil {
		enc.Close()
		return nil, err
	}
	return &ZstdCompressor{
		enc: enc,
		dec: dec,
	}, nil
}

// SetMinCompressSize 设置触发压缩的最小字节数。
func (c *ZstdCompressor) SetMinCompressSize(n int) {
	if n < 0 {
		n = 0
	}
	c.minCompressSize = n
}

// Compress 实现 Compressor 接口。
func (c *ZstdCompressor) Compress(dst, src []byte) ([]byte, error) {
	if c == nil || c.enc == nil {
		return nil, zstd.ErrEncoderClosed
	}
	if c.minCompressSize > 0 && len(src) < c.minCompressSize {
		out := append(dst[:0], frameRaw)
		return append(out, src...), nil
	}
	out := append(dst[:0], frameZstd)
	return c.enc.EncodeAll(src, out), nil
}

// Decompress 实现 Compressor 接口。
func (c *ZstdCompressor) Decompress(dst, src []byte) ([]byte, error) {
	if c == nil || c.dec == nil {
		return nil, zstd.ErrDecoderClosed
	}
	if len(src) == 0 {
		return nil, merr.WrapErrStructuralViolation("empty compressed frame")
	}
	switch src[0] {
	case frameRaw:
		return append(dst[:0], src[1:]...), nil
	case frameZstd:
		out, err := c.dec.DecodeAll(src[1:], dst[:0])
		if err != nil {
			return nil, merr.WrapErrStructuralViolation("corrupted zstd frame", merr.Value("reason", err.Error()))
		}
		return out, nil
	default:
		return nil, merr.WrapErrStructuralViolation("unknown compressed frame", merr.Value("marker", src[0]))
	}
}

// Close 释放内部 encoder/decoder 持有的资源，关闭后再次使用返回 ErrEncoderClosed/ErrDecoderClosed。
func (c *ZstdCompressor) Close() {
	if c == nil {
		return
	}
	if c.enc != nil {
		_ = c.enc.Close()
		c.enc = nil
	}
	if c.dec != nil {
		c.dec.Close()
		c.dec = nil
	}
}
