// Package compressor 为编码后的字节流提供可选的整块压缩。
package compressor

import (
	"strings"

	"github.com/lk2023060901/objcodec/pkg/util/merr"
)

const (
	// TypeNone 表示不压缩。
	TypeNone = "none"
	// TypeZstd 表示使用 zstd 压缩。
	TypeZstd = "zstd"

	// DefaultMaxDecodedSize 为单次解压输出的默认上限。
	DefaultMaxDecodedSize = 1 << 30
)

// Compressor 抽象了“单次压缩/解压”能力。
type Compressor interface {
	// Compress 将 src 压缩后追加到 dst[:0]，返回完整的压缩数据。
	Compress(dst, src []byte) (packet []byte, err error)

	// Decompress 将 Compress 的输出还原为原始字节。
	Decompress(dst, src []byte) (plain []byte, err error)
}

// NopCompressor 不做任何压缩/解压，直接返回输入内容。
type NopCompressor struct{}

func (NopCompressor) Compress(_ []byte, src []byte) ([]byte, error) {
	return src, nil
}

func (NopCompressor) Decompress(_ []byte, src []byte) ([]byte, error) {
	return src, nil
}

var _ Compressor = NopCompressor{}

// Validate 检查压缩算法名称是否受支持，不创建压缩器。
func Validate(name string) error {
	switch strings.ToLower(name) {
	case "", TypeNone, TypeZstd:
		return nil
	default:
		return merr.WrapErrParameterInvalid(TypeNone+"|"+TypeZstd, name, "unknown compression")
	}
}

// New 按名称创建压缩器，名称不区分大小写，空字符串等价于 TypeNone。
func New(name string) (Compressor, error) {
	return NewWithLimit(name, DefaultMaxDecodedSize)
}

// NewWithLimit 同 New，maxDecodedSize 限制单次解压输出的字节数，<= 0 时使用 DefaultMaxDecodedSize。
func NewWithLimit(name string, maxDecodedSize int) (Compressor, error) {
	if err := Validate(name); err != nil {
		return nil, err
	}
	if strings.ToLower(name) == TypeZstd {
		return NewZstdCompressorWithLimit(0, maxDecodedSize)
	}
	return NopCompressor{}, nil
}
