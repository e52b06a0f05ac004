package serializer

import (
	"github.com/lk2023060901/objcodec/internal/compressor"
)

// Serializer 抽象了“对象 <-> 字节序列”的序列化能力。
type Serializer interface {
	// Marshal 将任意对象编码为字节序列。
	Marshal(v any) ([]byte, error)

	// Unmarshal 将字节序列解码到目标对象，v 为接收结果的指针。
	Unmarshal(data []byte, v any) error
}

var (
	_ Serializer = (*Codec)(nil)
	_ Serializer = (*BinarySerializer)(nil)
	_ Serializer = (*CompressedSerializer)(nil)
)

// BinarySerializer 使用 Codec 的二进制格式，nil Codec 表示使用包级默认 Codec。
type BinarySerializer struct {
	Codec *Codec
}

func (s BinarySerializer) codec() *Codec {
	if s.Codec == nil {
		return Default()
	}
	return s.Codec
}

func (s BinarySerializer) Marshal(v any) ([]byte, error) {
	return s.codec().Marshal(v)
}

func (s BinarySerializer) Unmarshal(data []byte, v any) error {
	return s.codec().Unmarshal(data, v)
}

// CompressedSerializer 在内层 Serializer 的输出上再做一次整块压缩。
type CompressedSerializer struct {
	inner Serializer
	c     compressor.Compressor
}

// NewCompressedSerializer 创建 CompressedSerializer，compression 取值见 Config.Compression。
func NewCompressedSerializer(inner Serializer, compression string) (*CompressedSerializer, error) {
	return NewCompressedSerializerWithLimit(inner, compression, compressor.DefaultMaxDecodedSize)
}

// NewCompressedSerializerWithLimit 同 NewCompressedSerializer，解压输出超过 maxDecodedSize 字节时 Unmarshal 失败。
func NewCompressedSerializerWithLimit(inner Serializer, compression string, maxDecodedSize int) (*CompressedSerializer, error) {
	c, err := compressor.NewWithLimit(compression, maxDecodedSize)
	if err != nil {
		return nil, err
	}
	return &CompressedSerializer{inner: inner, c: c}, nil
}

func (s *CompressedSerializer) Marshal(v any) ([]byte, error) {
	plain, err := s.inner.Marshal(v)
	if err != nil {
		return nil, err
	}
	return s.c.Compress(nil, plain)
}

func (s *CompressedSerializer) Unmarshal(data []byte, v any) error {
	plain, err := s.c.Decompress(nil, data)
	if err != nil {
		return err
	}
	return s.inner.Unmarshal(plain, v)
}

// Close 释放压缩器持有的资源。
func (s *CompressedSerializer) Close() {
	if zc, ok := s.c.(*compressor.ZstdCompressor); ok {
		zc.Close()
	}
}
