package serializer

import (
	"io"
	"sync"
)

var (
	defaultOnce  sync.Once
	defaultCodec *Codec
)

// Default 返回包级默认 Codec，使用默认配置与进程级类型注册表。
func Default() *Codec {
	defaultOnce.Do(func() {
		defaultCodec = New(DefaultConfig().Options()...)
	})
	return defaultCodec
}

// Serialize 使用默认 Codec 将 v 写入 w。
func Serialize(w io.Writer, v any) error {
	return Default().Serialize(w, v)
}

// Deserialize 使用默认 Codec 从 r 读取一个值。
func Deserialize(r io.Reader) (any, error) {
	return Default().Deserialize(r)
}

func Marshal(v any) ([]byte, error) {
	return Default().Marshal(v)
}

func Unmarshal(data []byte, v any) error {
	return Default().Unmarshal(data, v)
}

// Register 在进程级注册表中注册 v 的类型。
func Register(v any) error {
	return Default().Register(v)
}

// RegisterName 在进程级注册表中以 name 注册 v 的类型。
func RegisterName(name string, v any) error {
	return Default().RegisterName(name, v)
}
