package serializer

import (
	"github.com/lk2023060901/objcodec/internal/registry"
	"github.com/lk2023060901/objcodec/pkg/log"
)

// Option 用于配置 Codec。
type Option func(*Codec)

// WithMaxDepth 设置最大嵌套深度，超过时返回 ErrDepthExceeded。
func WithMaxDepth(depth int) Option {
	return func(c *Codec) {
		c.maxDepth = depth
	}
}

// WithMaxSequenceLength 设置解码时允许的最大元素个数。
func WithMaxSequenceLength(n int) Option {
	return func(c *Codec) {
		c.limits.MaxSequenceLength = n
	}
}

// WithMaxTextLength 设置解码时允许的最大文本字节数。
func WithMaxTextLength(n int) Option {
	return func(c *Codec) {
		c.limits.MaxTextLength = n
	}
}

// WithMaxAllocBytes 设置解码时按流中个数分配的单块内存上限（元素个数 × 元素大小）。
func WithMaxAllocBytes(n int) Option {
	return func(c *Codec) {
		c.limits.MaxAllocBytes = n
	}
}

// WithRegistry 使用独立的类型注册表代替进程级默认注册表。
func WithRegistry(r *registry.Registry) Option {
	return func(c *Codec) {
		c.registry = r
		c.resolver = r
	}
}

// WithResolver 使用自定义的类型解析器。此时 Codec.Register 不可用。
func WithResolver(r registry.Resolver) Option {
	return func(c *Codec) {
		c.registry = nil
		c.resolver = r
	}
}

// WithLogger 为 Codec 绑定 Logger。
func WithLogger(l *log.MLogger) Option {
	return func(c *Codec) {
		c.SetLogger(l)
	}
}
