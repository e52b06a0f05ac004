package serializer

import (
	"bytes"
	"io"
	"reflect"

	"go.uber.org/zap"

	"github.com/lk2023060901/objcodec/internal/codec"
	"github.com/lk2023060901/objcodec/internal/registry"
	"github.com/lk2023060901/objcodec/internal/schema"
	"github.com/lk2023060901/objcodec/internal/wire"
	"github.com/lk2023060901/objcodec/pkg/log"
	"github.com/lk2023060901/objcodec/pkg/metrics"
	"github.com/lk2023060901/objcodec/pkg/util/merr"
)

// Codec 是可配置的对象图编解码器，可以被多个 goroutine 并发使用。
//
// 流格式：uvarint 长度前缀的根类型标识，随后是根值的递归编码。
type Codec struct {
	log.Binder

	maxDepth int
	limits   wire.Limits
	resolver registry.Resolver
	registry *registry.Registry
	stats    Stats
}

// New 创建一个 Codec，默认使用进程级类型注册表。
func New(opts ...Option) *Codec {
	c := &Codec{
		maxDepth: codec.DefaultMaxDepth,
		resolver: registry.Default(),
		registry: registry.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.maxDepth <= 0 {
		c.maxDepth = codec.DefaultMaxDepth
	}
	return c
}

// NewFromConfig 按配置创建 Codec。cfg.Log 不为空时同时替换全局日志。
func NewFromConfig(cfg *Config, opts ...Option) (*Codec, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Log != nil {
		logger, props, err := log.InitLogger(cfg.Log)
		if err != nil {
			return nil, merr.WrapErrParameterInvalidMsg("invalid log config: %s", err.Error())
		}
		log.ReplaceGlobals(logger, props)
	}
	return New(append(cfg.Options(), opts...)...), nil
}

// Register 以默认名称 <包路径>.<类型名> 注册 v 的类型，供 Deserialize 解析。
func (c *Codec) Register(v any) error {
	if c.registry == nil {
		return merr.WrapErrOperationNotSupported("codec uses a custom resolver")
	}
	return c.registry.Register(v)
}

// RegisterName 以指定名称注册 v 的类型。
func (c *Codec) RegisterName(name string, v any) error {
	if c.registry == nil {
		return merr.WrapErrOperationNotSupported("codec uses a custom resolver")
	}
	return c.registry.RegisterName(name, v)
}

// Serialize 将 v 编码后一次性写入 w。编码失败时不会向 w 写入任何字节。
func (c *Codec) Serialize(w io.Writer, v any) error {
	if w == nil {
		return c.fail(metrics.DirectionEncode, merr.WrapErrParameterInvalidMsg("nil writer"))
	}
	data, err := c.encode(v)
	if err != nil {
		return c.fail(metrics.DirectionEncode, err)
	}
	if _, err := w.Write(data); err != nil {
		return c.fail(metrics.DirectionEncode, merr.WrapErrIoFailed("sink", err))
	}
	c.succeed(metrics.DirectionEncode, len(data))
	return nil
}

// Marshal 返回 v 的完整编码。
func (c *Codec) Marshal(v any) ([]byte, error) {
	data, err := c.encode(v)
	if err != nil {
		return nil, c.fail(metrics.DirectionEncode, err)
	}
	c.succeed(metrics.DirectionEncode, len(data))
	return data, nil
}

// Deserialize 从 r 读取一个完整的值。只读取该值占用的字节，r 中后续内容保持未读。
//
// 返回值的动态类型即根类型：根为 Point 时返回 Point，根为 *Point 时返回 *Point。
func (c *Codec) Deserialize(r io.Reader) (any, error) {
	if r == nil {
		return nil, c.fail(metrics.DirectionDecode, merr.WrapErrParameterInvalidMsg("nil reader"))
	}
	rd := wire.NewReader(r, c.limits)
	value, err := c.decode(rd)
	if err != nil {
		return nil, c.fail(metrics.DirectionDecode, err)
	}
	c.succeed(metrics.DirectionDecode, rd.Consumed())
	return value.Interface(), nil
}

// Unmarshal 将 data 解码到 v 指向的变量。
//
// v 必须是非 nil 指针，且根类型可以赋值给 *v 的类型（*v 为 any 时总是可以）。
// data 在根值之后还有剩余字节时返回 ErrStructuralViolation。
func (c *Codec) Unmarshal(data []byte, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return c.fail(metrics.DirectionDecode, merr.WrapErrParameterInvalidMsg("unmarshal target must be a non-nil pointer, got %T", v))
	}
	br := bytes.NewReader(data)
	value, err := c.decode(wire.NewReader(br, c.limits))
	if err != nil {
		return c.fail(metrics.DirectionDecode, err)
	}
	if br.Len() > 0 {
		return c.fail(metrics.DirectionDecode, merr.WrapErrTrailingBytes(br.Len()))
	}
	dst := rv.Elem()
	if !value.Type().AssignableTo(dst.Type()) {
		return c.fail(metrics.DirectionDecode,
			merr.WrapErrParameterInvalid(dst.Type().String(), value.Type().String(), "root type mismatch"))
	}
	dst.Set(value)
	c.succeed(metrics.DirectionDecode, len(data))
	return nil
}

// Stats 返回累计的调用统计。
func (c *Codec) Stats() StatsSnapshot {
	return c.stats.Snapshot()
}

func (c *Codec) encode(v any) ([]byte, error) {
	if v == nil {
		return nil, merr.WrapErrParameterInvalidMsg("nil root value")
	}
	t := reflect.TypeOf(v)
	desc, err := schema.Describe(t)
	if err != nil {
		return nil, err
	}
	id, err := c.resolver.TypeID(t)
	if err != nil {
		return nil, err
	}

	w := wire.NewWriter(64)
	w.WriteString(id)
	if err := codec.NewEncoder(w, c.maxDepth).Encode(desc, reflect.ValueOf(v)); err != nil {
		return nil, err
	}
	c.Logger().Debug("value serialized", log.FieldTypeID(id), log.FieldBytes(w.Len()))
	return w.Bytes(), nil
}

func (c *Codec) decode(rd *wire.Reader) (reflect.Value, error) {
	id, err := rd.ReadString()
	if err != nil {
		return reflect.Value{}, err
	}
	t, err := c.resolver.Resolve(id)
	if err != nil {
		return reflect.Value{}, err
	}
	if err := rd.CheckAlloc(1, t.Size(), t.String()); err != nil {
		return reflect.Value{}, err
	}
	desc, err := schema.Describe(t)
	if err != nil {
		return reflect.Value{}, err
	}
	target := schema.Allocate(t)
	if err := codec.NewDecoder(rd, c.maxDepth).Decode(desc, target); err != nil {
		return reflect.Value{}, err
	}
	c.Logger().Debug("value deserialized", log.FieldTypeID(id), log.FieldBytes(rd.Consumed()))
	return target, nil
}

func (c *Codec) succeed(direction string, n int) {
	c.stats.observe(direction, n, nil)
	metrics.ObserveCall(direction, n, 0)
}

func (c *Codec) fail(direction string, err error) error {
	c.stats.observe(direction, 0, err)
	metrics.ObserveCall(direction, 0, merr.Code(err))
	c.Logger().RatedWarn(1, "codec call failed",
		zap.String("direction", direction),
		zap.Int32("code", merr.Code(err)),
		zap.Error(err))
	return err
}
