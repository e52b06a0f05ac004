// Package codec 按类型描述递归地编码与解码值。
//
// 编码规则：
//
//	Primitive  定长小端字节
//	Text       存在标志 + uvarint 长度 + UTF-8 字节
//	Sequence   存在标志 + int32 元素个数 + 逐个元素（按声明的元素类型编码）
//	Optional   nil 写入内层类型的缺失标志；内层为 Primitive 时先写自身的存在标志
//	Composite  存在标志 + 父类型完整编码 + 未排除的声明字段
package codec

import (
	"math"
	"reflect"

	"github.com/lk2023060901/objcodec/internal/schema"
	"github.com/lk2023060901/objcodec/internal/wire"
	"github.com/lk2023060901/objcodec/pkg/util/merr"
)

// DefaultMaxDepth 是默认的最大嵌套深度。
const DefaultMaxDepth = 512

// Encoder 将值编码到 wire.Writer。Encoder 不是并发安全的，每次调用使用独立的实例。
type Encoder struct {
	w        *wire.Writer
	maxDepth int
}

func NewEncoder(w *wire.Writer, maxDepth int) *Encoder {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Encoder{w: w, maxDepth: maxDepth}
}

// Encode 按 desc 编码 v，v 的类型必须与 desc.Type 一致。
func (e *Encoder) Encode(desc *schema.Descriptor, v reflect.Value) error {
	return e.encode(desc, v, 0)
}

func (e *Encoder) encode(desc *schema.Descriptor, v reflect.Value, depth int) error {
	if depth > e.maxDepth {
		return merr.WrapErrDepthExceeded(depth, e.maxDepth, desc.Name())
	}
	switch desc.Kind {
	case schema.KindPrimitive:
		return writePrimitive(e.w, desc.Primitive, v)
	case schema.KindOptional:
		return e.encodeOptional(desc, v, depth)
	case schema.KindText:
		e.w.WriteFlag(false)
		e.w.WriteString(v.String())
		return nil
	case schema.KindSequence:
		if desc.IsSlice() && v.IsNil() {
			e.w.WriteFlag(true)
			return nil
		}
		e.w.WriteFlag(false)
		return e.encodeSequence(desc, v, depth)
	case schema.KindComposite:
		e.w.WriteFlag(false)
		return e.encodeFields(desc, v, depth)
	default:
		return merr.WrapErrUnsupportedType(desc.Name())
	}
}

func (e *Encoder) encodeOptional(desc *schema.Descriptor, v reflect.Value, depth int) error {
	if v.IsNil() {
		e.w.WriteFlag(true)
		return nil
	}
	if desc.Elem.Kind == schema.KindPrimitive {
		e.w.WriteFlag(false)
		return writePrimitive(e.w, desc.Elem.Primitive, v.Elem())
	}
	return e.encode(desc.Elem, v.Elem(), depth+1)
}

func (e *Encoder) encodeSequence(desc *schema.Descriptor, v reflect.Value, depth int) error {
	n := v.Len()
	if n > math.MaxInt32 {
		return merr.WrapErrParameterTooLarge(desc.Name(), "sequence longer than int32")
	}
	e.w.WriteCount(int32(n))
	// 数组只有可寻址时才能直接取底层字节
	if desc.IsBytes() && (desc.IsSlice() || v.CanAddr()) {
		e.w.WriteRaw(v.Bytes())
		return nil
	}
	for i := 0; i < n; i++ {
		if err := e.encode(desc.Elem, v.Index(i), depth+1); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) encodeFields(desc *schema.Descriptor, v reflect.Value, depth int) error {
	if desc.Parent != nil {
		if err := e.encode(desc.Parent, v.Field(desc.ParentIndex), depth+1); err != nil {
			return err
		}
	}
	for _, f := range desc.Fields {
		if f.Excluded {
			continue
		}
		if err := e.encode(f.Desc, v.Field(f.Index), depth+1); err != nil {
			return err
		}
	}
	return nil
}
