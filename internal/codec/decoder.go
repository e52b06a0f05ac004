package codec

import (
	"reflect"

	"github.com/lk2023060901/objcodec/internal/schema"
	"github.com/lk2023060901/objcodec/internal/wire"
	"github.com/lk2023060901/objcodec/pkg/util/merr"
)

// Decoder 从 wire.Reader 解码值，是 Encoder 的逆过程。
type Decoder struct {
	r        *wire.Reader
	maxDepth int
}

func NewDecoder(r *wire.Reader, maxDepth int) *Decoder {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Decoder{r: r, maxDepth: maxDepth}
}

// Decode 按 desc 解码并写入 target。target 必须可写。
func (d *Decoder) Decode(desc *schema.Descriptor, target reflect.Value) error {
	return d.decode(desc, target, 0)
}

func (d *Decoder) enter(desc *schema.Descriptor, depth int) error {
	if depth > d.maxDepth {
		return merr.WrapErrDepthExceeded(depth, d.maxDepth, desc.Name())
	}
	return nil
}

func (d *Decoder) decode(desc *schema.Descriptor, v reflect.Value, depth int) error {
	if err := d.enter(desc, depth); err != nil {
		return err
	}
	switch desc.Kind {
	case schema.KindPrimitive:
		return readPrimitive(d.r, desc.Primitive, v)
	case schema.KindOptional:
		return d.decodeOptional(desc, v, depth)
	case schema.KindText, schema.KindSequence, schema.KindComposite:
		absent, err := d.r.ReadFlag(desc.Name())
		if err != nil {
			return err
		}
		if absent {
			// string 的缺失以 "" 表示，值类型的结构体与数组保持零值
			v.SetZero()
			return nil
		}
		return d.decodeBody(desc, v, depth)
	default:
		return merr.WrapErrUnsupportedType(desc.Name())
	}
}

// decodeBody 解码存在标志之后的内容。
func (d *Decoder) decodeBody(desc *schema.Descriptor, v reflect.Value, depth int) error {
	switch desc.Kind {
	case schema.KindText:
		s, err := d.r.ReadString()
		if err != nil {
			return err
		}
		v.SetString(s)
		return nil
	case schema.KindSequence:
		return d.decodeSequence(desc, v, depth)
	case schema.KindComposite:
		return d.decodeComposite(desc, v, depth)
	default:
		return merr.WrapErrUnsupportedType(desc.Name(), "value has no presence flag")
	}
}

func (d *Decoder) decodeOptional(desc *schema.Descriptor, v reflect.Value, depth int) error {
	absent, err := d.r.ReadFlag(desc.Name())
	if err != nil {
		return err
	}
	if absent {
		v.SetZero()
		return nil
	}
	p := reflect.New(desc.Elem.Type)
	if desc.Elem.Kind == schema.KindPrimitive {
		err = readPrimitive(d.r, desc.Elem.Primitive, p.Elem())
	} else {
		err = d.enter(desc.Elem, depth+1)
		if err == nil {
			err = d.decodeBody(desc.Elem, p.Elem(), depth+1)
		}
	}
	if err != nil {
		return err
	}
	v.Set(p)
	return nil
}

func (d *Decoder) decodeSequence(desc *schema.Descriptor, v reflect.Value, depth int) error {
	n, err := d.r.ReadCount()
	if err != nil {
		return err
	}
	if desc.IsSlice() {
		if err := d.r.CheckAlloc(n, desc.Elem.Type.Size(), desc.Name()); err != nil {
			return err
		}
		s := reflect.MakeSlice(desc.Type, n, n)
		if err := d.fillElements(desc, s, depth); err != nil {
			return err
		}
		v.Set(s)
		return nil
	}
	if n != desc.Len {
		return merr.WrapErrStructuralViolation("array length mismatch",
			merr.Value("type", desc.Name()),
			merr.Value("count", n),
			merr.Value("length", desc.Len))
	}
	return d.fillElements(desc, v, depth)
}

// fillElements 逐个解码元素到 seq 中，seq 的长度已经确定且元素可写。
func (d *Decoder) fillElements(desc *schema.Descriptor, seq reflect.Value, depth int) error {
	if desc.IsBytes() {
		return d.r.ReadRaw(seq.Bytes())
	}
	for i := 0; i < seq.Len(); i++ {
		if err := d.decode(desc.Elem, seq.Index(i), depth+1); err != nil {
			return err
		}
	}
	return nil
}

func (d *Decoder) decodeComposite(desc *schema.Descriptor, v reflect.Value, depth int) error {
	inst := newInstance(desc)
	if err := d.fillFields(inst, desc, inst.value, depth); err != nil {
		return err
	}
	value, err := inst.finalize()
	if err != nil {
		return err
	}
	v.Set(value)
	return nil
}

// fillFields 先解码父类型到内嵌字段，再解码自身声明的字段，全部写入同一个实例。
func (d *Decoder) fillFields(inst *instance, desc *schema.Descriptor, target reflect.Value, depth int) error {
	if desc.Parent != nil {
		if err := d.enter(desc.Parent, depth+1); err != nil {
			return err
		}
		absent, err := d.r.ReadFlag(desc.Parent.Name())
		if err != nil {
			return err
		}
		if absent {
			return merr.WrapErrStructuralViolation("parent marked absent",
				merr.Value("type", desc.Name()),
				merr.Value("parent", desc.Parent.Name()))
		}
		parent := schema.Settable(target.Field(desc.ParentIndex))
		if err := d.fillFields(inst, desc.Parent, parent, depth+1); err != nil {
			return err
		}
	}
	for _, f := range desc.Fields {
		if f.Excluded {
			continue
		}
		if err := d.decode(f.Desc, schema.Settable(target.Field(f.Index)), depth+1); err != nil {
			return err
		}
		inst.mark(desc, f.Index)
	}
	return nil
}
