package schema

import (
	"reflect"
	"sync"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/lk2023060901/objcodec/pkg/log"
	"github.com/lk2023060901/objcodec/pkg/util/merr"
)

// TagName 是字段标签的键名，`objcodec:"-"` 表示该字段不参与序列化。
const TagName = "objcodec"

// Descriptor 描述一个类型在线上的编码形态。
//
// Descriptor 创建后不再修改，可以被多个 goroutine 并发读取。
type Descriptor struct {
	Type      reflect.Type
	Kind      Kind
	Primitive PrimitiveKind

	// Elem 为 Sequence 的元素类型或 Optional 的内层类型。
	Elem *Descriptor
	// Len 为数组长度，切片为 -1。
	Len int

	// Parent 为 Composite 的父类型，ParentIndex 为承载父类型的内嵌字段下标。
	Parent      *Descriptor
	ParentIndex int
	// Fields 为自身声明的字段（不含父类型字段），按声明顺序排列，包含被排除的字段。
	Fields []Field
	// Slots 为解码时必须填充的字段总数，包含整条父类型链。
	Slots int
}

// Field 描述 Composite 的一个声明字段。
type Field struct {
	Name     string
	Index    int
	Excluded bool
	Desc     *Descriptor // Excluded 为 true 时为 nil
}

// Name 返回用于错误信息与日志的类型名。
func (d *Descriptor) Name() string {
	return d.Type.String()
}

// IsBytes 判断是否为元素类型为 uint8 的序列，这类序列按整块字节读写。
func (d *Descriptor) IsBytes() bool {
	return d.Kind == KindSequence && d.Elem.Kind == KindPrimitive && d.Elem.Primitive == PrimitiveUint8
}

// IsSlice 判断序列是否为切片（可以为 nil）。
func (d *Descriptor) IsSlice() bool {
	return d.Kind == KindSequence && d.Len < 0
}

// Serializable 返回参与序列化的字段。
func (d *Descriptor) Serializable() []Field {
	return lo.Filter(d.Fields, func(f Field, _ int) bool {
		return !f.Excluded
	})
}

// Chain 返回从最远祖先到自身的继承链。
func (d *Descriptor) Chain() []*Descriptor {
	var chain []*Descriptor
	for cur := d; cur != nil; cur = cur.Parent {
		chain = append(chain, cur)
	}
	return lo.Reverse(chain)
}

// descriptors 是全局的类型描述缓存，reflect.Type -> *Descriptor。
var descriptors sync.Map

// Describe 返回 t 的描述，首次调用时构建并缓存。
//
// 类型中任何一处不受支持（包括未被排除的字段）都会返回 ErrUnsupportedType。
func Describe(t reflect.Type) (*Descriptor, error) {
	if t == nil {
		return nil, merr.WrapErrParameterInvalidMsg("nil type")
	}
	if d, ok := descriptors.Load(t); ok {
		return d.(*Descriptor), nil
	}

	b := &builder{building: make(map[reflect.Type]*Descriptor)}
	d, err := b.describe(t)
	if err != nil {
		return nil, err
	}
	for _, desc := range b.building {
		if desc.Kind == KindComposite {
			desc.Slots = countSlots(desc)
		}
	}
	for typ, desc := range b.building {
		descriptors.LoadOrStore(typ, desc)
	}
	log.Debug("type descriptor built",
		log.FieldTypeID(t.String()),
		zap.Stringer("kind", d.Kind),
		zap.Int("types", len(b.building)))
	actual, _ := descriptors.Load(t)
	return actual.(*Descriptor), nil
}

// MustDescribe 与 Describe 相同，出错时 panic。
func MustDescribe(t reflect.Type) *Descriptor {
	d, err := Describe(t)
	if err != nil {
		panic(err)
	}
	return d
}

// builder 在一次 Describe 中构建所有可达类型的描述。
// 自引用类型（例如链表节点）在递归前先登记占位，后续引用直接复用同一个 *Descriptor。
type builder struct {
	building map[reflect.Type]*Descriptor
}

func (b *builder) describe(t reflect.Type) (*Descriptor, error) {
	if d, ok := descriptors.Load(t); ok {
		return d.(*Descriptor), nil
	}
	if d, ok := b.building[t]; ok {
		return d, nil
	}

	d := &Descriptor{Type: t, Kind: Classify(t), Len: -1, ParentIndex: -1}
	switch d.Kind {
	case KindInvalid:
		return nil, merr.WrapErrUnsupportedType(t.String(), t.Kind().String())
	case KindPrimitive:
		d.Primitive = PrimitiveOf(t)
		b.building[t] = d
		return d, nil
	case KindText:
		b.building[t] = d
		return d, nil
	}

	b.building[t] = d
	var err error
	switch d.Kind {
	case KindSequence:
		if t.Kind() == reflect.Array {
			d.Len = t.Len()
		}
		d.Elem, err = b.describe(t.Elem())
	case KindOptional:
		d.Elem, err = b.describe(t.Elem())
	case KindComposite:
		err = b.describeFields(d)
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (b *builder) describeFields(d *Descriptor) error {
	t := d.Type
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if i == 0 && isParent(sf) {
			parent, err := b.describe(sf.Type)
			if err != nil {
				return errors.Wrapf(err, "parent %s of %s", sf.Type, t)
			}
			d.Parent = parent
			d.ParentIndex = 0
			continue
		}
		f := Field{Name: sf.Name, Index: i, Excluded: isExcluded(sf)}
		if !f.Excluded {
			fd, err := b.describe(sf.Type)
			if err != nil {
				return errors.Wrapf(err, "field %s of %s", sf.Name, t)
			}
			f.Desc = fd
		}
		d.Fields = append(d.Fields, f)
	}
	return nil
}

// countSlots 必须在整批描述构建完成后调用：构建过程中父类型的字段可能尚不完整。
func countSlots(d *Descriptor) int {
	n := len(d.Serializable())
	if d.Parent != nil {
		n += countSlots(d.Parent)
	}
	return n
}

// isParent 判断首字段是否为父类型：以值方式内嵌的结构体，且未被排除。
func isParent(sf reflect.StructField) bool {
	return sf.Anonymous && sf.Type.Kind() == reflect.Struct && !isExcluded(sf)
}

func isExcluded(sf reflect.StructField) bool {
	if sf.Name == "_" {
		return true
	}
	return sf.Tag.Get(TagName) == "-"
}

// Allocate 分配 t 的零值实例，不调用任何构造逻辑。返回值可寻址。
func Allocate(t reflect.Type) reflect.Value {
	return reflect.New(t).Elem()
}

// Settable 返回可写的字段值。未导出字段通过其地址重新构造一个可写视图。
// v 必须可寻址。
func Settable(v reflect.Value) reflect.Value {
	if v.CanSet() || !v.CanAddr() {
		return v
	}
	return reflect.NewAt(v.Type(), unsafe.Pointer(v.UnsafeAddr())).Elem()
}
