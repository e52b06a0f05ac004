package codec

import (
	"reflect"

	"github.com/lk2023060901/objcodec/internal/schema"
	"github.com/lk2023060901/objcodec/pkg/util/merr"
	"github.com/lk2023060901/objcodec/pkg/util/typeutil"
)

// slot 标识继承链上某一层的一个字段。
type slot struct {
	owner *schema.Descriptor
	index int
}

// instance 是解码 Composite 时的构建器：先原始分配零值，逐个写入字段，最后校验完整性。
type instance struct {
	desc   *schema.Descriptor
	value  reflect.Value
	filled typeutil.Set[slot]
}

func newInstance(desc *schema.Descriptor) *instance {
	return &instance{
		desc:   desc,
		value:  schema.Allocate(desc.Type),
		filled: typeutil.NewSet[slot](),
	}
}

func (i *instance) mark(owner *schema.Descriptor, index int) {
	i.filled.Insert(slot{owner: owner, index: index})
}

// finalize 确认整条继承链上每个未排除的字段都已写入。
//
// fillFields 在每个字段解码成功后立即 mark，正常解码路径上计数总是等于 Slots；
// 这里校验的是 Descriptor.Slots 与字段遍历保持一致这一不变量，失败只可能来自内部缺陷。
func (i *instance) finalize() (reflect.Value, error) {
	if i.filled.Len() != i.desc.Slots {
		return reflect.Value{}, merr.WrapErrStructuralViolation("incomplete instance",
			merr.Value("type", i.desc.Name()),
			merr.Value("filled", i.filled.Len()),
			merr.Value("expected", i.desc.Slots))
	}
	return i.value, nil
}
