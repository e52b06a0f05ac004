package schema

import (
	"reflect"
)

// Kind 是驱动编解码遍历的类型分类。
type Kind uint8

const (
	// KindInvalid 表示不受支持的类型（map、chan、func、interface、unsafe.Pointer、**T 等）。
	KindInvalid Kind = iota
	// KindPrimitive 定长标量：原样写入定长字节，没有存在标志也没有长度。
	KindPrimitive
	// KindText 字符串：存在标志 + 长度前缀字节。
	KindText
	// KindSequence 切片或数组：存在标志 + 元素个数 + 逐个元素。
	KindSequence
	// KindOptional 指针：本身不贡献字节，缺失语义由内层类型的存在标志承载。
	KindOptional
	// KindComposite 结构体：存在标志 + 父类型编码 + 自身声明字段。
	KindComposite
)

var kindNames = [...]string{
	KindInvalid:   "invalid",
	KindPrimitive: "primitive",
	KindText:      "text",
	KindSequence:  "sequence",
	KindOptional:  "optional",
	KindComposite: "composite",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// HasPresenceFlag 判断该分类的值是否以 1 字节存在标志开头。
func (k Kind) HasPresenceFlag() bool {
	switch k {
	case KindText, KindSequence, KindComposite:
		return true
	default:
		return false
	}
}

// Classify 根据类型的结构形态给出分类。
//
// 只看 reflect.Kind，不关心类型定义在哪个包：type Celsius float64 与 float64 同为 Primitive。
func Classify(t reflect.Type) Kind {
	if t == nil {
		return KindInvalid
	}
	if PrimitiveOf(t) != PrimitiveNone {
		return KindPrimitive
	}
	switch t.Kind() {
	case reflect.String:
		return KindText
	case reflect.Slice, reflect.Array:
		return KindSequence
	case reflect.Pointer:
		if t.Elem().Kind() == reflect.Pointer {
			return KindInvalid
		}
		return KindOptional
	case reflect.Struct:
		return KindComposite
	default:
		return KindInvalid
	}
}
