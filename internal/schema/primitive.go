package schema

import (
	"reflect"
	"strconv"
)

// PrimitiveKind 是受支持的定长标量的完整枚举。
//
// 编码与解码共用这一份枚举：任何一个方向新增了基础类型，另一个方向都必须同步提供实现，
// internal/codec 在初始化时会逐项校验。
type PrimitiveKind uint8

const (
	PrimitiveNone PrimitiveKind = iota
	PrimitiveBool
	PrimitiveInt
	PrimitiveInt8
	PrimitiveInt16
	PrimitiveInt32
	PrimitiveInt64
	PrimitiveUint
	PrimitiveUint8
	PrimitiveUint16
	PrimitiveUint32
	PrimitiveUint64
	PrimitiveUintptr
	PrimitiveFloat32
	PrimitiveFloat64
	PrimitiveComplex64
	PrimitiveComplex128

	primitiveCount
)

type primitiveInfo struct {
	name string
	kind reflect.Kind
	// size 为编码后的字节数；int/uint/uintptr 一律按 8 字节编码，与平台字长无关。
	size int
}

var primitiveTable = [primitiveCount]primitiveInfo{
	PrimitiveNone:       {"none", reflect.Invalid, 0},
	PrimitiveBool:       {"bool", reflect.Bool, 1},
	PrimitiveInt:        {"int", reflect.Int, 8},
	PrimitiveInt8:       {"int8", reflect.Int8, 1},
	PrimitiveInt16:      {"int16", reflect.Int16, 2},
	PrimitiveInt32:      {"int32", reflect.Int32, 4},
	PrimitiveInt64:      {"int64", reflect.Int64, 8},
	PrimitiveUint:       {"uint", reflect.Uint, 8},
	PrimitiveUint8:      {"uint8", reflect.Uint8, 1},
	PrimitiveUint16:     {"uint16", reflect.Uint16, 2},
	PrimitiveUint32:     {"uint32", reflect.Uint32, 4},
	PrimitiveUint64:     {"uint64", reflect.Uint64, 8},
	PrimitiveUintptr:    {"uintptr", reflect.Uintptr, 8},
	PrimitiveFloat32:    {"float32", reflect.Float32, 4},
	PrimitiveFloat64:    {"float64", reflect.Float64, 8},
	PrimitiveComplex64:  {"complex64", reflect.Complex64, 8},
	PrimitiveComplex128: {"complex128", reflect.Complex128, 16},
}

var primitiveByKind = func() map[reflect.Kind]PrimitiveKind {
	m := make(map[reflect.Kind]PrimitiveKind, primitiveCount)
	for pk := PrimitiveBool; pk < primitiveCount; pk++ {
		m[primitiveTable[pk].kind] = pk
	}
	return m
}()

// PrimitiveOf 返回 t 对应的基础类型；t 不是定长标量时返回 PrimitiveNone。
func PrimitiveOf(t reflect.Type) PrimitiveKind {
	if t == nil {
		return PrimitiveNone
	}
	return primitiveByKind[t.Kind()]
}

// PrimitiveKinds 返回全部受支持的基础类型（不含 PrimitiveNone）。
func PrimitiveKinds() []PrimitiveKind {
	kinds := make([]PrimitiveKind, 0, primitiveCount-1)
	for pk := PrimitiveBool; pk < primitiveCount; pk++ {
		kinds = append(kinds, pk)
	}
	return kinds
}

func (p PrimitiveKind) String() string {
	if p < primitiveCount {
		return primitiveTable[p].name
	}
	return "primitive(" + strconv.Itoa(int(p)) + ")"
}

// Size 返回编码后的字节数，未知类型返回 0。
func (p PrimitiveKind) Size() int {
	if p < primitiveCount {
		return primitiveTable[p].size
	}
	return 0
}
