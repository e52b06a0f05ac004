package log

import (
	"go.uber.org/zap"
)

const (
	FieldNameModule    = "module"
	FieldNameComponent = "component"
	FieldNameTypeID    = "typeID"
	FieldNameBytes     = "bytes"
)

// FieldModule 返回一个包含模块名的 zap 字段。
func FieldModule(module string) zap.Field {
	return zap.String(FieldNameModule, module)
}

// FieldComponent 返回一个包含组件名的 zap 字段。
func FieldComponent(component string) zap.Field {
	return zap.String(FieldNameComponent, component)
}

// FieldTypeID 返回一个包含根类型标识的 zap 字段。
func FieldTypeID(typeID string) zap.Field {
	return zap.String(FieldNameTypeID, typeID)
}

// FieldBytes 返回一个包含字节数的 zap 字段。
func FieldBytes(n int) zap.Field {
	return zap.Int(FieldNameBytes, n)
}
