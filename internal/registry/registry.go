// Package registry 维护类型标识与运行时类型之间的双向映射。
//
// 类型标识的文法：
//
//	id    := named | "*" id | "[]" id | "[" N "]" id
//	named := 预声明类型名（int32、string ...）| <包路径>.<类型名> | 注册时指定的别名
package registry

import (
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/lk2023060901/objcodec/pkg/log"
	"github.com/lk2023060901/objcodec/pkg/util/merr"
)

const (
	// maxArrayLen 限制类型标识中数组长度。
	maxArrayLen = 1 << 24
	// maxReportedIDLen 为错误信息中保留的标识长度。
	maxReportedIDLen = 128

	// MaxNesting 为类型标识中 *、[]、[N] 前缀的最大层数。
	MaxNesting = 64
	// MaxTypeSize 为解析出的数组类型允许的最大字节数。
	MaxTypeSize = 1 << 30
)

// Resolver 将类型标识解析为运行时类型，并为运行时类型生成标识。
type Resolver interface {
	TypeID(t reflect.Type) (string, error)
	Resolve(id string) (reflect.Type, error)
}

var builtins = func() map[string]reflect.Type {
	m := make(map[string]reflect.Type)
	for _, v := range []any{
		false, int(0), int8(0), int16(0), int32(0), int64(0),
		uint(0), uint8(0), uint16(0), uint32(0), uint64(0), uintptr(0),
		float32(0), float64(0), complex64(0), complex128(0), "",
	} {
		t := reflect.TypeOf(v)
		m[t.Name()] = t
	}
	return m
}()

// Registry 是 Resolver 的默认实现，可以并发使用。
type Registry struct {
	mu     sync.RWMutex
	byName map[string]reflect.Type
	byType map[reflect.Type]string
	// autoRegister 为 true 时，TypeID 遇到未注册的具名类型会以默认名称自动注册。
	autoRegister bool
}

func New(autoRegister bool) *Registry {
	return &Registry{
		byName:       make(map[string]reflect.Type),
		byType:       make(map[reflect.Type]string),
		autoRegister: autoRegister,
	}
}

var defaultRegistry = New(true)

// Default 返回进程级共享的注册表。
func Default() *Registry {
	return defaultRegistry
}

// DefaultName 返回具名类型的默认标识：<包路径>.<类型名>。
func DefaultName(t reflect.Type) string {
	if t.PkgPath() == "" {
		return t.Name()
	}
	return t.PkgPath() + "." + t.Name()
}

// Register 以默认名称注册 v 的类型。v 为指针时注册其指向的类型。
func (r *Registry) Register(v any) error {
	t, err := namedType(v)
	if err != nil {
		return err
	}
	return r.register(DefaultName(t), t)
}

// RegisterName 以指定名称注册 v 的类型，用于跨版本、跨包重命名后保持线上标识不变。
func (r *Registry) RegisterName(name string, v any) error {
	if name == "" || strings.ContainsAny(name, "*[]") {
		return merr.WrapErrParameterInvalidMsg("invalid type name %q", name)
	}
	if _, ok := builtins[name]; ok {
		return merr.WrapErrParameterInvalidMsg("type name %q is reserved", name)
	}
	t, err := namedType(v)
	if err != nil {
		return err
	}
	return r.register(name, t)
}

func namedType(v any) (reflect.Type, error) {
	t := reflect.TypeOf(v)
	if t == nil {
		return nil, merr.WrapErrParameterInvalidMsg("cannot register nil")
	}
	if t.Kind() == reflect.Pointer && t.Name() == "" {
		t = t.Elem()
	}
	if t.Name() == "" || t.PkgPath() == "" {
		return nil, merr.WrapErrParameterInvalidMsg("only named non-builtin types can be registered, got %s", t)
	}
	return t, nil
}

func (r *Registry) register(name string, t reflect.Type) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.byName[name]; ok && prev != t {
		return merr.WrapErrParameterInvalidMsg("type name %q already registered for %s", name, prev)
	}
	if prev, ok := r.byType[t]; ok && prev != name {
		// 同一个类型允许多个名称都能解析，生成标识时使用第一次注册的名称。
		r.byName[name] = t
		return nil
	}
	r.byName[name] = t
	r.byType[t] = name
	log.Debug("type registered", log.FieldTypeID(name), zap.Stringer("type", t))
	return nil
}

// TypeID 实现 Resolver。前缀层数超过 MaxNesting 的类型无法生成标识。
func (r *Registry) TypeID(t reflect.Type) (string, error) {
	if t == nil {
		return "", merr.WrapErrParameterInvalidMsg("nil type")
	}
	var prefix strings.Builder
	for depth := 0; t.Name() == ""; depth++ {
		if depth >= MaxNesting {
			return "", merr.WrapErrUnsupportedType(t.String(), "type nesting too deep")
		}
		switch t.Kind() {
		case reflect.Pointer:
			prefix.WriteString("*")
		case reflect.Slice:
			prefix.WriteString("[]")
		case reflect.Array:
			prefix.WriteString("[" + strconv.Itoa(t.Len()) + "]")
		default:
			return "", merr.WrapErrUnsupportedType(t.String(), "type has no identifier")
		}
		t = t.Elem()
	}
	id, err := r.namedID(t)
	if err != nil {
		return "", err
	}
	return prefix.String() + id, nil
}

func (r *Registry) namedID(t reflect.Type) (string, error) {
	if t.PkgPath() == "" {
		if _, ok := builtins[t.Name()]; ok {
			return t.Name(), nil
		}
		return "", merr.WrapErrUnsupportedType(t.String(), "type has no identifier")
	}

	r.mu.RLock()
	name, ok := r.byType[t]
	r.mu.RUnlock()
	if ok {
		return name, nil
	}
	if !r.autoRegister {
		return "", merr.WrapErrTypeResolution(DefaultName(t), "type not registered")
	}
	name = DefaultName(t)
	if err := r.register(name, t); err != nil {
		return "", err
	}
	return name, nil
}

// Resolve 实现 Resolver。
func (r *Registry) Resolve(id string) (reflect.Type, error) {
	t, err := r.resolve(id)
	if err != nil {
		return nil, merr.WrapErrTypeResolution(abbreviate(id), err.Error())
	}
	return t, nil
}

// wrapper 是类型标识中的一层前缀：*、[] 或 [N]。
type wrapper struct {
	kind reflect.Kind
	n    int
}

// resolve 先逐个剥离前缀，再从最内层的具名类型向外构造，解析过程不递归。
func (r *Registry) resolve(id string) (reflect.Type, error) {
	var wrappers []wrapper
	rest := id
	for strings.HasPrefix(rest, "*") || strings.HasPrefix(rest, "[") {
		if len(wrappers) >= MaxNesting {
			return nil, errTooDeep
		}
		switch {
		case strings.HasPrefix(rest, "*"):
			wrappers = append(wrappers, wrapper{kind: reflect.Pointer})
			rest = rest[1:]
		case strings.HasPrefix(rest, "[]"):
			wrappers = append(wrappers, wrapper{kind: reflect.Slice})
			rest = rest[2:]
		default:
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				return nil, errMalformedID
			}
			n, err := strconv.Atoi(rest[1:end])
			if err != nil || n < 0 || n > maxArrayLen {
				return nil, errMalformedID
			}
			wrappers = append(wrappers, wrapper{kind: reflect.Array, n: n})
			rest = rest[end+1:]
		}
	}

	t, err := r.named(rest)
	if err != nil {
		return nil, err
	}
	for i := len(wrappers) - 1; i >= 0; i-- {
		w := wrappers[i]
		switch w.kind {
		case reflect.Pointer:
			if t.Kind() == reflect.Pointer {
				return nil, errNestedPointer
			}
			t = reflect.PointerTo(t)
		case reflect.Slice:
			t = reflect.SliceOf(t)
		case reflect.Array:
			if size := uint64(t.Size()); size != 0 && uint64(w.n) > MaxTypeSize/size {
				return nil, errTypeTooLarge
			}
			t = reflect.ArrayOf(w.n, t)
		}
	}
	return t, nil
}

func (r *Registry) named(name string) (reflect.Type, error) {
	if name == "" {
		return nil, errEmptyID
	}
	if t, ok := builtins[name]; ok {
		return t, nil
	}
	r.mu.RLock()
	t, ok := r.byName[name]
	r.mu.RUnlock()
	if !ok {
		return nil, errUnknownName
	}
	return t, nil
}

// abbreviate 截断过长的标识，避免把整段输入写进错误信息和日志。
func abbreviate(id string) string {
	if len(id) <= maxReportedIDLen {
		return id
	}
	return id[:maxReportedIDLen] + "...(" + strconv.Itoa(len(id)) + " bytes)"
}

// Names 返回所有已注册的名称，按字典序排列。
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := lo.Keys(r.byName)
	sort.Strings(names)
	return names
}
