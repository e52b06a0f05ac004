package codec

import (
	"reflect"

	"github.com/lk2023060901/objcodec/internal/schema"
	"github.com/lk2023060901/objcodec/internal/wire"
	"github.com/lk2023060901/objcodec/pkg/util/merr"
)

// primitiveCodec 是一个基础类型在两个方向上的实现。
type primitiveCodec struct {
	write func(w *wire.Writer, v reflect.Value)
	read  func(r *wire.Reader, v reflect.Value) error
}

var primitiveCodecs = map[schema.PrimitiveKind]primitiveCodec{
	schema.PrimitiveBool:       boolCodec(),
	schema.PrimitiveInt:        signedCodec(schema.PrimitiveInt.Size()),
	schema.PrimitiveInt8:       signedCodec(schema.PrimitiveInt8.Size()),
	schema.PrimitiveInt16:      signedCodec(schema.PrimitiveInt16.Size()),
	schema.PrimitiveInt32:      signedCodec(schema.PrimitiveInt32.Size()),
	schema.PrimitiveInt64:      signedCodec(schema.PrimitiveInt64.Size()),
	schema.PrimitiveUint:       unsignedCodec(schema.PrimitiveUint.Size()),
	schema.PrimitiveUint8:      unsignedCodec(schema.PrimitiveUint8.Size()),
	schema.PrimitiveUint16:     unsignedCodec(schema.PrimitiveUint16.Size()),
	schema.PrimitiveUint32:     unsignedCodec(schema.PrimitiveUint32.Size()),
	schema.PrimitiveUint64:     unsignedCodec(schema.PrimitiveUint64.Size()),
	schema.PrimitiveUintptr:    unsignedCodec(schema.PrimitiveUintptr.Size()),
	schema.PrimitiveFloat32:    float32Codec(),
	schema.PrimitiveFloat64:    float64Codec(),
	schema.PrimitiveComplex64:  complex64Codec(),
	schema.PrimitiveComplex128: complex128Codec(),
}

// 两个方向必须覆盖同一组基础类型。
func init() {
	for _, pk := range schema.PrimitiveKinds() {
		c, ok := primitiveCodecs[pk]
		if !ok || c.write == nil || c.read == nil {
			panic("codec: primitive " + pk.String() + " is not implemented in both directions")
		}
	}
}

func writePrimitive(w *wire.Writer, pk schema.PrimitiveKind, v reflect.Value) error {
	c, ok := primitiveCodecs[pk]
	if !ok {
		return merr.WrapErrUnsupportedPrimitive(pk.String(), "no writer")
	}
	c.write(w, v)
	return nil
}

func readPrimitive(r *wire.Reader, pk schema.PrimitiveKind, v reflect.Value) error {
	c, ok := primitiveCodecs[pk]
	if !ok {
		return merr.WrapErrUnsupportedPrimitive(pk.String(), "no reader")
	}
	return c.read(r, v)
}

func boolCodec() primitiveCodec {
	return primitiveCodec{
		write: func(w *wire.Writer, v reflect.Value) {
			w.WriteBool(v.Bool())
		},
		read: func(r *wire.Reader, v reflect.Value) error {
			b, err := r.ReadBool()
			if err != nil {
				return err
			}
			v.SetBool(b)
			return nil
		},
	}
}

func signedCodec(size int) primitiveCodec {
	shift := uint(64 - 8*size)
	return primitiveCodec{
		write: func(w *wire.Writer, v reflect.Value) {
			w.WriteFixed(uint64(v.Int()), size)
		},
		read: func(r *wire.Reader, v reflect.Value) error {
			u, err := r.ReadFixed(size)
			if err != nil {
				return err
			}
			// 符号扩展
			n := int64(u<<shift) >> shift
			if v.OverflowInt(n) {
				return merr.WrapErrStructuralViolation("integer overflows target",
					merr.Value("type", v.Type().String()), merr.Value("value", n))
			}
			v.SetInt(n)
			return nil
		},
	}
}

func unsignedCodec(size int) primitiveCodec {
	return primitiveCodec{
		write: func(w *wire.Writer, v reflect.Value) {
			w.WriteFixed(v.Uint(), size)
		},
		read: func(r *wire.Reader, v reflect.Value) error {
			u, err := r.ReadFixed(size)
			if err != nil {
				return err
			}
			if v.OverflowUint(u) {
				return merr.WrapErrStructuralViolation("integer overflows target",
					merr.Value("type", v.Type().String()), merr.Value("value", u))
			}
			v.SetUint(u)
			return nil
		},
	}
}

func float32Codec() primitiveCodec {
	return primitiveCodec{
		write: func(w *wire.Writer, v reflect.Value) {
			w.WriteFloat32(float32(v.Float()))
		},
		read: func(r *wire.Reader, v reflect.Value) error {
			f, err := r.ReadFloat32()
			if err != nil {
				return err
			}
			v.SetFloat(float64(f))
			return nil
		},
	}
}

func float64Codec() primitiveCodec {
	return primitiveCodec{
		write: func(w *wire.Writer, v reflect.Value) {
			w.WriteFloat64(v.Float())
		},
		read: func(r *wire.Reader, v reflect.Value) error {
			f, err := r.ReadFloat64()
			if err != nil {
				return err
			}
			v.SetFloat(f)
			return nil
		},
	}
}

// 复数依次写入实部与虚部。
func complex64Codec() primitiveCodec {
	return primitiveCodec{
		write: func(w *wire.Writer, v reflect.Value) {
			c := v.Complex()
			w.WriteFloat32(float32(real(c)))
			w.WriteFloat32(float32(imag(c)))
		},
		read: func(r *wire.Reader, v reflect.Value) error {
			re, err := r.ReadFloat32()
			if err != nil {
				return err
			}
			im, err := r.ReadFloat32()
			if err != nil {
				return err
			}
			v.SetComplex(complex(float64(re), float64(im)))
			return nil
		},
	}
}

func complex128Codec() primitiveCodec {
	return primitiveCodec{
		write: func(w *wire.Writer, v reflect.Value) {
			c := v.Complex()
			w.WriteFloat64(real(c))
			w.WriteFloat64(imag(c))
		},
		read: func(r *wire.Reader, v reflect.Value) error {
			re, err := r.ReadFloat64()
			if err != nil {
				return err
			}
			im, err := r.ReadFloat64()
			if err != nil {
				return err
			}
			v.SetComplex(complex(re, im))
			return nil
		},
	}
}
