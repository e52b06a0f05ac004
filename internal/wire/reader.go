package wire

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/lk2023060901/objcodec/pkg/util/merr"
)

// Reader 从底层 io.Reader 顺序读取基础值。
//
// 只读取当前值需要的字节，不做预读：同一个数据源在一次 Deserialize 之后仍可继续使用。
type Reader struct {
	r       io.Reader
	br      io.ByteReader // 底层实现了 io.ByteReader 时直接复用
	limits  Limits
	n       int
	scratch [8]byte
}

// NewReader 创建一个 Reader。
func NewReader(r io.Reader, limits Limits) *Reader {
	rd := &Reader{r: r, limits: limits}
	if br, ok := r.(io.ByteReader); ok {
		rd.br = br
	}
	return rd
}

// Consumed 返回目前已读取的字节数。
func (r *Reader) Consumed() int {
	return r.n
}

// ReadByte 实现 io.ByteReader，供 binary.ReadUvarint 使用。
// 返回的是底层原始错误，由调用方统一转换。
func (r *Reader) ReadByte() (byte, error) {
	if r.br != nil {
		b, err := r.br.ReadByte()
		if err == nil {
			r.n++
		}
		return b, err
	}
	if _, err := io.ReadFull(r.r, r.scratch[:1]); err != nil {
		return 0, err
	}
	r.n++
	return r.scratch[0], nil
}

// ReadFlag 读取存在标志，返回 true 表示缺失。
func (r *Reader) ReadFlag(typeName string) (bool, error) {
	b, err := r.ReadByte()
	if err != nil {
		return false, merr.WrapErrIoRead("presence flag of "+typeName, err)
	}
	switch b {
	case FlagAbsent:
		return true, nil
	case FlagPresent:
		return false, nil
	default:
		return false, merr.WrapErrPresenceFlag(b, typeName)
	}
}

func (r *Reader) ReadBool() (bool, error) {
	b, err := r.ReadByte()
	if err != nil {
		return false, merr.WrapErrIoRead("bool", err)
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, merr.WrapErrStructuralViolation("invalid bool byte", merr.Value("byte", b))
	}
}

// ReadFixed 读取 size 个字节的小端无符号整数，size 只能是 1、2、4、8。
func (r *Reader) ReadFixed(size int) (uint64, error) {
	buf := r.scratch[:size]
	if err := r.readFull(buf); err != nil {
		return 0, merr.WrapErrIoRead("fixed-width value", err)
	}
	switch size {
	case 1:
		return uint64(buf[0]), nil
	case 2:
		return uint64(binary.LittleEndian.Uint16(buf)), nil
	case 4:
		return uint64(binary.LittleEndian.Uint32(buf)), nil
	case 8:
		return binary.LittleEndian.Uint64(buf), nil
	default:
		panic("wire: unsupported fixed width")
	}
}

func (r *Reader) ReadFloat32() (float32, error) {
	u, err := r.ReadFixed(4)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(uint32(u)), nil
}

func (r *Reader) ReadFloat64() (float64, error) {
	u, err := r.ReadFixed(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(u), nil
}

// ReadCount 读取序列元素个数，并按 Limits.MaxSequenceLength 校验。
func (r *Reader) ReadCount() (int, error) {
	u, err := r.ReadFixed(CountSize)
	if err != nil {
		return 0, err
	}
	n := int32(uint32(u))
	if !within(n, r.limits.MaxSequenceLength) {
		return 0, merr.WrapErrSequenceLength(int64(n), r.limits.MaxSequenceLength)
	}
	return int(n), nil
}

// CheckAlloc 校验 count 个大小为 elemSize 的元素占用的字节数不超过分配预算，
// 在按流中读到的个数分配内存之前调用。
func (r *Reader) CheckAlloc(count int, elemSize uintptr, typeName string) error {
	if count <= 0 || elemSize == 0 {
		return nil
	}
	budget := r.limits.AllocBudget()
	if uint64(count) > budget/uint64(elemSize) {
		return merr.WrapErrStructuralViolation("allocation exceeds budget",
			merr.Value("type", typeName),
			merr.Value("count", count),
			merr.Value("elemSize", elemSize),
			merr.Value("budget", budget))
	}
	return nil
}

// ReadString 读取 uvarint 长度前缀文本，并按 Limits.MaxTextLength 校验。
func (r *Reader) ReadString() (string, error) {
	length, err := binary.ReadUvarint(r)
	if err != nil {
		return "", merr.WrapErrIoRead("text length", err)
	}
	if length > math.MaxInt32 || !within(length, r.limits.MaxTextLength) {
		return "", merr.WrapErrTextLength(length, r.limits.MaxTextLength)
	}
	if err := r.CheckAlloc(int(length), 1, "string"); err != nil {
		return "", err
	}
	buf := make([]byte, length)
	if err := r.readFull(buf); err != nil {
		return "", merr.WrapErrIoRead("text bytes", err)
	}
	return string(buf), nil
}

// ReadRaw 读取恰好 len(p) 个字节。
func (r *Reader) ReadRaw(p []byte) error {
	if err := r.readFull(p); err != nil {
		return merr.WrapErrIoRead("raw bytes", err)
	}
	return nil
}

func (r *Reader) readFull(p []byte) error {
	if r.br != nil && len(p) == 1 {
		b, err := r.ReadByte()
		if err != nil {
			return err
		}
		p[0] = b
		return nil
	}
	n, err := io.ReadFull(r.r, p)
	r.n += n
	return err
}
