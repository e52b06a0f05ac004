package wire

import (
	"encoding/binary"
	"math"
)

// Writer 将基础值顺序追加到内存缓冲区。
//
// 编码过程全部写入内存，只有整个值编码成功后才由调用方一次性交给下游 io.Writer，
// 因此失败的调用不会向下游产生任何部分输出。
type Writer struct {
	buf []byte
}

// NewWriter 创建一个 Writer，size 为预分配容量。
func NewWriter(size int) *Writer {
	return &Writer{buf: make([]byte, 0, size)}
}

// Bytes 返回已写入的全部字节。返回值与 Writer 共享底层数组。
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len 返回已写入的字节数。
func (w *Writer) Len() int {
	return len(w.buf)
}

// Reset 清空已写入内容但保留容量。
func (w *Writer) Reset() {
	w.buf = w.buf[:0]
}

func (w *Writer) WriteByte(b byte) error {
	w.buf = append(w.buf, b)
	return nil
}

// WriteFlag 写入存在标志，absent 为 true 表示缺失。
func (w *Writer) WriteFlag(absent bool) {
	if absent {
		w.buf = append(w.buf, FlagAbsent)
		return
	}
	w.buf = append(w.buf, FlagPresent)
}

func (w *Writer) WriteBool(v bool) {
	if v {
		w.buf = append(w.buf, 1)
		return
	}
	w.buf = append(w.buf, 0)
}

// WriteFixed 以小端序写入 v 的低 size 个字节，size 只能是 1、2、4、8。
func (w *Writer) WriteFixed(v uint64, size int) {
	switch size {
	case 1:
		w.buf = append(w.buf, byte(v))
	case 2:
		w.buf = binary.LittleEndian.AppendUint16(w.buf, uint16(v))
	case 4:
		w.buf = binary.LittleEndian.AppendUint32(w.buf, uint32(v))
	case 8:
		w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
	default:
		panic("wire: unsupported fixed width")
	}
}

func (w *Writer) WriteFloat32(v float32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, math.Float32bits(v))
}

func (w *Writer) WriteFloat64(v float64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, math.Float64bits(v))
}

// WriteCount 写入序列元素个数（int32）。
func (w *Writer) WriteCount(n int32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, uint32(n))
}

// WriteString 写入 uvarint 长度前缀文本。
func (w *Writer) WriteString(s string) {
	w.buf = binary.AppendUvarint(w.buf, uint64(len(s)))
	w.buf = append(w.buf, s...)
}

// WriteRaw 原样追加字节，不带任何前缀。
func (w *Writer) WriteRaw(p []byte) {
	w.buf = append(w.buf, p...)
}
