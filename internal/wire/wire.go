// Package wire 实现 objcodec 依赖的基础字节流编解码：定长小端整数/浮点、
// 1 字节存在标志、uvarint 长度前缀文本以及 int32 元素个数。
//
// 约定：
//   - 所有定长数值均为小端序。
//   - 存在标志：0x01 表示“缺失（null）”，0x00 表示“存在”，其它取值视为结构错误。
//   - 文本：uvarint（7-bit 分组）长度 + 原始字节。
//   - 序列元素个数：int32 小端。
package wire

import (
	"golang.org/x/exp/constraints"
)

const (
	FlagPresent byte = 0x00
	FlagAbsent  byte = 0x01

	// CountSize 为序列元素个数占用的字节数。
	CountSize = 4

	// HardAllocLimit 是未配置 MaxAllocBytes 时单次分配允许的最大字节数。
	HardAllocLimit = 1 << 40
)

// Limits 约束解码阶段允许分配的最大规模。
// 零值表示不限制（仍受 int32/平台整数范围约束）。
type Limits struct {
	MaxTextLength     int
	MaxSequenceLength int
	// MaxAllocBytes 约束按流中数据分配的单块内存（元素个数 × 元素大小）。
	// <= 0 时使用 HardAllocLimit。
	MaxAllocBytes int
}

// AllocBudget 返回单次分配允许的最大字节数。
func (l Limits) AllocBudget() uint64 {
	if l.MaxAllocBytes <= 0 {
		return HardAllocLimit
	}
	return uint64(l.MaxAllocBytes)
}

// within 判断 n 是否位于 [0, upper] 区间内；upper <= 0 表示不设上限。
func within[T constraints.Integer](n T, upper int) bool {
	if n < 0 {
		return false
	}
	if upper <= 0 {
		return true
	}
	return uint64(n) <= uint64(upper)
}
