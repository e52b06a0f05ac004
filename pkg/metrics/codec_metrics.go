package metrics

import (
	"strconv"
)

// ObserveCall 记录一次调用及其结果。
//
// code 为 0 表示成功，此时 n 计入字节数直方图；否则按错误码累加失败次数。
func ObserveCall(direction string, n int, code int32) {
	CodecCalls.WithLabelValues(direction).Inc()
	if code != 0 {
		CodecFailures.WithLabelValues(direction, strconv.Itoa(int(code))).Inc()
		return
	}
	CodecBytes.WithLabelValues(direction).Observe(float64(n))
}
