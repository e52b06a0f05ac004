package hardware

import (
	"runtime"
	"sync"

	"github.com/shirou/gopsutil/v3/cpu"
	"go.uber.org/zap"

	"github.com/lk2023060901/objcodec/pkg/log"
)

var (
	cpuNumOnce sync.Once
	cpuNum     int
)

// GetCPUNum 返回主机逻辑 CPU 核数，结果只在第一次调用时探测。
// gopsutil 探测失败时退回 runtime.NumCPU。
func GetCPUNum() int {
	cpuNumOnce.Do(func() {
		n, err := cpu.Counts(true)
		if err != nil || n <= 0 {
			log.Warn("failed to detect cpu count, fallback to runtime.NumCPU", zap.Error(err))
			n = runtime.NumCPU()
		}
		cpuNum = n
	})
	return cpuNum
}
