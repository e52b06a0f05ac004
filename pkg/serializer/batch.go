package serializer

import (
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/lk2023060901/objcodec/pkg/util/conc"
)

var (
	batchPoolOnce sync.Once
	batchPool     *conc.Pool[[]byte]
)

func getBatchPool() *conc.Pool[[]byte] {
	batchPoolOnce.Do(func() {
		batchPool = conc.NewDefaultPool[[]byte](conc.WithConcealPanic(true))
	})
	return batchPool
}

// MarshalBatch 并发编码多个互不相关的根值，结果与 values 按下标一一对应。
// 任一值编码失败时返回下标最小的错误。
func (c *Codec) MarshalBatch(values []any) ([][]byte, error) {
	pool := getBatchPool()
	futures := make([]*conc.Future[[]byte], len(values))
	for i, v := range values {
		v := v
		futures[i] = pool.Submit(func() ([]byte, error) {
			return c.Marshal(v)
		})
	}

	out := make([][]byte, len(values))
	var first error
	for i, f := range futures {
		data, err := f.Await()
		if err != nil {
			if first == nil {
				first = errors.Wrapf(err, "value %d", i)
			}
			continue
		}
		out[i] = data
	}
	if first != nil {
		return nil, first
	}
	return out, nil
}
