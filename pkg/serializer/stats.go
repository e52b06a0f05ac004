package serializer

import (
	"go.uber.org/atomic"

	"github.com/lk2023060901/objcodec/pkg/metrics"
)

// Stats 记录单个 Codec 的累计调用情况。
type Stats struct {
	encodeCalls    atomic.Int64
	decodeCalls    atomic.Int64
	encodeFailures atomic.Int64
	decodeFailures atomic.Int64
	bytesEncoded   atomic.Int64
	bytesDecoded   atomic.Int64
}

// StatsSnapshot 是 Stats 在某一时刻的快照。
type StatsSnapshot struct {
	EncodeCalls    int64 `json:"encode-calls"`
	DecodeCalls    int64 `json:"decode-calls"`
	EncodeFailures int64 `json:"encode-failures"`
	DecodeFailures int64 `json:"decode-failures"`
	BytesEncoded   int64 `json:"bytes-encoded"`
	BytesDecoded   int64 `json:"bytes-decoded"`
}

func (s *Stats) observe(direction string, n int, err error) {
	if direction == metrics.DirectionEncode {
		s.encodeCalls.Inc()
		if err != nil {
			s.encodeFailures.Inc()
			return
		}
		s.bytesEncoded.Add(int64(n))
		return
	}
	s.decodeCalls.Inc()
	if err != nil {
		s.decodeFailures.Inc()
		return
	}
	s.bytesDecoded.Add(int64(n))
}

func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		EncodeCalls:    s.encodeCalls.Load(),
		DecodeCalls:    s.decodeCalls.Load(),
		EncodeFailures: s.encodeFailures.Load(),
		DecodeFailures: s.decodeFailures.Load(),
		BytesEncoded:   s.bytesEncoded.Load(),
		BytesDecoded:   s.bytesDecoded.Load(),
	}
}
