package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveCall(t *testing.T) {
	registry := prometheus.NewRegistry()
	Register(registry)
	assert.Equal(t, prometheus.Registerer(registry), GetRegisterer())

	before := testutil.ToFloat64(CodecCalls.WithLabelValues(DirectionEncode))
	ObserveCall(DirectionEncode, 32, 0)
	ObserveCall(DirectionEncode, 0, 4002)
	assert.Equal(t, before+2, testutil.ToFloat64(CodecCalls.WithLabelValues(DirectionEncode)))
	assert.Equal(t, float64(1), testutil.ToFloat64(CodecFailures.WithLabelValues(DirectionEncode, "4002")))
}
