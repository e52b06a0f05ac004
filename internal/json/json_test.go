package json

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string   `json:"name"`
	Tags  []string `json:"tags,omitempty"`
	Count int      `json:"count"`
}

func TestRoundTrip(t *testing.T) {
	data, err := Marshal(sample{Name: "a", Count: 2})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"a","count":2}`, string(data))

	var got sample
	require.NoError(t, Unmarshal([]byte(`{"name":"b","tags":["x"],"count":3}`), &got))
	assert.Equal(t, sample{Name: "b", Tags: []string{"x"}, Count: 3}, got)
}

func TestMarshalString(t *testing.T) {
	assert.Equal(t, `{"name":"","count":0}`, MarshalString(sample{}))
	assert.Contains(t, MarshalString(make(chan int)), "<json: ")
}
