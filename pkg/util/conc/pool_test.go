// Licensed to the LF AI & Data foundation under one
// or more contributor license agreements. See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership. The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License. You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package conc

import (
	"errors"
	"testing"
	"time"

	ants "github.com/panjf2000/ants/v2"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

func TestPool(t *testing.T) {
	pool := NewPool[int](4)
	defer pool.Release()
	assert.Equal(t, 4, pool.Cap())

	futures := make([]*Future[int], 0, 16)
	for i := 0; i < 16; i++ {
		i := i
		futures = append(futures, pool.Submit(func() (int, error) {
			return i * i, nil
		}))
	}
	require.NoError(t, AwaitAll(futures...))
	for i, f := range futures {
		assert.Equal(t, i*i, f.Value())
	}
}

func TestPoolError(t *testing.T) {
	pool := NewDefaultPool[string]()
	defer pool.Release()

	boom := errors.New("boom")
	ok := pool.Submit(func() (string, error) { return "ok", nil })
	bad := pool.Submit(func() (string, error) { return "", boom })

	assert.ErrorIs(t, AwaitAll(ok, bad), boom)
	v, err := ok.Await()
	assert.NoError(t, err)
	assert.Equal(t, "ok", v)
	<-bad.Done()
}

func TestPoolPanic(t *testing.T) {
	pool := NewPool[int](1, WithConcealPanic(true))
	defer pool.Release()

	f := pool.Submit(func() (int, error) {
		panic("oops")
	})
	assert.ErrorContains(t, f.Err(), "oops")
}

func TestPreHandler(t *testing.T) {
	var called atomic.Int32
	pool := NewPool[int](2, WithPreHandler(func() { called.Inc() }), WithPreAlloc(true))
	defer pool.Release()

	require.NoError(t, AwaitAll(
		pool.Submit(func() (int, error) { return 1, nil }),
		pool.Submit(func() (int, error) { return 2, nil }),
	))
	assert.Equal(t, int32(2), called.Load())
}

func TestNonBlocking(t *testing.T) {
	pool := NewPool[int](1, WithNonBlocking(true), WithExpiryDuration(time.Second), WithDisablePurge(true))
	defer pool.Release()

	release := make(chan struct{})
	first := pool.Submit(func() (int, error) {
		<-release
		return 1, nil
	})
	second := pool.Submit(func() (int, error) { return 2, nil })
	assert.ErrorIs(t, second.Err(), ants.ErrPoolOverload)

	close(release)
	v, err := first.Await()
	assert.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestPanicHandler(t *testing.T) {
	var handled atomic.Value
	pool := NewPool[int](1, WithPanicHandler(func(v any) { handled.Store(v) }))
	defer pool.Release()

	f := pool.Submit(func() (int, error) {
		panic("custom")
	})
	assert.Error(t, f.Err())
	assert.Eventually(t, func() bool { return handled.Load() == "custom" }, time.Second, 10*time.Millisecond)
}
