// Copyright 2021 The httpx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package dispatch

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInline(t *testing.T) {
	ran := false
	Inline.Dispatch(func() { ran = true })
	assert.True(t, ran)
}

func TestGoroutine(t *testing.T) {
	ch := make(chan struct{})
	Goroutine.Dispatch(func() { close(ch) })
	select {
	case <-ch:
	case <-time.After(time.Second):
		require.Fail(t, "function not run")
	}
}

func TestQueue(t *testing.T) {
	assert.PanicsWithValue(t, "reqx/dispatch: negative buffer", func() { NewQueue(-1) })

	t.Run("serial in order", func(t *testing.T) {
		q := NewQueue(4)
		var running int32
		var order []int
		for i := 0; i < 100; i++ {
			i := i
			q.Dispatch(func() {
				assert.Equal(t, int32(1), atomic.AddInt32(&running, 1))
				order = append(order, i)
				atomic.AddInt32(&running, -1)
			})
		}
		q.Close()
		require.Len(t, order, 100)
		for i := range order {
			assert.Equal(t, i, order[i])
		}
	})
	t.Run("concurrent dispatchers", func(t *testing.T) {
		q := NewQueue(0)
		var n int32
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				q.Dispatch(func() { atomic.AddInt32(&n, 1) })
			}()
		}
		wg.Wait()
		q.Close()
		assert.Equal(t, int32(20), atomic.LoadInt32(&n))
	})
	t.Run("after close runs inline", func(t *testing.T) {
		q := NewQueue(1)
		q.Close()
		q.Close()
		ran := false
		q.Dispatch(func() { ran = true })
		assert.True(t, ran)
	})
}
