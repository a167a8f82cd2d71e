package cache_test

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/inputguard/pkg/cache"
)

func TestLRU_PutGet(t *testing.T) {
	t.Parallel()

	c := cache.NewLRU[string, int](2)
	c.Put("a", 1)
	c.Put("b", 2)

	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	// "b" is now least recently used.
	c.Put("c", 3)
	_, ok = c.Get("b")
	assert.False(t, ok)
	assert.Equal(t, 2, c.Len())

	c.Put("a", 10)
	v, _ = c.Get("a")
	assert.Equal(t, 10, v)
}

func TestLRU_GetOrCompute(t *testing.T) {
	t.Parallel()

	t.Run("builds once per key", func(t *testing.T) {
		t.Parallel()
		c := cache.NewLRU[string, int](4)
		var calls int
		build := func(k string) (int, error) {
			calls++
			return len(k), nil
		}

		v, err := c.GetOrCompute("abc", build)
		require.NoError(t, err)
		assert.Equal(t, 3, v)

		v, err = c.GetOrCompute("abc", build)
		require.NoError(t, err)
		assert.Equal(t, 3, v)
		assert.Equal(t, 1, calls)
	})

	t.Run("does not cache errors", func(t *testing.T) {
		t.Parallel()
		c := cache.NewLRU[string, int](4)
		boom := errors.New("boom")

		_, err := c.GetOrCompute("k", func(string) (int, error) { return 0, boom })
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 0, c.Len())
	})

	t.Run("concurrent access", func(t *testing.T) {
		t.Parallel()
		c := cache.NewLRU[int, int](8)
		var builds atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < 64; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				v, err := c.GetOrCompute(i%4, func(k int) (int, error) {
					builds.Add(1)
					return k * k, nil
				})
				assert.NoError(t, err)
				assert.Equal(t, (i%4)*(i%4), v)
			}(i)
		}
		wg.Wait()
		assert.Equal(t, 4, c.Len())
		assert.GreaterOrEqual(t, builds.Load(), int32(4))
	})
}

func TestLRU_Purge(t *testing.T) {
	t.Parallel()

	c := cache.NewLRU[string, string](2)
	c.Put("a", "x")
	c.Purge()
	assert.Equal(t, 0, c.Len())
	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestNewLRU_PanicsOnInvalidCapacity(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { cache.NewLRU[string, int](0) })
}
