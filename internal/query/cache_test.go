package query

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counter(calls *int32, value string) func(context.Context) (string, error) {
	return func(context.Context) (string, error) {
		atomic.AddInt32(calls, 1)
		return value, nil
	}
}

func TestFetch_CachesUntilInvalidated(t *testing.T) {
	c := NewClient(time.Hour)
	ctx := context.Background()
	var calls int32

	v, err := Fetch(ctx, c, Key{"products"}, counter(&calls, "v1"))
	require.NoError(t, err)
	assert.Equal(t, "v1", v)

	v, err = Fetch(ctx, c, Key{"products"}, counter(&calls, "v2"))
	require.NoError(t, err)
	assert.Equal(t, "v1", v)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	c.Invalidate("products")
	assert.True(t, c.IsStale(Key{"products"}))

	v, err = Fetch(ctx, c, Key{"products"}, counter(&calls, "v2"))
	require.NoError(t, err)
	assert.Equal(t, "v2", v)
	assert.False(t, c.IsStale(Key{"products"}))
}

func TestInvalidate_PrefixMatchesChildren(t *testing.T) {
	c := NewClient(time.Hour)
	ctx := context.Background()
	var calls int32

	for _, k := range []Key{{"sales"}, {"sales", "u1"}, {"saleDetails", "s1"}, {"products"}} {
		_, err := Fetch(ctx, c, k, counter(&calls, "x"))
		require.NoError(t, err)
	}

	c.Invalidate("sales")

	assert.True(t, c.IsStale(Key{"sales"}))
	assert.True(t, c.IsStale(Key{"sales", "u1"}))
	assert.False(t, c.IsStale(Key{"saleDetails", "s1"}))
	assert.False(t, c.IsStale(Key{"products"}))
}

func TestFetch_TTLExpiry(t *testing.T) {
	c := NewClient(time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	var calls int32

	_, err := Fetch(context.Background(), c, Key{"users"}, counter(&calls, "a"))
	require.NoError(t, err)

	now = now.Add(time.Minute)
	assert.True(t, c.IsStale(Key{"users"}))

	_, err = Fetch(context.Background(), c, Key{"users"}, counter(&calls, "b"))
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls)
}

func TestFetch_ErrorNotCached(t *testing.T) {
	c := NewClient(time.Hour)
	ctx := context.Background()

	_, err := Fetch(ctx, c, Key{"products"}, func(context.Context) ([]int, error) {
		return nil, errors.New("backend down")
	})
	require.ErrorContains(t, err, "backend down")
	assert.False(t, c.Has(Key{"products"}))

	v, err := Fetch(ctx, c, Key{"products"}, func(context.Context) ([]int, error) {
		return []int{1, 2}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, v)
}

func TestFetch_ConcurrentCallersShareOneFetch(t *testing.T) {
	c := NewClient(time.Hour)
	var calls int32
	release := make(chan struct{})

	fn := func(context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return "done", nil
	}

	var wg sync.WaitGroup
	results := make([]string, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = Fetch(context.Background(), c, Key{"products"}, fn)
		}(i)
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for _, r := range results {
		assert.Equal(t, "done", r)
	}
}

func TestRemove(t *testing.T) {
	c := NewClient(0)
	var calls int32
	_, _ = Fetch(context.Background(), c, Key{"userRole", "u1"}, counter(&calls, "admin"))
	_, _ = Fetch(context.Background(), c, Key{"users"}, counter(&calls, "list"))

	c.Remove("userRole")

	assert.False(t, c.Has(Key{"userRole", "u1"}))
	assert.True(t, c.Has(Key{"users"}))
	assert.False(t, c.IsStale(Key{"users"}), "zero ttl never expires")
}

func TestKey_HasPrefix(t *testing.T) {
	assert.True(t, Key{"sales", "u1"}.HasPrefix(Key{"sales"}))
	assert.True(t, Key{"sales"}.HasPrefix(Key{}))
	assert.False(t, Key{"sales"}.HasPrefix(Key{"sales", "u1"}))
	assert.False(t, Key{"saleDetails"}.HasPrefix(Key{"sales"}))
	assert.Equal(t, "sales/u1", Key{"sales", "u1"}.String())
}

func TestInvalidate_DuringFetchMarksResultStale(t *testing.T) {
	c := NewClient(time.Hour)
	ctx := context.Background()
	entered := make(chan struct{})
	release := make(chan struct{})

	done := make(chan string)
	go func() {
		v, _ := Fetch(ctx, c, Key{Products}, func(context.Context) (string, error) {
			close(entered)
			<-release
			return "pre-sale stock", nil
		})
		done <- v
	}()

	<-entered
	c.Invalidate(Products)
	close(release)
	assert.Equal(t, "pre-sale stock", <-done)

	assert.True(t, c.IsStale(Key{Products}))

	var calls int32
	v, err := Fetch(ctx, c, Key{Products}, counter(&calls, "post-sale stock"))
	require.NoError(t, err)
	assert.Equal(t, "post-sale stock", v)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestInvalidate_OtherPrefixDuringFetchKeepsResult(t *testing.T) {
	c := NewClient(time.Hour)
	ctx := context.Background()
	entered := make(chan struct{})
	release := make(chan struct{})

	done := make(chan struct{})
	go func() {
		_, _ = Fetch(ctx, c, Key{Products}, func(context.Context) (string, error) {
			close(entered)
			<-release
			return "stock", nil
		})
		close(done)
	}()

	<-entered
	c.Invalidate(Sales)
	close(release)
	<-done

	assert.False(t, c.IsStale(Key{Products}))
}
