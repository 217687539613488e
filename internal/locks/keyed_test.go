package locks

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localnerve/ops-portal/internal/types"
)

func TestAcquireSerializesSameKey(t *testing.T) {
	k := New(time.Second)
	var inside, maxInside int32
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := k.With(context.Background(), []string{"ledger"}, func() error {
				n := atomic.AddInt32(&inside, 1)
				for {
					m := atomic.LoadInt32(&maxInside)
					if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				atomic.AddInt32(&inside, -1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxInside)
}

func TestAcquireDistinctKeysRunConcurrently(t *testing.T) {
	k := New(time.Second)
	release, err := k.Acquire(context.Background(), "jobs")
	require.NoError(t, err)
	defer release()

	other, err := k.Acquire(context.Background(), "pilots")
	require.NoError(t, err)
	other()
}

func TestAcquireTimesOut(t *testing.T) {
	k := New(20 * time.Millisecond)
	release, err := k.Acquire(context.Background(), "facilities")
	require.NoError(t, err)
	defer release()

	start := time.Now()
	_, err = k.Acquire(context.Background(), "facilities")
	require.Error(t, err)
	assert.True(t, types.IsType(err, types.TypeLockTimeout))
	assert.Less(t, time.Since(start), time.Second)
}

func TestTimeoutReleasesPartialSet(t *testing.T) {
	k := New(20 * time.Millisecond)
	releaseB, err := k.Acquire(context.Background(), "b")
	require.NoError(t, err)

	_, err = k.Acquire(context.Background(), "a", "b")
	require.Error(t, err)

	// "a" must not be left held by the failed attempt.
	releaseA, err := k.Acquire(context.Background(), "a")
	require.NoError(t, err)
	releaseA()
	releaseB()
}

func TestReleaseOnErrorPath(t *testing.T) {
	k := New(50 * time.Millisecond)
	boom := errors.New("boom")

	err := k.With(context.Background(), []string{"settings"}, func() error { return boom })
	assert.ErrorIs(t, err, boom)

	err = k.With(context.Background(), []string{"settings"}, func() error { return nil })
	assert.NoError(t, err)
}

func TestReleaseIsIdempotent(t *testing.T) {
	k := New(50 * time.Millisecond)
	release, err := k.Acquire(context.Background(), "x")
	require.NoError(t, err)
	release()
	release()

	again, err := k.Acquire(context.Background(), "x")
	require.NoError(t, err)
	again()
}

func TestOverlappingKeySetsDoNotDeadlock(t *testing.T) {
	k := New(2 * time.Second)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, k.With(context.Background(), []string{"pilots", "manna"}, func() error { return nil }))
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, k.With(context.Background(), []string{"manna", "pilots"}, func() error { return nil }))
		}()
	}
	wg.Wait()
}
