package session

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_PutGet(t *testing.T) {
	r := NewRegistry()

	s := New("conn-1", "devops-dojo-conn-1", "tf-drift")
	require.NoError(t, r.Put(s))

	got, ok := r.Get("conn-1")
	assert.True(t, ok)
	assert.Same(t, s, got)
	assert.True(t, r.Contains("conn-1"))
	assert.Equal(t, 1, r.Len())

	_, ok = r.Get("conn-2")
	assert.False(t, ok)
}

func TestRegistry_PutRejects(t *testing.T) {
	r := NewRegistry()

	assert.Error(t, r.Put(nil))
	assert.Error(t, r.Put(New("", "n", "s")))

	require.NoError(t, r.Put(New("conn-1", "a", "s")))
	err := r.Put(New("conn-1", "b", "s"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_RemoveIfPresentIsIdempotent(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Put(New("conn-1", "a", "s")))

	assert.True(t, r.RemoveIfPresent("conn-1"))
	assert.False(t, r.RemoveIfPresent("conn-1"))
	assert.False(t, r.RemoveIfPresent("never-registered"))
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_ConcurrentRemoveHasOneWinner(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Put(New("conn-1", "a", "s")))

	var winners atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if r.RemoveIfPresent("conn-1") {
				winners.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), winners.Load())
}

func TestRegistry_Snapshot(t *testing.T) {
	r := NewRegistry()
	first := New("conn-1", "a", "s")
	second := New("conn-2", "b", "s")
	second.CreatedAt = first.CreatedAt.Add(time.Second)

	require.NoError(t, r.Put(second))
	require.NoError(t, r.Put(first))

	snap := r.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "conn-1", snap[0].ConnectionID)
	assert.Equal(t, "conn-2", snap[1].ConnectionID)
}
