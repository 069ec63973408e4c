package searcher

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriorityQueue(t *testing.T) {
	t.Run("MinHeap", func(t *testing.T) {
		pq := NewPriorityQueue[int](false)

		pq.PushItem(PriorityQueueItem[int]{Value: 1, Distance: 10})
		pq.PushItem(PriorityQueueItem[int]{Value: 2, Distance: 5})
		pq.PushItem(PriorityQueueItem[int]{Value: 3, Distance: 20})

		require.Equal(t, 3, pq.Len())

		top, ok := pq.TopItem()
		require.True(t, ok)
		assert.Equal(t, float32(5), top.Distance)

		for _, want := range []float32{5, 10, 20} {
			item, ok := pq.PopItem()
			require.True(t, ok)
			assert.Equal(t, want, item.Distance)
		}

		_, ok = pq.PopItem()
		assert.False(t, ok)
	})

	t.Run("MaxHeap", func(t *testing.T) {
		pq := NewPriorityQueue[int](true)

		pq.PushItem(PriorityQueueItem[int]{Value: 1, Distance: 10})
		pq.PushItem(PriorityQueueItem[int]{Value: 2, Distance: 5})
		pq.PushItem(PriorityQueueItem[int]{Value: 3, Distance: 20})

		top, ok := pq.TopItem()
		require.True(t, ok)
		assert.Equal(t, 3, top.Value)

		item, _ := pq.PopItem()
		assert.Equal(t, float32(20), item.Distance)
	})

	t.Run("PushItemBounded", func(t *testing.T) {
		// A bounded max heap keeps the k smallest distances.
		pq := NewPriorityQueue[int](true)
		for i, d := range []float32{9, 3, 7, 1, 8, 2} {
			pq.PushItemBounded(PriorityQueueItem[int]{Value: i, Distance: d}, 3)
		}
		require.Equal(t, 3, pq.Len())

		kept := pq.PushItemBounded(PriorityQueueItem[int]{Value: 99, Distance: 100}, 3)
		assert.False(t, kept)

		got := pq.Drain()
		require.Len(t, got, 3)
		assert.Equal(t, []float32{1, 2, 3}, []float32{got[0].Distance, got[1].Distance, got[2].Distance})
		assert.Equal(t, 0, pq.Len())
	})

	t.Run("ZeroCapacity", func(t *testing.T) {
		pq := NewPriorityQueue[int](true)
		assert.False(t, pq.PushItemBounded(PriorityQueueItem[int]{Distance: 1}, 0))
		assert.Equal(t, 0, pq.Len())
	})

	t.Run("Reset", func(t *testing.T) {
		pq := NewPriorityQueue[string](false)
		pq.PushItem(PriorityQueueItem[string]{Value: "a", Distance: 1})
		pq.Reset()
		assert.Equal(t, 0, pq.Len())
		_, ok := pq.TopItem()
		assert.False(t, ok)
	})

	t.Run("PopClearsVacatedSlot", func(t *testing.T) {
		v := new(int)
		pq := NewPriorityQueue[*int](false)
		pq.PushItem(PriorityQueueItem[*int]{Value: v, Distance: 1})
		pq.PushItem(PriorityQueueItem[*int]{Value: new(int), Distance: 2})

		pq.PopItem()
		pq.PopItem()
		for _, it := range pq.items[:cap(pq.items)] {
			assert.Nil(t, it.Value, "popped payloads must not stay pinned")
		}
	})
}

func TestPriorityQueue_DrainRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for _, isMax := range []bool{false, true} {
		pq := NewPriorityQueue[int](isMax)
		want := make([]float32, 200)
		for i := range want {
			want[i] = rng.Float32()
			pq.PushItem(PriorityQueueItem[int]{Value: i, Distance: want[i]})
		}
		sort.Slice(want, func(i, j int) bool { return want[i] < want[j] })

		got := pq.Drain()
		require.Len(t, got, len(want))
		for i := range got {
			assert.Equal(t, want[i], got[i].Distance)
		}
	}
}

func BenchmarkPriorityQueue_PushPop(b *testing.B) {
	pq := NewPriorityQueue[uint32](true)
	rng := rand.New(rand.NewSource(1))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		pq.PushItemBounded(PriorityQueueItem[uint32]{Value: uint32(i), Distance: rng.Float32()}, 64)
	}
}
