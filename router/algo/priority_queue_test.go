package algo_test

import (
	"container/heap"
	"math/rand"
	"sort"
	"testing"

	"git.fiblab.net/sim/accessroute/router/algo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriorityQueueOrder(t *testing.T) {
	e := rand.New(rand.NewSource(7))
	pq := make(algo.PriorityQueue, 0)
	heap.Init(&pq)
	priorities := make([]float64, 64)
	for i := range priorities {
		priorities[i] = e.Float64() * 1000
		heap.Push(&pq, &algo.Item{Value: i, Priority: priorities[i]})
	}
	sort.Float64s(priorities)
	for _, want := range priorities {
		item := heap.Pop(&pq).(*algo.Item)
		assert.Equal(t, want, item.Priority)
		// 出堆后下标置为-1，A*据此判断节点是否已在开放集合之外
		assert.Equal(t, -1, item.Index)
	}
	assert.Zero(t, pq.Len())
}

func TestPriorityQueueDecreaseKey(t *testing.T) {
	pq := make(algo.PriorityQueue, 0)
	items := make(map[int]*algo.Item)
	for _, v := range []int{5, 3, 8, 1} {
		items[v] = &algo.Item{Value: v, Priority: float64(v)}
		heap.Push(&pq, items[v])
	}

	// A*中找到更短路径时降低优先级
	items[8].Priority = 0.5
	heap.Fix(&pq, items[8].Index)

	got := make([]int, 0, 4)
	for pq.Len() > 0 {
		got = append(got, heap.Pop(&pq).(*algo.Item).Value)
	}
	require.Len(t, got, 4)
	assert.Equal(t, []int{8, 1, 3, 5}, got)
}
