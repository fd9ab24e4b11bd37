package algo

import (
	"container/heap"
	"context"
	"math"

	"git.fiblab.net/sim/accessroute/geo"
	"github.com/paulmach/orb"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/samber/lo"
)

type node[T any] struct {
	p    orb.Point
	attr T
}

type edge[T any] struct {
	v    float64 // 边长/m
	attr T
}

type SearchGraph[NT any, ET any] struct {
	// 邻接表，from node -> to node -> edge
	// 图在构建完成后只读，搜索期间的运行时边权由IEdgeWeight给出
	edges []map[int]edge[ET]
	// 点的位置与属性
	nodes []node[NT]
	// A Star距离预估函数
	h IHeuristics

	mu *xsync.RBMutex
}

type IHeuristics interface {
	HeuristicDistance(orb.Point, orb.Point) float64
}

// IEdgeWeight 单次搜索的运行时边权
type IEdgeWeight[ET any] interface {
	GetRuntimeEdgeWeight(from, to int, attr ET, length float64) float64
}

// HaversineHeuristics 以大圆距离作为A*预估值，边权不小于长度时可采纳
type HaversineHeuristics struct{}

func (HaversineHeuristics) HeuristicDistance(p1, p2 orb.Point) float64 {
	return geo.Distance(p1, p2)
}

// lengthWeight 不做任何调整的边权
type lengthWeight[ET any] struct{}

func (lengthWeight[ET]) GetRuntimeEdgeWeight(_, _ int, _ ET, length float64) float64 {
	return length
}

func NewSearchGraph[NT any, ET any](h IHeuristics) *SearchGraph[NT, ET] {
	return &SearchGraph[NT, ET]{
		edges: make([]map[int]edge[ET], 0),
		nodes: make([]node[NT], 0),
		h:     h,
		mu:    xsync.NewRBMutex(),
	}
}

func (g *SearchGraph[NT, ET]) InitNode(p orb.Point, attr NT) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nodes = append(g.nodes, node[NT]{p: p, attr: attr})
	g.edges = append(g.edges, make(map[int]edge[ET]))
	return len(g.nodes) - 1
}

// InitEdge 添加有向边，无向边需两个方向各调用一次
func (g *SearchGraph[NT, ET]) InitEdge(from, to int, length float64, attr ET) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if from >= len(g.edges) || to >= len(g.edges) {
		log.Panicf("edge %d->%d out of range, len(g.edges)=%d", from, to, len(g.edges))
	}
	g.edges[from][to] = edge[ET]{v: length, attr: attr}
}

// SetNodeAttr 修改节点属性（构建阶段使用）
func (g *SearchGraph[NT, ET]) SetNodeAttr(id int, attr NT) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nodes[id].attr = attr
}

func (g *SearchGraph[NT, ET]) NodeCount() int {
	token := g.mu.RLock()
	defer g.mu.RUnlock(token)
	return len(g.nodes)
}

// EdgeCount 有向边数
func (g *SearchGraph[NT, ET]) EdgeCount() int {
	token := g.mu.RLock()
	defer g.mu.RUnlock(token)
	return lo.SumBy(g.edges, func(m map[int]edge[ET]) int { return len(m) })
}

func (g *SearchGraph[NT, ET]) Node(id int) (orb.Point, NT) {
	token := g.mu.RLock()
	defer g.mu.RUnlock(token)
	n := g.nodes[id]
	return n.p, n.attr
}

func (g *SearchGraph[NT, ET]) Degree(id int) int {
	token := g.mu.RLock()
	defer g.mu.RUnlock(token)
	return len(g.edges[id])
}

func (g *SearchGraph[NT, ET]) GetEdgeLengthAndAttr(from, to int) (float64, ET, bool) {
	token := g.mu.RLock()
	defer g.mu.RUnlock(token)
	e, ok := g.edges[from][to]
	return e.v, e.attr, ok
}

// Nearest 距p最近的节点及其距离/m，空图返回-1
func (g *SearchGraph[NT, ET]) Nearest(p orb.Point) (int, float64) {
	token := g.mu.RLock()
	defer g.mu.RUnlock(token)
	best, bestDist := -1, math.Inf(0)
	for i, n := range g.nodes {
		if d := geo.Distance(p, n.p); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, bestDist
}

type PathItem[NT any, ET any] struct {
	NodeID   int
	Point    orb.Point
	NodeAttr NT
	EdgeAttr ET // 到下一个节点的边，最后一项为零值
}

func (g *SearchGraph[NT, ET]) reconstructPath(cameFrom map[int]int, curNode int) []PathItem[NT, ET] {
	pathBeforeReversed := []PathItem[NT, ET]{{
		NodeID:   curNode,
		Point:    g.nodes[curNode].p,
		NodeAttr: g.nodes[curNode].attr,
	}}
	for {
		if from, ok := cameFrom[curNode]; ok {
			attr := g.edges[from][curNode].attr
			curNode = from
			pathBeforeReversed = append(pathBeforeReversed, PathItem[NT, ET]{
				NodeID:   curNode,
				Point:    g.nodes[curNode].p,
				NodeAttr: g.nodes[curNode].attr,
				EdgeAttr: attr,
			})
		} else {
			break
		}
	}
	return lo.Reverse(pathBeforeReversed)
}

// ShortestPath A Star算法求最短路，w为nil时边权即边长
// 返回路径、总代价；开放集合耗尽返回ErrNoPath，context取消返回ctx.Err()
func (g *SearchGraph[NT, ET]) ShortestPath(ctx context.Context, start, end int, w IEdgeWeight[ET]) ([]PathItem[NT, ET], float64, error) {
	token := g.mu.RLock()
	defer g.mu.RUnlock(token)
	if start < 0 || start >= len(g.nodes) || end < 0 || end >= len(g.nodes) {
		return nil, math.Inf(0), ErrNodeNotExist
	}
	if w == nil {
		w = lengthWeight[ET]{}
	}
	if start == end {
		return []PathItem[NT, ET]{{NodeID: start, Point: g.nodes[start].p, NodeAttr: g.nodes[start].attr}}, 0, nil
	}
	endP := g.nodes[end].p
	openSet := make(PriorityQueue, 1)
	openSetMap := make(map[int]*Item, 1) // openSet value -> openSet item
	cameFrom := make(map[int]int, 0)
	gScore := make(map[int]float64, 0)
	gScore[start] = .0
	fScore := g.h.HeuristicDistance(g.nodes[start].p, endP)
	openSet[0] = &Item{Value: start, Priority: fScore, Index: 0}
	openSetMap[start] = openSet[0]
	heap.Init(&openSet)
	popped := 0
	for openSet.Len() > 0 {
		if popped%CTX_CHECK_INTERVAL == 0 {
			if err := ctx.Err(); err != nil {
				return nil, math.Inf(0), err
			}
		}
		popped++
		cur := heap.Pop(&openSet).(*Item).Value
		if cur == end {
			return g.reconstructPath(cameFrom, cur), gScore[cur], nil
		}
		for neighbor, edge := range g.edges[cur] {
			gScoreTentative := gScore[cur] + w.GetRuntimeEdgeWeight(cur, neighbor, edge.attr, edge.v)
			var gScoreNeighbor float64
			s, ok := gScore[neighbor]
			if ok {
				gScoreNeighbor = s
			} else {
				gScoreNeighbor = math.Inf(0)
			}
			if gScoreTentative < gScoreNeighbor {
				cameFrom[neighbor] = cur
				gScore[neighbor] = gScoreTentative
				fScore := gScoreTentative + g.h.HeuristicDistance(g.nodes[neighbor].p, endP)
				if item, inOpen := openSetMap[neighbor]; inOpen && item.Index >= 0 {
					// 仍在堆中的节点，修改其优先级
					item.Priority = fScore
					heap.Fix(&openSet, item.Index)
				} else {
					// 新访问或已出堆的节点
					item := &Item{Value: neighbor, Priority: fScore}
					heap.Push(&openSet, item)
					openSetMap[neighbor] = item
				}
			}
		}
	}
	return nil, math.Inf(0), ErrNoPath
}
