package router

import (
	"fmt"
	"math"

	"git.fiblab.net/sim/accessroute/geo"
	"git.fiblab.net/sim/accessroute/router/algo"
	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
)

const (
	// 真实路网的snap半径/m
	FETCHED_SNAP_RADIUS = 500.0
	// 路网阶段的备用网格：11x11，间距0.002°
	ROAD_LATTICE_HALF_SIZE = 5
	ROAD_LATTICE_SPACING   = 0.002
	// 网格阶段的网格：间距0.001°，半边长由起终点跨度决定
	GRID_LATTICE_SPACING       = 0.001
	GRID_LATTICE_PADDING       = 5
	GRID_LATTICE_MIN_HALF_SIZE = 10
	GRID_LATTICE_MAX_HALF_SIZE = 50
	GRID_SNAP_RADIUS           = 1000.0

	// 路网拉取半径：1.5倍直线距离，限制在[2000,10000]m
	NETWORK_RADIUS_FACTOR = 1.5
	MIN_NETWORK_RADIUS    = 2000.0
	MAX_NETWORK_RADIUS    = 10000.0

	DEFAULT_HIGHWAY = "residential"
	LATTICE_ROAD    = "grid_road"
)

type NetworkGraph = algo.SearchGraph[algo.NetworkNodeAttr, *algo.NetworkEdgeAttr]

// Network 单次请求构建的路网，用完即弃
type Network struct {
	Graph      *NetworkGraph
	SnapRadius float64
	Lattice    bool
}

// NetworkRadius 路网拉取半径/m
func NetworkRadius(start, end orb.Point) float64 {
	return math.Max(MIN_NETWORK_RADIUS, math.Min(MAX_NETWORK_RADIUS, geo.Distance(start, end)*NETWORK_RADIUS_FACTOR))
}

// BuildRoadNetwork 由Overpass返回的way/node构建路网，way中相邻节点之间各连一条无向边
func BuildRoadNetwork(data *osm.OSM) (*Network, error) {
	g := algo.NewSearchGraph[algo.NetworkNodeAttr, *algo.NetworkEdgeAttr](algo.HaversineHeuristics{})
	positions := make(map[osm.NodeID]orb.Point, len(data.Nodes))
	for _, n := range data.Nodes {
		positions[n.ID] = n.Point()
	}
	// osm node id -> graph node id
	index := make(map[osm.NodeID]int)
	nodeOf := func(id osm.NodeID) int {
		if i, ok := index[id]; ok {
			return i
		}
		i := g.InitNode(positions[id], algo.NetworkNodeAttr{ID: int64(id)})
		index[id] = i
		return i
	}
	var edgeID int64
	for _, w := range data.Ways {
		highway := w.Tags.Find("highway")
		if highway == "" {
			highway = DEFAULT_HIGHWAY
		}
		surface := w.Tags.Find("surface")
		sidewalk := w.Tags.Find("sidewalk")
		score := algo.EdgeAccessibilityScore(highway, surface, sidewalk)
		width := algo.EstimateWidth(highway)
		for k := 1; k < len(w.Nodes); k++ {
			fromID, toID := w.Nodes[k-1].ID, w.Nodes[k].ID
			a, okA := positions[fromID]
			b, okB := positions[toID]
			if !okA || !okB || fromID == toID {
				continue
			}
			from, to := nodeOf(fromID), nodeOf(toID)
			edgeID++
			attr := &algo.NetworkEdgeAttr{
				ID:                 edgeID,
				FromID:             int64(fromID),
				ToID:               int64(toID),
				RoadType:           highway,
				Surface:            surface,
				Width:              width,
				Distance:           geo.Distance(a, b),
				AccessibilityScore: score,
				HasSidewalk:        algo.HasSidewalk(sidewalk),
				HasCurbCuts:        w.Tags.Find("kerb") == "lowered" || w.Tags.Find("kerb") == "flush",
				A:                  a,
				B:                  b,
			}
			g.InitEdge(from, to, attr.Distance, attr)
			g.InitEdge(to, from, attr.Distance, attr)
		}
	}
	if g.NodeCount() == 0 {
		return nil, fmt.Errorf("road data contains no usable ways")
	}
	markIntersections(g)
	log.Debugf("road network built: %d nodes, %d edges", g.NodeCount(), g.EdgeCount()/2)
	return &Network{Graph: g, SnapRadius: FETCHED_SNAP_RADIUS}, nil
}

// BuildLattice 以center为中心构建(2*halfSize+1)^2的经纬度网格，只连接横纵相邻节点
func BuildLattice(center orb.Point, halfSize int, spacing float64, snapRadius float64) *Network {
	g := algo.NewSearchGraph[algo.NetworkNodeAttr, *algo.NetworkEdgeAttr](algo.HaversineHeuristics{})
	side := 2*halfSize + 1
	ids := make([][]int, side)
	for r := 0; r < side; r++ {
		ids[r] = make([]int, side)
		for c := 0; c < side; c++ {
			i, j := r-halfSize, c-halfSize
			p := orb.Point{center.Lon() + float64(j)*spacing, center.Lat() + float64(i)*spacing}
			ids[r][c] = g.InitNode(p, algo.NetworkNodeAttr{ID: -1, Row: i, Col: j, IsLattice: true})
		}
	}
	var edgeID int64
	connect := func(from, to int) {
		a, _ := g.Node(from)
		b, _ := g.Node(to)
		edgeID++
		attr := &algo.NetworkEdgeAttr{
			ID:                 edgeID,
			FromID:             -1,
			ToID:               -1,
			RoadType:           LATTICE_ROAD,
			Surface:            "paved",
			Width:              algo.DEFAULT_WIDTH,
			Distance:           geo.Distance(a, b),
			AccessibilityScore: algo.LATTICE_EDGE_SCORE,
			HasSidewalk:        true,
			HasCurbCuts:        true,
			A:                  a,
			B:                  b,
		}
		g.InitEdge(from, to, attr.Distance, attr)
		g.InitEdge(to, from, attr.Distance, attr)
	}
	for r := 0; r < side; r++ {
		for c := 0; c < side; c++ {
			if c+1 < side {
				connect(ids[r][c], ids[r][c+1])
			}
			if r+1 < side {
				connect(ids[r][c], ids[r+1][c])
			}
		}
	}
	markIntersections(g)
	return &Network{Graph: g, SnapRadius: snapRadius, Lattice: true}
}

// GridHalfSize 网格阶段的半边长：max(每个方向ceil(|Δ|/2/间距)+5, 10)，不超过50
func GridHalfSize(start, end orb.Point) int {
	half := func(delta float64) int {
		return int(math.Ceil(math.Abs(delta)/2/GRID_LATTICE_SPACING)) + GRID_LATTICE_PADDING
	}
	h := max(half(end.Lat()-start.Lat()), half(end.Lon()-start.Lon()), GRID_LATTICE_MIN_HALF_SIZE)
	return min(h, GRID_LATTICE_MAX_HALF_SIZE)
}

func markIntersections(g *NetworkGraph) {
	for i := 0; i < g.NodeCount(); i++ {
		if g.Degree(i) >= 3 {
			_, attr := g.Node(i)
			attr.IsIntersection = true
			g.SetNodeAttr(i, attr)
		}
	}
}
