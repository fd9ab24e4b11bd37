package algo

import "github.com/paulmach/orb"

// NetworkNodeAttr 路网节点属性
type NetworkNodeAttr struct {
	ID             int64 // OSM node id，合成网格为-1
	IsIntersection bool  // 度≥3
	Row            int   // 网格行号（纬度方向），仅合成网格有效
	Col            int   // 网格列号（经度方向），仅合成网格有效
	IsLattice      bool
}

// NetworkEdgeAttr 路网边属性，两个方向共享同一指针
type NetworkEdgeAttr struct {
	ID                 int64
	FromID             int64
	ToID               int64
	RoadType           string
	Surface            string
	Width              float64
	Distance           float64 // Haversine长度/m
	AccessibilityScore float64 // (0,1]
	HasSidewalk        bool
	HasCurbCuts        bool
	// 两端点位置，用于搜索时判断障碍物影响
	A, B orb.Point
}

// Weight 边的基础权值：长度/无障碍评分
func (e *NetworkEdgeAttr) Weight() float64 {
	return e.Distance / e.AccessibilityScore
}
