package geo

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// BufferZone 以center为圆心、radius米为半径的近似圆环（n个顶点，首尾闭合）
func BufferZone(center orb.Point, radius float64, n int) orb.Ring {
	if n < 3 {
		n = 3
	}
	ring := make(orb.Ring, 0, n+1)
	for i := 0; i < n; i++ {
		ring = append(ring, OffsetPoint(center, 360*float64(i)/float64(n), radius))
	}
	return append(ring, ring[0])
}

// SegmentCorridor 线段(a,b)两侧各延伸width/2米形成的四边形走廊
func SegmentCorridor(a, b orb.Point, width float64) orb.Polygon {
	bearing := Bearing(a, b)
	left := math.Mod(bearing+270, 360)
	right := math.Mod(bearing+90, 360)
	half := width / 2
	ring := orb.Ring{
		OffsetPoint(a, left, half),
		OffsetPoint(b, left, half),
		OffsetPoint(b, right, half),
		OffsetPoint(a, right, half),
	}
	ring = append(ring, ring[0])
	return orb.Polygon{ring}
}

// RouteCorridor 折线每一段的走廊
func RouteCorridor(points []orb.Point, width float64) []orb.Polygon {
	if len(points) < 2 {
		return nil
	}
	corridors := make([]orb.Polygon, 0, len(points)-1)
	for i := 1; i < len(points); i++ {
		corridors = append(corridors, SegmentCorridor(points[i-1], points[i], width))
	}
	return corridors
}

// Contains 点是否在多边形内（经纬度平面上的射线法）
func Contains(polygon orb.Polygon, p orb.Point) bool {
	return planar.PolygonContains(polygon, p)
}

// Bounds 点集的外包矩形
func Bounds(points []orb.Point) orb.Bound {
	return orb.MultiPoint(points).Bound()
}

// BoundAround 以center为中心、向四周扩展radius米的外包矩形
func BoundAround(center orb.Point, radius float64) orb.Bound {
	latOffset := radius / 111000
	lonOffset := radius / (111000 * math.Cos(toRad(center.Lat())))
	return orb.Bound{
		Min: orb.Point{center.Lon() - lonOffset, center.Lat() - latOffset},
		Max: orb.Point{center.Lon() + lonOffset, center.Lat() + latOffset},
	}
}
