// Package geo 提供经纬度坐标上的球面几何计算，坐标统一使用orb.Point（X为经度，Y为纬度）
package geo

import (
	"math"

	"github.com/paulmach/orb"
)

const (
	// 地球半径/m
	EARTH_RADIUS = 6371000.0
	// 1度纬度对应的近似长度/m
	METERS_PER_DEGREE = 111320.0
)

func toRad(d float64) float64 { return d * math.Pi / 180 }
func toDeg(r float64) float64 { return r * 180 / math.Pi }

// Distance 使用Haversine公式计算两点间大圆距离/m
func Distance(a, b orb.Point) float64 {
	lat1, lat2 := toRad(a.Lat()), toRad(b.Lat())
	dLat := lat2 - lat1
	dLon := toRad(b.Lon() - a.Lon())
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * EARTH_RADIUS * math.Asin(math.Min(1, math.Sqrt(h)))
}

// Bearing 计算a到b的初始方位角，范围[0, 360)
func Bearing(a, b orb.Point) float64 {
	lat1, lat2 := toRad(a.Lat()), toRad(b.Lat())
	dLon := toRad(b.Lon() - a.Lon())
	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	bearing := math.Mod(toDeg(math.Atan2(y, x))+360, 360)
	if bearing >= 360 {
		bearing = 0
	}
	return bearing
}

// OffsetPoint 从p出发沿方位角bearing行进distance米后的位置
func OffsetPoint(p orb.Point, bearing, distance float64) orb.Point {
	lat1, lon1 := toRad(p.Lat()), toRad(p.Lon())
	theta := toRad(bearing)
	delta := distance / EARTH_RADIUS
	lat2 := math.Asin(math.Sin(lat1)*math.Cos(delta) + math.Cos(lat1)*math.Sin(delta)*math.Cos(theta))
	lon2 := lon1 + math.Atan2(
		math.Sin(theta)*math.Sin(delta)*math.Cos(lat1),
		math.Cos(delta)-math.Sin(lat1)*math.Sin(lat2),
	)
	return orb.Point{toDeg(lon2), toDeg(lat2)}
}

// Interpolate 在a与b之间按经纬度线性插值，返回包含两端的n+1个点
func Interpolate(a, b orb.Point, n int) []orb.Point {
	if n < 1 {
		n = 1
	}
	points := make([]orb.Point, 0, n+1)
	for i := 0; i <= n; i++ {
		ratio := float64(i) / float64(n)
		points = append(points, orb.Point{
			a.Lon() + (b.Lon()-a.Lon())*ratio,
			a.Lat() + (b.Lat()-a.Lat())*ratio,
		})
	}
	return points
}

// PathLength 折线总长度/m
func PathLength(points []orb.Point) float64 {
	total := 0.0
	for i := 1; i < len(points); i++ {
		total += Distance(points[i-1], points[i])
	}
	return total
}

// Midpoint 经纬度算术中点
func Midpoint(a, b orb.Point) orb.Point {
	return orb.Point{(a.Lon() + b.Lon()) / 2, (a.Lat() + b.Lat()) / 2}
}
