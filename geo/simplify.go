package geo

import (
	"math"

	"github.com/paulmach/orb"
)

// 浮点误差容忍度/m
const SIMPLIFY_EPSILON = 1e-6

// Simplify Douglas-Peucker折线简化，tolerance单位为米
// 偏离弦线最远的点（相同距离取最先出现者）超过tolerance时保留并递归，否则只保留两端
func Simplify(points []orb.Point, tolerance float64) []orb.Point {
	if len(points) < 3 {
		return append([]orb.Point(nil), points...)
	}
	keep := make([]bool, len(points))
	keep[0], keep[len(points)-1] = true, true
	douglasPeucker(points, 0, len(points)-1, tolerance, keep)
	ret := make([]orb.Point, 0, len(points))
	for i, p := range points {
		if keep[i] {
			ret = append(ret, p)
		}
	}
	return ret
}

func douglasPeucker(points []orb.Point, first, last int, tolerance float64, keep []bool) {
	if last-first < 2 {
		return
	}
	maxDistance, maxIndex := 0.0, -1
	for i := first + 1; i < last; i++ {
		d := perpendicularDistance(points[i], points[first], points[last])
		if d > maxDistance {
			maxDistance, maxIndex = d, i
		}
	}
	if maxIndex < 0 || maxDistance <= tolerance+SIMPLIFY_EPSILON {
		return
	}
	keep[maxIndex] = true
	douglasPeucker(points, first, maxIndex, tolerance, keep)
	douglasPeucker(points, maxIndex, last, tolerance, keep)
}

// 点到弦线(a,b)的垂直距离，以a为原点做等距圆柱投影后在平面上计算
func perpendicularDistance(p, a, b orb.Point) float64 {
	if a.Equal(b) {
		return Distance(p, a)
	}
	kx := METERS_PER_DEGREE * math.Cos(toRad(a.Lat()))
	ky := METERS_PER_DEGREE
	bx, by := (b.Lon()-a.Lon())*kx, (b.Lat()-a.Lat())*ky
	px, py := (p.Lon()-a.Lon())*kx, (p.Lat()-a.Lat())*ky
	return math.Abs(bx*py-by*px) / math.Hypot(bx, by)
}
