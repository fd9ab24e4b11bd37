package router

import (
	"math"

	"git.fiblab.net/sim/accessroute/model"
	"github.com/paulmach/orb"
)

// GridRoute 曼哈顿折线：最多一个拐点，只有横平竖直的线段
// high先走纬度方向，low先走经度方向，medium先走跨度较大的方向
func GridRoute(start, end orb.Point, level model.AccessibilityLevel) []orb.Point {
	if start.Equal(end) {
		return []orb.Point{start}
	}
	dLat := math.Abs(end.Lat() - start.Lat())
	dLon := math.Abs(end.Lon() - start.Lon())
	if dLat == 0 || dLon == 0 {
		return []orb.Point{start, end}
	}
	var verticalFirst bool
	switch level {
	case model.LEVEL_HIGH:
		verticalFirst = true
	case model.LEVEL_LOW:
		verticalFirst = false
	default:
		verticalFirst = dLat >= dLon
	}
	var turn orb.Point
	if verticalFirst {
		turn = orb.Point{start.Lon(), end.Lat()}
	} else {
		turn = orb.Point{end.Lon(), start.Lat()}
	}
	return []orb.Point{start, turn, end}
}

// direction 两点间主方向
func direction(a, b orb.Point) string {
	dLat, dLon := b.Lat()-a.Lat(), b.Lon()-a.Lon()
	if math.Abs(dLat) >= math.Abs(dLon) {
		if dLat >= 0 {
			return "north"
		}
		return "south"
	}
	if dLon >= 0 {
		return "east"
	}
	return "west"
}

func vertical(dir string) bool {
	return dir == "north" || dir == "south"
}

// turnSide 由前后方向判断左转/右转
func turnSide(from, to string) string {
	order := map[string]int{"north": 0, "east": 1, "south": 2, "west": 3}
	switch (order[to] - order[from] + 4) % 4 {
	case 1:
		return "right"
	case 3:
		return "left"
	default:
		return ""
	}
}

// gridInstructions 横平竖直路径的导航文字：起点、直行方向、拐弯、到达
func gridInstructions(points []orb.Point, startText string) []string {
	n := len(points)
	texts := make([]string, n)
	for i := range points {
		switch {
		case i == 0:
			texts[i] = startText
		case i == n-1:
			texts[i] = INSTRUCTION_ARRIVE
		default:
			cur := direction(points[i-1], points[i])
			next := direction(points[i], points[i+1])
			if cur == next || vertical(cur) == vertical(next) {
				texts[i] = "Continue " + cur + " on grid road"
			} else if side := turnSide(cur, next); side != "" {
				texts[i] = "At intersection, turn " + side + " and continue " + next
			} else {
				texts[i] = "At intersection, turn and continue " + next
			}
		}
	}
	return texts
}
