package router

import (
	"context"
	"errors"
	"fmt"
	"math"

	"git.fiblab.net/sim/accessroute/geo"
	"git.fiblab.net/sim/accessroute/model"
	"git.fiblab.net/sim/accessroute/router/algo"
	"github.com/paulmach/orb"
)

// 障碍物对路网边的惩罚系数（按严重程度）
var edgeSeverityPenalty = map[model.Severity]float64{
	model.SEVERITY_CRITICAL: 0.8,
	model.SEVERITY_HIGH:     0.6,
	model.SEVERITY_MEDIUM:   0.4,
	model.SEVERITY_LOW:      0.2,
}

// EdgeObstaclePenalty 边两端点任一落在障碍物影响半径内时累加惩罚系数，上限0.9
func EdgeObstaclePenalty(a, b orb.Point, prefs model.AccessibilityPreferences, obstacles []model.Obstacle) float64 {
	penalty := 0.0
	for _, o := range obstacles {
		p := o.Location.Point()
		if geo.Distance(a, p) > o.ImpactRadius && geo.Distance(b, p) > o.ImpactRadius {
			continue
		}
		v := edgeSeverityPenalty[o.Severity]
		if prefs.MobilityAid == model.AID_WHEELCHAIR && o.AffectsWheelchair {
			v *= 1.5
		}
		if (prefs.MobilityAid == model.AID_WALKER || prefs.MobilityAid == model.AID_CANE) && o.AffectsMobilityAid {
			v *= 1.3
		}
		if (prefs.MobilityAid == model.AID_GUIDE_DOG || prefs.RequireTactileGuidance) && o.AffectsVisuallyImpaired {
			v *= 1.4
		}
		penalty += v
	}
	return math.Min(penalty, algo.MAX_OBSTACLE_PENALTY)
}

// accessibilityWeight 单次搜索的边权：长度/无障碍评分 + 障碍物惩罚
// 无向边两个方向共享属性指针，惩罚按指针缓存
type accessibilityWeight struct {
	prefs     model.AccessibilityPreferences
	obstacles []model.Obstacle
	penalties map[*algo.NetworkEdgeAttr]float64
}

func newAccessibilityWeight(prefs model.AccessibilityPreferences, obstacles []model.Obstacle) *accessibilityWeight {
	return &accessibilityWeight{
		prefs:     prefs,
		obstacles: obstacles,
		penalties: make(map[*algo.NetworkEdgeAttr]float64),
	}
}

func (w *accessibilityWeight) GetRuntimeEdgeWeight(_, _ int, attr *algo.NetworkEdgeAttr, _ float64) float64 {
	penalty, ok := w.penalties[attr]
	if !ok {
		penalty = EdgeObstaclePenalty(attr.A, attr.B, w.prefs, w.obstacles) * algo.OBSTACLE_PENALTY_SCALE
		w.penalties[attr] = penalty
	}
	return attr.Weight() + penalty
}

type NetworkPath = []algo.PathItem[algo.NetworkNodeAttr, *algo.NetworkEdgeAttr]

// FindPath 将起终点吸附到最近节点后用A*求无障碍加权最短路
func FindPath(
	ctx context.Context, network *Network,
	start, end orb.Point,
	prefs model.AccessibilityPreferences, obstacles []model.Obstacle,
) (path NetworkPath, cost float64, err error) {
	// panic recover
	defer func() {
		if e := recover(); e != nil {
			path = nil
			cost = math.Inf(0)
			err = fmt.Errorf("panic: FindPath %v with input start=%v, end=%v", e, start, end)
			log.Errorln(err)
		}
	}()

	startNode, startDist := network.Graph.Nearest(start)
	if startNode < 0 || startDist > network.SnapRadius {
		return nil, math.Inf(0), fmt.Errorf("%w: start %.0fm away (limit %.0fm)", ErrSnapFailure, startDist, network.SnapRadius)
	}
	endNode, endDist := network.Graph.Nearest(end)
	if endNode < 0 || endDist > network.SnapRadius {
		return nil, math.Inf(0), fmt.Errorf("%w: end %.0fm away (limit %.0fm)", ErrSnapFailure, endDist, network.SnapRadius)
	}
	path, cost, err = network.Graph.ShortestPath(ctx, startNode, endNode, newAccessibilityWeight(prefs, obstacles))
	if err != nil {
		if errors.Is(err, algo.ErrNoPath) {
			log.Debugf("routing failed, no path between %v and %v", start, end)
			return nil, cost, fmt.Errorf("%w: %v", ErrNoPath, err)
		}
		return nil, cost, err
	}
	return path, cost, nil
}
