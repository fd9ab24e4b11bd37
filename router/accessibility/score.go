// Package accessibility 路线无障碍评分与评估报告
package accessibility

import (
	"math"
	"strings"

	"git.fiblab.net/sim/accessroute/geo"
	"git.fiblab.net/sim/accessroute/model"
	"github.com/samber/lo"
)

// 各分项权重，和为1
const (
	WEIGHT_SURFACE  = 0.20
	WEIGHT_SLOPE    = 0.25
	WEIGHT_OBSTACLE = 0.20
	WEIGHT_WIDTH    = 0.10
	WEIGHT_SAFETY   = 0.10
	WEIGHT_LIGHTING = 0.08
	WEIGHT_TRAFFIC  = 0.07
)

// 各分项基准值
const (
	BASE_SURFACE  = 0.90
	BASE_WIDTH    = 0.85
	BASE_SAFETY   = 0.80
	BASE_LIGHTING = 0.75
	BASE_TRAFFIC  = 0.85
	// 无任何带高程的路段时的坡度分
	NO_ELEVATION_SLOPE = 0.8
	// 超出坡度上限10个百分点即扣满
	SLOPE_FULL_PENALTY_EXCESS = 10.0
	// 障碍物总扣分上限
	MAX_OBSTACLE_PENALTY = 0.8
)

var (
	surfacePenalty = map[model.Severity]float64{
		model.SEVERITY_CRITICAL: 0.4,
		model.SEVERITY_HIGH:     0.3,
		model.SEVERITY_MEDIUM:   0.2,
		model.SEVERITY_LOW:      0.1,
	}
	obstaclePenalty = map[model.Severity]float64{
		model.SEVERITY_CRITICAL: 0.5,
		model.SEVERITY_HIGH:     0.3,
		model.SEVERITY_MEDIUM:   0.15,
		model.SEVERITY_LOW:      0.05,
	}

	safetyFeatureKeywords  = []string{"safe", "well-lit", "protected", "secure"}
	dangerWarningKeywords  = []string{"unsafe", "danger", "hazard", "risk"}
	lightingKeywords       = []string{"lit", "lighting"}
	trafficWarningKeywords = []string{"traffic", "crossing", "busy road", "highway"}
	crossingKeywords       = []string{"crossing", "signal", "protected", "pedestrian"}
)

// Score 根据路线点、用户偏好与沿线障碍物计算七个分项与总分，结果保留3位小数
func Score(points []model.RoutePoint, prefs model.AccessibilityPreferences, obstacles []model.Obstacle) model.AccessibilityScore {
	surface := surfaceQuality(points, obstacles)
	slope := slopeAccessibility(points, prefs)
	obstacle := obstacleAvoidance(obstacles, prefs)
	width := widthAdequacy(points, prefs)
	safety := safetyRating(points)
	lighting := lightingAdequacy(points)
	traffic := trafficSafety(points)
	overall := surface*WEIGHT_SURFACE +
		slope*WEIGHT_SLOPE +
		obstacle*WEIGHT_OBSTACLE +
		width*WEIGHT_WIDTH +
		safety*WEIGHT_SAFETY +
		lighting*WEIGHT_LIGHTING +
		traffic*WEIGHT_TRAFFIC
	return model.AccessibilityScore{
		OverallScore:       round3(overall),
		SurfaceQuality:     round3(surface),
		SlopeAccessibility: round3(slope),
		ObstacleAvoidance:  round3(obstacle),
		WidthAdequacy:      round3(width),
		SafetyRating:       round3(safety),
		LightingAdequacy:   round3(lighting),
		TrafficSafety:      round3(traffic),
	}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func clamp01(v float64) float64 {
	return lo.Clamp(v, 0, 1)
}

// countMatches 统计texts中包含任一关键词的条目数（不区分大小写）
func countMatches(texts []string, keywords []string) int {
	return lo.CountBy(texts, func(s string) bool {
		s = strings.ToLower(s)
		return lo.SomeBy(keywords, func(k string) bool { return strings.Contains(s, k) })
	})
}

func surfaceQuality(points []model.RoutePoint, obstacles []model.Obstacle) float64 {
	score := BASE_SURFACE
	for _, o := range obstacles {
		if o.Type != model.OBSTACLE_BROKEN_SURFACE && o.Type != model.OBSTACLE_NARROW_PATH {
			continue
		}
		if p, ok := surfacePenalty[o.Severity]; ok {
			score -= p
		} else {
			score -= 0.1
		}
	}
	variation := 0.0
	for _, p := range points {
		joined := strings.ToLower(strings.Join(p.Warnings, " "))
		if strings.Contains(joined, "uneven") {
			variation += 0.05
		}
		if strings.Contains(joined, "cracked") {
			variation += 0.1
		}
	}
	score -= math.Min(variation, 0.3)
	return clamp01(score)
}

func slopeAccessibility(points []model.RoutePoint, prefs model.AccessibilityPreferences) float64 {
	if len(points) < 2 {
		return 1.0
	}
	scores := make([]float64, 0, len(points)-1)
	for i := 1; i < len(points); i++ {
		prev, cur := points[i-1], points[i]
		if prev.Elevation == nil || cur.Elevation == nil {
			continue
		}
		d := geo.Distance(prev.Point(), cur.Point())
		slope := 0.0
		if d > 0 {
			slope = math.Abs(*cur.Elevation-*prev.Elevation) / math.Max(d, 1) * 100
		}
		if slope <= prefs.MaxSlopePercentage {
			scores = append(scores, 1.0)
			continue
		}
		penalty := math.Min(1, (slope-prefs.MaxSlopePercentage)/SLOPE_FULL_PENALTY_EXCESS)
		scores = append(scores, math.Max(0, 1-penalty))
	}
	if len(scores) == 0 {
		return NO_ELEVATION_SLOPE
	}
	return lo.Sum(scores) / float64(len(scores))
}

// ObstaclePenalty 单个障碍物对obstacle_avoidance的扣分
func ObstaclePenalty(o model.Obstacle, prefs model.AccessibilityPreferences) float64 {
	penalty, ok := obstaclePenalty[o.Severity]
	if !ok {
		penalty = 0.1
	}
	switch {
	case o.Type == model.OBSTACLE_STAIRS && prefs.AvoidStairs:
		penalty *= 1.5
	case o.Type == model.OBSTACLE_CONSTRUCTION && prefs.AvoidConstruction:
		penalty *= 1.3
	case o.Type == model.OBSTACLE_STEEP_SLOPE && prefs.AvoidSteepSlopes:
		penalty *= 1.4
	}
	switch prefs.MobilityAid {
	case model.AID_WHEELCHAIR:
		if o.AffectsWheelchair {
			penalty *= 1.3
		}
	case model.AID_WALKER, model.AID_CANE:
		if o.AffectsMobilityAid {
			penalty *= 1.2
		}
	}
	return penalty
}

func obstacleAvoidance(obstacles []model.Obstacle, prefs model.AccessibilityPreferences) float64 {
	if len(obstacles) == 0 {
		return 1.0
	}
	total := lo.SumBy(obstacles, func(o model.Obstacle) float64 { return ObstaclePenalty(o, prefs) })
	return math.Max(0, 1-math.Min(total, MAX_OBSTACLE_PENALTY))
}

func widthAdequacy(points []model.RoutePoint, prefs model.AccessibilityPreferences) float64 {
	score := BASE_WIDTH
	if prefs.PreferWiderSidewalks {
		bonus := 0.0
		for _, p := range points {
			bonus += 0.02 * float64(countMatches(p.AccessibilityFeatures, []string{"wide"}))
		}
		score += math.Min(bonus, 0.15)
	}
	warnings := 0
	for _, p := range points {
		warnings += countMatches(p.Warnings, []string{"narrow", "width"})
	}
	score -= math.Min(float64(warnings)*0.1, 0.4)
	if prefs.MobilityAid == model.AID_WHEELCHAIR {
		score *= 0.95
	}
	return clamp01(score)
}

func safetyRating(points []model.RoutePoint) float64 {
	features, warnings := 0, 0
	for _, p := range points {
		features += countMatches(p.AccessibilityFeatures, safetyFeatureKeywords)
		warnings += countMatches(p.Warnings, dangerWarningKeywords)
	}
	bonus := math.Min(float64(features)*0.02, 0.15)
	penalty := math.Min(float64(warnings)*0.05, 0.3)
	return clamp01(BASE_SAFETY + bonus - penalty)
}

func lightingAdequacy(points []model.RoutePoint) float64 {
	features := 0
	for _, p := range points {
		features += countMatches(p.AccessibilityFeatures, lightingKeywords)
	}
	return clamp01(BASE_LIGHTING + math.Min(float64(features)*0.03, 0.2))
}

func trafficSafety(points []model.RoutePoint) float64 {
	warnings, features := 0, 0
	for _, p := range points {
		warnings += countMatches(p.Warnings, trafficWarningKeywords)
		features += countMatches(p.AccessibilityFeatures, crossingKeywords)
	}
	penalty := math.Min(float64(warnings)*0.08, 0.4)
	bonus := math.Min(float64(features)*0.03, 0.15)
	return clamp01(BASE_TRAFFIC - penalty + bonus)
}
