package router

import (
	"math"
	"strings"

	"git.fiblab.net/sim/accessroute/geo"
	"git.fiblab.net/sim/accessroute/model"
	"git.fiblab.net/sim/accessroute/router/accessibility"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/samber/lo"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	INSTRUCTION_START_PROVIDER    = "Start your accessible journey"
	INSTRUCTION_CONTINUE_PROVIDER = "Continue on accessible path"
	INSTRUCTION_START_NETWORK     = "Start your journey on the accessible route"
	INSTRUCTION_START_GRID        = "Start your journey on the grid route"
	INSTRUCTION_ARRIVE            = "You have arrived at your destination"
)

const (
	ACCURACY_HIGH   = "high"
	ACCURACY_MEDIUM = "medium"
	ACCURACY_LOW    = "low"

	SURFACE_UNKNOWN = "Unknown"
)

const (
	// 基准步行速度/(km/h)
	BASE_WALKING_SPEED = 4.0
	// 路线点障碍物提示：线段两侧各50m的走廊，或距点50m以内
	POINT_WARNING_CORRIDOR = 100.0
	POINT_WARNING_RADIUS   = 50.0
	// 路网与网格路线点的平坦高程/m
	FLAT_ELEVATION = 10.0
	// 导出障碍物影响范围的多边形顶点数
	IMPACT_ZONE_VERTICES = 16
)

var titleCaser = cases.Title(language.English)

// Path 单个阶段的产出：路线点（坐标、导航文字、设施、高程）与路线元数据
type Path struct {
	Points        []model.RoutePoint
	Engine        string
	Provider      string
	Accuracy      string
	UsesRealRoads bool
	RoadTypes     []string
	SurfaceTypes  []string
}

// Coordinates 路线点坐标
func (p *Path) Coordinates() []orb.Point {
	return lo.Map(p.Points, func(rp model.RoutePoint, _ int) orb.Point { return rp.Point() })
}

// humanize "steep_slope" -> "Steep Slope"
func humanize(s string) string {
	return titleCaser.String(strings.ReplaceAll(s, "_", " "))
}

// segmentSpeedModifier 分段耗时的速度系数
func segmentSpeedModifier(aid model.MobilityAid) float64 {
	switch aid {
	case model.AID_WHEELCHAIR:
		return 0.8
	case model.AID_WALKER:
		return 0.6
	default:
		return 1.0
	}
}

// routeSpeedModifier 全程耗时的辅助器具速度系数
func routeSpeedModifier(aid model.MobilityAid) float64 {
	switch aid {
	case model.AID_WHEELCHAIR:
		return 0.8
	case model.AID_WALKER:
		return 0.6
	case model.AID_CANE:
		return 0.9
	default:
		return 1.0
	}
}

// EstimatedTime 全程耗时/min：4km/h × (0.5+0.5·总分) × 辅助器具系数
func EstimatedTime(distance float64, overall float64, aid model.MobilityAid) int {
	speed := BASE_WALKING_SPEED * (0.5 + 0.5*overall) * routeSpeedModifier(aid)
	return int(distance / 1000 / speed * 60)
}

// SegmentTime 分段耗时/s
func SegmentTime(distance float64, aid model.MobilityAid) int {
	return int(distance / 1000 / (BASE_WALKING_SPEED * segmentSpeedModifier(aid)) * 3600)
}

// efficiencyRating 以4km/h为理想速度的效率评分
func efficiencyRating(distance float64, minutes int) float64 {
	ideal := distance / 1000 / BASE_WALKING_SPEED * 60
	return math.Round(math.Min(1, ideal/float64(max(minutes, 1)))*100) / 100
}

// elevationGain 累计爬升/m
func elevationGain(points []model.RoutePoint) float64 {
	gain := 0.0
	for i := 1; i < len(points); i++ {
		prev, cur := points[i-1].Elevation, points[i].Elevation
		if prev == nil || cur == nil {
			continue
		}
		if d := *cur - *prev; d > 0 {
			gain += d
		}
	}
	return math.Round(gain*10) / 10
}

// obstacleWarning 路线点上的障碍物提示文字
func obstacleWarning(o model.Obstacle) string {
	kind := humanize(string(o.Type))
	if o.Severity == model.SEVERITY_HIGH || o.Severity == model.SEVERITY_CRITICAL {
		return kind + ": " + o.Description
	}
	return kind + " ahead"
}

// annotateObstacles 每个障碍物只在第一个命中的路线点上提示
func annotateObstacles(points []model.RoutePoint, obstacles []model.Obstacle) {
	warned := make([]bool, len(obstacles))
	corridors := geo.RouteCorridor(lo.Map(points, func(rp model.RoutePoint, _ int) orb.Point { return rp.Point() }), POINT_WARNING_CORRIDOR)
	for i := range points {
		var corridor orb.Polygon
		if i > 0 {
			corridor = corridors[i-1]
		}
		for k, o := range obstacles {
			if warned[k] {
				continue
			}
			p := o.Location.Point()
			hit := geo.Distance(points[i].Point(), p) <= POINT_WARNING_RADIUS
			if !hit && corridor != nil {
				hit = geo.Contains(corridor, p)
			}
			if hit {
				warned[k] = true
				points[i].Warnings = append(points[i].Warnings, obstacleWarning(o))
			}
		}
	}
}

func routeWarnings(score model.AccessibilityScore, obstacles []model.Obstacle) []string {
	warnings := make([]string, 0)
	if score.OverallScore < 0.6 {
		warnings = append(warnings, "This route has significant accessibility challenges")
	}
	if len(obstacles) > 2 {
		warnings = append(warnings, "Multiple obstacles detected along route")
	}
	critical := lo.Filter(obstacles, func(o model.Obstacle, _ int) bool {
		return o.Severity == model.SEVERITY_CRITICAL
	})
	if len(critical) > 0 {
		warnings = append(warnings, "Critical accessibility barriers detected")
		for _, o := range critical {
			warnings = append(warnings, "Critical "+humanize(string(o.Type))+" ("+o.ID+"): "+o.Description)
		}
	}
	if score.SlopeAccessibility < 0.5 {
		warnings = append(warnings, "Route contains steep slopes")
	}
	if score.SurfaceQuality < 0.6 {
		warnings = append(warnings, "Poor surface conditions detected")
	}
	return warnings
}

func routeFeatures(score model.AccessibilityScore, prefs model.AccessibilityPreferences) []string {
	features := make([]string, 0)
	if score.SurfaceQuality > 0.8 {
		features = append(features, "Excellent surface quality throughout")
	}
	if score.SlopeAccessibility > 0.8 {
		features = append(features, "Gentle slopes, wheelchair accessible")
	}
	if prefs.AvoidStairs && score.ObstacleAvoidance > 0.7 {
		features = append(features, "No stairs on this route")
	}
	if score.WidthAdequacy > 0.8 {
		features = append(features, "Wide pathways suitable for mobility aids")
	}
	if score.SafetyRating > 0.8 {
		features = append(features, "Well-lit and safe route")
	}
	return features
}

// assembleRoute 由阶段产出的路线点计算距离、耗时、障碍物提示、评分与摘要
// 返回的路线尚未分配id与时间戳
func assembleRoute(req *model.RouteRequest, path *Path, obstacles []model.Obstacle) *model.Route {
	points := path.Points
	aid := req.Preferences.MobilityAid
	total := 0.0
	for i := range points {
		if i > 0 {
			d := geo.Distance(points[i-1].Point(), points[i].Point())
			total += d
			points[i].SegmentTime = SegmentTime(d, aid)
		}
		points[i].DistanceFromStart = total
		if points[i].AccessibilityFeatures == nil {
			points[i].AccessibilityFeatures = []string{}
		}
		if points[i].Warnings == nil {
			points[i].Warnings = []string{}
		}
	}
	if obstacles == nil {
		obstacles = []model.Obstacle{}
	}
	annotateObstacles(points, obstacles)

	score := accessibility.Score(points, req.Preferences, obstacles)
	minutes := EstimatedTime(total, score.OverallScore, aid)
	roads := path.RoadTypes
	if len(roads) == 0 {
		roads = []string{}
	}
	surfaces := path.SurfaceTypes
	if len(surfaces) == 0 {
		surfaces = []string{SURFACE_UNKNOWN}
	}
	return &model.Route{
		Points:                points,
		TotalDistance:         total / 1000,
		EstimatedTime:         minutes,
		AccessibilityScore:    score,
		Warnings:              routeWarnings(score, obstacles),
		AccessibilityFeatures: routeFeatures(score, req.Preferences),
		Obstacles:             obstacles,
		RouteSummary: map[string]any{
			"efficiency_rating": efficiencyRating(total, minutes),
			"comfort_level":     score.OverallScore,
			"obstacle_count":    len(obstacles),
			"elevation_gain":    elevationGain(points),
			"surface_types":     surfaces,
			"road_types":        roads,
			"routing_engine":    path.Engine,
			"routing_provider":  path.Provider,
			"uses_real_roads":   path.UsesRealRoads,
			"route_accuracy":    path.Accuracy,
		},
	}
}

// ExportGeoJSON 路线折线、沿线障碍物及其影响范围导出为GeoJSON FeatureCollection
func ExportGeoJSON(route *model.Route) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	fc.BBox = geojson.NewBBox(geo.Bounds(route.Path()))
	var line orb.Geometry = orb.LineString(route.Path())
	if len(route.Points) == 1 {
		line = route.Points[0].Point()
	}
	f := geojson.NewFeature(line)
	f.ID = route.ID
	f.Properties["route_id"] = route.ID
	f.Properties["total_distance"] = route.TotalDistance
	f.Properties["estimated_time"] = route.EstimatedTime
	f.Properties["overall_score"] = route.AccessibilityScore.OverallScore
	f.Properties["grade"] = accessibility.Grade(route.AccessibilityScore.OverallScore)
	for k, v := range route.RouteSummary {
		f.Properties[k] = v
	}
	fc.Append(f)
	for _, o := range route.Obstacles {
		of := geojson.NewFeature(o.Location.Point())
		of.ID = o.ID
		of.Properties["obstacle_id"] = o.ID
		of.Properties["type"] = string(o.Type)
		of.Properties["severity"] = string(o.Severity)
		of.Properties["description"] = o.Description
		of.Properties["impact_radius"] = o.ImpactRadius
		fc.Append(of)
		if o.ImpactRadius > 0 {
			// 影响范围
			zone := geojson.NewFeature(orb.Polygon{geo.BufferZone(o.Location.Point(), o.ImpactRadius, IMPACT_ZONE_VERTICES)})
			zone.Properties["obstacle_id"] = o.ID
			zone.Properties["kind"] = "impact_zone"
			fc.Append(zone)
		}
	}
	return fc
}
