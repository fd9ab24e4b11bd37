// Package model 定义路径规划请求、路线、障碍物与无障碍评分等数据结构
package model

import (
	"slices"
	"time"

	"github.com/paulmach/orb"
)

type AccessibilityLevel string

const (
	LEVEL_LOW    AccessibilityLevel = "low"
	LEVEL_MEDIUM AccessibilityLevel = "medium"
	LEVEL_HIGH   AccessibilityLevel = "high"
)

type MobilityAid string

const (
	AID_NONE       MobilityAid = "none"
	AID_WHEELCHAIR MobilityAid = "wheelchair"
	AID_WALKER     MobilityAid = "walker"
	AID_CANE       MobilityAid = "cane"
	AID_GUIDE_DOG  MobilityAid = "guide_dog"
)

type ObstacleType string

const (
	OBSTACLE_CONSTRUCTION      ObstacleType = "construction"
	OBSTACLE_STAIRS            ObstacleType = "stairs"
	OBSTACLE_STEEP_SLOPE       ObstacleType = "steep_slope"
	OBSTACLE_NARROW_PATH       ObstacleType = "narrow_path"
	OBSTACLE_BROKEN_SURFACE    ObstacleType = "broken_surface"
	OBSTACLE_BLOCKED_ACCESS    ObstacleType = "blocked_access"
	OBSTACLE_TEMPORARY_BARRIER ObstacleType = "temporary_barrier"
	OBSTACLE_OTHER             ObstacleType = "other"
)

type Severity string

const (
	SEVERITY_LOW      Severity = "low"
	SEVERITY_MEDIUM   Severity = "medium"
	SEVERITY_HIGH     Severity = "high"
	SEVERITY_CRITICAL Severity = "critical"
)

// Rank 严重程度排序值，critical最小
func (s Severity) Rank() int {
	switch s {
	case SEVERITY_CRITICAL:
		return 0
	case SEVERITY_HIGH:
		return 1
	case SEVERITY_MEDIUM:
		return 2
	case SEVERITY_LOW:
		return 3
	default:
		return 4
	}
}

type TransportMode string

const (
	TRANSPORT_WALKING TransportMode = "walking"
	TRANSPORT_TRANSIT TransportMode = "transit"
	TRANSPORT_MIXED   TransportMode = "mixed"
)

type TimePreference string

const (
	TIME_FASTEST         TimePreference = "fastest"
	TIME_SHORTEST        TimePreference = "shortest"
	TIME_MOST_ACCESSIBLE TimePreference = "most_accessible"
	TIME_BALANCED        TimePreference = "balanced"
)

type Coordinate struct {
	Latitude  float64 `json:"latitude" bson:"latitude" validate:"min=-90,max=90"`
	Longitude float64 `json:"longitude" bson:"longitude" validate:"min=-180,max=180"`
}

func NewCoordinate(p orb.Point) Coordinate {
	return Coordinate{Latitude: p.Lat(), Longitude: p.Lon()}
}

func (c Coordinate) Point() orb.Point {
	return orb.Point{c.Longitude, c.Latitude}
}

type RoutePoint struct {
	Coordinate
	Instruction           string   `json:"instruction"`
	DistanceFromStart     float64  `json:"distance_from_start"`
	Elevation             *float64 `json:"elevation,omitempty"`
	AccessibilityFeatures []string `json:"accessibility_features"`
	Warnings              []string `json:"warnings"`
	SegmentTime           int      `json:"segment_time"`
}

type Obstacle struct {
	ID                      string       `json:"id" bson:"_id"`
	Location                Coordinate   `json:"location" bson:"location"`
	Type                    ObstacleType `json:"type" bson:"type" validate:"required,oneof=construction stairs steep_slope narrow_path broken_surface blocked_access temporary_barrier other"`
	Severity                Severity     `json:"severity" bson:"severity" validate:"required,oneof=low medium high critical"`
	Description             string       `json:"description" bson:"description"`
	ReportedAt              time.Time    `json:"reported_at" bson:"reported_at"`
	Verified                bool         `json:"verified" bson:"verified"`
	AffectsWheelchair       bool         `json:"affects_wheelchair" bson:"affects_wheelchair"`
	AffectsVisuallyImpaired bool         `json:"affects_visually_impaired" bson:"affects_visually_impaired"`
	AffectsMobilityAid      bool         `json:"affects_mobility_aid" bson:"affects_mobility_aid"`
	EstimatedClearanceDate  *time.Time   `json:"estimated_clearance_date,omitempty" bson:"estimated_clearance_date,omitempty"`
	ImpactRadius            float64      `json:"impact_radius" bson:"impact_radius" validate:"min=0"`
}

// Active 障碍物在t时刻是否仍然有效（预计清除时间未过）
func (o *Obstacle) Active(t time.Time) bool {
	return o.EstimatedClearanceDate == nil || !o.EstimatedClearanceDate.Before(t)
}

type AccessibilityScore struct {
	OverallScore       float64 `json:"overall_score"`
	SurfaceQuality     float64 `json:"surface_quality"`
	SlopeAccessibility float64 `json:"slope_accessibility"`
	ObstacleAvoidance  float64 `json:"obstacle_avoidance"`
	WidthAdequacy      float64 `json:"width_adequacy"`
	SafetyRating       float64 `json:"safety_rating"`
	LightingAdequacy   float64 `json:"lighting_adequacy"`
	TrafficSafety      float64 `json:"traffic_safety"`
}

type Route struct {
	ID                    string             `json:"route_id"`
	Points                []RoutePoint       `json:"points"`
	TotalDistance         float64            `json:"total_distance"`
	EstimatedTime         int                `json:"estimated_time"`
	AccessibilityScore    AccessibilityScore `json:"accessibility_score"`
	Warnings              []string           `json:"warnings"`
	AccessibilityFeatures []string           `json:"accessibility_features"`
	RouteSummary          map[string]any     `json:"route_summary"`
	Obstacles             []Obstacle         `json:"obstacles"`
	CreatedAt             time.Time          `json:"created_at"`
	CalculationTimeMs     int64              `json:"calculation_time_ms"`
}

// Clone 深拷贝路线（路线点与障碍物切片不与原路线共享，空切片保持非nil）
func (r *Route) Clone() *Route {
	c := *r
	c.Points = make([]RoutePoint, len(r.Points))
	for i, p := range r.Points {
		p.AccessibilityFeatures = slices.Clone(p.AccessibilityFeatures)
		p.Warnings = slices.Clone(p.Warnings)
		if p.Elevation != nil {
			e := *p.Elevation
			p.Elevation = &e
		}
		c.Points[i] = p
	}
	c.Warnings = slices.Clone(r.Warnings)
	c.AccessibilityFeatures = slices.Clone(r.AccessibilityFeatures)
	c.Obstacles = slices.Clone(r.Obstacles)
	c.RouteSummary = make(map[string]any, len(r.RouteSummary))
	for k, v := range r.RouteSummary {
		c.RouteSummary[k] = v
	}
	return &c
}

// Path 路线点的坐标序列
func (r *Route) Path() []orb.Point {
	path := make([]orb.Point, len(r.Points))
	for i, p := range r.Points {
		path[i] = p.Point()
	}
	return path
}

type ComponentAnalysis struct {
	Score  float64 `json:"score"`
	Grade  string  `json:"grade"`
	Weight float64 `json:"weight"`
}

type AccessibilityReport struct {
	OverallGrade      string                       `json:"overall_grade"`
	OverallPercentage float64                      `json:"overall_percentage"`
	ComponentAnalysis map[string]ComponentAnalysis `json:"component_analysis"`
	Recommendations   []string                     `json:"recommendations"`
}
