package accessibility_test

import (
	"testing"

	"git.fiblab.net/sim/accessroute/model"
	"git.fiblab.net/sim/accessroute/router/accessibility"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func elevation(v float64) *float64 { return &v }

func flatPoints() []model.RoutePoint {
	return []model.RoutePoint{
		{Coordinate: model.Coordinate{Latitude: 40.7580, Longitude: -73.9855}, Elevation: elevation(10)},
		{Coordinate: model.Coordinate{Latitude: 40.7545, Longitude: -73.9877}, Elevation: elevation(10)},
		{Coordinate: model.Coordinate{Latitude: 40.7510, Longitude: -73.9900}, Elevation: elevation(10)},
	}
}

func weightedSum(s model.AccessibilityScore) float64 {
	return s.SurfaceQuality*accessibility.WEIGHT_SURFACE +
		s.SlopeAccessibility*accessibility.WEIGHT_SLOPE +
		s.ObstacleAvoidance*accessibility.WEIGHT_OBSTACLE +
		s.WidthAdequacy*accessibility.WEIGHT_WIDTH +
		s.SafetyRating*accessibility.WEIGHT_SAFETY +
		s.LightingAdequacy*accessibility.WEIGHT_LIGHTING +
		s.TrafficSafety*accessibility.WEIGHT_TRAFFIC
}

func assertInRange(t *testing.T, s model.AccessibilityScore) {
	for _, v := range []float64{
		s.OverallScore, s.SurfaceQuality, s.SlopeAccessibility, s.ObstacleAvoidance,
		s.WidthAdequacy, s.SafetyRating, s.LightingAdequacy, s.TrafficSafety,
	} {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}

func TestWeightsSumToOne(t *testing.T) {
	sum := accessibility.WEIGHT_SURFACE + accessibility.WEIGHT_SLOPE + accessibility.WEIGHT_OBSTACLE +
		accessibility.WEIGHT_WIDTH + accessibility.WEIGHT_SAFETY + accessibility.WEIGHT_LIGHTING +
		accessibility.WEIGHT_TRAFFIC
	assert.InDelta(t, 1.0, sum, 1e-12)
}

func TestScoreNoObstacles(t *testing.T) {
	prefs := model.DefaultPreferences()
	s := accessibility.Score(flatPoints(), prefs, nil)
	assertInRange(t, s)
	assert.Equal(t, 0.9, s.SurfaceQuality)
	assert.Equal(t, 1.0, s.SlopeAccessibility)
	assert.Equal(t, 1.0, s.ObstacleAvoidance)
	assert.Equal(t, 0.85, s.WidthAdequacy)
	assert.Equal(t, 0.8, s.SafetyRating)
	assert.Equal(t, 0.75, s.LightingAdequacy)
	assert.Equal(t, 0.85, s.TrafficSafety)
	assert.InDelta(t, weightedSum(s), s.OverallScore, 1e-3)
}

func TestScoreCraftedFixture(t *testing.T) {
	prefs := model.DefaultPreferences()
	prefs.MobilityAid = model.AID_WHEELCHAIR
	points := flatPoints()
	// 第二点比两端高40m，路段约430m，坡度约9%
	points[1].Elevation = elevation(50)
	points[1].Warnings = []string{"Uneven pavement", "Narrow sidewalk", "Busy road crossing"}
	points[1].AccessibilityFeatures = []string{"Wide sidewalk", "Well-lit", "Pedestrian signal"}
	obstacles := []model.Obstacle{
		{ID: "a", Type: model.OBSTACLE_BROKEN_SURFACE, Severity: model.SEVERITY_MEDIUM, AffectsWheelchair: true},
		{ID: "b", Type: model.OBSTACLE_CONSTRUCTION, Severity: model.SEVERITY_LOW},
	}
	s := accessibility.Score(points, prefs, obstacles)
	assertInRange(t, s)

	// 0.9 - 0.2 - 0.05
	assert.InDelta(t, 0.65, s.SurfaceQuality, 1e-9)
	// 0.15*1.3 + 0.05*1.3
	assert.InDelta(t, 0.74, s.ObstacleAvoidance, 1e-9)
	// (0.85 + 0.02 - 0.1) * 0.95
	assert.InDelta(t, 0.7315, s.WidthAdequacy, 1e-3)
	// "Well-lit" 命中safe关键词 well-lit
	assert.InDelta(t, 0.82, s.SafetyRating, 1e-9)
	assert.InDelta(t, 0.78, s.LightingAdequacy, 1e-9)
	// 一条交通警告，一条过街设施
	assert.InDelta(t, 0.85-0.08+0.03, s.TrafficSafety, 1e-9)
	assert.Less(t, s.SlopeAccessibility, 1.0)
	assert.InDelta(t, weightedSum(s), s.OverallScore, 1e-3)
}

func TestSlopeWithoutElevation(t *testing.T) {
	points := flatPoints()
	for i := range points {
		points[i].Elevation = nil
	}
	s := accessibility.Score(points, model.DefaultPreferences(), nil)
	assert.Equal(t, 0.8, s.SlopeAccessibility)

	s = accessibility.Score(points[:1], model.DefaultPreferences(), nil)
	assert.Equal(t, 1.0, s.SlopeAccessibility)
}

func TestObstacleAvoidanceCapped(t *testing.T) {
	prefs := model.DefaultPreferences()
	prefs.MobilityAid = model.AID_WHEELCHAIR
	stairs := model.Obstacle{
		ID: "obs", Type: model.OBSTACLE_STAIRS, Severity: model.SEVERITY_CRITICAL,
		AffectsWheelchair: true,
	}
	s := accessibility.Score(flatPoints(), prefs, []model.Obstacle{stairs})
	// 0.5*1.5*1.3 超过上限0.8
	assert.Equal(t, 0.2, s.ObstacleAvoidance)
	assert.InDelta(t, 0.975, accessibility.ObstaclePenalty(stairs, prefs), 1e-9)

	prefs.MobilityAid = model.AID_CANE
	stairs.AffectsMobilityAid = true
	assert.InDelta(t, 0.9, accessibility.ObstaclePenalty(stairs, prefs), 1e-9)
}

func TestReport(t *testing.T) {
	prefs := model.DefaultPreferences()
	prefs.MobilityAid = model.AID_WHEELCHAIR
	score := model.AccessibilityScore{
		OverallScore:       0.555,
		SurfaceQuality:     0.65,
		SlopeAccessibility: 0.5,
		ObstacleAvoidance:  0.2,
		WidthAdequacy:      0.69,
		SafetyRating:       0.9,
		LightingAdequacy:   0.75,
		TrafficSafety:      0.81,
	}
	report := accessibility.Report(score, prefs)
	assert.Equal(t, accessibility.GRADE_VERY_POOR, report.OverallGrade)
	assert.Equal(t, 55.5, report.OverallPercentage)
	require.Len(t, report.ComponentAnalysis, 7)
	assert.Equal(t, accessibility.GRADE_EXCELLENT, report.ComponentAnalysis["safety_rating"].Grade)
	assert.Equal(t, accessibility.GRADE_GOOD, report.ComponentAnalysis["traffic_safety"].Grade)
	assert.Equal(t, accessibility.GRADE_FAIR, report.ComponentAnalysis["lighting_adequacy"].Grade)
	assert.Equal(t, accessibility.WEIGHT_SLOPE, report.ComponentAnalysis["slope_accessibility"].Weight)
	assert.Len(t, report.Recommendations, 5)
	assert.Contains(t, report.Recommendations, "Pathway width may be inadequate for wheelchair access")

	prefs.MobilityAid = model.AID_NONE
	report = accessibility.Report(score, prefs)
	assert.Len(t, report.Recommendations, 4)
}

func TestGrade(t *testing.T) {
	assert.Equal(t, accessibility.GRADE_EXCELLENT, accessibility.Grade(0.9))
	assert.Equal(t, accessibility.GRADE_GOOD, accessibility.Grade(0.85))
	assert.Equal(t, accessibility.GRADE_FAIR, accessibility.Grade(0.7))
	assert.Equal(t, accessibility.GRADE_POOR, accessibility.Grade(0.6))
	assert.Equal(t, accessibility.GRADE_VERY_POOR, accessibility.Grade(0.59))
}
