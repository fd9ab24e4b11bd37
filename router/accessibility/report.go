package accessibility

import (
	"math"

	"git.fiblab.net/sim/accessroute/model"
)

const (
	GRADE_EXCELLENT = "Excellent"
	GRADE_GOOD      = "Good"
	GRADE_FAIR      = "Fair"
	GRADE_POOR      = "Poor"
	GRADE_VERY_POOR = "Very Poor"
)

// Grade 分数到等级
func Grade(score float64) string {
	switch {
	case score >= 0.9:
		return GRADE_EXCELLENT
	case score >= 0.8:
		return GRADE_GOOD
	case score >= 0.7:
		return GRADE_FAIR
	case score >= 0.6:
		return GRADE_POOR
	default:
		return GRADE_VERY_POOR
	}
}

// Report 由评分生成各分项等级与改进建议
func Report(score model.AccessibilityScore, prefs model.AccessibilityPreferences) model.AccessibilityReport {
	component := func(v, w float64) model.ComponentAnalysis {
		return model.ComponentAnalysis{Score: v, Grade: Grade(v), Weight: w}
	}
	return model.AccessibilityReport{
		OverallGrade:      Grade(score.OverallScore),
		OverallPercentage: math.Round(score.OverallScore*1000) / 10,
		ComponentAnalysis: map[string]model.ComponentAnalysis{
			"surface_quality":     component(score.SurfaceQuality, WEIGHT_SURFACE),
			"slope_accessibility": component(score.SlopeAccessibility, WEIGHT_SLOPE),
			"obstacle_avoidance":  component(score.ObstacleAvoidance, WEIGHT_OBSTACLE),
			"width_adequacy":      component(score.WidthAdequacy, WEIGHT_WIDTH),
			"safety_rating":       component(score.SafetyRating, WEIGHT_SAFETY),
			"lighting_adequacy":   component(score.LightingAdequacy, WEIGHT_LIGHTING),
			"traffic_safety":      component(score.TrafficSafety, WEIGHT_TRAFFIC),
		},
		Recommendations: recommendations(score, prefs),
	}
}

func recommendations(score model.AccessibilityScore, prefs model.AccessibilityPreferences) []string {
	recs := make([]string, 0)
	if score.SurfaceQuality < 0.7 {
		recs = append(recs, "Consider alternative routes with better surface conditions")
	}
	if score.SlopeAccessibility < 0.6 {
		recs = append(recs, "Route may be challenging due to steep slopes - consider longer but flatter alternatives")
	}
	if score.ObstacleAvoidance < 0.7 {
		recs = append(recs, "Multiple obstacles detected - allow extra travel time")
	}
	if score.WidthAdequacy < 0.7 && prefs.MobilityAid == model.AID_WHEELCHAIR {
		recs = append(recs, "Pathway width may be inadequate for wheelchair access")
	}
	if score.SafetyRating < 0.7 {
		recs = append(recs, "Consider traveling during daylight hours for better safety")
	}
	if score.LightingAdequacy < 0.6 {
		recs = append(recs, "Route may have poor lighting - bring flashlight for evening travel")
	}
	if score.OverallScore < 0.6 {
		recs = append(recs, "This route has significant accessibility challenges - strongly consider alternatives")
	}
	return recs
}
