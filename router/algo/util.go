package algo

import "github.com/samber/lo"

var roadWidths = map[string]float64{
	"primary":       8.0,
	"secondary":     6.0,
	"tertiary":      5.0,
	"residential":   4.0,
	"footway":       2.0,
	"cycleway":      2.5,
	"path":          1.5,
	"pedestrian":    3.0,
	"living_street": 4.0,
	"unclassified":  4.0,
	"service":       3.0,
}

// EstimateWidth 按道路类型估计宽度/m
func EstimateWidth(highway string) float64 {
	if w, ok := roadWidths[highway]; ok {
		return w
	}
	return DEFAULT_WIDTH
}

// EdgeAccessibilityScore 按道路类型、路面与人行道计算边的无障碍评分，截断到[0.1,1.0]
// surface为空视为asphalt，sidewalk为空视为none
func EdgeAccessibilityScore(highway, surface, sidewalk string) float64 {
	score := EDGE_BASE_SCORE
	switch highway {
	case "footway", "pedestrian", "cycleway":
		score += 0.15
	case "residential":
		score += 0.05
	case "primary", "secondary":
		score -= 0.1
	}
	if surface == "" {
		surface = "asphalt"
	}
	switch surface {
	case "asphalt", "concrete", "paved":
		score += 0.1
	case "gravel", "dirt", "grass":
		score -= 0.2
	}
	switch sidewalk {
	case "both":
		score += 0.15
	case "left", "right":
		score += 0.05
	default:
		score -= 0.1
	}
	return lo.Clamp(score, EDGE_MIN_SCORE, EDGE_MAX_SCORE)
}

// HasSidewalk sidewalk标签是否表示存在人行道
func HasSidewalk(sidewalk string) bool {
	return lo.Contains([]string{"both", "left", "right", "yes", "separate"}, sidewalk)
}
