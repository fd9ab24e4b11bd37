package obstacle

import (
	"time"

	"git.fiblab.net/sim/accessroute/model"
)

// DemoObstacles 示例障碍物数据，时间相对now生成
func DemoObstacles(now time.Time) []model.Obstacle {
	after := func(d time.Duration) *time.Time {
		t := now.Add(d)
		return &t
	}
	day := 24 * time.Hour
	return []model.Obstacle{
		{
			ID: "obs_001", Location: model.Coordinate{Latitude: 37.7749, Longitude: -122.4194},
			Type: model.OBSTACLE_CONSTRUCTION, Severity: model.SEVERITY_HIGH,
			Description: "Major sidewalk construction blocking wheelchair access. Detour required via adjacent street.",
			ReportedAt:  now, Verified: true,
			AffectsWheelchair: true, AffectsMobilityAid: true,
			EstimatedClearanceDate: after(14 * day), ImpactRadius: 75,
		},
		{
			ID: "obs_002", Location: model.Coordinate{Latitude: 37.7849, Longitude: -122.4094},
			Type: model.OBSTACLE_STAIRS, Severity: model.SEVERITY_CRITICAL,
			Description: "Steep stairs with 15 steps, no ramp alternative. Handrails available but insufficient for wheelchair access.",
			ReportedAt:  now, Verified: true,
			AffectsWheelchair: true, AffectsVisuallyImpaired: true, AffectsMobilityAid: true,
			ImpactRadius: 25,
		},
		{
			ID: "obs_003", Location: model.Coordinate{Latitude: 37.7650, Longitude: -122.4094},
			Type: model.OBSTACLE_BROKEN_SURFACE, Severity: model.SEVERITY_MEDIUM,
			Description: "Cracked sidewalk with uneven surface causing trip hazard. Multiple potholes and raised concrete sections.",
			ReportedAt:  now.Add(-3 * day),
			AffectsWheelchair: true, AffectsVisuallyImpaired: true, AffectsMobilityAid: true,
			EstimatedClearanceDate: after(7 * day), ImpactRadius: 30,
		},
		{
			ID: "obs_004", Location: model.Coordinate{Latitude: 37.7750, Longitude: -122.4150},
			Type: model.OBSTACLE_NARROW_PATH, Severity: model.SEVERITY_MEDIUM,
			Description: "Sidewalk narrows to less than 1 meter due to utility poles and street furniture.",
			ReportedAt:  now.Add(-6 * time.Hour), Verified: true,
			AffectsWheelchair: true, AffectsMobilityAid: true,
			ImpactRadius: 20,
		},
		{
			ID: "obs_005", Location: model.Coordinate{Latitude: 40.7128, Longitude: -74.0060},
			Type: model.OBSTACLE_TEMPORARY_BARRIER, Severity: model.SEVERITY_HIGH,
			Description: "Temporary construction barrier blocking sidewalk access during building renovation.",
			ReportedAt:  now.Add(-2 * time.Hour), Verified: true,
			AffectsWheelchair: true, AffectsVisuallyImpaired: true, AffectsMobilityAid: true,
			EstimatedClearanceDate: after(5 * day), ImpactRadius: 50,
		},
		{
			ID: "obs_006", Location: model.Coordinate{Latitude: 34.0522, Longitude: -118.2437},
			Type: model.OBSTACLE_STEEP_SLOPE, Severity: model.SEVERITY_HIGH,
			Description: "Sidewalk slope exceeds 8.3% (ADA maximum) for over 100 meters. No alternative route available.",
			ReportedAt:  now.Add(-day), Verified: true,
			AffectsWheelchair: true, AffectsMobilityAid: true,
			ImpactRadius: 100,
		},
		{
			ID: "obs_101", Location: model.Coordinate{Latitude: 42.0414, Longitude: -88.0754},
			Type: model.OBSTACLE_CONSTRUCTION, Severity: model.SEVERITY_MEDIUM,
			Description: "Sidewalk construction near intersection causing detour.",
			ReportedAt:  now.Add(-5 * time.Hour), Verified: true,
			AffectsWheelchair: true, AffectsVisuallyImpaired: true, AffectsMobilityAid: true,
			EstimatedClearanceDate: after(3 * day), ImpactRadius: 40,
		},
		{
			ID: "obs_102", Location: model.Coordinate{Latitude: 42.0494, Longitude: -88.0704},
			Type: model.OBSTACLE_NARROW_PATH, Severity: model.SEVERITY_LOW,
			Description: "Path narrows due to utility work; passable with caution.",
			ReportedAt:  now.Add(-day),
			AffectsWheelchair: true, AffectsMobilityAid: true,
			ImpactRadius: 20,
		},
		{
			ID: "obs_103", Location: model.Coordinate{Latitude: 42.0389, Longitude: -88.0748},
			Type: model.OBSTACLE_BROKEN_SURFACE, Severity: model.SEVERITY_MEDIUM,
			Description: "Uneven sidewalk slabs, reduced smoothness.",
			ReportedAt:  now.Add(-8 * time.Hour), Verified: true,
			AffectsWheelchair: true, AffectsVisuallyImpaired: true, AffectsMobilityAid: true,
			ImpactRadius: 30,
		},
		{
			ID: "obs_104", Location: model.Coordinate{Latitude: 42.0422, Longitude: -88.0622},
			Type: model.OBSTACLE_CONSTRUCTION, Severity: model.SEVERITY_HIGH,
			Description: "Temporary construction narrowing path; expect short detour.",
			ReportedAt:  now.Add(-3 * time.Hour), Verified: true,
			AffectsWheelchair: true, AffectsVisuallyImpaired: true, AffectsMobilityAid: true,
			EstimatedClearanceDate: after(2 * day), ImpactRadius: 45,
		},
	}
}
