package main

import (
	"git.fiblab.net/sim/accessroute/model"
	"github.com/paulmach/orb/geojson"
)

type GetRouteRequest struct {
	RouteID string `json:"route_id"`
}

type GetAccessibilityReportRequest struct {
	RouteID string `json:"route_id"`
	// 为空时使用默认偏好
	Preferences *model.AccessibilityPreferences `json:"preferences,omitempty"`
}

// FindObstaclesRequest 给出start与end时按沿线走廊查询，给出center时按圆形范围查询，否则返回全部
type FindObstaclesRequest struct {
	Start      *model.Coordinate `json:"start,omitempty"`
	End        *model.Coordinate `json:"end,omitempty"`
	Center     *model.Coordinate `json:"center,omitempty"`
	Radius     float64           `json:"radius"`
	ActiveOnly bool              `json:"active_only"`
}

type FindObstaclesResponse struct {
	Obstacles []model.Obstacle `json:"obstacles"`
}

type GetObstacleRequest struct {
	ObstacleID string `json:"obstacle_id"`
}

type VerifyObstacleRequest struct {
	ObstacleID string `json:"obstacle_id"`
	Verified   bool   `json:"verified"`
}

type VerifyObstacleResponse struct {
	ObstacleID string `json:"obstacle_id"`
	Verified   bool   `json:"verified"`
}

type ObstacleStatsRequest struct{}

type ExportRouteResponse struct {
	RouteID string                     `json:"route_id"`
	GeoJSON *geojson.FeatureCollection `json:"geojson"`
}
