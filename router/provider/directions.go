package provider

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Maneuver 导航动作
type Maneuver struct {
	Type        string    `json:"type"`
	Modifier    string    `json:"modifier,omitempty"`
	Instruction string    `json:"instruction,omitempty"`
	Location    orb.Point `json:"location"`
}

type Step struct {
	Name     string   `json:"name"`
	Distance float64  `json:"distance"`
	Duration float64  `json:"duration"`
	Maneuver Maneuver `json:"maneuver"`
}

// Text 导航文字：优先使用服务给出的instruction，否则由动作类型与道路名拼出
func (s Step) Text() string {
	if s.Maneuver.Instruction != "" {
		return s.Maneuver.Instruction
	}
	parts := make([]string, 0, 3)
	if s.Maneuver.Type != "" {
		parts = append(parts, s.Maneuver.Type)
	}
	if s.Maneuver.Modifier != "" {
		parts = append(parts, s.Maneuver.Modifier)
	}
	if s.Name != "" {
		parts = append(parts, "on "+s.Name)
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

type leg struct {
	Steps []Step `json:"steps"`
}

type directionsRoute struct {
	Distance float64           `json:"distance"`
	Duration float64           `json:"duration"`
	Geometry *geojson.Geometry `json:"geometry"`
	Legs     []leg             `json:"legs"`
}

// directionsResponse Mapbox Directions与OSRM共用的响应格式（geometries=geojson）
type directionsResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message,omitempty"`
	Routes  []directionsRoute `json:"routes"`
}

// Candidate 服务返回的一条候选路线
type Candidate struct {
	Geometry orb.LineString
	Distance float64 // m
	Duration float64 // s
	Steps    []Step
}

func (r directionsRoute) toCandidate() (Candidate, error) {
	if r.Geometry == nil {
		return Candidate{}, fmt.Errorf("route without geometry")
	}
	ls, ok := r.Geometry.Geometry().(orb.LineString)
	if !ok {
		return Candidate{}, fmt.Errorf("unexpected geometry type %s", r.Geometry.Type)
	}
	c := Candidate{Geometry: ls, Distance: r.Distance, Duration: r.Duration}
	for _, l := range r.Legs {
		c.Steps = append(c.Steps, l.Steps...)
	}
	return c, nil
}

func (resp *directionsResponse) candidates(name string) ([]Candidate, error) {
	if resp.Code != "" && resp.Code != "Ok" {
		return nil, fmt.Errorf("%s: code %s: %s", name, resp.Code, resp.Message)
	}
	if len(resp.Routes) == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrNoRoute)
	}
	cs := make([]Candidate, 0, len(resp.Routes))
	for i, r := range resp.Routes {
		c, err := r.toCandidate()
		if err != nil {
			log.Warnf("%s: skip route %d: %v", name, i, err)
			continue
		}
		cs = append(cs, c)
	}
	if len(cs) == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrNoRoute)
	}
	return cs, nil
}

// coordinatePath 起终点路径片段 "lon,lat;lon,lat"
func coordinatePath(start, end orb.Point) string {
	return fmt.Sprintf("%f,%f;%f,%f", start.Lon(), start.Lat(), end.Lon(), end.Lat())
}
