package router

import (
	"context"
	"fmt"
	"sort"

	"git.fiblab.net/sim/accessroute/geo"
	"git.fiblab.net/sim/accessroute/model"
	"git.fiblab.net/sim/accessroute/router/provider"
	"github.com/paulmach/orb"
	"github.com/samber/lo"
)

// 导航动作位置与路线点的匹配距离/m
const STEP_MATCH_DISTANCE = 5.0

// StageInput 阶段的输入：请求与用于搜索惩罚的附近障碍物
type StageInput struct {
	Request   *model.RouteRequest
	Obstacles []model.Obstacle
}

// Stage 回退链中的一个阶段，失败返回error，由Router推进到下一阶段
type Stage interface {
	Name() string
	Route(ctx context.Context, in *StageInput) (*Path, error)
}

// SelectVariant 在多条候选路线中按无障碍等级选择
// high：导航步骤最少，其次距离最长；low：耗时最短，其次距离最短；medium：第一条
func SelectVariant(cs []provider.Candidate, level model.AccessibilityLevel) provider.Candidate {
	if len(cs) == 0 {
		return provider.Candidate{}
	}
	sorted := append([]provider.Candidate(nil), cs...)
	switch level {
	case model.LEVEL_HIGH:
		sort.SliceStable(sorted, func(i, j int) bool {
			if len(sorted[i].Steps) != len(sorted[j].Steps) {
				return len(sorted[i].Steps) < len(sorted[j].Steps)
			}
			return sorted[i].Distance > sorted[j].Distance
		})
	case model.LEVEL_LOW:
		sort.SliceStable(sorted, func(i, j int) bool {
			if sorted[i].Duration != sorted[j].Duration {
				return sorted[i].Duration < sorted[j].Duration
			}
			return sorted[i].Distance < sorted[j].Distance
		})
	}
	return sorted[0]
}

// candidatePath 外部服务候选路线转为路线点，少于3个点视为退化结果
func candidatePath(c provider.Candidate, features []string) (*Path, error) {
	if len(c.Geometry) <= 2 {
		return nil, fmt.Errorf("%w: %d points", ErrDegenerateResult, len(c.Geometry))
	}
	n := len(c.Geometry)
	points := make([]model.RoutePoint, n)
	zero := 0.0
	for i, p := range c.Geometry {
		var text string
		switch i {
		case 0:
			text = INSTRUCTION_START_PROVIDER
		case n - 1:
			text = INSTRUCTION_ARRIVE
		default:
			text = stepText(c.Steps, p)
		}
		e := zero
		points[i] = model.RoutePoint{
			Coordinate:            model.NewCoordinate(p),
			Instruction:           text,
			Elevation:             &e,
			AccessibilityFeatures: append([]string(nil), features...),
		}
	}
	roads := lo.Uniq(lo.FilterMap(c.Steps, func(s provider.Step, _ int) (string, bool) {
		return s.Name, s.Name != ""
	}))
	return &Path{Points: points, RoadTypes: roads, SurfaceTypes: []string{SURFACE_UNKNOWN}}, nil
}

// stepText 位于该点的导航动作文字
func stepText(steps []provider.Step, p orb.Point) string {
	for _, s := range steps {
		if geo.Distance(s.Maneuver.Location, p) <= STEP_MATCH_DISTANCE {
			if t := s.Text(); t != "" {
				return t
			}
		}
	}
	return INSTRUCTION_CONTINUE_PROVIDER
}

type mapboxStage struct {
	client *provider.Mapbox
}

func NewMapboxStage(client *provider.Mapbox) Stage {
	return &mapboxStage{client: client}
}

func (s *mapboxStage) Name() string { return STAGE_MAPBOX }

func (s *mapboxStage) Route(ctx context.Context, in *StageInput) (*Path, error) {
	if !s.client.Configured() {
		return nil, fmt.Errorf("%w: mapbox token not configured", ErrProviderUnavailable)
	}
	req := in.Request
	cs, err := s.client.Route(ctx, req.Start.Point(), req.End.Point())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	c := SelectVariant(cs, req.AccessibilityLevel)
	features := make([]string, 0, 3)
	if req.Preferences.RequireCurbCuts {
		features = append(features, "Curb cuts available")
	}
	if req.Preferences.PreferWiderSidewalks {
		features = append(features, "Wide sidewalk")
	}
	if req.Preferences.AvoidStairs {
		features = append(features, "No stairs")
	}
	path, err := candidatePath(c, features)
	if err != nil {
		return nil, err
	}
	path.Provider = "Mapbox"
	path.Accuracy = ACCURACY_HIGH
	path.UsesRealRoads = true
	return path, nil
}

type osrmStage struct {
	client *provider.OSRM
}

func NewOSRMStage(client *provider.OSRM) Stage {
	return &osrmStage{client: client}
}

func (s *osrmStage) Name() string { return STAGE_OSRM }

func (s *osrmStage) Route(ctx context.Context, in *StageInput) (*Path, error) {
	req := in.Request
	c, err := s.client.Route(ctx, req.Start.Point(), req.End.Point())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	features := []string{"Follows real roads/sidewalks"}
	if req.Preferences.RequireCurbCuts {
		features = append(features, "Curb cuts preferred")
	}
	if req.Preferences.AvoidStairs {
		features = append(features, "Avoids stairs")
	}
	path, err := candidatePath(c, features)
	if err != nil {
		return nil, err
	}
	path.Provider = "OSRM"
	path.Accuracy = ACCURACY_HIGH
	path.UsesRealRoads = true
	return path, nil
}
