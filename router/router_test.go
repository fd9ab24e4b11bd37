package router_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"git.fiblab.net/sim/accessroute/model"
	"git.fiblab.net/sim/accessroute/obstacle"
	"git.fiblab.net/sim/accessroute/router"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	nycStart = model.Coordinate{Latitude: 40.7580, Longitude: -73.9855}
	nycEnd   = model.Coordinate{Latitude: 40.7510, Longitude: -73.9900}
)

func stairs(id string, lat, lon float64) model.Obstacle {
	return model.Obstacle{
		ID:                 id,
		Location:           model.Coordinate{Latitude: lat, Longitude: lon},
		Type:               model.OBSTACLE_STAIRS,
		Severity:           model.SEVERITY_CRITICAL,
		Description:        "Subway entrance stairs, no elevator",
		ReportedAt:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Verified:           true,
		AffectsWheelchair:  true,
		AffectsMobilityAid: true,
		ImpactRadius:       50,
	}
}

func wheelchairRequest(start, end model.Coordinate) model.RouteRequest {
	req := model.NewRouteRequest(start, end)
	req.Preferences.MobilityAid = model.AID_WHEELCHAIR
	req.Preferences.AvoidStairs = true
	return req
}

// funcStage 测试用阶段
type funcStage struct {
	name  string
	calls atomic.Int32
	route func(ctx context.Context, in *router.StageInput) (*router.Path, error)
}

func (s *funcStage) Name() string { return s.name }

func (s *funcStage) Route(ctx context.Context, in *router.StageInput) (*router.Path, error) {
	s.calls.Add(1)
	return s.route(ctx, in)
}

func failing(name string, err error) *funcStage {
	return &funcStage{name: name, route: func(context.Context, *router.StageInput) (*router.Path, error) {
		return nil, err
	}}
}

func newRouter(t *testing.T, obstacles []model.Obstacle, opts ...router.Option) *router.Router {
	t.Helper()
	r, err := router.New(router.DefaultConfig(), obstacle.NewStore(obstacles), opts...)
	require.NoError(t, err)
	return r
}

func TestNYCWheelchairStairs(t *testing.T) {
	req := wheelchairRequest(nycStart, nycEnd)

	r := newRouter(t, []model.Obstacle{stairs("obs_stairs", 40.7549, -73.9900)},
		router.WithStages(router.NewGridFallbackStage()))
	route, err := r.CalculateRoute(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, route.Obstacles, 1)
	assert.InDelta(t, 0.2, route.AccessibilityScore.ObstacleAvoidance, 1e-9)
	assert.Contains(t, route.Warnings, "Critical accessibility barriers detected")
	assert.True(t, lo.SomeBy(route.Warnings, func(w string) bool { return strings.Contains(w, "obs_stairs") }),
		"warnings %v should name the critical obstacle", route.Warnings)

	clear := newRouter(t, nil, router.WithStages(router.NewGridFallbackStage()))
	route, err = clear.CalculateRoute(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, route.Obstacles)
	assert.InDelta(t, 1.0, route.AccessibilityScore.ObstacleAvoidance, 1e-9)
	assert.NotContains(t, route.Warnings, "Critical accessibility barriers detected")
}

func TestFallbackWhenProvidersFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	cfg := router.DefaultConfig()
	cfg.MapboxToken = "token"
	cfg.MapboxURL = srv.URL
	cfg.OSRMURL = srv.URL
	cfg.OverpassURL = srv.URL
	r, err := router.New(cfg, obstacle.NewStore(nil), router.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	assert.Equal(t, router.DEFAULT_STAGES, r.Stages())

	// 约28km，超出两种网格的吸附范围
	req := model.NewRouteRequest(
		model.Coordinate{Latitude: 40.70, Longitude: -74.05},
		model.Coordinate{Latitude: 40.90, Longitude: -73.85},
	)
	route, err := r.CalculateRoute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, router.STAGE_GRID_FALLBACK, route.RouteSummary["routing_engine"])
	assert.Equal(t, "Grid Fallback", route.RouteSummary["routing_provider"])
	assert.Equal(t, router.ACCURACY_LOW, route.RouteSummary["route_accuracy"])
	assert.Equal(t, false, route.RouteSummary["uses_real_roads"])
	require.Len(t, route.Points, 3)
	assert.Equal(t, req.Start, route.Points[0].Coordinate)
	assert.Equal(t, req.End, route.Points[2].Coordinate)
}

func TestMapboxSkippedWithoutToken(t *testing.T) {
	r := newRouter(t, nil)
	assert.Equal(t, []string{
		router.STAGE_OSRM, router.STAGE_ROAD_NETWORK, router.STAGE_GRID_NETWORK, router.STAGE_GRID_FALLBACK,
	}, r.Stages())
}

func TestStageTimeoutAdvances(t *testing.T) {
	slow := &funcStage{name: "slow", route: func(ctx context.Context, _ *router.StageInput) (*router.Path, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	cfg := router.DefaultConfig()
	cfg.GridFallbackTimeout = 50 * time.Millisecond
	r, err := router.New(cfg, obstacle.NewStore(nil), router.WithStages(slow, router.NewGridFallbackStage()))
	require.NoError(t, err)

	began := time.Now()
	route, err := r.CalculateRoute(context.Background(), model.NewRouteRequest(nycStart, nycEnd))
	require.NoError(t, err)
	assert.Less(t, time.Since(began), 2*time.Second)
	assert.Equal(t, int32(1), slow.calls.Load())
	assert.Equal(t, router.STAGE_GRID_FALLBACK, route.RouteSummary["routing_engine"])
}

func TestAllStagesFailed(t *testing.T) {
	boom := errors.New("boom")
	r := newRouter(t, nil, router.WithStages(failing("a", boom), failing("b", router.ErrNoPath)))
	_, err := r.CalculateRoute(context.Background(), model.NewRouteRequest(nycStart, nycEnd))
	require.Error(t, err)
	assert.ErrorIs(t, err, router.ErrAllStagesFailed)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, err, router.ErrNoPath)
}

func TestSharedRouteSurvivesCallerCancel(t *testing.T) {
	entered := make(chan struct{}, 1)
	release := make(chan struct{})
	fallback := router.NewGridFallbackStage()
	slow := &funcStage{name: router.STAGE_GRID_NETWORK, route: func(ctx context.Context, in *router.StageInput) (*router.Path, error) {
		select {
		case entered <- struct{}{}:
		default:
		}
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return fallback.Route(ctx, in)
	}}
	r := newRouter(t, nil, router.WithStages(slow, router.NewGridFallbackStage()))
	req := model.NewRouteRequest(nycStart, nycEnd)

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := r.CalculateRoute(ctxA, req)
		errA <- err
	}()
	<-entered

	type result struct {
		route *model.Route
		err   error
	}
	resB := make(chan result, 1)
	go func() {
		route, err := r.CalculateRoute(context.Background(), req)
		resB <- result{route, err}
	}()
	// 等待第二个请求加入同一计算
	time.Sleep(50 * time.Millisecond)

	cancelA()
	select {
	case err := <-errA:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("cancelled caller did not return")
	}

	close(release)
	select {
	case res := <-resB:
		require.NoError(t, res.err)
		require.NotNil(t, res.route)
		assert.Equal(t, router.STAGE_GRID_NETWORK, res.route.RouteSummary["routing_engine"])
	case <-time.After(5 * time.Second):
		t.Fatal("second caller did not return")
	}
}

func TestRouteEmptyListsMarshalAsArrays(t *testing.T) {
	r := newRouter(t, nil, router.WithStages(router.NewGridFallbackStage()))
	route, err := r.CalculateRoute(context.Background(), model.NewRouteRequest(nycStart, nycEnd))
	require.NoError(t, err)
	require.NotNil(t, route.Warnings)
	require.NotNil(t, route.Obstacles)
	require.NotNil(t, route.Points[0].Warnings)

	data, err := json.Marshal(route)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"warnings":[]`)
	assert.Contains(t, string(data), `"obstacles":[]`)
	assert.NotContains(t, string(data), "null")
}

func TestInvalidRequest(t *testing.T) {
	r := newRouter(t, nil, router.WithStages(router.NewGridFallbackStage()))
	req := model.NewRouteRequest(model.Coordinate{Latitude: 100, Longitude: 0}, nycEnd)
	_, err := r.CalculateRoute(context.Background(), req)
	assert.ErrorIs(t, err, router.ErrInvalidRequest)

	req = model.NewRouteRequest(nycStart, nycEnd)
	req.AccessibilityLevel = "extreme"
	_, err = r.CalculateRoute(context.Background(), req)
	assert.ErrorIs(t, err, router.ErrInvalidRequest)
}

func TestCacheHitIssuesNewID(t *testing.T) {
	stage := &funcStage{name: router.STAGE_GRID_FALLBACK}
	fallback := router.NewGridFallbackStage()
	stage.route = fallback.Route
	r := newRouter(t, nil, router.WithStages(stage))

	req := model.NewRouteRequest(nycStart, nycEnd)
	first, err := r.CalculateRoute(context.Background(), req)
	require.NoError(t, err)
	second, err := r.CalculateRoute(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, int32(1), stage.calls.Load())
	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, first.Points, second.Points)
	assert.Equal(t, first.TotalDistance, second.TotalDistance)
	assert.False(t, second.CreatedAt.Before(first.CreatedAt))

	// 修改返回值不影响缓存
	second.Points[0].Instruction = "changed"
	third, err := r.CalculateRoute(context.Background(), req)
	require.NoError(t, err)
	assert.NotEqual(t, "changed", third.Points[0].Instruction)

	got, err := r.GetRoute(first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	_, err = r.GetRoute("missing")
	assert.ErrorIs(t, err, router.ErrRouteNotFound)

	report, err := r.Report(first.ID, req.Preferences)
	require.NoError(t, err)
	assert.NotEmpty(t, report.OverallGrade)
	assert.Len(t, report.ComponentAnalysis, 7)
}

func TestRouteAssembly(t *testing.T) {
	req := wheelchairRequest(nycStart, nycEnd)
	// 位于第一段上，距起点约110m
	near := stairs("obs_near", 40.7570, -73.9855)
	near.Severity = model.SEVERITY_MEDIUM
	r := newRouter(t, []model.Obstacle{near}, router.WithStages(router.NewGridFallbackStage()))

	route, err := r.CalculateRoute(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, route.Points, 3)

	prev := -1.0
	for i, p := range route.Points {
		assert.GreaterOrEqual(t, p.DistanceFromStart, prev)
		prev = p.DistanceFromStart
		require.NotNil(t, p.Elevation)
		if i == 0 {
			assert.Equal(t, 0, p.SegmentTime)
		} else {
			assert.Greater(t, p.SegmentTime, 0)
		}
	}
	last := route.Points[len(route.Points)-1]
	assert.InDelta(t, last.DistanceFromStart/1000, route.TotalDistance, 1e-9)
	assert.Equal(t, router.INSTRUCTION_ARRIVE, last.Instruction)
	assert.Equal(t, router.EstimatedTime(last.DistanceFromStart, route.AccessibilityScore.OverallScore, model.AID_WHEELCHAIR), route.EstimatedTime)

	// 中等严重程度的障碍物只提示一次
	assert.Equal(t, []string{"Stairs ahead"}, route.Points[1].Warnings)
	assert.Empty(t, route.Points[0].Warnings)
	assert.Empty(t, route.Points[2].Warnings)

	for _, k := range []string{
		"efficiency_rating", "comfort_level", "obstacle_count", "elevation_gain", "surface_types",
		"road_types", "routing_engine", "routing_provider", "uses_real_roads", "route_accuracy",
	} {
		assert.Contains(t, route.RouteSummary, k)
	}
	assert.Equal(t, 1, route.RouteSummary["obstacle_count"])
	assert.Equal(t, 0.0, route.RouteSummary["elevation_gain"])
}

func TestMapboxStage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, directionsJSON)
	}))
	defer srv.Close()

	cfg := router.DefaultConfig()
	cfg.MapboxToken = "token"
	cfg.MapboxURL = srv.URL
	cfg.Stages = []string{router.STAGE_MAPBOX, router.STAGE_GRID_FALLBACK}
	r, err := router.New(cfg, obstacle.NewStore(nil), router.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	route, err := r.CalculateRoute(context.Background(), model.NewRouteRequest(nycStart, nycEnd))
	require.NoError(t, err)
	assert.Equal(t, router.STAGE_MAPBOX, route.RouteSummary["routing_engine"])
	assert.Equal(t, "Mapbox", route.RouteSummary["routing_provider"])
	assert.Equal(t, true, route.RouteSummary["uses_real_roads"])
	require.Len(t, route.Points, 4)
	assert.Equal(t, router.INSTRUCTION_START_PROVIDER, route.Points[0].Instruction)
	assert.Equal(t, router.INSTRUCTION_CONTINUE_PROVIDER, route.Points[1].Instruction)
	assert.Equal(t, "turn right on West 36th Street", route.Points[2].Instruction)
	assert.Equal(t, router.INSTRUCTION_ARRIVE, route.Points[3].Instruction)
	assert.Equal(t, 0.0, *route.Points[1].Elevation)

	// high选择步骤最少的候选，它只有两个点，回退到下一阶段
	req := model.NewRouteRequest(nycStart, nycEnd)
	req.AccessibilityLevel = model.LEVEL_HIGH
	route, err = r.CalculateRoute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, router.STAGE_GRID_FALLBACK, route.RouteSummary["routing_engine"])
}

const directionsJSON = `{
  "code": "Ok",
  "routes": [
    {
      "distance": 950.5, "duration": 700,
      "geometry": {"type": "LineString", "coordinates": [[-73.9855,40.758],[-73.987,40.7561],[-73.9885,40.753],[-73.99,40.751]]},
      "legs": [{"steps": [
        {"name": "7th Avenue", "distance": 500, "duration": 360, "maneuver": {"type": "depart", "instruction": "Head south on 7th Avenue", "location": [-73.9855,40.758]}},
        {"name": "West 36th Street", "distance": 450, "duration": 340, "maneuver": {"type": "turn", "modifier": "right", "location": [-73.9885,40.753]}}
      ]}]
    },
    {
      "distance": 990, "duration": 650,
      "geometry": {"type": "LineString", "coordinates": [[-73.9855,40.758],[-73.99,40.751]]},
      "legs": [{"steps": []}]
    }
  ]
}`

const overpassJSON = `{
  "elements": [
    {"type": "node", "id": 1, "lat": 40.0000, "lon": -75.0000},
    {"type": "node", "id": 2, "lat": 40.0000, "lon": -74.9980},
    {"type": "node", "id": 3, "lat": 40.0000, "lon": -74.9960},
    {"type": "node", "id": 4, "lat": 40.0010, "lon": -74.9980},
    {"type": "way", "id": 10, "nodes": [1, 2, 3], "tags": {"highway": "footway", "surface": "concrete", "sidewalk": "both"}},
    {"type": "way", "id": 11, "nodes": [2, 4], "tags": {"highway": "residential"}}
  ]
}`

func TestRoadNetworkStage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, overpassJSON)
	}))
	defer srv.Close()

	cfg := router.DefaultConfig()
	cfg.OverpassURL = srv.URL
	cfg.Stages = []string{router.STAGE_ROAD_NETWORK, router.STAGE_GRID_FALLBACK}
	r, err := router.New(cfg, obstacle.NewStore(nil), router.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	req := model.NewRouteRequest(
		model.Coordinate{Latitude: 40.0001, Longitude: -75.0001},
		model.Coordinate{Latitude: 40.0001, Longitude: -74.9961},
	)
	route, err := r.CalculateRoute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, router.STAGE_ROAD_NETWORK, route.RouteSummary["routing_engine"])
	assert.Equal(t, router.ACCURACY_HIGH, route.RouteSummary["route_accuracy"])
	assert.Equal(t, true, route.RouteSummary["uses_real_roads"])
	assert.Equal(t, []string{"Footway"}, route.RouteSummary["road_types"])
	assert.Equal(t, []string{"Concrete"}, route.RouteSummary["surface_types"])
	require.Len(t, route.Points, 3)
	assert.Equal(t, router.INSTRUCTION_START_NETWORK, route.Points[0].Instruction)
	assert.Equal(t, router.INSTRUCTION_ARRIVE, route.Points[2].Instruction)
	// 节点2是三条边的交点
	assert.Contains(t, route.Points[1].AccessibilityFeatures, "Intersection with good visibility")
	assert.Contains(t, route.Points[1].AccessibilityFeatures, "Sidewalk available")
}

func TestRoadNetworkStageLatticeFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"elements":[]}`)
	}))
	defer srv.Close()

	cfg := router.DefaultConfig()
	cfg.OverpassURL = srv.URL
	cfg.Stages = []string{router.STAGE_ROAD_NETWORK, router.STAGE_GRID_FALLBACK}
	r, err := router.New(cfg, obstacle.NewStore(nil), router.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	route, err := r.CalculateRoute(context.Background(), model.NewRouteRequest(nycStart, nycEnd))
	require.NoError(t, err)
	assert.Equal(t, router.STAGE_ROAD_NETWORK, route.RouteSummary["routing_engine"])
	assert.Equal(t, router.ACCURACY_MEDIUM, route.RouteSummary["route_accuracy"])
	assert.Equal(t, false, route.RouteSummary["uses_real_roads"])
	assertAxisAligned(t, route.Path())
}

func TestGridNetworkStage(t *testing.T) {
	r := newRouter(t, nil, router.WithStages(router.NewGridNetworkStage(), router.NewGridFallbackStage()))
	route, err := r.CalculateRoute(context.Background(), model.NewRouteRequest(nycStart, nycEnd))
	require.NoError(t, err)
	assert.Equal(t, router.STAGE_GRID_NETWORK, route.RouteSummary["routing_engine"])
	assert.Equal(t, "Grid Network", route.RouteSummary["routing_provider"])
	assert.Greater(t, len(route.Points), 2)
	assertAxisAligned(t, route.Path())
	assert.Equal(t, router.INSTRUCTION_START_GRID, route.Points[0].Instruction)
}

func TestExportGeoJSON(t *testing.T) {
	r := newRouter(t, []model.Obstacle{stairs("obs_stairs", 40.7549, -73.9900)},
		router.WithStages(router.NewGridFallbackStage()))
	route, err := r.CalculateRoute(context.Background(), wheelchairRequest(nycStart, nycEnd))
	require.NoError(t, err)

	fc := router.ExportGeoJSON(route)
	require.Len(t, fc.Features, 3)
	require.Len(t, fc.BBox, 4)
	assert.InDelta(t, nycEnd.Longitude, fc.BBox[0], 1e-9)
	assert.InDelta(t, nycStart.Latitude, fc.BBox[3], 1e-9)
	assert.Equal(t, "LineString", fc.Features[0].Geometry.GeoJSONType())
	assert.Equal(t, route.ID, fc.Features[0].Properties["route_id"])
	assert.Equal(t, "Point", fc.Features[1].Geometry.GeoJSONType())
	assert.Equal(t, "obs_stairs", fc.Features[1].Properties["obstacle_id"])
	assert.Equal(t, "Polygon", fc.Features[2].Geometry.GeoJSONType())
	assert.Equal(t, "impact_zone", fc.Features[2].Properties["kind"])
	_, err = fc.MarshalJSON()
	assert.NoError(t, err)
}

func TestSameStartAndEnd(t *testing.T) {
	r := newRouter(t, nil, router.WithStages(router.NewGridNetworkStage(), router.NewGridFallbackStage()))
	route, err := r.CalculateRoute(context.Background(), model.NewRouteRequest(nycStart, nycStart))
	require.NoError(t, err)
	// 网格路径只有一个节点，退化后由兜底阶段给出单点路线
	assert.Equal(t, router.STAGE_GRID_FALLBACK, route.RouteSummary["routing_engine"])
	require.Len(t, route.Points, 1)
	assert.Equal(t, nycStart, route.Points[0].Coordinate)
	assert.Zero(t, route.TotalDistance)

	fc := router.ExportGeoJSON(route)
	assert.Equal(t, "Point", fc.Features[0].Geometry.GeoJSONType())
}
