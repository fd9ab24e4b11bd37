// Package router 无障碍步行路径规划：按阶段依次尝试外部服务、真实路网、合成网格与曼哈顿兜底
package router

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"git.fiblab.net/sim/accessroute/geo"
	"git.fiblab.net/sim/accessroute/model"
	"git.fiblab.net/sim/accessroute/router/accessibility"
	"git.fiblab.net/sim/accessroute/router/provider"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/sync/singleflight"
)

// 搜索惩罚所用障碍物的查询半径在半程距离之外的余量/m
const NEAR_OBSTACLE_MARGIN = 500.0

// ObstacleFinder 障碍物查询
type ObstacleFinder interface {
	// FindAlongRoute 起终点连线走廊内的有效障碍物，用于评分与提示
	FindAlongRoute(ctx context.Context, start, end model.Coordinate, radius float64) ([]model.Obstacle, error)
	// FindNear 圆形范围内的障碍物，用于路网搜索惩罚
	FindNear(center model.Coordinate, radius float64, activeOnly bool) []model.Obstacle
}

type Router struct {
	cfg       Config
	stages    []Stage
	obstacles ObstacleFinder
	cache     *RouteCache
	// 相同指纹的并发请求只计算一次
	group singleflight.Group

	client *http.Client
	now    func() time.Time
}

type Option func(*Router)

// WithStages 替换默认阶段链（测试用）
func WithStages(stages ...Stage) Option {
	return func(r *Router) { r.stages = stages }
}

// WithCache 注入路线缓存
func WithCache(cache *RouteCache) Option {
	return func(r *Router) { r.cache = cache }
}

// WithHTTPClient 外部服务使用的HTTP客户端
func WithHTTPClient(client *http.Client) Option {
	return func(r *Router) { r.client = client }
}

// WithClock 替换时间源（测试用）
func WithClock(now func() time.Time) Option {
	return func(r *Router) { r.now = now }
}

func New(cfg Config, obstacles ObstacleFinder, opts ...Option) (*Router, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := &Router{cfg: cfg, obstacles: obstacles, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	if r.client == nil {
		r.client = provider.DefaultHTTPClient()
	}
	if r.stages == nil {
		r.stages = buildStages(&cfg, r.client)
	}
	if r.cache == nil {
		r.cache = NewRouteCache(cfg.CacheSize, cfg.CacheTTL, WithCacheClock(r.now))
	}
	names := make([]string, len(r.stages))
	for i, s := range r.stages {
		names[i] = s.Name()
	}
	log.Infof("router initialized with stages %v", names)
	return r, nil
}

func buildStages(cfg *Config, client *http.Client) []Stage {
	stages := make([]Stage, 0, len(cfg.Stages))
	for _, name := range cfg.Stages {
		switch name {
		case STAGE_MAPBOX:
			mb := provider.NewMapbox(cfg.MapboxURL, cfg.MapboxToken, client)
			if !mb.Configured() {
				log.Info("mapbox token not configured, mapbox stage disabled")
				continue
			}
			stages = append(stages, NewMapboxStage(mb))
		case STAGE_OSRM:
			stages = append(stages, NewOSRMStage(provider.NewOSRM(cfg.OSRMURL, client)))
		case STAGE_ROAD_NETWORK:
			stages = append(stages, NewRoadNetworkStage(provider.NewOverpass(cfg.OverpassURL, client)))
		case STAGE_GRID_NETWORK:
			stages = append(stages, NewGridNetworkStage())
		case STAGE_GRID_FALLBACK:
			stages = append(stages, NewGridFallbackStage())
		}
	}
	return stages
}

// Stages 生效的阶段名称
func (r *Router) Stages() []string {
	names := make([]string, len(r.stages))
	for i, s := range r.stages {
		names[i] = s.Name()
	}
	return names
}

// CalculateRoute 计算无障碍路线，命中缓存时返回带新id的副本
func (r *Router) CalculateRoute(ctx context.Context, req model.RouteRequest) (*model.Route, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	started := r.now()
	ctx, cancel := context.WithTimeout(ctx, r.cfg.RequestTimeout)
	defer cancel()

	key := req.CacheKey()
	if cached, ok := r.cache.Get(key); ok {
		log.Debugf("route cache hit: %s", key)
		return r.issue(cached, started), nil
	}
	// 共享计算脱离单个调用方的取消，各调用方只等待自己的ctx
	ch := r.group.DoChan(key, func() (any, error) {
		detached, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.cfg.RequestTimeout)
		defer cancel()
		route, err := r.calculate(detached, &req)
		if err != nil {
			return nil, err
		}
		r.cache.Put(key, route)
		return route, nil
	})
	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}
	if res.Shared {
		log.Debugf("route shared with concurrent request: %s", key)
	}
	return r.issue(res.Val.(*model.Route), started), nil
}

// issue 分配id与时间戳后下发副本，缓存中的路线保持不变
func (r *Router) issue(route *model.Route, started time.Time) *model.Route {
	out := route.Clone()
	out.ID = gonanoid.Must()
	now := r.now()
	out.CreatedAt = now.UTC()
	out.CalculationTimeMs = now.Sub(started).Milliseconds()
	r.cache.Remember(out)
	return out
}

func (r *Router) calculate(ctx context.Context, req *model.RouteRequest) (*model.Route, error) {
	obstacles, err := r.obstacles.FindAlongRoute(ctx, req.Start, req.End, r.cfg.CorridorRadius)
	if err != nil {
		return nil, err
	}
	start, end := req.Start.Point(), req.End.Point()
	mid := model.NewCoordinate(geo.Midpoint(start, end))
	in := &StageInput{
		Request:   req,
		Obstacles: r.obstacles.FindNear(mid, geo.Distance(start, end)/2+NEAR_OBSTACLE_MARGIN, true),
	}
	log.Debugf("%d obstacles along route, %d near for search", len(obstacles), len(in.Obstacles))

	errs := make([]error, 0, len(r.stages))
	for _, s := range r.stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path, err := r.runStage(ctx, s, in)
		if err != nil {
			log.Warnf("stage %s failed: %v, advancing to next stage", s.Name(), err)
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
			continue
		}
		path.Engine = s.Name()
		log.Infof("route calculated by %s stage with %d points, %.0f m", s.Name(), len(path.Points), geo.PathLength(path.Coordinates()))
		return assembleRoute(req, path, obstacles), nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("%w: %w", ErrAllStagesFailed, errors.Join(errs...))
}

func (r *Router) runStage(ctx context.Context, s Stage, in *StageInput) (*Path, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.StageTimeout(s.Name()))
	defer cancel()
	path, err := s.Route(ctx, in)
	if err != nil {
		return nil, err
	}
	if path == nil || len(path.Points) == 0 {
		return nil, fmt.Errorf("%w: empty path", ErrDegenerateResult)
	}
	return path, nil
}

// GetRoute 按id查询已下发的路线
func (r *Router) GetRoute(id string) (*model.Route, error) {
	route, ok := r.cache.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRouteNotFound, id)
	}
	return route.Clone(), nil
}

// Report 已下发路线的无障碍评估报告
func (r *Router) Report(id string, prefs model.AccessibilityPreferences) (model.AccessibilityReport, error) {
	route, ok := r.cache.Lookup(id)
	if !ok {
		return model.AccessibilityReport{}, fmt.Errorf("%w: %s", ErrRouteNotFound, id)
	}
	return accessibility.Report(route.AccessibilityScore, prefs), nil
}

// Close
func (r *Router) Close() {
	r.client.CloseIdleConnections()
}
