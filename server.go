package main

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"connectrpc.com/connect"
	"git.fiblab.net/sim/accessroute/model"
	"git.fiblab.net/sim/accessroute/obstacle"
	"git.fiblab.net/sim/accessroute/router"
	"go.mongodb.org/mongo-driver/mongo"
)

// 未指定半径时障碍物查询的默认半径/m
const DEFAULT_OBSTACLE_RADIUS = 200.0

type RoutingServer struct {
	router    *router.Router
	obstacles *obstacle.Store
	client    *mongo.Client

	// 接口开启true或关闭false
	ok bool
	// 条件变量
	cond *sync.Cond
}

func NewRoutingServer(
	mongoURI string,
	obstaclePath *Path,
	cfg router.Config,
) *RoutingServer {
	store, client, err := loadObstacles(context.Background(), mongoURI, obstaclePath)
	if err != nil {
		log.Panicf("failed to load obstacles from %s: %v", obstaclePath, err)
	}
	r, err := router.New(cfg, store)
	if err != nil {
		log.Panicf("failed to init router: %v", err)
	}
	return newRoutingServer(r, store, client)
}

func newRoutingServer(r *router.Router, store *obstacle.Store, client *mongo.Client) *RoutingServer {
	return &RoutingServer{
		router:    r,
		obstacles: store,
		client:    client,
		ok:        true, cond: sync.NewCond(&sync.Mutex{})}
}

// wait 暂停-恢复机制
func (s *RoutingServer) wait() {
	s.cond.L.Lock()
	for !s.ok {
		// 暂停中
		s.cond.Wait()
	}
	s.cond.L.Unlock()
}

// toConnectError 内部错误到connect错误码的映射
func toConnectError(err error) error {
	switch {
	case errors.Is(err, router.ErrInvalidRequest):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, router.ErrRouteNotFound), errors.Is(err, obstacle.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

func (s *RoutingServer) CalculateRoute(
	ctx context.Context,
	req *connect.Request[model.RouteRequest],
) (*connect.Response[model.Route], error) {
	s.wait()
	in := req.Msg
	log.Debugf("calculate route from %v to %v (%s, %s)", in.Start, in.End, in.AccessibilityLevel, in.Preferences.MobilityAid)
	route, err := s.router.CalculateRoute(ctx, *in)
	if err != nil {
		log.Warnf("calculate route failed: %v", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(route), nil
}

func (s *RoutingServer) GetRoute(
	ctx context.Context,
	req *connect.Request[GetRouteRequest],
) (*connect.Response[model.Route], error) {
	s.wait()
	route, err := s.router.GetRoute(req.Msg.RouteID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(route), nil
}

func (s *RoutingServer) GetAccessibilityReport(
	ctx context.Context,
	req *connect.Request[GetAccessibilityReportRequest],
) (*connect.Response[model.AccessibilityReport], error) {
	s.wait()
	prefs := model.DefaultPreferences()
	if req.Msg.Preferences != nil {
		prefs = *req.Msg.Preferences
	}
	report, err := s.router.Report(req.Msg.RouteID, prefs)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&report), nil
}

func (s *RoutingServer) ExportRoute(
	ctx context.Context,
	req *connect.Request[GetRouteRequest],
) (*connect.Response[ExportRouteResponse], error) {
	s.wait()
	route, err := s.router.GetRoute(req.Msg.RouteID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&ExportRouteResponse{
		RouteID: route.ID,
		GeoJSON: router.ExportGeoJSON(route),
	}), nil
}

func (s *RoutingServer) FindObstacles(
	ctx context.Context,
	req *connect.Request[FindObstaclesRequest],
) (*connect.Response[FindObstaclesResponse], error) {
	s.wait()
	in := req.Msg
	radius := in.Radius
	if radius <= 0 {
		radius = DEFAULT_OBSTACLE_RADIUS
	}
	var obs []model.Obstacle
	switch {
	case in.Start != nil && in.End != nil:
		found, err := s.obstacles.FindAlongRoute(ctx, *in.Start, *in.End, radius)
		if err != nil {
			return nil, toConnectError(err)
		}
		obs = found
	case in.Start != nil || in.End != nil:
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("start and end must be given together"))
	case in.Center != nil:
		obs = s.obstacles.FindNear(*in.Center, radius, in.ActiveOnly)
	default:
		obs = s.obstacles.All(in.ActiveOnly)
	}
	return connect.NewResponse(&FindObstaclesResponse{Obstacles: obs}), nil
}

func (s *RoutingServer) GetObstacle(
	ctx context.Context,
	req *connect.Request[GetObstacleRequest],
) (*connect.Response[model.Obstacle], error) {
	s.wait()
	o, ok := s.obstacles.Get(req.Msg.ObstacleID)
	if !ok {
		return nil, toConnectError(fmt.Errorf("%w: %s", obstacle.ErrNotFound, req.Msg.ObstacleID))
	}
	return connect.NewResponse(&o), nil
}

func (s *RoutingServer) ReportObstacle(
	ctx context.Context,
	req *connect.Request[model.ObstacleReport],
) (*connect.Response[model.Obstacle], error) {
	s.wait()
	if err := req.Msg.Validate(); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	o, err := s.obstacles.Report(ctx, *req.Msg)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&o), nil
}

func (s *RoutingServer) VerifyObstacle(
	ctx context.Context,
	req *connect.Request[VerifyObstacleRequest],
) (*connect.Response[VerifyObstacleResponse], error) {
	s.wait()
	in := req.Msg
	if err := s.obstacles.SetVerified(ctx, in.ObstacleID, in.Verified); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&VerifyObstacleResponse{ObstacleID: in.ObstacleID, Verified: in.Verified}), nil
}

func (s *RoutingServer) ObstacleStats(
	ctx context.Context,
	req *connect.Request[ObstacleStatsRequest],
) (*connect.Response[obstacle.Statistics], error) {
	s.wait()
	stats := s.obstacles.Statistics()
	return connect.NewResponse(&stats), nil
}

// 暂停导航服务
func (s *RoutingServer) Suspend() {
	s.cond.L.Lock()
	defer s.cond.L.Unlock()
	s.ok = false
}

// 恢复导航服务
func (s *RoutingServer) Resume() {
	s.cond.L.Lock()
	defer s.cond.L.Unlock()
	s.ok = true
	s.cond.Broadcast()
}

// 关闭导航服务
func (s *RoutingServer) Close() {
	s.router.Close()
	if s.client != nil {
		if err := s.client.Disconnect(context.Background()); err != nil {
			log.Warnf("failed to disconnect mongo: %v", err)
		}
	}
}
