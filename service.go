package main

import (
	"net/http"

	"connectrpc.com/connect"
)

const RoutingServiceName = "accessroute.v1.RoutingService"

const (
	RoutingServiceCalculateRouteProcedure         = "/" + RoutingServiceName + "/CalculateRoute"
	RoutingServiceGetRouteProcedure               = "/" + RoutingServiceName + "/GetRoute"
	RoutingServiceGetAccessibilityReportProcedure = "/" + RoutingServiceName + "/GetAccessibilityReport"
	RoutingServiceExportRouteProcedure            = "/" + RoutingServiceName + "/ExportRoute"
	RoutingServiceFindObstaclesProcedure          = "/" + RoutingServiceName + "/FindObstacles"
	RoutingServiceGetObstacleProcedure            = "/" + RoutingServiceName + "/GetObstacle"
	RoutingServiceReportObstacleProcedure         = "/" + RoutingServiceName + "/ReportObstacle"
	RoutingServiceVerifyObstacleProcedure         = "/" + RoutingServiceName + "/VerifyObstacle"
	RoutingServiceObstacleStatsProcedure          = "/" + RoutingServiceName + "/ObstacleStats"
)

// NewRoutingServiceHandler 注册全部一元接口，返回挂载路径与处理器
func NewRoutingServiceHandler(s *RoutingServer, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)
	mux := http.NewServeMux()
	mux.Handle(RoutingServiceCalculateRouteProcedure,
		connect.NewUnaryHandler(RoutingServiceCalculateRouteProcedure, s.CalculateRoute, opts...))
	mux.Handle(RoutingServiceGetRouteProcedure,
		connect.NewUnaryHandler(RoutingServiceGetRouteProcedure, s.GetRoute, opts...))
	mux.Handle(RoutingServiceGetAccessibilityReportProcedure,
		connect.NewUnaryHandler(RoutingServiceGetAccessibilityReportProcedure, s.GetAccessibilityReport, opts...))
	mux.Handle(RoutingServiceExportRouteProcedure,
		connect.NewUnaryHandler(RoutingServiceExportRouteProcedure, s.ExportRoute, opts...))
	mux.Handle(RoutingServiceFindObstaclesProcedure,
		connect.NewUnaryHandler(RoutingServiceFindObstaclesProcedure, s.FindObstacles, opts...))
	mux.Handle(RoutingServiceGetObstacleProcedure,
		connect.NewUnaryHandler(RoutingServiceGetObstacleProcedure, s.GetObstacle, opts...))
	mux.Handle(RoutingServiceReportObstacleProcedure,
		connect.NewUnaryHandler(RoutingServiceReportObstacleProcedure, s.ReportObstacle, opts...))
	mux.Handle(RoutingServiceVerifyObstacleProcedure,
		connect.NewUnaryHandler(RoutingServiceVerifyObstacleProcedure, s.VerifyObstacle, opts...))
	mux.Handle(RoutingServiceObstacleStatsProcedure,
		connect.NewUnaryHandler(RoutingServiceObstacleStatsProcedure, s.ObstacleStats, opts...))
	return "/" + RoutingServiceName + "/", mux
}
