package router

import "errors"

var (
	// 错误：请求参数不合法
	ErrInvalidRequest = errors.New("invalid route request")
	// 错误：端点附近snap半径内没有路网节点
	ErrSnapFailure = errors.New("no network node within snap radius")
	// 错误：路网中起终点不连通
	ErrNoPath = errors.New("no path found in network")
	// 错误：外部服务失败、超时或拒绝凭据
	ErrProviderUnavailable = errors.New("routing provider unavailable")
	// 错误：外部服务只返回了起终点两个点
	ErrDegenerateResult = errors.New("degenerate provider result")
	// 错误：路线id不存在或已过期
	ErrRouteNotFound = errors.New("route not found")
	// 错误：所有阶段均失败（兜底阶段被移除时才可能出现）
	ErrAllStagesFailed = errors.New("all routing stages failed")
)
