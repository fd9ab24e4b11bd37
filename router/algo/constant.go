package algo

import "errors"

const (
	// 搜索过程中检查context的间隔（出堆次数）
	CTX_CHECK_INTERVAL = 256

	// 障碍物惩罚的比例尺/m，惩罚系数（≤0.9）乘以此值后加到边权上
	OBSTACLE_PENALTY_SCALE = 1000.0
	// 单条边障碍物惩罚系数上限
	MAX_OBSTACLE_PENALTY = 0.9

	// 边无障碍评分基准值与上下限
	EDGE_BASE_SCORE = 0.8
	EDGE_MIN_SCORE  = 0.1
	EDGE_MAX_SCORE  = 1.0
	// 合成网格的统一边评分
	LATTICE_EDGE_SCORE = 0.9

	// 未知道路类型的默认宽度/m
	DEFAULT_WIDTH = 4.0
)

var (
	// 错误：开放集合耗尽仍未到达终点
	ErrNoPath = errors.New("no path between nodes")
	// 错误：节点编号越界
	ErrNodeNotExist = errors.New("node not exists")
)
