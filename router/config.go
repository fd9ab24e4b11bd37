package router

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

// 阶段名称，同时作为route_summary中的routing_engine
const (
	STAGE_MAPBOX        = "mapbox"
	STAGE_OSRM          = "osrm"
	STAGE_ROAD_NETWORK  = "road_network"
	STAGE_GRID_NETWORK  = "grid_network"
	STAGE_GRID_FALLBACK = "grid_fallback"
)

var DEFAULT_STAGES = []string{
	STAGE_MAPBOX, STAGE_OSRM, STAGE_ROAD_NETWORK, STAGE_GRID_NETWORK, STAGE_GRID_FALLBACK,
}

var configValidate = validator.New()

type Config struct {
	// Mapbox访问令牌，为空时跳过mapbox阶段
	MapboxToken string
	MapboxURL   string
	OSRMURL     string
	OverpassURL string

	// 按顺序尝试的阶段
	Stages []string `validate:"min=1,dive,oneof=mapbox osrm road_network grid_network grid_fallback"`

	// 各阶段超时，总和必须小于RequestTimeout
	MapboxTimeout       time.Duration `validate:"gt=0"`
	OSRMTimeout         time.Duration `validate:"gt=0"`
	RoadNetworkTimeout  time.Duration `validate:"gt=0"`
	GridNetworkTimeout  time.Duration `validate:"gt=0"`
	GridFallbackTimeout time.Duration `validate:"gt=0"`
	// 单个请求的外层时限
	RequestTimeout time.Duration `validate:"gt=0"`

	// 路线缓存容量与有效期
	CacheSize int           `validate:"min=0"`
	CacheTTL  time.Duration `validate:"gt=0"`

	// 沿线障碍物查询半径/m
	CorridorRadius float64 `validate:"gt=0"`
}

func DefaultConfig() Config {
	return Config{
		Stages:              append([]string(nil), DEFAULT_STAGES...),
		MapboxTimeout:       4 * time.Second,
		OSRMTimeout:         4 * time.Second,
		RoadNetworkTimeout:  6 * time.Second,
		GridNetworkTimeout:  2 * time.Second,
		GridFallbackTimeout: 1 * time.Second,
		RequestTimeout:      20 * time.Second,
		CacheSize:           1000,
		CacheTTL:            time.Hour,
		CorridorRadius:      200,
	}
}

// StageTimeout 阶段名对应的超时
func (c *Config) StageTimeout(name string) time.Duration {
	switch name {
	case STAGE_MAPBOX:
		return c.MapboxTimeout
	case STAGE_OSRM:
		return c.OSRMTimeout
	case STAGE_ROAD_NETWORK:
		return c.RoadNetworkTimeout
	case STAGE_GRID_NETWORK:
		return c.GridNetworkTimeout
	default:
		return c.GridFallbackTimeout
	}
}

func (c *Config) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		return fmt.Errorf("invalid router config: %w", err)
	}
	if dup := lo.FindDuplicates(c.Stages); len(dup) > 0 {
		return fmt.Errorf("invalid router config: duplicated stages %v", dup)
	}
	budget := lo.SumBy(c.Stages, func(name string) time.Duration { return c.StageTimeout(name) })
	if budget >= c.RequestTimeout {
		return fmt.Errorf("invalid router config: stage budgets %v exceed request timeout %v", budget, c.RequestTimeout)
	}
	if c.Stages[len(c.Stages)-1] != STAGE_GRID_FALLBACK {
		log.Warnf("last stage is %s, requests may fail when every stage fails", c.Stages[len(c.Stages)-1])
	}
	return nil
}
