// Package obstacle 障碍物存储与沿线查询
package obstacle

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"git.fiblab.net/sim/accessroute/geo"
	"git.fiblab.net/sim/accessroute/model"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/samber/lo"
)

const (
	// 沿线查询时直线走廊的采样段数（采样点数为其+1）
	CORRIDOR_SAMPLES = 10
	// 默认影响半径/m
	DEFAULT_IMPACT_RADIUS = 50.0
)

var ErrNotFound = errors.New("obstacle not found")

// Sink 障碍物的持久化目标，Store在内存修改成功后同步写入
type Sink interface {
	Insert(ctx context.Context, o model.Obstacle) error
	SetVerified(ctx context.Context, id string, verified bool) error
}

type Store struct {
	obstacles *xsync.MapOf[string, model.Obstacle]
	seq       atomic.Int64
	sink      Sink
	now       func() time.Time
}

type Option func(*Store)

func WithSink(sink Sink) Option {
	return func(s *Store) { s.sink = sink }
}

// WithClock 替换时间源（测试用）
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(obstacles []model.Obstacle, opts ...Option) *Store {
	s := &Store{
		obstacles: xsync.NewMapOf[string, model.Obstacle](),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, o := range obstacles {
		if o.ImpactRadius <= 0 {
			o.ImpactRadius = DEFAULT_IMPACT_RADIUS
		}
		s.obstacles.Store(o.ID, o)
	}
	s.seq.Store(int64(len(obstacles)))
	log.Infof("obstacle store initialized with %d obstacles", len(obstacles))
	return s
}

func (s *Store) Len() int {
	return s.obstacles.Size()
}

// FindAlongRoute 返回距起终点连线上任一采样点不超过radius米的有效障碍物
// 结果按严重程度（critical在前）、再按与起点距离升序排列
func (s *Store) FindAlongRoute(ctx context.Context, start, end model.Coordinate, radius float64) ([]model.Obstacle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	samples := geo.Interpolate(start.Point(), end.Point(), CORRIDOR_SAMPLES)
	now := s.now()
	found := make([]model.Obstacle, 0)
	s.obstacles.Range(func(_ string, o model.Obstacle) bool {
		if !o.Active(now) {
			return true
		}
		p := o.Location.Point()
		for _, sample := range samples {
			if geo.Distance(sample, p) <= radius {
				found = append(found, o)
				break
			}
		}
		return true
	})
	startP := start.Point()
	sort.SliceStable(found, func(i, j int) bool {
		ri, rj := found[i].Severity.Rank(), found[j].Severity.Rank()
		if ri != rj {
			return ri < rj
		}
		di := geo.Distance(startP, found[i].Location.Point())
		dj := geo.Distance(startP, found[j].Location.Point())
		if di != dj {
			return di < dj
		}
		return found[i].ID < found[j].ID
	})
	log.Debugf("found %d obstacles within %.0fm corridor", len(found), radius)
	return found, nil
}

// FindNear 返回距center不超过radius米的障碍物，按距离升序
func (s *Store) FindNear(center model.Coordinate, radius float64, activeOnly bool) []model.Obstacle {
	c := center.Point()
	near := lo.Filter(s.All(activeOnly), func(o model.Obstacle, _ int) bool {
		return geo.Distance(c, o.Location.Point()) <= radius
	})
	sort.SliceStable(near, func(i, j int) bool {
		return geo.Distance(c, near[i].Location.Point()) < geo.Distance(c, near[j].Location.Point())
	})
	return near
}

// All 全部障碍物，按id排序；activeOnly时跳过已过清除时间的障碍物
func (s *Store) All(activeOnly bool) []model.Obstacle {
	now := s.now()
	all := make([]model.Obstacle, 0, s.obstacles.Size())
	s.obstacles.Range(func(_ string, o model.Obstacle) bool {
		if !activeOnly || o.Active(now) {
			all = append(all, o)
		}
		return true
	})
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all
}

func (s *Store) Get(id string) (model.Obstacle, bool) {
	return s.obstacles.Load(id)
}

// Report 新增用户上报的障碍物，初始为未核实状态
func (s *Store) Report(ctx context.Context, report model.ObstacleReport) (model.Obstacle, error) {
	if err := report.Validate(); err != nil {
		return model.Obstacle{}, err
	}
	radius := report.ImpactRadius
	if radius <= 0 {
		radius = DEFAULT_IMPACT_RADIUS
	}
	o := model.Obstacle{
		Location:                report.Location,
		Type:                    report.Type,
		Severity:                report.Severity,
		Description:             report.Description,
		ReportedAt:              s.now(),
		Verified:                false,
		AffectsWheelchair:       report.AffectsWheelchair,
		AffectsVisuallyImpaired: report.AffectsVisuallyImpaired,
		AffectsMobilityAid:      report.AffectsMobilityAid,
		ImpactRadius:            radius,
	}
	for {
		o.ID = fmt.Sprintf("obs_%03d", s.seq.Add(1))
		if _, loaded := s.obstacles.LoadOrStore(o.ID, o); !loaded {
			break
		}
	}
	if s.sink != nil {
		if err := s.sink.Insert(ctx, o); err != nil {
			s.obstacles.Delete(o.ID)
			return model.Obstacle{}, fmt.Errorf("persist obstacle %s: %w", o.ID, err)
		}
	}
	log.Infof("obstacle %s reported: %s/%s", o.ID, o.Type, o.Severity)
	return o, nil
}

func (s *Store) SetVerified(ctx context.Context, id string, verified bool) error {
	if _, ok := s.obstacles.Load(id); !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if s.sink != nil {
		if err := s.sink.SetVerified(ctx, id, verified); err != nil {
			return fmt.Errorf("persist verification of %s: %w", id, err)
		}
	}
	s.obstacles.Compute(id, func(o model.Obstacle, loaded bool) (model.Obstacle, bool) {
		o.Verified = verified
		return o, !loaded
	})
	return nil
}

type Statistics struct {
	TotalObstacles       int                        `json:"total_obstacles"`
	VerifiedObstacles    int                        `json:"verified_obstacles"`
	VerificationRate     float64                    `json:"verification_rate"`
	SeverityDistribution map[model.Severity]int     `json:"severity_distribution"`
	TypeDistribution     map[model.ObstacleType]int `json:"type_distribution"`
}

func (s *Store) Statistics() Statistics {
	all := s.All(false)
	stats := Statistics{
		TotalObstacles:       len(all),
		SeverityDistribution: make(map[model.Severity]int),
		TypeDistribution:     make(map[model.ObstacleType]int),
	}
	for _, o := range all {
		if o.Verified {
			stats.VerifiedObstacles++
		}
		stats.SeverityDistribution[o.Severity]++
		stats.TypeDistribution[o.Type]++
	}
	if stats.TotalObstacles > 0 {
		stats.VerificationRate = float64(stats.VerifiedObstacles) / float64(stats.TotalObstacles)
	}
	return stats
}
