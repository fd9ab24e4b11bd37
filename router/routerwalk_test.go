package router_test

import (
	"context"
	"testing"

	"git.fiblab.net/sim/accessroute/model"
	"git.fiblab.net/sim/accessroute/router"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEdgeObstaclePenalty(t *testing.T) {
	a := orb.Point{116.3, 39.9}
	b := orb.Point{116.301, 39.9}
	o := stairs("o", 39.9, 116.3)
	o.ImpactRadius = 10

	prefs := model.DefaultPreferences()
	// critical 0.8，未匹配辅助器具
	assert.InDelta(t, 0.8, router.EdgeObstaclePenalty(a, b, prefs, []model.Obstacle{o}), 1e-9)

	prefs.MobilityAid = model.AID_WHEELCHAIR
	assert.InDelta(t, 0.9, router.EdgeObstaclePenalty(a, b, prefs, []model.Obstacle{o}), 1e-9)

	low := o
	low.Severity = model.SEVERITY_MEDIUM
	prefs.MobilityAid = model.AID_WALKER
	assert.InDelta(t, 0.52, router.EdgeObstaclePenalty(a, b, prefs, []model.Obstacle{low}), 1e-9)

	visual := o
	visual.Severity = model.SEVERITY_HIGH
	visual.AffectsVisuallyImpaired = true
	prefs.MobilityAid = model.AID_GUIDE_DOG
	assert.InDelta(t, 0.84, router.EdgeObstaclePenalty(a, b, prefs, []model.Obstacle{visual}), 1e-9)

	far := o
	far.Location = model.Coordinate{Latitude: 39.91, Longitude: 116.3}
	assert.Zero(t, router.EdgeObstaclePenalty(a, b, prefs, []model.Obstacle{far}))
}

func TestFindPathAvoidsObstacle(t *testing.T) {
	center := orb.Point{116.3, 39.9}
	network := router.BuildLattice(center, 1, 0.001, 1000)
	require.Equal(t, 9, network.Graph.NodeCount())

	start := orb.Point{center.Lon() - 0.001, center.Lat() - 0.001}
	// (row -1, col 0)
	blocked := stairs("blocked", center.Lat()-0.001, center.Lon())
	blocked.ImpactRadius = 30
	prefs := model.DefaultPreferences()
	prefs.MobilityAid = model.AID_WHEELCHAIR

	path, cost, err := router.FindPath(context.Background(), network, start, center, prefs, []model.Obstacle{blocked})
	require.NoError(t, err)
	require.Len(t, path, 3)
	assert.Equal(t, 0, path[1].NodeAttr.Row)
	assert.Equal(t, -1, path[1].NodeAttr.Col)
	assert.Less(t, cost, 1000.0)
	assert.Nil(t, path[2].EdgeAttr)

	// 障碍物移到另一侧，路径随之改变
	blocked.Location = model.Coordinate{Latitude: center.Lat(), Longitude: center.Lon() - 0.001}
	path, _, err = router.FindPath(context.Background(), network, start, center, prefs, []model.Obstacle{blocked})
	require.NoError(t, err)
	require.Len(t, path, 3)
	assert.Equal(t, -1, path[1].NodeAttr.Row)
	assert.Equal(t, 0, path[1].NodeAttr.Col)
}

func TestFindPathSnapFailure(t *testing.T) {
	center := orb.Point{116.3, 39.9}
	network := router.BuildLattice(center, 1, 0.001, 100)
	far := orb.Point{116.4, 39.9}
	_, _, err := router.FindPath(context.Background(), network, far, center, model.DefaultPreferences(), nil)
	assert.ErrorIs(t, err, router.ErrSnapFailure)
	_, _, err = router.FindPath(context.Background(), network, center, far, model.DefaultPreferences(), nil)
	assert.ErrorIs(t, err, router.ErrSnapFailure)
}

func TestFindPathCancelled(t *testing.T) {
	center := orb.Point{116.3, 39.9}
	network := router.BuildLattice(center, 20, 0.001, 1000)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := orb.Point{center.Lon() - 0.02, center.Lat() - 0.02}
	end := orb.Point{center.Lon() + 0.02, center.Lat() + 0.02}
	_, _, err := router.FindPath(ctx, network, start, end, model.DefaultPreferences(), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuildLattice(t *testing.T) {
	network := router.BuildLattice(orb.Point{0, 0}, 2, 0.002, 500)
	assert.True(t, network.Lattice)
	assert.Equal(t, 25, network.Graph.NodeCount())
	// 5x5网格：2*5*4条无向边
	assert.Equal(t, 80, network.Graph.EdgeCount())
	id, d := network.Graph.Nearest(orb.Point{0.0001, 0.0001})
	require.GreaterOrEqual(t, id, 0)
	assert.Less(t, d, 20.0)
	_, attr := network.Graph.Node(id)
	assert.True(t, attr.IsIntersection)
	assert.Equal(t, 0, attr.Row)
	assert.Equal(t, 0, attr.Col)
}
