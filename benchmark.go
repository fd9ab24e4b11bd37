package main

import (
	"context"
	"flag"
	"runtime"
	"sync/atomic"
	"time"

	"math/rand"

	"connectrpc.com/connect"
	"git.fiblab.net/sim/accessroute/model"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var (
	benchmarkCount     = flag.Int("benchmark.count", 1000, "the random routing count for benchmark")
	benchmarkCenterLat = flag.Float64("benchmark.center_lat", 40.7549, "the latitude of the benchmark area center")
	benchmarkCenterLon = flag.Float64("benchmark.center_lon", -73.9840, "the longitude of the benchmark area center")
	benchmarkSpan      = flag.Float64("benchmark.span", 0.02, "the half span (degree) of the benchmark area")
	benchmarkSeed      = flag.Int64("benchmark.seed", 0, "the seed for benchmark")
	benchmarkCPU       = flag.Int("benchmark.cpu", 1, "the cpu count for benchmark")
)

var (
	benchmarkLevels = []model.AccessibilityLevel{model.LEVEL_LOW, model.LEVEL_MEDIUM, model.LEVEL_HIGH}
	benchmarkAids   = []model.MobilityAid{model.AID_NONE, model.AID_WHEELCHAIR, model.AID_WALKER, model.AID_CANE}
)

func runBenchmark(server *RoutingServer) {
	log.Logger.SetLevel(logrus.WarnLevel)
	// 设置随机种子
	e := rand.New(rand.NewSource(*benchmarkSeed))
	randomCoordinate := func() model.Coordinate {
		return model.Coordinate{
			Latitude:  *benchmarkCenterLat + (e.Float64()*2-1)*(*benchmarkSpan),
			Longitude: *benchmarkCenterLon + (e.Float64()*2-1)*(*benchmarkSpan),
		}
	}
	// 随机生成benchmarkCount个路径规划请求，每个请求的起点和终点都是随机的
	reqs := make([]*connect.Request[model.RouteRequest], *benchmarkCount)
	for i := 0; i < *benchmarkCount; i++ {
		in := model.NewRouteRequest(randomCoordinate(), randomCoordinate())
		in.AccessibilityLevel = benchmarkLevels[e.Intn(len(benchmarkLevels))]
		in.Preferences.MobilityAid = benchmarkAids[e.Intn(len(benchmarkAids))]
		reqs[i] = connect.NewRequest(&in)
	}

	// 开始benchmark
	start := time.Now()
	var success atomic.Int32
	runtime.GOMAXPROCS(*benchmarkCPU)
	g := new(errgroup.Group)
	g.SetLimit(*benchmarkCPU)
	for _, req := range reqs {
		req := req
		g.Go(func() error {
			res, err := server.CalculateRoute(context.Background(), req)
			if err != nil {
				log.Error("benchmark failed, err:", err)
				return nil
			}
			if len(res.Msg.Points) > 0 {
				success.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()
	timeCost := time.Since(start) * time.Duration(*benchmarkCPU)
	log.Error(
		"benchmark finished", "\n",
		"count:", *benchmarkCount, "\n",
		"time:", timeCost, "\n",
		"avg:", timeCost/time.Duration(max(*benchmarkCount, 1)), "\n",
		"success:", success.Load(), "\n",
	)
}
