package router

import (
	"context"
	"fmt"
	"sort"

	"git.fiblab.net/sim/accessroute/geo"
	"git.fiblab.net/sim/accessroute/model"
	"git.fiblab.net/sim/accessroute/router/algo"
	"git.fiblab.net/sim/accessroute/router/provider"
	"github.com/paulmach/orb"
	"github.com/samber/lo"
)

// networkPoints 路网路径转为路线点
func networkPoints(path NetworkPath, lattice bool, startText string) []model.RoutePoint {
	n := len(path)
	coords := lo.Map(path, func(it algo.PathItem[algo.NetworkNodeAttr, *algo.NetworkEdgeAttr], _ int) orb.Point {
		return it.Point
	})
	var texts []string
	if lattice {
		texts = gridInstructions(coords, startText)
	}
	points := make([]model.RoutePoint, n)
	for i, it := range path {
		e := FLAT_ELEVATION
		rp := model.RoutePoint{
			Coordinate:            model.NewCoordinate(it.Point),
			Elevation:             &e,
			AccessibilityFeatures: []string{},
		}
		// 到达该点所经过的边
		var in *algo.NetworkEdgeAttr
		if i > 0 {
			in = path[i-1].EdgeAttr
		}
		if lattice {
			rp.Instruction = texts[i]
			rp.AccessibilityFeatures = append(rp.AccessibilityFeatures, "Grid-aligned route", "Clear intersections")
		} else {
			switch {
			case i == 0:
				rp.Instruction = startText
			case i == n-1:
				rp.Instruction = INSTRUCTION_ARRIVE
			case i < n/3:
				rp.Instruction = "Continue on " + humanize(in.RoadType)
			case i < 2*n/3:
				rp.Instruction = "Continue toward destination"
			default:
				rp.Instruction = "Approaching destination"
			}
			if in != nil {
				if in.HasSidewalk {
					rp.AccessibilityFeatures = append(rp.AccessibilityFeatures, "Sidewalk available")
				}
				if in.HasCurbCuts {
					rp.AccessibilityFeatures = append(rp.AccessibilityFeatures, "Curb cuts available")
				}
				if in.AccessibilityScore > 0.8 {
					rp.AccessibilityFeatures = append(rp.AccessibilityFeatures, "High accessibility route")
				}
				if in.RoadType == "footway" || in.RoadType == "pedestrian" {
					rp.AccessibilityFeatures = append(rp.AccessibilityFeatures, "Pedestrian-only area")
				}
				if in.Width >= 5 {
					rp.AccessibilityFeatures = append(rp.AccessibilityFeatures, "Wide path")
				}
			}
		}
		if it.NodeAttr.IsIntersection {
			rp.AccessibilityFeatures = append(rp.AccessibilityFeatures, "Intersection with good visibility")
		}
		points[i] = rp
	}
	return points
}

// edgeTypes 路径经过的道路类型与路面类型（去重、排序）
func edgeTypes(path NetworkPath) (roads []string, surfaces []string) {
	for _, it := range path {
		if it.EdgeAttr == nil {
			continue
		}
		roads = append(roads, humanize(it.EdgeAttr.RoadType))
		surface := it.EdgeAttr.Surface
		if surface == "" {
			surface = "asphalt"
		}
		surfaces = append(surfaces, humanize(surface))
	}
	roads, surfaces = lo.Uniq(roads), lo.Uniq(surfaces)
	sort.Strings(roads)
	sort.Strings(surfaces)
	return
}

// routeNetwork 在路网上求路径并转为Path
func routeNetwork(ctx context.Context, network *Network, in *StageInput, startText string) (*Path, error) {
	req := in.Request
	path, cost, err := FindPath(ctx, network, req.Start.Point(), req.End.Point(), req.Preferences, in.Obstacles)
	if err != nil {
		return nil, err
	}
	if len(path) < 2 {
		return nil, fmt.Errorf("%w: start and end snap to the same node", ErrDegenerateResult)
	}
	log.Debugf("network path: %d nodes, cost %.1f", len(path), cost)
	roads, surfaces := edgeTypes(path)
	return &Path{
		Points:       networkPoints(path, network.Lattice, startText),
		RoadTypes:    roads,
		SurfaceTypes: surfaces,
	}, nil
}

type roadNetworkStage struct {
	client *provider.Overpass
}

// NewRoadNetworkStage 拉取真实路网求路径，拉取失败时改用备用网格
func NewRoadNetworkStage(client *provider.Overpass) Stage {
	return &roadNetworkStage{client: client}
}

func (s *roadNetworkStage) Name() string { return STAGE_ROAD_NETWORK }

func (s *roadNetworkStage) Route(ctx context.Context, in *StageInput) (*Path, error) {
	start, end := in.Request.Start.Point(), in.Request.End.Point()
	center := geo.Midpoint(start, end)
	bound := geo.BoundAround(center, NetworkRadius(start, end))
	var network *Network
	data, err := s.client.Fetch(ctx, bound)
	if err == nil {
		network, err = BuildRoadNetwork(data)
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Infof("road data unavailable (%v), using road lattice", err)
		network = BuildLattice(center, ROAD_LATTICE_HALF_SIZE, ROAD_LATTICE_SPACING, FETCHED_SNAP_RADIUS)
	}
	path, err := routeNetwork(ctx, network, in, INSTRUCTION_START_NETWORK)
	if err != nil {
		return nil, err
	}
	path.Provider = "Road Network"
	if network.Lattice {
		path.Accuracy = ACCURACY_MEDIUM
	} else {
		path.Accuracy = ACCURACY_HIGH
		path.UsesRealRoads = true
	}
	return path, nil
}

type gridNetworkStage struct{}

// NewGridNetworkStage 在按起终点跨度生成的网格上求路径
func NewGridNetworkStage() Stage {
	return gridNetworkStage{}
}

func (gridNetworkStage) Name() string { return STAGE_GRID_NETWORK }

func (gridNetworkStage) Route(ctx context.Context, in *StageInput) (*Path, error) {
	start, end := in.Request.Start.Point(), in.Request.End.Point()
	network := BuildLattice(geo.Midpoint(start, end), GridHalfSize(start, end), GRID_LATTICE_SPACING, GRID_SNAP_RADIUS)
	path, err := routeNetwork(ctx, network, in, INSTRUCTION_START_GRID)
	if err != nil {
		return nil, err
	}
	path.Provider = "Grid Network"
	path.Accuracy = ACCURACY_MEDIUM
	return path, nil
}

type gridFallbackStage struct{}

// NewGridFallbackStage 曼哈顿折线兜底，总是成功
func NewGridFallbackStage() Stage {
	return gridFallbackStage{}
}

func (gridFallbackStage) Name() string { return STAGE_GRID_FALLBACK }

func (gridFallbackStage) Route(_ context.Context, in *StageInput) (*Path, error) {
	req := in.Request
	coords := GridRoute(req.Start.Point(), req.End.Point(), req.AccessibilityLevel)
	texts := gridInstructions(coords, INSTRUCTION_START_GRID)
	points := make([]model.RoutePoint, len(coords))
	for i, p := range coords {
		e := FLAT_ELEVATION
		points[i] = model.RoutePoint{
			Coordinate:            model.NewCoordinate(p),
			Instruction:           texts[i],
			Elevation:             &e,
			AccessibilityFeatures: []string{"Grid-aligned route"},
		}
	}
	return &Path{
		Points:       points,
		Provider:     "Grid Fallback",
		Accuracy:     ACCURACY_LOW,
		RoadTypes:    []string{humanize(LATTICE_ROAD)},
		SurfaceTypes: []string{"Paved"},
	}, nil
}
