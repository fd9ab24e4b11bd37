package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
)

const DEFAULT_OVERPASS_URL = "https://overpass-api.de/api/interpreter"

// 步行可用的道路类型
var WalkableHighways = []string{
	"primary", "secondary", "tertiary", "residential", "footway", "cycleway",
	"path", "pedestrian", "living_street", "unclassified", "service",
}

// Overpass Overpass API客户端，拉取范围内的道路way与node
type Overpass struct {
	baseURL string
	client  *http.Client
}

func NewOverpass(baseURL string, client *http.Client) *Overpass {
	if baseURL == "" {
		baseURL = DEFAULT_OVERPASS_URL
	}
	if client == nil {
		client = DefaultHTTPClient()
	}
	return &Overpass{baseURL: baseURL, client: client}
}

// Query 构造bound范围内的道路查询语句
func Query(bound orb.Bound) string {
	bbox := fmt.Sprintf("(%f,%f,%f,%f)", bound.Min.Lat(), bound.Min.Lon(), bound.Max.Lat(), bound.Max.Lon())
	var b strings.Builder
	b.WriteString("[out:json][timeout:25];\n(\n")
	fmt.Fprintf(&b, "  way[\"highway\"~\"^(%s)$\"]%s;\n", strings.Join(WalkableHighways, "|"), bbox)
	fmt.Fprintf(&b, "  way[\"footway\"]%s;\n", bbox)
	fmt.Fprintf(&b, "  way[\"cycleway\"]%s;\n", bbox)
	b.WriteString(");\n(._;>;);\nout body;\n")
	return b.String()
}

// Fetch 拉取bound范围内的路网，结果为空时返回ErrNoRoute
func (o *Overpass) Fetch(ctx context.Context, bound orb.Bound) (*osm.OSM, error) {
	req, err := http.NewRequest(http.MethodPost, o.baseURL, strings.NewReader(Query(bound)))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "text/plain")
	data := &osm.OSM{}
	if err := doJSON(ctx, o.client, "overpass", req, data); err != nil {
		return nil, err
	}
	if len(data.Ways) == 0 || len(data.Nodes) == 0 {
		return nil, fmt.Errorf("overpass: empty road data: %w", ErrNoRoute)
	}
	log.Debugf("overpass returned %d nodes and %d ways", len(data.Nodes), len(data.Ways))
	return data, nil
}
