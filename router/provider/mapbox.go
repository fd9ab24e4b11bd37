package provider

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/paulmach/orb"
)

const (
	DEFAULT_MAPBOX_URL = "https://api.mapbox.com/directions/v5/mapbox"
	MAPBOX_PROFILE     = "walking"
)

// Mapbox Mapbox Directions API客户端，token为空时视为未配置
type Mapbox struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewMapbox(baseURL, token string, client *http.Client) *Mapbox {
	if baseURL == "" {
		baseURL = DEFAULT_MAPBOX_URL
	}
	if client == nil {
		client = DefaultHTTPClient()
	}
	return &Mapbox{baseURL: strings.TrimRight(baseURL, "/"), token: token, client: client}
}

func (m *Mapbox) Configured() bool {
	return m.token != ""
}

// Route 请求步行路线，返回全部候选（alternatives=true）
func (m *Mapbox) Route(ctx context.Context, start, end orb.Point) ([]Candidate, error) {
	q := url.Values{}
	q.Set("access_token", m.token)
	q.Set("geometries", "geojson")
	q.Set("steps", "true")
	q.Set("overview", "full")
	q.Set("alternatives", "true")
	q.Set("annotations", "distance,duration")
	u := m.baseURL + "/" + MAPBOX_PROFILE + "/" + coordinatePath(start, end) + "?" + q.Encode()
	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	var resp directionsResponse
	if err := doJSON(ctx, m.client, "mapbox", req, &resp); err != nil {
		return nil, err
	}
	cs, err := resp.candidates("mapbox")
	if err != nil {
		return nil, err
	}
	log.Debugf("mapbox returned %d candidates", len(cs))
	return cs, nil
}
