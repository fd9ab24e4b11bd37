package provider

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/paulmach/orb"
)

const DEFAULT_OSRM_URL = "https://router.project-osrm.org/route/v1/foot"

// OSRM 公共OSRM服务客户端，无需凭据
type OSRM struct {
	baseURL string
	client  *http.Client
}

func NewOSRM(baseURL string, client *http.Client) *OSRM {
	if baseURL == "" {
		baseURL = DEFAULT_OSRM_URL
	}
	if client == nil {
		client = DefaultHTTPClient()
	}
	return &OSRM{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

// Route 返回最优的一条路线
func (o *OSRM) Route(ctx context.Context, start, end orb.Point) (Candidate, error) {
	q := url.Values{}
	q.Set("geometries", "geojson")
	q.Set("overview", "full")
	q.Set("steps", "true")
	q.Set("alternatives", "false")
	u := o.baseURL + "/" + coordinatePath(start, end) + "?" + q.Encode()
	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return Candidate{}, err
	}
	var resp directionsResponse
	if err := doJSON(ctx, o.client, "osrm", req, &resp); err != nil {
		return Candidate{}, err
	}
	cs, err := resp.candidates("osrm")
	if err != nil {
		return Candidate{}, err
	}
	return cs[0], nil
}
