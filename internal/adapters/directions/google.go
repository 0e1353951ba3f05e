package directions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"commute-route-service/internal/domain"
	"commute-route-service/internal/platform/obs"
	"commute-route-service/internal/ports"
)

const (
	DefaultGoogleBaseURL = "https://maps.googleapis.com"
	GoogleAttribution    = "route provided by google maps api"
)

type GoogleOptions struct {
	APIKey            string
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Cache             ports.DirectionsCache
	Log               *zap.Logger
}

// GoogleDirectionsProvider implements DirectionsProvider using the Google
// Maps Directions API. It is safe for concurrent use.
type GoogleDirectionsProvider struct {
	client  *apiClient
	apiKey  string
	baseURL string
	cached  *cachedFetch
	log     *zap.Logger
}

func NewGoogleDirectionsProvider(opts GoogleOptions) (*GoogleDirectionsProvider, error) {
	if opts.APIKey == "" {
		return nil, errors.New("google api key is empty")
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultGoogleBaseURL
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}

	return &GoogleDirectionsProvider{
		client:  newAPIClient(opts.Timeout, opts.RequestsPerSecond, nil),
		apiKey:  opts.APIKey,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		cached:  &cachedFetch{provider: "google", cache: opts.Cache, log: opts.Log},
		log:     opts.Log,
	}, nil
}

type googleDirectionsResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Routes       []struct {
		OverviewPolyline struct {
			Points string `json:"points"`
		} `json:"overview_polyline"`
		Legs []struct {
			Distance struct {
				Value int `json:"value"`
			} `json:"distance"`
			Duration struct {
				Value int `json:"value"`
			} `json:"duration"`
		} `json:"legs"`
	} `json:"routes"`
}

func (g *GoogleDirectionsProvider) GetDirections(
	ctx context.Context,
	req domain.RouteRequest,
) (_ ports.DirectionsResult, err error) {
	defer obs.Time(ctx, g.log, "google.GetDirections")(&err)

	if err := validateRequest(req); err != nil {
		return ports.DirectionsResult{}, err
	}

	key := ports.NewDirectionsKey(req.Origin, req.Destination, req.Mode)
	return g.cached.get(ctx, key, func(ctx context.Context) (ports.DirectionsResult, error) {
		return g.fetch(ctx, key, req.DepartAt)
	})
}

func (g *GoogleDirectionsProvider) fetch(
	ctx context.Context,
	key ports.DirectionsKey,
	departAt time.Time,
) (ports.DirectionsResult, error) {
	endpoint := g.baseURL + "/maps/api/directions/json"

	q := url.Values{}
	q.Set("origin", key.Origin)
	q.Set("destination", key.Destination)
	q.Set("mode", string(key.Mode))
	q.Set("departure_time", departureTime(departAt))
	q.Set("key", g.apiKey)

	resp, err := g.client.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := g.client.newRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return ports.DirectionsResult{}, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	var decoded googleDirectionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return ports.DirectionsResult{}, fmt.Errorf("decode directions response: %w", err)
	}

	switch decoded.Status {
	case "OK":
	case "ZERO_RESULTS", "NOT_FOUND":
		return ports.DirectionsResult{}, fmt.Errorf("%q -> %q (%s): %w", key.Origin, key.Destination, decoded.Status, ports.ErrNoRoute)
	default:
		return ports.DirectionsResult{}, fmt.Errorf("directions status %s: %s", decoded.Status, decoded.ErrorMessage)
	}

	if len(decoded.Routes) == 0 {
		return ports.DirectionsResult{}, fmt.Errorf("%q -> %q: %w", key.Origin, key.Destination, ports.ErrNoRoute)
	}

	route := decoded.Routes[0]
	out := ports.DirectionsResult{
		Polyline:    route.OverviewPolyline.Points,
		Attribution: GoogleAttribution,
	}
	for _, leg := range route.Legs {
		out.DistanceMeters += leg.Distance.Value
		out.DurationSeconds += leg.Duration.Value
	}

	return out, nil
}

// departureTime renders t as unix seconds. Google rejects past departure
// times, so zero or past values become "now".
func departureTime(t time.Time) string {
	if t.IsZero() || t.Before(time.Now()) {
		return "now"
	}
	return strconv.FormatInt(t.Unix(), 10)
}

func validateRequest(req domain.RouteRequest) error {
	if ports.NormalizeAddress(req.Origin) == "" {
		return errors.New("origin must be non-empty")
	}
	if ports.NormalizeAddress(req.Destination) == "" {
		return errors.New("destination must be non-empty")
	}
	if !req.Mode.Valid() {
		return fmt.Errorf("invalid travel mode %q", req.Mode)
	}
	return nil
}
