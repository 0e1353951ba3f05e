package directions

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"commute-route-service/internal/domain"
	"commute-route-service/internal/platform/obs"
	"commute-route-service/internal/ports"
)

const (
	DefaultORSBaseURL = "https://api.openrouteservice.org"
	ORSAttribution    = "route provided by openrouteservice"
)

var orsProfiles = map[domain.TravelMode]string{
	domain.ModeDriving:   "driving-car",
	domain.ModeWalking:   "foot-walking",
	domain.ModeBicycling: "cycling-regular",
}

type ORSOptions struct {
	APIKey            string
	BaseURL           string
	Country           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Cache             ports.DirectionsCache
	GeocodeCache      ports.GeocodeCache
	Log               *zap.Logger
}

// ORSDirectionsProvider implements DirectionsProvider using OpenRouteService.
//
// It coordinates:
//   - Address normalization
//   - Geocode caching
//   - Directions caching
//   - External API calls with retry/backoff
//
// The provider is safe for concurrent use.
type ORSDirectionsProvider struct {
	client       *apiClient
	baseURL      string
	country      string
	geocodeCache ports.GeocodeCache
	cached       *cachedFetch
	log          *zap.Logger
}

func NewORSDirectionsProvider(opts ORSOptions) (*ORSDirectionsProvider, error) {
	if opts.APIKey == "" {
		return nil, errors.New("ORS api key is empty")
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultORSBaseURL
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}

	apiKey := opts.APIKey
	return &ORSDirectionsProvider{
		client: newAPIClient(opts.Timeout, opts.RequestsPerSecond, func(req *http.Request) {
			req.Header.Set("Authorization", apiKey)
		}),
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		country:      opts.Country,
		geocodeCache: opts.GeocodeCache,
		cached:       &cachedFetch{provider: "ors", cache: opts.Cache, log: opts.Log},
		log:          opts.Log,
	}, nil
}

type orsDirectionsRequest struct {
	Coordinates [][]float64 `json:"coordinates"`
}

type orsDirectionsResponse struct {
	Routes []struct {
		Summary struct {
			Distance float64 `json:"distance"`
			Duration float64 `json:"duration"`
		} `json:"summary"`
		Geometry string `json:"geometry"`
	} `json:"routes"`
	Metadata struct {
		Attribution string `json:"attribution"`
	} `json:"metadata"`
}

func (o *ORSDirectionsProvider) GetDirections(
	ctx context.Context,
	req domain.RouteRequest,
) (_ ports.DirectionsResult, err error) {
	defer obs.Time(ctx, o.log, "ors.GetDirections")(&err)

	if err := validateRequest(req); err != nil {
		return ports.DirectionsResult{}, err
	}

	profile, ok := orsProfiles[req.Mode]
	if !ok {
		return ports.DirectionsResult{}, fmt.Errorf("ORS %s: %w", req.Mode, ports.ErrUnsupportedMode)
	}

	key := ports.NewDirectionsKey(req.Origin, req.Destination, req.Mode)
	return o.cached.get(ctx, key, func(ctx context.Context) (ports.DirectionsResult, error) {
		return o.fetch(ctx, key, profile)
	})
}

func (o *ORSDirectionsProvider) fetch(
	ctx context.Context,
	key ports.DirectionsKey,
	profile string,
) (ports.DirectionsResult, error) {
	coords, err := o.coordinates(ctx, key.Origin, key.Destination)
	if err != nil {
		return ports.DirectionsResult{}, fmt.Errorf("retrieving coordinates: %w", err)
	}

	from, to := coords[key.Origin], coords[key.Destination]
	payload, err := json.Marshal(orsDirectionsRequest{
		Coordinates: [][]float64{{from.Lon, from.Lat}, {to.Lon, to.Lat}},
	})
	if err != nil {
		return ports.DirectionsResult{}, fmt.Errorf("marshal directions request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v2/directions/%s", o.baseURL, profile)
	resp, err := o.client.doWithRetry(ctx, func() (*http.Request, error) {
		return o.client.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		var he *httpStatusError
		if errors.As(err, &he) && he.Code == http.StatusNotFound {
			return ports.DirectionsResult{}, fmt.Errorf("%q -> %q: %w", key.Origin, key.Destination, ports.ErrNoRoute)
		}
		return ports.DirectionsResult{}, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	var decoded orsDirectionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return ports.DirectionsResult{}, fmt.Errorf("decode directions response: %w", err)
	}

	if len(decoded.Routes) == 0 {
		return ports.DirectionsResult{}, fmt.Errorf("%q -> %q: %w", key.Origin, key.Destination, ports.ErrNoRoute)
	}

	route := decoded.Routes[0]
	attribution := decoded.Metadata.Attribution
	if attribution == "" {
		attribution = ORSAttribution
	}

	return ports.DirectionsResult{
		Polyline:        route.Geometry,
		DistanceMeters:  int(route.Summary.Distance + 0.5),
		DurationSeconds: int(route.Summary.Duration + 0.5),
		Attribution:     attribution,
	}, nil
}

// coordinates resolves addresses through the geocode cache first and
// geocodes only the misses.
func (o *ORSDirectionsProvider) coordinates(
	ctx context.Context,
	addresses ...string,
) (map[string]domain.Coordinates, error) {
	hits := make(map[string]domain.Coordinates)
	if o.geocodeCache != nil {
		var err error
		hits, err = o.geocodeCache.GetMany(ctx, addresses)
		if err != nil {
			return nil, fmt.Errorf("ORS get geocode cache: %w", err)
		}
	}

	misses := make([]string, 0, len(addresses))
	for _, a := range addresses {
		if _, ok := hits[a]; !ok {
			misses = append(misses, a)
		}
	}

	fresh := make(map[string]domain.Coordinates)
	if len(misses) > 0 {
		var err error
		fresh, err = o.geocodeMany(ctx, misses)
		if err != nil {
			return nil, err
		}
	}

	if o.geocodeCache != nil && len(fresh) > 0 {
		if err := o.geocodeCache.PutMany(ctx, fresh); err != nil {
			o.log.Warn("geocode cache write failed", zap.Error(err))
		}
	}

	out := make(map[string]domain.Coordinates, len(hits)+len(fresh))
	for k, v := range hits {
		out[k] = v
	}
	for k, v := range fresh {
		out[k] = v
	}

	for _, a := range addresses {
		if _, ok := out[a]; !ok {
			return nil, fmt.Errorf("missing coordinate for %q", a)
		}
	}

	return out, nil
}
