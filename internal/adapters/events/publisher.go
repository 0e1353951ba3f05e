package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/nats-io/nats.go"

	"commute-route-service/internal/domain"
	"commute-route-service/internal/polyline"
)

const SubjectPrefix = "commute.routes."

type conn interface {
	Publish(subject string, data []byte) error
}

// NATSPublisher implements ports.RoutePublisher on core NATS.
type NATSPublisher struct {
	conn  conn
	drain func()
}

// NewNATSPublisher connects to url, retrying in the background when the
// server is not up yet.
func NewNATSPublisher(url string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("commute-route-service"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &NATSPublisher{conn: nc, drain: func() { _ = nc.Drain() }}, nil
}

type routeMessage struct {
	ID              string    `json:"id"`
	Row             int       `json:"row"`
	Building        string    `json:"building"`
	Mode            string    `json:"mode"`
	Origin          string    `json:"origin"`
	Destination     string    `json:"destination"`
	Polyline        string    `json:"polyline"`
	Points          int       `json:"points"`
	DistanceMeters  int       `json:"distance_meters"`
	DurationSeconds int       `json:"duration_seconds"`
	Attribution     string    `json:"attribution"`
	CreatedAt       time.Time `json:"created_at"`
}

func (p *NATSPublisher) PublishRoute(ctx context.Context, r *domain.Route) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(routeMessage{
		ID:              r.ID,
		Row:             r.Row,
		Building:        r.Building,
		Mode:            string(r.Mode),
		Origin:          r.Origin,
		Destination:     r.Destination,
		Polyline:        polyline.Encode(r.Points),
		Points:          len(r.Points),
		DistanceMeters:  r.DistanceMeters,
		DurationSeconds: r.DurationSeconds,
		Attribution:     r.Attribution,
		CreatedAt:       r.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal route %s: %w", r.ID, err)
	}

	subject := Subject(r.Building)
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

// Close drains and closes the connection.
func (p *NATSPublisher) Close() {
	if p.drain != nil {
		p.drain()
	}
}

// Subject returns the subject routes to building are published on.
func Subject(building string) string {
	return SubjectPrefix + slug(building)
}

// slug lowercases s and replaces every run of characters that are not
// letters or digits with a single dash.
func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	if b.Len() == 0 {
		return "unknown"
	}
	return b.String()
}

// NopPublisher drops every route. It is used when NATS is not configured.
type NopPublisher struct{}

func (NopPublisher) PublishRoute(context.Context, *domain.Route) error { return nil }
