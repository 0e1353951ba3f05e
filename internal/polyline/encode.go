package polyline

import (
	"math"
	"strings"

	"commute-route-service/internal/domain"
)

// Encode produces the encoded polyline for points, rounding each coordinate
// to 5 decimal places.
//
// Consecutive points that round to the same position encode as a zero delta
// pair, which Decode skips. The same applies to a first point at (0, 0).
func Encode(points []domain.Coordinates) string {
	var b strings.Builder
	b.Grow(len(points) * 8)

	var prevLat, prevLon int64
	for _, p := range points {
		lat := int64(math.Round(p.Lat * precision))
		lon := int64(math.Round(p.Lon * precision))

		encodeValue(&b, lat-prevLat)
		encodeValue(&b, lon-prevLon)

		prevLat, prevLon = lat, lon
	}

	return b.String()
}

func encodeValue(b *strings.Builder, v int64) {
	u := v << 1
	if v < 0 {
		u = ^u
	}

	for u >= continuationBit {
		b.WriteByte(byte((continuationBit | (u & payloadMask)) + asciiOffset))
		u >>= 5
	}
	b.WriteByte(byte(u + asciiOffset))
}
