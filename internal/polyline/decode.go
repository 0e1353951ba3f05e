// Package polyline converts between Google encoded polyline strings and
// coordinate sequences.
//
// The encoding stores each coordinate as a delta from the previous one, in
// units of 1e-5 degrees, packed into 5-bit groups offset by 63 so that every
// group is a printable ASCII character. A group with bit 0x20 set is followed
// by more groups of the same value.
package polyline

import (
	"strconv"

	"commute-route-service/internal/domain"
)

const (
	asciiOffset     = 63
	payloadMask     = 0x1f
	continuationBit = 0x20

	// precision is the fixed scale of the encoding (5 decimal places).
	precision = 100000.0
	// roundDigits is the number of decimal places decoded coordinates keep.
	roundDigits = 6
)

// Decode returns the points of an encoded polyline in (lon, lat) order.
//
// Decode never fails. Characters outside the encoding alphabet produce
// whatever value the arithmetic yields, a trailing group without a
// terminator is discarded, an unpaired trailing delta is dropped, and a
// delta pair of exactly (0, 0) produces no point. A value spread over more
// than 12 groups keeps only its low 64 bits. Use DecodeStrict to reject
// malformed input instead.
func Decode(s string) []domain.Coordinates {
	deltas := decodeDeltas(s)

	points := make([]domain.Coordinates, 0, len(deltas)/2)
	var prevLat, prevLon float64
	for i := 0; i+1 < len(deltas); i += 2 {
		dLat, dLon := deltas[i], deltas[i+1]
		if dLat == 0 && dLon == 0 {
			continue
		}

		prevLat += dLat
		prevLon += dLon
		points = append(points, domain.Coordinates{
			Lon: round6(prevLon),
			Lat: round6(prevLat),
		})
	}

	return points
}

// decodeDeltas splits s into groups and turns each terminated group into a
// signed delta in degrees.
func decodeDeltas(s string) []float64 {
	deltas := make([]float64, 0, len(s)/2)

	var acc int64
	var shift uint
	for i := 0; i < len(s); i++ {
		v := int64(s[i]) - asciiOffset
		acc |= (v & payloadMask) << shift
		shift += 5

		if v&continuationBit != 0 {
			continue
		}

		if acc&1 == 1 {
			acc = ^acc
		}
		acc >>= 1
		deltas = append(deltas, float64(acc)/precision)

		acc, shift = 0, 0
	}

	return deltas
}

// round6 rounds the exact binary value of v to 6 decimal places. Scaling by
// 1e6 instead drifts at large magnitudes.
func round6(v float64) float64 {
	r, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', roundDigits, 64), 64)
	return r
}
