package geo

import (
	"fmt"
	"math"
)

const metersPerMile = 1609.344

// FormatMiles renders a raw meter distance as a one-decimal miles string,
// e.g. "0.3 mi". Purely cosmetic: results arrive sorted by distance from the
// store and this must not reorder them.
func FormatMiles(meters float64) string {
	return fmt.Sprintf("%.1f mi", meters/metersPerMile)
}

// Haversine returns the great-circle distance in meters between two points.
// Used to sanity-check submitted coordinates against provider data; the
// nearby search gets its distances from the database function instead.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadius = 6371000.0 // meters

	lat1Rad := lat1 * math.Pi / 180
	lon1Rad := lon1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	lon2Rad := lon2 * math.Pi / 180

	dLat := lat2Rad - lat1Rad
	dLon := lon2Rad - lon1Rad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadius * c
}
