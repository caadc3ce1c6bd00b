// Package geo computes great-circle distances between coordinates.
package geo

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mmcdole/swingset/internal/domain"
)

// EarthRadiusKm is the mean earth radius used by Distance
const EarthRadiusKm = 6371.0

// Distance returns the haversine distance between a and b in kilometres.
func Distance(a, b domain.Coordinates) float64 {
	lat1 := radians(a.Latitude)
	lat2 := radians(b.Latitude)
	dLat := radians(b.Latitude - a.Latitude)
	dLon := radians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	// Rounding can push h a hair above 1 for antipodal points
	h = math.Min(1, math.Max(0, h))

	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(h))
}

// DistanceTo returns the distance from ref to the playground's coordinates.
// ok is false when either side has no point.
func DistanceTo(ref *domain.Coordinates, p domain.Playground) (km float64, ok bool) {
	if ref == nil || p.Location.Coordinates == nil {
		return 0, false
	}
	return Distance(*ref, *p.Location.Coordinates), true
}

// FormatDistance renders km as "850 m" below one kilometre and "3.4 km" above
func FormatDistance(km float64) string {
	if km < 1 {
		return formatFloat(math.Round(km*1000), 0) + " m"
	}
	return formatFloat(km, 1) + " km"
}

// ParseCoordinates parses "lat,lon" in decimal degrees
func ParseCoordinates(s string) (domain.Coordinates, error) {
	latStr, lonStr, found := strings.Cut(s, ",")
	if !found {
		return domain.Coordinates{}, fmt.Errorf("%w: coordinates %q: want lat,lon", domain.ErrValidation, s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("%w: latitude %q", domain.ErrValidation, latStr)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("%w: longitude %q", domain.ErrValidation, lonStr)
	}
	c := domain.Coordinates{Latitude: lat, Longitude: lon}
	if !c.Valid() {
		return domain.Coordinates{}, fmt.Errorf("%w: coordinates %s out of range", domain.ErrValidation, c)
	}
	return c, nil
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

func formatFloat(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}
