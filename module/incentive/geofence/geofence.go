// Package geofence decides whether a coordinate falls inside an incentive's
// target zone. Every function is pure and safe for concurrent use.
package geofence

import (
	"fmt"
	"math"

	"github.com/TristanXpress/recall-alchemy-portal/module/incentive/domain"
)

const EarthRadiusKm = 6371

// Contains reports whether point lies inside g. Polygons use the even-odd
// rule; circles use the great-circle distance with an inclusive boundary.
func Contains(point domain.Coordinate, g domain.Geofence) (bool, error) {
	switch g.Type {
	case domain.ShapePolygon:
		return ContainsPolygon(point, g.Vertices)
	case domain.ShapeCircle:
		if g.Center == nil {
			return false, fmt.Errorf("%w: circle without center", domain.ErrMalformedGeofence)
		}
		return ContainsCircle(point, *g.Center, g.RadiusKm)
	default:
		return false, fmt.Errorf("%w: unknown shape %q", domain.ErrMalformedGeofence, g.Type)
	}
}

// ContainsPolygon casts a ray from point along increasing longitude and
// toggles on every edge it crosses. The ring is closed implicitly. Boundary
// points are not special-cased: an edge counts only when exactly one endpoint
// has a longitude strictly greater than the point's and the point's latitude
// is strictly below the edge at that longitude.
func ContainsPolygon(point domain.Coordinate, vertices []domain.Coordinate) (bool, error) {
	if err := point.Validate(); err != nil {
		return false, err
	}
	if len(vertices) < 3 {
		return false, fmt.Errorf("%w: polygon needs at least 3 vertices, got %d", domain.ErrMalformedGeofence, len(vertices))
	}
	for i, v := range vertices {
		if err := v.Validate(); err != nil {
			return false, fmt.Errorf("%w: vertex %d: %v", domain.ErrMalformedGeofence, i, err)
		}
	}

	inside := false
	for i, j := 0, len(vertices)-1; i < len(vertices); j, i = i, i+1 {
		xi, yi := vertices[i].Lat, vertices[i].Lng
		xj, yj := vertices[j].Lat, vertices[j].Lng

		if (yi > point.Lng) != (yj > point.Lng) &&
			point.Lat < (xj-xi)*(point.Lng-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside, nil
}

// ContainsCircle treats a point exactly radiusKm away as inside.
func ContainsCircle(point, center domain.Coordinate, radiusKm float64) (bool, error) {
	if radiusKm <= 0 || math.IsNaN(radiusKm) {
		return false, fmt.Errorf("%w: circle radius must be positive, got %v", domain.ErrMalformedGeofence, radiusKm)
	}
	if err := center.Validate(); err != nil {
		return false, fmt.Errorf("%w: center: %v", domain.ErrMalformedGeofence, err)
	}
	dist, err := DistanceKm(point, center)
	if err != nil {
		return false, err
	}
	return dist <= radiusKm, nil
}

// DistanceKm returns the haversine great-circle distance between a and b.
func DistanceKm(a, b domain.Coordinate) (float64, error) {
	if err := a.Validate(); err != nil {
		return 0, err
	}
	if err := b.Validate(); err != nil {
		return 0, err
	}
	return haversine(a.Lat, a.Lng, b.Lat, b.Lng), nil
}

// WithinAny reports whether point is within radiusKm of any of points. It
// serves records that still store a bare list of legacy coordinates.
func WithinAny(point domain.Coordinate, points []domain.Coordinate, radiusKm float64) (bool, error) {
	if err := point.Validate(); err != nil {
		return false, err
	}
	if len(points) == 0 {
		return false, fmt.Errorf("%w: empty point list", domain.ErrMalformedGeofence)
	}
	for _, p := range points {
		ok, err := ContainsCircle(point, p, radiusKm)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// AreaContains evaluates a resolved incentive area. legacyRadiusKm applies
// only to AreaLegacyPoints; an area without coordinates never matches.
func AreaContains(point domain.Coordinate, area domain.Area, legacyRadiusKm float64) (bool, error) {
	switch area.Kind {
	case domain.AreaGeofence:
		if area.Geofence == nil {
			return false, fmt.Errorf("%w: geofence area without shape", domain.ErrMalformedGeofence)
		}
		return Contains(point, *area.Geofence)
	case domain.AreaLegacyPoints:
		return WithinAny(point, area.Points, legacyRadiusKm)
	case domain.AreaMalformed:
		if err := point.Validate(); err != nil {
			return false, err
		}
		return false, fmt.Errorf("%w: %v", domain.ErrMalformedGeofence, area.Err)
	default:
		if err := point.Validate(); err != nil {
			return false, err
		}
		return false, nil
	}
}

func haversine(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return EarthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
