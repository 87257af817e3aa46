package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type storedGeofence struct {
	Type        ShapeType    `json:"type"`
	Coordinates []Coordinate `json:"coordinates"`
	Radius      *float64     `json:"radius,omitempty"`
}

type storedArea struct {
	Geofence    *storedGeofence `json:"geofence,omitempty"`
	Coordinates []Coordinate    `json:"coordinates"`
}

// DecodeArea resolves the stored coordinates column, which holds either a
// legacy array of points or an object with a "geofence" shape and optional
// legacy "coordinates". Only malformed JSON is rejected here; shape problems
// (too few vertices, missing radius, unknown type) surface at evaluation.
func DecodeArea(raw []byte) (Area, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return NoArea(), nil
	}

	if raw[0] == '[' {
		var points []Coordinate
		if err := json.Unmarshal(raw, &points); err != nil {
			return Area{}, fmt.Errorf("decode legacy coordinates: %w", err)
		}
		return LegacyArea(points...), nil
	}

	var stored storedArea
	if err := json.Unmarshal(raw, &stored); err != nil {
		return Area{}, fmt.Errorf("decode area: %w", err)
	}

	if stored.Geofence == nil {
		return LegacyArea(stored.Coordinates...), nil
	}

	g := Geofence{Type: stored.Geofence.Type}
	switch g.Type {
	case ShapeCircle:
		if len(stored.Geofence.Coordinates) > 0 {
			center := stored.Geofence.Coordinates[0]
			g.Center = &center
		}
		if stored.Geofence.Radius != nil {
			g.RadiusKm = *stored.Geofence.Radius
		}
	default:
		g.Vertices = stored.Geofence.Coordinates
	}

	area := GeofenceArea(g)
	area.Points = stored.Coordinates
	return area, nil
}

func EncodeArea(a Area) ([]byte, error) {
	switch a.Kind {
	case AreaLegacyPoints:
		return json.Marshal(a.Points)
	case AreaMalformed:
		return nil, fmt.Errorf("%w: %v", ErrMalformedGeofence, a.Err)
	case AreaGeofence:
		if a.Geofence == nil {
			return nil, fmt.Errorf("%w: geofence area without shape", ErrMalformedGeofence)
		}
		sg := &storedGeofence{Type: a.Geofence.Type}
		switch a.Geofence.Type {
		case ShapeCircle:
			if a.Geofence.Center != nil {
				sg.Coordinates = []Coordinate{*a.Geofence.Center}
			}
			if a.Geofence.RadiusKm > 0 {
				r := a.Geofence.RadiusKm
				sg.Radius = &r
			}
		default:
			sg.Coordinates = a.Geofence.Vertices
		}
		if sg.Coordinates == nil {
			sg.Coordinates = []Coordinate{}
		}
		points := a.Points
		if points == nil {
			points = []Coordinate{}
		}
		return json.Marshal(storedArea{Geofence: sg, Coordinates: points})
	default:
		return []byte("null"), nil
	}
}
