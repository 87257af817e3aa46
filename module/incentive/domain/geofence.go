package domain

type ShapeType string

const (
	ShapePolygon ShapeType = "polygon"
	ShapeCircle  ShapeType = "circle"
)

// Geofence is either a polygon ring (Vertices, implicitly closed) or a
// circle (Center plus RadiusKm). A circle stored without a radius keeps
// RadiusKm at zero and fails evaluation as malformed.
type Geofence struct {
	Type     ShapeType
	Vertices []Coordinate
	Center   *Coordinate
	RadiusKm float64
}

func NewPolygon(vertices ...Coordinate) Geofence {
	return Geofence{Type: ShapePolygon, Vertices: vertices}
}

func NewCircle(center Coordinate, radiusKm float64) Geofence {
	return Geofence{Type: ShapeCircle, Center: &center, RadiusKm: radiusKm}
}

type AreaKind string

const (
	AreaNone         AreaKind = "none"
	AreaLegacyPoints AreaKind = "legacy_points"
	AreaGeofence     AreaKind = "geofence"
	AreaMalformed    AreaKind = "malformed"
)

// Area is the target zone of a dynamic incentive, resolved once from the
// stored coordinates column. Points may also be populated for AreaGeofence
// records that still carry legacy coordinates; they are kept for round-trips
// and ignored during evaluation.
type Area struct {
	Kind     AreaKind
	Points   []Coordinate
	Geofence *Geofence
	Err      error
}

func NoArea() Area {
	return Area{Kind: AreaNone}
}

func LegacyArea(points ...Coordinate) Area {
	if len(points) == 0 {
		return NoArea()
	}
	return Area{Kind: AreaLegacyPoints, Points: points}
}

func GeofenceArea(g Geofence) Area {
	return Area{Kind: AreaGeofence, Geofence: &g}
}

// MalformedArea marks a stored value that could not be decoded, so the
// record can still be listed and is rejected only when evaluated.
func MalformedArea(err error) Area {
	return Area{Kind: AreaMalformed, Err: err}
}

type ZoneEventType string

const ZoneEntry ZoneEventType = "zone_entry"

type ZoneAlert struct {
	IncentiveID string        `json:"incentive_id"`
	SubjectID   string        `json:"subject_id"`
	UserType    UserType      `json:"user_type"`
	Event       ZoneEventType `json:"event"`
	Location    Coordinate    `json:"location"`
	Timestamp   int64         `json:"timestamp"`
}
