package domain

import (
	"fmt"
	"strings"
)

type FieldError struct {
	Field string `json:"field"`
	Msg   string `json:"message"`
}

func (e FieldError) Error() string { return fmt.Sprintf("%s: %s", e.Field, e.Msg) }

// ValidationError collects every field problem of one incentive and matches
// ErrInvalidIncentive under errors.Is.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Error()
	}
	return "invalid incentive: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidIncentive }

const MaxTitleLen = 200

func ValidateIncentive(inc *Incentive) []FieldError {
	var errs []FieldError

	title := strings.TrimSpace(inc.Title)
	if title == "" {
		errs = append(errs, FieldError{"title", "required"})
	} else if len(title) > MaxTitleLen {
		errs = append(errs, FieldError{"title", fmt.Sprintf("max length %d", MaxTitleLen)})
	}

	if !inc.Type.Valid() {
		errs = append(errs, FieldError{"type", "must be percentage or fixed"})
	}
	if inc.Amount <= 0 {
		errs = append(errs, FieldError{"amount", "must be positive"})
	} else if inc.Type == AmountPercentage && inc.Amount > 100 {
		errs = append(errs, FieldError{"amount", "percentage must not exceed 100"})
	}

	if inc.StartDate.IsZero() {
		errs = append(errs, FieldError{"start_date", "required"})
	}
	if inc.EndDate.IsZero() {
		errs = append(errs, FieldError{"end_date", "required"})
	} else if !inc.StartDate.IsZero() && !inc.EndDate.After(inc.StartDate) {
		errs = append(errs, FieldError{"end_date", "must be after start_date"})
	}

	for i, c := range inc.Conditions {
		if strings.TrimSpace(c) == "" {
			errs = append(errs, FieldError{fmt.Sprintf("conditions[%d]", i), "must be non-empty"})
		}
	}

	return errs
}

// ValidateDynamicIncentive also checks target cities against the known city
// table and the stored area's shape.
func ValidateDynamicIncentive(inc *DynamicIncentive) []FieldError {
	errs := ValidateIncentive(&inc.Incentive)

	if inc.UserType != "" && !inc.UserType.Valid() {
		errs = append(errs, FieldError{"user_type", "must be customer or driver"})
	}
	for i, city := range inc.TargetCities {
		if _, _, ok := CityCoordinate(city); !ok {
			errs = append(errs, FieldError{fmt.Sprintf("target_cities[%d]", i), fmt.Sprintf("unknown city %q", city)})
		}
	}

	switch inc.Area.Kind {
	case AreaGeofence:
		if err := ValidateGeofence(inc.Area.Geofence); err != nil {
			errs = append(errs, FieldError{"geofence", err.Error()})
		}
	case AreaLegacyPoints:
		for i, p := range inc.Area.Points {
			if err := p.Validate(); err != nil {
				errs = append(errs, FieldError{fmt.Sprintf("coordinates[%d]", i), err.Error()})
			}
		}
	case AreaMalformed:
		errs = append(errs, FieldError{"coordinates", "cannot be decoded"})
	}

	return errs
}

// ValidateGeofence applies the same shape rules the evaluator enforces, so
// malformed shapes are rejected on write rather than skipped on read.
func ValidateGeofence(g *Geofence) error {
	if g == nil {
		return fmt.Errorf("%w: missing shape", ErrMalformedGeofence)
	}
	switch g.Type {
	case ShapePolygon:
		if len(g.Vertices) < 3 {
			return fmt.Errorf("%w: polygon needs at least 3 vertices, got %d", ErrMalformedGeofence, len(g.Vertices))
		}
		for i, v := range g.Vertices {
			if err := v.Validate(); err != nil {
				return fmt.Errorf("%w: vertex %d: %v", ErrMalformedGeofence, i, err)
			}
		}
	case ShapeCircle:
		if g.Center == nil {
			return fmt.Errorf("%w: circle without center", ErrMalformedGeofence)
		}
		if err := g.Center.Validate(); err != nil {
			return fmt.Errorf("%w: center: %v", ErrMalformedGeofence, err)
		}
		if g.RadiusKm <= 0 {
			return fmt.Errorf("%w: circle radius must be positive", ErrMalformedGeofence)
		}
	default:
		return fmt.Errorf("%w: unknown shape %q", ErrMalformedGeofence, g.Type)
	}
	return nil
}
