package domain

import "errors"

var (
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	ErrMalformedGeofence = errors.New("malformed geofence")
	ErrInvalidTimestamp  = errors.New("invalid timestamp")
	ErrInvalidIncentive  = errors.New("invalid incentive")
	ErrInvalidQuery      = errors.New("invalid query")
	ErrNotFound          = errors.New("not found")
)
