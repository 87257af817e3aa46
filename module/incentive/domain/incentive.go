package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type UserType string

const (
	UserTypeCustomer UserType = "customer"
	UserTypeDriver   UserType = "driver"
)

func (u UserType) Valid() bool {
	return u == UserTypeCustomer || u == UserTypeDriver
}

type AmountType string

const (
	AmountPercentage AmountType = "percentage"
	AmountFixed      AmountType = "fixed"
)

func (a AmountType) Valid() bool {
	return a == AmountPercentage || a == AmountFixed
}

// Incentive amounts are in Philippine pesos, or a percentage of the order or
// trip amount when Type is AmountPercentage.
type Incentive struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Amount      float64    `json:"amount"`
	Type        AmountType `json:"type"`
	StartDate   time.Time  `json:"start_date"`
	EndDate     time.Time  `json:"end_date"`
	Location    string     `json:"location"`
	IsActive    bool       `json:"is_active"`
	Conditions  []string   `json:"conditions"`
	UserType    UserType   `json:"user_type"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type DynamicIncentive struct {
	Incentive
	TargetCities []string `json:"target_cities"`
	Area         Area     `json:"-"`
}

type IncentiveFilter struct {
	UserType   UserType
	Location   string
	ActiveOnly bool
}

type Stats struct {
	CustomerCount int     `json:"customer_count"`
	CustomerTotal float64 `json:"customer_total"`
	DriverCount   int     `json:"driver_count"`
	DriverTotal   float64 `json:"driver_total"`
	DynamicCount  int     `json:"dynamic_count"`
	DynamicTotal  float64 `json:"dynamic_total"`
	TotalCount    int     `json:"total_count"`
}

type ChangeEventType string

const (
	ChangeInsert ChangeEventType = "INSERT"
	ChangeUpdate ChangeEventType = "UPDATE"
	ChangeDelete ChangeEventType = "DELETE"
)

const (
	TableIncentives        = "incentives"
	TableDynamicIncentives = "dynamic_incentives"
)

type ChangeEvent struct {
	EventType ChangeEventType `json:"eventType"`
	Table     string          `json:"table"`
	Old       any             `json:"old,omitempty"`
	New       any             `json:"new,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// MarshalJSON writes the area back in its stored "coordinates" form. A
// stored area that could not be decoded is written as null coordinates with
// "area_error" set, so clients can tell it apart from a record with no area.
func (d DynamicIncentive) MarshalJSON() ([]byte, error) {
	var areaErr string
	coords, err := EncodeArea(d.Area)
	if err != nil {
		coords = []byte("null")
		areaErr = err.Error()
	}
	type plain DynamicIncentive
	return json.Marshal(struct {
		plain
		Coordinates json.RawMessage `json:"coordinates"`
		AreaError   string          `json:"area_error,omitempty"`
	}{plain(d), coords, areaErr})
}
