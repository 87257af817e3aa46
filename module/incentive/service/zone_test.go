package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/TristanXpress/recall-alchemy-portal/module/incentive/domain"
)

type mockNearbyFinder struct {
	nearbyFn func(ctx context.Context, point domain.Coordinate, searchRadiusKm float64, now time.Time) (*Result[domain.DynamicIncentive], error)
}

func (m *mockNearbyFinder) NearbyDynamicIncentives(ctx context.Context, point domain.Coordinate, searchRadiusKm float64, now time.Time) (*Result[domain.DynamicIncentive], error) {
	return m.nearbyFn(ctx, point, searchRadiusKm, now)
}

func pingAt(userType domain.UserType, loc domain.Coordinate) *domain.LocationPing {
	return &domain.LocationPing{
		SubjectID: "DRV-0042",
		UserType:  userType,
		Location:  loc,
		Timestamp: time.Unix(1741944600, 0),
	}
}

func TestCheckAndAlert_InsideZone(t *testing.T) {
	zone := dynamicAt("manila polygon", fixedNow.Add(time.Hour), domain.GeofenceArea(manilaPolygon))
	pub := &mockPublisher{}

	var gotRadius float64
	var gotNow time.Time
	finder := &mockNearbyFinder{
		nearbyFn: func(_ context.Context, _ domain.Coordinate, radius float64, now time.Time) (*Result[domain.DynamicIncentive], error) {
			gotRadius = radius
			gotNow = now
			return &Result[domain.DynamicIncentive]{Items: []domain.DynamicIncentive{zone}}, nil
		},
	}

	svc := NewZoneService(finder, pub, 5, discardLogger)
	ping := pingAt(domain.UserTypeDriver, insideManila)

	if err := svc.CheckAndAlert(context.Background(), ping); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotRadius != 5 {
		t.Errorf("expected radius 5, got %v", gotRadius)
	}
	if !gotNow.Equal(ping.Timestamp) {
		t.Errorf("expected ping timestamp as evaluation time, got %v", gotNow)
	}
	if len(pub.alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(pub.alerts))
	}
	alert := pub.alerts[0]
	if alert.IncentiveID != zone.ID.String() {
		t.Errorf("expected incentive %s, got %s", zone.ID, alert.IncentiveID)
	}
	if alert.SubjectID != "DRV-0042" {
		t.Errorf("expected DRV-0042, got %s", alert.SubjectID)
	}
	if alert.Event != domain.ZoneEntry {
		t.Errorf("expected zone_entry, got %s", alert.Event)
	}
	if alert.Timestamp != 1741944600 {
		t.Errorf("expected 1741944600, got %d", alert.Timestamp)
	}
}

func TestCheckAndAlert_NoZones(t *testing.T) {
	pub := &mockPublisher{}
	finder := &mockNearbyFinder{
		nearbyFn: func(_ context.Context, _ domain.Coordinate, _ float64, _ time.Time) (*Result[domain.DynamicIncentive], error) {
			return &Result[domain.DynamicIncentive]{Items: []domain.DynamicIncentive{}}, nil
		},
	}

	svc := NewZoneService(finder, pub, 5, discardLogger)
	if err := svc.CheckAndAlert(context.Background(), pingAt(domain.UserTypeDriver, domain.Coordinate{Lat: 7.07, Lng: 125.61})); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pub.alerts) != 0 {
		t.Fatalf("expected 0 alerts, got %d", len(pub.alerts))
	}
}

func TestCheckAndAlert_FiltersUserType(t *testing.T) {
	end := fixedNow.Add(time.Hour)
	customerOnly := dynamicAt("customer only", end, domain.GeofenceArea(manilaPolygon))
	customerOnly.UserType = domain.UserTypeCustomer
	anyone := dynamicAt("anyone", end, domain.GeofenceArea(manilaPolygon))

	pub := &mockPublisher{}
	finder := &mockNearbyFinder{
		nearbyFn: func(_ context.Context, _ domain.Coordinate, _ float64, _ time.Time) (*Result[domain.DynamicIncentive], error) {
			return &Result[domain.DynamicIncentive]{Items: []domain.DynamicIncentive{customerOnly, anyone}}, nil
		},
	}

	svc := NewZoneService(finder, pub, 5, discardLogger)
	if err := svc.CheckAndAlert(context.Background(), pingAt(domain.UserTypeDriver, insideManila)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pub.alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(pub.alerts))
	}
	if pub.alerts[0].IncentiveID != anyone.ID.String() {
		t.Errorf("expected alert for %s, got %s", anyone.ID, pub.alerts[0].IncentiveID)
	}
}

func TestCheckAndAlert_PublishError(t *testing.T) {
	zone := dynamicAt("zone", fixedNow.Add(time.Hour), domain.GeofenceArea(manilaPolygon))
	pub := &mockPublisher{
		publishZoneAlertFn: func(_ context.Context, _ *domain.ZoneAlert) error {
			return errors.New("channel closed")
		},
	}
	finder := &mockNearbyFinder{
		nearbyFn: func(_ context.Context, _ domain.Coordinate, _ float64, _ time.Time) (*Result[domain.DynamicIncentive], error) {
			return &Result[domain.DynamicIncentive]{Items: []domain.DynamicIncentive{zone}}, nil
		},
	}

	svc := NewZoneService(finder, pub, 5, discardLogger)
	if err := svc.CheckAndAlert(context.Background(), pingAt(domain.UserTypeDriver, insideManila)); err == nil {
		t.Fatal("expected error")
	}
}

func TestCheckAndAlert_InvalidPing(t *testing.T) {
	repo := &mockDynamicRepo{
		listFn: func(_ context.Context, _ bool) ([]domain.DynamicIncentive, error) {
			return []domain.DynamicIncentive{{Incentive: domain.Incentive{ID: uuid.New()}}}, nil
		},
	}
	svc := NewZoneService(newQueryService(&mockIncentiveRepo{}, repo), &mockPublisher{}, 5, discardLogger)

	err := svc.CheckAndAlert(context.Background(), pingAt(domain.UserTypeDriver, domain.Coordinate{Lat: 14.6, Lng: 181}))
	if !errors.Is(err, domain.ErrInvalidCoordinate) {
		t.Fatalf("expected ErrInvalidCoordinate, got %v", err)
	}
}
