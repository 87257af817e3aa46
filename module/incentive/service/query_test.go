package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TristanXpress/recall-alchemy-portal/module/incentive/activity"
	"github.com/TristanXpress/recall-alchemy-portal/module/incentive/domain"
)

var insideManila = domain.Coordinate{Lat: 14.60, Lng: 120.98}

func dynamicAt(title string, end time.Time, area domain.Area) domain.DynamicIncentive {
	return domain.DynamicIncentive{
		Incentive: domain.Incentive{
			ID:       uuid.New(),
			Title:    title,
			Amount:   10,
			Type:     domain.AmountFixed,
			EndDate:  end,
			IsActive: true,
		},
		Area: area,
	}
}

func newQueryService(inc *mockIncentiveRepo, dyn *mockDynamicRepo) *QueryService {
	return NewQueryService(inc, dyn, activity.NewFilter(activity.DefaultBuffer), discardLogger)
}

func TestActiveIncentives_FiltersByEnd(t *testing.T) {
	live := domain.Incentive{ID: uuid.New(), IsActive: true, EndDate: fixedNow.Add(time.Hour)}
	grace := domain.Incentive{ID: uuid.New(), IsActive: true, EndDate: fixedNow.Add(-30 * time.Second)}
	expired := domain.Incentive{ID: uuid.New(), IsActive: true, EndDate: fixedNow.Add(-2 * time.Minute)}
	noEnd := domain.Incentive{ID: uuid.New(), IsActive: true}

	var gotFilter domain.IncentiveFilter
	repo := &mockIncentiveRepo{
		listFn: func(_ context.Context, f domain.IncentiveFilter) ([]domain.Incentive, error) {
			gotFilter = f
			return []domain.Incentive{live, grace, expired, noEnd}, nil
		},
	}

	svc := newQueryService(repo, &mockDynamicRepo{})
	res, err := svc.ActiveIncentives(context.Background(), ActiveQuery{UserType: domain.UserTypeCustomer, Location: "Manila"}, fixedNow)
	require.NoError(t, err)

	assert.True(t, gotFilter.ActiveOnly)
	assert.Equal(t, domain.UserTypeCustomer, gotFilter.UserType)
	require.Len(t, res.Items, 2)
	assert.Equal(t, live.ID, res.Items[0].ID)
	assert.Equal(t, grace.ID, res.Items[1].ID)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, noEnd.ID, res.Skipped[0].ID)
}

func TestActiveIncentives_RequireStarted(t *testing.T) {
	started := domain.Incentive{ID: uuid.New(), IsActive: true, StartDate: fixedNow.Add(-time.Hour), EndDate: fixedNow.Add(time.Hour)}
	upcoming := domain.Incentive{ID: uuid.New(), IsActive: true, StartDate: fixedNow.Add(time.Hour), EndDate: fixedNow.Add(2 * time.Hour)}

	repo := &mockIncentiveRepo{
		listFn: func(_ context.Context, _ domain.IncentiveFilter) ([]domain.Incentive, error) {
			return []domain.Incentive{started, upcoming}, nil
		},
	}

	svc := newQueryService(repo, &mockDynamicRepo{})

	res, err := svc.ActiveIncentives(context.Background(), ActiveQuery{RequireStarted: true}, fixedNow)
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, started.ID, res.Items[0].ID)

	res, err = svc.ActiveIncentives(context.Background(), ActiveQuery{}, fixedNow)
	require.NoError(t, err)
	assert.Len(t, res.Items, 2)
}

func TestActiveIncentives_InvalidUserType(t *testing.T) {
	svc := newQueryService(&mockIncentiveRepo{}, &mockDynamicRepo{})
	_, err := svc.ActiveIncentives(context.Background(), ActiveQuery{UserType: "rider"}, fixedNow)
	assert.ErrorIs(t, err, domain.ErrInvalidQuery)
}

func TestNearbyDynamicIncentives(t *testing.T) {
	end := fixedNow.Add(time.Hour)
	polygon := dynamicAt("manila polygon", end, domain.GeofenceArea(manilaPolygon))
	circle := dynamicAt("makati circle", end, domain.GeofenceArea(domain.NewCircle(domain.Coordinate{Lat: 14.5547, Lng: 121.0244}, 2)))
	legacy := dynamicAt("legacy manila", end, domain.LegacyArea(domain.Coordinate{Lat: 14.5995, Lng: 120.9842}))
	expired := dynamicAt("expired polygon", fixedNow.Add(-time.Hour), domain.GeofenceArea(manilaPolygon))
	broken := dynamicAt("broken", end, domain.MalformedArea(errors.New("unexpected end of JSON input")))
	noRadius := dynamicAt("circle without radius", end, domain.GeofenceArea(domain.NewCircle(insideManila, 0)))
	unbounded := dynamicAt("no area", end, domain.NoArea())

	var gotActiveOnly bool
	repo := &mockDynamicRepo{
		listFn: func(_ context.Context, activeOnly bool) ([]domain.DynamicIncentive, error) {
			gotActiveOnly = activeOnly
			return []domain.DynamicIncentive{polygon, circle, legacy, expired, broken, noRadius, unbounded}, nil
		},
	}

	svc := newQueryService(&mockIncentiveRepo{}, repo)
	res, err := svc.NearbyDynamicIncentives(context.Background(), insideManila, 5, fixedNow)
	require.NoError(t, err)
	assert.True(t, gotActiveOnly)

	var titles []string
	for _, inc := range res.Items {
		titles = append(titles, inc.Title)
	}
	assert.Equal(t, []string{"manila polygon", "legacy manila"}, titles)

	require.Len(t, res.Skipped, 2)
	assert.Equal(t, broken.ID, res.Skipped[0].ID)
	assert.Equal(t, noRadius.ID, res.Skipped[1].ID)
}

func TestNearbyDynamicIncentives_KeepsRepositoryOrder(t *testing.T) {
	end := fixedNow.Add(time.Hour)
	var candidates []domain.DynamicIncentive
	for i := range 64 {
		candidates = append(candidates, dynamicAt(fmt.Sprintf("zone-%02d", i), end, domain.GeofenceArea(manilaPolygon)))
	}
	repo := &mockDynamicRepo{
		listFn: func(_ context.Context, _ bool) ([]domain.DynamicIncentive, error) {
			return candidates, nil
		},
	}

	svc := newQueryService(&mockIncentiveRepo{}, repo)
	svc.workers = 4

	res, err := svc.NearbyDynamicIncentives(context.Background(), insideManila, 5, fixedNow)
	require.NoError(t, err)
	require.Len(t, res.Items, len(candidates))
	for i := range candidates {
		assert.Equal(t, candidates[i].ID, res.Items[i].ID)
	}
}

func TestNearbyDynamicIncentives_InvalidInput(t *testing.T) {
	repo := &mockDynamicRepo{
		listFn: func(_ context.Context, _ bool) ([]domain.DynamicIncentive, error) {
			t.Fatal("List should not be called")
			return nil, nil
		},
	}
	svc := newQueryService(&mockIncentiveRepo{}, repo)

	_, err := svc.NearbyDynamicIncentives(context.Background(), domain.Coordinate{Lat: 91, Lng: 0}, 5, fixedNow)
	assert.ErrorIs(t, err, domain.ErrInvalidCoordinate)

	for _, radius := range []float64{0, -1, math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err = svc.NearbyDynamicIncentives(context.Background(), insideManila, radius, fixedNow)
		assert.ErrorIs(t, err, domain.ErrInvalidQuery, "radius %v", radius)
		assert.NotErrorIs(t, err, domain.ErrMalformedGeofence, "radius %v", radius)
	}
}

func TestNearbyDynamicIncentives_RepoError(t *testing.T) {
	repo := &mockDynamicRepo{
		listFn: func(_ context.Context, _ bool) ([]domain.DynamicIncentive, error) {
			return nil, errors.New("connection refused")
		},
	}
	svc := newQueryService(&mockIncentiveRepo{}, repo)

	_, err := svc.NearbyDynamicIncentives(context.Background(), insideManila, 5, fixedNow)
	assert.Error(t, err)
}

func TestDynamicIncentivesByCities(t *testing.T) {
	live := dynamicAt("live", fixedNow.Add(time.Hour), domain.NoArea())
	stale := dynamicAt("stale", fixedNow.Add(-time.Hour), domain.NoArea())

	var gotCities []string
	repo := &mockDynamicRepo{
		listByCitiesFn: func(_ context.Context, cities []string) ([]domain.DynamicIncentive, error) {
			gotCities = cities
			return []domain.DynamicIncentive{live, stale}, nil
		},
	}
	svc := newQueryService(&mockIncentiveRepo{}, repo)

	res, err := svc.DynamicIncentivesByCities(context.Background(), []string{"quezon city", "Nowhere"}, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, []string{"Quezon City", "Nowhere"}, gotCities)
	require.Len(t, res.Items, 1)
	assert.Equal(t, live.ID, res.Items[0].ID)

	_, err = svc.DynamicIncentivesByCities(context.Background(), nil, fixedNow)
	assert.ErrorIs(t, err, domain.ErrInvalidQuery)
}

func TestStats(t *testing.T) {
	incentives := &mockIncentiveRepo{
		listFn: func(_ context.Context, f domain.IncentiveFilter) ([]domain.Incentive, error) {
			assert.False(t, f.ActiveOnly)
			return []domain.Incentive{
				{UserType: domain.UserTypeCustomer, Amount: 10},
				{UserType: domain.UserTypeCustomer, Amount: 15},
				{UserType: domain.UserTypeDriver, Amount: 50},
			}, nil
		},
	}
	dynamic := &mockDynamicRepo{
		listFn: func(_ context.Context, activeOnly bool) ([]domain.DynamicIncentive, error) {
			assert.False(t, activeOnly)
			return []domain.DynamicIncentive{dynamicAt("a", fixedNow, domain.NoArea())}, nil
		},
	}

	stats, err := newQueryService(incentives, dynamic).Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.CustomerCount)
	assert.Equal(t, 25.0, stats.CustomerTotal)
	assert.Equal(t, 1, stats.DriverCount)
	assert.Equal(t, 50.0, stats.DriverTotal)
	assert.Equal(t, 1, stats.DynamicCount)
	assert.Equal(t, 10.0, stats.DynamicTotal)
	assert.Equal(t, 4, stats.TotalCount)
}
