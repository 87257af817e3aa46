package http

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/TristanXpress/recall-alchemy-portal/module/incentive/domain"
	"github.com/TristanXpress/recall-alchemy-portal/module/incentive/service"
)

type mockDynamicService struct {
	createFn func(ctx context.Context, inc *domain.DynamicIncentive) (*domain.DynamicIncentive, error)
	updateFn func(ctx context.Context, inc *domain.DynamicIncentive) (*domain.DynamicIncentive, error)
	deleteFn func(ctx context.Context, id uuid.UUID) error
	getFn    func(ctx context.Context, id uuid.UUID) (*domain.DynamicIncentive, error)
	listFn   func(ctx context.Context, activeOnly bool) ([]domain.DynamicIncentive, error)
}

func (m *mockDynamicService) Create(ctx context.Context, inc *domain.DynamicIncentive) (*domain.DynamicIncentive, error) {
	return m.createFn(ctx, inc)
}

func (m *mockDynamicService) Update(ctx context.Context, inc *domain.DynamicIncentive) (*domain.DynamicIncentive, error) {
	return m.updateFn(ctx, inc)
}

func (m *mockDynamicService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFn(ctx, id)
}

func (m *mockDynamicService) Get(ctx context.Context, id uuid.UUID) (*domain.DynamicIncentive, error) {
	return m.getFn(ctx, id)
}

func (m *mockDynamicService) List(ctx context.Context, activeOnly bool) ([]domain.DynamicIncentive, error) {
	return m.listFn(ctx, activeOnly)
}

type mockDynamicQuerier struct {
	nearbyFn   func(ctx context.Context, point domain.Coordinate, searchRadiusKm float64, now time.Time) (*service.Result[domain.DynamicIncentive], error)
	byCitiesFn func(ctx context.Context, cities []string, now time.Time) (*service.Result[domain.DynamicIncentive], error)
}

func (m *mockDynamicQuerier) NearbyDynamicIncentives(ctx context.Context, point domain.Coordinate, searchRadiusKm float64, now time.Time) (*service.Result[domain.DynamicIncentive], error) {
	return m.nearbyFn(ctx, point, searchRadiusKm, now)
}

func (m *mockDynamicQuerier) DynamicIncentivesByCities(ctx context.Context, cities []string, now time.Time) (*service.Result[domain.DynamicIncentive], error) {
	return m.byCitiesFn(ctx, cities, now)
}

func setupDynamicRouter(svc dynamicIncentiveService, q dynamicIncentiveQuerier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewDynamicIncentiveHandler(svc, q, 5)
	h.now = func() time.Time { return fixedNow }
	h.Register(r.Group(""))
	return r
}

func TestCreateDynamicIncentive_GeofenceBody(t *testing.T) {
	svc := &mockDynamicService{
		createFn: func(_ context.Context, inc *domain.DynamicIncentive) (*domain.DynamicIncentive, error) {
			if inc.Area.Kind != domain.AreaGeofence {
				t.Fatalf("expected geofence area, got %s", inc.Area.Kind)
			}
			g := inc.Area.Geofence
			if g.Type != domain.ShapeCircle || g.RadiusKm != 2 {
				t.Fatalf("unexpected geofence: %+v", g)
			}
			if len(inc.TargetCities) != 1 || inc.TargetCities[0] != "Makati" {
				t.Fatalf("unexpected cities: %v", inc.TargetCities)
			}
			inc.ID = uuid.New()
			return inc, nil
		},
	}

	r := setupDynamicRouter(svc, &mockDynamicQuerier{})
	body := `{
		"title": "Makati surge",
		"amount": 15,
		"type": "percentage",
		"start_date": "2025-03-14T00:00:00Z",
		"end_date": "2025-03-15T00:00:00Z",
		"target_cities": ["Makati"],
		"coordinates": {"geofence": {"type": "circle", "coordinates": [{"lat": 14.5547, "lng": 121.0244}], "radius": 2}}
	}`
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/dynamic-incentives", bytes.NewBufferString(body))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var got map[string]any
	decodeEnvelope(t, w, &got)
	if _, ok := got["coordinates"]; !ok {
		t.Error("expected coordinates in response")
	}
}

func TestCreateDynamicIncentive_UndecodableCoordinates(t *testing.T) {
	r := setupDynamicRouter(&mockDynamicService{}, &mockDynamicQuerier{})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/dynamic-incentives", bytes.NewBufferString(`{"title":"x","coordinates":"somewhere"}`))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestNearby_Success(t *testing.T) {
	q := &mockDynamicQuerier{
		nearbyFn: func(_ context.Context, point domain.Coordinate, radius float64, _ time.Time) (*service.Result[domain.DynamicIncentive], error) {
			if point.Lat != 14.6 || point.Lng != 120.98 {
				t.Fatalf("unexpected point: %+v", point)
			}
			if radius != 5 {
				t.Fatalf("expected default radius 5, got %v", radius)
			}
			return &service.Result[domain.DynamicIncentive]{Items: []domain.DynamicIncentive{}}, nil
		},
	}

	r := setupDynamicRouter(&mockDynamicService{}, q)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/dynamic-incentives/nearby?lat=14.6&lng=120.98", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestNearby_InvalidCoordinate(t *testing.T) {
	q := &mockDynamicQuerier{
		nearbyFn: func(_ context.Context, point domain.Coordinate, _ float64, _ time.Time) (*service.Result[domain.DynamicIncentive], error) {
			return nil, point.Validate()
		},
	}

	r := setupDynamicRouter(&mockDynamicService{}, q)

	for _, query := range []string{"lat=abc&lng=120", "lat=14.6", "lat=91&lng=120", "lat=14.6&lng=120&radius_km=x"} {
		t.Run(query, func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest("GET", "/dynamic-incentives/nearby?"+query, nil)
			r.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", w.Code)
			}
		})
	}
}

func TestByCities_SplitsParameters(t *testing.T) {
	var got []string
	q := &mockDynamicQuerier{
		byCitiesFn: func(_ context.Context, cities []string, _ time.Time) (*service.Result[domain.DynamicIncentive], error) {
			got = cities
			return &service.Result[domain.DynamicIncentive]{Items: []domain.DynamicIncentive{}}, nil
		},
	}

	r := setupDynamicRouter(&mockDynamicService{}, q)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/dynamic-incentives/by-cities?city=Manila,%20Pasig&city=Cebu%20City", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	want := []string{"Manila", "Pasig", "Cebu City"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected %s at %d, got %s", want[i], i, got[i])
		}
	}
}

func TestDeleteDynamicIncentive_NotFound(t *testing.T) {
	svc := &mockDynamicService{
		deleteFn: func(_ context.Context, _ uuid.UUID) error {
			return domain.ErrNotFound
		},
	}

	r := setupDynamicRouter(svc, &mockDynamicQuerier{})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", "/dynamic-incentives/"+uuid.NewString(), nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
