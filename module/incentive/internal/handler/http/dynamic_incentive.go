package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/TristanXpress/recall-alchemy-portal/module/incentive/domain"
	"github.com/TristanXpress/recall-alchemy-portal/module/incentive/service"
)

type dynamicIncentiveService interface {
	Create(ctx context.Context, inc *domain.DynamicIncentive) (*domain.DynamicIncentive, error)
	Update(ctx context.Context, inc *domain.DynamicIncentive) (*domain.DynamicIncentive, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*domain.DynamicIncentive, error)
	List(ctx context.Context, activeOnly bool) ([]domain.DynamicIncentive, error)
}

type dynamicIncentiveQuerier interface {
	NearbyDynamicIncentives(ctx context.Context, point domain.Coordinate, searchRadiusKm float64, now time.Time) (*service.Result[domain.DynamicIncentive], error)
	DynamicIncentivesByCities(ctx context.Context, cities []string, now time.Time) (*service.Result[domain.DynamicIncentive], error)
}

type dynamicIncentiveRequest struct {
	incentiveRequest
	TargetCities []string        `json:"target_cities"`
	Coordinates  json.RawMessage `json:"coordinates"`
}

func (r *dynamicIncentiveRequest) toDomain() (*domain.DynamicIncentive, error) {
	inc, err := r.incentiveRequest.toDomain()
	if err != nil {
		return nil, err
	}
	area, err := domain.DecodeArea(r.Coordinates)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedGeofence, err)
	}

	cities := r.TargetCities
	if cities == nil {
		cities = []string{}
	}
	return &domain.DynamicIncentive{
		Incentive:    *inc,
		TargetCities: cities,
		Area:         area,
	}, nil
}

type DynamicIncentiveHandler struct {
	dynamicSvc      dynamicIncentiveService
	querySvc        dynamicIncentiveQuerier
	defaultRadiusKm float64
	now             func() time.Time
}

func NewDynamicIncentiveHandler(dynamicSvc dynamicIncentiveService, querySvc dynamicIncentiveQuerier, defaultRadiusKm float64) *DynamicIncentiveHandler {
	return &DynamicIncentiveHandler{
		dynamicSvc:      dynamicSvc,
		querySvc:        querySvc,
		defaultRadiusKm: defaultRadiusKm,
		now:             time.Now,
	}
}

func (h *DynamicIncentiveHandler) Register(r *gin.RouterGroup) {
	r.GET("/dynamic-incentives", h.List)
	r.POST("/dynamic-incentives", h.Create)
	r.GET("/dynamic-incentives/nearby", h.Nearby)
	r.GET("/dynamic-incentives/by-cities", h.ByCities)
	r.GET("/dynamic-incentives/:id", h.Get)
	r.PUT("/dynamic-incentives/:id", h.Update)
	r.DELETE("/dynamic-incentives/:id", h.Delete)
}

func (h *DynamicIncentiveHandler) List(c *gin.Context) {
	activeOnly := false
	if raw := c.Query("active_only"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			badRequest(c, "invalid active_only parameter")
			return
		}
		activeOnly = v
	}

	incentives, err := h.dynamicSvc.List(c.Request.Context(), activeOnly)
	if err != nil {
		respondError(c, err)
		return
	}
	page, ok := paginate(c, incentives)
	if !ok {
		return
	}
	respond(c, http.StatusOK, page, "")
}

func (h *DynamicIncentiveHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	inc, err := h.dynamicSvc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, inc, "")
}

func (h *DynamicIncentiveHandler) Create(c *gin.Context) {
	var req dynamicIncentiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	inc, err := req.toDomain()
	if err != nil {
		respondError(c, err)
		return
	}

	created, err := h.dynamicSvc.Create(c.Request.Context(), inc)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, created, "dynamic incentive created")
}

func (h *DynamicIncentiveHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dynamicIncentiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	inc, err := req.toDomain()
	if err != nil {
		respondError(c, err)
		return
	}
	inc.ID = id

	updated, err := h.dynamicSvc.Update(c.Request.Context(), inc)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, updated, "dynamic incentive updated")
}

func (h *DynamicIncentiveHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.dynamicSvc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"id": id}, "dynamic incentive deleted")
}

func (h *DynamicIncentiveHandler) Nearby(c *gin.Context) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		badRequest(c, "invalid lat parameter")
		return
	}
	lng, err := strconv.ParseFloat(c.Query("lng"), 64)
	if err != nil {
		badRequest(c, "invalid lng parameter")
		return
	}
	radius := h.defaultRadiusKm
	if raw := c.Query("radius_km"); raw != "" {
		if radius, err = strconv.ParseFloat(raw, 64); err != nil {
			badRequest(c, "invalid radius_km parameter")
			return
		}
	}

	res, err := h.querySvc.NearbyDynamicIncentives(c.Request.Context(), domain.Coordinate{Lat: lat, Lng: lng}, radius, h.now())
	if err != nil {
		respondError(c, err)
		return
	}
	page, ok := paginate(c, res.Items)
	if !ok {
		return
	}
	res.Items = page
	respond(c, http.StatusOK, res, "")
}

// ByCities accepts repeated city parameters or one comma-separated list.
func (h *DynamicIncentiveHandler) ByCities(c *gin.Context) {
	var cities []string
	for _, raw := range c.QueryArray("city") {
		for _, city := range strings.Split(raw, ",") {
			if city = strings.TrimSpace(city); city != "" {
				cities = append(cities, city)
			}
		}
	}

	res, err := h.querySvc.DynamicIncentivesByCities(c.Request.Context(), cities, h.now())
	if err != nil {
		respondError(c, err)
		return
	}
	page, ok := paginate(c, res.Items)
	if !ok {
		return
	}
	res.Items = page
	respond(c, http.StatusOK, res, "")
}
