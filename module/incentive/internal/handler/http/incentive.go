package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/TristanXpress/recall-alchemy-portal/module/incentive/activity"
	"github.com/TristanXpress/recall-alchemy-portal/module/incentive/domain"
	"github.com/TristanXpress/recall-alchemy-portal/module/incentive/service"
)

type incentiveService interface {
	Create(ctx context.Context, inc *domain.Incentive) (*domain.Incentive, error)
	Update(ctx context.Context, inc *domain.Incentive) (*domain.Incentive, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Incentive, error)
	List(ctx context.Context, filter domain.IncentiveFilter) ([]domain.Incentive, error)
}

type incentiveQuerier interface {
	ActiveIncentives(ctx context.Context, q service.ActiveQuery, now time.Time) (*service.Result[domain.Incentive], error)
	Stats(ctx context.Context) (*domain.Stats, error)
}

type incentiveRequest struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Amount      float64           `json:"amount"`
	Type        domain.AmountType `json:"type"`
	StartDate   string            `json:"start_date"`
	EndDate     string            `json:"end_date"`
	Location    string            `json:"location"`
	IsActive    *bool             `json:"is_active"`
	Conditions  []string          `json:"conditions"`
	UserType    domain.UserType   `json:"user_type"`
}

func (r *incentiveRequest) toDomain() (*domain.Incentive, error) {
	inc := &domain.Incentive{
		Title:       r.Title,
		Description: r.Description,
		Amount:      r.Amount,
		Type:        r.Type,
		Location:    r.Location,
		IsActive:    true,
		Conditions:  r.Conditions,
		UserType:    r.UserType,
	}
	if r.IsActive != nil {
		inc.IsActive = *r.IsActive
	}
	if inc.Conditions == nil {
		inc.Conditions = []string{}
	}

	var err error
	if r.StartDate != "" {
		if inc.StartDate, err = activity.ParseTimestamp(r.StartDate); err != nil {
			return nil, err
		}
	}
	if r.EndDate != "" {
		if inc.EndDate, err = activity.ParseTimestamp(r.EndDate); err != nil {
			return nil, err
		}
	}
	return inc, nil
}

type IncentiveHandler struct {
	incentiveSvc incentiveService
	querySvc     incentiveQuerier
	now          func() time.Time
}

func NewIncentiveHandler(incentiveSvc incentiveService, querySvc incentiveQuerier) *IncentiveHandler {
	return &IncentiveHandler{
		incentiveSvc: incentiveSvc,
		querySvc:     querySvc,
		now:          time.Now,
	}
}

func (h *IncentiveHandler) Register(r *gin.RouterGroup) {
	r.GET("/incentives", h.List)
	r.POST("/incentives", h.Create)
	r.GET("/incentives/active", h.Active)
	r.GET("/incentives/stats", h.Stats)
	r.GET("/incentives/value", h.Value)
	r.GET("/incentives/:id", h.Get)
	r.PUT("/incentives/:id", h.Update)
	r.DELETE("/incentives/:id", h.Delete)
}

func (h *IncentiveHandler) List(c *gin.Context) {
	filter := domain.IncentiveFilter{
		UserType: domain.UserType(c.Query("user_type")),
		Location: c.Query("location"),
	}
	if filter.UserType != "" && !filter.UserType.Valid() {
		badRequest(c, "invalid user_type parameter")
		return
	}
	if raw := c.Query("active_only"); raw != "" {
		activeOnly, err := strconv.ParseBool(raw)
		if err != nil {
			badRequest(c, "invalid active_only parameter")
			return
		}
		filter.ActiveOnly = activeOnly
	}

	incentives, err := h.incentiveSvc.List(c.Request.Context(), filter)
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

func (h *IncentiveHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	inc, err := h.incentiveSvc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, inc, "")
}

func (h *IncentiveHandler) Create(c *gin.Context) {
	var req incentiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	inc, err := req.toDomain()
	if err != nil {
		respondError(c, err)
		return
	}

	created, err := h.incentiveSvc.Create(c.Request.Context(), inc)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, created, "incentive created")
}

func (h *IncentiveHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req incentiveRequest
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

	updated, err := h.incentiveSvc.Update(c.Request.Context(), inc)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, updated, "incentive updated")
}

func (h *IncentiveHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.incentiveSvc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"id": id}, "incentive deleted")
}

// Active serves the mobile app's incentive list for one user type.
func (h *IncentiveHandler) Active(c *gin.Context) {
	userType := domain.UserType(c.Query("user_type"))
	if !userType.Valid() {
		badRequest(c, "user_type must be customer or driver")
		return
	}
	q := service.ActiveQuery{
		UserType: userType,
		Location: c.Query("location"),
	}
	if raw := c.Query("require_started"); raw != "" {
		started, err := strconv.ParseBool(raw)
		if err != nil {
			badRequest(c, "invalid require_started parameter")
			return
		}
		q.RequireStarted = started
	}

	res, err := h.querySvc.ActiveIncentives(c.Request.Context(), q, h.now())
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

func (h *IncentiveHandler) Stats(c *gin.Context) {
	stats, err := h.querySvc.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, stats, "")
}

func (h *IncentiveHandler) Value(c *gin.Context) {
	base, err := strconv.ParseFloat(c.Query("base"), 64)
	if err != nil {
		badRequest(c, "invalid base parameter")
		return
	}
	amount, err := strconv.ParseFloat(c.Query("amount"), 64)
	if err != nil {
		badRequest(c, "invalid amount parameter")
		return
	}

	value, err := service.CalculateValue(base, amount, domain.AmountType(c.Query("type")))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"value": value}, "")
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid id parameter")
		return uuid.Nil, false
	}
	return id, true
}
